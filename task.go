package wordfreq

// task is the payload sent to a word counting lambda function
type task struct {
	Inputs    []string
	Workers   int
	ChunkSize int
}

// taskResult is returned by a word counting lambda function
type taskResult struct {
	Table     *Table
	BytesRead int64
	Cached    bool
}
