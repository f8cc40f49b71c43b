package wordfreq

import (
	"os"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// executor produces the final table for a set of input locations
type executor interface {
	Count(d *Driver, inputs []string) (*Table, error)
}

// localExecutor reads and counts inputs in the current process
type localExecutor struct{}

func (localExecutor) Count(d *Driver, inputs []string) (*Table, error) {
	files, err := resolveInputs(inputs)
	if err != nil {
		return nil, err
	}

	tokens, bytesRead, err := readFiles(files)
	if err != nil {
		return nil, err
	}
	log.Infof("Read %s from %d file(s)", humanize.Bytes(uint64(bytesRead)), len(files))

	return d.countTokens(tokens), nil
}

// countTokens counts tokens with the driver's counter settings, reporting
// progress per chunk when enabled
func (d *Driver) countTokens(tokens []string) *Table {
	counter := d.counter()

	numChunks := len(counter.splits(len(tokens)))
	if d.config.Progress && numChunks > 0 {
		bar := pb.New(numChunks).Prefix("Count")
		bar.Output = os.Stderr
		bar.Start()
		counter.chunkDone = func() { bar.Increment() }
		defer bar.Finish()
	}

	return counter.Count(tokens)
}
