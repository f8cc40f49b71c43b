package wordfreq

import (
	"bufio"
)

// tokenSplit describes a contiguous run of tokens.
// Start and End are inclusive. For example, if Start was 10 and End was 14,
// then the tokenSplit would describe 5 tokens.
type tokenSplit struct {
	Start int // Index of the first token in the split
	End   int // Index of the last token (inclusive) in the split
}

// Size returns the number of tokens that the tokenSplit spans
func (s tokenSplit) Size() int {
	return s.End - s.Start + 1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// chunkSize returns the split size that spreads numTokens evenly over workers
func chunkSize(numTokens, workers int) int {
	if workers < 1 {
		workers = 1
	}
	size := (numTokens + workers - 1) / workers
	if size < 1 {
		size = 1
	}
	return size
}

// splitTokens partitions numTokens tokens into contiguous splits of at most
// maxSplitSize tokens. Every token belongs to exactly one split.
func splitTokens(numTokens, maxSplitSize int) []tokenSplit {
	splits := make([]tokenSplit, 0)
	if maxSplitSize < 1 {
		maxSplitSize = 1
	}

	for start := 0; start < numTokens; start += maxSplitSize {
		splits = append(splits, tokenSplit{
			Start: start,
			End:   min(start+maxSplitSize-1, numTokens-1),
		})
	}

	return splits
}

// countingSplitFunc wraps a bufio.SplitFunc and keeps track of the number of bytes advanced.
// Upon each scan, the value of *bytesRead will be incremented by the number of bytes
// that the SplitFunc advances.
func countingSplitFunc(split bufio.SplitFunc, bytesRead *int64) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		adv, tok, err := split(data, atEOF)
		(*bytesRead) += int64(adv)
		return adv, tok, err
	}
}
