package wordfreq

import (
	"context"
	"runtime"
	"sync"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Counter counts word frequencies by splitting tokens into contiguous chunks,
// accumulating each chunk into its own partial Table, and merging the
// partial tables pairwise.
type Counter struct {
	// Workers is the maximum number of chunks accumulated concurrently.
	// Values below 1 use runtime.NumCPU().
	Workers int
	// ChunkSize is the maximum number of tokens per chunk. Values below 1
	// spread the tokens evenly over Workers.
	ChunkSize int

	// chunkDone, if set, is called once per accumulated chunk
	chunkDone func()
}

// Count counts tokens using one worker per available CPU.
func Count(tokens []string) *Table {
	return (&Counter{}).Count(tokens)
}

func (c *Counter) workers() int {
	if c.Workers < 1 {
		return runtime.NumCPU()
	}
	return c.Workers
}

func (c *Counter) splits(numTokens int) []tokenSplit {
	size := c.ChunkSize
	if size < 1 {
		size = chunkSize(numTokens, c.workers())
	}
	return splitTokens(numTokens, size)
}

// Count returns the frequency table of tokens. The result does not depend on
// Workers or ChunkSize.
func (c *Counter) Count(tokens []string) *Table {
	splits := c.splits(len(tokens))
	workers := c.workers()
	log.Debugf("Counting %s tokens in %d chunks with %d workers",
		humanize.Comma(int64(len(tokens))), len(splits), workers)

	partials := make([]*Table, len(splits))

	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(int64(workers))
	for splitID, split := range splits {
		// Acquire only fails on a cancelled context
		_ = sem.Acquire(context.Background(), 1)
		wg.Add(1)
		go func(sID int, s tokenSplit) {
			defer wg.Done()
			defer sem.Release(1)
			partials[sID] = accumulate(tokens[s.Start : s.End+1])
			if c.chunkDone != nil {
				c.chunkDone()
			}
		}(splitID, split)
	}
	wg.Wait()

	return reduceTables(partials)
}

// accumulate builds the partial table of a single chunk
func accumulate(tokens []string) *Table {
	partial := NewTable()
	for _, token := range tokens {
		partial.add(token)
	}
	return partial
}

// reduceTables merges tables pairwise until one remains. Each merge step is
// owned by a single goroutine, and no table takes part in two merges at once.
func reduceTables(tables []*Table) *Table {
	if len(tables) == 0 {
		return NewTable()
	}

	for len(tables) > 1 {
		next := make([]*Table, (len(tables)+1)/2)

		var wg sync.WaitGroup
		for i := 0; i < len(tables); i += 2 {
			if i+1 == len(tables) {
				next[i/2] = tables[i]
				continue
			}
			wg.Add(1)
			go func(left, right *Table, slot int) {
				defer wg.Done()
				// Fold the smaller table into the larger one
				if right.Len() > left.Len() {
					left, right = right, left
				}
				next[slot] = left.merge(right)
			}(tables[i], tables[i+1], i/2)
		}
		wg.Wait()

		tables = next
	}

	return tables[0]
}
