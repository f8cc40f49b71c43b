package wordfreq

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// sequentialCounts is the reference single-threaded count
func sequentialCounts(tokens []string) map[string]int {
	counts := make(map[string]int)
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}

func randomTokens(n int, vocabulary int) []string {
	rng := rand.New(rand.NewSource(42))
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("w%d", rng.Intn(vocabulary))
	}
	return tokens
}

func TestCountScenario(t *testing.T) {
	table := Count([]string{"a", "b", "a"})

	assert.Equal(t, map[string]int{"a": 2, "b": 1}, table.Counts())

	count, ok := table.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 2, count)

	_, ok = table.Lookup("c")
	assert.False(t, ok)
}

func TestCountEmpty(t *testing.T) {
	for _, workers := range []int{0, 1, 2, 8} {
		counter := &Counter{Workers: workers}

		table := counter.Count([]string{})
		assert.Equal(t, 0, table.Len())
		assert.Equal(t, 0, table.Total())

		table = counter.Count(nil)
		assert.Equal(t, 0, table.Len())
	}
}

func TestCountDeterministic(t *testing.T) {
	tokens := randomTokens(10000, 500)
	expected := sequentialCounts(tokens)

	for _, workers := range []int{1, 2, 8} {
		for _, chunkSize := range []int{0, 1, 7, 1000, 20000} {
			counter := &Counter{Workers: workers, ChunkSize: chunkSize}
			table := counter.Count(tokens)

			assert.Equal(t, expected, table.Counts(), "workers=%d chunkSize=%d", workers, chunkSize)
		}
	}
}

func TestCountConservation(t *testing.T) {
	for _, n := range []int{1, 2, 3, 17, 1000} {
		tokens := randomTokens(n, 13)

		table := (&Counter{Workers: 4}).Count(tokens)

		sum := 0
		for _, count := range table.Counts() {
			sum += count
		}
		assert.Equal(t, n, sum)
		assert.Equal(t, n, table.Total())
		assert.Equal(t, len(sequentialCounts(tokens)), table.Len())
	}
}

func TestCountMoreWorkersThanTokens(t *testing.T) {
	table := (&Counter{Workers: 8}).Count([]string{"Hello", "world", "Hello"})

	assert.Equal(t, map[string]int{"Hello": 2, "world": 1}, table.Counts())
	assert.Equal(t, 2, table.Len())
}

func TestCountDoesNotModifyTokens(t *testing.T) {
	tokens := []string{"b", "a", "b"}
	(&Counter{Workers: 2, ChunkSize: 1}).Count(tokens)

	assert.Equal(t, []string{"b", "a", "b"}, tokens)
}

func TestCountReportsChunks(t *testing.T) {
	var chunks int32
	counter := &Counter{Workers: 3, ChunkSize: 4}
	counter.chunkDone = func() { atomic.AddInt32(&chunks, 1) }

	counter.Count(randomTokens(10, 5))
	assert.Equal(t, int32(3), atomic.LoadInt32(&chunks))
}

func BenchmarkCount(b *testing.B) {
	tokens := randomTokens(1000000, 5000)

	for _, workers := range []int{1, 2, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			counter := &Counter{Workers: workers}
			for i := 0; i < b.N; i++ {
				counter.Count(tokens)
			}
		})
	}
}
