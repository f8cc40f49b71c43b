package wordfreq

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Table maps each distinct word to the number of times it occurred.
// A Table returned by Count is read-only; only the counter that built it
// ever mutates it.
type Table struct {
	counts map[string]int
	total  int
}

// NewTable returns an empty Table. The empty table is the identity of merge.
func NewTable() *Table {
	return &Table{counts: make(map[string]int)}
}

// add increments the count of word by one
func (t *Table) add(word string) {
	t.counts[word]++
	t.total++
}

// merge folds every (word, count) pair of other into t and returns t.
// other must not be used afterwards.
func (t *Table) merge(other *Table) *Table {
	if other == nil {
		return t
	}
	for word, count := range other.counts {
		t.counts[word] += count
	}
	t.total += other.total
	return t
}

// Lookup returns the count of word. ok is false when word never occurred.
func (t *Table) Lookup(word string) (count int, ok bool) {
	count, ok = t.counts[word]
	return count, ok
}

// Len returns the number of distinct words.
func (t *Table) Len() int {
	return len(t.counts)
}

// Total returns the number of tokens that produced the table.
func (t *Table) Total() int {
	return t.total
}

// Words returns the distinct words in ascending order.
func (t *Table) Words() []string {
	words := make([]string, 0, len(t.counts))
	for word := range t.counts {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Each calls fn for every word in ascending order.
func (t *Table) Each(fn func(word string, count int)) {
	for _, word := range t.Words() {
		fn(word, t.counts[word])
	}
}

// WordCount is a single entry of a Table.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// Top returns the n most frequent words, ties broken by word.
// A non-positive n returns every word.
func (t *Table) Top(n int) []WordCount {
	entries := make([]WordCount, 0, len(t.counts))
	for word, count := range t.counts {
		entries = append(entries, WordCount{Word: word, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})

	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// Counts returns a copy of the underlying word counts.
func (t *Table) Counts() map[string]int {
	counts := make(map[string]int, len(t.counts))
	for word, count := range t.counts {
		counts[word] = count
	}
	return counts
}

// MarshalJSON encodes the table as a JSON object of word counts.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.counts)
}

// UnmarshalJSON decodes a JSON object of word counts.
func (t *Table) UnmarshalJSON(data []byte) error {
	counts := make(map[string]int)
	if err := json.Unmarshal(data, &counts); err != nil {
		return err
	}

	total := 0
	for word, count := range counts {
		if count <= 0 {
			return fmt.Errorf("invalid count %d for word %q", count, word)
		}
		total += count
	}
	t.counts = counts
	t.total = total
	return nil
}
