package wordfreq

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tableOf(words ...string) *Table {
	return accumulate(words)
}

func TestTableLookup(t *testing.T) {
	table := tableOf("a", "b", "a")

	count, ok := table.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 2, count)

	count, ok = table.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, 1, count)

	// Absent words are distinguishable from a zero count
	count, ok = table.Lookup("c")
	assert.False(t, ok)
	assert.Equal(t, 0, count)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 3, table.Total())
}

func TestTableCaseSensitive(t *testing.T) {
	table := tableOf("Hello", "hello", "HELLO")

	assert.Equal(t, 3, table.Len())
	count, _ := table.Lookup("Hello")
	assert.Equal(t, 1, count)
}

func TestMergeIdentity(t *testing.T) {
	table := tableOf("a", "b", "a")

	merged := NewTable().merge(tableOf("a", "b", "a"))
	assert.Equal(t, table.Counts(), merged.Counts())
	assert.Equal(t, table.Total(), merged.Total())

	merged = tableOf("a", "b", "a").merge(NewTable())
	assert.Equal(t, table.Counts(), merged.Counts())

	merged = tableOf("a").merge(nil)
	assert.Equal(t, map[string]int{"a": 1}, merged.Counts())
}

func TestMergeAssociativeCommutative(t *testing.T) {
	a := []string{"x", "y", "x"}
	b := []string{"y", "z"}
	c := []string{"x", "w", "w", "w"}

	expected := map[string]int{"x": 3, "y": 2, "z": 1, "w": 3}

	groupings := []func() *Table{
		func() *Table { return tableOf(a...).merge(tableOf(b...)).merge(tableOf(c...)) },
		func() *Table { return tableOf(a...).merge(tableOf(b...).merge(tableOf(c...))) },
		func() *Table { return tableOf(c...).merge(tableOf(b...)).merge(tableOf(a...)) },
		func() *Table { return tableOf(b...).merge(tableOf(a...).merge(tableOf(c...))) },
		func() *Table { return tableOf(c...).merge(tableOf(a...)).merge(tableOf(b...)) },
		func() *Table { return reduceTables([]*Table{tableOf(c...), tableOf(a...), tableOf(b...)}) },
	}

	for _, grouping := range groupings {
		merged := grouping()
		assert.Equal(t, expected, merged.Counts())
		assert.Equal(t, 9, merged.Total())
	}
}

func TestReduceTablesEmpty(t *testing.T) {
	table := reduceTables(nil)
	assert.NotNil(t, table)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.Total())
}

func TestTableWords(t *testing.T) {
	table := tableOf("b", "c", "a", "b")
	assert.Equal(t, []string{"a", "b", "c"}, table.Words())

	visited := make([]WordCount, 0)
	table.Each(func(word string, count int) {
		visited = append(visited, WordCount{word, count})
	})
	assert.Equal(t, []WordCount{{"a", 1}, {"b", 2}, {"c", 1}}, visited)
}

func TestTableTop(t *testing.T) {
	table := tableOf("b", "a", "c", "c", "b", "c", "d")

	assert.Equal(t, []WordCount{{"c", 3}, {"b", 2}}, table.Top(2))
	// Ties are broken by word
	assert.Equal(t, []WordCount{{"c", 3}, {"b", 2}, {"a", 1}, {"d", 1}}, table.Top(0))
	assert.Len(t, table.Top(100), 4)
}

func TestTableCountsIsCopy(t *testing.T) {
	table := tableOf("a")

	counts := table.Counts()
	counts["a"] = 100

	count, _ := table.Lookup("a")
	assert.Equal(t, 1, count)
}

func TestTableJSON(t *testing.T) {
	table := tableOf("Hello", "world", "Hello")

	data, err := json.Marshal(table)
	assert.Nil(t, err)
	assert.JSONEq(t, `{"Hello": 2, "world": 1}`, string(data))

	decoded := NewTable()
	err = json.Unmarshal(data, decoded)
	assert.Nil(t, err)
	assert.Equal(t, table.Counts(), decoded.Counts())
	assert.Equal(t, 3, decoded.Total())
}

func TestTableJSONRejectsNonPositiveCounts(t *testing.T) {
	decoded := NewTable()
	err := json.Unmarshal([]byte(`{"a": 0}`), decoded)
	assert.NotNil(t, err)

	err = json.Unmarshal([]byte(`{"a": -2}`), decoded)
	assert.NotNil(t, err)
}
