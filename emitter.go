package wordfreq

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Report is what a run produces: the final table and the word of interest.
type Report struct {
	Table       *Table
	WordToQuery string
	// TopN limits the listed words to the N most frequent. Non-positive
	// values list every word in ascending order.
	TopN int
}

// entries returns the words listed by the report
func (r Report) entries() []WordCount {
	if r.TopN > 0 {
		return r.Table.Top(r.TopN)
	}
	entries := make([]WordCount, 0, r.Table.Len())
	r.Table.Each(func(word string, count int) {
		entries = append(entries, WordCount{Word: word, Count: count})
	})
	return entries
}

// LookupMessage renders the outcome of looking up word in t.
func LookupMessage(t *Table, word string) string {
	if count, ok := t.Lookup(word); ok {
		return fmt.Sprintf("The word '%s' occurs %d times.", word, count)
	}
	return fmt.Sprintf("The word '%s' does not occur in the text.", word)
}

// emitter writes reports to an output sink.
type emitter interface {
	Emit(report Report) error
	close() error
	bytesWritten() int64
}

// countingWriter counts the bytes written through it
type countingWriter struct {
	io.WriteCloser
	written int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.WriteCloser.Write(p)
	c.written += int64(n)
	return n, err
}

// checkFormat returns an error for unsupported report formats
func checkFormat(format string) error {
	switch format {
	case "", "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown report format %q", format)
}

// newEmitter returns an emitter for the given report format
func newEmitter(format string, writer io.WriteCloser) (emitter, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	out := &countingWriter{WriteCloser: writer}
	switch format {
	case "json":
		return &jsonEmitter{out}, nil
	case "yaml":
		return &yamlEmitter{out}, nil
	}
	return &textEmitter{out}, nil
}

// textEmitter writes one "word: count" line per word followed by the
// distinct word count and the lookup outcome.
type textEmitter struct {
	out *countingWriter
}

// Emit writes report as plain text.
func (e *textEmitter) Emit(report Report) error {
	w := bufio.NewWriter(e.out)
	for _, entry := range report.entries() {
		fmt.Fprintf(w, "%s: %d\n", entry.Word, entry.Count)
	}
	fmt.Fprintf(w, "\nNbr words: %d\n", report.Table.Len())
	fmt.Fprintln(w, LookupMessage(report.Table, report.WordToQuery))
	return w.Flush()
}

func (e *textEmitter) close() error {
	return e.out.Close()
}

func (e *textEmitter) bytesWritten() int64 {
	return e.out.written
}

// reportDocument is the structured form of a Report
type reportDocument struct {
	Words    []WordCount   `json:"words" yaml:"words"`
	Distinct int           `json:"distinct" yaml:"distinct"`
	Total    int           `json:"total" yaml:"total"`
	Query    queryDocument `json:"query" yaml:"query"`
}

type queryDocument struct {
	Word    string `json:"word" yaml:"word"`
	Count   int    `json:"count" yaml:"count"`
	Found   bool   `json:"found" yaml:"found"`
	Message string `json:"message" yaml:"message"`
}

func newReportDocument(report Report) reportDocument {
	count, found := report.Table.Lookup(report.WordToQuery)
	return reportDocument{
		Words:    report.entries(),
		Distinct: report.Table.Len(),
		Total:    report.Table.Total(),
		Query: queryDocument{
			Word:    report.WordToQuery,
			Count:   count,
			Found:   found,
			Message: LookupMessage(report.Table, report.WordToQuery),
		},
	}
}

type jsonEmitter struct {
	out *countingWriter
}

// Emit writes report as an indented JSON document.
func (e *jsonEmitter) Emit(report Report) error {
	encoder := json.NewEncoder(e.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newReportDocument(report))
}

func (e *jsonEmitter) close() error {
	return e.out.Close()
}

func (e *jsonEmitter) bytesWritten() int64 {
	return e.out.written
}

type yamlEmitter struct {
	out *countingWriter
}

// Emit writes report as a YAML document.
func (e *yamlEmitter) Emit(report Report) error {
	encoder := yaml.NewEncoder(e.out)
	encoder.SetIndent(2)
	if err := encoder.Encode(newReportDocument(report)); err != nil {
		return err
	}
	return encoder.Close()
}

func (e *yamlEmitter) close() error {
	return e.out.Close()
}

func (e *yamlEmitter) bytesWritten() int64 {
	return e.out.written
}
