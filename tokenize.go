package wordfreq

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when input text is not valid UTF-8.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

// maxTokenSize bounds the length of a single whitespace-delimited word
const maxTokenSize = 64 * 1024 * 1024

// Only '.' and ',' are removed. Other punctuation stays attached to words.
var punctuationStripper = strings.NewReplacer(".", "", ",", "")

// Tokenize removes periods and commas from text and splits it on runs of
// whitespace.
func Tokenize(text string) []string {
	return strings.Fields(punctuationStripper.Replace(text))
}

// scanCleanWords is a bufio.SplitFunc that yields whitespace-delimited words
// with punctuation removed. Words consisting only of punctuation are skipped.
func scanCleanWords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for {
		adv, tok, err := bufio.ScanWords(data[advance:], atEOF)
		advance += adv
		if err != nil || tok == nil {
			return advance, nil, err
		}
		if !utf8.Valid(tok) {
			return advance, nil, ErrInvalidEncoding
		}

		cleaned := punctuationStripper.Replace(string(tok))
		if cleaned != "" {
			return advance, []byte(cleaned), nil
		}
		if adv == 0 {
			return advance, nil, nil
		}
	}
}

// TokenizeReader tokenizes everything read from r the same way Tokenize does
// and returns the tokens and the number of bytes consumed.
func TokenizeReader(r io.Reader) ([]string, int64, error) {
	var bytesRead int64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxTokenSize)
	scanner.Split(countingSplitFunc(scanCleanWords, &bytesRead))

	tokens := make([]string, 0)
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, bytesRead, err
	}
	return tokens, bytesRead, nil
}
