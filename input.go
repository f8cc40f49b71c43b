package wordfreq

import (
	"fmt"
	"os"
	"strings"

	"github.com/bcongdon/wordfreq/internal/pkg/wffs"
	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// InputError reports that input text could not be read. No table is
// produced when any input fails.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// inputFile is a single file resolved from an input location
type inputFile struct {
	fs   wffs.FileSystem
	info wffs.FileInfo
}

// resolveInputs expands every input location (a path, glob or s3:// URI)
// into the files it names. A location that names no file, or that holds an
// entry that cannot be listed, is an error.
func resolveInputs(inputs []string) ([]inputFile, error) {
	files := make([]inputFile, 0)
	for _, input := range inputs {
		fs := wffs.InferFilesystem(input)
		matched, err := fs.ListFiles(input)
		if err != nil {
			return nil, &InputError{Path: input, Err: err}
		}
		if len(matched) == 0 {
			return nil, &InputError{Path: input, Err: os.ErrNotExist}
		}
		for _, info := range matched {
			files = append(files, inputFile{fs: fs, info: info})
		}
	}
	return files, nil
}

// inputsKey identifies a set of resolved files by name, size and
// modification time
func inputsKey(files []inputFile) string {
	parts := make([]string, len(files))
	for i, file := range files {
		parts[i] = fmt.Sprintf("%s:%d:%d", file.info.Name, file.info.Size, file.info.ModTime.UnixNano())
	}
	return strings.Join(parts, "|")
}

// readFiles tokenizes every file in order. It returns the tokens and the
// number of bytes read.
func readFiles(files []inputFile) ([]string, int64, error) {
	tokens := make([]string, 0)
	var totalRead int64

	for _, file := range files {
		reader, err := file.fs.OpenReader(file.info.Name, 0)
		if err != nil {
			return nil, totalRead, &InputError{Path: file.info.Name, Err: err}
		}

		fileTokens, bytesRead, err := TokenizeReader(reader)
		reader.Close()
		totalRead += bytesRead
		if err != nil {
			return nil, totalRead, &InputError{Path: file.info.Name, Err: err}
		}

		log.Debugf("Read %s (%d tokens) from %s", humanize.Bytes(uint64(bytesRead)), len(fileTokens), file.info.Name)
		tokens = append(tokens, fileTokens...)
	}

	return tokens, totalRead, nil
}
