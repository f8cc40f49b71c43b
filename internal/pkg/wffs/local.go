package wffs

import (
	"io"
	"os"
	"path/filepath"
)

// LocalFileSystem wraps the local disk
type LocalFileSystem struct{}

func fileInfo(path string, f os.FileInfo) FileInfo {
	return FileInfo{
		Name:    path,
		Size:    f.Size(),
		ModTime: f.ModTime(),
	}
}

// walkDir lists every file below dir. An entry that cannot be read fails the
// whole walk.
func walkDir(dir string) ([]FileInfo, error) {
	files := make([]FileInfo, 0)
	err := filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}
		files = append(files, fileInfo(path, f))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// ListFiles lists the files matching pathGlob. A path naming an existing
// file or directory is used literally, even if it contains glob
// metacharacters. Matched directories are walked recursively.
func (l *LocalFileSystem) ListFiles(pathGlob string) ([]FileInfo, error) {
	matches := []string{pathGlob}
	if _, err := os.Stat(pathGlob); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		matches, err = filepath.Glob(pathGlob)
		if err != nil {
			return nil, err
		}
	}

	files := make([]FileInfo, 0)
	for _, fileName := range matches {
		fInfo, err := os.Stat(fileName)
		if err != nil {
			return nil, err
		}
		if !fInfo.IsDir() {
			files = append(files, fileInfo(fileName, fInfo))
			continue
		}

		dirFiles, err := walkDir(fileName)
		if err != nil {
			return nil, err
		}
		files = append(files, dirFiles...)
	}

	return files, nil
}

// OpenReader opens a reader to the file at filePath, starting at byte startAt
func (l *LocalFileSystem) OpenReader(filePath string, startAt int64) (io.ReadCloser, error) {
	file, err := os.OpenFile(filePath, os.O_RDONLY, 0600)
	if err != nil {
		return nil, err
	}
	_, err = file.Seek(startAt, io.SeekStart)
	if err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}

// OpenWriter opens a writer to the file at filePath, creating missing
// directories along the way
func (l *LocalFileSystem) OpenWriter(filePath string) (io.WriteCloser, error) {
	dir := filepath.Dir(filePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0777)
		if err != nil {
			return nil, err
		}
	}
	return os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
}

// Stat returns information about the file at filePath
func (l *LocalFileSystem) Stat(filePath string) (FileInfo, error) {
	fInfo, err := os.Stat(filePath)
	if err != nil {
		return FileInfo{}, err
	}
	return fileInfo(filePath, fInfo), nil
}

// Init initializes the filesystem
func (l *LocalFileSystem) Init() error {
	return nil
}

// Join joins file path elements
func (l *LocalFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}
