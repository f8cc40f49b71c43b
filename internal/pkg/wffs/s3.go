package wffs

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/mattetti/filebuffer"
	log "github.com/sirupsen/logrus"
)

// Default size of ranged GET requests issued by s3Reader
const defaultReadChunkSize = 32 * 1024 * 1024

// S3FileSystem abstracts AWS S3 as a filesystem
type S3FileSystem struct {
	s3Client s3iface.S3API
}

func parseS3URI(uri string) (*url.URL, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "s3" {
		return nil, fmt.Errorf("Invalid s3 URI: %s", uri)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("No bucket in s3 URI: %s", uri)
	}
	return parsed, nil
}

func objectKey(parsed *url.URL) string {
	return strings.TrimPrefix(parsed.Path, "/")
}

// ListFiles lists files that match pathGlob.
func (s *S3FileSystem) ListFiles(pathGlob string) ([]FileInfo, error) {
	s3Files := make([]FileInfo, 0)

	parsed, err := parseS3URI(pathGlob)
	if err != nil {
		return nil, err
	}

	globKey := objectKey(parsed)
	baseURI := parsed.Host
	if globKey != "" {
		baseURI = path.Join(parsed.Host, globKey)
	}

	// Only the literal part of the glob can be used as a listing prefix
	prefix := globKey
	isGlob := false
	if i := strings.IndexAny(prefix, "*?["); i >= 0 {
		prefix = prefix[:i]
		isGlob = true
	}

	params := &s3.ListObjectsV2Input{
		Bucket: aws.String(parsed.Host),
		Prefix: aws.String(prefix),
	}

	var matchErr error
	err = s.s3Client.ListObjectsV2Pages(params,
		func(page *s3.ListObjectsV2Output, _ bool) bool {
			for _, object := range page.Contents {
				fullPath := path.Join(parsed.Host, *object.Key)
				match, err := path.Match(baseURI, fullPath)
				if err != nil {
					matchErr = err
					return false
				}
				// A key equal to the location is used literally. A literal
				// path also lists everything below it.
				literal := fullPath == baseURI || (!isGlob && strings.HasPrefix(fullPath, baseURI+"/"))
				if !match && !literal {
					continue
				}
				s3Files = append(s3Files, FileInfo{
					Name:    "s3://" + fullPath,
					Size:    aws.Int64Value(object.Size),
					ModTime: aws.TimeValue(object.LastModified),
				})
			}
			return true
		})
	if matchErr != nil {
		return nil, matchErr
	}

	return s3Files, err
}

// OpenReader opens a reader to the file at filePath. The reader
// is initially seeked to "startAt" bytes into the file.
func (s *S3FileSystem) OpenReader(filePath string, startAt int64) (io.ReadCloser, error) {
	parsed, err := parseS3URI(filePath)
	if err != nil {
		return nil, err
	}
	objStat, err := s.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if startAt >= objStat.Size {
		return ioutil.NopCloser(strings.NewReader("")), nil
	}

	reader := &s3Reader{
		client:    s.s3Client,
		bucket:    parsed.Host,
		key:       objectKey(parsed),
		offset:    startAt,
		chunkSize: defaultReadChunkSize,
		totalSize: objStat.Size,
	}
	err = reader.loadNextChunk()
	return reader, err
}

// OpenWriter opens a writer to the file at filePath. The object is uploaded
// when the writer is closed.
func (s *S3FileSystem) OpenWriter(filePath string) (io.WriteCloser, error) {
	parsed, err := parseS3URI(filePath)
	if err != nil {
		return nil, err
	}

	writer := &s3Writer{
		client: s.s3Client,
		bucket: parsed.Host,
		key:    objectKey(parsed),
		buf:    filebuffer.New(nil),
	}
	return writer, nil
}

// Stat returns information about the file at filePath.
func (s *S3FileSystem) Stat(filePath string) (FileInfo, error) {
	parsed, err := parseS3URI(filePath)
	if err != nil {
		return FileInfo{}, err
	}

	params := &s3.HeadObjectInput{
		Bucket: aws.String(parsed.Host),
		Key:    aws.String(objectKey(parsed)),
	}
	result, err := s.s3Client.HeadObject(params)
	if err != nil {
		return FileInfo{}, err
	}
	if result == nil || result.ContentLength == nil {
		return FileInfo{}, errors.New("No file with given filename")
	}

	return FileInfo{
		Name:    filePath,
		Size:    *result.ContentLength,
		ModTime: aws.TimeValue(result.LastModified),
	}, nil
}

// Init initializes the filesystem.
func (s *S3FileSystem) Init() error {
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	s.s3Client = s3.New(sess)
	log.Debug("Initialized S3 filesystem")

	return nil
}

// Join joins file path elements
func (s *S3FileSystem) Join(elem ...string) string {
	stripped := make([]string, len(elem))
	for i, str := range elem {
		if strings.HasPrefix(str, "s3://") {
			str = str[len("s3://"):]
		}
		stripped[i] = strings.TrimPrefix(str, "/")
		if i < len(elem)-1 {
			stripped[i] = strings.TrimSuffix(stripped[i], "/")
		}
	}
	return "s3://" + strings.Join(stripped, "/")
}
