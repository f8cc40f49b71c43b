package wffs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferFilesystem(t *testing.T) {
	fs := InferFilesystem("s3://foo/lorem.txt")
	assert.NotNil(t, fs)
	assert.IsType(t, &S3FileSystem{}, fs)

	fs = InferFilesystem("./lorem.txt")
	assert.NotNil(t, fs)
	assert.IsType(t, &LocalFileSystem{}, fs)
}
