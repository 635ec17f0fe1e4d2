package graphdoc

import (
	"context"
	"os"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// FileSource reads the graph document from a local file on every Load.
type FileSource struct {
	path string
}

// NewFileSource returns a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file path.
func (s *FileSource) Path() string { return s.path }

// Name implements chemical.DocumentSource.
func (s *FileSource) Name() string { return "file:" + s.path }

// Load implements chemical.DocumentSource.
func (s *FileSource) Load(ctx context.Context) (*chemical.GraphDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphUnavailable, "load cancelled")
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphUnavailable, "open graph document").
			WithDetail("path=" + s.path)
	}
	defer f.Close()
	return Parse(f, s.Name())
}

// BytesSource serves a document held in memory, such as one embedded into
// the binary.
type BytesSource struct {
	name string
	data []byte
}

// NewBytesSource returns a source over data.
func NewBytesSource(name string, data []byte) *BytesSource {
	return &BytesSource{name: name, data: data}
}

func (s *BytesSource) Name() string { return s.name }

func (s *BytesSource) Load(ctx context.Context) (*chemical.GraphDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphUnavailable, "load cancelled")
	}
	return ParseBytes(s.data, s.name)
}
