// Package snapshot ships snapshots of a local file to object storage, paced by
// timed tasks.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Info describes the current state of a source.
type Info struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Source is something that can be snapshotted.
type Source interface {
	// Stat returns the current state of the source.
	Stat(ctx context.Context) (Info, error)

	// Open returns a reader over the current contents of the source.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource snapshots a regular file on the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Stat implements Source.
func (f *FileSource) Stat(ctx context.Context) (Info, error) {
	fi, err := os.Stat(f.path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to stat %s: %w", f.path, err)
	}
	if !fi.Mode().IsRegular() {
		return Info{}, fmt.Errorf("%s is not a regular file", f.path)
	}

	return Info{
		Path:    f.path,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}, nil
}

// Open implements Source.
func (f *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	return file, nil
}
