package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nibzard/tasktrack/internal/tasks"
)

// FileBackend keeps the collection as one JSON document on disk.
type FileBackend struct {
	path string
}

// NewFileBackend returns a JSON backend for path. The file is created on the
// first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the data file path.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Location() string {
	return b.path
}

// Read returns (nil, nil) when the file does not exist or holds only whitespace.
func (b *FileBackend) Read(ctx context.Context) (*tasks.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}

	c, err := decodeJSON(data)
	if err != nil {
		return nil, &CorruptStateError{Location: b.path, Err: err}
	}
	return c, nil
}

// Write replaces the file through a temporary sibling and a rename, so a
// failed write leaves the previous file in place.
func (b *FileBackend) Write(ctx context.Context, c *tasks.Collection) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeJSON(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replace task file: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}
