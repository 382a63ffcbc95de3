package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local implements Store on a directory of the local filesystem. Keys are
// resolved relative to the root; parent directories are created on write.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at dir, creating the directory
// (with parents) if needed.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", dir, err)
	}
	return &Local{root: abs}, nil
}

// Root reports the absolute root directory.
func (l *Local) Root() string { return l.root }

func (l *Local) resolve(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

// Open opens the named object for reading.
func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(l.resolve(key))
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", key, err)
	}
	return f, nil
}

// Create opens the named object for writing, creating parent directories
// as needed and truncating existing content.
func (l *Local) Create(_ context.Context, key string) (io.WriteCloser, error) {
	full := l.resolve(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dirs for %s: %w", key, err)
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", key, err)
	}
	return f, nil
}

// Stat describes the named object.
func (l *Local) Stat(_ context.Context, key string) (Info, error) {
	fi, err := os.Stat(l.resolve(key))
	if err != nil {
		return Info{}, fmt.Errorf("storage: stat %s: %w", key, err)
	}
	return Info{Key: key, Size: fi.Size()}, nil
}

// Remove deletes the named object. Missing objects are not an error.
func (l *Local) Remove(_ context.Context, key string) error {
	err := os.Remove(l.resolve(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

var _ Store = (*Local)(nil)
