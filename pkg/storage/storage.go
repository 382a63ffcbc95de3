// Package storage provides object stores for dataset artifacts. A Store
// names objects with forward-slash keys and hides whether they live on
// local disk or in an S3-compatible bucket, so the dataio resolver and the
// CLI can fetch and stage datasets without caring about the backend.
package storage

import (
	"context"
	"io"
)

// Store is a minimal object store keyed by forward-slash paths.
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens the named object for reading. The caller closes the
	// returned ReadCloser. A missing object yields an error wrapping
	// os.ErrNotExist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Create opens the named object for writing, truncating any existing
	// content. The caller must close the returned WriteCloser to commit
	// the data.
	Create(ctx context.Context, key string) (io.WriteCloser, error)

	// Stat describes the named object. A missing object yields an error
	// wrapping os.ErrNotExist.
	Stat(ctx context.Context, key string) (Info, error)

	// Remove deletes the named object. Removing a missing object is not
	// an error.
	Remove(ctx context.Context, key string) error
}

// Info describes one stored object.
type Info struct {
	Key  string
	Size int64
}
