package dataio

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnresolvedSource is returned when a source reference matches none
	// of path, stream, or reachable URL.
	ErrUnresolvedSource = errors.New("dataio: source cannot be resolved")

	// ErrUnsupportedOperation is returned when an operation is not valid
	// for the source kind, such as writing to a URL.
	ErrUnsupportedOperation = errors.New("dataio: unsupported operation")
)

// DecodeError wraps a failure from an underlying format library while
// reading. Use errors.As to recover it and Unwrap to reach the cause.
type DecodeError struct {
	Format string // adapter name, e.g. "csv"
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("dataio: decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError wraps a failure from an underlying format library while
// writing.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("dataio: encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
