// Package dataio provides uniform access to dataset files regardless of
// where they live. A [Source] identifies data as a filesystem path, an
// already-open stream, or a remote URL; a [Resolver] turns it into an open
// [Handle] for reading or writing.
//
// Format adapters (csvio, jsonio, yamlio, ...) build on this package: they
// implement the [Reader] and [Writer] capability interfaces, acquire their
// stream through a Resolver only inside Read/Write, and release it on every
// exit path. Streams supplied by the caller are borrowed and never closed
// by an adapter.
package dataio

import "context"

// Mode selects how a Source is opened.
type Mode int

const (
	// ReadText opens the source for reading text.
	ReadText Mode = iota
	// ReadBinary opens the source for reading raw bytes.
	ReadBinary
	// WriteText opens the source for writing text, truncating existing files.
	WriteText
	// WriteBinary opens the source for writing raw bytes, truncating
	// existing files.
	WriteBinary
)

// String returns the mode in the conventional short form ("r", "rb", ...).
func (m Mode) String() string {
	switch m {
	case ReadText:
		return "r"
	case ReadBinary:
		return "rb"
	case WriteText:
		return "w"
	case WriteBinary:
		return "wb"
	}
	return "invalid"
}

// Reads reports whether the mode opens a source for reading.
func (m Mode) Reads() bool { return m == ReadText || m == ReadBinary }

// Writes reports whether the mode opens a source for writing.
func (m Mode) Writes() bool { return m == WriteText || m == WriteBinary }

// Binary reports whether the mode carries raw bytes rather than text.
func (m Mode) Binary() bool { return m == ReadBinary || m == WriteBinary }

// Reader is the read capability every format adapter implements.
type Reader interface {
	// Read acquires the source stream, decodes a single value, and releases
	// the stream before returning. Borrowed streams are left open.
	// Decode failures are reported as *DecodeError; an unusable source is
	// reported via ErrUnresolvedSource.
	Read(ctx context.Context) (any, error)

	// Extensions lists the file extensions (without leading dot) the
	// adapter recognizes.
	Extensions() []string
}

// Writer is the write capability every format adapter implements.
type Writer interface {
	// Write acquires the target stream, encodes v, and releases the stream
	// before returning. It returns (false, nil) in exactly one legacy case:
	// the target path's directory does not exist at write time. A URL target
	// fails with ErrUnsupportedOperation; encode failures are *EncodeError.
	Write(ctx context.Context, v any) (bool, error)

	// Extensions lists the file extensions (without leading dot) the
	// adapter recognizes.
	Extensions() []string
}
