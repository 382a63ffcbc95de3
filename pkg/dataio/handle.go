package dataio

import (
	"errors"
	"io"
)

// Handle is an open, positioned stream produced by a Resolver.
//
// A handle tracks whether the resolver opened the underlying stream itself.
// Close releases only streams the resolver opened; caller-supplied
// (borrowed) streams are left open, so whoever opened a stream is the one
// that closes it. Close is idempotent.
type Handle struct {
	r      io.Reader
	w      io.Writer
	name   string
	closer io.Closer // nil for borrowed or purely in-memory streams
	closed bool
}

var (
	errNotReadable = errors.New("dataio: handle is not open for reading")
	errNotWritable = errors.New("dataio: handle is not open for writing")
)

// Read implements io.Reader.
func (h *Handle) Read(p []byte) (int, error) {
	if h.r == nil {
		return 0, errNotReadable
	}
	return h.r.Read(p)
}

// Write implements io.Writer.
func (h *Handle) Write(p []byte) (int, error) {
	if h.w == nil {
		return 0, errNotWritable
	}
	return h.w.Write(p)
}

// Name reports the canonical path or URL behind the handle, or "" when the
// stream has no name (borrowed streams without a Name method, archive
// members held in memory).
func (h *Handle) Name() string { return h.name }

// Owned reports whether the resolver opened the underlying stream and will
// therefore close it.
func (h *Handle) Owned() bool { return h.closer != nil }

// Close releases the underlying stream if the resolver owns it.
// It is a no-op for borrowed streams and on repeated calls.
func (h *Handle) Close() error {
	if h.closed || h.closer == nil {
		h.closed = true
		return nil
	}
	h.closed = true
	return h.closer.Close()
}
