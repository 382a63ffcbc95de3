package dataio

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// Kind classifies what a Source resolves to.
type Kind int

const (
	// KindUnknown means the source matches none of path, stream, or URL.
	KindUnknown Kind = iota
	// KindPath is an existing filesystem path.
	KindPath
	// KindStream is a caller-supplied open stream.
	KindStream
	// KindURL is a reachable remote URL.
	KindURL
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindStream:
		return "stream"
	case KindURL:
		return "url"
	}
	return "unknown"
}

// Source identifies where data comes from or goes to. Exactly one variant
// is set: a string reference (filesystem path or URL, decided when the
// source is opened), a readable stream, or a writable stream.
//
// The zero Source is unresolvable.
type Source struct {
	ref    string
	hasRef bool
	reader io.Reader
	writer io.Writer
}

// Ref builds a Source from a string that names either a filesystem path or
// a URL. Which one it is gets decided when the source is opened or
// classified.
func Ref(s string) Source { return Source{ref: s, hasRef: true} }

// FromReader builds a Source around an already-open readable stream.
// The stream is borrowed: resolvers and adapters will not close it.
func FromReader(r io.Reader) Source { return Source{reader: r} }

// FromWriter builds a Source around an already-open writable stream.
// The stream is borrowed: resolvers and adapters will not close it.
func FromWriter(w io.Writer) Source { return Source{writer: w} }

// IsStream reports whether the source wraps a caller-supplied stream.
func (s Source) IsStream() bool { return s.reader != nil || s.writer != nil }

// String describes the source for error messages and logs.
func (s Source) String() string {
	switch {
	case s.hasRef:
		return s.ref
	case s.reader != nil:
		return "<reader>"
	case s.writer != nil:
		return "<writer>"
	}
	return "<empty>"
}

// remoteURL reports the parsed URL when the ref carries a scheme this
// package knows how to fetch (http, https, s3).
func (s Source) remoteURL() (*url.URL, bool) {
	if !s.hasRef {
		return nil, false
	}
	u, err := url.Parse(s.ref)
	if err != nil || u.Host == "" {
		return nil, false
	}
	switch u.Scheme {
	case "http", "https", "s3":
		return u, true
	}
	return nil, false
}

// CanonicalPath extracts a filesystem path from the source, for libraries
// that need a real path rather than a stream. For string refs the ref is
// returned cleaned; for streams the associated file name is used when the
// stream exposes one (as *os.File does). Otherwise ErrUnresolvedSource.
func CanonicalPath(src Source) (string, error) {
	if src.hasRef {
		if _, ok := src.remoteURL(); ok {
			return "", fmt.Errorf("dataio: %q is not a filesystem path: %w", src.ref, ErrUnresolvedSource)
		}
		return filepath.Clean(src.ref), nil
	}
	type named interface{ Name() string }
	if n, ok := src.reader.(named); ok {
		return n.Name(), nil
	}
	if n, ok := src.writer.(named); ok {
		return n.Name(), nil
	}
	return "", fmt.Errorf("dataio: source has no filesystem path: %w", ErrUnresolvedSource)
}

// pathExists reports whether the ref names an existing filesystem entry.
func pathExists(ref string) bool {
	_, err := os.Stat(ref)
	return err == nil
}
