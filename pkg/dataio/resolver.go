package dataio

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// ObjectOpener reads objects out of a single bucket. storage.Local and
// storage.Bucket satisfy it.
type ObjectOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Resolver turns a Source into an open Handle.
//
// The zero Resolver is ready to use: it resolves filesystem paths and
// http(s) URLs. Wire OpenBucket to additionally resolve s3:// refs.
// Resolvers are stateless and safe for concurrent use.
type Resolver struct {
	// Client performs URL probes and fetches. nil means http.DefaultClient.
	Client *http.Client

	// Logger receives debug events for remote fetches.
	// nil means slog.Default().
	Logger *slog.Logger

	// OpenBucket resolves the bucket of an s3://bucket/key ref to an object
	// store. nil leaves s3 refs unresolvable.
	OpenBucket func(ctx context.Context, bucket string) (ObjectOpener, error)
}

// Default is the resolver used by the package-level functions and by
// format adapters that were not given one.
var Default = &Resolver{}

// Classify reports what the source would resolve to.
//
// Stream sources and existing paths are decided locally. A ref with an
// http(s) scheme is probed with a HEAD request, so classification of a
// remote ref touches the network. A probe failure, including a transient
// network error, is reported as KindUnknown, indistinguishable from a ref
// that names nothing; OpenRead surfaces the real fetch error instead once
// the ref is known to be a URL.
func (rv *Resolver) Classify(ctx context.Context, src Source) Kind {
	if src.IsStream() {
		return KindStream
	}
	if !src.hasRef || src.ref == "" {
		return KindUnknown
	}
	if pathExists(src.ref) {
		return KindPath
	}
	if u, ok := src.remoteURL(); ok {
		if u.Scheme == "s3" {
			if rv.OpenBucket != nil {
				return KindURL
			}
			return KindUnknown
		}
		if rv.probe(ctx, src.ref) {
			return KindURL
		}
	}
	return KindUnknown
}

// OpenRead resolves the source to a readable handle.
//
// Streams are returned as borrowed handles. Existing paths are opened for
// reading. URL refs are fetched with a GET request; when the URL path ends
// in ".tar.gz" the body is treated as a gzip tar archive and the first
// regular member is exposed as the stream. Everything else fails with
// ErrUnresolvedSource.
func (rv *Resolver) OpenRead(ctx context.Context, src Source, mode Mode) (*Handle, error) {
	if !mode.Reads() {
		return nil, fmt.Errorf("dataio: mode %q cannot read: %w", mode, ErrUnsupportedOperation)
	}
	if src.reader != nil {
		return &Handle{r: src.reader, name: streamName(src.reader)}, nil
	}
	if src.writer != nil {
		return nil, fmt.Errorf("dataio: source is a write-only stream: %w", ErrUnresolvedSource)
	}
	if !src.hasRef || src.ref == "" {
		return nil, fmt.Errorf("dataio: no path, stream, or url provided: %w", ErrUnresolvedSource)
	}
	if pathExists(src.ref) {
		f, err := os.Open(src.ref)
		if err != nil {
			return nil, fmt.Errorf("dataio: open %s: %w", src.ref, err)
		}
		return &Handle{r: f, closer: f, name: src.ref}, nil
	}
	if u, ok := src.remoteURL(); ok {
		if u.Scheme == "s3" {
			return rv.openObject(ctx, u)
		}
		if rv.probe(ctx, src.ref) {
			return rv.fetch(ctx, src.ref)
		}
	}
	return nil, fmt.Errorf("dataio: %q is neither an existing path, an open stream, nor a reachable url: %w",
		src.ref, ErrUnresolvedSource)
}

// OpenWrite resolves the source to a writable handle.
//
// Streams are returned as borrowed handles. A ref carrying a remote scheme
// fails with ErrUnsupportedOperation: URLs are never write targets. Any
// other ref is treated as a filesystem path and created or truncated.
func (rv *Resolver) OpenWrite(ctx context.Context, src Source, mode Mode) (*Handle, error) {
	if !mode.Writes() {
		return nil, fmt.Errorf("dataio: mode %q cannot write: %w", mode, ErrUnsupportedOperation)
	}
	if src.writer != nil {
		return &Handle{w: src.writer, name: streamName(src.writer)}, nil
	}
	if src.reader != nil {
		return nil, fmt.Errorf("dataio: source is a read-only stream: %w", ErrUnresolvedSource)
	}
	if !src.hasRef || src.ref == "" {
		return nil, fmt.Errorf("dataio: no path or stream provided: %w", ErrUnresolvedSource)
	}
	if _, ok := src.remoteURL(); ok {
		return nil, fmt.Errorf("dataio: cannot write to a url %q: %w", src.ref, ErrUnsupportedOperation)
	}
	f, err := os.OpenFile(src.ref, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("dataio: create %s: %w", src.ref, err)
	}
	return &Handle{w: f, closer: f, name: src.ref}, nil
}

// Classify reports what the source would resolve to, using Default.
func Classify(ctx context.Context, src Source) Kind { return Default.Classify(ctx, src) }

// OpenRead resolves the source to a readable handle using Default.
func OpenRead(ctx context.Context, src Source, mode Mode) (*Handle, error) {
	return Default.OpenRead(ctx, src, mode)
}

// OpenWrite resolves the source to a writable handle using Default.
func OpenWrite(ctx context.Context, src Source, mode Mode) (*Handle, error) {
	return Default.OpenWrite(ctx, src, mode)
}

func (rv *Resolver) client() *http.Client {
	if rv.Client != nil {
		return rv.Client
	}
	return http.DefaultClient
}

func (rv *Resolver) logger() *slog.Logger {
	if rv.Logger != nil {
		return rv.Logger
	}
	return slog.Default()
}

// probe checks URL reachability with a HEAD request. Any failure, network
// errors included, reports false.
func (rv *Resolver) probe(ctx context.Context, ref string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, ref, nil)
	if err != nil {
		return false
	}
	resp, err := rv.client().Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// fetch GETs the URL and wraps the body in a handle. Bodies of refs ending
// in ".tar.gz" are unpacked and the first regular archive member is
// returned instead.
func (rv *Resolver) fetch(ctx context.Context, ref string) (*Handle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("dataio: fetch %s: %w", ref, err)
	}
	resp, err := rv.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataio: fetch %s: %w", ref, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("dataio: fetch %s: unexpected status %s", ref, resp.Status)
	}
	rv.logger().Debug("fetched remote source", "url", ref, "status", resp.StatusCode)

	if strings.HasSuffix(urlPath(ref), ".tar.gz") {
		defer resp.Body.Close()
		return firstTarMember(resp.Body, ref)
	}
	return &Handle{r: resp.Body, closer: resp.Body, name: ref}, nil
}

// openObject resolves an s3://bucket/key ref through the OpenBucket hook.
func (rv *Resolver) openObject(ctx context.Context, u *url.URL) (*Handle, error) {
	if rv.OpenBucket == nil {
		return nil, fmt.Errorf("dataio: s3 ref %q: no bucket opener configured: %w", u, ErrUnresolvedSource)
	}
	store, err := rv.OpenBucket(ctx, u.Host)
	if err != nil {
		return nil, fmt.Errorf("dataio: open bucket %s: %w", u.Host, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("dataio: open object %s: %w", u, err)
	}
	rv.logger().Debug("fetched object source", "bucket", u.Host, "key", key)
	return &Handle{r: rc, closer: rc, name: u.String()}, nil
}

// firstTarMember reads a gzip tar stream and returns the first regular
// file as an in-memory handle. The archive body is fully consumed up to
// that member; no member selection beyond "first" is offered.
func firstTarMember(body io.Reader, ref string) (*Handle, error) {
	gz, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("dataio: %s: gunzip: %w", ref, err)
	}
	defer gz.Close()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("dataio: %s: archive has no regular members", ref)
		}
		if err != nil {
			return nil, fmt.Errorf("dataio: %s: read archive: %w", ref, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("dataio: %s: extract %s: %w", ref, hdr.Name, err)
		}
		return &Handle{r: bytes.NewReader(data), name: hdr.Name}, nil
	}
}

// urlPath extracts the path component of a URL for suffix checks, falling
// back to the raw ref when it does not parse.
func urlPath(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return u.Path
}

// streamName reports the name a caller-supplied stream exposes, if any.
func streamName(v any) string {
	if n, ok := v.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}
