package dataio

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenReadFile(t *testing.T) {
	path := writeTempFile(t, "in.txt", "payload")
	h, err := OpenRead(context.Background(), Ref(path), ReadText)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if !h.Owned() {
		t.Error("file handle should be owned by the resolver")
	}
	if h.Name() != path {
		t.Errorf("Name() = %q, want %q", h.Name(), path)
	}
	got, err := io.ReadAll(h)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q", got)
	}
}

// closeRecorder flags whether Close was called on a borrowed stream.
type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestOpenReadBorrowedStreamNotClosed(t *testing.T) {
	rec := &closeRecorder{Reader: strings.NewReader("x")}
	h, err := OpenRead(context.Background(), FromReader(rec), ReadBinary)
	if err != nil {
		t.Fatal(err)
	}
	if h.Owned() {
		t.Error("borrowed stream must not be owned")
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Fatal("Close must be idempotent:", err)
	}
	if rec.closed {
		t.Error("resolver closed a stream it did not open")
	}
}

func TestOpenReadUnresolved(t *testing.T) {
	_, err := OpenRead(context.Background(), Ref("no/such/file.json"), ReadText)
	if !errors.Is(err, ErrUnresolvedSource) {
		t.Fatalf("got %v, want ErrUnresolvedSource", err)
	}
	_, err = OpenRead(context.Background(), Source{}, ReadText)
	if !errors.Is(err, ErrUnresolvedSource) {
		t.Fatalf("zero source: got %v, want ErrUnresolvedSource", err)
	}
}

func TestOpenReadWrongMode(t *testing.T) {
	_, err := OpenRead(context.Background(), Ref("x"), WriteText)
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("got %v, want ErrUnsupportedOperation", err)
	}
}

func TestOpenReadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "remote body")
	}))
	defer srv.Close()

	h, err := OpenRead(context.Background(), Ref(srv.URL+"/doc.json"), ReadText)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	got, err := io.ReadAll(h)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "remote body" {
		t.Fatalf("got %q", got)
	}
}

// tarGz builds a gzip tar archive holding the given members in order.
func tarGz(t *testing.T, members map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range order {
		body := members[name]
		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(body)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(tw, body); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpenReadURLTarball(t *testing.T) {
	archive := tarGz(t,
		map[string]string{"first.csv": "a,b\n1,2\n", "second.csv": "x\n"},
		[]string{"first.csv", "second.csv"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	h, err := OpenRead(context.Background(), Ref(srv.URL+"/bundle.tar.gz"), ReadBinary)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if h.Name() != "first.csv" {
		t.Errorf("Name() = %q, want first member name", h.Name())
	}
	got, err := io.ReadAll(h)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Fatalf("got %q, want first member body", got)
	}
}

func TestOpenWriteURLRejected(t *testing.T) {
	for _, ref := range []string{"https://example.com/out.csv", "s3://bucket/out.csv"} {
		_, err := OpenWrite(context.Background(), Ref(ref), WriteText)
		if !errors.Is(err, ErrUnsupportedOperation) {
			t.Fatalf("%s: got %v, want ErrUnsupportedOperation", ref, err)
		}
	}
}

func TestOpenWriteTruncates(t *testing.T) {
	path := writeTempFile(t, "out.txt", "old old old")
	h, err := OpenWrite(context.Background(), Ref(path), WriteText)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(h, "new"); err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	h2, err := OpenRead(context.Background(), Ref(path), ReadText)
	if err != nil {
		t.Fatal(err)
	}
	defer h2.Close()
	got, _ := io.ReadAll(h2)
	if string(got) != "new" {
		t.Fatalf("got %q, want truncated content", got)
	}
}

// memOpener is an in-memory ObjectOpener for s3 resolution tests.
type memOpener map[string]string

func (m memOpener) Open(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := m[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestOpenReadS3(t *testing.T) {
	rv := &Resolver{
		OpenBucket: func(_ context.Context, bucket string) (ObjectOpener, error) {
			if bucket != "datasets" {
				return nil, errors.New("unknown bucket")
			}
			return memOpener{"raw/table.csv": "a,b\n"}, nil
		},
	}
	h, err := rv.OpenRead(context.Background(), Ref("s3://datasets/raw/table.csv"), ReadBinary)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	got, _ := io.ReadAll(h)
	if string(got) != "a,b\n" {
		t.Fatalf("got %q", got)
	}

	// Without the hook the same ref is unresolvable.
	_, err = OpenRead(context.Background(), Ref("s3://datasets/raw/table.csv"), ReadBinary)
	if !errors.Is(err, ErrUnresolvedSource) {
		t.Fatalf("got %v, want ErrUnresolvedSource", err)
	}
}
