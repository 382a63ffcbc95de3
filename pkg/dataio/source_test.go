package dataio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClassifyPath(t *testing.T) {
	path := writeTempFile(t, "data.csv", "a,b\n")
	if k := Classify(context.Background(), Ref(path)); k != KindPath {
		t.Fatalf("got %v, want %v", k, KindPath)
	}
}

func TestClassifyStream(t *testing.T) {
	src := FromReader(strings.NewReader("x"))
	if k := Classify(context.Background(), src); k != KindStream {
		t.Fatalf("got %v, want %v", k, KindStream)
	}
	src = FromWriter(os.Stderr)
	if k := Classify(context.Background(), src); k != KindStream {
		t.Fatalf("got %v, want %v", k, KindStream)
	}
}

func TestClassifyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if k := Classify(context.Background(), Ref(srv.URL+"/data.json")); k != KindURL {
		t.Fatalf("got %v, want %v", k, KindURL)
	}
}

func TestClassifyUnreachableHostIsNotURL(t *testing.T) {
	// Connection refused must classify as "not a url", never as an error.
	if k := Classify(context.Background(), Ref("http://127.0.0.1:1/data.json")); k != KindUnknown {
		t.Fatalf("got %v, want %v", k, KindUnknown)
	}
}

func TestClassifyMissingPath(t *testing.T) {
	if k := Classify(context.Background(), Ref("no/such/file.csv")); k != KindUnknown {
		t.Fatalf("got %v, want %v", k, KindUnknown)
	}
	if k := Classify(context.Background(), Source{}); k != KindUnknown {
		t.Fatalf("zero source: got %v, want %v", k, KindUnknown)
	}
}

func TestClassifyS3NeedsBucketOpener(t *testing.T) {
	ctx := context.Background()
	if k := Classify(ctx, Ref("s3://bucket/key.bin")); k != KindUnknown {
		t.Fatalf("without opener: got %v, want %v", k, KindUnknown)
	}
	rv := &Resolver{OpenBucket: func(context.Context, string) (ObjectOpener, error) { return nil, nil }}
	if k := rv.Classify(ctx, Ref("s3://bucket/key.bin")); k != KindURL {
		t.Fatalf("with opener: got %v, want %v", k, KindURL)
	}
}

func TestCanonicalPath(t *testing.T) {
	if p, err := CanonicalPath(Ref("dir//file.csv")); err != nil || p != filepath.Clean("dir//file.csv") {
		t.Fatalf("got %q, %v", p, err)
	}

	f, err := os.CreateTemp(t.TempDir(), "named-*")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if p, err := CanonicalPath(FromReader(f)); err != nil || p != f.Name() {
		t.Fatalf("got %q, %v; want %q", p, err, f.Name())
	}

	if _, err := CanonicalPath(FromReader(strings.NewReader("x"))); err == nil {
		t.Fatal("expected error for unnamed stream")
	}
	if _, err := CanonicalPath(Ref("https://example.com/a.csv")); err == nil {
		t.Fatal("expected error for url ref")
	}
}
