package jsonio

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/verdantbio/datakit/pkg/dataio"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "doc.json")

	in := map[string]any{
		"name": "bgc-42",
		"tags": []any{"nrps", "pks"},
		"meta": map[string]any{"score": 0.93, "cluster": float64(7)},
	}
	if ok, err := Write(ctx, dataio.Ref(path), in); err != nil || !ok {
		t.Fatalf("Write = %v, %v", ok, err)
	}

	out, err := Read(ctx, dataio.Ref(path))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("got %v, want %v", out, in)
	}
}

func TestReadFromStream(t *testing.T) {
	out, err := Read(context.Background(), dataio.FromReader(strings.NewReader(`[1, 2, 3]`)))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out, []any{1.0, 2.0, 3.0}) {
		t.Fatalf("got %v", out)
	}
}

func TestRepair(t *testing.T) {
	// Trailing comma and unquoted key: invalid JSON that a repair pass fixes.
	src := func() dataio.Source {
		return dataio.FromReader(strings.NewReader(`{name: "x", "n": 1,}`))
	}

	if _, err := Read(context.Background(), src()); err == nil {
		t.Fatal("expected decode error without repair")
	}

	out, err := Read(context.Background(), src(), WithRepair())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"name": "x", "n": 1.0}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestQuery(t *testing.T) {
	src := dataio.FromReader(strings.NewReader(`{"clusters": [{"id": "a"}, {"id": "b"}]}`))
	out, err := Read(context.Background(), src, WithQuery(".clusters[1].id"))
	if err != nil {
		t.Fatal(err)
	}
	if out != "b" {
		t.Fatalf("got %v", out)
	}
}

func TestQueryParseError(t *testing.T) {
	src := dataio.FromReader(strings.NewReader(`{}`))
	_, err := Read(context.Background(), src, WithQuery(".[broken"))
	var de *dataio.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want *dataio.DecodeError", err)
	}
}

func TestDecodeError(t *testing.T) {
	src := dataio.FromReader(strings.NewReader(`{"unterminated`))
	_, err := Read(context.Background(), src)
	var de *dataio.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want *dataio.DecodeError", err)
	}
	if de.Format != "json" {
		t.Fatalf("format = %q", de.Format)
	}
}

func TestWriteMissingDirReturnsFalse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "doc.json")
	ok, err := Write(context.Background(), dataio.Ref(path), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected false for missing target directory")
	}
}

func TestWriteURLRejected(t *testing.T) {
	_, err := Write(context.Background(), dataio.Ref("https://example.com/doc.json"), map[string]any{})
	if !errors.Is(err, dataio.ErrUnsupportedOperation) {
		t.Fatalf("got %v, want ErrUnsupportedOperation", err)
	}
}

func TestReadUnresolvedSource(t *testing.T) {
	_, err := Read(context.Background(), dataio.Ref("no/such/doc.json"))
	if !errors.Is(err, dataio.ErrUnresolvedSource) {
		t.Fatalf("got %v, want ErrUnresolvedSource", err)
	}
}

func TestWriteIndent(t *testing.T) {
	var sb strings.Builder
	ok, err := Write(context.Background(), dataio.FromWriter(&sb), map[string]any{"a": 1.0}, WithIndent("  "))
	if err != nil || !ok {
		t.Fatalf("Write = %v, %v", ok, err)
	}
	if !strings.Contains(sb.String(), "\n  \"a\"") {
		t.Fatalf("not indented: %q", sb.String())
	}
}
