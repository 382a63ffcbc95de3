// Package jsonio reads and writes JSON documents through the dataio source
// abstraction. Reads can optionally repair malformed input and apply a jq
// filter to the decoded value.
package jsonio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/itchyny/gojq"
	"github.com/kaptinlin/jsonrepair"

	"github.com/verdantbio/datakit/pkg/dataio"
)

const formatName = "json"

// Extensions lists the file extensions the adapters recognize.
func Extensions() []string { return []string{"json"} }

// Option configures a reader or writer.
type Option func(*options)

type options struct {
	repair   bool
	query    string
	indent   string
	resolver *dataio.Resolver
}

// WithRepair retries a failed decode once after running the input through
// a JSON repairer. Only syntax errors trigger the retry.
func WithRepair() Option { return func(o *options) { o.repair = true } }

// WithQuery applies a jq filter to the decoded document and returns the
// filter's first result.
func WithQuery(q string) Option { return func(o *options) { o.query = q } }

// WithIndent pretty-prints written documents with the given indent string.
func WithIndent(indent string) Option { return func(o *options) { o.indent = indent } }

// WithResolver sets the resolver used to open the source.
func WithResolver(rv *dataio.Resolver) Option { return func(o *options) { o.resolver = rv } }

func buildOptions(opts []Option) options {
	o := options{resolver: dataio.Default}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Reader decodes a JSON source.
type Reader struct {
	src  dataio.Source
	opts options
}

// NewReader builds a reader over src. No stream is opened until Read.
func NewReader(src dataio.Source, opts ...Option) *Reader {
	return &Reader{src: src, opts: buildOptions(opts)}
}

// Extensions implements dataio.Reader.
func (r *Reader) Extensions() []string { return Extensions() }

// Read implements dataio.Reader. Objects decode to map[string]any, arrays
// to []any, numbers to float64, per encoding/json defaults.
func (r *Reader) Read(ctx context.Context) (any, error) {
	h, err := r.opts.resolver.OpenRead(ctx, r.src, dataio.ReadText)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	data, err := io.ReadAll(h)
	if err != nil {
		return nil, &dataio.DecodeError{Format: formatName, Err: err}
	}

	var v any
	err = json.Unmarshal(data, &v)
	if err != nil && r.opts.repair && isSyntaxError(err) {
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return nil, &dataio.DecodeError{Format: formatName, Err: fmt.Errorf("repair: %w", rerr)}
		}
		err = json.Unmarshal([]byte(fixed), &v)
	}
	if err != nil {
		return nil, &dataio.DecodeError{Format: formatName, Err: err}
	}

	if r.opts.query != "" {
		return applyQuery(ctx, r.opts.query, v)
	}
	return v, nil
}

// isSyntaxError reports whether err is a JSON syntax error, the only class
// a repair pass can help with.
func isSyntaxError(err error) bool {
	var se *json.SyntaxError
	return errors.As(err, &se)
}

// applyQuery runs the jq filter over v and returns its first result.
func applyQuery(ctx context.Context, query string, v any) (any, error) {
	q, err := gojq.Parse(query)
	if err != nil {
		return nil, &dataio.DecodeError{Format: formatName, Err: fmt.Errorf("parse query %q: %w", query, err)}
	}
	iter := q.RunWithContext(ctx, v)
	out, ok := iter.Next()
	if !ok {
		return nil, nil
	}
	if qerr, isErr := out.(error); isErr {
		return nil, &dataio.DecodeError{Format: formatName, Err: fmt.Errorf("query %q: %w", query, qerr)}
	}
	return out, nil
}

// Writer encodes a value as a JSON document.
type Writer struct {
	src  dataio.Source
	opts options
}

// NewWriter builds a writer over src. No stream is opened until Write.
func NewWriter(src dataio.Source, opts ...Option) *Writer {
	return &Writer{src: src, opts: buildOptions(opts)}
}

// Extensions implements dataio.Writer.
func (w *Writer) Extensions() []string { return Extensions() }

// Write implements dataio.Writer.
func (w *Writer) Write(ctx context.Context, v any) (bool, error) {
	h, err := w.opts.resolver.OpenWrite(ctx, w.src, dataio.WriteText)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer h.Close()

	enc := json.NewEncoder(h)
	if w.opts.indent != "" {
		enc.SetIndent("", w.opts.indent)
	}
	if err := enc.Encode(v); err != nil {
		return false, &dataio.EncodeError{Format: formatName, Err: err}
	}
	return true, nil
}

// Read decodes a JSON source in one call.
func Read(ctx context.Context, src dataio.Source, opts ...Option) (any, error) {
	return NewReader(src, opts...).Read(ctx)
}

// Write encodes v to a JSON target in one call.
func Write(ctx context.Context, src dataio.Source, v any, opts ...Option) (bool, error) {
	return NewWriter(src, opts...).Write(ctx, v)
}
