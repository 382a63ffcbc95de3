// Package yamlio reads and writes YAML configuration documents through the
// dataio source abstraction. An order-preserving decode mode is available
// for configs where key order matters.
package yamlio

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/goccy/go-yaml"

	"github.com/verdantbio/datakit/pkg/dataio"
)

const formatName = "yaml"

// Extensions lists the file extensions the adapters recognize.
func Extensions() []string { return []string{"yml", "yaml"} }

// Option configures a reader or writer.
type Option func(*options)

type options struct {
	ordered  bool
	indent   int
	resolver *dataio.Resolver
}

// WithOrdered decodes mappings into yaml.MapSlice so key order survives.
func WithOrdered() Option { return func(o *options) { o.ordered = true } }

// WithIndent sets the indentation width for written documents.
// The default is 2.
func WithIndent(n int) Option { return func(o *options) { o.indent = n } }

// WithResolver sets the resolver used to open the source.
func WithResolver(rv *dataio.Resolver) Option { return func(o *options) { o.resolver = rv } }

func buildOptions(opts []Option) options {
	o := options{indent: 2, resolver: dataio.Default}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Reader decodes a YAML source.
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

// Read implements dataio.Reader. Mappings decode to map[string]any, or to
// yaml.MapSlice in ordered mode. An empty document decodes to nil.
func (r *Reader) Read(ctx context.Context) (any, error) {
	h, err := r.opts.resolver.OpenRead(ctx, r.src, dataio.ReadText)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	var decOpts []yaml.DecodeOption
	if r.opts.ordered {
		decOpts = append(decOpts, yaml.UseOrderedMap())
	}

	var v any
	if err := yaml.NewDecoder(h, decOpts...).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &dataio.DecodeError{Format: formatName, Err: err}
	}
	return v, nil
}

// Writer encodes a value as a YAML document.
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

	enc := yaml.NewEncoder(h, yaml.Indent(w.opts.indent))
	if err := enc.Encode(v); err != nil {
		enc.Close()
		return false, &dataio.EncodeError{Format: formatName, Err: err}
	}
	if err := enc.Close(); err != nil {
		return false, &dataio.EncodeError{Format: formatName, Err: err}
	}
	return true, nil
}

// Read decodes a YAML source in one call.
func Read(ctx context.Context, src dataio.Source, opts ...Option) (any, error) {
	return NewReader(src, opts...).Read(ctx)
}

// Write encodes v to a YAML target in one call.
func Write(ctx context.Context, src dataio.Source, v any, opts ...Option) (bool, error) {
	return NewWriter(src, opts...).Write(ctx, v)
}
