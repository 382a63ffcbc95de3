// Package csvio reads and writes delimited-text files (CSV, TSV, plain
// text tables) through the dataio source abstraction.
package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"io/fs"
	"strings"

	"github.com/verdantbio/datakit/pkg/dataio"
	"github.com/verdantbio/datakit/pkg/table"
)

const formatName = "csv"

// Extensions lists the file extensions the adapters recognize.
func Extensions() []string { return []string{"txt", "csv", "tsv"} }

// Option configures a reader or writer.
type Option func(*options)

type options struct {
	comma    rune
	noHeader bool
	resolver *dataio.Resolver
}

// WithComma sets the field separator. The default is ',', or '\t' when
// the source path ends in ".tsv".
func WithComma(c rune) Option { return func(o *options) { o.comma = c } }

// WithoutHeader treats the first row as data instead of column names.
func WithoutHeader() Option { return func(o *options) { o.noHeader = true } }

// WithResolver sets the resolver used to open the source.
func WithResolver(rv *dataio.Resolver) Option { return func(o *options) { o.resolver = rv } }

func buildOptions(src dataio.Source, opts []Option) options {
	o := options{resolver: dataio.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if o.comma == 0 {
		o.comma = ','
		if p, err := dataio.CanonicalPath(src); err == nil && strings.HasSuffix(p, ".tsv") {
			o.comma = '\t'
		}
	}
	return o
}

// Reader decodes a delimited-text source into a *table.Table.
type Reader struct {
	src  dataio.Source
	opts options
}

// NewReader builds a reader over src. No stream is opened until Read.
func NewReader(src dataio.Source, opts ...Option) *Reader {
	return &Reader{src: src, opts: buildOptions(src, opts)}
}

// Extensions implements dataio.Reader.
func (r *Reader) Extensions() []string { return Extensions() }

// Read implements dataio.Reader. The decoded value is a *table.Table.
func (r *Reader) Read(ctx context.Context) (any, error) { return r.ReadTable(ctx) }

// ReadTable decodes the source.
func (r *Reader) ReadTable(ctx context.Context) (*table.Table, error) {
	h, err := r.opts.resolver.OpenRead(ctx, r.src, dataio.ReadText)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	cr := csv.NewReader(h)
	cr.Comma = r.opts.comma
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &dataio.DecodeError{Format: formatName, Err: err}
	}

	t := &table.Table{}
	if len(records) == 0 {
		return t, nil
	}
	if r.opts.noHeader {
		t.Rows = records
		return t, nil
	}
	t.Columns = records[0]
	t.Rows = records[1:]
	return t, nil
}

// Writer encodes a *table.Table into a delimited-text target.
type Writer struct {
	src  dataio.Source
	opts options
}

// NewWriter builds a writer over src. No stream is opened until Write.
func NewWriter(src dataio.Source, opts ...Option) *Writer {
	return &Writer{src: src, opts: buildOptions(src, opts)}
}

// Extensions implements dataio.Writer.
func (w *Writer) Extensions() []string { return Extensions() }

// Write implements dataio.Writer. v must be a *table.Table.
func (w *Writer) Write(ctx context.Context, v any) (bool, error) {
	t, ok := v.(*table.Table)
	if !ok {
		return false, &dataio.EncodeError{Format: formatName, Err: errors.New("value is not a *table.Table")}
	}
	return w.WriteTable(ctx, t)
}

// WriteTable encodes t. It returns (false, nil) when the target path's
// directory does not exist; see dataio.Writer for the full contract.
func (w *Writer) WriteTable(ctx context.Context, t *table.Table) (bool, error) {
	h, err := w.opts.resolver.OpenWrite(ctx, w.src, dataio.WriteText)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer h.Close()

	cw := csv.NewWriter(h)
	cw.Comma = w.opts.comma
	if !w.opts.noHeader && len(t.Columns) > 0 {
		if err := cw.Write(t.Columns); err != nil {
			return false, &dataio.EncodeError{Format: formatName, Err: err}
		}
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return false, &dataio.EncodeError{Format: formatName, Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return false, &dataio.EncodeError{Format: formatName, Err: err}
	}
	return true, nil
}

// Read decodes a delimited-text source in one call.
func Read(ctx context.Context, src dataio.Source, opts ...Option) (*table.Table, error) {
	return NewReader(src, opts...).ReadTable(ctx)
}

// Write encodes t to a delimited-text target in one call.
func Write(ctx context.Context, src dataio.Source, t *table.Table, opts ...Option) (bool, error) {
	return NewWriter(src, opts...).WriteTable(ctx, t)
}
