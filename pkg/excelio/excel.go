// Package excelio reads and writes spreadsheet workbooks (xlsx family)
// through the dataio source abstraction. One sheet maps to one
// *table.Table; cell typing beyond strings is delegated to the workbook
// library.
package excelio

import (
	"context"
	"errors"
	"io/fs"

	"github.com/xuri/excelize/v2"

	"github.com/verdantbio/datakit/pkg/dataio"
	"github.com/verdantbio/datakit/pkg/table"
)

const (
	formatName   = "excel"
	defaultSheet = "Sheet1"
)

// Extensions lists the file extensions the adapters recognize.
func Extensions() []string { return []string{"xlsx", "xlsm", "xltx", "xltm"} }

// Option configures a reader or writer.
type Option func(*options)

type options struct {
	sheet    string
	resolver *dataio.Resolver
}

// WithSheet selects the sheet to read or write. Readers default to the
// workbook's first sheet; writers default to "Sheet1".
func WithSheet(name string) Option { return func(o *options) { o.sheet = name } }

// WithResolver sets the resolver used to open the source.
func WithResolver(rv *dataio.Resolver) Option { return func(o *options) { o.resolver = rv } }

func buildOptions(opts []Option) options {
	o := options{resolver: dataio.Default}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Reader decodes one sheet of a workbook into a *table.Table.
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

// Read implements dataio.Reader. The decoded value is a *table.Table.
func (r *Reader) Read(ctx context.Context) (any, error) { return r.ReadTable(ctx) }

// ReadTable decodes the selected sheet. The first row becomes the column
// names; short rows are padded so the table stays rectangular.
func (r *Reader) ReadTable(ctx context.Context) (*table.Table, error) {
	h, err := r.opts.resolver.OpenRead(ctx, r.src, dataio.ReadBinary)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	f, err := excelize.OpenReader(h)
	if err != nil {
		return nil, &dataio.DecodeError{Format: formatName, Err: err}
	}
	defer f.Close()

	sheet := r.opts.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &dataio.DecodeError{Format: formatName, Err: err}
	}

	t := &table.Table{}
	if len(rows) == 0 {
		return t, nil
	}
	t.Columns = rows[0]
	for _, row := range rows[1:] {
		t.Append(row...)
	}
	return t, nil
}

// Writer encodes a *table.Table into one sheet of a new workbook.
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
	h, err := w.opts.resolver.OpenWrite(ctx, w.src, dataio.WriteBinary)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer h.Close()

	f := excelize.NewFile()
	defer f.Close()

	sheet := w.opts.sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if _, err := f.NewSheet(sheet); err != nil {
			return false, &dataio.EncodeError{Format: formatName, Err: err}
		}
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return false, &dataio.EncodeError{Format: formatName, Err: err}
		}
	}

	if len(t.Columns) > 0 {
		if err := f.SetSheetRow(sheet, "A1", &t.Columns); err != nil {
			return false, &dataio.EncodeError{Format: formatName, Err: err}
		}
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return false, &dataio.EncodeError{Format: formatName, Err: err}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return false, &dataio.EncodeError{Format: formatName, Err: err}
		}
	}

	if err := f.Write(h); err != nil {
		return false, &dataio.EncodeError{Format: formatName, Err: err}
	}
	return true, nil
}

// Read decodes one sheet of a workbook in one call.
func Read(ctx context.Context, src dataio.Source, opts ...Option) (*table.Table, error) {
	return NewReader(src, opts...).ReadTable(ctx)
}

// Write encodes t to a workbook in one call.
func Write(ctx context.Context, src dataio.Source, t *table.Table, opts ...Option) (bool, error) {
	return NewWriter(src, opts...).WriteTable(ctx, t)
}
