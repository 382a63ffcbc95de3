// Package h5io reads and writes HDF5 array stores through the dataio
// source abstraction. A file is modeled as named float64 datasets:
// writing accepts an Array (stored under the dataset name "data") or a
// map[string]Array; reading returns the map, collapsed to the bare Array
// when the file holds a single dataset.
//
// The underlying library needs a real filesystem path. Stream and URL
// sources are spilled to a temporary file first, and writes always go
// through one, so targets may also be plain streams.
package h5io

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gonum.org/v1/hdf5"

	"github.com/verdantbio/datakit/pkg/dataio"
)

const (
	formatName = "hdf5"

	// defaultDataset holds a bare Array written without a name.
	defaultDataset = "data"
)

// Extensions lists the file extensions the adapters recognize.
func Extensions() []string { return []string{"h5", "hdf5"} }

// Array is one dense float64 dataset. Data is flat in row-major order;
// Dims gives the extent of each axis.
type Array struct {
	Dims []uint
	Data []float64
}

// Len reports the number of elements the dims describe.
func (a Array) Len() int {
	if len(a.Dims) == 0 {
		return 0
	}
	n := uint(1)
	for _, d := range a.Dims {
		n *= d
	}
	return int(n)
}

// Option configures a reader or writer.
type Option func(*options)

type options struct {
	resolver *dataio.Resolver
}

// WithResolver sets the resolver used to open the source.
func WithResolver(rv *dataio.Resolver) Option { return func(o *options) { o.resolver = rv } }

func buildOptions(opts []Option) options {
	o := options{resolver: dataio.Default}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Reader decodes an HDF5 source.
type Reader struct {
	src  dataio.Source
	opts options
}

// NewReader builds a reader over src. Nothing is opened until Read.
func NewReader(src dataio.Source, opts ...Option) *Reader {
	return &Reader{src: src, opts: buildOptions(opts)}
}

// Extensions implements dataio.Reader.
func (r *Reader) Extensions() []string { return Extensions() }

// Read implements dataio.Reader. The decoded value is a map[string]Array,
// or a bare Array when the file holds exactly one dataset.
func (r *Reader) Read(ctx context.Context) (any, error) {
	sets, err := r.ReadSets(ctx)
	if err != nil {
		return nil, err
	}
	if len(sets) == 1 {
		for _, a := range sets {
			return a, nil
		}
	}
	return sets, nil
}

// ReadSets decodes every dataset in the file.
func (r *Reader) ReadSets(ctx context.Context) (map[string]Array, error) {
	path, cleanup, err := r.localPath(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &dataio.DecodeError{Format: formatName, Err: err}
	}
	defer f.Close()

	n, err := f.NumObjects()
	if err != nil {
		return nil, &dataio.DecodeError{Format: formatName, Err: err}
	}
	sets := make(map[string]Array, n)
	for i := uint(0); i < n; i++ {
		name, err := f.ObjectNameByIndex(i)
		if err != nil {
			return nil, &dataio.DecodeError{Format: formatName, Err: err}
		}
		a, err := readDataset(f, name)
		if err != nil {
			return nil, err
		}
		sets[name] = a
	}
	return sets, nil
}

func readDataset(f *hdf5.File, name string) (Array, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return Array{}, &dataio.DecodeError{Format: formatName, Err: err}
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return Array{}, &dataio.DecodeError{Format: formatName, Err: err}
	}
	a := Array{Dims: dims}
	a.Data = make([]float64, a.Len())
	if a.Len() > 0 {
		if err := dset.Read(&a.Data); err != nil {
			return Array{}, &dataio.DecodeError{Format: formatName, Err: err}
		}
	}
	return a, nil
}

// localPath produces a real filesystem path for the source, spilling
// stream and URL sources to a temporary file. cleanup is never nil.
func (r *Reader) localPath(ctx context.Context) (path string, cleanup func(), err error) {
	if p, perr := dataio.CanonicalPath(r.src); perr == nil {
		if _, serr := os.Stat(p); serr == nil {
			return p, func() {}, nil
		}
	}
	h, err := r.opts.resolver.OpenRead(ctx, r.src, dataio.ReadBinary)
	if err != nil {
		return "", func() {}, err
	}
	defer h.Close()

	tmp, err := os.CreateTemp("", "datakit-*.h5")
	if err != nil {
		return "", func() {}, fmt.Errorf("h5io: spill source: %w", err)
	}
	if _, err := io.Copy(tmp, h); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", func() {}, fmt.Errorf("h5io: spill source: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", func() {}, fmt.Errorf("h5io: spill source: %w", err)
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

// Writer encodes float64 datasets into an HDF5 target.
type Writer struct {
	src  dataio.Source
	opts options
}

// NewWriter builds a writer over src. Nothing is opened until Write.
func NewWriter(src dataio.Source, opts ...Option) *Writer {
	return &Writer{src: src, opts: buildOptions(opts)}
}

// Extensions implements dataio.Writer.
func (w *Writer) Extensions() []string { return Extensions() }

// Write implements dataio.Writer. v must be an Array or a map[string]Array.
func (w *Writer) Write(ctx context.Context, v any) (bool, error) {
	var sets map[string]Array
	switch val := v.(type) {
	case Array:
		sets = map[string]Array{defaultDataset: val}
	case *Array:
		sets = map[string]Array{defaultDataset: *val}
	case map[string]Array:
		sets = val
	default:
		return false, &dataio.EncodeError{Format: formatName,
			Err: fmt.Errorf("value is %T, want Array or map[string]Array", v)}
	}
	return w.WriteSets(ctx, sets)
}

// WriteSets encodes the named datasets. The file is assembled in a
// temporary location and streamed into the target handle, so the target
// honors the usual contract: (false, nil) when its directory is missing,
// ErrUnsupportedOperation for URLs.
func (w *Writer) WriteSets(ctx context.Context, sets map[string]Array) (bool, error) {
	h, err := w.opts.resolver.OpenWrite(ctx, w.src, dataio.WriteBinary)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer h.Close()

	tmp, err := os.CreateTemp("", "datakit-*.h5")
	if err != nil {
		return false, &dataio.EncodeError{Format: formatName, Err: err}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := writeFile(tmpPath, sets); err != nil {
		return false, err
	}

	rf, err := os.Open(tmpPath)
	if err != nil {
		return false, &dataio.EncodeError{Format: formatName, Err: err}
	}
	defer rf.Close()
	if _, err := io.Copy(h, rf); err != nil {
		return false, &dataio.EncodeError{Format: formatName, Err: err}
	}
	return true, nil
}

func writeFile(path string, sets map[string]Array) error {
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return &dataio.EncodeError{Format: formatName, Err: err}
	}
	defer f.Close()

	for name, a := range sets {
		if len(a.Data) != a.Len() {
			return &dataio.EncodeError{Format: formatName,
				Err: fmt.Errorf("dataset %s: %d values for dims %v", name, len(a.Data), a.Dims)}
		}
		if err := writeDataset(f, name, a); err != nil {
			return err
		}
	}
	return nil
}

func writeDataset(f *hdf5.File, name string, a Array) error {
	space, err := hdf5.CreateSimpleDataspace(a.Dims, nil)
	if err != nil {
		return &dataio.EncodeError{Format: formatName, Err: err}
	}
	defer space.Close()

	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return &dataio.EncodeError{Format: formatName, Err: err}
	}
	defer dset.Close()

	if len(a.Data) > 0 {
		if err := dset.Write(&a.Data); err != nil {
			return &dataio.EncodeError{Format: formatName, Err: err}
		}
	}
	return nil
}

// Read decodes an HDF5 source in one call.
func Read(ctx context.Context, src dataio.Source, opts ...Option) (any, error) {
	return NewReader(src, opts...).Read(ctx)
}

// ReadSets decodes every dataset of an HDF5 source in one call.
func ReadSets(ctx context.Context, src dataio.Source, opts ...Option) (map[string]Array, error) {
	return NewReader(src, opts...).ReadSets(ctx)
}

// Write encodes v (Array or map[string]Array) to an HDF5 target in one call.
func Write(ctx context.Context, src dataio.Source, v any, opts ...Option) (bool, error) {
	return NewWriter(src, opts...).Write(ctx, v)
}
