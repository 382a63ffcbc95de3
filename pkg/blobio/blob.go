// Package blobio reads and writes serialized-object blobs through the
// dataio source abstraction. Values are encoded with msgpack; arbitrary Go
// values round-trip, and device-tagged tensor payloads can be forced onto
// the CPU during decode.
package blobio

import (
	"context"
	"errors"
	"io/fs"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/verdantbio/datakit/pkg/dataio"
)

const formatName = "blob"

// Extensions lists the file extensions the adapters recognize.
func Extensions() []string { return []string{"bin", "msgpack"} }

// Option configures a reader or writer.
type Option func(*options)

type options struct {
	cpuOnly  bool
	resolver *dataio.Resolver
}

// WithCPUOnly rewrites device tags in decoded payloads to "cpu". Payloads
// serialized on an accelerator stay loadable on machines without one.
func WithCPUOnly() Option { return func(o *options) { o.cpuOnly = true } }

// WithResolver sets the resolver used to open the source.
func WithResolver(rv *dataio.Resolver) Option { return func(o *options) { o.resolver = rv } }

func buildOptions(opts []Option) options {
	o := options{resolver: dataio.Default}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Reader decodes a serialized-object source.
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

// Read implements dataio.Reader. Maps decode to map[string]any, arrays to
// []any, the msgpack defaults for untyped decoding.
func (r *Reader) Read(ctx context.Context) (any, error) {
	var v any
	if err := r.decode(ctx, &v); err != nil {
		return nil, err
	}
	if r.opts.cpuOnly {
		forceCPU(v)
	}
	return v, nil
}

// ReadInto decodes the source into ptr, preserving concrete types.
func (r *Reader) ReadInto(ctx context.Context, ptr any) error {
	if err := r.decode(ctx, ptr); err != nil {
		return err
	}
	if r.opts.cpuOnly {
		if t, ok := ptr.(*Tensor); ok {
			t.Device = DeviceCPU
		}
	}
	return nil
}

func (r *Reader) decode(ctx context.Context, ptr any) error {
	h, err := r.opts.resolver.OpenRead(ctx, r.src, dataio.ReadBinary)
	if err != nil {
		return err
	}
	defer h.Close()

	if err := msgpack.NewDecoder(h).Decode(ptr); err != nil {
		return &dataio.DecodeError{Format: formatName, Err: err}
	}
	return nil
}

// forceCPU walks a decoded payload and rewrites every string "device" tag
// to "cpu". Only container values are visited; everything else is left
// untouched.
func forceCPU(v any) {
	switch val := v.(type) {
	case map[string]any:
		if _, ok := val[tensorDeviceKey].(string); ok {
			val[tensorDeviceKey] = DeviceCPU
		}
		for _, elem := range val {
			forceCPU(elem)
		}
	case []any:
		for _, elem := range val {
			forceCPU(elem)
		}
	}
}

// Writer encodes a value as a serialized-object blob.
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
	h, err := w.opts.resolver.OpenWrite(ctx, w.src, dataio.WriteBinary)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer h.Close()

	if err := msgpack.NewEncoder(h).Encode(v); err != nil {
		return false, &dataio.EncodeError{Format: formatName, Err: err}
	}
	return true, nil
}

// Read decodes a serialized-object source in one call.
func Read(ctx context.Context, src dataio.Source, opts ...Option) (any, error) {
	return NewReader(src, opts...).Read(ctx)
}

// ReadInto decodes a serialized-object source into ptr in one call.
func ReadInto(ctx context.Context, src dataio.Source, ptr any, opts ...Option) error {
	return NewReader(src, opts...).ReadInto(ctx, ptr)
}

// Write encodes v to a serialized-object target in one call.
func Write(ctx context.Context, src dataio.Source, v any, opts ...Option) (bool, error) {
	return NewWriter(src, opts...).Write(ctx, v)
}
