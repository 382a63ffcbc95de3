// Package formats is the fixed registry binding file extensions to format
// adapters. The table is enumerated at compile time; there is no runtime
// adapter discovery.
package formats

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/verdantbio/datakit/pkg/blobio"
	"github.com/verdantbio/datakit/pkg/csvio"
	"github.com/verdantbio/datakit/pkg/dataio"
	"github.com/verdantbio/datakit/pkg/excelio"
	"github.com/verdantbio/datakit/pkg/h5io"
	"github.com/verdantbio/datakit/pkg/jsonio"
	"github.com/verdantbio/datakit/pkg/table"
	"github.com/verdantbio/datakit/pkg/yamlio"
)

// Descriptor binds one format to its capability pair. Descriptors are
// stateless; Read and Write use each adapter's default options.
type Descriptor struct {
	// Name is the format tag, e.g. "csv".
	Name string

	// Extensions lists recognized file extensions, without leading dot.
	Extensions []string

	// Read decodes one value from the source.
	Read func(ctx context.Context, src dataio.Source) (any, error)

	// Write encodes one value to the target, under the dataio.Writer
	// contract.
	Write func(ctx context.Context, src dataio.Source, v any) (bool, error)
}

// registry is ordered; the order is what List reports.
var registry = []Descriptor{
	{
		Name:       "csv",
		Extensions: csvio.Extensions(),
		Read: func(ctx context.Context, src dataio.Source) (any, error) {
			return csvio.Read(ctx, src)
		},
		Write: func(ctx context.Context, src dataio.Source, v any) (bool, error) {
			t, err := asTable("csv", v)
			if err != nil {
				return false, err
			}
			return csvio.Write(ctx, src, t)
		},
	},
	{
		Name:       "excel",
		Extensions: excelio.Extensions(),
		Read: func(ctx context.Context, src dataio.Source) (any, error) {
			return excelio.Read(ctx, src)
		},
		Write: func(ctx context.Context, src dataio.Source, v any) (bool, error) {
			t, err := asTable("excel", v)
			if err != nil {
				return false, err
			}
			return excelio.Write(ctx, src, t)
		},
	},
	{
		Name:       "hdf5",
		Extensions: h5io.Extensions(),
		Read: func(ctx context.Context, src dataio.Source) (any, error) {
			return h5io.Read(ctx, src)
		},
		Write: func(ctx context.Context, src dataio.Source, v any) (bool, error) {
			return h5io.Write(ctx, src, v)
		},
	},
	{
		Name:       "json",
		Extensions: jsonio.Extensions(),
		Read: func(ctx context.Context, src dataio.Source) (any, error) {
			return jsonio.Read(ctx, src)
		},
		Write: func(ctx context.Context, src dataio.Source, v any) (bool, error) {
			return jsonio.Write(ctx, src, v)
		},
	},
	{
		Name:       "blob",
		Extensions: blobio.Extensions(),
		Read: func(ctx context.Context, src dataio.Source) (any, error) {
			return blobio.Read(ctx, src)
		},
		Write: func(ctx context.Context, src dataio.Source, v any) (bool, error) {
			return blobio.Write(ctx, src, v)
		},
	},
	{
		Name:       "yaml",
		Extensions: yamlio.Extensions(),
		Read: func(ctx context.Context, src dataio.Source) (any, error) {
			return yamlio.Read(ctx, src)
		},
		Write: func(ctx context.Context, src dataio.Source, v any) (bool, error) {
			return yamlio.Write(ctx, src, v)
		},
	},
}

// asTable coerces a registry write value into a *table.Table.
func asTable(format string, v any) (*table.Table, error) {
	if t, ok := v.(*table.Table); ok {
		return t, nil
	}
	return nil, &dataio.EncodeError{Format: format,
		Err: fmt.Errorf("value is %T, want *table.Table", v)}
}

// List returns the registered descriptors in registry order.
func List() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// ByExtension looks a format up by file extension, with or without the
// leading dot, case-insensitively.
func ByExtension(ext string) (Descriptor, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, d := range registry {
		for _, e := range d.Extensions {
			if e == ext {
				return d, true
			}
		}
	}
	return Descriptor{}, false
}

// ForPath looks a format up by the extension of a path or URL.
func ForPath(p string) (Descriptor, bool) {
	return ByExtension(path.Ext(strings.ReplaceAll(p, "\\", "/")))
}

// Read decodes the file at path, dispatching on its extension.
func Read(ctx context.Context, p string) (any, error) {
	d, ok := ForPath(p)
	if !ok {
		return nil, unknownFormat(p)
	}
	return d.Read(ctx, dataio.Ref(p))
}

// Write encodes v to the file at path, dispatching on its extension.
func Write(ctx context.Context, p string, v any) (bool, error) {
	d, ok := ForPath(p)
	if !ok {
		return false, unknownFormat(p)
	}
	return d.Write(ctx, dataio.Ref(p), v)
}

func unknownFormat(p string) error {
	known := map[string]bool{}
	var exts []string
	for _, d := range registry {
		for _, e := range d.Extensions {
			if !known[e] {
				known[e] = true
				exts = append(exts, e)
			}
		}
	}
	sort.Strings(exts)
	return fmt.Errorf("formats: no adapter for %q (known extensions: %s)", p, strings.Join(exts, ", "))
}
