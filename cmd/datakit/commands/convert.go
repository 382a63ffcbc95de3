package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdantbio/datakit/pkg/formats"
	"github.com/verdantbio/datakit/pkg/table"
)

var convertCmd = &cobra.Command{
	Use:   "convert <source> <dest>",
	Short: "Convert a dataset between file formats",
	Long: `Convert reads the source in the format implied by its extension and
writes it to dest in the format implied by the dest extension.

The source may be a local path or an http(s) URL. The destination
must be a local path.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]

	v, err := formats.Read(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if d, ok := formats.ForPath(dst); ok {
		v = coerce(v, d.Name)
	}
	ok, err := formats.Write(cmd.Context(), dst, v)
	if err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if !ok {
		return fmt.Errorf("write %s: parent directory does not exist", dst)
	}
	logger().Debug("converted", "src", src, "dst", dst)
	return nil
}

// coerce bridges the tabular and document value shapes: tables become
// record lists for document targets, record lists become tables for
// tabular targets. Values that fit the target already pass through.
func coerce(v any, format string) any {
	tabular := format == "csv" || format == "excel"
	switch val := v.(type) {
	case *table.Table:
		if !tabular {
			return val.Records()
		}
	case []map[string]string:
		if tabular {
			return table.FromRecords(val)
		}
	case []any:
		if tabular {
			recs := make([]map[string]string, 0, len(val))
			for _, elem := range val {
				m, ok := elem.(map[string]any)
				if !ok {
					return v
				}
				rec := make(map[string]string, len(m))
				for k, field := range m {
					rec[k] = fmt.Sprint(field)
				}
				recs = append(recs, rec)
			}
			return table.FromRecords(recs)
		}
	}
	return v
}
