package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdantbio/datakit/pkg/cli"
	"github.com/verdantbio/datakit/pkg/formats"
	"github.com/verdantbio/datakit/pkg/h5io"
	"github.com/verdantbio/datakit/pkg/table"
)

var inspectRows int

var inspectCmd = &cobra.Command{
	Use:   "inspect <source>",
	Short: "Summarize a dataset",
	Long: `Inspect reads the source and prints a short summary: the detected
format, the value shape, and for local files the size on disk.
Tabular formats also print a preview of the first rows.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectRows, "rows", 8, "max preview rows for tabular data")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	src := args[0]

	desc, ok := formats.ForPath(src)
	if !ok {
		return fmt.Errorf("inspect %s: unknown format", src)
	}
	v, err := formats.Read(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	styles := cli.NewStyles(cli.DefaultTheme)
	fmt.Println(styles.Label.Render("format:"), desc.Name)
	if fi, err := os.Stat(src); err == nil {
		fmt.Println(styles.Label.Render("size:  "), cli.FormatBytes(fi.Size()))
	}

	switch val := v.(type) {
	case *table.Table:
		rows, cols := val.Shape()
		fmt.Println(styles.Label.Render("shape: "), cli.FormatShape(rows, cols))
		fmt.Println()
		fmt.Print(cli.RenderTable(val, inspectRows, styles))
	case h5io.Array:
		fmt.Println(styles.Label.Render("dims:  "), val.Dims)
	case map[string]h5io.Array:
		fmt.Println(styles.Label.Render("sets:  "), len(val))
		for name, arr := range val {
			fmt.Printf("  %s %v\n", name, arr.Dims)
		}
	case map[string]any:
		fmt.Println(styles.Label.Render("keys:  "), len(val))
	case []any:
		fmt.Println(styles.Label.Render("items: "), len(val))
	default:
		fmt.Println(styles.Label.Render("value: "), fmt.Sprintf("%T", v))
	}
	return nil
}
