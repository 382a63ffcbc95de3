package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "datakit",
	Short: "Dataset file toolkit",
	Long: `datakit - read, convert and inspect dataset files.

Supported formats:
  csv    Comma or tab separated tables (.csv, .tsv)
  excel  Excel workbooks (.xlsx)
  hdf5   HDF5 numeric arrays (.h5, .hdf5)
  json   JSON documents (.json)
  blob   MessagePack binaries (.bin, .msgpack)
  yaml   YAML documents (.yaml, .yml)

Sources may be local paths or http(s) URLs. Remote .tar.gz archives
are unpacked to their first member on the fly.

Examples:
  # Convert a CSV file to an Excel workbook
  datakit convert data.csv data.xlsx

  # Summarize a remote dataset
  datakit inspect https://example.com/data/metrics.csv

  # Download a dataset
  datakit fetch s3://bucket/datasets/train.bin train.bin`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// logger returns a stderr logger honoring the verbose flag.
func logger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
