// Package main is the entry point for the datakit CLI.
//
// Usage:
//
//	datakit [flags] <command> [args]
//
// Commands:
//
//	convert  - Convert a dataset between file formats
//	inspect  - Summarize a dataset (format, shape, size)
//	fetch    - Download a remote dataset to a local file
package main

import (
	"fmt"
	"os"

	"github.com/verdantbio/datakit/cmd/datakit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
