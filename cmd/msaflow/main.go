// Command msaflow provides a CLI for multiple sequence alignment tables.
//
// Usage:
//
//	msaflow [command] [options]
//
// Commands:
//
//	info        Show alignment statistics
//	convert     Convert between A3M and CSV
//	edit        Apply shape, filter and ranking steps
//	cluster     Cluster rows with DBSCAN or k-means, or search for eps
//	combine     Join alignments horizontally or vertically
//	version     Show version information
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
