// Package msaflow provides a high-level API for manipulating multiple
// sequence alignments.
//
// This package exposes the MSAFlow engine through a small set of functions
// over alignment tables: shape normalization, row filters, ranking,
// clustering and combination.
//
// Example usage:
//
//	t, err := msaflow.ReadFile("query.a3m")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	t, err = msaflow.FilterGaps(t, 0.25)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := msaflow.ClusterDBSCAN(ctx, t, msaflow.DBSCAN{MinSamples: 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("eps %.1f: %d clusters\n", res.Eps, res.Clusters)
package msaflow

import (
	"context"
	"fmt"
	"io"

	"github.com/aria-lang/msaflow-go/internal/cluster"
	"github.com/aria-lang/msaflow-go/internal/combine"
	"github.com/aria-lang/msaflow-go/internal/encode"
	"github.com/aria-lang/msaflow-go/internal/filter"
	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/aria-lang/msaflow-go/internal/msaio"
	"github.com/aria-lang/msaflow-go/internal/rank"
	"github.com/aria-lang/msaflow-go/internal/shape"
	"github.com/aria-lang/msaflow-go/internal/stats"
)

// Re-export types for convenience
type (
	Table      = msa.Table
	Row        = msa.Row
	Column     = msa.Column
	Encoding   = encode.Encoding
	Target     = shape.Target
	Method     = filter.Method
	DBSCAN     = cluster.DBSCAN
	KMeans     = cluster.KMeans
	GridSearch = cluster.GridSearch
	Clusterer  = cluster.Clusterer
	Result     = cluster.Result
	Part       = combine.Part
	Range      = combine.Range
	Direction  = combine.Direction
	TableStats = stats.TableStats
	Format     = msaio.Format

	// FilterReport counts the rows removed by the filter steps of an Edit.
	FilterReport = filter.Report

	SchemaError           = msa.SchemaError
	InvalidParameterError = msa.InvalidParameterError
	InsufficientDataError = msa.InsufficientDataError
	ShapeMismatchError    = msa.ShapeMismatchError
)

// Constants
const (
	OneHot      = encode.OneHot
	NumVector   = encode.NumVector
	Keep        = filter.Keep
	Remove      = filter.Remove
	Horizontal  = combine.Horizontal
	Vertical    = combine.Vertical
	NoiseLabel  = msa.NoiseLabel
	MaxClusters = cluster.MaxClusters
	A3M         = msaio.A3M
	CSV         = msaio.CSV
)

// Length targets
var (
	First = shape.First
	Max   = shape.Max
	Min   = shape.Min
)

// NewTable creates a table from headers and sequences.
func NewTable(headers, sequences []string) (*Table, error) {
	return msa.New(headers, sequences)
}

// FromSequences creates a table with synthetic headers.
func FromSequences(sequences ...string) *Table {
	return msa.FromSequences(sequences...)
}

// ReadFile loads an A3M, FASTA or CSV file.
func ReadFile(path string) (*Table, error) {
	return msaio.ReadFile(path)
}

// WriteFile saves a table in the format named by the extension.
func WriteFile(path string, t *Table) error {
	return msaio.WriteFile(path, t)
}

// Read parses a table from r.
func Read(r io.Reader, f Format) (*Table, error) {
	return msaio.Read(r, f)
}

// Write serializes a table to w.
func Write(w io.Writer, t *Table, f Format) error {
	return msaio.Write(w, t, f)
}

// Exactly is a length target of n characters.
func Exactly(n int) Target {
	return shape.Exactly(n)
}

// UnifyLength pads or crops every sequence to the target length.
func UnifyLength(t *Table, target Target) (*Table, error) {
	return shape.UnifyLength(t, target)
}

// AdjustDepth extends or crops the table to depth rows.
func AdjustDepth(t *Table, depth int) (*Table, error) {
	return shape.AdjustDepth(t, depth)
}

// SliceSequences keeps characters [start, end) of every sequence.
func SliceSequences(t *Table, start, end int) (*Table, error) {
	return shape.SliceSequences(t, start, end)
}

// FilterGaps keeps rows with a gap fraction at most allowed.
func FilterGaps(t *Table, allowed float64) (*Table, error) {
	return filter.Gaps(t, allowed)
}

// DropDuplicates removes repeated sequences.
func DropDuplicates(t *Table, keepFirst bool) (*Table, error) {
	return filter.Duplicates(t, keepFirst)
}

// FilterIdentity filters rows by identity to the query.
func FilterIdentity(t *Table, threshold float64, method Method) (*Table, error) {
	return filter.Identity(t, threshold, method)
}

// SortGaps sorts non-query rows by gap count.
func SortGaps(t *Table, ascending bool) (*Table, error) {
	return rank.ByGaps(t, ascending)
}

// SortIdentity sorts non-query rows by matches to the query.
func SortIdentity(t *Table, ascending bool) (*Table, error) {
	return rank.ByIdentity(t, ascending)
}

// Encode turns sequences into feature vectors.
func Encode(e Encoding, sequences []string) ([][]float64, error) {
	return encode.Encode(e, sequences)
}

// ClusterDBSCAN runs density-based clustering.
func ClusterDBSCAN(ctx context.Context, t *Table, d DBSCAN) (*Result, error) {
	return d.Run(ctx, t)
}

// ClusterKMeans runs k-means clustering.
func ClusterKMeans(ctx context.Context, t *Table, km KMeans) (*Table, error) {
	return km.Cluster(ctx, t)
}

// GridSearchEps picks a DBSCAN eps by scanning a grid.
func GridSearchEps(ctx context.Context, t *Table, g GridSearch) (float64, error) {
	return cluster.GridSearchEps(ctx, t, g)
}

// DefaultGridSearch returns the standard eps grid.
func DefaultGridSearch() GridSearch {
	return cluster.DefaultGridSearch()
}

// Combine merges tables horizontally or vertically.
func Combine(parts []Part, strictDepth bool) (*Table, error) {
	return combine.Combine(parts, combine.Options{StrictDepth: strictDepth})
}

// Stats summarizes a table.
func Stats(t *Table) (*TableStats, error) {
	return stats.FromTable(t)
}

// Version returns the MSAFlow version.
func Version() string {
	return "0.3.0"
}

// Info returns information about MSAFlow.
func Info() string {
	return fmt.Sprintf(`MSAFlow v%s - Multiple Sequence Alignment Toolkit

Features:
  - A3M/FASTA and CSV alignment tables with auxiliary columns
  - Length unification, slicing and depth adjustment
  - Gap, duplicate and identity filtering; gap and identity ranking
  - One-hot and numeric sequence encodings
  - DBSCAN with eps grid search, and k-means clustering
  - Horizontal and vertical table combination
  - hhfilter integration
`, Version())
}
