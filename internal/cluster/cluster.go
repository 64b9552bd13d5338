// Package cluster groups alignment rows and labels them with a cluster_id
// column.
//
// Two strategies implement Clusterer: DBSCAN, a density-based method over
// one-hot encoded sequences with an optional eps grid search, and KMeans,
// Lloyd's algorithm over one-hot or index-vector encodings. Callers pick the
// strategy value they need; there is no package-level default.
//
// Row order is never changed. Every output row carries a label; DBSCAN marks
// rows outside any cluster with msa.NoiseLabel.
package cluster

import (
	"context"

	"github.com/aria-lang/msaflow-go/internal/msa"
)

// Clusterer labels the rows of a table.
type Clusterer interface {
	Cluster(ctx context.Context, t *msa.Table) (*msa.Table, error)
}

const minRows = 2

// Count returns the number of distinct non-noise labels.
func Count(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		if l != msa.NoiseLabel {
			seen[l] = true
		}
	}
	return len(seen)
}

// Sizes returns the number of rows per label, noise included.
func Sizes(labels []int) map[int]int {
	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}
	return sizes
}

// Members groups row indices by label, keeping row order inside each group.
func Members(labels []int) map[int][]int {
	groups := make(map[int][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}
	return groups
}
