package cluster

import (
	"context"
	"math"

	"github.com/aria-lang/msaflow-go/internal/distance"
	"github.com/aria-lang/msaflow-go/internal/encode"
	"github.com/aria-lang/msaflow-go/internal/msa"
)

// DefaultMinSamples is the neighbourhood size used when none is given.
const DefaultMinSamples = 3

// DBSCAN clusters rows by density over their one-hot encoding.
//
// A row is a core point when at least MinSamples rows, itself included, lie
// within Eps of it. Clusters grow from core points in row order, so cluster
// ids follow the position of each cluster's first core row. Rows reachable
// from no core point get msa.NoiseLabel.
type DBSCAN struct {
	// Eps is the neighbourhood radius. Zero picks it with Search.
	Eps        float64
	MinSamples int
	// Columns are numeric auxiliary columns appended to the encoding.
	Columns []string
	// Consensus adds a per-cluster majority-vote sequence column.
	Consensus bool
	// Levenshtein adds edit distances to the query and to the consensus.
	Levenshtein bool
	// Search configures the eps grid search; nil uses DefaultGridSearch.
	Search *GridSearch
}

// Result is the outcome of a DBSCAN run.
type Result struct {
	Table    *msa.Table
	Labels   []int
	Eps      float64
	Clusters int
	Noise    int
}

// Cluster implements Clusterer.
func (d *DBSCAN) Cluster(ctx context.Context, t *msa.Table) (*msa.Table, error) {
	res, err := d.Run(ctx, t)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// Run clusters t and reports the eps used along with cluster and noise counts.
func (d *DBSCAN) Run(ctx context.Context, t *msa.Table) (*Result, error) {
	if err := msa.RequireRows("dbscan", t, minRows); err != nil {
		return nil, err
	}
	minSamples := d.MinSamples
	if minSamples == 0 {
		minSamples = DefaultMinSamples
	}
	if minSamples < 1 {
		return nil, &msa.InvalidParameterError{Name: "min_samples", Value: d.MinSamples, Reason: "must be at least 1"}
	}
	if d.Eps < 0 || math.IsNaN(d.Eps) || math.IsInf(d.Eps, 0) {
		return nil, &msa.InvalidParameterError{Name: "eps", Value: d.Eps, Reason: "must be a finite non-negative number"}
	}

	features, err := encode.Features(t, encode.OneHot, d.Columns)
	if err != nil {
		return nil, err
	}
	dist, err := pairwise(ctx, features)
	if err != nil {
		return nil, err
	}

	eps := d.Eps
	if eps == 0 {
		search := DefaultGridSearch()
		if d.Search != nil {
			search = *d.Search
		}
		search.MinSamples = minSamples
		found, err := search.run(ctx, dist)
		if err != nil {
			return nil, err
		}
		eps = found.Eps
	}

	labels := dbscan(dist, eps, minSamples)
	out, err := t.WithClusterIDs(labels)
	if err != nil {
		return nil, err
	}
	if out, err = annotate(out, labels, d.Consensus, d.Levenshtein); err != nil {
		return nil, err
	}
	return &Result{
		Table:    out,
		Labels:   labels,
		Eps:      eps,
		Clusters: Count(labels),
		Noise:    Sizes(labels)[msa.NoiseLabel],
	}, nil
}

// distances is a condensed upper-triangular pairwise distance matrix.
type distances struct {
	n int
	d []float64
}

func pairwise(ctx context.Context, features [][]float64) (*distances, error) {
	n := len(features)
	m := &distances{n: n, d: make([]float64, n*(n-1)/2)}
	k := 0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < n; j++ {
			m.d[k] = distance.Euclidean(features[i], features[j])
			k++
		}
	}
	return m, nil
}

func (m *distances) at(i, j int) float64 {
	if i == j {
		return 0
	}
	if i > j {
		i, j = j, i
	}
	// offset of row i in the condensed layout
	return m.d[i*m.n-i*(i+1)/2+(j-i-1)]
}

func dbscan(m *distances, eps float64, minSamples int) []int {
	n := m.n
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if m.at(i, j) <= eps {
				neighbors[i] = append(neighbors[i], j)
			}
		}
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = msa.NoiseLabel
	}

	next := 0
	var stack []int
	for i := 0; i < n; i++ {
		if labels[i] != msa.NoiseLabel || len(neighbors[i]) < minSamples {
			continue
		}
		labels[i] = next
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(neighbors[p]) < minSamples {
				continue
			}
			for _, q := range neighbors[p] {
				if labels[q] == msa.NoiseLabel {
					labels[q] = next
					stack = append(stack, q)
				}
			}
		}
		next++
	}
	return labels
}
