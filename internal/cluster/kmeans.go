package cluster

import (
	"context"
	"errors"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/aria-lang/msaflow-go/internal/distance"
	"github.com/aria-lang/msaflow-go/internal/encode"
	"github.com/aria-lang/msaflow-go/internal/msa"
)

// DefaultMaxIter bounds Lloyd iterations when KMeans.MaxIter is zero.
const DefaultMaxIter = 300

// KMeans partitions rows into K clusters with Lloyd's algorithm.
//
// Centroids start at the first K distinct feature vectors in row order, or
// in a shuffled order when Seed is non-zero. Every row gets a label in
// [0, K); there is no noise.
type KMeans struct {
	K        int
	Columns  []string
	Encoding encode.Encoding
	MaxIter  int
	Seed     int64
}

// Cluster implements Clusterer.
func (km *KMeans) Cluster(ctx context.Context, t *msa.Table) (*msa.Table, error) {
	labels, err := km.Labels(ctx, t)
	if err != nil {
		return nil, err
	}
	return t.WithClusterIDs(labels)
}

// Labels returns the cluster of every row of t.
func (km *KMeans) Labels(ctx context.Context, t *msa.Table) ([]int, error) {
	if err := msa.RequireRows("kmeans", t, minRows); err != nil {
		return nil, err
	}
	if km.K < 1 || km.K > t.Len() {
		return nil, &msa.InvalidParameterError{Name: "k", Value: km.K, Reason: "must be between 1 and the number of sequences"}
	}
	enc, err := encode.Parse(string(km.Encoding))
	if err != nil {
		return nil, err
	}
	features, err := encode.Features(t, enc, km.Columns)
	if err != nil {
		var schema *msa.SchemaError
		if errors.As(err, &schema) {
			return nil, &msa.InvalidParameterError{Name: "columns", Value: km.Columns, Reason: schema.Error()}
		}
		return nil, err
	}

	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	centroids := km.initCentroids(features)
	labels := make([]int, len(features))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !assign(features, centroids, labels) {
			break
		}
		update(features, centroids, labels)
	}
	return labels, nil
}

func (km *KMeans) initCentroids(features [][]float64) [][]float64 {
	order := make([]int, len(features))
	for i := range order {
		order[i] = i
	}
	if km.Seed != 0 {
		rng := rand.New(rand.NewSource(km.Seed))
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
	}

	centroids := make([][]float64, 0, km.K)
	for _, i := range order {
		if len(centroids) == km.K {
			break
		}
		duplicate := false
		for _, c := range centroids {
			if floats.Equal(c, features[i]) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			centroids = append(centroids, append([]float64(nil), features[i]...))
		}
	}
	// Fewer distinct vectors than K: the extra centroids stay empty.
	for i := 0; len(centroids) < km.K; i++ {
		centroids = append(centroids, append([]float64(nil), features[order[i]]...))
	}
	return centroids
}

// assign moves every row to its nearest centroid, lowest index on ties, and
// reports whether any label changed.
func assign(features, centroids [][]float64, labels []int) bool {
	changed := false
	for i, f := range features {
		best, bestDist := 0, distance.Euclidean(f, centroids[0])
		for c := 1; c < len(centroids); c++ {
			if d := distance.Euclidean(f, centroids[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// update recomputes centroids as member means. Empty clusters keep their
// previous centroid.
func update(features, centroids [][]float64, labels []int) {
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i, l := range labels {
		if sums[l] == nil {
			sums[l] = make([]float64, len(features[i]))
		}
		floats.Add(sums[l], features[i])
		counts[l]++
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		centroids[c] = sums[c]
	}
}
