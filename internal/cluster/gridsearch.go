package cluster

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aria-lang/msaflow-go/internal/encode"
	"github.com/aria-lang/msaflow-go/internal/msa"
)

// MaxClusters asks the grid search for the eps with the most clusters.
const MaxClusters = -1

// MaxCandidates caps the number of eps values one search may evaluate.
const MaxCandidates = 10000

// GridSearch scans eps values from MinEps to MaxEps inclusive in Step
// increments and picks the one whose DBSCAN run best matches
// DesiredClusters. Ties go to the smallest eps. MinEps must be positive so
// the chosen eps can be passed back as DBSCAN.Eps.
type GridSearch struct {
	MinEps     float64
	MaxEps     float64
	Step       float64
	MinSamples int
	// DesiredClusters is the target cluster count, zero included, or
	// MaxClusters.
	DesiredClusters int
	// Columns are numeric auxiliary columns appended to the encoding.
	Columns []string
	// Workers bounds concurrent DBSCAN runs; zero uses GOMAXPROCS.
	Workers int
	// Progress, when set, is called after each candidate finishes. Calls
	// are serialized.
	Progress func(done, total int)
}

// Candidate is one evaluated eps value.
type Candidate struct {
	Eps      float64 `json:"eps"`
	Clusters int     `json:"clusters"`
}

// SearchResult holds the chosen eps and every candidate evaluated.
type SearchResult struct {
	Eps        float64     `json:"eps"`
	Clusters   int         `json:"clusters"`
	Candidates []Candidate `json:"candidates"`
}

// DefaultGridSearch scans eps in [3, 20] by 0.5 for the most clusters.
func DefaultGridSearch() GridSearch {
	return GridSearch{
		MinEps:          3,
		MaxEps:          20,
		Step:            0.5,
		MinSamples:      DefaultMinSamples,
		DesiredClusters: MaxClusters,
	}
}

// GridSearchEps returns the eps chosen by g for t.
func GridSearchEps(ctx context.Context, t *msa.Table, g GridSearch) (float64, error) {
	res, err := g.Run(ctx, t)
	if err != nil {
		return 0, err
	}
	return res.Eps, nil
}

// Run evaluates every eps on the grid against t.
func (g GridSearch) Run(ctx context.Context, t *msa.Table) (*SearchResult, error) {
	if err := msa.RequireRows("gridsearch_eps", t, minRows); err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	features, err := encode.Features(t, encode.OneHot, g.Columns)
	if err != nil {
		return nil, err
	}
	dist, err := pairwise(ctx, features)
	if err != nil {
		return nil, err
	}
	return g.run(ctx, dist)
}

func (g GridSearch) validate() error {
	switch {
	case g.Step <= 0 || math.IsNaN(g.Step):
		return &msa.InvalidParameterError{Name: "step", Value: g.Step, Reason: "must be positive"}
	case g.MinEps <= 0 || math.IsNaN(g.MinEps):
		return &msa.InvalidParameterError{Name: "min_eps", Value: g.MinEps, Reason: "must be positive"}
	case g.MaxEps < g.MinEps || math.IsNaN(g.MaxEps) || math.IsInf(g.MaxEps, 0):
		return &msa.InvalidParameterError{Name: "max_eps", Value: g.MaxEps, Reason: "must be finite and not below min_eps"}
	case g.MinSamples < 1:
		return &msa.InvalidParameterError{Name: "min_samples", Value: g.MinSamples, Reason: "must be at least 1"}
	case g.DesiredClusters < MaxClusters:
		return &msa.InvalidParameterError{Name: "desired_clusters", Value: g.DesiredClusters, Reason: "must be a count or MaxClusters"}
	}
	if n := g.steps(); math.IsNaN(n) || n >= MaxCandidates {
		return &msa.InvalidParameterError{
			Name:   "step",
			Value:  g.Step,
			Reason: fmt.Sprintf("grid from %g to %g would exceed %d candidates", g.MinEps, g.MaxEps, MaxCandidates),
		}
	}
	return nil
}

// steps is the number of whole steps from MinEps to MaxEps, allowing for
// floating point noise. A vanishing step gives +Inf.
func (g GridSearch) steps() float64 {
	return math.Floor((g.MaxEps-g.MinEps)/g.Step + 1e-9)
}

// grid returns the eps values to try. The upper bound is inclusive up to
// floating point noise. g must be valid.
func (g GridSearch) grid() []float64 {
	n := int(g.steps()) + 1
	values := make([]float64, n)
	for k := range values {
		values[k] = g.MinEps + float64(k)*g.Step
	}
	return values
}

func (g GridSearch) run(ctx context.Context, dist *distances) (*SearchResult, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	values := g.grid()
	candidates := make([]Candidate, len(values))

	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	done := 0

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for k, eps := range values {
		k, eps := k, eps
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			candidates[k] = Candidate{Eps: eps, Clusters: Count(dbscan(dist, eps, g.MinSamples))}
			if g.Progress != nil {
				mu.Lock()
				done++
				g.Progress(done, len(values))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for k := 1; k < len(candidates); k++ {
		if g.better(candidates[k].Clusters, candidates[best].Clusters) {
			best = k
		}
	}
	return &SearchResult{
		Eps:        candidates[best].Eps,
		Clusters:   candidates[best].Clusters,
		Candidates: candidates,
	}, nil
}

// better reports whether count strictly beats current.
func (g GridSearch) better(count, current int) bool {
	if g.DesiredClusters == MaxClusters {
		return count > current
	}
	return abs(count-g.DesiredClusters) < abs(current-g.DesiredClusters)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
