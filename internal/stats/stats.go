// Package stats provides summaries of alignment tables: depth, lengths,
// gap content, identity to the query and cluster sizes.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aria-lang/msaflow-go/internal/cluster"
	"github.com/aria-lang/msaflow-go/internal/distance"
	"github.com/aria-lang/msaflow-go/internal/msa"
)

// TableStats summarizes an alignment.
type TableStats struct {
	Depth           int      `json:"depth"`
	MinLength       int      `json:"min_length"`
	MaxLength       int      `json:"max_length"`
	MeanLength      float64  `json:"mean_length"`
	MedianLength    float64  `json:"median_length"`
	MeanGapFraction float64  `json:"mean_gap_fraction"`
	StdGapFraction  float64  `json:"std_gap_fraction"`
	MeanIdentity    float64  `json:"mean_identity"`
	Unique          int      `json:"unique_sequences"`
	// NonCanonical counts rows holding symbols other than canonical
	// residues, X and gaps. Vetting maps those symbols to X.
	NonCanonical int      `json:"non_canonical_sequences"`
	Columns      []string `json:"columns"`
	// Clusters maps cluster id to size; nil when the table is not clustered.
	Clusters map[int]int `json:"clusters,omitempty"`
}

// FromTable computes the statistics of a non-empty table.
func FromTable(t *msa.Table) (*TableStats, error) {
	if err := msa.RequireRows("stats", t, 1); err != nil {
		return nil, err
	}

	n := t.Len()
	lengths := make([]float64, n)
	gaps := make([]float64, n)
	identity := make([]float64, n)
	unique := make(map[string]struct{}, n)
	nonCanonical := 0
	query := t.Query()

	for i := 0; i < n; i++ {
		s := t.Sequence(i)
		lengths[i] = float64(len(s))
		gaps[i] = msa.GapFraction(s)
		identity[i] = distance.IdentityFraction(query, s)
		unique[s] = struct{}{}
		if !msa.IsValid(strings.ReplaceAll(s, string(msa.Gap), "")) {
			nonCanonical++
		}
	}

	sorted := append([]float64(nil), lengths...)
	sort.Float64s(sorted)

	s := &TableStats{
		Depth:           n,
		MinLength:       int(floats.Min(lengths)),
		MaxLength:       int(floats.Max(lengths)),
		MeanLength:      stat.Mean(lengths, nil),
		MedianLength:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
		MeanGapFraction: stat.Mean(gaps, nil),
		MeanIdentity:    stat.Mean(identity, nil),
		Unique:          len(unique),
		NonCanonical:    nonCanonical,
		Columns:         t.Columns(),
	}
	if n > 1 {
		s.StdGapFraction = stat.StdDev(gaps, nil)
	}
	if ids, ok := t.ClusterIDs(); ok {
		s.Clusters = cluster.Sizes(ids)
	}
	return s, nil
}

// ClusterCount returns the number of non-noise clusters.
func (s *TableStats) ClusterCount() int {
	count := 0
	for id := range s.Clusters {
		if id != msa.NoiseLabel {
			count++
		}
	}
	return count
}

func (s *TableStats) String() string {
	out := fmt.Sprintf(`TableStats {
  depth: %d
  length range: %d - %d
  mean length: %.1f
  median length: %.1f
  mean gaps: %.1f%% (sd %.1f%%)
  mean identity to query: %.1f%%
  unique sequences: %d
  non-canonical sequences: %d
`, s.Depth, s.MinLength, s.MaxLength, s.MeanLength, s.MedianLength,
		s.MeanGapFraction*100, s.StdGapFraction*100, s.MeanIdentity*100, s.Unique, s.NonCanonical)
	if len(s.Columns) > 0 {
		out += fmt.Sprintf("  columns: %s\n", strings.Join(s.Columns, ", "))
	}
	if s.Clusters != nil {
		out += fmt.Sprintf("  clusters: %d (noise: %d)\n", s.ClusterCount(), s.Clusters[msa.NoiseLabel])
	}
	return out + "}"
}

// Histogram counts fractions in [0, 1] into equal-width bins.
type Histogram struct {
	Title   string
	Bins    []int
	BinSize float64
	NumBins int
}

func newHistogram(title string, values []float64, numBins int) (*Histogram, error) {
	if len(values) == 0 {
		return nil, &msa.InsufficientDataError{Op: "histogram", Rows: 0, Required: 1}
	}
	if numBins <= 0 {
		return nil, &msa.InvalidParameterError{Name: "bins", Value: numBins, Reason: "must be positive"}
	}

	binSize := 1.0 / float64(numBins)
	bins := make([]int, numBins)
	for _, v := range values {
		i := int(v / binSize)
		if i >= numBins {
			i = numBins - 1
		}
		bins[i]++
	}
	return &Histogram{Title: title, Bins: bins, BinSize: binSize, NumBins: numBins}, nil
}

// GapHistogram bins rows by gap fraction.
func GapHistogram(t *msa.Table, numBins int) (*Histogram, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	values := make([]float64, t.Len())
	for i := range values {
		values[i] = msa.GapFraction(t.Sequence(i))
	}
	return newHistogram("Gap Fraction", values, numBins)
}

// IdentityHistogram bins rows by identity to the query.
func IdentityHistogram(t *msa.Table, numBins int) (*Histogram, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	values := make([]float64, t.Len())
	for i := range values {
		values[i] = distance.IdentityFraction(t.Query(), t.Sequence(i))
	}
	return newHistogram("Identity to Query", values, numBins)
}

// ModeBin returns the most populated range.
func (h *Histogram) ModeBin() (float64, float64) {
	best := 0
	for i, count := range h.Bins {
		if count > h.Bins[best] {
			best = i
		}
	}
	start := float64(best) * h.BinSize
	return start, start + h.BinSize
}

func (h *Histogram) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Histogram:\n", h.Title)
	for i := 0; i < h.NumBins; i++ {
		start := int(float64(i) * h.BinSize * 100)
		end := int(float64(i+1) * h.BinSize * 100)
		fmt.Fprintf(&b, "%3d-%3d%%: %s (%d)\n", start, end, strings.Repeat("#", h.Bins[i]/10), h.Bins[i])
	}
	return b.String()
}
