package cluster

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/aria-lang/msaflow-go/internal/encode"
	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two tight groups and one outlier. One-hot rows differing at m positions
// are sqrt(2m) apart.
func groups() *msa.Table {
	return msa.FromSequences("AAAA", "AAAA", "AAAT", "TTTT", "TTTT", "TTTA", "CCCC")
}

func TestDBSCAN(t *testing.T) {
	d := &DBSCAN{Eps: 1.5, MinSamples: 2, Consensus: true, Levenshtein: true}
	res, err := d.Run(context.Background(), groups())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, msa.NoiseLabel}, res.Labels)
	assert.Equal(t, 2, res.Clusters)
	assert.Equal(t, 1, res.Noise)
	assert.Equal(t, 1.5, res.Eps)

	ids, ok := res.Table.ClusterIDs()
	require.True(t, ok)
	assert.Equal(t, res.Labels, ids)

	cons, ok := res.Table.Column(ConsensusColumn)
	require.True(t, ok)
	assert.Equal(t, []string{"AAAA", "AAAA", "AAAA", "TTTT", "TTTT", "TTTT", "CCCC"}, cons.Texts)

	toQuery, err := res.Table.NumericColumn(LevenshteinQueryColumn)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 4, 4, 4, 4}, toQuery)

	toCons, err := res.Table.NumericColumn(LevenshteinConsensusColumn)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 0, 0, 1, 0}, toCons)
}

func TestDBSCANLabelsEveryRow(t *testing.T) {
	in := groups()
	for _, eps := range []float64{0.1, 1.5, 3, 10} {
		out, err := (&DBSCAN{Eps: eps, MinSamples: 2}).Cluster(context.Background(), in)
		require.NoError(t, err)
		ids, ok := out.ClusterIDs()
		require.True(t, ok)
		assert.Len(t, ids, in.Len())
		assert.Equal(t, in.Sequences(), out.Sequences(), "row order is preserved")
		for _, id := range ids {
			assert.GreaterOrEqual(t, id, msa.NoiseLabel)
		}
	}
}

func TestDBSCANErrors(t *testing.T) {
	ctx := context.Background()

	_, err := (&DBSCAN{Eps: 1}).Cluster(ctx, msa.FromSequences("AAAA"))
	assert.IsType(t, &msa.InsufficientDataError{}, err)

	_, err = (&DBSCAN{Eps: -1}).Cluster(ctx, groups())
	assert.IsType(t, &msa.InvalidParameterError{}, err)

	_, err = (&DBSCAN{Eps: 1, MinSamples: -2}).Cluster(ctx, groups())
	assert.IsType(t, &msa.InvalidParameterError{}, err)

	withNote, err := groups().WithText("note", make([]string, 7))
	require.NoError(t, err)
	_, err = (&DBSCAN{Eps: 1, Columns: []string{"note"}}).Cluster(ctx, withNote)
	assert.IsType(t, &msa.SchemaError{}, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = (&DBSCAN{Eps: 1}).Cluster(cancelled, groups())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDBSCANAuxColumns(t *testing.T) {
	in, err := groups().WithNumeric("weight", []float64{0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	res, err := (&DBSCAN{Eps: 1.5, MinSamples: 2, Columns: []string{"weight"}}).Run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, msa.NoiseLabel}, res.Labels)
}

func TestDBSCANSearchesEps(t *testing.T) {
	search := GridSearch{MinEps: 1, MaxEps: 3, Step: 1, DesiredClusters: 1}
	res, err := (&DBSCAN{MinSamples: 2, Search: &search}).Run(context.Background(), groups())
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Eps)
	assert.Equal(t, 1, res.Clusters)
}

func TestGridSearchEps(t *testing.T) {
	tests := []struct {
		name    string
		desired int
		wantEps float64
	}{
		// eps 1 and 2 both give two clusters; the smallest wins.
		{"max clusters", MaxClusters, 1},
		{"exact two", 2, 1},
		{"exact one", 1, 3},
		{"closest to zero", 0, 3},
		{"closest to five", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GridSearch{MinEps: 1, MaxEps: 3, Step: 1, MinSamples: 2, DesiredClusters: tt.desired, Workers: 2}
			eps, err := GridSearchEps(context.Background(), groups(), g)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEps, eps)
		})
	}
}

func TestGridSearchCandidates(t *testing.T) {
	var calls, last int
	g := GridSearch{
		MinEps: 1, MaxEps: 3, Step: 1, MinSamples: 2,
		Progress: func(done, total int) {
			calls++
			last = done
			assert.Equal(t, 3, total)
		},
	}
	res, err := g.Run(context.Background(), groups())
	require.NoError(t, err)

	assert.Equal(t, []Candidate{{1, 2}, {2, 2}, {3, 1}}, res.Candidates)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, last)
}

func TestGridInclusive(t *testing.T) {
	g := GridSearch{MinEps: 3, MaxEps: 20, Step: 0.5}
	values := g.grid()
	assert.Len(t, values, 35)
	assert.Equal(t, 3.0, values[0])
	assert.InDelta(t, 20.0, values[len(values)-1], 1e-9)

	g = GridSearch{MinEps: 0.1, MaxEps: 0.3, Step: 0.1}
	assert.Len(t, g.grid(), 3)
}

func TestGridSearchInvalid(t *testing.T) {
	tests := []struct {
		name string
		g    GridSearch
	}{
		{"zero step", GridSearch{MinEps: 1, MaxEps: 2, Step: 0, MinSamples: 2}},
		{"negative step", GridSearch{MinEps: 1, MaxEps: 2, Step: -1, MinSamples: 2}},
		{"max below min", GridSearch{MinEps: 3, MaxEps: 2, Step: 1, MinSamples: 2}},
		{"negative min", GridSearch{MinEps: -1, MaxEps: 2, Step: 1, MinSamples: 2}},
		{"zero min", GridSearch{MinEps: 0, MaxEps: 2, Step: 1, MinSamples: 2}},
		{"no samples", GridSearch{MinEps: 1, MaxEps: 2, Step: 1}},
		{"below max clusters", GridSearch{MinEps: 1, MaxEps: 2, Step: 1, MinSamples: 2, DesiredClusters: -2}},
		{"vanishing step", GridSearch{MinEps: 3, MaxEps: 20, Step: 1e-300, MinSamples: 2}},
		{"too many candidates", GridSearch{MinEps: 3, MaxEps: 20, Step: 1e-9, MinSamples: 2}},
		{"just over the cap", GridSearch{MinEps: 1, MaxEps: 1 + MaxCandidates, Step: 1, MinSamples: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GridSearchEps(context.Background(), groups(), tt.g)
			assert.IsType(t, &msa.InvalidParameterError{}, err)
		})
	}

	_, err := GridSearchEps(context.Background(), msa.FromSequences("A"), DefaultGridSearch())
	assert.IsType(t, &msa.InsufficientDataError{}, err)
}

func TestGridSearchAtCap(t *testing.T) {
	g := GridSearch{MinEps: 1, MaxEps: MaxCandidates, Step: 1, MinSamples: 2}
	require.NoError(t, g.validate())
	assert.Len(t, g.grid(), MaxCandidates)
}

func TestKMeans(t *testing.T) {
	in := msa.FromSequences("AAAA", "TTTT", "AAAA", "AAAT", "TTTT", "TTTA")

	for _, enc := range []encode.Encoding{encode.OneHot, encode.NumVector} {
		t.Run(string(enc), func(t *testing.T) {
			out, err := (&KMeans{K: 2, Encoding: enc}).Cluster(context.Background(), in)
			require.NoError(t, err)
			ids, ok := out.ClusterIDs()
			require.True(t, ok)
			assert.Equal(t, []int{0, 1, 0, 0, 1, 1}, ids)
		})
	}
}

func TestKMeansSeeded(t *testing.T) {
	in := msa.FromSequences("AAAA", "TTTT", "AAAA", "AAAT", "TTTT", "TTTA", "CCCC")
	km := &KMeans{K: 3, Seed: 42}

	a, err := km.Labels(context.Background(), in)
	require.NoError(t, err)
	b, err := km.Labels(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.Len(t, a, in.Len())
	for _, l := range a {
		assert.True(t, l >= 0 && l < 3)
	}
	assert.Equal(t, a[0], a[2], "identical rows share a cluster")
	assert.Equal(t, a[1], a[4])
}

func TestKMeansFewDistinctRows(t *testing.T) {
	labels, err := (&KMeans{K: 3}).Labels(context.Background(), msa.FromSequences("AAAA", "AAAA", "TTTT"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1}, labels)
}

func TestNonFiniteColumns(t *testing.T) {
	ctx := context.Background()
	in := msa.FromSequences("AAAA", "AAAA", "AAAT", "TTTT", "TTTT", "TTTA")

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		w, err := in.WithNumeric("w", []float64{bad, 0, 0, 0, 0, 0})
		require.NoError(t, err)

		t.Run(fmt.Sprintf("dbscan %v", bad), func(t *testing.T) {
			_, err := (&DBSCAN{Eps: 1.5, MinSamples: 2, Columns: []string{"w"}}).Run(ctx, w)
			var schema *msa.SchemaError
			require.ErrorAs(t, err, &schema)
			assert.Equal(t, "w", schema.Column)
			assert.Contains(t, schema.Reason, "row 0")
		})

		t.Run(fmt.Sprintf("kmeans %v", bad), func(t *testing.T) {
			_, err := (&KMeans{K: 2, Columns: []string{"w"}}).Labels(ctx, w)
			var param *msa.InvalidParameterError
			require.ErrorAs(t, err, &param)
			assert.Contains(t, param.Reason, "row 0")
		})

		t.Run(fmt.Sprintf("gridsearch %v", bad), func(t *testing.T) {
			g := GridSearch{MinEps: 1, MaxEps: 3, Step: 1, MinSamples: 2, Columns: []string{"w"}}
			_, err := g.Run(ctx, w)
			assert.IsType(t, &msa.SchemaError{}, err)
		})
	}
}

func TestKMeansErrors(t *testing.T) {
	ctx := context.Background()
	in := msa.FromSequences("AAAA", "TTTT", "AAAT")

	tests := []struct {
		name string
		km   *KMeans
	}{
		{"k zero", &KMeans{K: 0}},
		{"k above rows", &KMeans{K: 4}},
		{"bad encoding", &KMeans{K: 2, Encoding: "blosum"}},
		{"missing column", &KMeans{K: 2, Columns: []string{"missing"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.km.Cluster(ctx, in)
			assert.IsType(t, &msa.InvalidParameterError{}, err)
		})
	}

	_, err := (&KMeans{K: 1}).Cluster(ctx, msa.FromSequences("AAAA"))
	assert.IsType(t, &msa.InsufficientDataError{}, err)
}

func TestConsensus(t *testing.T) {
	tests := []struct {
		name string
		seqs []string
		want string
	}{
		{"majority", []string{"MKV", "MKL", "MRV"}, "MKV"},
		{"tie goes to first seen", []string{"AC", "CA"}, "AC"},
		{"shortest length", []string{"AAT", "AT"}, "AA"},
		{"single", []string{"MK-"}, "MK-"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Consensus(tt.seqs))
		})
	}
}

func TestCountAndMembers(t *testing.T) {
	labels := []int{0, msa.NoiseLabel, 1, 0, msa.NoiseLabel}
	assert.Equal(t, 2, Count(labels))
	assert.Equal(t, map[int]int{0: 2, 1: 1, msa.NoiseLabel: 2}, Sizes(labels))
	assert.Equal(t, []int{0, 3}, Members(labels)[0])
}

var (
	_ Clusterer = (*DBSCAN)(nil)
	_ Clusterer = (*KMeans)(nil)
)

func benchTable(n, length int) *msa.Table {
	seqs := make([]string, n)
	for i := range seqs {
		b := make([]byte, length)
		for j := range b {
			b[j] = msa.Canonical[(i*7+j*(i%5+1))%len(msa.Canonical)]
		}
		seqs[i] = string(b)
	}
	return msa.FromSequences(seqs...)
}

func BenchmarkDBSCAN(b *testing.B) {
	tbl := benchTable(200, 60)
	d := &DBSCAN{Eps: 8, MinSamples: 3}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Run(ctx, tbl)
	}
}

func BenchmarkGridSearch(b *testing.B) {
	tbl := benchTable(200, 60)
	g := DefaultGridSearch()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Run(ctx, tbl)
	}
}
