package msaflow

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/msaflow-go/internal/registry"
	"github.com/aria-lang/msaflow-go/internal/remote"
)

func threshold(v float64) *float64 { return &v }

func TestEdit(t *testing.T) {
	in, err := NewTable(
		[]string{"q", "a", "b", "c", "d"},
		[]string{"MKVLA", "MKV", "MK-LA", "MKVLA", "TTTTTTT"},
	)
	require.NoError(t, err)

	out, report, err := Edit(context.Background(), in, []Step{
		{Op: OpUnifyLength, Target: "first"},
		{Op: OpDropDuplicates},
		{Op: OpFilterGaps, Threshold: threshold(0.4)},
		{Op: OpFilterIdentity, Threshold: threshold(0.5)},
		{Op: OpSortGaps, Ascending: false},
	}, EditOptions{})
	require.NoError(t, err)

	// unify: MKVLA MKV-- MK-LA MKVLA TTTTT; dedupe drops c; gaps keep all
	// (a is 0.4); identity drops d; sort puts the most gapped first.
	assert.Equal(t, []string{"q", "a", "b"}, out.Headers())
	assert.Equal(t, []string{"MKVLA", "MKV--", "MK-LA"}, out.Sequences())
	assert.Equal(t, 5, in.Len(), "input is untouched")
	assert.Equal(t, &FilterReport{
		InputRows:         5,
		KeptRows:          3,
		RemovedDuplicates: 1,
		RemovedIdentity:   1,
	}, report)
}

func TestEditReportAccumulates(t *testing.T) {
	in := FromSequences("MKVL", "MK--", "MKVL", "M---", "MK--", "TTTT")

	out, report, err := Edit(context.Background(), in, []Step{
		{Op: OpFilterGaps, Threshold: threshold(0.5)},
		{Op: OpDropDuplicates, KeepLast: true},
		{Op: OpExtendDepth, Depth: 5},
		{Op: OpFilterGaps, Threshold: threshold(0.25)},
	}, EditOptions{})
	require.NoError(t, err)

	// gaps drop M---; dedupe drops the first MKVL and MK--; extend repeats
	// rows up to 5; the second gap filter drops every MK--.
	assert.Equal(t, []string{"MKVL", "TTTT", "MKVL"}, out.Sequences())
	assert.Equal(t, 6, report.InputRows)
	assert.Equal(t, 3, report.KeptRows)
	assert.Equal(t, 2, report.RemovedDuplicates)
	assert.Equal(t, 3, report.RemovedGaps)
	assert.Zero(t, report.RemovedExternal)
}

func TestEditHHFilterReport(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	// The stand-in copies the query record from -i to -o.
	bin := filepath.Join(t.TempDir(), "hhfilter")
	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    -i) src="$2"; shift ;;
    -o) dst="$2"; shift ;;
  esac
  shift
done
[ -z "$src" ] && exit 0
head -n 2 "$src" > "$dst"
`
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	in := FromSequences("MKVL", "MRVL", "AAAA")
	out, report, err := Edit(context.Background(), in, []Step{{Op: OpHHFilter}},
		EditOptions{HHFilter: &remote.HHFilter{Binary: bin, Dir: t.TempDir()}})
	require.NoError(t, err)
	assert.Equal(t, []string{"MKVL"}, out.Sequences())
	assert.Equal(t, 2, report.RemovedExternal)
	assert.Equal(t, 1, report.KeptRows)
}

func TestEditErrors(t *testing.T) {
	in := FromSequences("MKVL", "MK--")
	tests := []struct {
		name string
		step Step
	}{
		{"unknown op", Step{Op: "reverse"}},
		{"missing threshold", Step{Op: OpFilterGaps}},
		{"bad target", Step{Op: OpUnifyLength, Target: "longest"}},
		{"bad method", Step{Op: OpFilterIdentity, Threshold: threshold(0.5), Method: "drop"}},
		{"hhfilter unconfigured", Step{Op: OpHHFilter}},
		{"bad slice", Step{Op: OpSlice, Start: 3, End: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, report, err := Edit(context.Background(), in, []Step{tt.step}, EditOptions{})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Nil(t, report)
			var ipe *InvalidParameterError
			assert.ErrorAs(t, err, &ipe)
		})
	}
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		in   string
		want Step
	}{
		{"unify_length:max", Step{Op: OpUnifyLength, Target: "max"}},
		{"unify_length", Step{Op: OpUnifyLength}},
		{"slice:2,10", Step{Op: OpSlice, Start: 2, End: 10}},
		{"slice_rows:0,5", Step{Op: OpSliceRows, End: 5}},
		{"adjust_depth:64", Step{Op: OpAdjustDepth, Depth: 64}},
		{"filter_gaps:0.25", Step{Op: OpFilterGaps, Threshold: threshold(0.25)}},
		{"filter_identity:0.3,remove", Step{Op: OpFilterIdentity, Threshold: threshold(0.3), Method: "remove"}},
		{"drop_duplicates:last", Step{Op: OpDropDuplicates, KeepLast: true}},
		{"sort_gaps", Step{Op: OpSortGaps, Ascending: true}},
		{"sort_identity:desc", Step{Op: OpSortIdentity}},
		{"vet", Step{Op: OpVet}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStep(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"slice:1", "adjust_depth:x", "filter_gaps", "filter_gaps:0.1,keep", "sort_gaps:up", "drop_duplicates:middle", "transpose"} {
		_, err := ParseStep(bad)
		assert.Error(t, err, bad)
	}
}

func TestFacadeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msa.a3m")
	in, err := NewTable([]string{"query", "hit"}, []string{"MKVL", "MRV-"})
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, in))

	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.True(t, in.Equal(back))

	s, err := Stats(back)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Depth)
}

func TestFacadeClustering(t *testing.T) {
	in := FromSequences("AAAA", "AAAA", "AAAT", "TTTT", "TTTT", "TTTA")

	res, err := ClusterDBSCAN(context.Background(), in, DBSCAN{Eps: 1.5, MinSamples: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Clusters)

	out, err := ClusterKMeans(context.Background(), in, KMeans{K: 2})
	require.NoError(t, err)
	ids, ok := out.ClusterIDs()
	require.True(t, ok)
	assert.Len(t, ids, 6)

	combined, err := Combine([]Part{{Table: in}, {Table: in, Direction: Vertical}}, false)
	require.NoError(t, err)
	assert.Equal(t, 12, combined.Len())
}

func clustered(t *testing.T) *Table {
	t.Helper()
	in, err := FromSequences("AAAA", "TTTT", "AAAT", "CCCC", "TTTA").
		WithClusterIDs([]int{0, 1, 0, NoiseLabel, 1})
	require.NoError(t, err)
	return in
}

func TestSplitClusters(t *testing.T) {
	parts, err := SplitClusters(clustered(t), SplitCluster.Prefix("query"))
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "query_cluster_0", parts[0].Name)
	assert.Equal(t, []string{"AAAA", "AAAT"}, parts[0].Table.Sequences())
	assert.Equal(t, "query_cluster_1", parts[1].Name)
	assert.Equal(t, []string{"TTTT", "TTTA"}, parts[1].Table.Sequences())
}

func TestSaveClusters(t *testing.T) {
	tests := []struct {
		kind SplitKind
		ids  []int
		want []string
	}{
		{SplitCluster, nil, []string{"query_cluster_0", "query_cluster_1"}},
		{SplitKMeans, nil, []string{"query_kmeans_cluster_0", "query_kmeans_cluster_1"}},
		{SplitSelected, []int{1}, []string{"query_selected_cluster_1"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			store := registry.NewMemoryStore()
			names, err := SaveClusters(store, "query", tt.kind, clustered(t), tt.ids...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
			assert.Equal(t, tt.want, store.Names())
			for _, name := range store.Names() {
				assert.NotContains(t, name, "-1")
			}
		})
	}
}

func TestSaveClustersErrors(t *testing.T) {
	store := registry.NewMemoryStore()

	_, err := SaveClusters(store, "query", SplitSelected, clustered(t))
	assert.IsType(t, &InvalidParameterError{}, err)

	_, err = SaveClusters(store, "query", SplitCluster, clustered(t), 0, 7)
	assert.IsType(t, &InvalidParameterError{}, err)

	_, err = SaveClusters(store, "query", SplitCluster, FromSequences("AAAA"))
	assert.IsType(t, &SchemaError{}, err)

	assert.Empty(t, store.Names(), "failed splits store nothing")
}

func TestParseSplitKind(t *testing.T) {
	tests := []struct {
		in      string
		want    SplitKind
		wantErr bool
	}{
		{"", SplitCluster, false},
		{"cluster", SplitCluster, false},
		{"KMeans_Cluster", SplitKMeans, false},
		{"selected_cluster", SplitSelected, false},
		{"dbscan", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSplitKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
