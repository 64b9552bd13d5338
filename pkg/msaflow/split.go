package msaflow

import (
	"fmt"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/cluster"
	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/aria-lang/msaflow-go/internal/registry"
)

// SplitKind is the suffix that names the parts of a split table.
type SplitKind string

const (
	// SplitCluster names DBSCAN parts "{name}_cluster_{id}".
	SplitCluster SplitKind = "cluster"
	// SplitKMeans names k-means parts "{name}_kmeans_cluster_{id}".
	SplitKMeans SplitKind = "kmeans_cluster"
	// SplitSelected names hand-picked parts "{name}_selected_cluster_{id}".
	SplitSelected SplitKind = "selected_cluster"
)

// ParseSplitKind validates a split kind. Empty means SplitCluster.
func ParseSplitKind(s string) (SplitKind, error) {
	switch k := SplitKind(strings.ToLower(strings.TrimSpace(s))); k {
	case SplitCluster, SplitKMeans, SplitSelected:
		return k, nil
	case "":
		return SplitCluster, nil
	default:
		return "", &msa.InvalidParameterError{
			Name:   "split kind",
			Value:  s,
			Reason: "expected cluster, kmeans_cluster or selected_cluster",
		}
	}
}

// Prefix returns the name every part of table name starts with.
func (k SplitKind) Prefix(name string) string {
	return name + "_" + string(k)
}

// NamedTable pairs a table with the name it is stored or written under.
type NamedTable struct {
	Name  string
	Table *Table
}

// SplitClusters partitions a clustered table by cluster_id into tables named
// "{prefix}_{id}", ordered by id. Noise rows are left out. With ids given
// only those clusters are returned.
func SplitClusters(t *Table, prefix string, ids ...int) ([]NamedTable, error) {
	parts, err := cluster.Split(t, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]NamedTable, 0, len(parts))
	for _, id := range cluster.SortedIDs(parts) {
		out = append(out, NamedTable{Name: fmt.Sprintf("%s_%d", prefix, id), Table: parts[id]})
	}
	return out, nil
}

// SaveClusters splits t and stores every part in store under
// kind.Prefix(name). SplitSelected needs at least one id. It returns the
// stored names in id order; nothing is stored when the split fails.
func SaveClusters(store registry.Store, name string, kind SplitKind, t *Table, ids ...int) ([]string, error) {
	if kind == SplitSelected && len(ids) == 0 {
		return nil, &msa.InvalidParameterError{Name: "cluster ids", Value: ids, Reason: "selected_cluster needs at least one id"}
	}
	parts, err := SplitClusters(t, kind.Prefix(name), ids...)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(parts))
	for i, p := range parts {
		store.Put(p.Name, p.Table)
		names[i] = p.Name
	}
	return names, nil
}
