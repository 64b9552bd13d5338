package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/aria-lang/msaflow-go/internal/msa"
)

// Split partitions a clustered table into one table per cluster_id, keeping
// row order inside each part. Noise rows belong to no part.
//
// With ids given only those clusters are returned; an id that labels no row,
// or msa.NoiseLabel, is an InvalidParameterError. A table without a
// cluster_id column yields a SchemaError.
func Split(t *msa.Table, ids ...int) (map[int]*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	labels, ok := t.ClusterIDs()
	if !ok {
		return nil, &msa.SchemaError{Column: msa.ClusterIDColumn, Reason: "table is not clustered"}
	}
	raw, _ := t.NumericColumn(msa.ClusterIDColumn)
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &msa.SchemaError{Column: msa.ClusterIDColumn, Reason: fmt.Sprintf("row %d has no cluster id", i)}
		}
	}

	groups := Members(labels)
	delete(groups, msa.NoiseLabel)

	if len(ids) > 0 {
		selected := make(map[int][]int, len(ids))
		for _, id := range ids {
			rows, ok := groups[id]
			if !ok {
				return nil, &msa.InvalidParameterError{Name: "cluster id", Value: id, Reason: "no rows carry this label"}
			}
			selected[id] = rows
		}
		groups = selected
	}

	parts := make(map[int]*msa.Table, len(groups))
	for id, rows := range groups {
		parts[id] = t.Take(rows)
	}
	return parts, nil
}

// SortedIDs returns the keys of parts in ascending order.
func SortedIDs(parts map[int]*msa.Table) []int {
	ids := make([]int, 0, len(parts))
	for id := range parts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
