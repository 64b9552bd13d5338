// Package rank reorders alignment rows by a per-row metric while keeping
// the query row at position 0.
package rank

import (
	"sort"

	"github.com/aria-lang/msaflow-go/internal/distance"
	"github.com/aria-lang/msaflow-go/internal/msa"
)

// Metric scores row i of a table.
type Metric func(t *msa.Table, i int) int

// GapCount scores a row by its number of gaps.
func GapCount(t *msa.Table, i int) int {
	return msa.GapCount(t.Sequence(i))
}

// IdentityCount scores a row by the number of positions identical to the query.
func IdentityCount(t *msa.Table, i int) int {
	return distance.IdentityCount(t.Query(), t.Sequence(i))
}

// By sorts rows 1..n-1 by metric and leaves row 0 in place. The sort is
// stable, so ties keep their original relative order.
func By(t *msa.Table, metric Metric, ascending bool) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	if t.Len() < 2 {
		return t.Clone(), nil
	}

	type scored struct {
		index int
		score int
	}
	rows := make([]scored, 0, t.Len()-1)
	for i := 1; i < t.Len(); i++ {
		rows = append(rows, scored{index: i, score: metric(t, i)})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if ascending {
			return rows[a].score < rows[b].score
		}
		return rows[a].score > rows[b].score
	})

	indices := make([]int, 0, t.Len())
	indices = append(indices, 0)
	for _, r := range rows {
		indices = append(indices, r.index)
	}
	return t.Take(indices), nil
}

// ByGaps sorts non-query rows by gap count.
func ByGaps(t *msa.Table, ascending bool) (*msa.Table, error) {
	return By(t, GapCount, ascending)
}

// ByIdentity sorts non-query rows by the raw count of positions matching
// the query.
func ByIdentity(t *msa.Table, ascending bool) (*msa.Table, error) {
	return By(t, IdentityCount, ascending)
}
