package shape

import (
	"github.com/aria-lang/msaflow-go/internal/msa"
)

// AdjustDepth returns a table of exactly depth rows. Shorter tables are
// extended by repeating their rows in order, longer ones cropped to the
// first depth rows.
func AdjustDepth(t *msa.Table, depth int) (*msa.Table, error) {
	if err := checkDepth(t, depth); err != nil {
		return nil, err
	}
	if t.Len() < depth {
		return ExtendToDepth(t, depth)
	}
	return CropToDepth(t, depth)
}

// ExtendToDepth repeats the rows of t cyclically until it has depth rows.
// Tables already at least depth rows deep are returned unchanged.
func ExtendToDepth(t *msa.Table, depth int) (*msa.Table, error) {
	if err := checkDepth(t, depth); err != nil {
		return nil, err
	}
	n := t.Len()
	if depth <= n {
		return t.Clone(), nil
	}
	if n == 0 {
		return nil, &msa.InvalidParameterError{Name: "depth", Value: depth, Reason: "cannot extend an empty table"}
	}

	repeats := (depth + n - 1) / n
	indices := make([]int, 0, repeats*n)
	for r := 0; r < repeats; r++ {
		for i := 0; i < n; i++ {
			indices = append(indices, i)
		}
	}
	return t.Take(indices[:depth]), nil
}

// CropToDepth keeps the first depth rows of t. A negative depth, or one
// beyond the table, returns t unchanged.
func CropToDepth(t *msa.Table, depth int) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	if depth < 0 || depth >= t.Len() {
		return t.Clone(), nil
	}
	return t.Range(0, depth), nil
}

func checkDepth(t *msa.Table, depth int) error {
	if err := msa.RequireSequences(t); err != nil {
		return err
	}
	if depth < 0 {
		return &msa.InvalidParameterError{Name: "depth", Value: depth, Reason: "must not be negative"}
	}
	return nil
}
