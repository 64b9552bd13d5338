// Package combine merges alignment tables side by side or on top of each
// other.
package combine

import (
	"fmt"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/aria-lang/msaflow-go/internal/shape"
)

// Direction says how a part joins the running result.
type Direction string

const (
	// Horizontal appends each sequence to the matching row of the result.
	Horizontal Direction = "horizontal"
	// Vertical stacks the rows below the result.
	Vertical Direction = "vertical"
)

// ParseDirection validates a direction name. The empty string means
// Horizontal.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(s)); d {
	case Horizontal, Vertical:
		return d, nil
	case "":
		return Horizontal, nil
	default:
		return "", &msa.InvalidParameterError{Name: "direction", Value: s, Reason: "expected horizontal or vertical"}
	}
}

// Range is a half-open [Start, End) interval.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Part is one input to Combine.
type Part struct {
	Table *msa.Table
	// Columns optionally slices every sequence before joining.
	Columns *Range
	// Rows optionally keeps a row range before joining.
	Rows      *Range
	Direction Direction
}

// Options tunes Combine.
type Options struct {
	// StrictDepth rejects horizontal parts whose depth differs from the
	// running result instead of adjusting them.
	StrictDepth bool
}

// Combine folds parts left to right into one table. The first part seeds
// the result and its direction is ignored.
func Combine(parts []Part, opts Options) (*msa.Table, error) {
	if len(parts) == 0 {
		return nil, &msa.InvalidParameterError{Name: "parts", Value: 0, Reason: "nothing to combine"}
	}

	var result *msa.Table
	for i, p := range parts {
		t, err := p.prepare()
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		if result == nil {
			result = t
			continue
		}

		dir, err := ParseDirection(string(p.Direction))
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		switch dir {
		case Horizontal:
			result, err = joinHorizontal(result, t, opts)
		case Vertical:
			result, err = joinVertical(result, t)
		}
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
	}
	return result, nil
}

func (p Part) prepare() (*msa.Table, error) {
	if err := msa.RequireSequences(p.Table); err != nil {
		return nil, err
	}
	t := p.Table.Clone()
	var err error
	if p.Columns != nil {
		if t, err = shape.SliceSequences(t, p.Columns.Start, p.Columns.End); err != nil {
			return nil, err
		}
	}
	if p.Rows != nil {
		if t, err = shape.SliceRows(t, p.Rows.Start, p.Rows.End); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// joinHorizontal concatenates sequences row for row. The auxiliary columns
// of the incoming table are dropped.
func joinHorizontal(result, t *msa.Table, opts Options) (*msa.Table, error) {
	if t.Len() != result.Len() {
		if opts.StrictDepth {
			return nil, &msa.ShapeMismatchError{Op: "horizontal combine", Want: result.Len(), Got: t.Len()}
		}
		adjusted, err := shape.AdjustDepth(t, result.Len())
		if err != nil {
			return nil, err
		}
		t = adjusted
	}

	seqs := result.Sequences()
	for i := range seqs {
		seqs[i] += t.Sequence(i)
	}
	return result.WithSequences(seqs)
}

// joinVertical fits the incoming sequences to the length of the result's
// first row and stacks them.
func joinVertical(result, t *msa.Table) (*msa.Table, error) {
	width := 0
	if result.Len() > 0 {
		width = len(result.Sequence(0))
	}
	unified, err := shape.UnifyLength(t, shape.Exactly(width))
	if err != nil {
		return nil, err
	}
	return msa.Concat(result, unified), nil
}
