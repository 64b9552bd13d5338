// Package shape normalizes the length and depth of alignment tables.
//
// Length is the number of characters per sequence, depth the number of rows.
// All functions return new tables and never modify their input.
package shape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/msa"
)

// Target selects the length UnifyLength pads or crops to.
type Target struct {
	mode   targetMode
	length int
}

type targetMode int

const (
	modeFirst targetMode = iota
	modeMax
	modeMin
	modeExact
)

var (
	// First is the length of the query sequence.
	First = Target{mode: modeFirst}
	// Max is the length of the longest sequence.
	Max = Target{mode: modeMax}
	// Min is the length of the shortest sequence.
	Min = Target{mode: modeMin}
)

// Exactly targets an explicit length.
func Exactly(n int) Target {
	return Target{mode: modeExact, length: n}
}

// ParseTarget reads "first", "max", "min" or an integer.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "":
		return First, nil
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return Target{}, &msa.InvalidParameterError{
			Name:   "sequence length",
			Value:  s,
			Reason: "must be first, max, min or a non-negative integer",
		}
	}
	return Exactly(n), nil
}

func (t Target) String() string {
	switch t.mode {
	case modeFirst:
		return "first"
	case modeMax:
		return "max"
	case modeMin:
		return "min"
	default:
		return strconv.Itoa(t.length)
	}
}

// Resolve returns the concrete length the target means for tbl.
func (t Target) Resolve(tbl *msa.Table) (int, error) {
	switch t.mode {
	case modeFirst:
		return len(tbl.Query()), nil
	case modeMax:
		return tbl.MaxLength(), nil
	case modeMin:
		return tbl.MinLength(), nil
	}
	if t.length < 0 {
		return 0, &msa.InvalidParameterError{Name: "sequence length", Value: t.length, Reason: "must not be negative"}
	}
	return t.length, nil
}

// Fit pads seq with gaps on the right up to n characters, then cuts it to n.
func Fit(seq string, n int) string {
	if len(seq) >= n {
		return seq[:n]
	}
	return seq + strings.Repeat(string(msa.Gap), n-len(seq))
}

// UnifyLength pads or crops every sequence to the target length.
func UnifyLength(t *msa.Table, target Target) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	n, err := target.Resolve(t)
	if err != nil {
		return nil, err
	}

	seqs := t.Sequences()
	for i, s := range seqs {
		seqs[i] = Fit(s, n)
	}
	return t.WithSequences(seqs)
}

// SliceSequences keeps characters [start, end) of every sequence. Bounds
// past the end of a sequence are clamped, so short sequences may come out
// shorter or empty.
func SliceSequences(t *msa.Table, start, end int) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	if start < 0 || end < start {
		return nil, &msa.InvalidParameterError{
			Name:   "slice",
			Value:  fmt.Sprintf("[%d, %d)", start, end),
			Reason: "need 0 <= start <= end",
		}
	}

	seqs := t.Sequences()
	for i, s := range seqs {
		lo := min(start, len(s))
		hi := min(end, len(s))
		seqs[i] = s[lo:hi]
	}
	return t.WithSequences(seqs)
}

// SliceRows keeps rows [start, end), clamped to the table.
func SliceRows(t *msa.Table, start, end int) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	if end < start {
		return nil, &msa.InvalidParameterError{
			Name:   "row range",
			Value:  fmt.Sprintf("[%d, %d)", start, end),
			Reason: "end must not precede start",
		}
	}
	return t.Range(start, end), nil
}
