// Package filter removes rows from alignment tables.
//
// The single-step functions (Gaps, Duplicates, Identity) each return a new
// table. Pipeline chains them and reports how many rows each step removed.
package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/distance"
	"github.com/aria-lang/msaflow-go/internal/msa"
)

// Method decides which side of an identity threshold is retained.
type Method string

const (
	// Keep retains rows with identity at or above the threshold.
	Keep Method = "keep"
	// Remove retains rows with identity below the threshold.
	Remove Method = "remove"
)

// ParseMethod validates an identity filter method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case Keep, Remove:
		return m, nil
	case "":
		return Keep, nil
	default:
		return "", &msa.InvalidParameterError{Name: "identity method", Value: s, Reason: "expected keep or remove"}
	}
}

func checkFraction(name string, v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return &msa.InvalidParameterError{Name: name, Value: v, Reason: "must be between 0 and 1"}
	}
	return nil
}

// Gaps keeps rows whose gap fraction is at most allowed.
func Gaps(t *msa.Table, allowed float64) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	if err := checkFraction("allowed gap fraction", allowed); err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool {
		return msa.GapFraction(t.Sequence(i)) <= allowed
	}), nil
}

// Duplicates drops rows whose sequence already appeared, keeping the first
// occurrence, or the last one when keepFirst is false. Survivors keep their
// relative order.
func Duplicates(t *msa.Table, keepFirst bool) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}

	n := t.Len()
	keep := make([]bool, n)
	seen := make(map[string]bool, n)
	visit := func(i int) {
		s := t.Sequence(i)
		if !seen[s] {
			seen[s] = true
			keep[i] = true
		}
	}
	if keepFirst {
		for i := 0; i < n; i++ {
			visit(i)
		}
	} else {
		for i := n - 1; i >= 0; i-- {
			visit(i)
		}
	}

	return t.Filter(func(i int) bool { return keep[i] }), nil
}

// Identity filters rows by their fractional identity to the query. The query
// row is always kept at position 0.
func Identity(t *msa.Table, threshold float64, method Method) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	if err := checkFraction("identity threshold", threshold); err != nil {
		return nil, err
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return t.Clone(), nil
	}

	query := t.Query()
	return t.Filter(func(i int) bool {
		if i == 0 {
			return true
		}
		id := distance.IdentityFraction(query, t.Sequence(i))
		if method == Remove {
			return id < threshold
		}
		return id >= threshold
	}), nil
}

// Pipeline is a configurable chain of row filters applied in a fixed order:
// duplicates, gaps, identity, depth cap.
type Pipeline struct {
	DropDuplicates    bool
	KeepLast          bool     // keep the last duplicate instead of the first
	MaxGapFraction    *float64 // nil disables the gap filter
	IdentityThreshold *float64 // nil disables the identity filter
	IdentityMethod    Method
	MaxDepth          int // 0 disables the depth cap
}

// Report summarises a Pipeline run. RemovedExternal counts rows dropped by
// an external filter such as hhfilter; Pipeline itself never sets it.
type Report struct {
	InputRows         int `json:"input_rows"`
	KeptRows          int `json:"kept_rows"`
	RemovedDuplicates int `json:"removed_duplicates"`
	RemovedGaps       int `json:"removed_gaps"`
	RemovedIdentity   int `json:"removed_identity"`
	RemovedDepth      int `json:"removed_depth"`
	RemovedExternal   int `json:"removed_external"`
}

// Merge adds the removal counts of o to r. Row totals are left alone.
func (r *Report) Merge(o *Report) {
	r.RemovedDuplicates += o.RemovedDuplicates
	r.RemovedGaps += o.RemovedGaps
	r.RemovedIdentity += o.RemovedIdentity
	r.RemovedDepth += o.RemovedDepth
	r.RemovedExternal += o.RemovedExternal
}

// KeepRate returns the proportion of rows that survived.
func (r *Report) KeepRate() float64 {
	if r.InputRows == 0 {
		return 0.0
	}
	return float64(r.KeptRows) / float64(r.InputRows)
}

func (r *Report) String() string {
	return fmt.Sprintf("FilterReport { input: %d, kept: %d (%.1f%%), duplicates: %d, gaps: %d, identity: %d, depth: %d, external: %d }",
		r.InputRows, r.KeptRows, r.KeepRate()*100,
		r.RemovedDuplicates, r.RemovedGaps, r.RemovedIdentity, r.RemovedDepth, r.RemovedExternal)
}

// Apply runs the configured filters. Either every step succeeds and the
// filtered table is returned, or the first failure is returned with no table.
func (p *Pipeline) Apply(t *msa.Table) (*msa.Table, *Report, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, nil, err
	}
	if p.MaxDepth < 0 {
		return nil, nil, &msa.InvalidParameterError{Name: "max depth", Value: p.MaxDepth, Reason: "must not be negative"}
	}

	report := &Report{InputRows: t.Len()}
	out := t
	var err error

	if p.DropDuplicates {
		before := out.Len()
		if out, err = Duplicates(out, !p.KeepLast); err != nil {
			return nil, nil, err
		}
		report.RemovedDuplicates = before - out.Len()
	}

	if p.MaxGapFraction != nil {
		before := out.Len()
		if out, err = Gaps(out, *p.MaxGapFraction); err != nil {
			return nil, nil, err
		}
		report.RemovedGaps = before - out.Len()
	}

	if p.IdentityThreshold != nil {
		method := p.IdentityMethod
		if method == "" {
			method = Keep
		}
		before := out.Len()
		if out, err = Identity(out, *p.IdentityThreshold, method); err != nil {
			return nil, nil, err
		}
		report.RemovedIdentity = before - out.Len()
	}

	if p.MaxDepth > 0 && out.Len() > p.MaxDepth {
		report.RemovedDepth = out.Len() - p.MaxDepth
		out = out.Range(0, p.MaxDepth)
	}

	if out == t {
		out = t.Clone()
	}
	report.KeptRows = out.Len()
	return out, report, nil
}

// Matching keeps the rows of t whose sequence occurs in subset. External
// filters that only echo sequences back use it to recover the original rows
// with all their columns.
func Matching(t, subset *msa.Table) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	if err := msa.RequireSequences(subset); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, subset.Len())
	for _, s := range subset.Sequences() {
		wanted[s] = true
	}
	return t.Filter(func(i int) bool { return wanted[t.Sequence(i)] }), nil
}
