package msaflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/filter"
	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/aria-lang/msaflow-go/internal/rank"
	"github.com/aria-lang/msaflow-go/internal/remote"
	"github.com/aria-lang/msaflow-go/internal/shape"
)

// Edit operation names.
const (
	OpUnifyLength    = "unify_length"
	OpSlice          = "slice"
	OpSliceRows      = "slice_rows"
	OpAdjustDepth    = "adjust_depth"
	OpExtendDepth    = "extend_depth"
	OpCropDepth      = "crop_depth"
	OpFilterGaps     = "filter_gaps"
	OpDropDuplicates = "drop_duplicates"
	OpFilterIdentity = "filter_identity"
	OpSortGaps       = "sort_gaps"
	OpSortIdentity   = "sort_identity"
	OpVet            = "vet"
	OpHHFilter       = "hhfilter"
)

// Step is one table edit. Only the fields its Op reads are used.
type Step struct {
	Op        string   `json:"op"`
	Target    string   `json:"target,omitempty"`
	Start     int      `json:"start,omitempty"`
	End       int      `json:"end,omitempty"`
	Depth     int      `json:"depth,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Method    string   `json:"method,omitempty"`
	KeepLast  bool     `json:"keep_last,omitempty"`
	Ascending bool     `json:"ascending,omitempty"`
}

// EditOptions supplies collaborators some steps need.
type EditOptions struct {
	// HHFilter runs the hhfilter step; nil rejects it.
	HHFilter *remote.HHFilter
}

// Edit applies steps in order. A failing step aborts the whole edit. The
// report totals the rows each kind of filter step removed; its KeptRows is
// the depth of the result, which extend steps can push above InputRows.
func Edit(ctx context.Context, t *Table, steps []Step, opts EditOptions) (*Table, *FilterReport, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, nil, err
	}
	report := &FilterReport{InputRows: t.Len()}
	out := t.Clone()
	for i, s := range steps {
		next, err := s.apply(ctx, out, opts, report)
		if err != nil {
			return nil, nil, fmt.Errorf("step %d (%s): %w", i, s.Op, err)
		}
		out = next
	}
	report.KeptRows = out.Len()
	return out, report, nil
}

// runFilter applies a single-stage pipeline and folds its counts into report.
func runFilter(t *Table, p *filter.Pipeline, report *FilterReport) (*Table, error) {
	out, r, err := p.Apply(t)
	if err != nil {
		return nil, err
	}
	report.Merge(r)
	return out, nil
}

func (s Step) threshold() (float64, error) {
	if s.Threshold == nil {
		return 0, &msa.InvalidParameterError{Name: "threshold", Value: nil, Reason: "required"}
	}
	return *s.Threshold, nil
}

func (s Step) apply(ctx context.Context, t *Table, opts EditOptions, report *FilterReport) (*Table, error) {
	switch s.Op {
	case OpUnifyLength:
		target, err := shape.ParseTarget(s.Target)
		if err != nil {
			return nil, err
		}
		return shape.UnifyLength(t, target)
	case OpSlice:
		return shape.SliceSequences(t, s.Start, s.End)
	case OpSliceRows:
		return shape.SliceRows(t, s.Start, s.End)
	case OpAdjustDepth:
		return shape.AdjustDepth(t, s.Depth)
	case OpExtendDepth:
		return shape.ExtendToDepth(t, s.Depth)
	case OpCropDepth:
		return shape.CropToDepth(t, s.Depth)
	case OpFilterGaps:
		v, err := s.threshold()
		if err != nil {
			return nil, err
		}
		return runFilter(t, &filter.Pipeline{MaxGapFraction: &v}, report)
	case OpDropDuplicates:
		return runFilter(t, &filter.Pipeline{DropDuplicates: true, KeepLast: s.KeepLast}, report)
	case OpFilterIdentity:
		v, err := s.threshold()
		if err != nil {
			return nil, err
		}
		method, err := filter.ParseMethod(s.Method)
		if err != nil {
			return nil, err
		}
		return runFilter(t, &filter.Pipeline{IdentityThreshold: &v, IdentityMethod: method}, report)
	case OpSortGaps:
		return rank.ByGaps(t, s.Ascending)
	case OpSortIdentity:
		return rank.ByIdentity(t, s.Ascending)
	case OpVet:
		return t.Vetted(), nil
	case OpHHFilter:
		if opts.HHFilter == nil {
			return nil, &msa.InvalidParameterError{Name: "op", Value: s.Op, Reason: "hhfilter is not configured"}
		}
		out, err := opts.HHFilter.Filter(ctx, t)
		if err != nil {
			return nil, err
		}
		report.RemovedExternal += t.Len() - out.Len()
		return out, nil
	default:
		return nil, &msa.InvalidParameterError{Name: "op", Value: s.Op, Reason: "unknown edit operation"}
	}
}

// ParseStep reads the command line form of a step, "op" or "op:arg[,arg]":
//
//	unify_length:max         slice:0,120          slice_rows:0,500
//	adjust_depth:256         extend_depth:256     crop_depth:256
//	filter_gaps:0.25         filter_identity:0.3,remove
//	drop_duplicates[:last]   sort_gaps[:asc]      sort_identity[:desc]
//	vet                      hhfilter
func ParseStep(text string) (Step, error) {
	op, arg, _ := strings.Cut(strings.TrimSpace(text), ":")
	s := Step{Op: op}
	args := []string{}
	if arg != "" {
		args = strings.Split(arg, ",")
	}
	bad := func(reason string) (Step, error) {
		return Step{}, &msa.InvalidParameterError{Name: "step", Value: text, Reason: reason}
	}

	var err error
	switch op {
	case OpUnifyLength:
		if len(args) > 0 {
			s.Target = args[0]
		}
	case OpSlice, OpSliceRows:
		if len(args) != 2 {
			return bad("expected start,end")
		}
		if s.Start, err = strconv.Atoi(args[0]); err != nil {
			return bad("start is not an integer")
		}
		if s.End, err = strconv.Atoi(args[1]); err != nil {
			return bad("end is not an integer")
		}
	case OpAdjustDepth, OpExtendDepth, OpCropDepth:
		if len(args) != 1 {
			return bad("expected a depth")
		}
		if s.Depth, err = strconv.Atoi(args[0]); err != nil {
			return bad("depth is not an integer")
		}
	case OpFilterGaps, OpFilterIdentity:
		if len(args) < 1 || len(args) > 2 || (op == OpFilterGaps && len(args) != 1) {
			return bad("expected a threshold")
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return bad("threshold is not a number")
		}
		s.Threshold = &v
		if len(args) == 2 {
			s.Method = args[1]
		}
	case OpDropDuplicates:
		if len(args) > 0 {
			switch args[0] {
			case "first":
			case "last":
				s.KeepLast = true
			default:
				return bad("expected first or last")
			}
		}
	case OpSortGaps, OpSortIdentity:
		s.Ascending = true
		if len(args) > 0 {
			switch args[0] {
			case "asc":
			case "desc":
				s.Ascending = false
			default:
				return bad("expected asc or desc")
			}
		}
	case OpVet, OpHHFilter:
	default:
		return bad("unknown edit operation")
	}
	return s, nil
}
