// Package remote describes the external services an alignment table can
// come from or be refined by: a remote aligner and the hhfilter binary.
package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/msa"
)

// Pairing selects how a multi-chain query is paired by the aligner.
type Pairing string

const (
	PairNone     Pairing = ""
	PairGreedy   Pairing = "greedy"
	PairComplete Pairing = "complete"
)

// AlignOptions configures a remote alignment job.
type AlignOptions struct {
	Pairing Pairing
	// Filter asks the service to filter its hits.
	Filter bool
	// Env adds the environmental sequence databases.
	Env bool
}

// Validate rejects unknown pairing modes.
func (o AlignOptions) Validate() error {
	switch o.Pairing {
	case PairNone, PairGreedy, PairComplete:
		return nil
	default:
		return &msa.InvalidParameterError{Name: "pairing", Value: string(o.Pairing), Reason: "expected greedy or complete"}
	}
}

// Mode returns the service mode string for the options. Filtering does not
// apply to paired jobs.
func (o AlignOptions) Mode() string {
	var mode string
	switch o.Pairing {
	case PairGreedy:
		mode = "pairgreedy"
	case PairComplete:
		mode = "paircomplete"
	default:
		switch {
		case o.Filter && o.Env:
			return "env"
		case o.Filter:
			return "all"
		case o.Env:
			return "env-nofilter"
		default:
			return "nofilter"
		}
	}
	if o.Env {
		mode += "-env"
	}
	return mode
}

// Aligner produces an alignment for one or more query sequences.
type Aligner interface {
	Align(ctx context.Context, sequences []string, opts AlignOptions) (*msa.Table, error)
}

// RemoteServiceError reports a failure of an external collaborator.
type RemoteServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

func (e *RemoteServiceError) IsMSAError() {}

// Hit header fields written by the alignment service after the target id.
var hitFields = []string{"alnScore", "seqIdentity", "eVal", "qStart", "qEnd", "qLen", "tStart", "tEnd", "tLen"}

// ParseHitHeaders splits service headers of the form
// "target score identity evalue qstart qend qlen tstart tend tlen" into a
// target-id header and numeric columns. Headers holding only an id get
// zeros.
func ParseHitHeaders(t *msa.Table) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	headers := make([]string, t.Len())
	values := make([][]float64, len(hitFields))
	for k := range values {
		values[k] = make([]float64, t.Len())
	}

	for i := 0; i < t.Len(); i++ {
		fields := strings.Fields(t.Header(i))
		if len(fields) == 0 {
			headers[i] = msa.SyntheticHeader(i)
			continue
		}
		headers[i] = fields[0]
		if len(fields) == 1 {
			continue
		}
		if len(fields) != len(hitFields)+1 {
			return nil, &msa.SchemaError{Column: msa.HeaderColumn, Reason: fmt.Sprintf("row %d: expected %d header fields, got %d", i, len(hitFields)+1, len(fields))}
		}
		for k, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &msa.SchemaError{Column: hitFields[k], Reason: fmt.Sprintf("row %d: %v", i, err)}
			}
			values[k][i] = v
		}
	}

	out, err := msa.New(headers, t.Sequences())
	if err != nil {
		return nil, err
	}
	for _, name := range t.Columns() {
		c, _ := t.Column(name)
		if c.Kind == msa.Numeric {
			out, err = out.WithNumeric(name, c.Floats)
		} else {
			out, err = out.WithText(name, c.Texts)
		}
		if err != nil {
			return nil, err
		}
	}
	for k, name := range hitFields {
		if out, err = out.WithNumeric(name, values[k]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
