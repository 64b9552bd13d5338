package msaflow

import (
	"context"
	"errors"

	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/aria-lang/msaflow-go/internal/remote"
)

type (
	Aligner      = remote.Aligner
	AlignOptions = remote.AlignOptions
	Pairing      = remote.Pairing
)

// Pairing modes for multi-chain queries.
const (
	PairNone     = remote.PairNone
	PairGreedy   = remote.PairGreedy
	PairComplete = remote.PairComplete
)

// Align asks a for an alignment of the query sequences and splits the hit
// headers it returns into a target id and score columns. Failures of the
// aligner are reported as *remote.RemoteServiceError tagged with the
// service mode.
func Align(ctx context.Context, a Aligner, sequences []string, opts AlignOptions) (*Table, error) {
	if len(sequences) == 0 {
		return nil, &msa.InvalidParameterError{Name: "sequences", Value: sequences, Reason: "at least one query is required"}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	t, err := a.Align(ctx, sequences, opts)
	if err != nil {
		var rse *remote.RemoteServiceError
		if errors.As(err, &rse) {
			return nil, err
		}
		return nil, &remote.RemoteServiceError{Service: "aligner", Op: opts.Mode(), Err: err}
	}
	return remote.ParseHitHeaders(t)
}

// ParseHitHeaders splits aligner hit headers into a target id and numeric
// score columns.
func ParseHitHeaders(t *Table) (*Table, error) {
	return remote.ParseHitHeaders(t)
}
