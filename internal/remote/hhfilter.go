package remote

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/aria-lang/msaflow-go/internal/filter"
	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/aria-lang/msaflow-go/internal/msaio"
)

// HHFilterParams maps to the hhfilter command line options of the same
// names.
type HHFilterParams struct {
	Diff                int     `mapstructure:"diff" json:"diff"`
	MaxPairwiseIdentity int     `mapstructure:"id" json:"id"`
	MinQueryCoverage    int     `mapstructure:"cov" json:"cov"`
	MinQueryIdentity    int     `mapstructure:"qid" json:"qid"`
	MinQueryScore       float64 `mapstructure:"qsc" json:"qsc"`
	TargetDiversity     int     `mapstructure:"neff" json:"neff"`
}

// DefaultHHFilterParams returns hhfilter's usual settings with -diff 0.
func DefaultHHFilterParams() HHFilterParams {
	return HHFilterParams{
		MaxPairwiseIdentity: 100,
		MinQueryCoverage:    50,
		MinQueryScore:       -20,
	}
}

func (p HHFilterParams) args() []string {
	return []string{
		"-diff", strconv.Itoa(p.Diff),
		"-id", strconv.Itoa(p.MaxPairwiseIdentity),
		"-cov", strconv.Itoa(p.MinQueryCoverage),
		"-qid", strconv.Itoa(p.MinQueryIdentity),
		"-qsc", strconv.FormatFloat(p.MinQueryScore, 'f', -1, 64),
		"-neff", strconv.Itoa(p.TargetDiversity),
	}
}

// HHFilter runs the hhfilter binary over a table.
type HHFilter struct {
	// Binary is the executable name or path; empty means "hhfilter".
	Binary string
	// Dir holds the temporary files; empty means os.TempDir().
	Dir    string
	Params HHFilterParams
}

func (h *HHFilter) binary() string {
	if h.Binary == "" {
		return "hhfilter"
	}
	return h.Binary
}

// Available reports whether the binary can be run.
func (h *HHFilter) Available(ctx context.Context) bool {
	return exec.CommandContext(ctx, h.binary(), "-h").Run() == nil
}

// Filter writes t to a temporary A3M file, runs hhfilter on it and returns
// the rows of t whose sequence survives, in their original order and with
// their auxiliary columns.
func (h *HHFilter) Filter(ctx context.Context, t *msa.Table) (*msa.Table, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}

	dir := h.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	id := uuid.NewString()
	input := filepath.Join(dir, id+".a3m")
	output := filepath.Join(dir, id+".filtered.a3m")
	defer os.Remove(input)
	defer os.Remove(output)

	if err := msaio.WriteFile(input, t); err != nil {
		return nil, &RemoteServiceError{Service: "hhfilter", Op: "write input", Err: err}
	}

	args := append(h.Params.args(), "-i", input, "-o", output)
	cmd := exec.CommandContext(ctx, h.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return nil, &RemoteServiceError{Service: "hhfilter", Op: "run", Err: err}
	}

	kept, err := msaio.ReadFile(output)
	if err != nil {
		return nil, &RemoteServiceError{Service: "hhfilter", Op: "read output", Err: err}
	}
	return filter.Matching(t, kept)
}
