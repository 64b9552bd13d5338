package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aria-lang/msaflow-go/internal/combine"
	"github.com/aria-lang/msaflow-go/pkg/msaflow"
)

// partSpec is a combine input as given on the command line.
type partSpec struct {
	Path      string
	Direction combine.Direction
	Columns   *combine.Range
	Rows      *combine.Range
}

// parsePart reads "path[,dir=horizontal|vertical][,columns=S:E][,rows=S:E]".
func parsePart(text string) (partSpec, error) {
	fields := strings.Split(text, ",")
	p := partSpec{Path: fields[0], Direction: combine.Horizontal}
	if p.Path == "" {
		return p, fmt.Errorf("part %q: missing path", text)
	}

	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return p, fmt.Errorf("part %q: expected key=value, got %q", text, f)
		}
		var err error
		switch key {
		case "dir", "direction":
			p.Direction, err = combine.ParseDirection(value)
		case "columns", "cols":
			p.Columns, err = parseRange(value)
		case "rows":
			p.Rows, err = parseRange(value)
		default:
			err = fmt.Errorf("unknown option %q", key)
		}
		if err != nil {
			return p, fmt.Errorf("part %q: %w", text, err)
		}
	}
	return p, nil
}

func parseRange(s string) (*combine.Range, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("range %q: expected start:end", s)
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", s, err)
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", s, err)
	}
	return &combine.Range{Start: start, End: end}, nil
}

func newCombineCmd(a *app) *cobra.Command {
	var strictDepth bool

	cmd := &cobra.Command{
		Use:   "combine <output> <part>...",
		Short: "Join alignments left to right",
		Long: `Join alignments left to right. Each part is
"path[,dir=horizontal|vertical][,columns=S:E][,rows=S:E]". Horizontal parts
extend every row of the result; vertical parts are stacked below it. The
first part's direction is ignored.`,
		Args:    cobra.MinimumNArgs(2),
		Example: "  msaflow combine paired.a3m chainA.a3m chainB.a3m,columns=0:120 extra.a3m,dir=vertical",
		RunE: func(cmd *cobra.Command, args []string) error {
			parts := make([]msaflow.Part, 0, len(args)-1)
			for _, text := range args[1:] {
				ps, err := parsePart(text)
				if err != nil {
					return err
				}
				t, err := msaflow.ReadFile(ps.Path)
				if err != nil {
					return err
				}
				parts = append(parts, msaflow.Part{
					Table:     t,
					Columns:   ps.Columns,
					Rows:      ps.Rows,
					Direction: ps.Direction,
				})
			}

			out, err := msaflow.Combine(parts, strictDepth)
			if err != nil {
				return err
			}
			if err := msaflow.WriteFile(args[0], out); err != nil {
				return err
			}
			a.logger.Info("combined", "parts", len(parts), "depth", out.Len(), "length", len(out.Query()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strictDepth, "strict-depth", false, "fail on horizontal depth mismatch instead of adjusting depth")
	return cmd
}
