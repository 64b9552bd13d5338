package main

import (
	"github.com/spf13/cobra"

	"github.com/aria-lang/msaflow-go/pkg/msaflow"
)

func newConvertCmd(a *app) *cobra.Command {
	var vet, hits bool

	cmd := &cobra.Command{
		Use:     "convert <input> <output>",
		Short:   "Convert between A3M and CSV, by file extension",
		Args:    cobra.ExactArgs(2),
		Example: "  msaflow convert query.a3m query.csv --vet\n  msaflow convert uniref.a3m hits.csv --hits",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := msaflow.ReadFile(args[0])
			if err != nil {
				return err
			}
			if hits {
				if t, err = msaflow.ParseHitHeaders(t); err != nil {
					return err
				}
			}
			if vet {
				t = t.Vetted()
			}
			if err := msaflow.WriteFile(args[1], t); err != nil {
				return err
			}
			a.logger.Info("converted", "input", args[0], "output", args[1], "depth", t.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&vet, "vet", false, "uppercase residues and replace gaps and unknown symbols with X")
	cmd.Flags().BoolVar(&hits, "hits", false, "split aligner hit headers into an id and score columns")
	return cmd
}
