package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aria-lang/msaflow-go/internal/remote"
	"github.com/aria-lang/msaflow-go/pkg/msaflow"
)

func newEditCmd(a *app) *cobra.Command {
	var steps []string

	cmd := &cobra.Command{
		Use:   "edit <input> <output>",
		Short: "Apply shape, filter and ranking steps in order",
		Long: `Apply shape, filter and ranking steps in order. Each --step is "op" or
"op:arg[,arg]":

  unify_length:max         slice:0,120          slice_rows:0,500
  adjust_depth:256         extend_depth:256     crop_depth:256
  filter_gaps:0.25         filter_identity:0.3,remove
  drop_duplicates[:last]   sort_gaps[:asc]      sort_identity[:desc]
  vet                      hhfilter`,
		Args:    cobra.ExactArgs(2),
		Example: "  msaflow edit query.a3m clean.a3m --step filter_gaps:0.25 --step drop_duplicates --step crop_depth:256",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]msaflow.Step, len(steps))
			for i, text := range steps {
				s, err := msaflow.ParseStep(text)
				if err != nil {
					return err
				}
				parsed[i] = s
			}

			t, err := msaflow.ReadFile(args[0])
			if err != nil {
				return err
			}
			opts := msaflow.EditOptions{
				HHFilter: &remote.HHFilter{Binary: a.cfg.HHFilter.Binary, Params: a.cfg.HHFilter.Params},
			}
			out, report, err := msaflow.Edit(cmd.Context(), t, parsed, opts)
			if err != nil {
				return err
			}
			if err := msaflow.WriteFile(args[1], out); err != nil {
				return err
			}
			a.logger.Info("edited",
				"steps", len(parsed),
				"before", humanize.Comma(int64(t.Len())),
				"after", humanize.Comma(int64(out.Len())))
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&steps, "step", "s", nil, "edit step, repeatable")
	cmd.MarkFlagRequired("step")
	return cmd
}
