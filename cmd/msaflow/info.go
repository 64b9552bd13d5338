package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aria-lang/msaflow-go/internal/stats"
	"github.com/aria-lang/msaflow-go/pkg/msaflow"
)

func newInfoCmd(a *app) *cobra.Command {
	var bins int
	var histograms bool

	cmd := &cobra.Command{
		Use:     "info <file>...",
		Short:   "Show alignment statistics",
		Args:    cobra.MinimumNArgs(1),
		Example: "  msaflow info query.a3m clusters.csv --histograms",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				t, err := msaflow.ReadFile(path)
				if err != nil {
					return err
				}
				s, err := msaflow.Stats(t)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				fmt.Fprintf(out, "%s: %s sequences, %s unique, length %d-%d",
					path, humanize.Comma(int64(s.Depth)), humanize.Comma(int64(s.Unique)),
					s.MinLength, s.MaxLength)
				if s.Clusters != nil {
					fmt.Fprintf(out, ", %d clusters", s.ClusterCount())
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, s)

				if !histograms {
					continue
				}
				gaps, err := stats.GapHistogram(t, bins)
				if err != nil {
					return err
				}
				identity, err := stats.IdentityHistogram(t, bins)
				if err != nil {
					return err
				}
				for _, h := range []*stats.Histogram{gaps, identity} {
					lo, hi := h.ModeBin()
					fmt.Fprint(out, h)
					fmt.Fprintf(out, "most rows: %.0f-%.0f%%\n", lo*100, hi*100)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&histograms, "histograms", false, "also print gap and identity histograms")
	cmd.Flags().IntVar(&bins, "bins", 10, "histogram bins")
	return cmd
}
