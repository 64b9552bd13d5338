package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/aria-lang/msaflow-go/internal/cluster"
	"github.com/aria-lang/msaflow-go/internal/encode"
	"github.com/aria-lang/msaflow-go/pkg/msaflow"
)

func newClusterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster rows with DBSCAN or k-means, or search for a DBSCAN eps",
	}
	cmd.AddCommand(newDBSCANCmd(a), newKMeansCmd(a), newEpsCmd(a))
	return cmd
}

// searchFlags holds the eps grid flags shared by dbscan and eps.
type searchFlags struct {
	minEps, maxEps, step float64
	desired              int
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.minEps, "min-eps", 0, "smallest eps to try (default from config)")
	cmd.Flags().Float64Var(&f.maxEps, "max-eps", 0, "largest eps to try (default from config)")
	cmd.Flags().Float64Var(&f.step, "eps-step", 0, "eps increment (default from config)")
	cmd.Flags().IntVar(&f.desired, "desired-clusters", cluster.MaxClusters, "target cluster count, -1 for the most clusters")
}

// gridSearch merges the flags the user set into the configured search.
func (f *searchFlags) gridSearch(a *app, cmd *cobra.Command, minSamples int, columns []string) cluster.GridSearch {
	g := a.cfg.Cluster.GridSearch()
	if cmd.Flags().Changed("min-eps") {
		g.MinEps = f.minEps
	}
	if cmd.Flags().Changed("max-eps") {
		g.MaxEps = f.maxEps
	}
	if cmd.Flags().Changed("eps-step") {
		g.Step = f.step
	}
	if minSamples != 0 {
		g.MinSamples = minSamples
	}
	g.DesiredClusters = f.desired
	g.Columns = columns
	return g
}

// splitFlags writes every cluster of a result to its own file.
type splitFlags struct {
	dir string
	ids []int
}

func (f *splitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "split-dir", "", "also write each cluster to <dir>/<input stem>_<kind>_<id>.<output ext>; noise is skipped")
	cmd.Flags().IntSliceVar(&f.ids, "split-ids", nil, "split only these clusters, named <stem>_selected_cluster_<id>")
}

func (f *splitFlags) check() error {
	if len(f.ids) > 0 && f.dir == "" {
		return fmt.Errorf("--split-ids needs --split-dir")
	}
	return nil
}

// write splits t and writes the parts in the format of output.
func (f *splitFlags) write(cmd *cobra.Command, kind msaflow.SplitKind, input, output string, t *msaflow.Table) error {
	if f.dir == "" {
		return nil
	}
	if len(f.ids) > 0 {
		kind = msaflow.SplitSelected
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	parts, err := msaflow.SplitClusters(t, kind.Prefix(stem), f.ids...)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}
	for _, p := range parts {
		if err := msaflow.WriteFile(filepath.Join(f.dir, p.Name+filepath.Ext(output)), p.Table); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d cluster files to %s\n", len(parts), f.dir)
	return nil
}

// progressBar reports grid search progress on stderr. The bar is created on
// the first callback, once the grid size is known.
type progressBar struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newProgressBar(quiet bool) *progressBar {
	if quiet {
		return nil
	}
	return &progressBar{p: mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))}
}

func (pb *progressBar) attach(g *cluster.GridSearch) {
	if pb == nil {
		return
	}
	g.Progress = func(done, total int) {
		if pb.bar == nil {
			pb.bar = pb.p.AddBar(int64(total),
				mpb.PrependDecorators(
					decor.Name("eps candidates: ", decor.WC{W: len("eps candidates: "), C: decor.DindentRight}),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
				),
			)
		}
		pb.bar.SetCurrent(int64(done))
	}
}

// finish waits for the bar to render, aborting it when the search failed.
func (pb *progressBar) finish(failed bool) {
	if pb == nil {
		return
	}
	if failed && pb.bar != nil {
		pb.bar.Abort(false)
	}
	pb.p.Wait()
}

func newDBSCANCmd(a *app) *cobra.Command {
	var (
		d      cluster.DBSCAN
		search searchFlags
		split  splitFlags
	)

	cmd := &cobra.Command{
		Use:   "dbscan <input> <output>",
		Short: "Cluster rows with DBSCAN; eps 0 searches for it",
		Args:  cobra.ExactArgs(2),
		Example: `  msaflow cluster dbscan query.a3m clusters.csv --eps 6.5
  msaflow cluster dbscan query.a3m clusters.csv --consensus --levenshtein
  msaflow cluster dbscan query.a3m clusters.a3m --split-dir parts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := split.check(); err != nil {
				return err
			}
			t, err := msaflow.ReadFile(args[0])
			if err != nil {
				return err
			}
			if d.MinSamples == 0 {
				d.MinSamples = a.cfg.Cluster.MinSamples
			}
			g := search.gridSearch(a, cmd, d.MinSamples, d.Columns)
			d.Search = &g

			var pb *progressBar
			if d.Eps == 0 {
				pb = newProgressBar(a.quiet)
				pb.attach(d.Search)
			}
			res, err := d.Run(cmd.Context(), t)
			pb.finish(err != nil)
			if err != nil {
				return err
			}

			if err := msaflow.WriteFile(args[1], res.Table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "eps %g: %d clusters, %s noise rows\n",
				res.Eps, res.Clusters, humanize.Comma(int64(res.Noise)))
			printSizes(cmd, cluster.Sizes(res.Labels))
			return split.write(cmd, msaflow.SplitCluster, args[0], args[1], res.Table)
		},
	}
	cmd.Flags().Float64Var(&d.Eps, "eps", 0, "neighbourhood radius, 0 to search for it")
	cmd.Flags().IntVar(&d.MinSamples, "min-samples", 0, "rows needed for a core point, itself included (default from config)")
	cmd.Flags().StringSliceVar(&d.Columns, "columns", nil, "numeric columns appended to the encoding")
	cmd.Flags().BoolVar(&d.Consensus, "consensus", false, "add a consensus sequence column")
	cmd.Flags().BoolVar(&d.Levenshtein, "levenshtein", false, "add edit distances to the query and the consensus")
	search.register(cmd)
	split.register(cmd)
	return cmd
}

func newKMeansCmd(a *app) *cobra.Command {
	var (
		km       cluster.KMeans
		encoding string
		split    splitFlags
	)

	cmd := &cobra.Command{
		Use:     "kmeans <input> <output>",
		Short:   "Partition rows into k clusters",
		Args:    cobra.ExactArgs(2),
		Example: "  msaflow cluster kmeans query.a3m clusters.csv -k 8 --seed 42",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := split.check(); err != nil {
				return err
			}
			enc, err := encode.Parse(encoding)
			if err != nil {
				return err
			}
			km.Encoding = enc
			if km.MaxIter == 0 {
				km.MaxIter = a.cfg.Cluster.KMeansMaxIter
			}

			t, err := msaflow.ReadFile(args[0])
			if err != nil {
				return err
			}
			labels, err := km.Labels(cmd.Context(), t)
			if err != nil {
				return err
			}
			out, err := t.WithClusterIDs(labels)
			if err != nil {
				return err
			}
			if err := msaflow.WriteFile(args[1], out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d clusters\n", cluster.Count(labels))
			printSizes(cmd, cluster.Sizes(labels))
			return split.write(cmd, msaflow.SplitKMeans, args[0], args[1], out)
		},
	}
	cmd.Flags().IntVarP(&km.K, "k", "k", 0, "number of clusters")
	cmd.Flags().StringVar(&encoding, "encoding", string(encode.OneHot), "sequence encoding: onehot or numvector")
	cmd.Flags().StringSliceVar(&km.Columns, "columns", nil, "numeric columns appended to the encoding")
	cmd.Flags().IntVar(&km.MaxIter, "max-iter", 0, "iteration limit (default from config)")
	cmd.Flags().Int64Var(&km.Seed, "seed", 0, "shuffle initial centroids with this seed, 0 keeps row order")
	split.register(cmd)
	cmd.MarkFlagRequired("k")
	return cmd
}

func newEpsCmd(a *app) *cobra.Command {
	var (
		search     searchFlags
		minSamples int
		columns    []string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:     "eps <input>",
		Short:   "Search for the DBSCAN eps giving the desired cluster count",
		Args:    cobra.ExactArgs(1),
		Example: "  msaflow cluster eps query.a3m --min-eps 2 --max-eps 12 --eps-step 0.25 --desired-clusters 10",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := msaflow.ReadFile(args[0])
			if err != nil {
				return err
			}
			g := search.gridSearch(a, cmd, minSamples, columns)

			pb := newProgressBar(a.quiet)
			pb.attach(&g)
			res, err := g.Run(cmd.Context(), t)
			pb.finish(err != nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				for _, c := range res.Candidates {
					fmt.Fprintf(out, "%8g  %d\n", c.Eps, c.Clusters)
				}
			}
			fmt.Fprintf(out, "eps %g: %d clusters\n", res.Eps, res.Clusters)
			return nil
		},
	}
	cmd.Flags().IntVar(&minSamples, "min-samples", 0, "rows needed for a core point (default from config)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "numeric columns appended to the encoding")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every candidate")
	search.register(cmd)
	return cmd
}

func printSizes(cmd *cobra.Command, sizes map[int]int) {
	labels := make([]int, 0, len(sizes))
	for l := range sizes {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	parts := make([]string, len(labels))
	for i, l := range labels {
		name := fmt.Sprintf("%d", l)
		if l == msaflow.NoiseLabel {
			name = "noise"
		}
		parts[i] = fmt.Sprintf("%s=%s", name, humanize.Comma(int64(sizes[l])))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sizes: %s\n", strings.Join(parts, " "))
}
