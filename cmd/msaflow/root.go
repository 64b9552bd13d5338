package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aria-lang/msaflow-go/internal/config"
	"github.com/aria-lang/msaflow-go/pkg/msaflow"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	logger  *slog.Logger
	profile interface{ Stop() }

	configFile string
	cpuProfile string
	quiet      bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "msaflow",
		Short:         "Manipulate, filter, cluster and combine multiple sequence alignments",
		Version:       msaflow.Version(),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.profile != nil {
				a.profile.Stop()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./msaflow.yaml if present)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.Int("workers", 0, "concurrent DBSCAN runs during eps search (0 = one per CPU)")
	flags.StringVar(&a.cpuProfile, "cpuprofile", "", "write a CPU profile into this directory")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "no progress bars")

	root.AddCommand(
		newInfoCmd(a),
		newConvertCmd(a),
		newEditCmd(a),
		newClusterCmd(a),
		newCombineCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.v = config.New(a.configFile)
	flags := cmd.Root().PersistentFlags()
	if err := a.v.BindPFlag("log.level", flags.Lookup("log-level")); err != nil {
		return err
	}
	if err := a.v.BindPFlag("cluster.workers", flags.Lookup("workers")); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.logger, err = cfg.Log.NewLogger(os.Stderr); err != nil {
		return err
	}

	if a.cpuProfile != "" {
		a.profile = profile.Start(profile.CPUProfile, profile.ProfilePath(a.cpuProfile), profile.Quiet)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), msaflow.Info())
		},
	}
}
