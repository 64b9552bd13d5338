// Package config holds app wide settings unmarshalled from Viper: built-in
// defaults, an optional msaflow.yaml, MSAFLOW_* environment variables and
// command line flags bound by cmd/.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aria-lang/msaflow-go/internal/cluster"
	"github.com/aria-lang/msaflow-go/internal/remote"
)

// EnvPrefix prefixes every environment override, e.g. MSAFLOW_SERVER_ADDR.
const EnvPrefix = "MSAFLOW"

// ServerConfig is for the HTTP API
type ServerConfig struct {
	// listen address
	Addr string `mapstructure:"addr"`

	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle-timeout"`

	// per-request deadline enforced by middleware
	RequestTimeout time.Duration `mapstructure:"request-timeout"`

	// the largest accepted upload body
	MaxUploadBytes int64 `mapstructure:"max-upload-bytes"`
}

// ClusterConfig holds clustering defaults used when a request leaves them out
type ClusterConfig struct {
	MinSamples int     `mapstructure:"min-samples"`
	MinEps     float64 `mapstructure:"min-eps"`
	MaxEps     float64 `mapstructure:"max-eps"`
	EpsStep    float64 `mapstructure:"eps-step"`

	// concurrent DBSCAN runs during the eps search, 0 for one per CPU
	Workers int `mapstructure:"workers"`

	KMeansMaxIter int `mapstructure:"kmeans-max-iter"`
}

// GridSearch turns the defaults into a search over the configured range.
func (c ClusterConfig) GridSearch() cluster.GridSearch {
	return cluster.GridSearch{
		MinEps:          c.MinEps,
		MaxEps:          c.MaxEps,
		Step:            c.EpsStep,
		MinSamples:      c.MinSamples,
		DesiredClusters: cluster.MaxClusters,
		Workers:         c.Workers,
	}
}

// HHFilterConfig locates the hhfilter binary and its default options
type HHFilterConfig struct {
	Binary string                `mapstructure:"binary"`
	Params remote.HHFilterParams `mapstructure:"params"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	// debug, info, warn or error
	Level string `mapstructure:"level"`
	// text or json
	Format string `mapstructure:"format"`
}

// Config is the root-level settings struct
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Cluster  ClusterConfig  `mapstructure:"cluster"`
	HHFilter HHFilterConfig `mapstructure:"hhfilter"`
	Log      LogConfig      `mapstructure:"log"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	search := cluster.DefaultGridSearch()
	hh := remote.DefaultHHFilterParams()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read-timeout", 15*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)
	v.SetDefault("server.idle-timeout", 60*time.Second)
	v.SetDefault("server.request-timeout", 60*time.Second)
	v.SetDefault("server.max-upload-bytes", int64(64<<20))

	v.SetDefault("cluster.min-samples", search.MinSamples)
	v.SetDefault("cluster.min-eps", search.MinEps)
	v.SetDefault("cluster.max-eps", search.MaxEps)
	v.SetDefault("cluster.eps-step", search.Step)
	v.SetDefault("cluster.workers", 0)
	v.SetDefault("cluster.kmeans-max-iter", cluster.DefaultMaxIter)

	v.SetDefault("hhfilter.binary", "hhfilter")
	v.SetDefault("hhfilter.params.diff", hh.Diff)
	v.SetDefault("hhfilter.params.id", hh.MaxPairwiseIdentity)
	v.SetDefault("hhfilter.params.cov", hh.MinQueryCoverage)
	v.SetDefault("hhfilter.params.qid", hh.MinQueryIdentity)
	v.SetDefault("hhfilter.params.qsc", hh.MinQueryScore)
	v.SetDefault("hhfilter.params.neff", hh.TargetDiversity)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New prepares a Viper instance with defaults and environment overrides.
// An empty file searches the working directory for msaflow.yaml.
func New(file string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("msaflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	return v
}

// Load reads the config file, if any, and decodes v into a Config.
// A missing msaflow.yaml is not an error; a missing explicit file is.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Cluster.MinEps <= 0 {
		return fmt.Errorf("cluster.min-eps must be positive, got %v", c.Cluster.MinEps)
	}
	if c.Cluster.EpsStep <= 0 {
		return fmt.Errorf("cluster.eps-step must be positive, got %v", c.Cluster.EpsStep)
	}
	if c.Cluster.MaxEps < c.Cluster.MinEps {
		return fmt.Errorf("cluster.max-eps %v is below cluster.min-eps %v", c.Cluster.MaxEps, c.Cluster.MinEps)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max-upload-bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	return nil
}

func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds the slog logger described by c.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log.format: unknown format %q", c.Format)
	}
}
