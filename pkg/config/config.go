// Package config manages run configuration using Viper. Every parameter
// that changes a reported conclusion (seeds, target community count, the
// faction-attribute switch) has an explicit key and default here; nothing
// is hidden inside an algorithm.
package config

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages analysis configuration using Viper
type Config struct {
	v *viper.Viper
}

// New creates a new configuration with defaults
func New() *Config {
	v := viper.New()

	// Analysis parameters
	v.SetDefault("analysis.top_k", 10)
	v.SetDefault("analysis.louvain_seed", int64(42))
	v.SetDefault("analysis.louvain_resolution", 1.0)
	v.SetDefault("analysis.target_communities", 2)
	v.SetDefault("analysis.include_faction", false)
	v.SetDefault("analysis.pagerank_damping", 0.85)
	v.SetDefault("analysis.pagerank_tolerance", 1e-6)

	// Clustering parameters
	v.SetDefault("cluster.num_clusters", 2)
	v.SetDefault("cluster.seed", int64(42))
	v.SetDefault("cluster.restarts", 10)
	v.SetDefault("cluster.max_iterations", 300)
	v.SetDefault("cluster.tolerance", 1e-4)
	v.SetDefault("cluster.linkage", "ward")

	// Embedding parameters
	v.SetDefault("embed.seed", int64(42))
	v.SetDefault("embed.perplexity", 5.0)
	v.SetDefault("embed.learning_rate", 200.0)
	v.SetDefault("embed.max_iterations", 1000)

	// Output parameters
	v.SetDefault("output.directory", "reports")

	// Logging parameters
	v.SetDefault("logging.level", "info")

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for analysis parameters
func (c *Config) TopK() int { return c.v.GetInt("analysis.top_k") }
func (c *Config) LouvainSeed() int64 { return c.v.GetInt64("analysis.louvain_seed") }
func (c *Config) LouvainResolution() float64 { return c.v.GetFloat64("analysis.louvain_resolution") }
func (c *Config) TargetCommunities() int { return c.v.GetInt("analysis.target_communities") }
func (c *Config) IncludeFaction() bool { return c.v.GetBool("analysis.include_faction") }
func (c *Config) PageRankDamping() float64 { return c.v.GetFloat64("analysis.pagerank_damping") }
func (c *Config) PageRankTolerance() float64 { return c.v.GetFloat64("analysis.pagerank_tolerance") }

func (c *Config) NumClusters() int { return c.v.GetInt("cluster.num_clusters") }
func (c *Config) ClusterSeed() int64 { return c.v.GetInt64("cluster.seed") }
func (c *Config) ClusterRestarts() int { return c.v.GetInt("cluster.restarts") }
func (c *Config) ClusterMaxIterations() int { return c.v.GetInt("cluster.max_iterations") }
func (c *Config) ClusterTolerance() float64 { return c.v.GetFloat64("cluster.tolerance") }
func (c *Config) Linkage() string { return c.v.GetString("cluster.linkage") }

func (c *Config) EmbedSeed() int64 { return c.v.GetInt64("embed.seed") }
func (c *Config) Perplexity() float64 { return c.v.GetFloat64("embed.perplexity") }
func (c *Config) LearningRate() float64 { return c.v.GetFloat64("embed.learning_rate") }
func (c *Config) EmbedMaxIterations() int { return c.v.GetInt("embed.max_iterations") }

func (c *Config) OutputDirectory() string { return c.v.GetString("output.directory") }
func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "analysis").Logger()
}
