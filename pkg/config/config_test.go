package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaults(t *testing.T) {
	c := New()

	if got := c.TopK(); got != 10 {
		t.Errorf("TopK() = %d, want 10", got)
	}
	if got := c.LouvainSeed(); got != 42 {
		t.Errorf("LouvainSeed() = %d, want 42", got)
	}
	if got := c.LouvainResolution(); got != 1.0 {
		t.Errorf("LouvainResolution() = %v, want 1.0", got)
	}
	if got := c.TargetCommunities(); got != 2 {
		t.Errorf("TargetCommunities() = %d, want 2", got)
	}
	if c.IncludeFaction() {
		t.Error("IncludeFaction() default should be false")
	}
	if got := c.NumClusters(); got != 2 {
		t.Errorf("NumClusters() = %d, want 2", got)
	}
	if got := c.ClusterSeed(); got != 42 {
		t.Errorf("ClusterSeed() = %d, want 42", got)
	}
	if got := c.ClusterRestarts(); got != 10 {
		t.Errorf("ClusterRestarts() = %d, want 10", got)
	}
	if got := c.ClusterMaxIterations(); got != 300 {
		t.Errorf("ClusterMaxIterations() = %d, want 300", got)
	}
	if got := c.ClusterTolerance(); got != 1e-4 {
		t.Errorf("ClusterTolerance() = %v, want 1e-4", got)
	}
	if got := c.Linkage(); got != "ward" {
		t.Errorf("Linkage() = %q, want ward", got)
	}
	if got := c.EmbedSeed(); got != 42 {
		t.Errorf("EmbedSeed() = %d, want 42", got)
	}
	if got := c.Perplexity(); got != 5.0 {
		t.Errorf("Perplexity() = %v, want 5.0", got)
	}
	if got := c.EmbedMaxIterations(); got != 1000 {
		t.Errorf("EmbedMaxIterations() = %d, want 1000", got)
	}
	if got := c.OutputDirectory(); got != "reports" {
		t.Errorf("OutputDirectory() = %q, want reports", got)
	}
	if got := c.LogLevel(); got != "info" {
		t.Errorf("LogLevel() = %q, want info", got)
	}
}

func TestSetOverridesDefaults(t *testing.T) {
	c := New()

	c.Set("analysis.top_k", 5)
	c.Set("analysis.include_faction", true)
	c.Set("cluster.seed", int64(7))

	if got := c.TopK(); got != 5 {
		t.Errorf("TopK() = %d, want 5", got)
	}
	if !c.IncludeFaction() {
		t.Error("IncludeFaction() should be true after Set")
	}
	if got := c.ClusterSeed(); got != 7 {
		t.Errorf("ClusterSeed() = %d, want 7", got)
	}
	// Untouched keys keep their defaults.
	if got := c.TargetCommunities(); got != 2 {
		t.Errorf("TargetCommunities() = %d, want 2", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	content := []byte("analysis:\n  top_k: 3\n  target_communities: 4\ncluster:\n  seed: 99\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	c := New()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if got := c.TopK(); got != 3 {
		t.Errorf("TopK() = %d, want 3", got)
	}
	if got := c.TargetCommunities(); got != 4 {
		t.Errorf("TargetCommunities() = %d, want 4", got)
	}
	if got := c.ClusterSeed(); got != 99 {
		t.Errorf("ClusterSeed() = %d, want 99", got)
	}
	if got := c.LogLevel(); got != "debug" {
		t.Errorf("LogLevel() = %q, want debug", got)
	}
	// Keys absent from the file keep their defaults.
	if got := c.NumClusters(); got != 2 {
		t.Errorf("NumClusters() = %d, want 2", got)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	c := New()
	if err := c.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file expected error")
	}
}

func TestCreateLogger(t *testing.T) {
	c := New()
	c.Set("logging.level", "debug")
	if got := c.CreateLogger().GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("logger level = %v, want debug", got)
	}

	c.Set("logging.level", "not-a-level")
	if got := c.CreateLogger().GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("logger level = %v, want info fallback", got)
	}
}
