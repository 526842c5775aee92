package main

import (
	"fmt"
	"log"

	flag "github.com/spf13/pflag"
	"gonum.org/v1/gonum/floats"

	"github.com/DZIMDZEM/social-media-analysis/pkg/config"
	"github.com/DZIMDZEM/social-media-analysis/pkg/embed"
	"github.com/DZIMDZEM/social-media-analysis/pkg/pipeline"
	"github.com/DZIMDZEM/social-media-analysis/pkg/report"
)

func main() {
	configFile := flag.String("config", "", "YAML configuration file")
	outputDir := flag.String("out", "", "directory for the generated reports")
	topK := flag.Int("top-k", 0, "ranking depth for the centrality tables")
	seed := flag.Int64("seed", 0, "seed for every stochastic stage")
	clusters := flag.Int("clusters", 0, "cluster count for kmeans and agglomerative")
	target := flag.Int("communities", 0, "target community count for hierarchical splitting")
	includeFaction := flag.Bool("include-faction", false, "append the faction label as a feature column")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	fmt.Println("=== Karate Club Network Analysis ===")

	cfg := config.New()
	if *configFile != "" {
		if err := cfg.LoadFromFile(*configFile); err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		fmt.Printf("Configuration file: %s\n", *configFile)
	}
	applyFlags(cfg, *outputDir, *topK, *seed, *clusters, *target, *includeFaction, *logLevel)

	fmt.Printf("\nAnalysis configuration:\n")
	fmt.Printf("  Top-k: %d\n", cfg.TopK())
	fmt.Printf("  Target communities: %d\n", cfg.TargetCommunities())
	fmt.Printf("  Clusters: %d (%s linkage)\n", cfg.NumClusters(), cfg.Linkage())
	fmt.Printf("  Include faction feature: %v\n", cfg.IncludeFaction())
	fmt.Printf("  Seeds: louvain=%d cluster=%d embed=%d\n", cfg.LouvainSeed(), cfg.ClusterSeed(), cfg.EmbedSeed())
	fmt.Printf("  Output directory: %s\n", cfg.OutputDirectory())

	logger := cfg.CreateLogger()
	analysis, err := pipeline.Run(cfg, logger)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if err := report.NewFileWriter(logger).WriteAll(analysis, cfg.OutputDirectory()); err != nil {
		log.Fatalf("Failed to write reports: %v", err)
	}

	displayResults(analysis, cfg.OutputDirectory())
}

// applyFlags copies only the flags the user actually set onto the config, so
// file and default values survive unset flags.
func applyFlags(cfg *config.Config, outputDir string, topK int, seed int64, clusters, target int, includeFaction bool, logLevel string) {
	set := flag.CommandLine.Changed
	if set("out") {
		cfg.Set("output.directory", outputDir)
	}
	if set("top-k") {
		cfg.Set("analysis.top_k", topK)
	}
	if set("seed") {
		cfg.Set("analysis.louvain_seed", seed)
		cfg.Set("cluster.seed", seed)
		cfg.Set("embed.seed", seed)
	}
	if set("clusters") {
		cfg.Set("cluster.num_clusters", clusters)
	}
	if set("communities") {
		cfg.Set("analysis.target_communities", target)
	}
	if set("include-faction") {
		cfg.Set("analysis.include_faction", includeFaction)
	}
	if set("log-level") {
		cfg.Set("logging.level", logLevel)
	}
}

func displayResults(a *report.Analysis, dir string) {
	fmt.Println("\n=== Results ===")
	fmt.Printf("Run: %s\n", a.RunID)
	if a.Graph != nil {
		fmt.Printf("Graph: %d nodes, %d edges, density %.4f\n", a.Graph.Nodes, a.Graph.Edges, a.Graph.Density)
	}

	for _, section := range a.Communities {
		fmt.Printf("%s: %d communities, modularity %.4f, purity %.1f%%\n",
			section.Result.Method, section.Result.Partition.NumCommunities,
			section.Result.Modularity, 100*section.OverallPurity)
	}
	for _, section := range a.Clusters {
		fmt.Printf("%s: %d clusters, inertia %.4f, purity %.1f%%\n",
			section.Name, section.Assignment.K, section.Assignment.Inertia, 100*section.OverallPurity)
	}
	for _, e := range a.Embeddings {
		switch e.Method {
		case embed.MethodVariance:
			fmt.Printf("%s embedding: %.1f%% variance in two components\n", e.Method, 100*floats.Sum(e.ExplainedVariance))
		case embed.MethodDistance:
			fmt.Printf("%s embedding: kruskal stress %.4f\n", e.Method, e.KruskalStress)
		case embed.MethodNeighbor:
			fmt.Printf("%s embedding: KL divergence %.4f after %d iterations\n", e.Method, e.KLDivergence, e.Iterations)
		}
	}

	if len(a.Gaps) > 0 {
		fmt.Println("\nGaps:")
		for _, gap := range a.Gaps {
			fmt.Printf("  %s: %s\n", gap.Stage, gap.Reason)
		}
	}

	fmt.Printf("\nRuntime: %d ms\n", a.Elapsed.Milliseconds())
	fmt.Printf("Reports written to %s\n", dir)
}
