// Package pipeline runs the analysis stages in order: load, centrality,
// community detection, feature assembly, clustering, embedding. Stages run
// sequentially and each consumes only the immutable outputs of earlier
// stages. A stage failure is recorded as a report gap and skips exactly the
// stages that need the missing result, so one bad stage never corrupts or
// hides the others.
package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DZIMDZEM/social-media-analysis/pkg/centrality"
	"github.com/DZIMDZEM/social-media-analysis/pkg/cluster"
	"github.com/DZIMDZEM/social-media-analysis/pkg/community"
	"github.com/DZIMDZEM/social-media-analysis/pkg/config"
	"github.com/DZIMDZEM/social-media-analysis/pkg/dataset"
	"github.com/DZIMDZEM/social-media-analysis/pkg/embed"
	"github.com/DZIMDZEM/social-media-analysis/pkg/features"
	"github.com/DZIMDZEM/social-media-analysis/pkg/graph"
	"github.com/DZIMDZEM/social-media-analysis/pkg/report"
)

// Run executes the full analysis over the bundled dataset and returns the
// result bundle for rendering. The returned error is non-nil only when the
// dataset itself cannot be loaded; any later stage failure is recorded in
// the analysis as a gap instead.
func Run(cfg *config.Config, logger zerolog.Logger) (*report.Analysis, error) {
	started := time.Now()
	runID := uuid.New().String()
	logger = logger.With().Str("run_id", runID).Logger()

	a := &report.Analysis{
		RunID: runID,
		Config: report.RunConfig{
			LouvainSeed:       cfg.LouvainSeed(),
			ClusterSeed:       cfg.ClusterSeed(),
			EmbedSeed:         cfg.EmbedSeed(),
			TargetCommunities: cfg.TargetCommunities(),
			TopK:              cfg.TopK(),
			IncludeFaction:    cfg.IncludeFaction(),
			Perplexity:        cfg.Perplexity(),
		},
	}

	g, err := dataset.Load()
	if err != nil {
		logger.Error().Err(err).Msg("dataset stage failed")
		a.AddGap(report.StageDataset, err.Error())
		finish(a, started)
		return a, err
	}
	if meta, metaErr := dataset.LoadMetadata(); metaErr != nil {
		logger.Warn().Err(metaErr).Msg("dataset metadata unavailable")
	} else {
		a.Dataset = meta
	}
	a.Graph = summarize(g)

	table := centralityStage(a, g, cfg, logger)
	communityStage(a, g, cfg, logger)
	matrix := featureStage(a, g, table, cfg, logger)
	clusterStage(a, g, matrix, cfg, logger)
	embedStage(a, matrix, cfg, logger)

	finish(a, started)
	logger.Info().
		Dur("elapsed", a.Elapsed).
		Int("gaps", len(a.Gaps)).
		Msg("analysis pipeline completed")
	return a, nil
}

func finish(a *report.Analysis, started time.Time) {
	a.GeneratedAt = time.Now()
	a.Elapsed = time.Since(started)
}

func summarize(g *graph.Graph) *report.GraphSummary {
	n := g.NumNodes
	density := 0.0
	if n > 1 {
		density = 2 * float64(g.NumEdges()) / (float64(n) * float64(n-1))
	}
	sizes := make(map[string]int)
	for v := 0; v < n; v++ {
		if label := g.Label(v); label != "" {
			sizes[label]++
		}
	}
	return &report.GraphSummary{
		Nodes:        n,
		Edges:        g.NumEdges(),
		Density:      density,
		Connected:    graph.IsConnected(g),
		FactionSizes: sizes,
	}
}

func centralityStage(a *report.Analysis, g *graph.Graph, cfg *config.Config, logger zerolog.Logger) *centrality.Table {
	table, err := centrality.Compute(g, logger)
	if err != nil {
		logger.Error().Err(err).Msg("centrality stage failed")
		a.AddGap(report.StageCentrality, err.Error())
		return nil
	}

	section := &report.CentralitySection{
		Table:  table,
		K:      cfg.TopK(),
		TopK:   make(map[centrality.Measure][]centrality.Ranking, len(centrality.Measures)),
		Scaled: make(map[centrality.Measure][]float64, len(centrality.Measures)),
	}
	for _, measure := range centrality.Measures {
		top, err := table.TopK(measure, cfg.TopK())
		if err != nil {
			logger.Error().Err(err).Str("measure", string(measure)).Msg("ranking failed")
			continue
		}
		section.TopK[measure] = top
		values, _ := table.Values(measure)
		section.Scaled[measure] = centrality.MinMaxScale(values)
	}

	if ranks, err := centrality.PageRank(g, cfg.PageRankDamping(), cfg.PageRankTolerance()); err != nil {
		logger.Warn().Err(err).Msg("PageRank skipped")
	} else {
		section.PageRank = ranks
		section.TopPageRank = centrality.Rank(ranks, cfg.TopK())
	}

	a.Centrality = section
	return table
}

func communityStage(a *report.Analysis, g *graph.Graph, cfg *config.Config, logger zerolog.Logger) {
	louvainOpts := community.DefaultLouvainOptions()
	louvainOpts.Seed = cfg.LouvainSeed()
	louvainOpts.Resolution = cfg.LouvainResolution()

	detectors := []community.Detector{
		&community.LouvainDetector{Options: louvainOpts, Logger: logger},
		&community.GirvanNewmanDetector{TargetCount: cfg.TargetCommunities(), Logger: logger},
	}
	factions := nodeLabels(g)

	for _, detector := range detectors {
		result, err := detector.Detect(g)
		if err != nil {
			logger.Error().Err(err).Str("method", detector.Name()).Msg("community detection failed")
			a.AddGap(report.StageCommunity, detector.Name()+": "+err.Error())
			continue
		}
		purity, err := community.Purity(result.Partition, factions)
		if err != nil {
			logger.Error().Err(err).Str("method", detector.Name()).Msg("purity summarization failed")
			a.AddGap(report.StageCommunity, detector.Name()+" purity: "+err.Error())
			continue
		}
		a.Communities = append(a.Communities, report.CommunitySection{
			Result:        result,
			Purity:        purity,
			OverallPurity: community.WeightedPurity(purity),
		})
	}
}

func featureStage(a *report.Analysis, g *graph.Graph, table *centrality.Table, cfg *config.Config, logger zerolog.Logger) *features.Matrix {
	if table == nil {
		a.AddGap(report.StageClustering, "feature matrix unavailable: centrality stage failed")
		a.AddGap(report.StageEmbedding, "feature matrix unavailable: centrality stage failed")
		return nil
	}

	matrix, err := features.Build(g, table, cfg.IncludeFaction())
	if err != nil {
		logger.Error().Err(err).Msg("feature assembly failed")
		a.AddGap(report.StageClustering, "feature matrix: "+err.Error())
		a.AddGap(report.StageEmbedding, "feature matrix: "+err.Error())
		return nil
	}
	return matrix
}

func clusterStage(a *report.Analysis, g *graph.Graph, matrix *features.Matrix, cfg *config.Config, logger zerolog.Logger) {
	if matrix == nil {
		return
	}
	factions := nodeLabels(g)

	kmeansName := "KMeans on structural features"
	if matrix.IncludesAttribute {
		kmeansName = "KMeans on structural + faction features"
	}
	opts := cluster.Options{
		K:             cfg.NumClusters(),
		Seed:          cfg.ClusterSeed(),
		Restarts:      cfg.ClusterRestarts(),
		MaxIterations: cfg.ClusterMaxIterations(),
		Tolerance:     cfg.ClusterTolerance(),
	}
	if assignment, err := cluster.KMeans(matrix, opts, logger); err != nil {
		logger.Error().Err(err).Msg("kmeans failed")
		a.AddGap(report.StageClustering, "kmeans: "+err.Error())
	} else {
		appendClusterSection(a, kmeansName, matrix, assignment, factions, logger)
	}

	linkage := cluster.Linkage(cfg.Linkage())
	if assignment, err := cluster.Agglomerative(matrix, cfg.NumClusters(), linkage, logger); err != nil {
		logger.Error().Err(err).Msg("agglomerative clustering failed")
		a.AddGap(report.StageClustering, "agglomerative: "+err.Error())
	} else {
		appendClusterSection(a, "Agglomerative ("+cfg.Linkage()+" linkage)", matrix, assignment, factions, logger)
	}
}

func appendClusterSection(a *report.Analysis, name string, matrix *features.Matrix, assignment *cluster.Assignment, factions []string, logger zerolog.Logger) {
	purity, err := community.Purity(community.NewPartition(assignment.Labels), factions)
	if err != nil {
		logger.Error().Err(err).Str("variant", name).Msg("cluster purity failed")
		a.AddGap(report.StageClustering, name+" purity: "+err.Error())
		return
	}
	a.Clusters = append(a.Clusters, report.ClusterSection{
		Name:              name,
		IncludesAttribute: matrix.IncludesAttribute,
		Assignment:        assignment,
		Purity:            purity,
		OverallPurity:     community.WeightedPurity(purity),
	})
}

func embedStage(a *report.Analysis, matrix *features.Matrix, cfg *config.Config, logger zerolog.Logger) {
	if matrix == nil {
		return
	}
	opts := embed.Options{
		Seed:          cfg.EmbedSeed(),
		Perplexity:    cfg.Perplexity(),
		LearningRate:  cfg.LearningRate(),
		MaxIterations: cfg.EmbedMaxIterations(),
	}
	for _, method := range embed.Methods {
		e, err := embed.Embed(matrix, method, opts, logger)
		if err != nil {
			logger.Error().Err(err).Str("method", method).Msg("embedding failed")
			a.AddGap(report.StageEmbedding, method+": "+err.Error())
			continue
		}
		a.Embeddings = append(a.Embeddings, e)
	}
}

func nodeLabels(g *graph.Graph) []string {
	labels := make([]string, g.NumNodes)
	for v := 0; v < g.NumNodes; v++ {
		labels[v] = g.Label(v)
	}
	return labels
}
