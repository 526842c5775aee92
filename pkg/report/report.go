// Package report turns computed analysis results into Markdown documents.
// Rendering is purely textual: every number in a report was computed by an
// earlier stage and is substituted in verbatim, never recomputed. A stage
// that failed leaves an explicit gap in the rendered document instead of
// numbers.
package report

import (
	"time"

	"github.com/DZIMDZEM/social-media-analysis/pkg/centrality"
	"github.com/DZIMDZEM/social-media-analysis/pkg/cluster"
	"github.com/DZIMDZEM/social-media-analysis/pkg/community"
	"github.com/DZIMDZEM/social-media-analysis/pkg/dataset"
	"github.com/DZIMDZEM/social-media-analysis/pkg/embed"
)

// Stage names used when recording gaps.
const (
	StageDataset    = "dataset"
	StageCentrality = "centrality"
	StageCommunity  = "community detection"
	StageClustering = "clustering"
	StageEmbedding  = "embedding"
)

// Gap records a stage that produced no result and why. Renderers surface
// gaps verbatim where the missing numbers would have appeared.
type Gap struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// GraphSummary carries the dataset-level numbers shown in report headers.
type GraphSummary struct {
	Nodes        int            `json:"nodes"`
	Edges        int            `json:"edges"`
	Density      float64        `json:"density"`
	Connected    bool           `json:"connected"`
	FactionSizes map[string]int `json:"faction_sizes"`
}

// CentralitySection bundles the full per-node table with the top-k rankings
// selected from it. Scaled holds each measure rescaled onto [0, 1] so the
// renderer can print relative shares without touching the raw values.
type CentralitySection struct {
	Table       *centrality.Table                           `json:"table"`
	K           int                                         `json:"k"`
	TopK        map[centrality.Measure][]centrality.Ranking `json:"top_k"`
	Scaled      map[centrality.Measure][]float64            `json:"scaled"`
	PageRank    []float64                                   `json:"page_rank,omitempty"`
	TopPageRank []centrality.Ranking                        `json:"top_page_rank,omitempty"`
}

// CommunitySection holds one detector's result with its purity summary
// against the recorded factions.
type CommunitySection struct {
	Result        *community.Result           `json:"result"`
	Purity        []community.CommunityPurity `json:"purity"`
	OverallPurity float64                     `json:"overall_purity"`
}

// ClusterSection holds one clustering variant with its purity summary.
type ClusterSection struct {
	Name              string                      `json:"name"`
	IncludesAttribute bool                        `json:"includes_attribute"`
	Assignment        *cluster.Assignment         `json:"assignment"`
	Purity            []community.CommunityPurity `json:"purity"`
	OverallPurity     float64                     `json:"overall_purity"`
}

// RunConfig echoes the parameters that change reported conclusions, so a
// report is reproducible from its own text.
type RunConfig struct {
	LouvainSeed       int64   `json:"louvain_seed"`
	ClusterSeed       int64   `json:"cluster_seed"`
	EmbedSeed         int64   `json:"embed_seed"`
	TargetCommunities int     `json:"target_communities"`
	TopK              int     `json:"top_k"`
	IncludeFaction    bool    `json:"include_faction"`
	Perplexity        float64 `json:"perplexity"`
}

// Analysis is the immutable bundle of everything one pipeline run computed.
// Nil sections mean the stage did not produce a result; the corresponding
// Gap entry says why.
type Analysis struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Elapsed     time.Duration `json:"elapsed"`

	Dataset *dataset.Metadata `json:"dataset,omitempty"`
	Graph   *GraphSummary     `json:"graph,omitempty"`

	Centrality  *CentralitySection `json:"centrality,omitempty"`
	Communities []CommunitySection `json:"communities,omitempty"`
	Clusters    []ClusterSection   `json:"clusters,omitempty"`
	Embeddings  []*embed.Embedding `json:"embeddings,omitempty"`

	Config RunConfig `json:"config"`
	Gaps   []Gap     `json:"gaps,omitempty"`
}

// AddGap records a stage failure for the renderers to surface.
func (a *Analysis) AddGap(stage, reason string) {
	a.Gaps = append(a.Gaps, Gap{Stage: stage, Reason: reason})
}

// GapsFor returns the recorded reasons for a stage, in insertion order.
func (a *Analysis) GapsFor(stage string) []string {
	var reasons []string
	for _, g := range a.Gaps {
		if g.Stage == stage {
			reasons = append(reasons, g.Reason)
		}
	}
	return reasons
}
