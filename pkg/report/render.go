package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DZIMDZEM/social-media-analysis/pkg/centrality"
	"github.com/DZIMDZEM/social-media-analysis/pkg/community"
	"github.com/DZIMDZEM/social-media-analysis/pkg/embed"
)

// Level selects how much of the analysis a rendered document surfaces. The
// levels differ only in verbosity and selection; they all print the same
// computed numbers.
type Level string

const (
	LevelFull      Level = "full"
	LevelExecutive Level = "executive"
	LevelSimple    Level = "simple"
)

// Levels lists the supported document variants in decreasing detail.
var Levels = []Level{LevelFull, LevelExecutive, LevelSimple}

// Render produces the Markdown document for one verbosity level.
func Render(a *Analysis, level Level) (string, error) {
	if a == nil {
		return "", fmt.Errorf("report: nil analysis")
	}
	switch level {
	case LevelFull:
		return renderFull(a), nil
	case LevelExecutive:
		return renderExecutive(a), nil
	case LevelSimple:
		return renderSimple(a), nil
	default:
		return "", fmt.Errorf("report: unknown level %q (want one of %v)", level, Levels)
	}
}

func renderFull(a *Analysis) string {
	var b strings.Builder
	b.WriteString("# Social Network Analysis Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", a.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", a.GeneratedAt.Format(time.RFC3339))
	if a.Elapsed > 0 {
		fmt.Fprintf(&b, "- Elapsed: %s\n", a.Elapsed)
	}
	b.WriteString("\n")

	writeDatasetFull(&b, a)
	writeCentralityFull(&b, a)
	writeCommunitiesFull(&b, a)
	writeClustersFull(&b, a)
	writeEmbeddingsFull(&b, a)
	writeConfig(&b, a)
	return b.String()
}

func writeDatasetFull(b *strings.Builder, a *Analysis) {
	b.WriteString("## 1. Dataset\n\n")
	if a.Graph == nil {
		writeGapLines(b, a, StageDataset)
		return
	}
	if a.Dataset != nil {
		fmt.Fprintf(b, "**%s.** %s Source: %s\n\n", a.Dataset.Name, a.Dataset.Description, a.Dataset.Source)
	}

	connected := "no"
	if a.Graph.Connected {
		connected = "yes"
	}
	b.WriteString("| Nodes | Edges | Density | Connected |\n")
	b.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(b, "| %d | %d | %.4f | %s |\n\n", a.Graph.Nodes, a.Graph.Edges, a.Graph.Density, connected)

	if len(a.Graph.FactionSizes) > 0 {
		b.WriteString("Recorded faction sizes:\n\n")
		for _, faction := range sortedKeys(a.Graph.FactionSizes) {
			fmt.Fprintf(b, "- %s: %d members\n", faction, a.Graph.FactionSizes[faction])
		}
		b.WriteString("\n")
	}
}

func writeCentralityFull(b *strings.Builder, a *Analysis) {
	b.WriteString("## 2. Centrality\n\n")
	c := a.Centrality
	if c == nil {
		writeGapLines(b, a, StageCentrality)
		return
	}

	fmt.Fprintf(b, "Top %d nodes per measure; ties rank the lower node id first.", c.K)
	if len(c.Scaled) > 0 {
		b.WriteString(" Share rescales each measure onto [0, 1] over all nodes.")
	}
	b.WriteString("\n\n")
	for _, measure := range centrality.Measures {
		rankings, ok := c.TopK[measure]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", measureTitle(measure))
		writeRankingTable(b, rankings, c.Scaled[measure])
	}
	if len(c.TopPageRank) > 0 {
		b.WriteString("### PageRank\n\n")
		writeRankingTable(b, c.TopPageRank, nil)
	}

	b.WriteString("### Per-node values\n\n")
	b.WriteString("| Node | Degree | Betweenness | Closeness |\n")
	b.WriteString("|---|---|---|---|\n")
	for v := 0; v < c.Table.NumNodes; v++ {
		fmt.Fprintf(b, "| %d | %.4f | %.4f | %.4f |\n", v, c.Table.Degree[v], c.Table.Betweenness[v], c.Table.Closeness[v])
	}
	b.WriteString("\n")
}

func writeCommunitiesFull(b *strings.Builder, a *Analysis) {
	b.WriteString("## 3. Community Detection\n\n")
	if len(a.Communities) == 0 {
		writeGapLines(b, a, StageCommunity)
		return
	}
	for _, section := range a.Communities {
		result := section.Result
		fmt.Fprintf(b, "### %s\n\n", methodTitle(result.Method))
		fmt.Fprintf(b, "- Communities: %d\n", result.Partition.NumCommunities)
		fmt.Fprintf(b, "- Modularity: %.4f\n", result.Modularity)
		if result.Levels > 0 {
			fmt.Fprintf(b, "- Levels: %d, node moves: %d\n", result.Levels, result.Moves)
		}
		if result.EdgesRemoved > 0 {
			fmt.Fprintf(b, "- Edges removed: %d\n", result.EdgesRemoved)
		}
		fmt.Fprintf(b, "- Overall purity: %.1f%%\n\n", section.OverallPurity*100)
		writePurityTable(b, section.Purity)
	}
	for _, reason := range a.GapsFor(StageCommunity) {
		fmt.Fprintf(b, "_Unavailable: %s_\n\n", reason)
	}
}

func writeClustersFull(b *strings.Builder, a *Analysis) {
	b.WriteString("## 4. Clustering\n\n")
	if len(a.Clusters) == 0 {
		writeGapLines(b, a, StageClustering)
		return
	}
	for _, section := range a.Clusters {
		fmt.Fprintf(b, "### %s\n\n", section.Name)
		assignment := section.Assignment
		fmt.Fprintf(b, "- Clusters: %d\n", assignment.K)
		fmt.Fprintf(b, "- Inertia: %.4f after %d iterations\n", assignment.Inertia, assignment.Iterations)
		fmt.Fprintf(b, "- Overall purity: %.1f%%\n", section.OverallPurity*100)
		if !assignment.Converged {
			b.WriteString("- Warning: the optimizer hit its iteration cap before the assignment stabilized\n")
		}
		b.WriteString("\n")
		writePurityTable(b, section.Purity)
	}
	for _, reason := range a.GapsFor(StageClustering) {
		fmt.Fprintf(b, "_Unavailable: %s_\n\n", reason)
	}
}

func writeEmbeddingsFull(b *strings.Builder, a *Analysis) {
	b.WriteString("## 5. Embeddings\n\n")
	if len(a.Embeddings) == 0 {
		writeGapLines(b, a, StageEmbedding)
		return
	}
	b.WriteString("Two-dimensional projections of the standardized feature matrix. Purely descriptive; no other result depends on them.\n\n")
	for _, e := range a.Embeddings {
		fmt.Fprintf(b, "### %s\n\n", embeddingTitle(e.Method))
		writeEmbeddingStats(b, e)
		b.WriteString("\n| Node | X | Y |\n|---|---|---|\n")
		rows, _ := e.Points.Dims()
		for v := 0; v < rows; v++ {
			x, y := e.Point(v)
			fmt.Fprintf(b, "| %d | %.4f | %.4f |\n", v, x, y)
		}
		b.WriteString("\n")
	}
	for _, reason := range a.GapsFor(StageEmbedding) {
		fmt.Fprintf(b, "_Unavailable: %s_\n\n", reason)
	}
}

func writeConfig(b *strings.Builder, a *Analysis) {
	b.WriteString("## 6. Run Configuration\n\n")
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Louvain seed | %d |\n", a.Config.LouvainSeed)
	fmt.Fprintf(b, "| Cluster seed | %d |\n", a.Config.ClusterSeed)
	fmt.Fprintf(b, "| Embedding seed | %d |\n", a.Config.EmbedSeed)
	fmt.Fprintf(b, "| Hierarchical target communities | %d |\n", a.Config.TargetCommunities)
	fmt.Fprintf(b, "| Top-k size | %d |\n", a.Config.TopK)
	fmt.Fprintf(b, "| Faction attribute in features | %t |\n", a.Config.IncludeFaction)
	fmt.Fprintf(b, "| Neighbor perplexity | %g |\n", a.Config.Perplexity)
}

func renderExecutive(a *Analysis) string {
	var b strings.Builder
	b.WriteString("# Executive Summary\n\n")
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", a.RunID, a.GeneratedAt.Format(time.RFC3339))

	if a.Graph != nil {
		name := "Network"
		if a.Dataset != nil {
			name = a.Dataset.Name
		}
		fmt.Fprintf(&b, "**%s.** %d members, %d ties, density %.4f.\n\n", name, a.Graph.Nodes, a.Graph.Edges, a.Graph.Density)
	}

	if c := a.Centrality; c != nil {
		b.WriteString("**Key members.**\n\n")
		for _, measure := range centrality.Measures {
			if top, ok := c.TopK[measure]; ok && len(top) > 0 {
				fmt.Fprintf(&b, "- Highest %s: node %d (%.4f)\n", string(measure), top[0].Node, top[0].Value)
			}
		}
		if len(c.TopPageRank) > 0 {
			fmt.Fprintf(&b, "- Highest PageRank: node %d (%.4f)\n", c.TopPageRank[0].Node, c.TopPageRank[0].Value)
		}
		b.WriteString("\n")
	}

	if len(a.Communities) > 0 {
		b.WriteString("**Community structure.**\n\n")
		for _, section := range a.Communities {
			result := section.Result
			fmt.Fprintf(&b, "- %s: %d communities, modularity %.4f, overall purity %.1f%% against the recorded factions\n",
				methodTitle(result.Method), result.Partition.NumCommunities, result.Modularity, section.OverallPurity*100)
		}
		b.WriteString("\n")
	}

	if len(a.Clusters) > 0 {
		b.WriteString("**Feature clustering.**\n\n")
		for _, section := range a.Clusters {
			fmt.Fprintf(&b, "- %s: %d clusters, overall purity %.1f%%", section.Name, section.Assignment.K, section.OverallPurity*100)
			if !section.Assignment.Converged {
				b.WriteString(" (iteration cap reached before stabilizing)")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(a.Embeddings) > 0 {
		b.WriteString("**Projections.**\n\n")
		for _, e := range a.Embeddings {
			b.WriteString("- ")
			b.WriteString(embeddingSummaryLine(e))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(a.Gaps) > 0 {
		b.WriteString("**Gaps.**\n\n")
		for _, gap := range a.Gaps {
			fmt.Fprintf(&b, "- %s: %s\n", gap.Stage, gap.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderSimple(a *Analysis) string {
	var b strings.Builder
	b.WriteString("# Summary\n\n")

	if a.Graph != nil {
		name := "The network"
		if a.Dataset != nil {
			name = a.Dataset.Name
		}
		fmt.Fprintf(&b, "%s has %d members connected by %d ties.\n\n", name, a.Graph.Nodes, a.Graph.Edges)
	}

	if c := a.Centrality; c != nil {
		if top, ok := c.TopK[centrality.MeasureDegree]; ok && len(top) > 0 {
			fmt.Fprintf(&b, "The member with the most direct ties is node %d.\n", top[0].Node)
		}
		if top, ok := c.TopK[centrality.MeasureBetweenness]; ok && len(top) > 0 {
			fmt.Fprintf(&b, "Node %d sits on the most paths between other members.\n", top[0].Node)
		}
		b.WriteString("\n")
	}

	for _, section := range a.Communities {
		result := section.Result
		fmt.Fprintf(&b, "%s split the network into %d groups; %.1f%% of members landed in a group dominated by their own faction.\n",
			methodTitle(result.Method), result.Partition.NumCommunities, section.OverallPurity*100)
	}
	if len(a.Communities) > 0 {
		b.WriteString("\n")
	}

	for _, section := range a.Clusters {
		fmt.Fprintf(&b, "Grouping members by their network statistics (%s) agreed with the recorded factions for %.1f%% of members.\n",
			section.Name, section.OverallPurity*100)
	}
	if len(a.Clusters) > 0 {
		b.WriteString("\n")
	}

	for _, gap := range a.Gaps {
		fmt.Fprintf(&b, "_The %s stage produced no result: %s_\n", gap.Stage, gap.Reason)
	}
	return b.String()
}

func writeRankingTable(b *strings.Builder, rankings []centrality.Ranking, shares []float64) {
	if len(shares) > 0 {
		b.WriteString("| Rank | Node | Score | Share |\n|---|---|---|---|\n")
		for i, r := range rankings {
			fmt.Fprintf(b, "| %d | %d | %.4f | %.3f |\n", i+1, r.Node, r.Value, shares[r.Node])
		}
	} else {
		b.WriteString("| Rank | Node | Score |\n|---|---|---|\n")
		for i, r := range rankings {
			fmt.Fprintf(b, "| %d | %d | %.4f |\n", i+1, r.Node, r.Value)
		}
	}
	b.WriteString("\n")
}

func writePurityTable(b *strings.Builder, purities []community.CommunityPurity) {
	if len(purities) == 0 {
		return
	}
	b.WriteString("| Community | Size | Faction counts | Majority | Purity |\n|---|---|---|---|---|\n")
	for _, p := range purities {
		fmt.Fprintf(b, "| %d | %d | %s | %s | %.1f%% |\n",
			p.Community, p.Size, formatLabelCounts(p.LabelCounts), p.Majority, p.Purity*100)
	}
	b.WriteString("\n")
}

func formatLabelCounts(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, label := range sortedKeys(counts) {
		parts = append(parts, fmt.Sprintf("%s %d", label, counts[label]))
	}
	return strings.Join(parts, ", ")
}

func writeEmbeddingStats(b *strings.Builder, e *embed.Embedding) {
	switch e.Method {
	case embed.MethodVariance:
		parts := make([]string, len(e.ExplainedVariance))
		for i, v := range e.ExplainedVariance {
			parts[i] = fmt.Sprintf("component %d %.1f%%", i+1, v*100)
		}
		fmt.Fprintf(b, "- Explained variance: %s\n", strings.Join(parts, ", "))
	case embed.MethodDistance:
		fmt.Fprintf(b, "- Raw stress: %.4f, Kruskal stress: %.4f, positive eigenvalues: %d\n",
			e.Stress, e.KruskalStress, e.PositiveEigenvalues)
	case embed.MethodNeighbor:
		fmt.Fprintf(b, "- KL divergence: %.4f after %d iterations\n", e.KLDivergence, e.Iterations)
		if !e.Converged {
			b.WriteString("- Warning: the layout used every iteration without settling\n")
		}
	}
}

func embeddingSummaryLine(e *embed.Embedding) string {
	switch e.Method {
	case embed.MethodVariance:
		total := 0.0
		for _, v := range e.ExplainedVariance {
			total += v
		}
		return fmt.Sprintf("variance projection keeps %.1f%% of variance in two components", total*100)
	case embed.MethodDistance:
		return fmt.Sprintf("distance projection Kruskal stress %.4f", e.KruskalStress)
	case embed.MethodNeighbor:
		return fmt.Sprintf("neighbor projection KL divergence %.4f", e.KLDivergence)
	}
	return e.Method
}

func writeGapLines(b *strings.Builder, a *Analysis, stage string) {
	reasons := a.GapsFor(stage)
	if len(reasons) == 0 {
		reasons = []string{"no result recorded"}
	}
	for _, reason := range reasons {
		fmt.Fprintf(b, "_Unavailable: %s_\n\n", reason)
	}
}

func measureTitle(m centrality.Measure) string {
	switch m {
	case centrality.MeasureDegree:
		return "Degree"
	case centrality.MeasureBetweenness:
		return "Betweenness"
	case centrality.MeasureCloseness:
		return "Closeness"
	}
	return string(m)
}

func methodTitle(method string) string {
	switch method {
	case community.MethodLouvain:
		return "Modularity optimization (Louvain)"
	case community.MethodGirvanNewman:
		return "Hierarchical edge removal (Girvan-Newman)"
	}
	return method
}

func embeddingTitle(method string) string {
	switch method {
	case embed.MethodVariance:
		return "Variance projection (PCA)"
	case embed.MethodDistance:
		return "Distance projection (MDS)"
	case embed.MethodNeighbor:
		return "Neighbor projection (t-SNE)"
	}
	return method
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
