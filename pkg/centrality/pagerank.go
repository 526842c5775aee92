package centrality

import (
	"fmt"

	"gonum.org/v1/gonum/graph/network"

	"github.com/DZIMDZEM/social-media-analysis/pkg/graph"
)

// Default PageRank parameters.
const (
	DefaultDamping   = 0.85
	DefaultTolerance = 1e-6
)

// PageRank computes PageRank scores over the undirected graph by walking both
// directions of every edge. Scores sum to 1 and serve as a supplementary
// importance ranking next to the three main measures; they never enter the
// feature matrix.
func PageRank(g *graph.Graph, damping, tolerance float64) ([]float64, error) {
	if damping <= 0 || damping >= 1 {
		return nil, fmt.Errorf("centrality: damping factor must be in (0, 1), got %f", damping)
	}
	if tolerance <= 0 {
		return nil, fmt.Errorf("centrality: tolerance must be positive, got %f", tolerance)
	}

	scores := network.PageRank(graph.ToGonumDirected(g), damping, tolerance)
	ranks := make([]float64, g.NumNodes)
	for id, score := range scores {
		ranks[int(id)] = score
	}
	return ranks, nil
}
