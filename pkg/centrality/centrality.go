// Package centrality computes degree, closeness, and betweenness centrality
// for every node of an undirected graph, plus deterministic rankings over the
// results.
package centrality

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/DZIMDZEM/social-media-analysis/pkg/graph"
)

// ErrDisconnectedGraph is returned when a measure is undefined because some
// node pair has no connecting path. Values are never silently substituted
// with zero or infinity.
var ErrDisconnectedGraph = errors.New("centrality: graph is disconnected")

// Table holds all three centrality measures for every node, indexed by node
// id.
type Table struct {
	NumNodes    int       `json:"num_nodes"`
	Degree      []float64 `json:"degree"`
	Betweenness []float64 `json:"betweenness"`
	Closeness   []float64 `json:"closeness"`
}

// Compute derives the full centrality table from the graph topology alone.
//
// Degree is deg(v)/(n-1). Closeness is (n-1)/sum of shortest-path distances,
// and fails with ErrDisconnectedGraph on a disconnected graph. Betweenness is
// Brandes' algorithm with proportional split across shortest-path ties,
// normalized by 2/((n-1)(n-2)).
func Compute(g *graph.Graph, logger zerolog.Logger) (*Table, error) {
	start := time.Now()
	n := g.NumNodes
	if n < 2 {
		return nil, fmt.Errorf("centrality: need at least 2 nodes, got %d", n)
	}

	table := &Table{
		NumNodes:    n,
		Degree:      make([]float64, n),
		Betweenness: make([]float64, n),
		Closeness:   make([]float64, n),
	}

	for v := 0; v < n; v++ {
		table.Degree[v] = float64(g.Degree(v)) / float64(n-1)
	}

	closeness, err := closenessCentrality(g)
	if err != nil {
		return nil, err
	}
	table.Closeness = closeness

	nodeBC, _ := brandes(g)
	if n > 2 {
		// Brandes accumulates over ordered (s, t) pairs, so each unordered
		// pair is counted twice; dividing by (n-1)(n-2) yields the standard
		// 2/((n-1)(n-2)) normalization.
		scale := 1.0 / float64((n-1)*(n-2))
		for v := range nodeBC {
			nodeBC[v] *= scale
		}
	}
	table.Betweenness = nodeBC

	logger.Info().
		Int("nodes", n).
		Int("edges", g.NumEdges()).
		Dur("duration", time.Since(start)).
		Msg("Centrality table computed")
	return table, nil
}

// EdgeBetweenness computes betweenness for every edge of the graph,
// unnormalized, keyed by the canonical (u, v) pair with u < v. Hierarchical
// community detection consumes these values to pick removal candidates.
func EdgeBetweenness(g *graph.Graph) map[[2]int]float64 {
	_, edgeBC := brandes(g)
	return edgeBC
}

// closenessCentrality runs one BFS per node and converts distance sums to
// (n-1)/sum. Any unreachable pair makes the measure undefined.
func closenessCentrality(g *graph.Graph) ([]float64, error) {
	n := g.NumNodes
	closeness := make([]float64, n)
	dist := make([]int, n)

	for s := 0; s < n; s++ {
		reached, sum := bfsDistances(g, s, dist)
		if reached != n {
			return nil, fmt.Errorf("%w: node %d reaches only %d of %d nodes", ErrDisconnectedGraph, s, reached, n)
		}
		if sum > 0 {
			closeness[s] = float64(n-1) / float64(sum)
		}
	}
	return closeness, nil
}

// bfsDistances fills dist with shortest-path lengths from s and returns the
// number of reached nodes and the distance sum. dist is reused across calls.
func bfsDistances(g *graph.Graph, s int, dist []int) (reached, sum int) {
	for i := range dist {
		dist[i] = -1
	}
	dist[s] = 0
	queue := []int{s}
	reached = 1

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.Neighbors(v) {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				sum += dist[w]
				reached++
				queue = append(queue, w)
			}
		}
	}
	return reached, sum
}

// brandes runs Brandes' algorithm once per source node and accumulates both
// node and edge betweenness. Values are raw ordered-pair sums; callers apply
// their own normalization.
func brandes(g *graph.Graph) ([]float64, map[[2]int]float64) {
	n := g.NumNodes
	nodeBC := make([]float64, n)
	edgeBC := make(map[[2]int]float64, g.NumEdges())

	stack := make([]int, 0, n)
	preds := make([][]int, n)
	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)

	for s := 0; s < n; s++ {
		// Forward BFS phase.
		stack = stack[:0]
		for i := 0; i < n; i++ {
			preds[i] = preds[i][:0]
			sigma[i] = 0
			dist[i] = -1
			delta[i] = 0
		}
		sigma[s] = 1
		dist[s] = 0

		queue := []int{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.Neighbors(v) {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		// Back-propagation of pair dependencies, splitting ties
		// proportionally to shortest-path counts.
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				contribution := (sigma[v] / sigma[w]) * (1 + delta[w])
				delta[v] += contribution
				edgeBC[edgeKey(v, w)] += contribution
			}
			if w != s {
				nodeBC[w] += delta[w]
			}
		}
	}
	return nodeBC, edgeBC
}

func edgeKey(u, v int) [2]int {
	if u > v {
		u, v = v, u
	}
	return [2]int{u, v}
}
