// Package community detects and summarizes community structure: a
// modularity-greedy detector, a hierarchical edge-betweenness detector, the
// modularity quality score, and purity summaries against ground-truth labels.
package community

import (
	"errors"
	"fmt"
	"sort"

	"github.com/DZIMDZEM/social-media-analysis/pkg/graph"
)

// ErrInvalidTargetCount is returned when hierarchical detection is asked for
// a community count it can never reach.
var ErrInvalidTargetCount = errors.New("community: invalid target community count")

// Detection method names.
const (
	MethodLouvain      = "louvain"
	MethodGirvanNewman = "girvan-newman"
)

// Partition assigns every node to exactly one community. Community ids are
// contiguous from 0, numbered by each community's smallest member node id.
type Partition struct {
	Assignments    []int `json:"assignments"`
	NumCommunities int   `json:"num_communities"`
}

// NewPartition builds a Partition from raw per-node community assignments,
// renumbering ids into canonical form.
func NewPartition(assignments []int) *Partition {
	normalized := make([]int, len(assignments))
	remap := make(map[int]int)
	for v, raw := range assignments {
		id, ok := remap[raw]
		if !ok {
			id = len(remap)
			remap[raw] = id
		}
		normalized[v] = id
	}
	return &Partition{Assignments: normalized, NumCommunities: len(remap)}
}

// Members returns the sorted node ids of one community.
func (p *Partition) Members(community int) []int {
	members := make([]int, 0)
	for v, c := range p.Assignments {
		if c == community {
			members = append(members, v)
		}
	}
	sort.Ints(members)
	return members
}

// Sizes returns the size of each community, indexed by community id.
func (p *Partition) Sizes() []int {
	sizes := make([]int, p.NumCommunities)
	for _, c := range p.Assignments {
		sizes[c]++
	}
	return sizes
}

// Result is the output of one detection method: the partition, its modularity
// score, and method-specific counters.
type Result struct {
	Method       string     `json:"method"`
	Partition    *Partition `json:"partition"`
	Modularity   float64    `json:"modularity"`
	Levels       int        `json:"levels,omitempty"`
	Moves        int        `json:"moves,omitempty"`
	EdgesRemoved int        `json:"edges_removed,omitempty"`
}

// Detector is one community-detection strategy over a graph. Strategies are
// swappable; each produces an independent partition of the same graph.
type Detector interface {
	Name() string
	Detect(g *graph.Graph) (*Result, error)
}

// Modularity computes Q = (1/2m) Σ_ij [A_ij − k_i k_j / 2m] δ(c_i, c_j) for
// an unweighted graph, using the given graph's edges. For partitions produced
// by edge removal this must be called with the original graph, never the
// pruned one.
func Modularity(g *graph.Graph, p *Partition) (float64, error) {
	if len(p.Assignments) != g.NumNodes {
		return 0, fmt.Errorf("community: partition covers %d nodes, graph has %d", len(p.Assignments), g.NumNodes)
	}
	m := float64(g.NumEdges())
	if m == 0 {
		return 0, nil
	}

	intraEdges := make([]float64, p.NumCommunities)
	degreeSums := make([]float64, p.NumCommunities)
	for v := 0; v < g.NumNodes; v++ {
		degreeSums[p.Assignments[v]] += float64(g.Degree(v))
	}
	for _, e := range g.Edges() {
		if p.Assignments[e[0]] == p.Assignments[e[1]] {
			intraEdges[p.Assignments[e[0]]]++
		}
	}

	q := 0.0
	for c := 0; c < p.NumCommunities; c++ {
		q += intraEdges[c]/m - (degreeSums[c]/(2*m))*(degreeSums[c]/(2*m))
	}
	return q, nil
}

// CommunityPurity summarizes one community against the ground-truth labels.
type CommunityPurity struct {
	Community   int            `json:"community"`
	Size        int            `json:"size"`
	LabelCounts map[string]int `json:"label_counts"`
	Majority    string         `json:"majority"`
	Purity      float64        `json:"purity"`
}

// Purity joins a partition against per-node ground-truth labels and reports,
// for each community, the majority label and its fraction
// max(count_A, count_B)/size. The partition is never modified. Entries are
// ordered by community id; majority ties resolve to the lexicographically
// smallest label.
func Purity(p *Partition, labels []string) ([]CommunityPurity, error) {
	if len(labels) != len(p.Assignments) {
		return nil, fmt.Errorf("community: %d labels for %d assigned nodes", len(labels), len(p.Assignments))
	}

	stats := make([]CommunityPurity, p.NumCommunities)
	for c := range stats {
		stats[c] = CommunityPurity{Community: c, LabelCounts: make(map[string]int)}
	}
	for v, c := range p.Assignments {
		stats[c].Size++
		stats[c].LabelCounts[labels[v]]++
	}

	for c := range stats {
		names := make([]string, 0, len(stats[c].LabelCounts))
		for label := range stats[c].LabelCounts {
			names = append(names, label)
		}
		sort.Strings(names)
		for _, label := range names {
			if count := stats[c].LabelCounts[label]; count > stats[c].LabelCounts[stats[c].Majority] {
				stats[c].Majority = label
			}
		}
		if stats[c].Size > 0 {
			stats[c].Purity = float64(stats[c].LabelCounts[stats[c].Majority]) / float64(stats[c].Size)
		}
	}
	return stats, nil
}

// WeightedPurity aggregates per-community purity into one size-weighted
// score.
func WeightedPurity(stats []CommunityPurity) float64 {
	total, weighted := 0, 0.0
	for _, s := range stats {
		total += s.Size
		weighted += float64(s.Size) * s.Purity
	}
	if total == 0 {
		return 0
	}
	return weighted / float64(total)
}
