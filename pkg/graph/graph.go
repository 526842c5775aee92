package graph

import (
	"fmt"
	"sort"
)

// Graph is an undirected simple graph over nodes 0..NumNodes-1. Each node may
// carry one categorical label (the faction ground truth for the bundled
// dataset). Adjacency lists preserve insertion order; loaders insert edges in
// lexicographic order so iteration is deterministic.
type Graph struct {
	NumNodes  int      `json:"num_nodes"`
	Adjacency [][]int  `json:"-"`
	Labels    []string `json:"labels,omitempty"`

	numEdges int
}

// NewGraph creates an empty graph with n nodes and no labels.
func NewGraph(numNodes int) *Graph {
	return &Graph{
		NumNodes:  numNodes,
		Adjacency: make([][]int, numNodes),
		Labels:    make([]string, numNodes),
	}
}

// AddEdge adds an undirected edge between two distinct nodes. Self-loops and
// duplicate edges are rejected.
func (g *Graph) AddEdge(u, v int) error {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return fmt.Errorf("node index out of range: u=%d, v=%d, numNodes=%d", u, v, g.NumNodes)
	}
	if u == v {
		return fmt.Errorf("self-loop not allowed: node %d", u)
	}
	if g.HasEdge(u, v) {
		return fmt.Errorf("duplicate edge %d-%d", u, v)
	}

	g.Adjacency[u] = append(g.Adjacency[u], v)
	g.Adjacency[v] = append(g.Adjacency[v], u)
	g.numEdges++
	return nil
}

// RemoveEdge deletes the undirected edge between u and v. It preserves the
// relative order of the remaining adjacency entries.
func (g *Graph) RemoveEdge(u, v int) error {
	if !g.HasEdge(u, v) {
		return fmt.Errorf("edge %d-%d not present", u, v)
	}
	g.Adjacency[u] = removeValue(g.Adjacency[u], v)
	g.Adjacency[v] = removeValue(g.Adjacency[v], u)
	g.numEdges--
	return nil
}

func removeValue(list []int, value int) []int {
	for i, x := range list {
		if x == value {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// HasEdge reports whether an edge between u and v exists.
func (g *Graph) HasEdge(u, v int) bool {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return false
	}
	for _, neighbor := range g.Adjacency[u] {
		if neighbor == v {
			return true
		}
	}
	return false
}

// Neighbors returns the adjacency list of a node. The returned slice is owned
// by the graph and must not be modified.
func (g *Graph) Neighbors(node int) []int {
	if node < 0 || node >= g.NumNodes {
		return nil
	}
	return g.Adjacency[node]
}

// Degree returns the number of neighbors of a node.
func (g *Graph) Degree(node int) int {
	if node < 0 || node >= g.NumNodes {
		return 0
	}
	return len(g.Adjacency[node])
}

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int {
	return g.numEdges
}

// Edges returns all edges as (u, v) pairs with u < v, sorted lexicographically.
func (g *Graph) Edges() [][2]int {
	edges := make([][2]int, 0, g.numEdges)
	for u := 0; u < g.NumNodes; u++ {
		for _, v := range g.Adjacency[u] {
			if u < v {
				edges = append(edges, [2]int{u, v})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// SetLabel assigns the categorical label of a node.
func (g *Graph) SetLabel(node int, label string) error {
	if node < 0 || node >= g.NumNodes {
		return fmt.Errorf("node index out of range: %d", node)
	}
	g.Labels[node] = label
	return nil
}

// Label returns the categorical label of a node.
func (g *Graph) Label(node int) string {
	if node < 0 || node >= g.NumNodes {
		return ""
	}
	return g.Labels[node]
}

// LabelValues returns the distinct labels present, sorted ascending.
func (g *Graph) LabelValues() []string {
	seen := make(map[string]bool)
	for _, label := range g.Labels {
		if label != "" {
			seen[label] = true
		}
	}
	values := make([]string, 0, len(seen))
	for label := range seen {
		values = append(values, label)
	}
	sort.Strings(values)
	return values
}

// Clone creates a deep copy of the graph, labels included.
func (g *Graph) Clone() *Graph {
	clone := NewGraph(g.NumNodes)
	clone.numEdges = g.numEdges
	copy(clone.Labels, g.Labels)
	for i := 0; i < g.NumNodes; i++ {
		clone.Adjacency[i] = make([]int, len(g.Adjacency[i]))
		copy(clone.Adjacency[i], g.Adjacency[i])
	}
	return clone
}

// Validate checks structural consistency: neighbor indices in range, no
// self-loops, no duplicate entries, and symmetric adjacency.
func (g *Graph) Validate() error {
	if g.NumNodes <= 0 {
		return fmt.Errorf("graph must have a positive number of nodes")
	}
	if len(g.Adjacency) != g.NumNodes {
		return fmt.Errorf("adjacency length %d does not match node count %d", len(g.Adjacency), g.NumNodes)
	}
	if len(g.Labels) != g.NumNodes {
		return fmt.Errorf("labels length %d does not match node count %d", len(g.Labels), g.NumNodes)
	}

	total := 0
	for u := 0; u < g.NumNodes; u++ {
		seen := make(map[int]bool, len(g.Adjacency[u]))
		for _, v := range g.Adjacency[u] {
			if v < 0 || v >= g.NumNodes {
				return fmt.Errorf("invalid neighbor %d for node %d", v, u)
			}
			if v == u {
				return fmt.Errorf("self-loop on node %d", u)
			}
			if seen[v] {
				return fmt.Errorf("duplicate edge %d-%d", u, v)
			}
			seen[v] = true
			if !g.HasEdge(v, u) {
				return fmt.Errorf("asymmetric adjacency: %d-%d present, %d-%d missing", u, v, v, u)
			}
		}
		total += len(g.Adjacency[u])
	}
	if total != 2*g.numEdges {
		return fmt.Errorf("edge count %d inconsistent with adjacency entries %d", g.numEdges, total)
	}
	return nil
}
