package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ToGonumUndirected converts the graph to a gonum simple undirected graph.
// Node ids carry over unchanged (0..NumNodes-1 as int64).
func ToGonumUndirected(g *Graph) *simple.UndirectedGraph {
	dst := simple.NewUndirectedGraph()
	for v := 0; v < g.NumNodes; v++ {
		dst.AddNode(simple.Node(int64(v)))
	}
	for _, e := range g.Edges() {
		dst.SetEdge(simple.Edge{F: simple.Node(int64(e[0])), T: simple.Node(int64(e[1]))})
	}
	return dst
}

// ToGonumDirected converts the graph to a gonum directed graph with an arc in
// each direction per undirected edge.
func ToGonumDirected(g *Graph) *simple.DirectedGraph {
	dst := simple.NewDirectedGraph()
	for v := 0; v < g.NumNodes; v++ {
		dst.AddNode(simple.Node(int64(v)))
	}
	for _, e := range g.Edges() {
		dst.SetEdge(simple.Edge{F: simple.Node(int64(e[0])), T: simple.Node(int64(e[1]))})
		dst.SetEdge(simple.Edge{F: simple.Node(int64(e[1])), T: simple.Node(int64(e[0]))})
	}
	return dst
}

// Components returns the connected components as sorted node id slices,
// ordered by their smallest member.
func Components(g *Graph) [][]int {
	raw := topo.ConnectedComponents(ToGonumUndirected(g))
	components := make([][]int, 0, len(raw))
	for _, nodes := range raw {
		component := make([]int, 0, len(nodes))
		for _, n := range nodes {
			component = append(component, int(n.ID()))
		}
		sort.Ints(component)
		components = append(components, component)
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})
	return components
}

// IsConnected reports whether every node is reachable from every other node.
func IsConnected(g *Graph) bool {
	if g.NumNodes == 0 {
		return false
	}
	return len(Components(g)) == 1
}
