package graph

import (
	"testing"
)

// Helper to build a path graph 0-1-2-...-(n-1).
func pathGraph(t *testing.T, n int) *Graph {
	t.Helper()
	g := NewGraph(n)
	for i := 0; i+1 < n; i++ {
		if err := g.AddEdge(i, i+1); err != nil {
			t.Fatalf("AddEdge(%d, %d) failed: %v", i, i+1, err)
		}
	}
	return g
}

func TestAddEdge(t *testing.T) {
	g := NewGraph(4)

	if err := g.AddEdge(0, 1); err != nil {
		t.Fatalf("AddEdge(0, 1) failed: %v", err)
	}
	if !g.HasEdge(0, 1) || !g.HasEdge(1, 0) {
		t.Errorf("edge 0-1 should exist in both directions")
	}
	if g.NumEdges() != 1 {
		t.Errorf("expected 1 edge, got %d", g.NumEdges())
	}

	cases := []struct {
		name string
		u, v int
	}{
		{"SelfLoop", 2, 2},
		{"Duplicate", 0, 1},
		{"DuplicateReversed", 1, 0},
		{"OutOfRange", 0, 9},
		{"Negative", -1, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := g.AddEdge(tc.u, tc.v); err == nil {
				t.Errorf("AddEdge(%d, %d) should have failed", tc.u, tc.v)
			}
		})
	}

	if g.NumEdges() != 1 {
		t.Errorf("rejected edges must not change edge count, got %d", g.NumEdges())
	}
}

func TestRemoveEdge(t *testing.T) {
	g := pathGraph(t, 4)

	if err := g.RemoveEdge(1, 2); err != nil {
		t.Fatalf("RemoveEdge(1, 2) failed: %v", err)
	}
	if g.HasEdge(1, 2) || g.HasEdge(2, 1) {
		t.Errorf("edge 1-2 should be gone from both directions")
	}
	if g.NumEdges() != 2 {
		t.Errorf("expected 2 edges after removal, got %d", g.NumEdges())
	}
	if err := g.RemoveEdge(1, 2); err == nil {
		t.Errorf("removing a missing edge should fail")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("graph invalid after removal: %v", err)
	}
}

func TestDegreeAndNeighbors(t *testing.T) {
	g := NewGraph(5)
	for _, e := range [][2]int{{0, 1}, {0, 2}, {0, 3}, {2, 3}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d) failed: %v", e[0], e[1], err)
		}
	}

	if got := g.Degree(0); got != 3 {
		t.Errorf("Degree(0) = %d, want 3", got)
	}
	if got := g.Degree(4); got != 0 {
		t.Errorf("Degree(4) = %d, want 0", got)
	}

	want := []int{1, 2, 3}
	got := g.Neighbors(0)
	if len(got) != len(want) {
		t.Fatalf("Neighbors(0) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Neighbors(0)[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestEdges(t *testing.T) {
	g := NewGraph(4)
	for _, e := range [][2]int{{2, 3}, {0, 3}, {0, 1}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}

	want := [][2]int{{0, 1}, {0, 3}, {2, 3}}
	got := g.Edges()
	if len(got) != len(want) {
		t.Fatalf("Edges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Edges()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestClone(t *testing.T) {
	g := pathGraph(t, 3)
	g.SetLabel(0, "A")
	g.SetLabel(1, "A")
	g.SetLabel(2, "B")

	clone := g.Clone()
	if err := clone.RemoveEdge(0, 1); err != nil {
		t.Fatalf("RemoveEdge on clone failed: %v", err)
	}
	clone.SetLabel(2, "C")

	if !g.HasEdge(0, 1) {
		t.Errorf("removing an edge on the clone must not affect the original")
	}
	if g.Label(2) != "B" {
		t.Errorf("relabeling the clone must not affect the original")
	}
	if g.NumEdges() != 2 || clone.NumEdges() != 1 {
		t.Errorf("edge counts diverged wrong: original=%d clone=%d", g.NumEdges(), clone.NumEdges())
	}
}

func TestLabels(t *testing.T) {
	g := NewGraph(3)
	g.SetLabel(0, "B")
	g.SetLabel(1, "A")
	g.SetLabel(2, "A")

	values := g.LabelValues()
	if len(values) != 2 || values[0] != "A" || values[1] != "B" {
		t.Errorf("LabelValues() = %v, want [A B]", values)
	}
	if err := g.SetLabel(7, "X"); err == nil {
		t.Errorf("SetLabel out of range should fail")
	}
}

func TestValidate(t *testing.T) {
	g := pathGraph(t, 4)
	if err := g.Validate(); err != nil {
		t.Fatalf("valid graph rejected: %v", err)
	}

	// Corrupt the adjacency directly to exercise the checks.
	broken := pathGraph(t, 4)
	broken.Adjacency[0] = append(broken.Adjacency[0], 0)
	if err := broken.Validate(); err == nil {
		t.Errorf("self-loop should fail validation")
	}

	asym := pathGraph(t, 4)
	asym.Adjacency[3] = append(asym.Adjacency[3], 0)
	if err := asym.Validate(); err == nil {
		t.Errorf("asymmetric adjacency should fail validation")
	}
}

func TestComponents(t *testing.T) {
	g := NewGraph(6)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {3, 4}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}

	components := Components(g)
	if len(components) != 3 {
		t.Fatalf("expected 3 components, got %d: %v", len(components), components)
	}
	wantSizes := []int{3, 2, 1}
	for i, want := range wantSizes {
		if len(components[i]) != want {
			t.Errorf("component %d has size %d, want %d", i, len(components[i]), want)
		}
	}
	if IsConnected(g) {
		t.Errorf("graph with 3 components reported connected")
	}

	if !IsConnected(pathGraph(t, 5)) {
		t.Errorf("path graph reported disconnected")
	}
}

func TestGonumAdapters(t *testing.T) {
	g := pathGraph(t, 4)

	und := ToGonumUndirected(g)
	if got := und.Nodes().Len(); got != 4 {
		t.Errorf("undirected adapter node count = %d, want 4", got)
	}
	if !und.HasEdgeBetween(1, 2) {
		t.Errorf("undirected adapter missing edge 1-2")
	}

	dir := ToGonumDirected(g)
	if dir.Edge(1, 2) == nil || dir.Edge(2, 1) == nil {
		t.Errorf("directed adapter must carry both arc directions")
	}
}
