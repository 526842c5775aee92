package community

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DZIMDZEM/social-media-analysis/pkg/dataset"
	"github.com/DZIMDZEM/social-media-analysis/pkg/graph"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func buildGraph(t *testing.T, n int, edges [][2]int) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(n)
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d) failed: %v", e[0], e[1], err)
		}
	}
	return g
}

// Two triangles joined by a single bridge edge 2-3.
func twoTriangles(t *testing.T) *graph.Graph {
	t.Helper()
	return buildGraph(t, 6, [][2]int{
		{0, 1}, {0, 2}, {1, 2},
		{3, 4}, {3, 5}, {4, 5},
		{2, 3},
	})
}

func checkContiguous(t *testing.T, p *Partition) {
	t.Helper()
	seen := make([]bool, p.NumCommunities)
	for v, c := range p.Assignments {
		if c < 0 || c >= p.NumCommunities {
			t.Fatalf("node %d assigned to community %d outside [0, %d)", v, c, p.NumCommunities)
		}
		seen[c] = true
	}
	for c, ok := range seen {
		if !ok {
			t.Errorf("community id %d is empty, ids must be contiguous", c)
		}
	}
}

func TestNewPartition(t *testing.T) {
	p := NewPartition([]int{5, 5, 2, 7, 2})
	want := []int{0, 0, 1, 2, 1}
	if !reflect.DeepEqual(p.Assignments, want) {
		t.Errorf("Assignments = %v, want %v", p.Assignments, want)
	}
	if p.NumCommunities != 3 {
		t.Errorf("NumCommunities = %d, want 3", p.NumCommunities)
	}

	members := p.Members(1)
	if !reflect.DeepEqual(members, []int{2, 4}) {
		t.Errorf("Members(1) = %v, want [2 4]", members)
	}
	sizes := p.Sizes()
	if !reflect.DeepEqual(sizes, []int{2, 2, 1}) {
		t.Errorf("Sizes() = %v, want [2 2 1]", sizes)
	}
}

func TestModularity(t *testing.T) {
	g := twoTriangles(t)

	t.Run("PerfectSplit", func(t *testing.T) {
		q, err := Modularity(g, NewPartition([]int{0, 0, 0, 1, 1, 1}))
		if err != nil {
			t.Fatalf("Modularity failed: %v", err)
		}
		// 2 * (3/7 - (7/14)^2) = 5/14.
		if !almostEqual(q, 5.0/14.0, 1e-12) {
			t.Errorf("Q = %f, want %f", q, 5.0/14.0)
		}
	})

	t.Run("SingleCommunity", func(t *testing.T) {
		q, err := Modularity(g, NewPartition([]int{0, 0, 0, 0, 0, 0}))
		if err != nil {
			t.Fatalf("Modularity failed: %v", err)
		}
		if !almostEqual(q, 0, 1e-12) {
			t.Errorf("single community Q = %f, want 0", q)
		}
	})

	t.Run("SingletonsNegative", func(t *testing.T) {
		k3 := buildGraph(t, 3, [][2]int{{0, 1}, {1, 2}, {0, 2}})
		q, err := Modularity(k3, NewPartition([]int{0, 1, 2}))
		if err != nil {
			t.Fatalf("Modularity failed: %v", err)
		}
		if !almostEqual(q, -1.0/3.0, 1e-12) {
			t.Errorf("singleton Q = %f, want -1/3", q)
		}
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		if _, err := Modularity(g, NewPartition([]int{0, 0, 1})); err == nil {
			t.Errorf("partition over the wrong node count should fail")
		}
	})
}

func TestPurity(t *testing.T) {
	p := NewPartition([]int{0, 0, 0, 1, 1})
	labels := []string{"A", "A", "B", "B", "B"}

	stats, err := Purity(p, labels)
	if err != nil {
		t.Fatalf("Purity failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d communities, want 2", len(stats))
	}

	if stats[0].Size != 3 || stats[0].Majority != "A" || !almostEqual(stats[0].Purity, 2.0/3.0, 1e-12) {
		t.Errorf("community 0 = %+v, want size 3, majority A, purity 2/3", stats[0])
	}
	if stats[1].Size != 2 || stats[1].Majority != "B" || !almostEqual(stats[1].Purity, 1.0, 1e-12) {
		t.Errorf("community 1 = %+v, want size 2, majority B, purity 1", stats[1])
	}
	if stats[0].LabelCounts["A"] != 2 || stats[0].LabelCounts["B"] != 1 {
		t.Errorf("community 0 label counts = %v", stats[0].LabelCounts)
	}

	t.Run("TieBreaksToSmallestLabel", func(t *testing.T) {
		tied, err := Purity(NewPartition([]int{0, 0}), []string{"B", "A"})
		if err != nil {
			t.Fatalf("Purity failed: %v", err)
		}
		if tied[0].Majority != "A" || !almostEqual(tied[0].Purity, 0.5, 1e-12) {
			t.Errorf("tied community = %+v, want majority A with purity 0.5", tied[0])
		}
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		if _, err := Purity(p, []string{"A"}); err == nil {
			t.Errorf("label count mismatch should fail")
		}
	})

	t.Run("Weighted", func(t *testing.T) {
		if got := WeightedPurity(stats); !almostEqual(got, 4.0/5.0, 1e-12) {
			t.Errorf("WeightedPurity = %f, want 0.8", got)
		}
	})
}

func TestLouvainTwoTriangles(t *testing.T) {
	g := twoTriangles(t)

	for _, seed := range []int64{42, 7} {
		opts := DefaultLouvainOptions()
		opts.Seed = seed
		result, err := DetectLouvain(g, opts, zerolog.Nop())
		if err != nil {
			t.Fatalf("DetectLouvain(seed=%d) failed: %v", seed, err)
		}
		if result.Partition.NumCommunities != 2 {
			t.Fatalf("seed %d: got %d communities, want the 2 triangles", seed, result.Partition.NumCommunities)
		}
		a := result.Partition.Assignments
		if a[0] != a[1] || a[1] != a[2] || a[3] != a[4] || a[4] != a[5] || a[0] == a[3] {
			t.Errorf("seed %d: assignments %v do not match the triangles", seed, a)
		}
		if !almostEqual(result.Modularity, 5.0/14.0, 1e-12) {
			t.Errorf("seed %d: modularity = %f, want 5/14", seed, result.Modularity)
		}
	}
}

func TestLouvainDeterminism(t *testing.T) {
	g, err := dataset.Load()
	if err != nil {
		t.Fatalf("dataset.Load() failed: %v", err)
	}

	opts := DefaultLouvainOptions()
	first, err := DetectLouvain(g, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := DetectLouvain(g, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(first.Partition.Assignments, second.Partition.Assignments) {
		t.Errorf("same seed must reproduce the same partition")
	}
	if first.Modularity != second.Modularity {
		t.Errorf("same seed must reproduce the same modularity: %f vs %f", first.Modularity, second.Modularity)
	}
}

func TestLouvainKarate(t *testing.T) {
	g, err := dataset.Load()
	if err != nil {
		t.Fatalf("dataset.Load() failed: %v", err)
	}

	result, err := DetectLouvain(g, DefaultLouvainOptions(), zerolog.Nop())
	if err != nil {
		t.Fatalf("DetectLouvain failed: %v", err)
	}

	if len(result.Partition.Assignments) != 34 {
		t.Fatalf("partition covers %d nodes, want 34", len(result.Partition.Assignments))
	}
	checkContiguous(t, result.Partition)

	if result.Partition.NumCommunities < 2 || result.Partition.NumCommunities > 8 {
		t.Errorf("got %d communities, expected a handful", result.Partition.NumCommunities)
	}
	if result.Modularity < 0.3 {
		t.Errorf("modularity = %f, expected above 0.3 on the karate club", result.Modularity)
	}

	recomputed, err := Modularity(g, result.Partition)
	if err != nil {
		t.Fatalf("Modularity failed: %v", err)
	}
	if !almostEqual(result.Modularity, recomputed, 1e-12) {
		t.Errorf("reported modularity %f disagrees with recomputation %f", result.Modularity, recomputed)
	}
}

func TestLouvainEdgeCases(t *testing.T) {
	t.Run("EmptyGraph", func(t *testing.T) {
		if _, err := DetectLouvain(graph.NewGraph(0), DefaultLouvainOptions(), zerolog.Nop()); err == nil {
			t.Errorf("empty graph should fail")
		}
	})

	t.Run("NoEdges", func(t *testing.T) {
		result, err := DetectLouvain(graph.NewGraph(3), DefaultLouvainOptions(), zerolog.Nop())
		if err != nil {
			t.Fatalf("edgeless graph failed: %v", err)
		}
		if result.Partition.NumCommunities != 3 || result.Modularity != 0 {
			t.Errorf("edgeless graph: got %d communities, Q=%f; want singletons with Q=0",
				result.Partition.NumCommunities, result.Modularity)
		}
	})
}

func TestGirvanNewmanTwoTriangles(t *testing.T) {
	g := twoTriangles(t)

	result, err := DetectGirvanNewman(g, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("DetectGirvanNewman failed: %v", err)
	}
	if result.EdgesRemoved != 1 {
		t.Errorf("removed %d edges, want just the bridge", result.EdgesRemoved)
	}
	want := []int{0, 0, 0, 1, 1, 1}
	if !reflect.DeepEqual(result.Partition.Assignments, want) {
		t.Errorf("Assignments = %v, want %v", result.Partition.Assignments, want)
	}
	if !almostEqual(result.Modularity, 5.0/14.0, 1e-12) {
		t.Errorf("modularity = %f, want 5/14", result.Modularity)
	}
	if g.NumEdges() != 7 {
		t.Errorf("input graph was modified: %d edges left", g.NumEdges())
	}
}

func TestGirvanNewmanKarate(t *testing.T) {
	g, err := dataset.Load()
	if err != nil {
		t.Fatalf("dataset.Load() failed: %v", err)
	}

	result, err := DetectGirvanNewman(g, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("DetectGirvanNewman failed: %v", err)
	}
	if result.Partition.NumCommunities != 2 {
		t.Fatalf("got %d communities, want 2", result.Partition.NumCommunities)
	}

	sizes := result.Partition.Sizes()
	small, large := sizes[0], sizes[1]
	if small > large {
		small, large = large, small
	}
	if small != 15 || large != 19 {
		t.Fatalf("community sizes = %v, want 15 and 19", sizes)
	}

	stats, err := Purity(result.Partition, g.Labels)
	if err != nil {
		t.Fatalf("Purity failed: %v", err)
	}
	for _, s := range stats {
		if s.Size == 15 && !almostEqual(s.Purity, 1.0, 1e-12) {
			t.Errorf("the 15-member community must be single-faction, purity = %f", s.Purity)
		}
	}

	if result.Modularity < 0.3 {
		t.Errorf("modularity = %f, expected above 0.3 for the canonical split", result.Modularity)
	}
	if g.NumEdges() != 78 {
		t.Errorf("input graph was modified: %d edges left", g.NumEdges())
	}
}

func TestGirvanNewmanTargets(t *testing.T) {
	g := twoTriangles(t)

	t.Run("TargetOne", func(t *testing.T) {
		result, err := DetectGirvanNewman(g, 1, zerolog.Nop())
		if err != nil {
			t.Fatalf("target 1 failed: %v", err)
		}
		if result.Partition.NumCommunities != 1 || result.EdgesRemoved != 0 {
			t.Errorf("target 1 should be the trivial partition with no removals, got %d communities after %d removals",
				result.Partition.NumCommunities, result.EdgesRemoved)
		}
	})

	t.Run("TargetEqualsNodes", func(t *testing.T) {
		result, err := DetectGirvanNewman(g, 6, zerolog.Nop())
		if err != nil {
			t.Fatalf("target 6 failed: %v", err)
		}
		if result.Partition.NumCommunities != 6 {
			t.Errorf("got %d communities, want all singletons", result.Partition.NumCommunities)
		}
		if result.EdgesRemoved != 7 {
			t.Errorf("all %d edges must go to isolate every node, removed %d", 7, result.EdgesRemoved)
		}
	})

	for _, target := range []int{0, -3, 7} {
		result, err := DetectGirvanNewman(g, target, zerolog.Nop())
		if err == nil {
			t.Errorf("target %d should fail, got %d communities", target, result.Partition.NumCommunities)
			continue
		}
		if !errors.Is(err, ErrInvalidTargetCount) {
			t.Errorf("target %d: error = %v, want ErrInvalidTargetCount", target, err)
		}
	}
}

func TestDetectorInterface(t *testing.T) {
	g := twoTriangles(t)

	detectors := []Detector{
		&LouvainDetector{Options: DefaultLouvainOptions(), Logger: zerolog.Nop()},
		&GirvanNewmanDetector{TargetCount: 2, Logger: zerolog.Nop()},
	}
	wantNames := []string{MethodLouvain, MethodGirvanNewman}

	for i, d := range detectors {
		if d.Name() != wantNames[i] {
			t.Errorf("detector %d Name() = %q, want %q", i, d.Name(), wantNames[i])
		}
		result, err := d.Detect(g)
		if err != nil {
			t.Fatalf("%s Detect failed: %v", d.Name(), err)
		}
		if result.Method != wantNames[i] {
			t.Errorf("%s result method = %q", d.Name(), result.Method)
		}
		if result.Partition.NumCommunities != 2 {
			t.Errorf("%s found %d communities on the two triangles, want 2", d.Name(), result.Partition.NumCommunities)
		}
	}
}
