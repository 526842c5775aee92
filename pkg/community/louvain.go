package community

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/DZIMDZEM/social-media-analysis/pkg/graph"
)

// LouvainOptions fixes the modularity-greedy configuration. The algorithm is
// order-sensitive: the seed drives the node-visit shuffle, so the same seed on
// the same graph always reproduces the same partition, while different seeds
// may reach different local optima.
type LouvainOptions struct {
	Seed       int64   `json:"seed"`
	Resolution float64 `json:"resolution"`
	MaxLevels  int     `json:"max_levels"`
	MaxSweeps  int     `json:"max_sweeps"`
}

// DefaultLouvainOptions returns the single fixed configuration used for
// reporting: resolution 1.0 with coarsening run to convergence.
func DefaultLouvainOptions() LouvainOptions {
	return LouvainOptions{
		Seed:       42,
		Resolution: 1.0,
		MaxLevels:  10,
		MaxSweeps:  100,
	}
}

// LouvainDetector is the modularity-greedy strategy.
type LouvainDetector struct {
	Options LouvainOptions
	Logger  zerolog.Logger
}

func (d *LouvainDetector) Name() string { return MethodLouvain }

func (d *LouvainDetector) Detect(g *graph.Graph) (*Result, error) {
	return DetectLouvain(g, d.Options, d.Logger)
}

// DetectLouvain runs modularity-greedy community detection: local moves that
// maximize modularity gain, then coarsening communities into super-nodes,
// repeated level by level until no further merge is possible. The reported
// modularity is computed on the input graph.
func DetectLouvain(g *graph.Graph, opts LouvainOptions, logger zerolog.Logger) (*Result, error) {
	start := time.Now()
	if g.NumNodes == 0 {
		return nil, fmt.Errorf("community: cannot detect communities on an empty graph")
	}
	if opts.Resolution <= 0 {
		opts.Resolution = 1.0
	}
	if opts.MaxLevels <= 0 {
		opts.MaxLevels = 10
	}
	if opts.MaxSweeps <= 0 {
		opts.MaxSweeps = 100
	}

	// With no edges every node is its own community and Q is 0.
	if g.NumEdges() == 0 {
		assign := make([]int, g.NumNodes)
		for v := range assign {
			assign[v] = v
		}
		return &Result{Method: MethodLouvain, Partition: NewPartition(assign), Modularity: 0}, nil
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	working := newLevelGraph(g)

	// assign[v] tracks which working-graph node the original node v has been
	// folded into across levels.
	assign := make([]int, g.NumNodes)
	for v := range assign {
		assign[v] = v
	}

	totalMoves, levels := 0, 0
	for level := 0; level < opts.MaxLevels; level++ {
		communities, moves := oneLevel(working, rng, opts.Resolution, opts.MaxSweeps)
		totalMoves += moves

		super, superOf := aggregate(working, communities)
		for v := range assign {
			assign[v] = superOf[assign[v]]
		}
		levels++

		logger.Debug().
			Int("level", level).
			Int("nodes", working.numNodes).
			Int("communities", super.numNodes).
			Int("moves", moves).
			Msg("Louvain level completed")

		if super.numNodes == working.numNodes {
			break
		}
		working = super
	}

	partition := NewPartition(assign)
	q, err := Modularity(g, partition)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("seed", opts.Seed).
		Float64("resolution", opts.Resolution).
		Int("communities", partition.NumCommunities).
		Float64("modularity", q).
		Int("levels", levels).
		Int("moves", totalMoves).
		Dur("duration", time.Since(start)).
		Msg("Modularity-greedy detection completed")

	return &Result{
		Method:     MethodLouvain,
		Partition:  partition,
		Modularity: q,
		Levels:     levels,
		Moves:      totalMoves,
	}, nil
}

// levelGraph is the weighted working graph for one coarsening level.
// Self-loop weight is kept separately: it counts once toward totalWeight and
// twice toward the node's degree.
type levelGraph struct {
	numNodes    int
	adjacency   [][]int
	weights     [][]float64
	selfLoops   []float64
	degrees     []float64
	totalWeight float64
}

func newLevelGraph(g *graph.Graph) *levelGraph {
	lg := &levelGraph{
		numNodes:  g.NumNodes,
		adjacency: make([][]int, g.NumNodes),
		weights:   make([][]float64, g.NumNodes),
		selfLoops: make([]float64, g.NumNodes),
		degrees:   make([]float64, g.NumNodes),
	}
	for v := 0; v < g.NumNodes; v++ {
		neighbors := g.Neighbors(v)
		lg.adjacency[v] = make([]int, len(neighbors))
		copy(lg.adjacency[v], neighbors)
		lg.weights[v] = make([]float64, len(neighbors))
		for i := range lg.weights[v] {
			lg.weights[v][i] = 1.0
		}
		lg.degrees[v] = float64(len(neighbors))
	}
	lg.totalWeight = float64(g.NumEdges())
	return lg
}

// oneLevel runs local-move sweeps until a full sweep makes no move. Each sweep
// visits nodes in a fresh seeded shuffle; for one node the candidate neighbor
// communities are evaluated in ascending community id and the node moves only
// on a strictly positive improvement over staying put.
func oneLevel(lg *levelGraph, rng *rand.Rand, resolution float64, maxSweeps int) ([]int, int) {
	n := lg.numNodes
	community := make([]int, n)
	sigmaTot := make([]float64, n)
	for v := 0; v < n; v++ {
		community[v] = v
		sigmaTot[v] = lg.degrees[v]
	}
	m2 := 2 * lg.totalWeight

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	totalMoves := 0
	for sweep := 0; sweep < maxSweeps; sweep++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		moves := 0
		for _, v := range order {
			cOld := community[v]
			kv := lg.degrees[v]

			neighWeights := make(map[int]float64)
			for i, w := range lg.adjacency[v] {
				neighWeights[community[w]] += lg.weights[v][i]
			}

			// Remove v from its community before comparing candidates, so
			// sigmaTot never counts v against itself.
			sigmaTot[cOld] -= kv

			candidates := make([]int, 0, len(neighWeights))
			for c := range neighWeights {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)

			bestComm := cOld
			bestGain := neighWeights[cOld] - resolution*sigmaTot[cOld]*kv/m2
			for _, c := range candidates {
				if c == cOld {
					continue
				}
				gain := neighWeights[c] - resolution*sigmaTot[c]*kv/m2
				if gain > bestGain {
					bestGain = gain
					bestComm = c
				}
			}

			sigmaTot[bestComm] += kv
			if bestComm != cOld {
				community[v] = bestComm
				moves++
			}
		}

		totalMoves += moves
		if moves == 0 {
			break
		}
	}
	return community, totalMoves
}

// aggregate collapses communities into super-nodes: parallel edges sum into
// one weight, intra-community edges become self-loops. It returns the coarser
// graph and the node-to-super mapping, with super ids numbered by smallest
// member.
func aggregate(lg *levelGraph, community []int) (*levelGraph, []int) {
	renumber := make(map[int]int)
	superOf := make([]int, lg.numNodes)
	for v := 0; v < lg.numNodes; v++ {
		id, ok := renumber[community[v]]
		if !ok {
			id = len(renumber)
			renumber[community[v]] = id
		}
		superOf[v] = id
	}

	k := len(renumber)
	super := &levelGraph{
		numNodes:  k,
		adjacency: make([][]int, k),
		weights:   make([][]float64, k),
		selfLoops: make([]float64, k),
		degrees:   make([]float64, k),
	}

	edgeWeights := make(map[[2]int]float64)
	for v := 0; v < lg.numNodes; v++ {
		super.selfLoops[superOf[v]] += lg.selfLoops[v]
		for i, w := range lg.adjacency[v] {
			if v >= w {
				continue
			}
			su, sv := superOf[v], superOf[w]
			if su == sv {
				super.selfLoops[su] += lg.weights[v][i]
			} else {
				edgeWeights[edgeKey(su, sv)] += lg.weights[v][i]
			}
		}
	}

	keys := make([][2]int, 0, len(edgeWeights))
	for key := range edgeWeights {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, key := range keys {
		weight := edgeWeights[key]
		u, v := key[0], key[1]
		super.adjacency[u] = append(super.adjacency[u], v)
		super.weights[u] = append(super.weights[u], weight)
		super.adjacency[v] = append(super.adjacency[v], u)
		super.weights[v] = append(super.weights[v], weight)
		super.degrees[u] += weight
		super.degrees[v] += weight
		super.totalWeight += weight
	}
	for v := 0; v < k; v++ {
		super.degrees[v] += 2 * super.selfLoops[v]
		super.totalWeight += super.selfLoops[v]
	}
	return super, superOf
}

func edgeKey(u, v int) [2]int {
	if u > v {
		u, v = v, u
	}
	return [2]int{u, v}
}
