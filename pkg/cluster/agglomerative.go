package cluster

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/DZIMDZEM/social-media-analysis/pkg/features"
)

// Linkage selects how the distance between two merged clusters is derived
// from the distances of their parts.
type Linkage string

const (
	LinkageWard     Linkage = "ward"
	LinkageComplete Linkage = "complete"
	LinkageAverage  Linkage = "average"
)

// Agglomerative merges the standardized feature rows bottom-up until k
// clusters remain. Cluster distances are maintained with the Lance-Williams
// recurrence for the chosen linkage, so no distances are recomputed from the
// raw rows after initialization. The procedure has no random state and is
// fully deterministic; ties pick the merge with the smallest cluster ids.
func Agglomerative(m *features.Matrix, k int, linkage Linkage, logger zerolog.Logger) (*Assignment, error) {
	start := time.Now()
	data := m.Standardized
	n, dim := data.Dims()

	if k <= 0 {
		return nil, fmt.Errorf("cluster: k must be positive, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("cluster: k=%d exceeds %d rows", k, n)
	}
	switch linkage {
	case LinkageWard, LinkageComplete, LinkageAverage:
	default:
		return nil, fmt.Errorf("cluster: unknown linkage %q", linkage)
	}

	dist := initialDistances(data, linkage)
	active := make([]bool, n)
	sizes := make([]int, n)
	members := make([][]int, n)
	for i := 0; i < n; i++ {
		active[i] = true
		sizes[i] = 1
		members[i] = []int{i}
	}

	merges := 0
	for remaining := n; remaining > k; remaining-- {
		i, j := closestPair(dist, active, n)
		mergeDistances(dist, active, sizes, linkage, i, j, n)

		members[i] = append(members[i], members[j]...)
		members[j] = nil
		sizes[i] += sizes[j]
		active[j] = false
		merges++
	}

	labels := make([]int, n)
	clusterID := 0
	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		for _, row := range members[i] {
			labels[row] = clusterID
		}
		clusterID++
	}

	centroids, inertia := clusterMeans(data, labels, k)

	logger.Info().
		Int("k", k).
		Str("linkage", string(linkage)).
		Int("rows", n).
		Int("dims", dim).
		Int("merges", merges).
		Float64("inertia", inertia).
		Dur("duration", time.Since(start)).
		Msg("agglomerative clustering completed")

	return &Assignment{
		Method:     "agglomerative-" + string(linkage),
		Labels:     labels,
		Centroids:  centroids,
		Inertia:    inertia,
		Iterations: merges,
		Converged:  true,
		K:          k,
	}, nil
}

// initialDistances builds the singleton-cluster distance matrix: squared
// Euclidean for ward (the recurrence tracks merge cost in that scale),
// plain Euclidean for complete and average.
func initialDistances(data *mat.Dense, linkage Linkage) []float64 {
	n, _ := data.Dims()
	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(data.RawRowView(i), data.RawRowView(j), 2)
			if linkage == LinkageWard {
				d = d * d
			}
			dist[i*n+j] = d
			dist[j*n+i] = d
		}
	}
	return dist
}

// closestPair returns the active pair with the minimal distance, ties broken
// toward the smallest (i, j).
func closestPair(dist []float64, active []bool, n int) (int, int) {
	bestI, bestJ, bestD := -1, -1, math.Inf(1)
	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		for j := i + 1; j < n; j++ {
			if !active[j] {
				continue
			}
			if d := dist[i*n+j]; d < bestD {
				bestD = d
				bestI, bestJ = i, j
			}
		}
	}
	return bestI, bestJ
}

// mergeDistances folds cluster j into cluster i and rewrites row/column i
// with the Lance-Williams update for every other active cluster h:
//
//	d(i+j, h) = a_i*d(i,h) + a_j*d(j,h) + b*d(i,j) + g*|d(i,h) - d(j,h)|
func mergeDistances(dist []float64, active []bool, sizes []int, linkage Linkage, i, j, n int) {
	ni := float64(sizes[i])
	nj := float64(sizes[j])
	dij := dist[i*n+j]

	for h := 0; h < n; h++ {
		if !active[h] || h == i || h == j {
			continue
		}
		dih := dist[i*n+h]
		djh := dist[j*n+h]

		var merged float64
		switch linkage {
		case LinkageWard:
			nh := float64(sizes[h])
			total := ni + nj + nh
			merged = ((ni+nh)*dih + (nj+nh)*djh - nh*dij) / total
		case LinkageComplete:
			merged = math.Max(dih, djh)
		case LinkageAverage:
			merged = (ni*dih + nj*djh) / (ni + nj)
		}
		dist[i*n+h] = merged
		dist[h*n+i] = merged
	}
}

// clusterMeans computes per-cluster centroids and the within-cluster sum of
// squares, so agglomerative results report inertia on the same scale as
// KMeans.
func clusterMeans(data *mat.Dense, labels []int, k int) (*mat.Dense, float64) {
	n, dim := data.Dims()
	centroids := mat.NewDense(k, dim, nil)
	counts := make([]int, k)

	for i := 0; i < n; i++ {
		c := labels[i]
		counts[c]++
		floats.Add(centroids.RawRowView(c), data.RawRowView(i))
	}
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), centroids.RawRowView(c))
		}
	}

	inertia := 0.0
	for i := 0; i < n; i++ {
		inertia += squaredDistance(data.RawRowView(i), centroids.RawRowView(labels[i]))
	}
	return centroids, inertia
}
