// Package cluster groups nodes by their feature vectors: an iterative
// centroid algorithm (KMeans) and a deterministic agglomerative alternative.
// Both consume the standardized feature matrix.
package cluster

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/DZIMDZEM/social-media-analysis/pkg/features"
)

// Options fixes the KMeans run. The seed is explicit because the algorithm
// converges to a local optimum of the within-cluster sum of squares and a
// different seed can change the assignment.
type Options struct {
	K             int     `json:"k"`
	Seed          int64   `json:"seed"`
	Restarts      int     `json:"restarts"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
}

// DefaultOptions returns the reporting configuration: 2 clusters, 10 seeded
// restarts with the best inertia kept.
func DefaultOptions() Options {
	return Options{
		K:             2,
		Seed:          42,
		Restarts:      10,
		MaxIterations: 300,
		Tolerance:     1e-4,
	}
}

// Assignment maps each node (by row order) to a cluster id. Converged is
// false when the winning run hit the iteration cap before stabilizing; that
// is reported as a warning, never as a failure.
type Assignment struct {
	Method     string     `json:"method"`
	Labels     []int      `json:"labels"`
	Centroids  *mat.Dense `json:"-"`
	Inertia    float64    `json:"inertia"`
	Iterations int        `json:"iterations"`
	Converged  bool       `json:"converged"`
	K          int        `json:"k"`
}

// KMeans clusters the standardized feature rows into opts.K groups with
// Lloyd iterations from k-means++ starts. It runs opts.Restarts independent
// seeded starts and keeps the one with the lowest inertia. The same seed on
// the same matrix always reproduces the same assignment.
func KMeans(m *features.Matrix, opts Options, logger zerolog.Logger) (*Assignment, error) {
	start := time.Now()
	data := m.Standardized
	n, dim := data.Dims()

	if opts.K <= 0 {
		return nil, fmt.Errorf("cluster: k must be positive, got %d", opts.K)
	}
	if opts.K > n {
		return nil, fmt.Errorf("cluster: k=%d exceeds %d rows", opts.K, n)
	}
	if opts.Restarts <= 0 {
		opts.Restarts = 1
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 300
	}
	if opts.Tolerance < 0 {
		opts.Tolerance = 0
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	best := &Assignment{Method: "kmeans", K: opts.K, Inertia: math.Inf(1)}

	for restart := 0; restart < opts.Restarts; restart++ {
		centroids := seedCentroids(data, opts.K, rng)
		labels := make([]int, n)
		iterations := 0
		converged := false

		for iterations < opts.MaxIterations {
			iterations++
			assignRows(data, centroids, labels)
			shift := updateCentroids(data, labels, centroids)
			if shift <= opts.Tolerance {
				converged = true
				break
			}
		}
		assignRows(data, centroids, labels)
		inertia := totalInertia(data, centroids, labels)

		if inertia < best.Inertia {
			best.Labels = labels
			best.Centroids = mat.DenseCopyOf(centroids)
			best.Inertia = inertia
			best.Iterations = iterations
			best.Converged = converged
		}
	}

	if !best.Converged {
		logger.Warn().
			Int("max_iterations", opts.MaxIterations).
			Float64("inertia", best.Inertia).
			Msg("KMeans hit the iteration cap without stabilizing")
	}
	logger.Info().
		Int("k", opts.K).
		Int64("seed", opts.Seed).
		Int("rows", n).
		Int("dims", dim).
		Float64("inertia", best.Inertia).
		Bool("converged", best.Converged).
		Dur("duration", time.Since(start)).
		Msg("KMeans clustering completed")

	return best, nil
}

// seedCentroids picks k starting centroids with k-means++ weighting: the
// first uniformly, each next proportional to squared distance from the
// nearest centroid chosen so far.
func seedCentroids(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, dim := data.Dims()
	centroids := mat.NewDense(k, dim, nil)

	first := rng.Intn(n)
	centroids.SetRow(0, data.RawRowView(first))

	distances := make([]float64, n)
	for i := 0; i < n; i++ {
		distances[i] = squaredDistance(data.RawRowView(i), centroids.RawRowView(0))
	}

	for c := 1; c < k; c++ {
		total := floats.Sum(distances)
		var next int
		if total == 0 {
			next = rng.Intn(n)
		} else {
			target := rng.Float64() * total
			cumulative := 0.0
			next = n - 1
			for i, d := range distances {
				cumulative += d
				if cumulative >= target {
					next = i
					break
				}
			}
		}
		centroids.SetRow(c, data.RawRowView(next))

		for i := 0; i < n; i++ {
			if d := squaredDistance(data.RawRowView(i), centroids.RawRowView(c)); d < distances[i] {
				distances[i] = d
			}
		}
	}
	return centroids
}

// assignRows labels every row with its nearest centroid, ties to the lowest
// cluster id.
func assignRows(data, centroids *mat.Dense, labels []int) {
	n, _ := data.Dims()
	k, _ := centroids.Dims()
	for i := 0; i < n; i++ {
		bestCluster, bestDist := 0, math.Inf(1)
		for c := 0; c < k; c++ {
			if d := squaredDistance(data.RawRowView(i), centroids.RawRowView(c)); d < bestDist {
				bestDist = d
				bestCluster = c
			}
		}
		labels[i] = bestCluster
	}
}

// updateCentroids recomputes each centroid as the mean of its rows and
// returns the total squared centroid shift. An emptied cluster is re-seeded
// with the row farthest from its current centroid.
func updateCentroids(data *mat.Dense, labels []int, centroids *mat.Dense) float64 {
	n, dim := data.Dims()
	k, _ := centroids.Dims()

	sums := mat.NewDense(k, dim, nil)
	counts := make([]int, k)
	for i := 0; i < n; i++ {
		c := labels[i]
		counts[c]++
		row := data.RawRowView(i)
		dst := sums.RawRowView(c)
		floats.Add(dst, row)
	}

	shift := 0.0
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			fallback := farthestRow(data, labels, centroids)
			shift += squaredDistance(centroids.RawRowView(c), data.RawRowView(fallback))
			centroids.SetRow(c, data.RawRowView(fallback))
			labels[fallback] = c
			continue
		}
		mean := sums.RawRowView(c)
		floats.Scale(1/float64(counts[c]), mean)
		shift += squaredDistance(centroids.RawRowView(c), mean)
		centroids.SetRow(c, mean)
	}
	return shift
}

// farthestRow finds the row with the greatest distance to its assigned
// centroid, ties to the lowest row index.
func farthestRow(data *mat.Dense, labels []int, centroids *mat.Dense) int {
	n, _ := data.Dims()
	bestRow, bestDist := 0, -1.0
	for i := 0; i < n; i++ {
		if d := squaredDistance(data.RawRowView(i), centroids.RawRowView(labels[i])); d > bestDist {
			bestDist = d
			bestRow = i
		}
	}
	return bestRow
}

func totalInertia(data, centroids *mat.Dense, labels []int) float64 {
	n, _ := data.Dims()
	inertia := 0.0
	for i := 0; i < n; i++ {
		inertia += squaredDistance(data.RawRowView(i), centroids.RawRowView(labels[i]))
	}
	return inertia
}

func squaredDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}
