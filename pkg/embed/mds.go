package embed

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/mds"

	"github.com/DZIMDZEM/social-media-analysis/pkg/features"
)

// MDS lays the rows out so that plane distances approximate the pairwise
// Euclidean distances between standardized feature vectors, via classical
// Torgerson scaling. Deterministic; the fit quality is reported as raw
// stress and Kruskal's normalized stress.
func MDS(m *features.Matrix, logger zerolog.Logger) (*Embedding, error) {
	start := time.Now()
	data := m.Standardized
	n, _ := data.Dims()
	if n < 2 {
		return nil, fmt.Errorf("embed: distance projection needs at least 2 rows, got %d", n)
	}

	distances := pairwiseDistances(data)

	var coordinates mat.Dense
	var eigenvals []float64
	k, err := mds.TorgersonScaling(&coordinates, eigenvals, distances)
	if err != nil {
		return nil, fmt.Errorf("embed: Torgerson scaling failed: %v", err)
	}
	if k == 0 {
		return nil, fmt.Errorf("embed: no positive eigenvalues in distance projection")
	}

	points := planeCoordinates(&coordinates)
	rawStress, kruskal := stressStatistics(distances, points)

	logger.Info().
		Int("rows", n).
		Int("positive_eigenvalues", k).
		Float64("stress", rawStress).
		Float64("kruskal_stress", kruskal).
		Dur("duration", time.Since(start)).
		Msg("distance projection completed")

	return &Embedding{
		Method:              MethodDistance,
		Points:              points,
		Stress:              rawStress,
		KruskalStress:       kruskal,
		PositiveEigenvalues: k,
		Converged:           true,
	}, nil
}

// pairwiseDistances builds the symmetric Euclidean distance matrix over the
// rows of data.
func pairwiseDistances(data *mat.Dense) *mat.SymDense {
	n, _ := data.Dims()
	distances := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(data.RawRowView(i), data.RawRowView(j), 2)
			distances.SetSym(i, j, d)
		}
	}
	return distances
}

// planeCoordinates keeps the first two scaling dimensions, padding with a
// zero column when the scaling produced fewer.
func planeCoordinates(coordinates *mat.Dense) *mat.Dense {
	rows, cols := coordinates.Dims()
	points := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols && j < 2; j++ {
			points.Set(i, j, coordinates.At(i, j))
		}
	}
	return points
}

// stressStatistics compares the input distances against the plane distances:
// raw stress is the sum of squared discrepancies, Kruskal's stress-1 is
// sqrt(raw / sum of squared input distances).
func stressStatistics(distances *mat.SymDense, points *mat.Dense) (raw, kruskal float64) {
	n, _ := distances.Dims()
	sumSquared := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			target := distances.At(i, j)
			actual := floats.Distance(points.RawRowView(i), points.RawRowView(j), 2)
			raw += (target - actual) * (target - actual)
			sumSquared += target * target
		}
	}
	if sumSquared > 0 {
		kruskal = math.Sqrt(raw / sumSquared)
	}
	return raw, kruskal
}
