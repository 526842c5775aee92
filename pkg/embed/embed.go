// Package embed projects the feature matrix into two dimensions for the
// report's coordinate listings. Three projections are available: a variance
// projection (principal components), a distance projection (classical
// multidimensional scaling), and a neighbor projection (t-SNE). All of them
// read the standardized matrix and none feeds back into any other result.
package embed

import (
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/DZIMDZEM/social-media-analysis/pkg/features"
)

// Method names accepted by Embed.
const (
	MethodVariance = "variance"
	MethodDistance = "distance"
	MethodNeighbor = "neighbor"
)

// Methods lists the supported projections in report order.
var Methods = []string{MethodVariance, MethodDistance, MethodNeighbor}

// Options tunes the neighbor projection. The variance and distance
// projections are deterministic and ignore every field.
type Options struct {
	Seed          int64   `json:"seed"`
	Perplexity    float64 `json:"perplexity"`
	LearningRate  float64 `json:"learning_rate"`
	MaxIterations int     `json:"max_iterations"`
}

// DefaultOptions matches the reporting configuration: perplexity 5 suits a
// 34-node graph, the remaining values are the usual t-SNE defaults.
func DefaultOptions() Options {
	return Options{
		Seed:          42,
		Perplexity:    5,
		LearningRate:  200,
		MaxIterations: 1000,
	}
}

// Embedding holds the n x 2 coordinates plus per-method fit diagnostics.
// Only the fields for the producing method are populated: explained variance
// for the variance projection, stress for the distance projection, KL
// divergence for the neighbor projection.
type Embedding struct {
	Method              string     `json:"method"`
	Points              *mat.Dense `json:"-"`
	ExplainedVariance   []float64  `json:"explained_variance,omitempty"`
	Stress              float64    `json:"stress,omitempty"`
	KruskalStress       float64    `json:"kruskal_stress,omitempty"`
	PositiveEigenvalues int        `json:"positive_eigenvalues,omitempty"`
	KLDivergence        float64    `json:"kl_divergence,omitempty"`
	Iterations          int        `json:"iterations,omitempty"`
	Converged           bool       `json:"converged"`
}

// Point returns the coordinates of row i.
func (e *Embedding) Point(i int) (x, y float64) {
	return e.Points.At(i, 0), e.Points.At(i, 1)
}

// Embed dispatches to the projection named by method.
func Embed(m *features.Matrix, method string, opts Options, logger zerolog.Logger) (*Embedding, error) {
	switch method {
	case MethodVariance:
		return PCA(m, logger)
	case MethodDistance:
		return MDS(m, logger)
	case MethodNeighbor:
		return TSNE(m, opts, logger)
	default:
		return nil, fmt.Errorf("embed: unknown method %q (want one of %v)", method, Methods)
	}
}
