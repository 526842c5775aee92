package embed

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/DZIMDZEM/social-media-analysis/pkg/features"
)

// PCA projects the standardized rows onto their first two principal
// components. The projection is deterministic and also records how much of
// the total variance the two kept components explain.
func PCA(m *features.Matrix, logger zerolog.Logger) (*Embedding, error) {
	start := time.Now()
	data := m.Standardized
	n, dim := data.Dims()
	if n < 2 {
		return nil, fmt.Errorf("embed: variance projection needs at least 2 rows, got %d", n)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, fmt.Errorf("embed: principal component decomposition failed")
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	variances := pc.VarsTo(nil)

	keep := 2
	if dim < keep {
		keep = dim
	}

	var projected mat.Dense
	projected.Mul(data, vectors.Slice(0, dim, 0, keep))

	points := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < keep; j++ {
			points.Set(i, j, projected.At(i, j))
		}
	}

	explained := make([]float64, keep)
	if total := floats.Sum(variances); total > 0 {
		for j := 0; j < keep; j++ {
			explained[j] = variances[j] / total
		}
	}

	logger.Info().
		Int("rows", n).
		Int("dims", dim).
		Floats64("explained_variance", explained).
		Dur("duration", time.Since(start)).
		Msg("variance projection completed")

	return &Embedding{
		Method:            MethodVariance,
		Points:            points,
		ExplainedVariance: explained,
		Converged:         true,
	}, nil
}
