package embed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/DZIMDZEM/social-media-analysis/pkg/features"
)

// Optimizer schedule for the neighbor projection. The exaggeration phase
// inflates attractive forces so clusters separate before fine placement.
const (
	earlyExaggeration   = 12.0
	exaggerationIters   = 250
	initialMomentum     = 0.5
	finalMomentum       = 0.8
	minGradNorm         = 1e-7
	minProbability      = 1e-12
	perplexityIters     = 50
	perplexityTolerance = 1e-5
	initialLayoutStdDev = 1e-4
)

// TSNE lays the rows out so that each point keeps the same close neighbors
// it has in feature space. This is the exact (non-approximated) symmetric
// algorithm: pairwise affinities with a per-row precision found by binary
// search on the target perplexity, a principal-component starting layout,
// and gradient descent with momentum and adaptive per-coordinate gains.
//
// With the principal-component start the whole procedure is deterministic;
// the seed is consumed only for the fallback random layout. Converged is
// false when the optimizer used every iteration without the gradient norm
// dropping below its floor, which is reported but not an error.
func TSNE(m *features.Matrix, opts Options, logger zerolog.Logger) (*Embedding, error) {
	start := time.Now()
	data := m.Standardized
	n, dim := data.Dims()

	if n < 3 {
		return nil, fmt.Errorf("embed: neighbor projection needs at least 3 rows, got %d", n)
	}
	if opts.Perplexity <= 0 {
		return nil, fmt.Errorf("embed: perplexity must be positive, got %v", opts.Perplexity)
	}
	if opts.Perplexity >= float64(n) {
		return nil, fmt.Errorf("embed: perplexity %v must be below the row count %d", opts.Perplexity, n)
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 200
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 1000
	}

	affinities := jointProbabilities(data, opts.Perplexity)
	layout := initialLayout(m, opts.Seed)

	// Exaggerate attractive forces for the first phase.
	exaggerated := true
	scaleProbabilities(affinities, earlyExaggeration)

	velocity := make([]float64, 2*n)
	gains := make([]float64, 2*n)
	for i := range gains {
		gains[i] = 1
	}
	gradient := make([]float64, 2*n)
	num := make([]float64, n*n)

	iterations := 0
	converged := false
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		iterations = iter
		sumNum := studentKernel(layout, num, n)
		gradNorm := tsneGradient(affinities, num, sumNum, layout, gradient, n)

		momentum := initialMomentum
		if iter > exaggerationIters {
			momentum = finalMomentum
		}
		for c := 0; c < 2*n; c++ {
			if (gradient[c] > 0) == (velocity[c] > 0) {
				gains[c] *= 0.8
			} else {
				gains[c] += 0.2
			}
			if gains[c] < 0.01 {
				gains[c] = 0.01
			}
			velocity[c] = momentum*velocity[c] - opts.LearningRate*gains[c]*gradient[c]
			layout[c] += velocity[c]
		}
		centerLayout(layout, n)

		if iter == exaggerationIters {
			scaleProbabilities(affinities, 1/earlyExaggeration)
			exaggerated = false
		}
		if !exaggerated && gradNorm < minGradNorm {
			converged = true
			break
		}
	}
	if exaggerated {
		scaleProbabilities(affinities, 1/earlyExaggeration)
	}

	sumNum := studentKernel(layout, num, n)
	kl := klDivergence(affinities, num, sumNum, n)

	if !converged {
		logger.Warn().
			Int("iterations", iterations).
			Float64("kl_divergence", kl).
			Msg("neighbor projection used every iteration without settling")
	}
	logger.Info().
		Int("rows", n).
		Int("dims", dim).
		Float64("perplexity", opts.Perplexity).
		Int("iterations", iterations).
		Float64("kl_divergence", kl).
		Bool("converged", converged).
		Dur("duration", time.Since(start)).
		Msg("neighbor projection completed")

	points := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		points.Set(i, 0, layout[2*i])
		points.Set(i, 1, layout[2*i+1])
	}
	return &Embedding{
		Method:       MethodNeighbor,
		Points:       points,
		KLDivergence: kl,
		Iterations:   iterations,
		Converged:    converged,
	}, nil
}

// jointProbabilities builds the symmetric affinity matrix: per-row
// conditional Gaussians whose precision is tuned by binary search until the
// row's entropy matches log(perplexity), then symmetrized and normalized
// over all pairs.
func jointProbabilities(data *mat.Dense, perplexity float64) []float64 {
	n, _ := data.Dims()
	squared := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := squaredDistanceRows(data, i, j)
			squared[i*n+j] = d
			squared[j*n+i] = d
		}
	}

	conditional := make([]float64, n*n)
	row := make([]float64, n)
	target := math.Log(perplexity)

	for i := 0; i < n; i++ {
		beta := 1.0
		betaMin := math.Inf(-1)
		betaMax := math.Inf(1)
		sum := 0.0

		for attempt := 0; attempt < perplexityIters; attempt++ {
			sum = 0
			weighted := 0.0
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 0
					continue
				}
				p := math.Exp(-beta * squared[i*n+j])
				row[j] = p
				sum += p
				weighted += p * squared[i*n+j]
			}
			if sum == 0 {
				sum = minProbability
			}
			entropy := math.Log(sum) + beta*weighted/sum

			diff := entropy - target
			if math.Abs(diff) < perplexityTolerance {
				break
			}
			if diff > 0 {
				betaMin = beta
				if math.IsInf(betaMax, 1) {
					beta *= 2
				} else {
					beta = (beta + betaMax) / 2
				}
			} else {
				betaMax = beta
				if math.IsInf(betaMin, -1) {
					beta /= 2
				} else {
					beta = (beta + betaMin) / 2
				}
			}
		}
		for j := 0; j < n; j++ {
			conditional[i*n+j] = row[j] / sum
		}
	}

	// Symmetrize and normalize over all ordered pairs.
	joint := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			p := (conditional[i*n+j] + conditional[j*n+i]) / (2 * float64(n))
			if p < minProbability {
				p = minProbability
			}
			joint[i*n+j] = p
		}
	}
	return joint
}

// initialLayout starts from the first two principal components scaled to a
// tiny spread, falling back to a seeded random cloud if the decomposition is
// unavailable.
func initialLayout(m *features.Matrix, seed int64) []float64 {
	n, _ := m.Standardized.Dims()
	layout := make([]float64, 2*n)

	if projection, err := PCA(m, zerolog.Nop()); err == nil {
		mean := 0.0
		for i := 0; i < n; i++ {
			mean += projection.Points.At(i, 0)
		}
		mean /= float64(n)
		variance := 0.0
		for i := 0; i < n; i++ {
			d := projection.Points.At(i, 0) - mean
			variance += d * d
		}
		if sigma := math.Sqrt(variance / float64(n)); sigma > 0 {
			scale := initialLayoutStdDev / sigma
			for i := 0; i < n; i++ {
				layout[2*i] = projection.Points.At(i, 0) * scale
				layout[2*i+1] = projection.Points.At(i, 1) * scale
			}
			return layout
		}
	}

	rng := rand.New(rand.NewSource(seed))
	for c := range layout {
		layout[c] = rng.NormFloat64() * initialLayoutStdDev
	}
	return layout
}

// studentKernel fills num with the unnormalized Student-t affinities
// 1/(1+d^2) of the current layout and returns their total over ordered
// pairs.
func studentKernel(layout, num []float64, n int) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		num[i*n+i] = 0
		for j := i + 1; j < n; j++ {
			dx := layout[2*i] - layout[2*j]
			dy := layout[2*i+1] - layout[2*j+1]
			k := 1 / (1 + dx*dx + dy*dy)
			num[i*n+j] = k
			num[j*n+i] = k
			sum += 2 * k
		}
	}
	return sum
}

// tsneGradient writes the Kullback-Leibler gradient for every coordinate
// and returns the gradient's Euclidean norm.
func tsneGradient(affinities, num []float64, sumNum float64, layout, gradient []float64, n int) float64 {
	norm := 0.0
	for i := 0; i < n; i++ {
		gx, gy := 0.0, 0.0
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			q := num[i*n+j] / sumNum
			if q < minProbability {
				q = minProbability
			}
			force := 4 * (affinities[i*n+j] - q) * num[i*n+j]
			gx += force * (layout[2*i] - layout[2*j])
			gy += force * (layout[2*i+1] - layout[2*j+1])
		}
		gradient[2*i] = gx
		gradient[2*i+1] = gy
		norm += gx*gx + gy*gy
	}
	return math.Sqrt(norm)
}

// klDivergence measures how well the layout's pair distribution matches the
// feature-space affinities; zero means a perfect match.
func klDivergence(affinities, num []float64, sumNum float64, n int) float64 {
	kl := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			p := affinities[i*n+j]
			q := num[i*n+j] / sumNum
			if q < minProbability {
				q = minProbability
			}
			kl += p * math.Log(p/q)
		}
	}
	return kl
}

// scaleProbabilities multiplies every affinity in place by factor.
func scaleProbabilities(p []float64, factor float64) {
	for i := range p {
		p[i] *= factor
	}
}

func centerLayout(layout []float64, n int) {
	meanX, meanY := 0.0, 0.0
	for i := 0; i < n; i++ {
		meanX += layout[2*i]
		meanY += layout[2*i+1]
	}
	meanX /= float64(n)
	meanY /= float64(n)
	for i := 0; i < n; i++ {
		layout[2*i] -= meanX
		layout[2*i+1] -= meanY
	}
}

func squaredDistanceRows(data *mat.Dense, i, j int) float64 {
	a := data.RawRowView(i)
	b := data.RawRowView(j)
	total := 0.0
	for c := range a {
		d := a[c] - b[c]
		total += d * d
	}
	return total
}
