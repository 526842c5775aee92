package features

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/DZIMDZEM/social-media-analysis/pkg/centrality"
	"github.com/DZIMDZEM/social-media-analysis/pkg/dataset"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func karateFeatures(t *testing.T, includeAttribute bool) *Matrix {
	t.Helper()
	g, err := dataset.Load()
	if err != nil {
		t.Fatalf("dataset.Load() failed: %v", err)
	}
	table, err := centrality.Compute(g, zerolog.Nop())
	if err != nil {
		t.Fatalf("centrality.Compute() failed: %v", err)
	}
	m, err := Build(g, table, includeAttribute)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return m
}

func TestBuildShape(t *testing.T) {
	m := karateFeatures(t, false)

	if m.NumRows() != 34 || m.NumCols() != 3 {
		t.Errorf("matrix is %dx%d, want 34x3", m.NumRows(), m.NumCols())
	}
	if m.IncludesAttribute {
		t.Errorf("attribute column must be off by default request")
	}
	wantCols := []string{"degree", "betweenness", "closeness"}
	for i, want := range wantCols {
		if m.Columns[i] != want {
			t.Errorf("Columns[%d] = %q, want %q", i, m.Columns[i], want)
		}
	}
	for v, node := range m.Nodes {
		if node != v {
			t.Errorf("Nodes[%d] = %d, rows must follow node id order", v, node)
		}
	}

	// Row 33 carries the known degree centrality 17/33.
	if got := m.Raw.At(33, 0); !almostEqual(got, 17.0/33.0, 1e-12) {
		t.Errorf("Raw[33][degree] = %f, want 17/33", got)
	}
}

func TestBuildWithAttribute(t *testing.T) {
	m := karateFeatures(t, true)

	if m.NumCols() != 4 {
		t.Fatalf("matrix has %d columns, want 4 with the attribute", m.NumCols())
	}
	if m.Columns[3] != AttributeColumn {
		t.Errorf("Columns[3] = %q, want %q", m.Columns[3], AttributeColumn)
	}

	// "Mr. Hi" sorts before "Officer", so the instructor encodes to 0 and
	// the administrator to 1.
	if got := m.Raw.At(0, 3); got != 0 {
		t.Errorf("Raw[0][faction] = %f, want 0", got)
	}
	if got := m.Raw.At(33, 3); got != 1 {
		t.Errorf("Raw[33][faction] = %f, want 1", got)
	}

	// A balanced 0/1 column z-scores to exactly -1 and +1.
	for v := 0; v < m.NumRows(); v++ {
		z := m.Standardized.At(v, 3)
		if !almostEqual(math.Abs(z), 1.0, 1e-9) {
			t.Errorf("Standardized[%d][faction] = %f, want ±1", v, z)
		}
	}
}

func TestStandardization(t *testing.T) {
	m := karateFeatures(t, false)

	column := make([]float64, m.NumRows())
	for j := 0; j < m.NumCols(); j++ {
		mat.Col(column, j, m.Standardized)
		mean := stat.Mean(column, nil)
		variance := stat.MomentAbout(2, column, mean, nil)
		if !almostEqual(mean, 0, 1e-9) {
			t.Errorf("column %q mean = %g, want 0", m.Columns[j], mean)
		}
		if !almostEqual(variance, 1, 1e-9) {
			t.Errorf("column %q population variance = %g, want 1", m.Columns[j], variance)
		}
	}

	// Standardization must not touch the raw values.
	if got := m.Raw.At(33, 0); !almostEqual(got, 17.0/33.0, 1e-12) {
		t.Errorf("Raw was modified by standardization")
	}
}

func TestZeroVarianceColumn(t *testing.T) {
	raw := mat.NewDense(3, 2, []float64{
		1, 5,
		1, 7,
		1, 9,
	})
	standardized := standardize(raw)
	for i := 0; i < 3; i++ {
		if got := standardized.At(i, 0); got != 0 {
			t.Errorf("constant column must standardize to zeros, row %d = %f", i, got)
		}
	}
	if got := standardized.At(0, 1); !almostEqual(got, -math.Sqrt(1.5), 1e-9) {
		t.Errorf("standardized[0][1] = %f, want -sqrt(1.5)", got)
	}
}

func TestEncodeLabels(t *testing.T) {
	encoded, err := EncodeLabels([]string{"B", "A", "B", "C"})
	if err != nil {
		t.Fatalf("EncodeLabels failed: %v", err)
	}
	want := []float64{1, 0, 1, 2}
	for i := range want {
		if encoded[i] != want[i] {
			t.Errorf("encoded[%d] = %f, want %f", i, encoded[i], want[i])
		}
	}

	if _, err := EncodeLabels([]string{"A", ""}); err == nil {
		t.Errorf("missing label should fail")
	}
}

func TestBuildDimensionMismatch(t *testing.T) {
	g, err := dataset.Load()
	if err != nil {
		t.Fatalf("dataset.Load() failed: %v", err)
	}

	table := &centrality.Table{
		NumNodes:    5,
		Degree:      make([]float64, 5),
		Betweenness: make([]float64, 5),
		Closeness:   make([]float64, 5),
	}
	_, err = Build(g, table, false)
	if err == nil {
		t.Fatalf("node count mismatch should fail")
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}
