package centrality

import (
	"fmt"
	"sort"
)

// Measure names one column of the centrality table.
type Measure string

const (
	MeasureDegree      Measure = "degree"
	MeasureBetweenness Measure = "betweenness"
	MeasureCloseness   Measure = "closeness"
)

// Measures lists the table columns in report order.
var Measures = []Measure{MeasureDegree, MeasureBetweenness, MeasureCloseness}

// Ranking is one entry of a top-k list.
type Ranking struct {
	Node  int     `json:"node"`
	Value float64 `json:"value"`
}

// Values returns the column for a measure. The slice is owned by the table.
func (t *Table) Values(measure Measure) ([]float64, error) {
	switch measure {
	case MeasureDegree:
		return t.Degree, nil
	case MeasureBetweenness:
		return t.Betweenness, nil
	case MeasureCloseness:
		return t.Closeness, nil
	default:
		return nil, fmt.Errorf("centrality: unknown measure %q", measure)
	}
}

// TopK returns the k nodes with the largest value for a measure, descending.
// Ties are broken by ascending node id so rankings are deterministic. k is
// clamped to the node count; k <= 0 yields an empty list.
func (t *Table) TopK(measure Measure, k int) ([]Ranking, error) {
	values, err := t.Values(measure)
	if err != nil {
		return nil, err
	}
	return Rank(values, k), nil
}

// Rank orders arbitrary per-node values descending with ties broken by
// ascending node id, keeping the top k. The same clamping rules as TopK
// apply.
func Rank(values []float64, k int) []Ranking {
	if k <= 0 {
		return []Ranking{}
	}
	if k > len(values) {
		k = len(values)
	}

	rankings := make([]Ranking, len(values))
	for v, value := range values {
		rankings[v] = Ranking{Node: v, Value: value}
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Value != rankings[j].Value {
			return rankings[i].Value > rankings[j].Value
		}
		return rankings[i].Node < rankings[j].Node
	})
	return rankings[:k]
}

// MinMaxScale maps values linearly onto [0, 1]. A constant input maps to all
// zeros. The input slice is not modified.
func MinMaxScale(values []float64) []float64 {
	scaled := make([]float64, len(values))
	if len(values) == 0 {
		return scaled
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return scaled
	}
	for i, v := range values {
		scaled[i] = (v - min) / (max - min)
	}
	return scaled
}
