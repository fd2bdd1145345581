package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string  `json:"columns" yaml:"columns"`
	Values  [][]Float `json:"values" yaml:"values"` // row-major, Values[i][j]
}

// At returns the coefficient for a pair of columns.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return float64(m.Values[ia][ib]), true
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Pairs lists the upper triangle, skipping undefined coefficients.
func (m *CorrMatrix) Pairs() []PairCorr {
	var out []PairCorr
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			r := float64(m.Values[i][j])
			if math.IsNaN(r) {
				continue
			}
			out = append(out, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	return out
}

// Correlation computes pairwise Pearson correlations among the given numeric columns.
// Each pair uses the rows where both columns are present. The diagonal is 1, except for
// columns with zero variance, which are NaN against every column including themselves.
func Correlation(t *Table, names []string) (*CorrMatrix, error) {
	if len(names) < 2 {
		return nil, &InsufficientDataError{Artifact: "correlation", Have: len(names), Need: 2}
	}
	cols := make([]*Column, len(names))
	for i, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, unknownColumn(name)
		}
		if !c.Kind.IsNumeric() {
			return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
		}
		cols[i] = c
	}
	n := len(cols)
	mat := make([][]Float, n)
	for i := range mat {
		mat[i] = make([]Float, n)
	}
	for a := 0; a < n; a++ {
		mat[a][a] = Float(selfCorrelation(cols[a]))
		for b := a + 1; b < n; b++ {
			r := pairwisePearson(cols[a], cols[b])
			mat[a][b] = Float(r)
			mat[b][a] = Float(r)
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), names...), Values: mat}, nil
}

func selfCorrelation(c *Column) float64 {
	vals := c.Present()
	if len(vals) < 2 || constant(vals) {
		return math.NaN()
	}
	return 1
}

func pairwisePearson(x, y *Column) float64 {
	var xs, ys []float64
	for i := 0; i < x.Len(); i++ {
		xv, okx := x.Float(i)
		yv, oky := y.Float(i)
		if !okx || !oky {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func constant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}
