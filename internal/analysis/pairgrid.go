package analysis

import "fmt"

// PairGrid holds the rows that are complete across a set of numeric columns,
// the input of a scatter matrix.
type PairGrid struct {
	Columns []string  `json:"columns" yaml:"columns"`
	Rows    int       `json:"rows" yaml:"rows"`
	Values  [][]Float `json:"values" yaml:"values"` // Values[col][row]
}

// Series returns the values of one column as float64.
func (g *PairGrid) Series(i int) []float64 {
	out := make([]float64, len(g.Values[i]))
	for j, v := range g.Values[i] {
		out[j] = float64(v)
	}
	return out
}

// Pairs builds the scatter-matrix data for two or more numeric columns,
// dropping every row with a missing cell in any of them.
func Pairs(t *Table, names []string) (*PairGrid, error) {
	if len(names) < 2 {
		return nil, &InsufficientDataError{Artifact: "pairplot", Have: len(names), Need: 2}
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
	g := &PairGrid{Columns: append([]string(nil), names...), Values: make([][]Float, len(cols))}
	for r := 0; r < t.Rows(); r++ {
		complete := true
		for _, c := range cols {
			if c.IsMissing(r) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for i, c := range cols {
			v, _ := c.Float(r)
			g.Values[i] = append(g.Values[i], Float(v))
		}
		g.Rows++
	}
	return g, nil
}
