package analysis

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Float is a report value. Non-finite values encode as JSON null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// ColumnType pairs a column with its inferred storage type.
type ColumnType struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Dtype string `json:"dtype" yaml:"dtype"`
}

// Overview is the shape and head of a table.
type Overview struct {
	Name   string       `json:"name,omitempty" yaml:"name,omitempty"`
	Rows   int          `json:"rows" yaml:"rows"`
	Cols   int          `json:"cols" yaml:"cols"`
	Head   [][]any      `json:"head" yaml:"head"`
	Dtypes []ColumnType `json:"dtypes" yaml:"dtypes"`
}

// DefaultHeadRows is the number of head rows shown in an overview.
const DefaultHeadRows = 5

// TableOverview reports row and column counts, the first n rows and per-column types.
func TableOverview(t *Table, n int) Overview {
	if n <= 0 {
		n = DefaultHeadRows
	}
	if n > t.Rows() {
		n = t.Rows()
	}
	ov := Overview{Name: t.Name, Rows: t.Rows(), Cols: t.Cols(), Head: make([][]any, 0, n)}
	for i := 0; i < n; i++ {
		ov.Head = append(ov.Head, t.Row(i))
	}
	for _, c := range t.cols {
		ov.Dtypes = append(ov.Dtypes, ColumnType{Name: c.Name, Kind: c.Kind.String(), Dtype: c.Dtype()})
	}
	return ov
}

// DescribeRow is one numeric column of the describe table.
type DescribeRow struct {
	Column string `json:"column" yaml:"column"`
	Count  int    `json:"count" yaml:"count"`
	Mean   Float  `json:"mean" yaml:"mean"`
	Std    Float  `json:"std" yaml:"std"`
	Min    Float  `json:"min" yaml:"min"`
	P25    Float  `json:"25%" yaml:"25%"`
	P50    Float  `json:"50%" yaml:"50%"`
	P75    Float  `json:"75%" yaml:"75%"`
	Max    Float  `json:"max" yaml:"max"`
}

// Describe summarizes every numeric column: count, mean, sample std, min, quartiles, max.
func Describe(t *Table) []DescribeRow {
	var out []DescribeRow
	for _, c := range t.cols {
		if !c.Kind.IsNumeric() {
			continue
		}
		vals := c.Present()
		row := DescribeRow{Column: c.Name, Count: len(vals)}
		nan := Float(math.NaN())
		row.Mean, row.Std, row.Min, row.P25, row.P50, row.P75, row.Max = nan, nan, nan, nan, nan, nan, nan
		if len(vals) > 0 {
			sorted := append([]float64(nil), vals...)
			sort.Float64s(sorted)
			row.Mean = Float(stat.Mean(vals, nil))
			if len(vals) > 1 {
				row.Std = Float(stat.StdDev(vals, nil))
			}
			row.Min = Float(sorted[0])
			row.P25 = Float(quantile(sorted, 0.25))
			row.P50 = Float(quantile(sorted, 0.50))
			row.P75 = Float(quantile(sorted, 0.75))
			row.Max = Float(sorted[len(sorted)-1])
		}
		out = append(out, row)
	}
	return out
}

// ColumnCount pairs a column name with a count.
type ColumnCount struct {
	Column string `json:"column" yaml:"column"`
	Count  int    `json:"count" yaml:"count"`
}

// MissingCounts maps column names to missing-cell counts, in table order.
type MissingCounts []ColumnCount

// Get returns the missing count for a column (0 when not listed).
func (m MissingCounts) Get(name string) int {
	for _, c := range m {
		if c.Column == name {
			return c.Count
		}
	}
	return 0
}

// Map returns the counts keyed by column name.
func (m MissingCounts) Map() map[string]int {
	out := make(map[string]int, len(m))
	for _, c := range m {
		out[c.Column] = c.Count
	}
	return out
}

// Missing counts missing cells per column, keeping only columns with at least one.
// The result is empty, not nil, when nothing is missing.
func Missing(t *Table) MissingCounts {
	out := MissingCounts{}
	for _, c := range t.cols {
		if n := c.MissingCount(); n > 0 {
			out = append(out, ColumnCount{Column: c.Name, Count: n})
		}
	}
	return out
}

// NumericColumns returns, in table order, the names of integer and float columns.
func NumericColumns(t *Table) []string {
	var out []string
	for _, c := range t.cols {
		if c.Kind.IsNumeric() {
			out = append(out, c.Name)
		}
	}
	return out
}

// CategoricalColumns returns, in table order, the names of text columns.
// An empty result means categorical artifacts are unavailable.
func CategoricalColumns(t *Table) []string {
	var out []string
	for _, c := range t.cols {
		if c.Kind == KindText {
			out = append(out, c.Name)
		}
	}
	return out
}
