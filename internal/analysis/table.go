package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindFloat Kind = iota
	KindInteger
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "text"
	}
}

// IsNumeric reports whether the kind participates in numeric analysis.
func (k Kind) IsNumeric() bool { return k == KindInteger || k == KindFloat }

// Column is a named, typed sequence of cells. All columns of a Table share one length.
type Column struct {
	Name string
	Kind Kind

	raw     []string
	missing []bool
	nums    []float64 // nil for text columns; NaN at missing positions
}

// Len returns the number of cells, missing ones included.
func (c *Column) Len() int { return len(c.raw) }

// IsMissing reports whether row i is a missing cell.
func (c *Column) IsMissing(i int) bool { return c.missing[i] }

// Text returns the trimmed cell text of row i ("" when missing).
func (c *Column) Text(i int) string { return c.raw[i] }

// Float returns the numeric value of row i. ok is false for text columns and missing cells.
func (c *Column) Float(i int) (v float64, ok bool) {
	if c.nums == nil || c.missing[i] {
		return 0, false
	}
	return c.nums[i], true
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.missing {
		if m {
			n++
		}
	}
	return n
}

// Present returns the non-missing numeric values in row order. Nil for text columns.
func (c *Column) Present() []float64 {
	if c.nums == nil {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if !c.missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Dtype names the storage type the way dataframe tooling prints it.
func (c *Column) Dtype() string {
	switch c.Kind {
	case KindInteger:
		return "int64"
	case KindFloat:
		return "float64"
	default:
		return "object"
	}
}

// Value returns row i as a plain value: int64, float64, string, or nil when missing.
func (c *Column) Value(i int) any {
	if c.missing[i] {
		return nil
	}
	switch c.Kind {
	case KindInteger:
		return int64(c.nums[i])
	case KindFloat:
		return c.nums[i]
	default:
		return c.raw[i]
	}
}

// Table is an in-memory dataset: an ordered set of equally long columns.
type Table struct {
	Name string
	// TotalRows counts data rows seen in the input, including any dropped by MaxRows.
	TotalRows int

	cols  []*Column
	index map[string]int
	rows  int
}

// Rows returns the number of data rows held.
func (t *Table) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.cols) }

// Columns returns the columns in table order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Row returns row i positionally as plain values (see Column.Value).
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Value(i)
	}
	return out
}

// NewTable builds a table from a header and string records, applying missing-cell
// detection and type inference. Records shorter than the header are padded with
// missing cells; longer records are rejected.
func NewTable(name string, header []string, records [][]string, opt Options) (*Table, error) {
	if len(header) == 0 {
		return nil, &ParseError{Line: 1, Msg: "no columns to parse from input"}
	}
	ncol := len(header)
	names := columnNames(header)
	t := &Table{Name: name, index: make(map[string]int, ncol)}
	t.cols = make([]*Column, ncol)
	for j := range names {
		t.cols[j] = &Column{Name: names[j]}
		t.index[names[j]] = j
	}
	t.TotalRows = len(records)
	keep := len(records)
	if opt.MaxRows > 0 && keep > opt.MaxRows {
		keep = opt.MaxRows
	}
	for j := range t.cols {
		t.cols[j].raw = make([]string, keep)
		t.cols[j].missing = make([]bool, keep)
	}
	for i := 0; i < keep; i++ {
		rec := records[i]
		if len(rec) > ncol {
			return nil, &ParseError{Line: i + 2, Msg: fmt.Sprintf("expected %d fields, saw %d", ncol, len(rec))}
		}
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			if isMissingToken(v) {
				t.cols[j].missing[i] = true
				continue
			}
			t.cols[j].raw[i] = v
		}
	}
	t.rows = keep
	for _, c := range t.cols {
		inferColumn(c, opt)
	}
	return t, nil
}

// columnNames trims header cells, names blanks "Unnamed: i", and suffixes duplicates.
func columnNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[n]; dup {
			base := n
			k := seen[base]
			for {
				k++
				cand := fmt.Sprintf("%s.%d", base, k)
				if _, taken := seen[cand]; !taken {
					n = cand
					break
				}
			}
			seen[base] = k
		}
		seen[n] = 0
		out[i] = n
	}
	return out
}

var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// isMissingToken matches the tokens exactly; other spellings such as "NAN" are text.
func isMissingToken(s string) bool {
	_, ok := missingTokens[s]
	return ok
}

// inferColumn applies the inference rule: every non-missing value must parse as a number
// for the column to be numeric; Integer additionally requires no missing cells and
// integral literals. Anything else is Text.
func inferColumn(c *Column, opt Options) {
	nums := make([]float64, len(c.raw))
	allInt := true
	anyMissing := false
	for i, s := range c.raw {
		if c.missing[i] {
			nums[i] = math.NaN()
			anyMissing = true
			continue
		}
		x, ok := parseNumeric(s, opt)
		if !ok {
			c.Kind = KindText
			c.nums = nil
			return
		}
		nums[i] = x
		if allInt && !isIntegerLiteral(s, opt) {
			allInt = false
		}
	}
	c.nums = nums
	if allInt && !anyMissing && len(c.raw) > 0 {
		c.Kind = KindInteger
		return
	}
	c.Kind = KindFloat
}

func isIntegerLiteral(s string, opt Options) bool {
	raw := normalizeNumeric(s, opt)
	_, err := strconv.ParseInt(raw, 10, 64)
	return err == nil
}
