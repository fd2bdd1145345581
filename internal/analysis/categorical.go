package analysis

import (
	"fmt"
	"sort"
)

// MissingLabel is the bucket name used when missing cells are counted as a category.
const MissingLabel = "(missing)"

// CategoryCount is one distinct value and its occurrences.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// CategoricalFrequency counts the present values of a text column.
// Counts are ordered by descending count, ties in first-seen order.
type CategoricalFrequency struct {
	Column  string          `json:"column" yaml:"column"`
	Counts  []CategoryCount `json:"counts" yaml:"counts"`
	Missing int             `json:"missing" yaml:"missing"`
}

// Get returns the count for a value (0 when absent).
func (f *CategoricalFrequency) Get(value string) int {
	for _, c := range f.Counts {
		if c.Value == value {
			return c.Count
		}
	}
	return 0
}

// WithMissing returns the counts with a trailing MissingLabel bucket when any cell is missing.
func (f *CategoricalFrequency) WithMissing() []CategoryCount {
	out := append([]CategoryCount(nil), f.Counts...)
	if f.Missing > 0 {
		out = append(out, CategoryCount{Value: MissingLabel, Count: f.Missing})
	}
	return out
}

// CategoricalCounts counts occurrences of each distinct present value of a text column.
func CategoricalCounts(t *Table, name string) (*CategoricalFrequency, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, unknownColumn(name)
	}
	if c.Kind != KindText {
		return nil, fmt.Errorf("%w: %q", ErrNotCategorical, name)
	}
	freq := &CategoricalFrequency{Column: name, Counts: []CategoryCount{}}
	pos := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			freq.Missing++
			continue
		}
		v := c.Text(i)
		if j, ok := pos[v]; ok {
			freq.Counts[j].Count++
			continue
		}
		pos[v] = len(freq.Counts)
		freq.Counts = append(freq.Counts, CategoryCount{Value: v, Count: 1})
	}
	sort.SliceStable(freq.Counts, func(i, j int) bool {
		return freq.Counts[i].Count > freq.Counts[j].Count
	})
	return freq, nil
}
