package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// SummaryStatistics describes the non-missing values of one numeric column.
type SummaryStatistics struct {
	Mean     Float `json:"Mean" yaml:"Mean"`
	Median   Float `json:"Median" yaml:"Median"`
	StdDev   Float `json:"Std Dev" yaml:"Std Dev"`
	Variance Float `json:"Variance" yaml:"Variance"`
	Min      Float `json:"Min" yaml:"Min"`
	Max      Float `json:"Max" yaml:"Max"`
	P25      Float `json:"25th Percentile" yaml:"25th Percentile"`
	P50      Float `json:"50th Percentile" yaml:"50th Percentile"`
	P75      Float `json:"75th Percentile" yaml:"75th Percentile"`
}

// NamedValue is one labelled statistic.
type NamedValue struct {
	Name  string
	Value Float
}

// Values lists the statistics in display order.
func (s SummaryStatistics) Values() []NamedValue {
	return []NamedValue{
		{"Mean", s.Mean},
		{"Median", s.Median},
		{"Std Dev", s.StdDev},
		{"Variance", s.Variance},
		{"Min", s.Min},
		{"Max", s.Max},
		{"25th Percentile", s.P25},
		{"50th Percentile", s.P50},
		{"75th Percentile", s.P75},
	}
}

// Rounded returns a copy with every value rounded to 4 decimal places for display.
func (s SummaryStatistics) Rounded() SummaryStatistics {
	return SummaryStatistics{
		Mean:     round4(s.Mean),
		Median:   round4(s.Median),
		StdDev:   round4(s.StdDev),
		Variance: round4(s.Variance),
		Min:      round4(s.Min),
		Max:      round4(s.Max),
		P25:      round4(s.P25),
		P50:      round4(s.P50),
		P75:      round4(s.P75),
	}
}

func round4(f Float) Float {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return f
	}
	return Float(math.Round(v*1e4) / 1e4)
}

// ColumnStats pairs a column with its summary statistics.
type ColumnStats struct {
	Column string            `json:"column" yaml:"column"`
	Count  int               `json:"count" yaml:"count"`
	Stats  SummaryStatistics `json:"stats" yaml:"stats"`
}

// Summary computes mean, median, population standard deviation and variance, min, max
// and linearly interpolated quartiles over the column's non-missing values.
func Summary(t *Table, name string) (SummaryStatistics, error) {
	c, ok := t.Column(name)
	if !ok {
		return SummaryStatistics{}, unknownColumn(name)
	}
	if !c.Kind.IsNumeric() {
		return SummaryStatistics{}, fmt.Errorf("%w: %q", ErrNotNumeric, name)
	}
	vals := c.Present()
	if len(vals) == 0 {
		return SummaryStatistics{}, &EmptyColumnError{Column: name}
	}
	data := stats.Float64Data(vals)
	mean, err := stats.Mean(data)
	if err != nil {
		return SummaryStatistics{}, fmt.Errorf("mean of %q: %w", name, err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return SummaryStatistics{}, fmt.Errorf("median of %q: %w", name, err)
	}
	std, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return SummaryStatistics{}, fmt.Errorf("std of %q: %w", name, err)
	}
	variance, err := stats.PopulationVariance(data)
	if err != nil {
		return SummaryStatistics{}, fmt.Errorf("variance of %q: %w", name, err)
	}
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return SummaryStatistics{
		Mean:     Float(mean),
		Median:   Float(median),
		StdDev:   Float(std),
		Variance: Float(variance),
		Min:      Float(lo),
		Max:      Float(hi),
		P25:      Float(quantile(sorted, 0.25)),
		P50:      Float(quantile(sorted, 0.50)),
		P75:      Float(quantile(sorted, 0.75)),
	}, nil
}

// quantile interpolates linearly between the closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
