package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultKDEPoints is the number of grid points a density curve is evaluated on.
const DefaultKDEPoints = 200

const maxBins = 512

// HistogramBin is a half-open interval [Lo, Hi) (the last bin is closed).
type HistogramBin struct {
	Lo      float64 `json:"lo" yaml:"lo"`
	Hi      float64 `json:"hi" yaml:"hi"`
	Count   int     `json:"count" yaml:"count"`
	Density float64 `json:"density" yaml:"density"`
}

// DensityPoint is one sample of a density curve.
type DensityPoint struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distribution is the histogram and Gaussian KDE of one numeric column.
type Distribution struct {
	Column    string         `json:"column" yaml:"column"`
	N         int            `json:"n" yaml:"n"`
	Bins      []HistogramBin `json:"bins" yaml:"bins"`
	Bandwidth float64        `json:"bandwidth" yaml:"bandwidth"`
	KDE       []DensityPoint `json:"kde,omitempty" yaml:"kde,omitempty"`
}

// ColumnDistribution bins the finite non-missing values of a numeric column and, when the
// values vary, evaluates a Gaussian KDE with Scott's bandwidth on kdePoints points.
func ColumnDistribution(t *Table, name string, kdePoints int) (*Distribution, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, unknownColumn(name)
	}
	if !c.Kind.IsNumeric() {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
	}
	var vals []float64
	for _, v := range c.Present() {
		if !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil, &EmptyColumnError{Column: name}
	}
	if kdePoints <= 0 {
		kdePoints = DefaultKDEPoints
	}
	sort.Float64s(vals)
	d := &Distribution{Column: name, N: len(vals), Bins: histogram(vals)}
	if len(vals) > 1 && !constant(vals) {
		d.Bandwidth = scottBandwidth(vals)
		d.KDE = gaussianKDE(vals, d.Bandwidth, kdePoints)
	}
	return d, nil
}

// binCount follows the "auto" rule: the smaller bin width of Sturges and Freedman-Diaconis.
func binCount(sorted []float64) int {
	n := float64(len(sorted))
	span := sorted[len(sorted)-1] - sorted[0]
	if span == 0 {
		return 1
	}
	sturges := span / (math.Log2(n) + 1)
	width := sturges
	iqr := quantile(sorted, 0.75) - quantile(sorted, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 && fd < width {
		width = fd
	}
	bins := int(math.Ceil(span / width))
	if bins < 1 {
		bins = 1
	}
	if bins > maxBins {
		bins = maxBins
	}
	return bins
}

// Histogram bins the finite values of vals with the same rule as ColumnDistribution.
// It returns nil when no finite value remains.
func Histogram(vals []float64) []HistogramBin {
	sorted := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Float64s(sorted)
	return histogram(sorted)
}

func histogram(sorted []float64) []HistogramBin {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	bins := binCount(sorted)
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram needs the last divider strictly above the maximum.
	counting := append([]float64(nil), dividers...)
	counting[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, counting, sorted, nil)

	n := float64(len(sorted))
	out := make([]HistogramBin, bins)
	for i := range out {
		width := dividers[i+1] - dividers[i]
		out[i] = HistogramBin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
		if width > 0 {
			out[i].Density = counts[i] / (n * width)
		}
	}
	return out
}

func scottBandwidth(vals []float64) float64 {
	return stat.StdDev(vals, nil) * math.Pow(float64(len(vals)), -0.2)
}

// gaussianKDE evaluates the density on a grid that extends three bandwidths past the data.
func gaussianKDE(sorted []float64, bw float64, points int) []DensityPoint {
	if bw <= 0 || points < 2 {
		return nil
	}
	grid := make([]float64, points)
	floats.Span(grid, sorted[0]-3*bw, sorted[len(sorted)-1]+3*bw)
	n := float64(len(sorted))
	out := make([]DensityPoint, points)
	for i, x := range grid {
		var sum float64
		for _, v := range sorted {
			sum += distuv.UnitNormal.Prob((x - v) / bw)
		}
		out[i] = DensityPoint{X: x, Y: sum / (n * bw)}
	}
	return out
}
