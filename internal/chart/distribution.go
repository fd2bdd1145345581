package chart

import (
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
)

// DistributionPlot is a count histogram of one column with its KDE curve scaled to counts.
type DistributionPlot struct {
	Dist *analysis.Distribution
	Size Size
}

// NewDistributionPlot builds a figure for d.
func NewDistributionPlot(d *analysis.Distribution, size Size) *DistributionPlot {
	return &DistributionPlot{Dist: d, Size: size}
}

func (p *DistributionPlot) Render(w io.Writer, format Format) error {
	if p.Dist == nil || len(p.Dist.Bins) == 0 {
		return ErrNoData
	}
	rp, err := format.provider()
	if err != nil {
		return err
	}
	d := p.Dist
	lo, hi := d.Bins[0].Lo, d.Bins[len(d.Bins)-1].Hi
	ymax := 0.0
	for _, b := range d.Bins {
		if float64(b.Count) > ymax {
			ymax = float64(b.Count)
		}
	}
	series := []gochart.Series{
		stepSeries("count", d.Bins, func(b analysis.HistogramBin) float64 { return float64(b.Count) }),
	}
	if len(d.KDE) > 0 {
		// bins share one width, so density * n * width is on the count scale
		scale := float64(d.N) * (d.Bins[0].Hi - d.Bins[0].Lo)
		xs := make([]float64, len(d.KDE))
		ys := make([]float64, len(d.KDE))
		for i, pt := range d.KDE {
			xs[i], ys[i] = pt.X, pt.Y*scale
			if ys[i] > ymax {
				ymax = ys[i]
			}
		}
		lo, hi = min(lo, xs[0]), max(hi, xs[len(xs)-1])
		series = append(series, gochart.ContinuousSeries{
			Name:    "kde",
			Style:   gochart.Style{StrokeColor: colorDensity, StrokeWidth: 2},
			XValues: xs,
			YValues: ys,
		})
	}
	if ymax <= 0 {
		ymax = 1
	}
	size := p.Size.orDefault()
	c := gochart.Chart{
		Title:      "Distribution and KDE of " + d.Column,
		Width:      size.Width,
		Height:     size.Height,
		Background: titlePadding(),
		XAxis:      gochart.XAxis{Name: d.Column, Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		YAxis:      gochart.YAxis{Name: "Count", Range: &gochart.ContinuousRange{Min: 0, Max: ymax * 1.1}},
		Series:     series,
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	return c.Render(rp, w)
}
