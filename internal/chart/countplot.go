package chart

import (
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
)

// MaxBars caps the bars of a count plot; the remaining categories fold into "(other)".
const MaxBars = 30

// CountPlot is a bar chart of category frequencies.
type CountPlot struct {
	Freq *analysis.CategoricalFrequency
	// IncludeMissing adds a bar for missing cells.
	IncludeMissing bool
	Size           Size
}

// NewCountPlot builds a figure for f.
func NewCountPlot(f *analysis.CategoricalFrequency, size Size) *CountPlot {
	return &CountPlot{Freq: f, Size: size}
}

func (p *CountPlot) bars() []gochart.Value {
	counts := p.Freq.Counts
	if p.IncludeMissing {
		counts = p.Freq.WithMissing()
	}
	style := gochart.Style{FillColor: colorBars, StrokeColor: colorBars, StrokeWidth: 1}
	var bars []gochart.Value
	other := 0
	for i, c := range counts {
		if len(counts) > MaxBars && i >= MaxBars-1 {
			other += c.Count
			continue
		}
		bars = append(bars, gochart.Value{Label: truncate(c.Value, 12), Value: float64(c.Count), Style: style})
	}
	if other > 0 {
		bars = append(bars, gochart.Value{Label: "(other)", Value: float64(other), Style: style})
	}
	return bars
}

func (p *CountPlot) Render(w io.Writer, format Format) error {
	if p.Freq == nil {
		return ErrNoData
	}
	bars := p.bars()
	if len(bars) == 0 {
		return ErrNoData
	}
	rp, err := format.provider()
	if err != nil {
		return err
	}
	size := p.Size.orDefault()
	const spacing, margin = 8, 120
	barWidth := (size.Width-margin)/len(bars) - spacing
	if barWidth < 6 {
		barWidth = 6
	}
	width := max(size.Width, len(bars)*(barWidth+spacing)+margin)
	top := 0.0
	for _, b := range bars {
		top = max(top, b.Value)
	}
	bc := gochart.BarChart{
		Title:      "Count Plot of " + p.Freq.Column,
		Width:      width,
		Height:     size.Height,
		Background: titlePadding(),
		BarWidth:   barWidth,
		BarSpacing: spacing,
		YAxis:      gochart.YAxis{Name: "count", Range: &gochart.ContinuousRange{Min: 0, Max: top * 1.1}},
		Bars:       bars,
	}
	return bc.Render(rp, w)
}
