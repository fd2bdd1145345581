package chart

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
)

// MinPanel is the smallest panel edge of a pair plot, in pixels.
const MinPanel = 160

// PairPlot is a scatter matrix: histograms on the diagonal, scatter plots elsewhere.
// Panel (i, j) plots column j on x against column i on y.
type PairPlot struct {
	Grid *analysis.PairGrid
	Size Size
}

// NewPairPlot builds a figure for g.
func NewPairPlot(g *analysis.PairGrid, size Size) *PairPlot {
	return &PairPlot{Grid: g, Size: size}
}

func (p *PairPlot) panelSize() int {
	size := p.Size.orDefault()
	n := len(p.Grid.Columns)
	return max(MinPanel, min(size.Width, size.Height)/n)
}

func (p *PairPlot) Render(w io.Writer, format Format) error {
	if p.Grid == nil || len(p.Grid.Columns) < 2 || p.Grid.Rows == 0 {
		return ErrNoData
	}
	rp, err := format.provider()
	if err != nil {
		return err
	}
	n := len(p.Grid.Columns)
	cell := p.panelSize()
	series := make([][]float64, n)
	for i := range series {
		series[i] = p.Grid.Series(i)
	}

	switch format {
	case SVG:
		bw := bufio.NewWriter(w)
		fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", n*cell, n*cell, n*cell, n*cell)
		fmt.Fprintf(bw, `<rect width="%d" height="%d" fill="white"/>`+"\n", n*cell, n*cell)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				c, ok := p.panel(i, j, series, cell)
				if !ok {
					continue
				}
				var buf bytes.Buffer
				if err := c.Render(rp, &buf); err != nil {
					return fmt.Errorf("render panel %s/%s: %w", p.Grid.Columns[i], p.Grid.Columns[j], err)
				}
				body := buf.Bytes()
				if k := bytes.Index(body, []byte("<svg")); k > 0 {
					body = body[k:]
				}
				fmt.Fprintf(bw, `<g transform="translate(%d,%d)">`, j*cell, i*cell)
				bw.Write(body)
				fmt.Fprint(bw, "</g>\n")
			}
		}
		fmt.Fprint(bw, "</svg>\n")
		return bw.Flush()
	default:
		canvas := image.NewRGBA(image.Rect(0, 0, n*cell, n*cell))
		draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				c, ok := p.panel(i, j, series, cell)
				if !ok {
					continue
				}
				var buf bytes.Buffer
				if err := c.Render(rp, &buf); err != nil {
					return fmt.Errorf("render panel %s/%s: %w", p.Grid.Columns[i], p.Grid.Columns[j], err)
				}
				img, err := png.Decode(&buf)
				if err != nil {
					return fmt.Errorf("decode panel: %w", err)
				}
				at := image.Rect(j*cell, i*cell, (j+1)*cell, (i+1)*cell)
				draw.Draw(canvas, at, img, img.Bounds().Min, draw.Src)
			}
		}
		return png.Encode(w, canvas)
	}
}

// panel builds the chart for cell (i, j). ok is false when the cell has no finite data.
func (p *PairPlot) panel(i, j int, series [][]float64, cell int) (gochart.Chart, bool) {
	n := len(series)
	c := gochart.Chart{
		Width:      cell,
		Height:     cell,
		Background: gochart.Style{Padding: gochart.Box{Top: 8, Left: 8, Right: 8, Bottom: 8}},
	}
	if i == n-1 {
		c.XAxis.Name = p.Grid.Columns[j]
	}
	if j == 0 {
		c.YAxis.Name = p.Grid.Columns[i]
	}
	if i == j {
		bins := analysis.Histogram(series[i])
		if len(bins) == 0 {
			return c, false
		}
		top := 0
		for _, b := range bins {
			top = max(top, b.Count)
		}
		c.XAxis.Range = &gochart.ContinuousRange{Min: bins[0].Lo, Max: bins[len(bins)-1].Hi}
		c.YAxis.Range = &gochart.ContinuousRange{Min: 0, Max: float64(top) * 1.1}
		c.Series = []gochart.Series{stepSeries(p.Grid.Columns[i], bins, func(b analysis.HistogramBin) float64 { return float64(b.Count) })}
		return c, true
	}
	var xs, ys []float64
	for r := range series[j] {
		x, y := series[j][r], series[i][r]
		if !finite([]float64{x, y}) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return c, false
	}
	c.XAxis.Range = paddedRange(minMax(xs))
	c.YAxis.Range = paddedRange(minMax(ys))
	c.Series = []gochart.Series{gochart.ContinuousSeries{
		Style: gochart.Style{
			StrokeWidth: gochart.Disabled,
			DotWidth:    2,
			DotColor:    colorPoints,
		},
		XValues: xs,
		YValues: ys,
	}}
	return c, true
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
