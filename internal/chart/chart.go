// Package chart renders report artifacts as standalone figures. Every figure owns its
// data and its canvas; rendering one never affects another.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

// Format is an output image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

var (
	// ErrUnsupportedFormat is returned for encodings other than PNG and SVG.
	ErrUnsupportedFormat = errors.New("unsupported chart format")
	// ErrNoData is returned when a figure has nothing to draw.
	ErrNoData = errors.New("nothing to plot")
)

// ParseFormat accepts "png" or "svg", with or without a leading dot. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the encoding.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() (gochart.RendererProvider, error) {
	switch f {
	case PNG:
		return gochart.PNG, nil
	case SVG:
		return gochart.SVG, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

// Size is a canvas size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches an 8x6 inch figure at 100 dpi.
var DefaultSize = Size{Width: 800, Height: 600}

func (s Size) orDefault() Size {
	if s.Width <= 0 {
		s.Width = DefaultSize.Width
	}
	if s.Height <= 0 {
		s.Height = DefaultSize.Height
	}
	return s
}

// Figure is a chart that renders itself on demand.
type Figure interface {
	Render(w io.Writer, format Format) error
}

// Bytes renders fig into memory.
func Bytes(fig Figure, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := fig.Render(&buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders fig to path. The encoding follows the file extension.
func WriteFile(path string, fig Figure) error {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	b, err := Bytes(fig, format)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

var (
	colorBars    = drawing.ColorFromHex("4c72b0")
	colorDensity = drawing.ColorFromHex("1f3a93")
	colorPoints  = drawing.ColorFromHex("4c72b0")
)

func titlePadding() gochart.Style {
	return gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

// paddedRange widens [lo, hi] by 5% on each side, or by 0.5 when the span is zero.
func paddedRange(lo, hi float64) *gochart.ContinuousRange {
	if lo == hi {
		return &gochart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5}
	}
	pad := (hi - lo) * 0.05
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// stepSeries draws histogram bins as a filled step outline starting and ending at zero.
func stepSeries(name string, bins []analysis.HistogramBin, height func(analysis.HistogramBin) float64) gochart.ContinuousSeries {
	xs := make([]float64, 0, 2*len(bins)+2)
	ys := make([]float64, 0, 2*len(bins)+2)
	xs = append(xs, bins[0].Lo)
	ys = append(ys, 0)
	for _, b := range bins {
		h := height(b)
		xs = append(xs, b.Lo, b.Hi)
		ys = append(ys, h, h)
	}
	xs = append(xs, bins[len(bins)-1].Hi)
	ys = append(ys, 0)
	return gochart.ContinuousSeries{
		Name: name,
		Style: gochart.Style{
			StrokeColor: colorBars,
			StrokeWidth: 1,
			FillColor:   colorBars.WithAlpha(140),
		},
		XValues: xs,
		YValues: ys,
	}
}

func finite(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	r := []rune(s)
	switch {
	case n <= 0:
		return ""
	case len(r) <= n:
		return s
	case n == 1:
		return string(r[:1])
	}
	return string(r[:n-1]) + "~"
}
