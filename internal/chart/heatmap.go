package chart

import (
	"bufio"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
)

const (
	glyphW   = 7 // basicfont.Face7x13 advance
	glyphH   = 13
	maxLabel = 18
)

// Heatmap is an annotated correlation matrix on a diverging -1..1 color scale.
// Undefined coefficients are drawn gray and labelled "nan".
type Heatmap struct {
	Matrix *analysis.CorrMatrix
	Title  string
	Size   Size
}

// NewHeatmap builds a figure for m.
func NewHeatmap(m *analysis.CorrMatrix, size Size) *Heatmap {
	return &Heatmap{Matrix: m, Title: "Correlation Heatmap", Size: size}
}

type heatLayout struct {
	width, height int
	left, top     int
	cell          int
	barX          int
	labelChars    int
}

func (h *Heatmap) layout() heatLayout {
	size := h.Size.orDefault()
	n := len(h.Matrix.Columns)
	chars := 1
	for _, c := range h.Matrix.Columns {
		chars = max(chars, len([]rune(c)))
	}
	chars = min(chars, maxLabel)
	l := heatLayout{left: chars*glyphW + 16, top: 36 + glyphH + 8, labelChars: chars}
	const right, bottom = 80, 16
	l.cell = min((size.Width-l.left-right)/n, (size.Height-l.top-bottom)/n)
	if l.cell < 24 {
		l.cell = 24
	}
	l.width = max(size.Width, l.left+n*l.cell+right)
	l.height = max(size.Height, l.top+n*l.cell+bottom)
	l.barX = l.left + n*l.cell + 24
	return l
}

func (h *Heatmap) Render(w io.Writer, format Format) error {
	if h.Matrix == nil || len(h.Matrix.Columns) == 0 {
		return ErrNoData
	}
	switch format {
	case PNG:
		return png.Encode(w, h.image())
	case SVG:
		return h.svg(w)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
}

func (h *Heatmap) image() *image.RGBA {
	l := h.layout()
	n := len(h.Matrix.Columns)
	img := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(img, l.left, 24, h.Title, color.Black)

	colChars := max(1, (l.cell-4)/glyphW)
	for i, name := range h.Matrix.Columns {
		label := truncate(name, colChars)
		cx := l.left + i*l.cell + (l.cell-len([]rune(label))*glyphW)/2
		drawText(img, cx, l.top-6, label, color.Black)
		drawText(img, 6, l.top+i*l.cell+(l.cell+glyphH)/2-2, truncate(name, l.labelChars), color.Black)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := float64(h.Matrix.Values[i][j])
			x0, y0 := l.left+j*l.cell, l.top+i*l.cell
			rect := image.Rect(x0, y0, x0+l.cell-1, y0+l.cell-1)
			draw.Draw(img, rect, image.NewUniform(divergingColor(v)), image.Point{}, draw.Src)
			text := annotation(v)
			tx := x0 + (l.cell-len(text)*glyphW)/2
			ty := y0 + (l.cell+glyphH)/2 - 2
			drawText(img, tx, ty, text, textColor(v))
		}
	}
	// color bar
	barH := n * l.cell
	for y := 0; y < barH; y++ {
		v := 1 - 2*float64(y)/float64(max(1, barH-1))
		draw.Draw(img, image.Rect(l.barX, l.top+y, l.barX+16, l.top+y+1), image.NewUniform(divergingColor(v)), image.Point{}, draw.Src)
	}
	drawText(img, l.barX+20, l.top+glyphH-2, "1", color.Black)
	drawText(img, l.barX+20, l.top+barH/2+4, "0", color.Black)
	drawText(img, l.barX+20, l.top+barH, "-1", color.Black)
	return img
}

func (h *Heatmap) svg(w io.Writer) error {
	l := h.layout()
	n := len(h.Matrix.Columns)
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`+"\n", l.width, l.height, l.width, l.height)
	fmt.Fprintf(bw, `<rect width="%d" height="%d" fill="white"/>`+"\n", l.width, l.height)
	fmt.Fprintf(bw, `<text x="%d" y="24" font-size="16">%s</text>`+"\n", l.left, html.EscapeString(h.Title))
	for i, name := range h.Matrix.Columns {
		fmt.Fprintf(bw, `<text x="%d" y="%d" font-size="12" text-anchor="middle">%s</text>`+"\n",
			l.left+i*l.cell+l.cell/2, l.top-6, html.EscapeString(name))
		fmt.Fprintf(bw, `<text x="%d" y="%d" font-size="12" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n",
			l.left-6, l.top+i*l.cell+l.cell/2, html.EscapeString(name))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := float64(h.Matrix.Values[i][j])
			x0, y0 := l.left+j*l.cell, l.top+i*l.cell
			fmt.Fprintf(bw, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n", x0, y0, l.cell-1, l.cell-1, hex(divergingColor(v)))
			fmt.Fprintf(bw, `<text x="%d" y="%d" font-size="12" text-anchor="middle" dominant-baseline="middle" fill="%s">%s</text>`+"\n",
				x0+l.cell/2, y0+l.cell/2, hex(textColor(v)), annotation(v))
		}
	}
	barH := n * l.cell
	fmt.Fprintf(bw, `<defs><linearGradient id="cbar" x1="0" y1="0" x2="0" y2="1"><stop offset="0" stop-color="%s"/><stop offset="0.5" stop-color="%s"/><stop offset="1" stop-color="%s"/></linearGradient></defs>`+"\n",
		hex(divergingColor(1)), hex(divergingColor(0)), hex(divergingColor(-1)))
	fmt.Fprintf(bw, `<rect x="%d" y="%d" width="16" height="%d" fill="url(#cbar)"/>`+"\n", l.barX, l.top, barH)
	for _, t := range []struct {
		y     int
		label string
	}{{l.top + 10, "1"}, {l.top + barH/2 + 4, "0"}, {l.top + barH, "-1"}} {
		fmt.Fprintf(bw, `<text x="%d" y="%d" font-size="12">%s</text>`+"\n", l.barX+20, t.y, t.label)
	}
	fmt.Fprint(bw, "</svg>\n")
	return bw.Flush()
}

func annotation(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", v)
}

var (
	coolLow  = color.RGBA{R: 59, G: 76, B: 192, A: 255}
	coolMid  = color.RGBA{R: 221, G: 221, B: 221, A: 255}
	coolHigh = color.RGBA{R: 180, G: 4, B: 38, A: 255}
	nanGray  = color.RGBA{R: 160, G: 160, B: 160, A: 255}
)

// divergingColor maps -1..1 onto blue, light gray and red.
func divergingColor(v float64) color.RGBA {
	if math.IsNaN(v) {
		return nanGray
	}
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return lerp(coolMid, coolLow, -v)
	}
	return lerp(coolMid, coolHigh, v)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t)) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func textColor(v float64) color.RGBA {
	if !math.IsNaN(v) && math.Abs(v) > 0.6 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.RGBA{A: 255}
}

func hex(c color.RGBA) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func drawText(img draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}
