package gauge

import (
	"fmt"
	"image/color"
	"strings"

	drawille "github.com/exrook/drawille-go"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/pulse/internal/tui/theme"
)

// dial size in braille dots; a braille cell is 2 dots wide and 4 tall, so
// this renders as 26x13 cells with room for the value in the middle.
const (
	dotsWidth  = 52
	dotsHeight = 52
	cols       = dotsWidth / 2
	rows       = dotsHeight / 4
)

const emptyBraille rune = '\u2800'

// Gauge is a dial, open at the bottom, with its value in the center.
type Gauge struct {
	Value     *float64 // nil renders "--"
	Max       float64
	Label     string
	Color     color.Color // fill, or the gradient start
	EndColor  color.Color // gradient end; nil fills with Color alone
	BgColor   color.Color // track
	TextColor color.Color
	Format    func(v float64) string
}

type Option func(*Gauge)

// WithGradient blends the fill from the gauge color into end, left to right.
func WithGradient(end color.Color) Option {
	return func(g *Gauge) {
		g.EndColor = end
	}
}

func WithFormat(format func(v float64) string) Option {
	return func(g *Gauge) {
		g.Format = format
	}
}

func New(value *float64, max float64, label string, c color.Color, opts ...Option) Gauge {
	g := Gauge{
		Value:     value,
		Max:       max,
		Label:     label,
		Color:     c,
		BgColor:   theme.ColorTrack,
		TextColor: theme.ColorText,
	}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// fraction is the filled share of the dial, clamped to [0, 1].
func (g Gauge) fraction() float64 {
	if g.Value == nil || g.Max <= 0 {
		return 0
	}
	return min(max(*g.Value/g.Max, 0), 1)
}

func (g Gauge) valueText() string {
	switch {
	case g.Value == nil:
		return "--"
	case g.Format != nil:
		return g.Format(*g.Value)
	case g.Max == 100:
		return fmt.Sprintf("%.0f%%", *g.Value)
	default:
		return fmt.Sprintf("%.1f", *g.Value)
	}
}

func (g Gauge) Render() string {
	const (
		cx     = float64(dotsWidth) / 2
		cy     = float64(dotsHeight) / 2
		radius = float64(dotsWidth)/2 - 1
	)

	grid := compose(
		plot(newDial(cx, cy, radius, 1)),
		plot(newDial(cx, cy, radius, g.fraction())),
	)
	stamp(grid, g.valueText())

	var (
		trackStyle = lipgloss.NewStyle().Foreground(g.BgColor)
		textStyle  = lipgloss.NewStyle().Foreground(g.TextColor).Bold(true)
		fillStyles = make([]lipgloss.Style, cols)
	)
	for col := range fillStyles {
		fillStyles[col] = lipgloss.NewStyle().Foreground(blend(g.Color, g.EndColor, col, cols))
	}

	lines := make([]string, len(grid))
	for i, row := range grid {
		var b strings.Builder
		for col, c := range row {
			switch c.layer {
			case layerTrack:
				b.WriteString(trackStyle.Render(string(c.r)))
			case layerFill:
				b.WriteString(fillStyles[col].Render(string(c.r)))
			case layerText:
				b.WriteString(textStyle.Render(string(c.r)))
			default:
				b.WriteRune(' ')
			}
		}
		lines[i] = b.String()
	}

	label := textStyle.Width(cols).Align(lipgloss.Center).Render(g.Label)
	return lipgloss.JoinVertical(lipgloss.Center, strings.Join(lines, "\n"), label)
}

// plot draws the arc and returns its braille cells as a rows x cols grid.
func plot(a arc) [][]rune {
	canvas := drawille.NewCanvas()
	a.draw(&canvas)

	drawn := canvas.Rows(0, 0, dotsWidth, dotsHeight)
	out := make([][]rune, rows)
	for i := range out {
		line := make([]rune, cols)
		for j := range line {
			line[j] = ' '
		}
		if i < len(drawn) {
			copy(line, []rune(drawn[i]))
		}
		out[i] = line
	}
	return out
}

type layer uint8

const (
	layerBlank layer = iota
	layerTrack
	layerFill
	layerText
)

type cell struct {
	r     rune
	layer layer
}

// compose lays the fill over the track. A cell the fill touches merges both
// sets of dots and takes the fill's color.
func compose(track, fill [][]rune) [][]cell {
	grid := make([][]cell, len(track))
	for i, row := range track {
		grid[i] = make([]cell, len(row))
		for j, t := range row {
			f := ' '
			if i < len(fill) && j < len(fill[i]) {
				f = fill[i][j]
			}
			switch {
			case hasDots(f) && isBraille(t):
				grid[i][j] = cell{r: t | f, layer: layerFill}
			case hasDots(f):
				grid[i][j] = cell{r: f, layer: layerFill}
			case isBraille(t):
				grid[i][j] = cell{r: t, layer: layerTrack}
			default:
				grid[i][j] = cell{r: ' '}
			}
		}
	}
	return grid
}

// stamp writes s over the middle row, centered.
func stamp(grid [][]cell, s string) {
	if len(grid) == 0 {
		return
	}
	row := grid[len(grid)/2]
	text := []rune(s)
	start := max((len(row)-len(text))/2, 0)
	for i, r := range text {
		if start+i >= len(row) {
			break
		}
		row[start+i] = cell{r: r, layer: layerText}
	}
}

// blend linearly interpolates start toward end for column col of width.
func blend(start, end color.Color, col, width int) color.Color {
	if start == nil || end == nil || width < 2 {
		return start
	}
	var (
		t             = float64(col) / float64(width-1)
		r1, g1, b1, _ = start.RGBA()
		r2, g2, b2, _ = end.RGBA()
		mix           = func(a, b uint32) uint8 { return uint8((float64(a)*(1-t) + float64(b)*t) / 257) }
	)
	return color.RGBA{R: mix(r1, r2), G: mix(g1, g2), B: mix(b1, b2), A: 0xFF}
}

func isBraille(r rune) bool {
	return r >= emptyBraille && r <= 0x28FF
}

func hasDots(r rune) bool {
	return isBraille(r) && r != emptyBraille
}
