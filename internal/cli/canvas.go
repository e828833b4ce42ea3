package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowcore/pkg/geom"
)

// Terminal cells are mapped to screen pixels at this size.
const (
	cellW = 8.0
	cellH = 16.0
)

type cellKind uint8

const (
	cellBlank cellKind = iota
	cellEdge
	cellEdgeSelected
	cellNode
	cellNodeSelected
	cellHandle
	cellSelectBox
	cellConnect
)

var cellStyles = map[cellKind]lipgloss.Style{
	cellEdge:         lipgloss.NewStyle().Foreground(colorGray),
	cellEdgeSelected: lipgloss.NewStyle().Foreground(colorCyan),
	cellNode:         lipgloss.NewStyle().Foreground(colorWhite),
	cellNodeSelected: lipgloss.NewStyle().Foreground(colorCyan).Bold(true),
	cellHandle:       lipgloss.NewStyle().Foreground(colorGreen),
	cellSelectBox:    lipgloss.NewStyle().Foreground(colorBlue),
	cellConnect:      lipgloss.NewStyle().Foreground(colorYellow),
}

// canvas is a character grid in terminal cells.
type canvas struct {
	w, h  int
	runes [][]rune
	kinds [][]cellKind
}

func newCanvas(w, h int) *canvas {
	w, h = max(w, 0), max(h, 0)
	c := &canvas{w: w, h: h, runes: make([][]rune, h), kinds: make([][]cellKind, h)}
	for y := range h {
		c.runes[y] = []rune(strings.Repeat(" ", w))
		c.kinds[y] = make([]cellKind, w)
	}
	return c
}

// cell converts a screen-space point to a cell coordinate.
func cell(p geom.Point) (int, int) {
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

// screenPoint returns the screen-space center of a cell.
func screenPoint(x, y int) geom.Point {
	return geom.Point{X: (float64(x) + 0.5) * cellW, Y: (float64(y) + 0.5) * cellH}
}

func (c *canvas) set(x, y int, r rune, k cellKind) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.runes[y][x] = r
	c.kinds[y][x] = k
}

// box draws the outline of a screen-space rect.
func (c *canvas) box(r geom.Rect, k cellKind) (x0, y0, x1, y1 int) {
	x0, y0 = cell(r.TopLeft())
	x1, y1 = cell(geom.Point{X: r.Right(), Y: r.Bottom()})
	x1, y1 = max(x1, x0+1), max(y1, y0+1)
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─', k)
		c.set(x, y1, '─', k)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│', k)
		c.set(x1, y, '│', k)
	}
	c.set(x0, y0, '┌', k)
	c.set(x1, y0, '┐', k)
	c.set(x0, y1, '└', k)
	c.set(x1, y1, '┘', k)
	return x0, y0, x1, y1
}

// fill blanks the inside of a box so nodes hide what lies beneath them.
func (c *canvas) fill(x0, y0, x1, y1 int) {
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			c.set(x, y, ' ', cellBlank)
		}
	}
}

// text writes s starting at (x, y), clipped to maxLen cells.
func (c *canvas) text(x, y int, s string, maxLen int, k cellKind) {
	for i, r := range []rune(s) {
		if i >= maxLen {
			break
		}
		c.set(x+i, y, r, k)
	}
}

// polyline draws straight segments between screen-space points.
func (c *canvas) polyline(pts []geom.Point, r rune, k cellKind) {
	for i := 1; i < len(pts); i++ {
		c.segment(pts[i-1], pts[i], r, k)
	}
}

func (c *canvas) segment(a, b geom.Point, r rune, k cellKind) {
	ax, ay := cell(a)
	bx, by := cell(b)
	steps := max(abs(bx-ax), abs(by-ay), 1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.set(int(math.Round(float64(ax)+t*float64(bx-ax))), int(math.Round(float64(ay)+t*float64(by-ay))), r, k)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// String renders the grid, styling runs of equal kind together.
func (c *canvas) String() string {
	var b strings.Builder
	for y := range c.h {
		start := 0
		for x := 1; x <= c.w; x++ {
			if x < c.w && c.kinds[y][x] == c.kinds[y][start] {
				continue
			}
			run := string(c.runes[y][start:x])
			if st, ok := cellStyles[c.kinds[y][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = x
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// plain returns the grid without styling.
func (c *canvas) plain() string {
	lines := make([]string, c.h)
	for y := range c.h {
		lines[y] = string(c.runes[y])
	}
	return strings.Join(lines, "\n")
}

// cubicPoints samples a cubic bezier given as [start, c1, c2, end].
func cubicPoints(p []geom.Point, n int) []geom.Point {
	out := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		a, b, cc, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		out = append(out, geom.Point{
			X: a*p[0].X + b*p[1].X + cc*p[2].X + d*p[3].X,
			Y: a*p[0].Y + b*p[1].Y + cc*p[2].Y + d*p[3].Y,
		})
	}
	return out
}
