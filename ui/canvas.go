package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// canvas rasterizes the network drawing into braille cells. Each
// terminal cell holds a 2x4 dot grid, so a w x h cell canvas exposes a
// 2w x 4h pixel space. Colors apply per cell; the last draw wins.
type canvas struct {
	w, h   int
	dots   []uint8
	colors []lipgloss.Color
	labels []textLabel
}

type textLabel struct {
	cx, cy int
	text   string
	style  lipgloss.Style
}

// Braille dot bit positions within a cell, column-major per Unicode.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func newCanvas(w, h int) *canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &canvas{
		w:      w,
		h:      h,
		dots:   make([]uint8, w*h),
		colors: make([]lipgloss.Color, w*h),
	}
}

// pixelSize returns the drawable pixel dimensions.
func (c *canvas) pixelSize() (int, int) {
	return c.w * 2, c.h * 4
}

func (c *canvas) dot(px, py int, color lipgloss.Color) {
	if px < 0 || py < 0 || px >= c.w*2 || py >= c.h*4 {
		return
	}
	cell := (py/4)*c.w + px/2
	c.dots[cell] |= brailleBits[py%4][px%2]
	c.colors[cell] = color
}

// line draws with Bresenham over the dot grid.
func (c *canvas) line(x0, y0, x1, y1 int, color lipgloss.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.dot(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillCircle plots a filled disc, used for node bodies.
func (c *canvas) fillCircle(cx, cy, r int, color lipgloss.Color) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				c.dot(cx+x, cy+y, color)
			}
		}
	}
}

// label pins a text overlay at a pixel position; it replaces the
// braille cells it covers at render time.
func (c *canvas) label(px, py int, text string, style lipgloss.Style) {
	c.labels = append(c.labels, textLabel{cx: px / 2, cy: py / 4, text: text, style: style})
}

func (c *canvas) render() string {
	type overlay struct {
		text  string
		style lipgloss.Style
	}
	cells := make(map[int]overlay)
	for _, l := range c.labels {
		if l.cy < 0 || l.cy >= c.h {
			continue
		}
		for i, r := range l.text {
			x := l.cx + i
			if x < 0 || x >= c.w {
				continue
			}
			cells[l.cy*c.w+x] = overlay{text: string(r), style: l.style}
		}
	}

	var b strings.Builder
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			i := y*c.w + x
			if o, ok := cells[i]; ok {
				b.WriteString(o.style.Render(o.text))
				continue
			}
			if c.dots[i] == 0 {
				b.WriteByte(' ')
				continue
			}
			r := rune(0x2800 + int(c.dots[i]))
			b.WriteString(lipgloss.NewStyle().Foreground(c.colors[i]).Render(string(r)))
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
