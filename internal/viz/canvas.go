package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

// Braille patterns hold 2x4 dots per cell:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille pixel grid of Width*2 by Height*4 dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y); dots outside the grid are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawProfile plots heights as a filled silhouette, scaled to fill the
// canvas. heights are sampled evenly along the x axis.
func (c *Canvas) DrawProfile(heights []float64) {
	if len(heights) == 0 {
		return
	}
	lo, hi := heights[0], heights[0]
	for _, h := range heights {
		lo, hi = min(lo, h), max(hi, h)
	}
	span := hi - lo
	w, h := c.Width*2, c.Height*4
	y := func(v float64) int {
		if span == 0 {
			return h - 1
		}
		return h - 1 - int((v-lo)/span*float64(h-1))
	}
	px, py := 0, y(heights[0])
	for i, v := range heights {
		x := 0
		if len(heights) > 1 {
			x = i * (w - 1) / (len(heights) - 1)
		}
		cy := y(v)
		c.DrawLine(px, py, x, cy)
		for fill := cy + 2; fill < h; fill += 2 {
			c.Set(x, fill)
		}
		px, py = x, cy
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

type elevated interface {
	Elevation(d float64) float64
}

// CourseHeights samples the course elevation at n evenly spaced points.
// Courses that cannot report elevation are integrated from their gradient.
func CourseHeights(c race.Course, n int) []float64 {
	total := c.TotalDistance()
	out := make([]float64, n)
	if n == 0 || total <= 0 {
		return out
	}
	step := total / float64(max(n-1, 1))
	if e, ok := c.(elevated); ok {
		for i := range out {
			out[i] = e.Elevation(float64(i) * step)
		}
		return out
	}
	for i := 1; i < n; i++ {
		out[i] = out[i-1] + c.GradientAt(float64(i-1)*step)*step*1000
	}
	return out
}

// trackRow places riders on a width-cell line by distance covered. A cell
// holding one rider shows its initial, a crowded cell shows the head count.
func trackRow(riders []*sim.Rider, total float64, width int) string {
	counts := make([]int, width)
	initial := make([]rune, width)
	for _, r := range riders {
		x := width - 1
		if total > 0 {
			x = min(width-1, max(0, int(r.Distance()/total*float64(width-1))))
		}
		counts[x]++
		if name := []rune(r.Name()); len(name) > 0 {
			initial[x] = name[0]
		}
	}
	var b strings.Builder
	for i, n := range counts {
		switch {
		case n == 0:
			b.WriteRune('·')
		case n == 1:
			b.WriteRune(initial[i])
		case n < 10:
			fmt.Fprintf(&b, "%d", n)
		default:
			b.WriteRune('+')
		}
	}
	return b.String()
}
