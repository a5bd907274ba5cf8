package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws the race in place on a plain terminal. It is a
// race.Sink; frames arriving faster than frameRate per second are skipped,
// apart from the final one.
type LiveRenderer struct {
	out       io.Writer
	title     string
	frameRate int
	lastFrame time.Time
	now       func() time.Time
	canvas    [][]rune
}

func NewLiveRenderer(out io.Writer, title string, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		out:       out,
		title:     title,
		frameRate: frameRate,
		now:       time.Now,
		canvas:    canvas,
	}
}

func (r *LiveRenderer) Update(m *race.Manager) {
	if r.frameRate > 0 && !m.Finished() {
		if r.now().Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
	}
	r.lastFrame = r.now()

	r.clear()
	r.drawRoad(m)
	r.render(m)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, x2, y int, c rune) {
	for x := x1; x <= x2; x++ {
		r.set(x, y, c)
	}
}

// drawRoad gives every rider a lane, in finish order, and marks how far
// along the course they are.
func (r *LiveRenderer) drawRoad(m *race.Manager) {
	total := m.Course().TotalDistance()
	for lane, rd := range m.StageFinishOrder() {
		if lane >= height {
			break
		}
		r.line(0, width-2, lane, '.')
		r.set(width-1, lane, '|')
		x := width - 1
		if total > 0 && !rd.Finished() {
			x = min(width-2, int(rd.Distance()/total*float64(width-1)))
		}
		r.set(x, lane, marker(rd))
	}
}

// marker is '#' for a rider pulling a group, '>' for one drafting in it,
// 'o' for a solo rider and '*' once the rider is across the line.
func marker(rd *sim.Rider) rune {
	switch {
	case rd.Finished():
		return '*'
	case rd.Group() == nil:
		return 'o'
	case rd.IsDrafting():
		return '>'
	default:
		return '#'
	}
}

func (r *LiveRenderer) render(m *race.Manager) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%s  %d groups\n", r.title, clock(m.Ticks()), len(m.Groups())))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	order := m.StageFinishOrder()
	for i, row := range r.canvas {
		if i >= len(order) {
			break
		}
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString(" " + order[i].Name() + "\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, s := range m.Standings() {
		gap := ""
		if s.Rank > 1 && s.GapKnown {
			gap = fmt.Sprintf("+%.1fs", s.Gap)
		}
		b.WriteString(fmt.Sprintf("  %2d %-14s %7.2f km %6.0f W avg %5.0f%% %s\n",
			s.Rank, s.Name, s.Distance, s.AveragePower, s.FuelPercent, gap))
	}

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func clock(s int) string {
	return fmt.Sprintf("%d:%02d:%02d", s/3600, s/60%60, s%60)
}
