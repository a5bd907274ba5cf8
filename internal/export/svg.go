// Package export renders race pictures as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/viz"
)

// palette colours one line per rider, cycling when there are more riders.
var palette = []string{"#ffd400", "#00ccff", "#ff4757", "#5fd068", "#ff9ff3", "#ffaa00", "#a29bfe", "#ffffff"}

var pixelMap = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// CanvasToSVG draws every lit dot of a braille canvas as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}
	var sb strings.Builder
	header(&sb, float64(canvas.Width)*scale*2, float64(canvas.Height)*scale*4)
	fmt.Fprintf(&sb, "<g fill=%q>\n", fill)

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			cell := canvas.Grid[row][col]
			if cell < 0x2800 {
				continue
			}
			pattern := cell - 0x2800
			baseX, baseY := float64(col)*scale*2, float64(row)*scale*4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
						baseX+float64(dx)*scale+scale/2, baseY+float64(dy)*scale+scale/2, scale*0.4)
				}
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ProfileSVG draws the course elevation as a filled silhouette with a tick
// and label every kilometre marker step.
func ProfileSVG(c race.Course, width, height int, step float64) string {
	total := c.TotalDistance()
	heights := viz.CourseHeights(c, max(width/4, 2))
	low, high := lo.Min(heights), lo.Max(heights)
	span := high - low
	if span == 0 {
		span = 1
	}
	pad := 20.0
	w, h := float64(width), float64(height)
	x := func(i int) float64 { return pad + float64(i)/float64(len(heights)-1)*(w-2*pad) }
	y := func(v float64) float64 { return h - pad - (v-low)/span*(h-3*pad) }

	var sb strings.Builder
	header(&sb, w, h)
	fmt.Fprintf(&sb, `<path fill="#2d6a4f" stroke="#5fd068" stroke-width="1.5" d="M%.1f,%.1f`, x(0), h-pad)
	for i, v := range heights {
		fmt.Fprintf(&sb, " L%.1f,%.1f", x(i), y(v))
	}
	fmt.Fprintf(&sb, " L%.1f,%.1f Z\"/>\n", x(len(heights)-1), h-pad)

	if step > 0 && total > 0 {
		sb.WriteString(`<g fill="#aaaaaa" font-family="monospace" font-size="10" text-anchor="middle">` + "\n")
		for km := 0.0; km <= total+1e-9; km += step {
			px := pad + km/total*(w-2*pad)
			fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"#aaaaaa\"/>\n", px, h-pad, px, h-pad+4)
			fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\">%g</text>\n", px, h-4, km)
		}
		sb.WriteString("</g>\n")
	}
	fmt.Fprintf(&sb, "<text x=\"%.0f\" y=\"14\" fill=\"#ffffff\" font-family=\"monospace\" font-size=\"12\">%.1f km, +%.0f m</text>\n", pad, total, climbed(heights))
	sb.WriteString("</svg>")
	return sb.String()
}

// climbed sums the height gained between consecutive samples.
func climbed(heights []float64) float64 {
	up := 0.0
	for i := 1; i < len(heights); i++ {
		up += math.Max(heights[i]-heights[i-1], 0)
	}
	return up
}

// SeriesSVG draws one polyline per named series on shared axes. Series are
// drawn in name order so colours are stable between runs.
func SeriesSVG(series map[string][]float64, width, height int, caption string) string {
	names := lo.Filter(lo.Keys(series), func(n string, _ int) bool { return len(series[n]) >= 2 })
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)

	all := lo.Flatten(lo.Map(names, func(n string, _ int) []float64 { return series[n] }))
	minY, maxY := lo.Min(all), lo.Max(all)
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2
	longest := lo.Max(lo.Map(names, func(n string, _ int) int { return len(series[n]) }))

	w, h := float64(width), float64(height)
	var sb strings.Builder
	header(&sb, w, h)
	for i, name := range names {
		color := palette[i%len(palette)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		for j, v := range series[name] {
			px := float64(j) / float64(longest-1) * w
			py := h - (v-minY)/rangeY*h
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", px, py)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", px, py)
			}
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"11\">%s</text>\n", 30+14*i, color, name)
	}
	if caption != "" {
		fmt.Fprintf(&sb, "<text x=\"8\" y=\"14\" fill=\"#ffffff\" font-family=\"monospace\" font-size=\"12\">%s</text>\n", caption)
	}
	sb.WriteString("</svg>")
	return sb.String()
}
