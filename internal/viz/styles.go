package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title    lipgloss.Style
	status   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	help     lipgloss.Style
	panel    lipgloss.Style
	graph    lipgloss.Style
	road     lipgloss.Style
	errText  lipgloss.Style
	fresh    lipgloss.Style
	tiring   lipgloss.Style
	redzone  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		status:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		label:    lipgloss.NewStyle().Foreground(t.Muted),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		muted:    lipgloss.NewStyle().Foreground(t.Muted),
		selected: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		help:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Muted).Padding(0, 1),
		graph:    lipgloss.NewStyle().Foreground(t.Accent),
		road:     lipgloss.NewStyle().Foreground(t.Road),
		errText:  lipgloss.NewStyle().Foreground(t.Redzone).Bold(true),
		fresh:    lipgloss.NewStyle().Foreground(t.Fresh),
		tiring:   lipgloss.NewStyle().Foreground(t.Tiring),
		redzone:  lipgloss.NewStyle().Foreground(t.Redzone).Bold(true),
	}
}

// fuelStyle picks the gauge colour for a tank at pct percent.
func (s styles) fuelStyle(pct float64) lipgloss.Style {
	switch {
	case pct <= 0:
		return s.redzone
	case pct < 30:
		return s.tiring
	default:
		return s.fresh
	}
}

// fuelBar is a width-cell gauge of pct percent of a full tank. An
// overdrawn tank renders as an empty bar.
func fuelBar(pct float64, width int) string {
	filled := int(math.Round(pct / 100 * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

var sparks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// sparkline squeezes the last width values onto one line.
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(sparks)-1))
		b.WriteRune(sparks[max(0, min(len(sparks)-1, idx))])
	}
	return b.String()
}

func separator(width int) string {
	if width < 8 {
		return strings.Repeat("─", max(width, 0))
	}
	mid := width / 2
	return strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-1)
}

// truncate shortens s to n runes, ending with an ellipsis when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
