package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live view. Fresh, Tiring and Redzone
// colour the fuel gauges from a full tank down to an overdrawn one.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Road    lipgloss.Color
	Fresh   lipgloss.Color
	Tiring  lipgloss.Color
	Redzone lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:    "classic",
		Primary: lipgloss.Color("#ffd400"), // maillot jaune
		Accent:  lipgloss.Color("#00ccff"),
		Text:    lipgloss.Color("#f0f0f0"),
		Muted:   lipgloss.Color("#777788"),
		Road:    lipgloss.Color("#aaaaaa"),
		Fresh:   lipgloss.Color("#00ff88"),
		Tiring:  lipgloss.Color("#ffcc00"),
		Redzone: lipgloss.Color("#ff4444"),
	}

	ThemeMountain = Theme{
		Name:    "mountain",
		Primary: lipgloss.Color("#ff3355"), // polka dot
		Accent:  lipgloss.Color("#ffffff"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Road:    lipgloss.Color("#5fd068"),
		Fresh:   lipgloss.Color("#5fd068"),
		Tiring:  lipgloss.Color("#ffc048"),
		Redzone: lipgloss.Color("#ff4757"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Road:    lipgloss.Color("#00cc00"),
		Fresh:   lipgloss.Color("#88ff88"),
		Tiring:  lipgloss.Color("#ffff00"),
		Redzone: lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Road:    lipgloss.Color("#cccccc"),
		Fresh:   lipgloss.Color("#00ff00"),
		Tiring:  lipgloss.Color("#ffaa00"),
		Redzone: lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeClassic, ThemeMountain, ThemeRetro, ThemeMinimal}
)

// GetTheme returns the named theme, or classic when there is none.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// next returns the theme after t in Themes, wrapping around.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeClassic
}
