package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/peloton/internal/config"
	"github.com/san-kum/peloton/internal/race"
)

var presetInfo = map[string]string{
	"flat-tt":        "paced effort against an early attack",
	"hilly-paceline": "rotating paceline over the hills",
	"breakaway":      "lone attacker against a chase of four",
	"descent":        "sprinter against rouleur, coasting down",
	"bunch-sprint":   "peloton to the line, sprint at 200 m",
	"summit-finish":  "peloton onto a summit finish",
}

const (
	stateMenu = iota
	stateRace
)

// picker lists the preset races and opens the chosen one in a live Model.
type picker struct {
	state   int
	cursor  int
	presets []string
	opts    []Option
	live    Model
	err     error
	st      styles
}

func newPicker(opts ...Option) picker {
	return picker{
		presets: config.ListPresets(),
		opts:    opts,
		st:      newStyles(ThemeClassic),
	}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateRace {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
			p.state = stateMenu
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch km.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		p.cursor = max(p.cursor-1, 0)
	case "down", "j":
		p.cursor = min(p.cursor+1, len(p.presets)-1)
	case "enter", " ":
		return p.start()
	}
	return p, nil
}

func (p picker) start() (tea.Model, tea.Cmd) {
	name := p.presets[p.cursor]
	live, err := NewModel(presetBuilder(name), name, p.opts...)
	if err != nil {
		p.err = err
		return p, nil
	}
	p.err = nil
	p.live = live
	p.state = stateRace
	return p, live.Init()
}

func presetBuilder(name string) race.Builder {
	return func() (*race.Manager, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %q", config.ErrUnknownPreset, name)
		}
		return config.Build(cfg)
	}
}

func (p picker) View() string {
	if p.state == stateRace {
		return p.live.View() + p.st.muted.Render("  esc menu")
	}
	var b strings.Builder
	b.WriteString("\n\n    " + p.st.title.Render("PELOTON") + "\n    " + p.st.muted.Render("tick-based bike race simulator") + "\n    " + p.st.muted.Render(separator(30)) + "\n\n")
	for i, name := range p.presets {
		desc := truncate(presetInfo[name], 40)
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", p.st.selected.Render("▸"), p.st.selected.Render(fmt.Sprintf("%-16s", name)), p.st.status.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", p.st.value.Render(fmt.Sprintf("%-16s", name)), p.st.muted.Render(desc)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + p.st.errText.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + p.st.help.Render("j/k navigate  enter race  q quit") + "\n")
	return b.String()
}

// RunInteractive opens the preset menu full screen.
func RunInteractive(opts ...Option) error {
	_, err := tea.NewProgram(newPicker(opts...), tea.WithAltScreen()).Run()
	return err
}

// RunLive shows a single race full screen until the user quits. It returns
// the tick error that stopped the race, if any.
func RunLive(build race.Builder, title string, opts ...Option) error {
	m, err := NewModel(build, title, opts...)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	return final.(Model).Err()
}
