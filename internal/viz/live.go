package viz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

const (
	historyCapacity = 600
	profileWidth    = 60
	profileHeight   = 4
	barWidth        = 12
	maxStride       = 640
	effortStep      = 0.05
)

type TickMsg time.Time

// Option configures a Model.
type Option func(*Model)

// WithDelay sets the wall-clock pause between frames.
func WithDelay(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.delay = d
		}
	}
}

// WithStride sets how many race ticks run per frame.
func WithStride(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.stride = min(n, maxStride)
		}
	}
}

func WithTheme(name string) Option {
	return func(m *Model) { m.theme = GetTheme(name) }
}

// Model is the live race view. Every frame it advances the race by stride
// ticks and keeps a rolling power and gap history for each rider.
type Model struct {
	build    race.Builder
	race     *race.Manager
	title    string
	delay    time.Duration
	stride   int
	running  bool
	theme    Theme
	st       styles
	selected int
	heights  []float64
	power    map[string][]float64
	gap      map[string][]float64
	err      error
	showHelp bool
	width    int
}

// NewModel builds the race and its view. build is called again whenever the
// race is restarted from the keyboard.
func NewModel(build race.Builder, title string, opts ...Option) (Model, error) {
	m := Model{
		build:   build,
		title:   title,
		delay:   20 * time.Millisecond,
		running: true,
		theme:   ThemeClassic,
		width:   120,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.st = newStyles(m.theme)
	if err := m.restart(); err != nil {
		return Model{}, err
	}
	if m.stride == 0 {
		m.stride = m.race.FrameInterval()
	}
	return m, nil
}

func (m *Model) restart() error {
	r, err := m.build()
	if err != nil {
		return err
	}
	m.race = r
	m.err = nil
	m.selected = 0
	m.heights = CourseHeights(r.Course(), profileWidth*2)
	m.power = make(map[string][]float64)
	m.gap = make(map[string][]float64)
	return nil
}

// Race exposes the race being shown.
func (m Model) Race() *race.Manager { return m.race }

// Err is the tick error that stopped the race, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.delay, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the race.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running && !m.race.Finished() {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		if err := m.restart(); err != nil {
			m.err = err
			m.running = false
		}
	case "+", "=":
		m.stride = min(m.stride*2, maxStride)
	case "-", "_":
		m.stride = max(m.stride/2, 1)
	case "t":
		m.theme = m.theme.next()
		m.st = newStyles(m.theme)
	case "down", "j":
		m.selected = min(m.selected+1, len(m.race.Riders())-1)
	case "up", "k":
		m.selected = max(m.selected-1, 0)
	case "a":
		m.nudge(effortStep)
	case "e":
		m.nudge(-effortStep)
	case "c":
		if r := m.selectedRider(); r != nil {
			r.SetCooperating(!r.Cooperating())
		}
	case "d":
		if r := m.selectedRider(); r != nil && r.Group() != nil {
			if err := m.race.DropFromGroup(r); err != nil {
				m.err = err
			}
		}
	case "g":
		m.bridge()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// step runs one frame of the race. A tick error pauses the view and is
// shown in the header until the race is restarted.
func (m *Model) step() {
	for i := 0; i < m.stride && !m.race.Finished(); i++ {
		if err := m.race.Tick(); err != nil {
			if !errors.Is(err, race.ErrFinished) {
				m.err = err
			}
			m.running = false
			break
		}
	}
	lead := m.race.LeadingRider()
	for _, r := range m.race.Riders() {
		m.power[r.Name()] = push(m.power[r.Name()], r.Power())
		m.gap[r.Name()] = push(m.gap[r.Name()], m.race.DistanceGap(lead, r)*1000)
	}
}

func push(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[len(h)-historyCapacity:]
	}
	return h
}

func (m Model) selectedRider() *sim.Rider {
	order := m.race.StageFinishOrder()
	if len(order) == 0 {
		return nil
	}
	return order[max(0, min(m.selected, len(order)-1))]
}

func (m *Model) nudge(delta float64) {
	if r := m.selectedRider(); r != nil {
		r.SetEffort(sim.Fraction(r.Effort() + delta))
	}
}

// bridge sends the selected rider across to the rider directly ahead of it
// in the standings, joining that rider's group.
func (m *Model) bridge() {
	order := m.race.StageFinishOrder()
	i := max(0, min(m.selected, len(order)-1))
	if i == 0 || len(order) < 2 {
		return
	}
	if err := m.race.JoinWithRider(order[i], order[i-1]); err != nil {
		m.err = err
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.st.errText.Render("ERROR " + m.err.Error())
	case m.race.Finished():
		return m.st.status.Render("FINISHED")
	case !m.running:
		return m.st.status.Render("PAUSED")
	default:
		return m.st.status.Render(fmt.Sprintf("RACING x%d", m.stride))
	}
}

// View renders the race.
func (m Model) View() string {
	var b strings.Builder
	total := m.race.Course().TotalDistance()
	lead := m.race.LeadingRider()

	b.WriteString(m.st.title.Render(strings.ToUpper(m.title)) + "  " + m.status() + "\n")
	b.WriteString(m.st.label.Render("clock ") + m.st.value.Render(clock(float64(m.race.Ticks()))))
	b.WriteString(m.st.label.Render("   to go ") + m.st.value.Render(fmt.Sprintf("%.2f km", max(total-lead.Distance(), 0))))
	b.WriteString(m.st.label.Render("   course ") + m.st.value.Render(fmt.Sprintf("%.1f km", total)) + "\n\n")

	cv := NewCanvas(profileWidth, profileHeight)
	cv.DrawProfile(m.heights)
	b.WriteString(m.st.road.Render(strings.TrimRight(cv.String(), "\n")) + "\n")
	b.WriteString(m.st.value.Render(trackRow(m.race.Riders(), total, profileWidth)) + "\n")
	b.WriteString(m.st.muted.Render(separator(profileWidth)) + "\n\n")

	left := m.standingsView() + "\n" + m.groupsView()
	right := m.riderView()
	if m.width >= 110 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	} else {
		b.WriteString(left + "\n" + right)
	}
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.st.panel.Render(helpText) + "\n")
	}
	b.WriteString(m.st.help.Render("space pause  r restart  +/- speed  j/k select  a/e effort  c cooperate  d drop  g bridge  t theme  ? help  q quit"))
	return b.String()
}

const helpText = `space  pause or resume
r      restart the race
+ -    double or halve ticks per frame
j k    select a rider
a e    raise or lower the selected rider's effort by 5%
c      toggle whether the selected rider takes turns
d      drop the selected rider from its group
g      bridge to the rider ahead and ride with them
t      cycle colour themes`

func (m Model) standingsView() string {
	var b strings.Builder
	b.WriteString(m.st.label.Render(fmt.Sprintf("%3s %-12s %3s %7s %6s %5s %-*s %8s", "#", "rider", "grp", "km", "kph", "W", barWidth+5, "fuel", "gap")) + "\n")
	for i, s := range m.race.Standings() {
		r, err := m.race.Rider(s.Name)
		if err != nil {
			continue
		}
		grp := "-"
		if s.Group != 0 {
			grp = fmt.Sprintf("%d", s.Group)
		}
		gap := "--"
		switch {
		case i == 0:
			gap = ""
		case s.GapKnown:
			gap = fmt.Sprintf("+%.1fs", s.Gap)
		}
		if s.Finished {
			gap = clock(s.Time) + " " + gap
		}
		bar := m.st.fuelStyle(s.FuelPercent).Render(fuelBar(s.FuelPercent, barWidth))
		row := fmt.Sprintf("%3d %-12s %3s %7.2f %6.1f %5.0f ", s.Rank, truncate(s.Name, 12), grp, s.Distance, r.SpeedKPH(), r.Power())
		pct := fmt.Sprintf(" %3.0f%%", s.FuelPercent)
		if i == m.selected {
			b.WriteString(m.st.selected.Render("▸"+row[1:]) + bar + m.st.selected.Render(pct) + " " + gap + "\n")
		} else {
			b.WriteString(m.st.value.Render(row) + bar + m.st.value.Render(pct) + " " + m.st.muted.Render(gap) + "\n")
		}
	}
	return b.String()
}

func (m Model) groupsView() string {
	groups := m.race.GroupSummaries()
	if len(groups) == 0 {
		return m.st.muted.Render("no groups, everyone rides alone")
	}
	var b strings.Builder
	b.WriteString(m.st.label.Render(fmt.Sprintf("%3s %-8s %4s %-12s %6s %6s", "grp", "kind", "size", "leader", "kph", "spread")) + "\n")
	for _, g := range groups {
		b.WriteString(m.st.value.Render(fmt.Sprintf("%3d %-8s %2d/%-2d %-12s %6.1f %5.0fm",
			g.ID, g.Kind, g.Cooperating, g.Size, truncate(g.Leader, 12), g.SpeedKPH, g.Spread*1000)) + "\n")
	}
	return b.String()
}

func (m Model) riderView() string {
	r := m.selectedRider()
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.st.title.Render(r.Name()) + "\n")
	b.WriteString(m.st.label.Render("effort   ") + m.st.value.Render(fmt.Sprintf("%.0f%% (%.0f W)", r.Effort()*100, r.DesiredPower())) + "\n")
	b.WriteString(m.st.label.Render("average  ") + m.st.value.Render(fmt.Sprintf("%.0f W", r.AveragePower())) + "\n")
	role := "solo"
	switch {
	case r.Group() == nil:
	case r.IsDrafting():
		role = fmt.Sprintf("drafting in group %d", r.Group().ID())
	default:
		role = fmt.Sprintf("pulling group %d", r.Group().ID())
	}
	if !r.Cooperating() {
		role += ", sitting in"
	}
	b.WriteString(m.st.label.Render("role     ") + m.st.value.Render(role) + "\n\n")

	if p := m.power[r.Name()]; len(p) > 1 {
		b.WriteString(m.st.graph.Render(asciigraph.Plot(p,
			asciigraph.Height(5), asciigraph.Width(40), asciigraph.Caption("power (W)"))) + "\n\n")
	}
	if g := m.gap[r.Name()]; len(g) > 1 && lo.Max(g) > 0 {
		b.WriteString(m.st.graph.Render(asciigraph.Plot(g,
			asciigraph.Height(4), asciigraph.Width(40), asciigraph.Caption("behind the leader (m)"))) + "\n")
	} else {
		b.WriteString(m.st.muted.Render("spark "+sparkline(m.power[r.Name()], 40)) + "\n")
	}
	return m.st.panel.Render(b.String())
}

// clock formats seconds as h:mm:ss.
func clock(s float64) string {
	t := int(s)
	return fmt.Sprintf("%d:%02d:%02d", t/3600, t/60%60, t%60)
}
