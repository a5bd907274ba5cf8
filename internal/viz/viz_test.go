package viz

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/peloton/internal/config"
	"github.com/san-kum/peloton/internal/course"
	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newLive(t *testing.T, opts ...Option) Model {
	t.Helper()
	m, err := NewModel(presetBuilder("hilly-paceline"), "hilly-paceline", opts...)
	require.NoError(t, err)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	assert.Equal(t, strings.Repeat(string(rune(blank)), 4)+"\n"+strings.Repeat(string(rune(blank)), 4)+"\n", c.String())

	c.Set(0, 0)
	c.Set(1, 3)
	assert.Equal(t, rune(blank|0x1|0x80), c.Grid[0][0])

	c.Set(-1, 0)
	c.Set(100, 100)
	c.DrawLine(0, 7, 7, 7)
	for col := 0; col < 4; col++ {
		assert.NotZero(t, c.Grid[1][col]&0x40, "bottom row dot in column %d", col)
	}

	c.Clear()
	assert.Equal(t, rune(blank), c.Grid[0][0])
}

func TestDrawProfileClimbsToTheRight(t *testing.T) {
	c := NewCanvas(10, 2)
	c.DrawProfile([]float64{0, 10, 20, 30})
	assert.NotZero(t, c.Grid[1][0], "start sits at the bottom")
	assert.NotZero(t, c.Grid[0][9], "summit sits at the top")
	assert.Equal(t, rune(blank), c.Grid[0][0])
}

func TestCourseHeights(t *testing.T) {
	c := course.MustNew(course.Segment{Length: 1}, course.Segment{Length: 1, Gradient: 0.05})
	h := CourseHeights(c, 3)
	assert.InDeltaSlice(t, []float64{0, 0, 50}, h, 1e-9)

	h = CourseHeights(gradientOnly{}, 3)
	assert.InDeltaSlice(t, []float64{0, 20, 40}, h, 1e-9)
}

type gradientOnly struct{}

func (gradientOnly) GradientAt(float64) float64 { return 0.02 }
func (gradientOnly) TotalDistance() float64     { return 2 }
func (gradientOnly) Buckets() []int             { return []int{2} }

func TestTrackRow(t *testing.T) {
	mk := func(name string) *sim.Rider {
		rc, err := config.RiderPreset("tt", name)
		require.NoError(t, err)
		r, err := sim.NewRider(rc, sim.DefaultTunables().DraftFactor)
		require.NoError(t, err)
		return r
	}
	row := trackRow([]*sim.Rider{mk("alice"), mk("bob")}, 10, 5)
	assert.Equal(t, "2····", row)

	row = trackRow([]*sim.Rider{mk("alice")}, 10, 5)
	assert.Equal(t, "a····", row)
}

func TestFuelBarAndSparkline(t *testing.T) {
	assert.Equal(t, "█████░░░░░", fuelBar(50, 10))
	assert.Equal(t, "░░░░░░░░░░", fuelBar(-40, 10))
	assert.Equal(t, "██████████", fuelBar(130, 10))

	s := sparkline([]float64{1, 2, 3, 4}, 3)
	assert.Equal(t, 3, utf8.RuneCountInString(s))
	assert.Equal(t, "▁▄█", s)
	assert.Equal(t, "───", sparkline(nil, 3))
	assert.Equal(t, 30, utf8.RuneCountInString(separator(30)))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
}

func TestThemes(t *testing.T) {
	assert.Equal(t, ThemeMountain, GetTheme("mountain"))
	assert.Equal(t, ThemeClassic, GetTheme("nope"))
	assert.Equal(t, ThemeMountain, ThemeClassic.next())
	assert.Equal(t, ThemeClassic, ThemeMinimal.next())
	assert.Len(t, ThemeNames(), len(Themes))
}

func TestModelTicksTheRace(t *testing.T) {
	m := newLive(t, WithStride(30))
	require.NotNil(t, m.Init())

	m = update(t, m, TickMsg(time.Now()))
	assert.Equal(t, 30, m.Race().Ticks())

	m = update(t, m, key(" "))
	m = update(t, m, TickMsg(time.Now()))
	assert.Equal(t, 30, m.Race().Ticks(), "paused")

	m = update(t, m, key(" "))
	m = update(t, m, key("+"))
	m = update(t, m, TickMsg(time.Now()))
	assert.Equal(t, 90, m.Race().Ticks())

	m = update(t, m, key("r"))
	assert.Equal(t, 0, m.Race().Ticks())
	assert.NoError(t, m.Err())
}

func TestModelRunsToTheFinish(t *testing.T) {
	m, err := NewModel(func() (*race.Manager, error) {
		rc, err := config.RiderPreset("tt", "solo")
		if err != nil {
			return nil, err
		}
		return race.New(course.MustNew(course.Segment{Length: 1}), []sim.RiderConfig{rc})
	}, "short", WithStride(maxStride))
	require.NoError(t, err)

	for i := 0; i < 10 && !m.Race().Finished(); i++ {
		m = update(t, m, TickMsg(time.Now()))
	}
	require.True(t, m.Race().Finished())
	assert.Contains(t, m.View(), "FINISHED")
}

func TestModelRiderControls(t *testing.T) {
	m := newLive(t)
	r := m.selectedRider()
	require.NotNil(t, r)
	before := r.Effort()

	m = update(t, m, key("e"))
	assert.InDelta(t, before-effortStep, r.Effort(), 1e-9)
	m = update(t, m, key("a"))
	assert.InDelta(t, before, r.Effort(), 1e-9)

	coop := r.Cooperating()
	m = update(t, m, key("c"))
	assert.Equal(t, !coop, r.Cooperating())

	m = update(t, m, key("j"))
	assert.Equal(t, 1, m.selected)
	m = update(t, m, key("k"))
	m = update(t, m, key("k"))
	assert.Equal(t, 0, m.selected)
}

func TestModelBridgeAndDrop(t *testing.T) {
	m := newLive(t, WithStride(60))
	m = update(t, m, TickMsg(time.Now()))

	m = update(t, m, key("j"))
	r := m.selectedRider()
	ahead := m.Race().StageFinishOrder()[0]
	m = update(t, m, key("g"))
	require.NoError(t, m.Err())
	require.NotNil(t, r.Group())
	assert.Same(t, ahead.Group(), r.Group())

	m = update(t, m, key("d"))
	require.NoError(t, m.Err())
	assert.Nil(t, r.Group())
}

func TestModelView(t *testing.T) {
	m := newLive(t, WithStride(120), WithTheme("retro"))
	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})

	v := m.View()
	assert.Contains(t, v, "HILLY-PACELINE")
	assert.Contains(t, v, "RACING x120")
	for _, r := range m.Race().Riders() {
		assert.Contains(t, v, truncate(r.Name(), 12))
	}
	assert.Contains(t, v, "power (W)")

	m = update(t, m, key("?"))
	assert.Contains(t, m.View(), "restart the race")
}

func TestPicker(t *testing.T) {
	p := newPicker(WithStride(10))
	require.NotEmpty(t, p.presets)
	assert.Contains(t, p.View(), "PELOTON")

	next, _ := p.Update(key("j"))
	p = next.(picker)
	assert.Equal(t, 1, p.cursor)

	next, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = next.(picker)
	require.NoError(t, p.err)
	assert.Equal(t, stateRace, p.state)
	assert.NotNil(t, cmd)

	next, _ = p.Update(TickMsg(time.Now()))
	p = next.(picker)
	assert.Equal(t, 10, p.live.Race().Ticks())

	next, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	p = next.(picker)
	assert.Equal(t, stateMenu, p.state)
}

func TestPresetBuilderUnknown(t *testing.T) {
	_, err := presetBuilder("nope")()
	assert.ErrorIs(t, err, config.ErrUnknownPreset)
}
