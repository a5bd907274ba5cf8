package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/peloton/internal/course"
	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

const raceFile = `
name: two-up
course:
  segments:
    - length: 3
    - length: 1
      gradient: 0.04
tunables:
  draft_factor: 0.75
frame_interval: 5
delay: 50ms
riders:
  - name: alice
    preset: tt
    watts: 380
  - name: bob
    preset: sprinter
    passive: true
    redzone: none
  - name: carol
    weight: 64
    flat: 0.8
    climb: 1.2
    descend: 0.5
    acceleration: 50
    curve:
      - {duration: 60, power: 600}
      - {duration: 1200, power: 400}
      - {duration: 3600, power: 320}
groups:
  - kind: basic
    effort: 400
    time_in_front: 5
    members: [alice, bob]
`

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultCourse, cfg.Course.Preset)
	assert.Equal(t, sim.DefaultTunables(), cfg.Tunables)
	assert.Equal(t, DefaultFrameInterval, cfg.FrameInterval)
	assert.Positive(t, cfg.Delay)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(raceFile))
	require.NoError(t, err)

	assert.Equal(t, "two-up", cfg.Name)
	assert.Equal(t, 50*time.Millisecond, cfg.Delay)
	assert.Equal(t, 5, cfg.FrameInterval)
	assert.Equal(t, 0.75, cfg.Tunables.DraftFactor)
	assert.Equal(t, sim.DefaultTunables().DropDistance, cfg.Tunables.DropDistance)

	want := []course.Segment{{Length: 3}, {Length: 1, Gradient: 0.04}}
	if diff := cmp.Diff(want, cfg.Course.Segments); diff != "" {
		t.Errorf("segments (-want +got):\n%s", diff)
	}

	riders, err := cfg.RiderConfigs()
	require.NoError(t, err)
	require.Len(t, riders, 3)

	tt, err := RiderPreset("tt", "alice")
	require.NoError(t, err)
	if diff := cmp.Diff(tt, riders[0]); diff != "" {
		t.Errorf("alice (-want +got):\n%s", diff)
	}
	assert.True(t, riders[1].Passive)
	assert.NotNil(t, riders[1].Penalty)
	assert.Equal(t, 1.0, riders[1].Penalty(1e6))
	assert.Equal(t, 64.0, riders[2].Weight)
	assert.Len(t, riders[2].Curve, 3)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("riders: [oops"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuild(t *testing.T) {
	cfg, err := Parse([]byte(raceFile))
	require.NoError(t, err)

	m, err := Build(cfg)
	require.NoError(t, err)

	assert.Equal(t, 4.0, m.Course().TotalDistance())
	assert.Equal(t, 5, m.FrameInterval())
	require.Len(t, m.Groups(), 1)
	g := m.Groups()[0]
	assert.Equal(t, "basic", g.Kind())
	assert.Equal(t, 5, g.TimeInFront())
	assert.Equal(t, 1, g.CooperatingCount())

	alice, err := m.Rider("alice")
	require.NoError(t, err)
	assert.InDelta(t, 380, alice.DesiredPower(), 1e-9)

	require.NoError(t, m.RunToFinish(context.Background()))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown course", func(c *Config) { c.Course.Preset = "alpe" }, ErrUnknownPreset},
		{"no course", func(c *Config) { c.Course = CourseConfig{} }, ErrInvalidConfig},
		{"bad segment", func(c *Config) { c.Course = CourseConfig{Segments: []course.Segment{{Length: -1}}} }, course.ErrInvalidCourse},
		{"unknown rider preset", func(c *Config) { c.Riders[0].Preset = "rouleur" }, ErrUnknownPreset},
		{"bad redzone", func(c *Config) { c.Riders[0].Redzone = "harsh" }, ErrInvalidConfig},
		{"no riders", func(c *Config) { c.Riders = nil }, race.ErrNoRiders},
		{"unknown kind", func(c *Config) { c.Groups[0].Kind = "echelon" }, race.ErrUnknownKind},
		{"unknown member", func(c *Config) { c.Groups[0].Members = []string{"alice", "dave"} }, race.ErrUnknownRider},
		{"lonely group", func(c *Config) { c.Groups[0].Members = []string{"alice"} }, ErrInvalidConfig},
		{"bad curve", func(c *Config) { c.Riders[2].Curve = c.Riders[2].Curve[:1] }, sim.ErrInvalidCurve},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(raceFile))
			require.NoError(t, err)
			tt.mutate(cfg)
			_, err = Build(cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestElevationCourse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Course = CourseConfig{Elevation: []course.Point{
		{Distance: 0, Elevation: 100},
		{Distance: 2, Elevation: 100},
		{Distance: 3, Elevation: 150},
	}, Step: 0.5}
	c, err := cfg.BuildCourse()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, c.TotalDistance(), 1e-9)
	assert.InDelta(t, 0.05, c.GradientAt(2.5), 1e-9)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.yaml")
	want := GetPreset("breakaway")
	require.NotNil(t, want)

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			m, err := Build(GetPreset(name))
			require.NoError(t, err)
			assert.NotEmpty(t, m.Riders())
		})
	}
}

func TestGetPresetIsCopy(t *testing.T) {
	a := GetPreset("flat-tt")
	a.Riders[0].Watts = 1
	assert.Equal(t, 470.0, GetPreset("flat-tt").Riders[0].Watts)
	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"breakaway", "bunch-sprint", "descent", "flat-tt", "hilly-paceline", "summit-finish"}, ListPresets())
	assert.Equal(t, []string{"climber", "sprinter", "tt"}, ListRiderPresets())
	assert.Equal(t, []string{"descent15", "flat15", "hilly95", "sprint20", "summit20"}, ListCoursePresets())

	_, err := RiderPreset("nope", "x")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestRiderPresetIsCopy(t *testing.T) {
	a, err := RiderPreset("tt", "a")
	require.NoError(t, err)
	a.Curve[0].Power = 1
	b, err := RiderPreset("tt", "b")
	require.NoError(t, err)
	assert.Equal(t, 1200.0, b.Curve[0].Power)
}
