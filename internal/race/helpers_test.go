package race

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/peloton/internal/course"
	"github.com/san-kum/peloton/internal/sim"
)

var anchorDurations = []float64{2, 5, 60, 300, 1200, 2700, 10800}

func curve(powers ...float64) []sim.Anchor {
	out := make([]sim.Anchor, len(powers))
	for i, p := range powers {
		out[i] = sim.Anchor{Duration: anchorDurations[i], Power: p}
	}
	return out
}

func ttRider(name string) sim.RiderConfig {
	return sim.RiderConfig{
		Name: name, Weight: 70, FlatAbility: 0.88, ClimbingAbility: 0.2, DescendingAbility: 0.5,
		Acceleration: 40, Curve: curve(1200, 1000, 630, 535, 460, 400, 330),
	}
}

func sprinterRider(name string) sim.RiderConfig {
	return sim.RiderConfig{
		Name: name, Weight: 90, FlatAbility: 0.78, ClimbingAbility: 0.1, DescendingAbility: 0.7,
		Acceleration: 800, Curve: curve(1600, 1440, 690, 456, 384, 320, 300),
	}
}

func flat(km float64) *course.Course {
	return course.MustNew(course.Segment{Length: km})
}

func hilly95() *course.Course {
	return course.MustNew(
		course.Segment{Length: 20},
		course.Segment{Length: 5, Gradient: 0.08},
		course.Segment{Length: 20},
		course.Segment{Length: 5, Gradient: 0.08},
		course.Segment{Length: 20},
		course.Segment{Length: 5, Gradient: 0.08},
		course.Segment{Length: 20},
	)
}

func newRace(t *testing.T, c Course, cfgs []sim.RiderConfig, opts ...Option) *Manager {
	t.Helper()
	m, err := New(c, cfgs, opts...)
	require.NoError(t, err)
	return m
}

func mustRider(t *testing.T, m *Manager, name string) *sim.Rider {
	t.Helper()
	r, err := m.Rider(name)
	require.NoError(t, err)
	return r
}

// requireConserved checks that every grouped rider sits in exactly one of
// the manager's groups and that group handles agree with member lists.
func requireConserved(t *testing.T, m *Manager) {
	t.Helper()
	seen := map[*sim.Rider]sim.Group{}
	for _, g := range m.Groups() {
		require.GreaterOrEqual(t, g.Size(), 2, "group %d should have been disbanded", g.ID())
		for _, r := range g.Members() {
			prev, dup := seen[r]
			require.False(t, dup, "%s in groups %d and %d", r.Name(), g.ID(), idOf(prev))
			seen[r] = g
			require.Equal(t, g, r.Group())
		}
	}
	for _, r := range m.Riders() {
		if _, ok := seen[r]; !ok {
			require.Nil(t, r.Group(), "%s has a stale group handle", r.Name())
		}
	}
}

func idOf(g sim.Group) int {
	if g == nil {
		return 0
	}
	return g.ID()
}

// slopedCourse reports a gradient its bucket list does not cover.
type slopedCourse struct{}

func (slopedCourse) GradientAt(float64) float64 { return 0.05 }
func (slopedCourse) TotalDistance() float64     { return 10 }
func (slopedCourse) Buckets() []int             { return []int{0} }
