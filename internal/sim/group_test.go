package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func riders(t *testing.T, n int, cfg RiderConfig) []*Rider {
	t.Helper()
	out := make([]*Rider, n)
	for i := range out {
		c := cfg
		c.Name = cfg.Name + string(rune('a'+i))
		out[i] = newTestRider(t, c)
	}
	return out
}

func ranks(rs []*Rider) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.OrderInGroup()
	}
	return out
}

func TestGroupMembership(t *testing.T) {
	rs := riders(t, 4, ttConfig())
	tun := DefaultTunables()

	g1, err := NewRotatingPaceline(1, 400, tun, rs[0], rs[1], rs[2])
	require.NoError(t, err)
	g2, err := NewBasicGroup(2, 400, tun, rs[3])
	require.NoError(t, err)

	assert.Equal(t, 3, g1.Size())
	assert.Equal(t, []int{0, 1, 2}, ranks(rs[:3]))

	// adding pulls the rider out of its old group
	g2.Add(rs[1])
	assert.False(t, g1.Contains(rs[1]))
	assert.True(t, g2.Contains(rs[1]))
	assert.Equal(t, Group(g2), rs[1].Group())
	assert.Equal(t, []int{0, 1}, ranks([]*Rider{rs[0], rs[2]}))

	// adding twice does not duplicate
	g2.Add(rs[1])
	assert.Equal(t, 2, g2.Size())

	require.NoError(t, g1.Drop(rs[0]))
	assert.Nil(t, rs[0].Group())
	assert.ErrorIs(t, g1.Drop(rs[0]), ErrNotMember)

	g2.Disband()
	assert.Equal(t, 0, g2.Size())
	assert.Nil(t, rs[3].Group())
	assert.Nil(t, rs[1].Group())
}

func TestGroupEmpty(t *testing.T) {
	_, err := NewBasicGroup(1, 300, DefaultTunables())
	assert.ErrorIs(t, err, ErrEmptyGroup)
	_, err = NewRotatingPaceline(1, 300, DefaultTunables())
	assert.ErrorIs(t, err, ErrEmptyGroup)
	_, err = NewPeloton(1, 0, DefaultTunables())
	assert.ErrorIs(t, err, ErrEmptyGroup)
}

func TestGroupEffortMustBePositive(t *testing.T) {
	rs := riders(t, 2, ttConfig())
	for _, watts := range []float64{0, -50, math.NaN(), math.Inf(1)} {
		_, err := NewBasicGroup(1, watts, DefaultTunables(), rs...)
		assert.ErrorIs(t, err, ErrInvalidEffort, "basic %v", watts)
		_, err = NewRotatingPaceline(1, watts, DefaultTunables(), rs...)
		assert.ErrorIs(t, err, ErrInvalidEffort, "paceline %v", watts)
	}
	for _, r := range rs {
		assert.Nil(t, r.Group(), r.Name())
	}

	g, err := NewPeloton(1, 0, DefaultTunables(), rs...)
	require.NoError(t, err)
	assert.Equal(t, DefaultTunables().DefaultPelotonEffort, g.Effort())
}

func TestGroupPassiveRanks(t *testing.T) {
	rs := riders(t, 4, ttConfig())
	rs[1].SetCooperating(false)

	g, err := NewRotatingPaceline(1, 400, DefaultTunables(), rs...)
	require.NoError(t, err)
	assert.Equal(t, 3, g.CooperatingCount())
	assert.Equal(t, []int{0, 3, 1, 2}, ranks(rs))
	assert.True(t, g.Leader().Cooperating())

	rs[1].SetCooperating(true)
	assert.Equal(t, []int{0, 1, 2, 3}, ranks(rs))

	rs[0].SetCooperating(false)
	assert.Equal(t, []int{3, 0, 1, 2}, ranks(rs))
	assert.NotEqual(t, rs[0], g.Leader())
}

func TestGroupLeaderFallback(t *testing.T) {
	rs := riders(t, 2, ttConfig())
	for _, r := range rs {
		r.SetCooperating(false)
	}
	g, err := NewBasicGroup(1, 400, DefaultTunables(), rs...)
	require.NoError(t, err)

	assert.Equal(t, rs[0], g.Leader())
	assert.Positive(t, g.LeaderFallbacks())
}

func leaderRuns(t *testing.T, g Group, ticks int) [][2]int {
	t.Helper()
	var runs [][2]int
	for i := 0; i < ticks; i++ {
		_, err := g.Step(flatRoad(500))
		require.NoError(t, err)
		who := g.Leader().OrderInGroup()
		if n := len(runs); n > 0 && runs[n-1][0] == who {
			runs[n-1][1]++
		} else {
			runs = append(runs, [2]int{who, 1})
		}
	}
	return runs
}

func TestPacelineRotation(t *testing.T) {
	rs := riders(t, 4, ttConfig())
	g, err := NewRotatingPaceline(1, 400, DefaultTunables(), rs...)
	require.NoError(t, err)

	runs := leaderRuns(t, g, 120)
	seen := map[int]bool{}
	for i, run := range runs {
		seen[run[0]] = true
		if i > 0 && i < len(runs)-1 {
			assert.Equal(t, 10, run[1], "turn %d held by rank %d", i, run[0])
		}
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, 4, g.Size(), "nobody should be dropped on the flat")
	assert.Less(t, g.Spread(), 0.04)
}

func TestPacelineExtendedTurn(t *testing.T) {
	cfg := ttConfig()
	rs := riders(t, 4, cfg)
	strong := cfg
	strong.Name = "strong"
	strong.TimeInFrontPercent = 200
	rs[2] = newTestRider(t, strong)

	g, err := NewRotatingPaceline(1, 400, DefaultTunables(), rs...)
	require.NoError(t, err)

	runs := leaderRuns(t, g, 120)
	for i, run := range runs {
		if i == 0 || i == len(runs)-1 {
			continue
		}
		if run[0] == 2 {
			assert.Equal(t, 19, run[1])
		} else {
			assert.Equal(t, 10, run[1])
		}
	}
}

func TestBasicGroupRoundRobin(t *testing.T) {
	rs := riders(t, 3, ttConfig())
	g, err := NewBasicGroup(1, 400, DefaultTunables(), rs...)
	require.NoError(t, err)
	g.SetTimeInFront(5)

	runs := leaderRuns(t, g, 30)
	require.Len(t, runs, 6)
	for i, run := range runs {
		assert.Equal(t, i%3, run[0])
		assert.Equal(t, 5, run[1])
	}
	assert.Less(t, g.Spread(), 0.04)
}

func TestPelotonLeader(t *testing.T) {
	rs := riders(t, 5, ttConfig())
	g, err := NewPeloton(1, 0, DefaultTunables(), rs...)
	require.NoError(t, err)
	assert.Equal(t, DefaultTunables().DefaultPelotonEffort, g.Effort())

	for i := 0; i < 300; i++ {
		_, err := g.Step(flatRoad(500))
		require.NoError(t, err)
		require.Equal(t, rs[0], g.Leader())
	}
	assert.Equal(t, 5, g.Size())
	assert.Greater(t, rs[0].Distance(), rs[4].Distance())

	rs[0].SetCooperating(false)
	assert.Equal(t, rs[1], g.Leader())
}

func TestPelotonFrontFollowsLeader(t *testing.T) {
	bunch := riders(t, 3, ttConfig())
	p, err := NewPeloton(1, 0, DefaultTunables(), bunch...)
	require.NoError(t, err)
	line := riders(t, 3, ttConfig())
	pl, err := NewRotatingPaceline(2, 300, DefaultTunables(), line...)
	require.NoError(t, err)

	for i, d := range []float64{1.0, 0.98, 0.96} {
		bunch[i].distance = d
		line[i].distance = d
	}
	require.Equal(t, bunch[0], p.Leader())

	step := p.Leader().DistanceFromPower(300, 0)
	assert.InDelta(t, 1.0+step, p.front(0), 1e-12, "a peloton aims from its leader's wheel")
	assert.InDelta(t, 0.98+pl.Leader().DistanceFromPower(300, 0), pl.front(0), 1e-12,
		"a paceline aims from the middle of its ring")
}

func TestGroupDropsStraggler(t *testing.T) {
	rs := riders(t, 3, ttConfig())
	g, err := NewRotatingPaceline(1, 400, DefaultTunables(), rs...)
	require.NoError(t, err)

	rs[0].distance = 1.0
	rs[1].distance = 1.01
	rs[2].distance = 0.9

	dropped, err := g.Step(flatRoad(500))
	require.NoError(t, err)
	require.Equal(t, []*Rider{rs[2]}, dropped)
	assert.Nil(t, rs[2].Group())
	assert.Equal(t, 0.9, rs[2].Distance(), "dropped riders are not stepped by the group")
	assert.Equal(t, 2, g.Size())
}

func TestGroupLookupMiss(t *testing.T) {
	rs := riders(t, 2, ttConfig())
	g, err := NewRotatingPaceline(1, 400, DefaultTunables(), rs...)
	require.NoError(t, err)

	_, err = g.Step(steepRoad{})
	assert.ErrorIs(t, err, ErrLookupMiss)
}

type steepRoad struct{}

func (steepRoad) GradientAt(float64) float64 { return 0.1 }
func (steepRoad) TotalDistance() float64     { return 100 }
