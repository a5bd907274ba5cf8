package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiderAcceleration(t *testing.T) {
	r := newTestRider(t, ttConfig())

	r.Step(0, 100)
	assert.Equal(t, 40.0, r.Power())
	r.Step(0, 100)
	r.Step(0, 100)
	assert.Equal(t, 120.0, r.Power())

	// slowing down is instant
	r.SetEffort(Watts(60))
	r.Step(0, 100)
	assert.InDelta(t, 60.0, r.Power(), 1e-9)
}

func TestRiderSetEffort(t *testing.T) {
	r := newTestRider(t, ttConfig())

	tests := []struct {
		name     string
		effort   Effort
		expected float64
	}{
		{"fraction", Fraction(0.5), 0.5},
		{"watts", Watts(600), 0.5},
		{"zero fraction", Fraction(0), MinEffort},
		{"negative watts", Watts(-10), MinEffort},
		{"above max", Watts(5000), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.SetEffort(tt.effort)
			assert.InDelta(t, tt.expected, r.Effort(), 1e-12)
		})
	}
}

func TestRiderFinishClamp(t *testing.T) {
	r := newTestRider(t, sprinterConfig())
	const total = 0.5

	prev := 0.0
	for i := 0; i < 1000 && total-r.Distance() > FinishTolerance; i++ {
		r.Step(0, total-r.Distance())
		require.GreaterOrEqual(t, r.Distance(), prev)
		require.LessOrEqual(t, r.Distance(), total)
		prev = r.Distance()
	}
	r.MarkFinished(total)

	assert.Equal(t, total, r.Distance())
	assert.True(t, r.Finished())
	assert.NotEqual(t, math.Trunc(r.Time()), r.Time(), "last tick should be a fraction of a second")
	assert.Equal(t, r.Time(), r.FinishTime())
}

func TestRiderCheckpoints(t *testing.T) {
	r := newTestRider(t, ttConfig())
	for r.Distance() < 2.5 {
		r.Step(0, 10)
	}

	t1, ok := r.TimeAt(1)
	require.True(t, ok)
	t2, ok := r.TimeAt(2)
	require.True(t, ok)
	_, ok = r.TimeAt(3)
	assert.False(t, ok)

	assert.Greater(t, t1, 0.0)
	assert.Greater(t, t2, t1)
	assert.Less(t, t2, r.Time())
}

func TestRiderFuelAccounting(t *testing.T) {
	r := newTestRider(t, sprinterConfig())

	for i := 0; i < 1800; i++ {
		r.Step(0, 1000)
		require.LessOrEqual(t, r.Fuel(), r.MaxFuel())
		assert.InDelta(t, r.Spent()-r.Recovered(), r.MaxFuel()-r.Fuel(), 1e-6*r.MaxFuel())
	}
	assert.True(t, r.InRedzone(), "half an hour at full gas should empty the tank")
}

func TestRiderExhausted(t *testing.T) {
	r := newTestRider(t, sprinterConfig())
	r.fuel = -100

	for i := 0; i < 5; i++ {
		r.Step(0, 1000)
		assert.LessOrEqual(t, r.Power(), r.Model().RecoveryPower())
	}
}

func TestRiderRecoversBelowThreshold(t *testing.T) {
	r := newTestRider(t, ttConfig())
	r.fuel = r.MaxFuel() / 2
	r.SetEffort(Watts(150))

	before := r.Fuel()
	for i := 0; i < 60; i++ {
		r.Step(0, 1000)
	}
	assert.Greater(t, r.Fuel(), before)
	assert.LessOrEqual(t, r.Fuel(), r.MaxFuel())
}

func TestRiderAveragePower(t *testing.T) {
	cfg := ttConfig()
	cfg.Acceleration = 2000
	r := newTestRider(t, cfg)
	r.SetEffort(Watts(300))
	for i := 0; i < 10; i++ {
		r.Step(0, 1000)
	}
	assert.InDelta(t, 300, r.AveragePower(), 1e-9)
}

func TestRiderReset(t *testing.T) {
	cfg := ttConfig()
	cfg.Effort = 0.4
	r := newTestRider(t, cfg)
	assert.InDelta(t, 0.4, r.Effort(), 1e-12)

	r.SetEffort(Fraction(1))
	for i := 0; i < 30; i++ {
		r.Step(0, 1000)
	}
	r.MarkFinished(r.Distance())
	r.Reset()

	assert.Equal(t, 0.0, r.Distance())
	assert.Equal(t, 0.0, r.Time())
	assert.Equal(t, r.MaxFuel(), r.Fuel())
	assert.False(t, r.Finished())
	assert.InDelta(t, 0.4, r.Effort(), 1e-12)
	_, ok := r.TimeAt(1)
	assert.False(t, ok)
}

func TestDraftingSavesFuel(t *testing.T) {
	cfg := ttConfig()
	cfg.Acceleration = 2000
	solo := newTestRider(t, cfg)
	leader := newTestRider(t, cfg)
	follower := newTestRider(t, cfg)

	g, err := NewBasicGroup(1, 1000, DefaultTunables(), leader, follower)
	require.NoError(t, err)
	require.Equal(t, leader, g.Leader())
	require.True(t, follower.IsDrafting())
	require.False(t, solo.IsDrafting())

	solo.SetEffort(Watts(500))
	follower.SetEffort(Watts(500 * DefaultTunables().DraftFactor))
	for i := 0; i < 600; i++ {
		solo.Step(0, 1000)
		follower.Step(0, 1000)
	}

	assert.InDelta(t, solo.Distance(), follower.Distance(), 1e-9)
	assert.Less(t, follower.Spent(), solo.Spent())
	assert.Greater(t, follower.Fuel(), solo.Fuel())
}

func TestDraftingDiscountsFuelAtEqualPower(t *testing.T) {
	cfg := ttConfig()
	cfg.Acceleration = 2000
	solo := newTestRider(t, cfg)
	leader := newTestRider(t, cfg)
	follower := newTestRider(t, cfg)
	_, err := NewBasicGroup(1, 1000, DefaultTunables(), leader, follower)
	require.NoError(t, err)
	require.True(t, follower.IsDrafting())

	solo.SetEffort(Watts(500))
	follower.SetEffort(Watts(500))
	solo.Step(0, 1000)
	follower.Step(0, 1000)

	require.InDelta(t, solo.Power(), follower.Power(), 1e-9)
	assert.InDelta(t, DefaultTunables().DraftFactor*solo.Spent(), follower.Spent(), 1e-9)
	assert.Greater(t, follower.Distance(), solo.Distance())
	assert.InDelta(t, follower.Spent()-follower.Recovered(), follower.MaxFuel()-follower.Fuel(), 1e-9)
}
