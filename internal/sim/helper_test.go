package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var anchorDurations = []float64{2, 5, 60, 300, 1200, 2700, 10800}

func curve(powers ...float64) []Anchor {
	out := make([]Anchor, len(powers))
	for i, p := range powers {
		out[i] = Anchor{Duration: anchorDurations[i], Power: p}
	}
	return out
}

func ttConfig() RiderConfig {
	return RiderConfig{
		Name: "tt", Weight: 70, FlatAbility: 0.88, ClimbingAbility: 0.2, DescendingAbility: 0.5,
		Acceleration: 40, Curve: curve(1200, 1000, 630, 535, 460, 400, 330),
	}
}

func sprinterConfig() RiderConfig {
	return RiderConfig{
		Name: "sprinter", Weight: 90, FlatAbility: 0.78, ClimbingAbility: 0.1, DescendingAbility: 0.7,
		Acceleration: 800, Curve: curve(1600, 1440, 690, 456, 384, 320, 300),
	}
}

func climberConfig() RiderConfig {
	return RiderConfig{
		Name: "climber", Weight: 60, FlatAbility: 0.72, ClimbingAbility: 1.6, DescendingAbility: 0.6,
		Acceleration: 30, Curve: curve(1100, 900, 555, 455, 415, 390, 330),
	}
}

func newTestRider(t *testing.T, cfg RiderConfig, buckets ...int) *Rider {
	t.Helper()
	r, err := NewRider(cfg, DefaultTunables().DraftFactor)
	require.NoError(t, err)
	if len(buckets) == 0 {
		buckets = []int{0}
	}
	r.Model().BuildTables(buckets)
	return r
}

type flatRoad float64

func (f flatRoad) GradientAt(float64) float64 { return 0 }
func (f flatRoad) TotalDistance() float64     { return float64(f) }
