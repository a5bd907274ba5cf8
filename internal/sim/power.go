package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/peloton/internal/physics"
)

// Anchor is one point of a power curve: the highest average power a rider
// can hold for Duration seconds.
type Anchor struct {
	Duration float64 `yaml:"duration" json:"duration"`
	Power    float64 `yaml:"power" json:"power"`
}

// RedzonePenalty scales recovery while the tank is in deficit. It receives
// the deficit as a positive number and returns a factor in (0, 1].
type RedzonePenalty func(deficit float64) float64

// DefaultRedzone is a fitted power law that deepens fatigue as the deficit
// grows.
func DefaultRedzone(deficit float64) float64 {
	if deficit <= 0 {
		return 1
	}
	return math.Min(1, 1.223022*math.Pow(deficit, -0.1667914))
}

// NoPenalty leaves recovery untouched in the redzone.
func NoPenalty(float64) float64 { return 1 }

// PowerModel turns power into distance and fuel for one rider. It is built
// once from the rider's configuration and never mutated afterwards, except
// for the lookup tables added by BuildTables.
type PowerModel struct {
	weight  float64
	flat    float64
	climb   float64
	descend float64

	maxPower    float64
	recovery    float64
	minDuration float64
	maxDuration float64
	maxFuel     float64

	logDuration *physics.Monotone
	envelope    []float64
	tables      map[int]*PowerTable
}

func NewPowerModel(cfg RiderConfig) (*PowerModel, error) {
	if err := cfg.validateBody(); err != nil {
		return nil, err
	}
	curve, err := sortedCurve(cfg.Curve)
	if err != nil {
		return nil, err
	}

	first, last := curve[0], curve[len(curve)-1]
	m := &PowerModel{
		weight:      cfg.Weight,
		flat:        cfg.FlatAbility,
		climb:       cfg.ClimbingAbility,
		descend:     cfg.DescendingAbility,
		maxPower:    first.Power,
		recovery:    last.Power,
		minDuration: first.Duration,
		maxDuration: last.Duration,
		tables:      make(map[int]*PowerTable),
	}

	// interpolate log(duration) against ascending power
	n := len(curve)
	xs, ys := make([]float64, n), make([]float64, n)
	for i, a := range curve {
		xs[n-1-i] = a.Power
		ys[n-1-i] = math.Log(a.Duration)
		m.maxFuel = math.Max(m.maxFuel, a.Duration*(a.Power-m.recovery))
	}
	if m.logDuration, err = physics.NewMonotone(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCurve, err)
	}

	m.buildEnvelope()
	return m, nil
}

func sortedCurve(anchors []Anchor) ([]Anchor, error) {
	if len(anchors) < 2 {
		return nil, fmt.Errorf("%w: need at least two anchors, got %d", ErrInvalidCurve, len(anchors))
	}
	curve := append([]Anchor(nil), anchors...)
	sort.Slice(curve, func(i, j int) bool { return curve[i].Duration < curve[j].Duration })

	for i, a := range curve {
		if !(a.Duration > 0) || !(a.Power > 0) || math.IsInf(a.Duration, 0) || math.IsInf(a.Power, 0) {
			return nil, fmt.Errorf("%w: anchor %v must be positive", ErrInvalidCurve, a)
		}
		if i == 0 {
			continue
		}
		if a.Duration == curve[i-1].Duration {
			return nil, fmt.Errorf("%w: duplicate duration %vs", ErrInvalidCurve, a.Duration)
		}
		if a.Power >= curve[i-1].Power {
			return nil, fmt.Errorf("%w: power must fall as duration grows (%vs: %vW after %vW)",
				ErrInvalidCurve, a.Duration, a.Power, curve[i-1].Power)
		}
	}
	return curve, nil
}

func (m *PowerModel) MaxPower() float64      { return m.maxPower }
func (m *PowerModel) RecoveryPower() float64 { return m.recovery }
func (m *PowerModel) MaxFuel() float64       { return m.maxFuel }

// DurationForPower returns how many seconds the power can be sustained.
func (m *PowerModel) DurationForPower(p float64) float64 {
	switch {
	case p >= m.maxPower:
		return m.minDuration
	case p <= m.recovery:
		return m.maxDuration
	}
	return math.Exp(m.logDuration.At(p))
}

// rawMultiplier is the multiplier that drains a full tank in exactly
// DurationForPower(p) seconds while recovery keeps flowing.
func (m *PowerModel) rawMultiplier(p float64) float64 {
	d := m.DurationForPower(p)
	return math.Max(1, (m.maxFuel+m.recovery*d)/(d*p))
}

// buildEnvelope tabulates the running maximum of rawMultiplier per integer
// watt above recovery power.
func (m *PowerModel) buildEnvelope() {
	top := int(math.Ceil(m.maxPower))
	m.envelope = make([]float64, top+1)
	best := 1.0
	for w := range m.envelope {
		if p := float64(w); p > m.recovery {
			best = math.Max(best, m.rawMultiplier(p))
		}
		m.envelope[w] = best
	}
}

// MultiplierForPower returns the fuel cost per watt at power p. Riding at or
// below recovery power costs exactly its wattage; above it the cost is
// non-decreasing in power and constant beyond the highest anchor.
func (m *PowerModel) MultiplierForPower(p float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p <= m.recovery:
		return 1
	}
	top := len(m.envelope) - 1
	if p >= float64(top) {
		return m.envelope[top]
	}
	i := int(p)
	f := p - float64(i)
	return m.envelope[i] + (m.envelope[i+1]-m.envelope[i])*f
}

// DistanceFromPower solves the force balance for one tick at power p on
// gradient g and apportions the speed between flat, climbing and descending
// ability. The result is in km and never negative or NaN.
func (m *PowerModel) DistanceFromPower(p, g float64) float64 {
	a := WindResistance * FrontalArea * AirDensity
	c := RollingResistance*m.weight + Gravity*g*m.weight

	s, ok := physics.Largest(physics.SolveCubic(a, 0, c, -p))
	if !ok || s <= 0 {
		return 0
	}
	dist := s * TickSeconds / 1000

	ang := math.Max(-math.Pi/2, math.Min(math.Pi/2, g*GradientAngle))
	rise, run := math.Sin(ang), math.Cos(ang)

	total := dist * run * (0.5 + 0.5*m.flat)
	switch {
	case rise > 0:
		total += dist * rise * (0.2 + 0.8*m.climb)
	case rise < 0:
		total += dist * -math.Sin(ang/2) * (0.4 + 0.6*m.descend)
	}
	return total
}

// BuildTables precomputes a power table for every gradient bucket.
func (m *PowerModel) BuildTables(buckets []int) {
	for _, b := range buckets {
		if _, ok := m.tables[b]; ok {
			continue
		}
		m.tables[b] = newPowerTable(m, float64(b)/100)
	}
}

func (m *PowerModel) Table(bucket int) (*PowerTable, bool) {
	t, ok := m.tables[bucket]
	return t, ok
}
