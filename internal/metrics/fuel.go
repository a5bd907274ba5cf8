package metrics

import "math"

// RedzoneTime counts seconds with an empty tank.
type RedzoneTime struct {
	name    string
	seconds float64
}

func NewRedzoneTime() *RedzoneTime {
	return &RedzoneTime{name: "redzone_s"}
}

func (r *RedzoneTime) Name() string { return r.name }

func (r *RedzoneTime) Observe(s Sample) {
	if s.FuelPercent < 0 {
		r.seconds += s.Interval
	}
}

func (r *RedzoneTime) Value() float64 { return r.seconds }
func (r *RedzoneTime) Reset()         { r.seconds = 0 }

// MinFuel is the lowest fuel percentage seen.
type MinFuel struct {
	name string
	min  float64
	seen bool
}

func NewMinFuel() *MinFuel {
	return &MinFuel{name: "min_fuel_pct"}
}

func (m *MinFuel) Name() string { return m.name }

func (m *MinFuel) Observe(s Sample) {
	if !m.seen {
		m.min, m.seen = s.FuelPercent, true
		return
	}
	m.min = math.Min(m.min, s.FuelPercent)
}

func (m *MinFuel) Value() float64 {
	if !m.seen {
		return 100
	}
	return m.min
}

func (m *MinFuel) Reset() {
	m.min = 0
	m.seen = false
}
