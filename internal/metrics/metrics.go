// Package metrics accumulates per-rider race statistics tick by tick.
package metrics

import (
	"sort"

	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

// Sample is what a rider did during one tick.
type Sample struct {
	Interval    float64 // seconds, short on the finishing tick
	Power       float64
	Speed       float64 // km per second
	FuelPercent float64
	Leading     bool // at the front of a group
	Drafting    bool
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Factory builds a fresh metric for one rider.
type Factory func() Metric

func DefaultSet() []Factory {
	return []Factory{
		func() Metric { return NewAveragePower() },
		func() Metric { return NewPeakPower() },
		func() Metric { return NewFrontTime() },
		func() Metric { return NewDraftShare() },
		func() Metric { return NewRedzoneTime() },
		func() Metric { return NewMinFuel() },
	}
}

// Tracker observes a race and keeps one metric set per rider. It
// implements race.Observer.
type Tracker struct {
	factories []Factory
	riders    map[string][]Metric
	last      map[string]float64
}

func NewTracker(factories ...Factory) *Tracker {
	if len(factories) == 0 {
		factories = DefaultSet()
	}
	return &Tracker{
		factories: factories,
		riders:    make(map[string][]Metric),
		last:      make(map[string]float64),
	}
}

func (t *Tracker) OnTick(m *race.Manager) {
	for _, r := range m.Riders() {
		dt := r.Time() - t.last[r.Name()]
		if dt <= 0 {
			continue
		}
		t.last[r.Name()] = r.Time()

		s := sampleOf(r, dt)
		set, ok := t.riders[r.Name()]
		if !ok {
			set = t.newSet()
			t.riders[r.Name()] = set
		}
		for _, metric := range set {
			metric.Observe(s)
		}
	}
}

func sampleOf(r *sim.Rider, dt float64) Sample {
	s := Sample{
		Interval:    dt,
		Power:       r.Power(),
		Speed:       r.Speed(),
		FuelPercent: r.FuelPercent(),
		Drafting:    r.IsDrafting(),
	}
	if g := r.Group(); g != nil {
		s.Leading = g.Leader() == r
	}
	return s
}

func (t *Tracker) newSet() []Metric {
	set := make([]Metric, len(t.factories))
	for i, f := range t.factories {
		set[i] = f()
	}
	return set
}

func (t *Tracker) Reset() {
	t.riders = make(map[string][]Metric)
	t.last = make(map[string]float64)
}

// Values returns the metrics of one rider by name. Riders that have not
// moved yet have no values.
func (t *Tracker) Values(rider string) map[string]float64 {
	set, ok := t.riders[rider]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(set))
	for _, metric := range set {
		out[metric.Name()] = metric.Value()
	}
	return out
}

func (t *Tracker) Riders() []string {
	out := make([]string, 0, len(t.riders))
	for name := range t.riders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Names lists the metric names in the tracker's order.
func (t *Tracker) Names() []string {
	out := make([]string, 0, len(t.factories))
	for _, metric := range t.newSet() {
		out = append(out, metric.Name())
	}
	return out
}
