package sim

import (
	"fmt"
	"math"
)

// RiderConfig is the literal record a rider is built from.
type RiderConfig struct {
	Name              string   `yaml:"name" json:"name"`
	Weight            float64  `yaml:"weight" json:"weight"` // kg
	FlatAbility       float64  `yaml:"flat" json:"flat"`
	ClimbingAbility   float64  `yaml:"climb" json:"climb"`
	DescendingAbility float64  `yaml:"descend" json:"descend"`
	Acceleration      float64  `yaml:"acceleration" json:"acceleration"` // watts per tick
	Curve             []Anchor `yaml:"curve" json:"curve"`

	// Effort is the starting effort fraction; zero means full effort.
	Effort float64 `yaml:"effort,omitempty" json:"effort,omitempty"`
	// Passive riders sit in a group without sharing the work.
	Passive bool `yaml:"passive,omitempty" json:"passive,omitempty"`
	// TimeInFrontPercent stretches this rider's turns at the front of a
	// rotating paceline. Values at or below 100 keep the normal turn.
	TimeInFrontPercent float64 `yaml:"time_in_front_percent,omitempty" json:"time_in_front_percent,omitempty"`

	Penalty RedzonePenalty `yaml:"-" json:"-"`
}

func (c RiderConfig) validateBody() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidRider)
	case !(c.Weight > 0) || math.IsInf(c.Weight, 0):
		return fmt.Errorf("%w: %s: weight %v", ErrInvalidRider, c.Name, c.Weight)
	case !(c.Acceleration > 0):
		return fmt.Errorf("%w: %s: acceleration %v", ErrInvalidRider, c.Name, c.Acceleration)
	case c.FlatAbility < 0 || c.ClimbingAbility < 0 || c.DescendingAbility < 0:
		return fmt.Errorf("%w: %s: abilities must not be negative", ErrInvalidRider, c.Name)
	case c.Effort < 0:
		return fmt.Errorf("%w: %s: effort %v", ErrInvalidRider, c.Name, c.Effort)
	}
	return nil
}

// Rider is one competitor. Its race state is written only by Step and the
// effort mutators; group and orderInGroup are written only by the owning
// group.
type Rider struct {
	cfg     RiderConfig
	model   *PowerModel
	draft   float64
	penalty RedzonePenalty

	distance     float64
	elapsed      float64
	power        float64
	speed        float64
	fuel         float64
	effort       float64
	cooperating  bool
	finished     bool
	finishTime   float64
	checkpoints  map[int]float64
	powerSeconds float64
	spent        float64
	recovered    float64

	group        Group
	orderInGroup int
}

// NewRider validates the configuration and builds the rider's power model.
// draftFactor is the power discount applied while drafting.
func NewRider(cfg RiderConfig, draftFactor float64) (*Rider, error) {
	m, err := NewPowerModel(cfg)
	if err != nil {
		return nil, err
	}
	if draftFactor <= 0 || draftFactor > 1 {
		draftFactor = DefaultTunables().DraftFactor
	}
	cfg.Curve = append([]Anchor(nil), cfg.Curve...)
	r := &Rider{cfg: cfg, model: m, draft: draftFactor, penalty: cfg.Penalty}
	if r.penalty == nil {
		r.penalty = DefaultRedzone
	}
	r.Reset()
	return r, nil
}

// Reset reinitializes transient race state and keeps the configuration.
// Group membership is left to the caller.
func (r *Rider) Reset() {
	r.distance = 0
	r.elapsed = 0
	r.power = 0
	r.speed = 0
	r.fuel = r.model.maxFuel
	r.cooperating = !r.cfg.Passive
	r.finished = false
	r.finishTime = 0
	r.checkpoints = make(map[int]float64)
	r.powerSeconds = 0
	r.spent = 0
	r.recovered = 0
	r.effort = 1
	if r.cfg.Effort > 0 {
		r.SetEffort(Fraction(r.cfg.Effort))
	}
}

func (r *Rider) Name() string        { return r.cfg.Name }
func (r *Rider) Config() RiderConfig { return r.cfg }
func (r *Rider) Model() *PowerModel  { return r.model }

func (r *Rider) Distance() float64 { return r.distance }
func (r *Rider) Time() float64     { return r.elapsed }
func (r *Rider) Power() float64    { return r.power }

// Speed is the distance covered per second during the last tick, in km.
func (r *Rider) Speed() float64    { return r.speed }
func (r *Rider) SpeedKPH() float64 { return r.speed * 3600 }

func (r *Rider) Fuel() float64    { return r.fuel }
func (r *Rider) MaxFuel() float64 { return r.model.maxFuel }

func (r *Rider) FuelPercent() float64 {
	return r.fuel / r.model.maxFuel * 100
}

func (r *Rider) InRedzone() bool { return r.fuel < 0 }

// Spent and Recovered are the cumulative fuel drawn and credited back.
func (r *Rider) Spent() float64     { return r.spent }
func (r *Rider) Recovered() float64 { return r.recovered }

func (r *Rider) AveragePower() float64 {
	if r.elapsed == 0 {
		return 0
	}
	return r.powerSeconds / r.elapsed
}

func (r *Rider) Finished() bool      { return r.finished }
func (r *Rider) FinishTime() float64 { return r.finishTime }

// MarkFinished puts the rider exactly on the line at total and freezes the
// finish time. The race manager calls it once the rider is within
// FinishTolerance of the line.
func (r *Rider) MarkFinished(total float64) {
	if r.finished {
		return
	}
	r.distance = math.Max(r.distance, total)
	r.finished = true
	r.finishTime = r.elapsed
}

// TimeAt returns the race time at which the rider crossed km marker k.
func (r *Rider) TimeAt(k int) (float64, bool) {
	t, ok := r.checkpoints[k]
	return t, ok
}

func (r *Rider) Cooperating() bool { return r.cooperating }

// SetCooperating toggles whether the rider shares the work. Inside a group
// the ranks are recomputed right away.
func (r *Rider) SetCooperating(on bool) {
	if r.cooperating == on {
		return
	}
	r.cooperating = on
	if r.group != nil {
		r.group.reorder()
	}
}

func (r *Rider) Group() Group      { return r.group }
func (r *Rider) OrderInGroup() int { return r.orderInGroup }
func (r *Rider) TimeInFrontPercent() float64 {
	if r.cfg.TimeInFrontPercent <= 100 {
		return 100
	}
	return r.cfg.TimeInFrontPercent
}

// IsDrafting reports whether the rider is sheltered behind a group leader.
func (r *Rider) IsDrafting() bool {
	return r.group != nil && r.group.Leader() != r
}

// DistanceFromPower is the one-tick distance at power p. A drafting rider
// covers the ground of p divided by the draft factor.
func (r *Rider) DistanceFromPower(p, g float64) float64 {
	if r.IsDrafting() {
		p /= r.draft
	}
	return r.model.DistanceFromPower(p, g)
}

// PowerForDistance looks up the wattage that covers d in one tick at
// gradient g, ignoring drafting.
func (r *Rider) PowerForDistance(d, g float64) (float64, error) {
	p, err := r.model.PowerForDistance(d, g)
	if le, ok := err.(*LookupError); ok {
		le.Rider = r.cfg.Name
	}
	return p, err
}

// Effort is a power intent: a Fraction of the rider's maximum or explicit
// Watts.
type Effort interface {
	fraction(maxPower float64) float64
}

type (
	Fraction float64
	Watts    float64
)

func (f Fraction) fraction(float64) float64 { return float64(f) }
func (w Watts) fraction(maxPower float64) float64 {
	return float64(w) / maxPower
}

// SetEffort sets the rider's power intent. Non-positive efforts fall back to
// MinEffort and nothing above the maximum anchor is requested.
func (r *Rider) SetEffort(e Effort) {
	f := e.fraction(r.model.maxPower)
	if !(f > 0) {
		f = MinEffort
	}
	r.effort = math.Min(f, 1)
}

func (r *Rider) Effort() float64 { return r.effort }

func (r *Rider) DesiredPower() float64 {
	return r.model.maxPower * r.effort
}

// Step advances the rider by one tick on gradient g. toFinish is the
// remaining course distance; a tick that would pass the line is cut short
// and only the fraction of the second needed is added to the clock.
func (r *Rider) Step(g, toFinish float64) {
	want := r.DesiredPower()
	if r.fuel <= 0 {
		want = math.Min(want, r.model.recovery)
	}
	if r.power <= want {
		r.power = math.Min(r.power+r.cfg.Acceleration, want)
	} else {
		r.power = want
	}

	d := r.DistanceFromPower(r.power, g)
	interval := TickSeconds
	if toFinish < 0 {
		toFinish = 0
	}
	if d >= toFinish-FinishTolerance {
		if d > 0 {
			interval = math.Min(TickSeconds, TickSeconds*toFinish/d)
		}
		d = toFinish
	}

	prev := r.distance
	r.distance += d
	if interval > 0 {
		r.speed = d / interval
	} else {
		r.speed = 0
	}
	r.recordCheckpoints(prev, interval)

	r.updateFuel(interval)
	r.powerSeconds += r.power * interval
	r.elapsed += interval
}

func (r *Rider) recordCheckpoints(prev, interval float64) {
	if r.distance <= prev {
		return
	}
	for k := int(math.Floor(prev)) + 1; float64(k) <= r.distance; k++ {
		if _, ok := r.checkpoints[k]; ok {
			continue
		}
		frac := (float64(k) - prev) / (r.distance - prev)
		r.checkpoints[k] = r.elapsed + interval*frac
	}
}
