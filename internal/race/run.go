package race

import (
	"context"
	"time"

	"github.com/san-kum/peloton/internal/log"
)

// Target is a fast-forward stop condition.
type Target interface {
	Reached(m *Manager) bool
}

// Kilometers is reached when the leading rider passes the distance. A
// negative value counts back from the finish line.
type Kilometers float64

// Meters is Kilometers in metres.
type Meters float64

// Percent is reached when the leading rider has covered that share of the
// course.
type Percent float64

// Duration is reached when the race clock passes it.
type Duration time.Duration

func (k Kilometers) Reached(m *Manager) bool {
	return m.LeadingRider().Distance() >= m.resolve(float64(k))
}

func (x Meters) Reached(m *Manager) bool {
	return Kilometers(float64(x) / 1000).Reached(m)
}

func (p Percent) Reached(m *Manager) bool {
	return m.LeadingRider().Distance() >= m.course.TotalDistance()*float64(p)/100
}

func (d Duration) Reached(m *Manager) bool {
	return float64(m.tick) >= time.Duration(d).Seconds()
}

func (m *Manager) resolve(km float64) float64 {
	if km < 0 {
		return m.course.TotalDistance() + km
	}
	return km
}

// RunToFinish ticks until every rider has finished.
func (m *Manager) RunToFinish(ctx context.Context) error {
	return m.runUntil(ctx, nil)
}

// RunTo ticks until target is reached or the race is over, whichever comes
// first.
func (m *Manager) RunTo(ctx context.Context, target Target) error {
	return m.runUntil(ctx, target)
}

func (m *Manager) runUntil(ctx context.Context, target Target) error {
	for !m.done {
		if target != nil && target.Reached(m) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := m.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Run is the real-time driver. It ticks once per delay until the race
// finishes or ctx is cancelled, calling sink every frame interval in
// addition to the subscribed sinks. A zero delay runs as fast as possible.
// The resulting rider state is the same as RunToFinish.
func (m *Manager) Run(ctx context.Context, delay time.Duration, sink Sink) error {
	m.log.Info("race started", log.Duration("delay", delay))
	frame := func() {
		if sink != nil && (m.tick%m.frameInterval == 0 || m.done) {
			sink.Update(m)
		}
	}

	if delay <= 0 {
		for !m.done {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := m.Tick(); err != nil {
				return err
			}
			frame()
		}
		return nil
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for !m.done {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.Tick(); err != nil {
				return err
			}
			frame()
		}
	}
	return nil
}
