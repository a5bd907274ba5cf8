// Package optim searches rider pacing strategies by running many races in
// parallel.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/metrics"
	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

var ErrNoFeasiblePacing = errors.New("optim: every pacing empties the tank before the line")

// Candidate is one constant-wattage ride.
type Candidate struct {
	Watts          float64 `json:"watts"`
	FinishTime     float64 `json:"finish_s"`
	MinFuelPercent float64 `json:"min_fuel_pct"`
	Exhausted      bool    `json:"exhausted"`
}

// PacingSearch sweeps constant wattages from Min to Max in steps of Step for
// one rider riding alone on Course.
type PacingSearch struct {
	Course race.Course
	Rider  sim.RiderConfig
	Min    float64
	Max    float64
	Step   float64
	// Limit caps the number of races run at once; zero uses every CPU.
	Limit int
}

func (p PacingSearch) grid() ([]float64, error) {
	if !(p.Step > 0) || !(p.Min > 0) || p.Max < p.Min {
		return nil, fmt.Errorf("optim: invalid sweep %v..%v step %v", p.Min, p.Max, p.Step)
	}
	n := int(math.Floor((p.Max-p.Min)/p.Step+1e-9)) + 1
	return lo.Times(n, func(i int) float64 { return p.Min + float64(i)*p.Step }), nil
}

// Search rides every wattage and returns the fastest one that never dips
// into the redzone, with every candidate in sweep order.
func (p PacingSearch) Search(ctx context.Context) (Candidate, []Candidate, error) {
	watts, err := p.grid()
	if err != nil {
		return Candidate{}, nil, err
	}

	trackers := make([]*metrics.Tracker, len(watts))
	builders := lo.Map(watts, func(w float64, i int) race.Builder {
		return func() (*race.Manager, error) {
			m, err := race.New(p.Course, []sim.RiderConfig{p.Rider})
			if err != nil {
				return nil, err
			}
			m.Riders()[0].SetEffort(sim.Watts(w))
			trackers[i] = metrics.NewTracker(func() metrics.Metric { return metrics.NewMinFuel() })
			m.Observe(trackers[i])
			return m, nil
		}
	})

	races, err := race.Ensemble(ctx, p.Limit, builders...)
	if err != nil {
		return Candidate{}, nil, err
	}

	all := make([]Candidate, len(races))
	for i, m := range races {
		r := m.Riders()[0]
		low := trackers[i].Values(r.Name())["min_fuel_pct"]
		all[i] = Candidate{
			Watts:          watts[i],
			FinishTime:     r.FinishTime(),
			MinFuelPercent: low,
			Exhausted:      low < 0,
		}
	}

	feasible := lo.Reject(all, func(c Candidate, _ int) bool { return c.Exhausted })
	if len(feasible) == 0 {
		return Candidate{}, all, ErrNoFeasiblePacing
	}
	best := lo.MinBy(feasible, func(a, b Candidate) bool { return a.FinishTime < b.FinishTime })
	return best, all, nil
}
