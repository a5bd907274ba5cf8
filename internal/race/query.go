package race

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/sim"
)

// LeadingRider is the rider furthest along the course. Ties go to the
// rider listed first.
func (m *Manager) LeadingRider() *sim.Rider {
	return lo.MaxBy(m.riders, func(a, b *sim.Rider) bool { return a.Distance() > b.Distance() })
}

// TimeGap is how many seconds b is behind a. When both have finished it is
// the difference of their finish times. Otherwise both riders are compared
// at the last kilometre marker the trailing rider has passed; ok is false
// until that rider has passed the first one.
func (m *Manager) TimeGap(a, b *sim.Rider) (gap float64, ok bool) {
	if a.Finished() && b.Finished() {
		return b.FinishTime() - a.FinishTime(), true
	}
	k := int(math.Floor(math.Min(a.Distance(), b.Distance())))
	if k < 1 {
		return 0, false
	}
	ta, okA := a.TimeAt(k)
	tb, okB := b.TimeAt(k)
	if !okA || !okB {
		return 0, false
	}
	return tb - ta, true
}

// DistanceGap is the absolute distance between two riders in km.
func (m *Manager) DistanceGap(a, b *sim.Rider) float64 {
	return math.Abs(a.Distance() - b.Distance())
}

// StageFinishOrder ranks finished riders by finish time, then the riders
// still racing by distance covered.
func (m *Manager) StageFinishOrder() []*sim.Rider {
	out := m.Riders()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Finished() && b.Finished():
			return a.FinishTime() < b.FinishTime()
		case a.Finished() != b.Finished():
			return a.Finished()
		default:
			return a.Distance() > b.Distance()
		}
	})
	return out
}

// Standing is one row of the results table.
type Standing struct {
	Rank         int     `json:"rank"`
	Name         string  `json:"name"`
	Finished     bool    `json:"finished"`
	Time         float64 `json:"time_s"`
	Distance     float64 `json:"distance_km"`
	Gap          float64 `json:"gap_s"`
	GapKnown     bool    `json:"gap_known"`
	AveragePower float64 `json:"avg_power_w"`
	FuelPercent  float64 `json:"fuel_pct"`
	Group        int     `json:"group,omitempty"`
}

// Standings reports every rider in stage finish order with the time gap to
// the first rider.
func (m *Manager) Standings() []Standing {
	order := m.StageFinishOrder()
	out := make([]Standing, len(order))
	for i, r := range order {
		s := Standing{
			Rank:         i + 1,
			Name:         r.Name(),
			Finished:     r.Finished(),
			Time:         r.Time(),
			Distance:     r.Distance(),
			AveragePower: r.AveragePower(),
			FuelPercent:  r.FuelPercent(),
		}
		if r.Finished() {
			s.Time = r.FinishTime()
		}
		if g := r.Group(); g != nil {
			s.Group = g.ID()
		}
		if i == 0 {
			s.GapKnown = true
		} else {
			s.Gap, s.GapKnown = m.TimeGap(order[0], r)
		}
		out[i] = s
	}
	return out
}

// GroupSummary is the aggregate state of one group.
type GroupSummary struct {
	ID          int      `json:"id"`
	Kind        string   `json:"kind"`
	Size        int      `json:"size"`
	Cooperating int      `json:"cooperating"`
	Leader      string   `json:"leader"`
	Distance    float64  `json:"avg_distance_km"`
	SpeedKPH    float64  `json:"avg_speed_kph"`
	Spread      float64  `json:"spread_km"`
	Effort      float64  `json:"effort_w"`
	Members     []string `json:"members"`
}

func (m *Manager) GroupSummaries() []GroupSummary {
	return lo.Map(m.groups, func(g sim.Group, _ int) GroupSummary {
		s := GroupSummary{
			ID:          g.ID(),
			Kind:        g.Kind(),
			Size:        g.Size(),
			Cooperating: g.CooperatingCount(),
			Distance:    g.AverageDistance(),
			SpeedKPH:    g.AverageSpeed() * 3600,
			Spread:      g.Spread(),
			Effort:      g.Effort(),
			Members:     lo.Map(g.Members(), func(r *sim.Rider, _ int) string { return r.Name() }),
		}
		if l := g.Leader(); l != nil {
			s.Leader = l.Name()
		}
		return s
	})
}
