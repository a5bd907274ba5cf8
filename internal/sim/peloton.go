package sim

import "github.com/samber/lo"

// PelotonGroup is a large bunch with a fixed order: the lowest ranked
// cooperating rider sets the pace and everyone else sits a rank-proportional
// distance behind.
type PelotonGroup struct {
	formation
}

// NewPeloton builds a peloton. A non-positive effort selects the default
// peloton wattage.
func NewPeloton(id int, effort float64, tun Tunables, members ...*Rider) (*PelotonGroup, error) {
	if len(members) == 0 {
		return nil, ErrEmptyGroup
	}
	tun = tun.withDefaults()
	if effort <= 0 {
		effort = tun.DefaultPelotonEffort
	}
	g := &PelotonGroup{formation: newFormation(id, "peloton", effort, tun)}
	g.pickLeader = g.headOfBunch
	g.anchor = func() float64 { return g.leader.distance }
	for _, r := range members {
		g.Add(r)
	}
	return g, nil
}

func (g *PelotonGroup) Add(r *Rider) { g.add(g, r) }

func (g *PelotonGroup) headOfBunch() (*Rider, bool) {
	coop := g.cooperating()
	if len(coop) == 0 {
		return nil, false
	}
	return lo.MinBy(coop, func(a, b *Rider) bool { return a.orderInGroup < b.orderInGroup }), true
}

func (g *PelotonGroup) Step(t Terrain) ([]*Rider, error) {
	if g.Size() == 0 {
		return nil, nil
	}
	dropped := g.prestep()
	g.refreshLeader()

	lead := g.leader.orderInGroup
	err := g.advance(t, func(r *Rider, front float64) float64 {
		return front + float64(lead-r.orderInGroup)*g.tun.PelotonSpacing
	})
	if err != nil {
		return dropped, err
	}
	g.counter++
	return dropped, nil
}
