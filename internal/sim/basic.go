package sim

// BasicGroup rides single file behind the leader and hands the front to the
// next cooperating rider every TimeInFront ticks.
type BasicGroup struct {
	formation
}

func NewBasicGroup(id int, effort float64, tun Tunables, members ...*Rider) (*BasicGroup, error) {
	if len(members) == 0 {
		return nil, ErrEmptyGroup
	}
	if err := checkEffort(effort); err != nil {
		return nil, err
	}
	g := &BasicGroup{formation: newFormation(id, "basic", effort, tun)}
	g.pickLeader = g.roundRobin
	for _, r := range members {
		g.Add(r)
	}
	return g, nil
}

func (g *BasicGroup) Add(r *Rider) { g.add(g, r) }

func (g *BasicGroup) roundRobin() (*Rider, bool) {
	n := g.CooperatingCount()
	if n == 0 {
		return nil, false
	}
	return g.memberAt(g.counter / g.timeInFront % n)
}

func (g *BasicGroup) Step(t Terrain) ([]*Rider, error) {
	if g.Size() == 0 {
		return nil, nil
	}
	dropped := g.prestep()
	g.refreshLeader()

	n := g.CooperatingCount()
	lead := g.leader.orderInGroup
	k := 0
	err := g.advance(t, func(r *Rider, front float64) float64 {
		if !r.cooperating {
			k++
			return front - float64(n+k-1)*g.tun.NonCoopSpacing
		}
		behind := (r.orderInGroup - lead + n) % n
		return front - float64(behind)*g.tun.RingSpacing
	})
	if err != nil {
		return dropped, err
	}
	g.counter++
	return dropped, nil
}
