package sim

import "math"

// RotatingPacelineGroup keeps its cooperating riders on a virtual ring that
// turns once every cooperating-count turns, so each rider drifts smoothly
// from the front to the back. A leader with TimeInFrontPercent above 100
// holds the front longer: the rotation freezes at the middle of its turn
// until the extended quota is met.
type RotatingPacelineGroup struct {
	formation

	turn       int
	extra      int
	extended   bool
	lastLeader *Rider
}

func NewRotatingPaceline(id int, effort float64, tun Tunables, members ...*Rider) (*RotatingPacelineGroup, error) {
	if len(members) == 0 {
		return nil, ErrEmptyGroup
	}
	if err := checkEffort(effort); err != nil {
		return nil, err
	}
	g := &RotatingPacelineGroup{formation: newFormation(id, "paceline", effort, tun)}
	g.pickLeader = g.rotationLeader
	for _, r := range members {
		g.Add(r)
	}
	return g, nil
}

func (g *RotatingPacelineGroup) Add(r *Rider) { g.add(g, r) }

// rotationLeader picks the cooperating rider at the current phase. The n/4
// offset puts the rider at the top of the ring in front.
func (g *RotatingPacelineGroup) rotationLeader() (*Rider, bool) {
	n := g.CooperatingCount()
	if n == 0 {
		return nil, false
	}
	phase := int(math.Floor(float64(g.counter)/float64(g.timeInFront)+float64(n)/4+g.tun.RotationBias)) % n
	return g.memberAt(phase)
}

func (g *RotatingPacelineGroup) Step(t Terrain) ([]*Rider, error) {
	if g.Size() == 0 {
		return nil, nil
	}
	dropped := g.prestep()
	g.refreshLeader()
	if g.leader != g.lastLeader {
		g.turn, g.extra, g.extended = 0, 0, false
		g.lastLeader = g.leader
	}

	n := g.CooperatingCount()
	radius := g.tun.RingSpacing * float64(n) * 0.5
	k := 0
	err := g.advance(t, func(r *Rider, front float64) float64 {
		if !r.cooperating {
			k++
			return front - float64(n+k-1)*g.tun.NonCoopSpacing
		}
		deg := float64(r.orderInGroup)*360/float64(n) -
			float64(g.counter)*360/float64(n*g.timeInFront)
		return front + math.Sin(deg*math.Pi/180)*radius
	})
	if err != nil {
		return dropped, err
	}

	if g.rotates() {
		g.counter++
	}
	return dropped, nil
}

// rotates applies the leader's turn extension and reports whether the
// rotation advances this tick.
func (g *RotatingPacelineGroup) rotates() bool {
	pct := g.leader.TimeInFrontPercent()
	if pct <= 100 {
		return true
	}
	quota := pct / 100 * float64(g.timeInFront)
	half := g.timeInFront / 2

	advance := true
	if g.turn == half && !g.extended {
		advance = false
		g.extra++
		if float64(g.turn*2+g.extra) >= quota {
			g.extended = true
			advance = true
		}
	}
	if advance {
		g.turn++
	}
	return advance
}
