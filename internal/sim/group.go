package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/log"
)

// Terrain is the read-only view of a course a group needs while stepping.
type Terrain interface {
	GradientAt(distance float64) float64
	TotalDistance() float64
}

// Group is a set of riders moving together. Implementations own the member
// list and are the only writers of each member's group handle and rank.
type Group interface {
	ID() int
	Kind() string

	// Step advances every member by one tick and returns the riders dropped
	// before positions were assigned. Dropped riders have not been stepped.
	Step(t Terrain) ([]*Rider, error)

	Leader() *Rider
	Members() []*Rider
	Size() int
	CooperatingCount() int
	Contains(r *Rider) bool

	// Add pulls r out of any previous group and appends it.
	Add(r *Rider)
	// Drop removes r and clears its group handle.
	Drop(r *Rider) error
	// Disband drops every member.
	Disband()

	SetEffort(watts float64)
	Effort() float64
	SetTimeInFront(ticks int)
	TimeInFront() int

	AverageDistance() float64
	AverageSpeed() float64
	Spread() float64
	LeaderFallbacks() int

	base() *formation
	reorder()
}

// formation is the membership and bookkeeping shared by every group kind.
type formation struct {
	id          int
	kind        string
	members     []*Rider
	effort      float64
	timeInFront int
	tun         Tunables
	counter     int
	leader      *Rider
	fallbacks   int
	pickLeader  func() (*Rider, bool)
	anchor      func() float64
	log         *log.Logger
}

func newFormation(id int, kind string, effort float64, tun Tunables) formation {
	tun = tun.withDefaults()
	return formation{
		id:          id,
		kind:        kind,
		effort:      effort,
		timeInFront: tun.DefaultTimeInFront,
		tun:         tun,
		log:         log.Default().Named("group").With(log.Int("group", id), log.String("kind", kind)),
	}
}

func (f *formation) base() *formation { return f }

func (f *formation) ID() int          { return f.id }
func (f *formation) Kind() string     { return f.kind }
func (f *formation) Size() int        { return len(f.members) }
func (f *formation) Effort() float64  { return f.effort }
func (f *formation) TimeInFront() int { return f.timeInFront }
func (f *formation) Leader() *Rider   { return f.leader }
func (f *formation) LeaderFallbacks() int {
	return f.fallbacks
}

func (f *formation) Members() []*Rider {
	return append([]*Rider(nil), f.members...)
}

func (f *formation) Contains(r *Rider) bool {
	return lo.Contains(f.members, r)
}

func (f *formation) SetEffort(watts float64) {
	f.effort = math.Max(0, watts)
}

// checkEffort rejects a ceiling that would hold every member at zero watts.
func checkEffort(watts float64) error {
	if !(watts > 0) || math.IsInf(watts, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidEffort, watts)
	}
	return nil
}

func (f *formation) SetTimeInFront(ticks int) {
	if ticks < 1 {
		ticks = 1
	}
	f.timeInFront = ticks
}

func (f *formation) cooperating() []*Rider {
	return lo.Filter(f.members, func(r *Rider, _ int) bool { return r.cooperating })
}

func (f *formation) passive() []*Rider {
	return lo.Filter(f.members, func(r *Rider, _ int) bool { return !r.cooperating })
}

func (f *formation) CooperatingCount() int {
	return lo.CountBy(f.members, func(r *Rider) bool { return r.cooperating })
}

func (f *formation) add(owner Group, r *Rider) {
	if r.group != nil && r.group != owner {
		_ = r.group.Drop(r)
	}
	if !lo.Contains(f.members, r) {
		f.members = append(f.members, r)
	}
	r.group = owner
	f.reorder()
}

func (f *formation) Drop(r *Rider) error {
	if !lo.Contains(f.members, r) {
		return ErrNotMember
	}
	f.members = lo.Without(f.members, r)
	r.group = nil
	r.orderInGroup = 0
	f.reorder()
	return nil
}

func (f *formation) Disband() {
	for _, r := range f.members {
		r.group = nil
		r.orderInGroup = 0
	}
	f.members = nil
	f.leader = nil
}

// reorder ranks cooperating riders densely in join order, then passive riders
// after them, and refreshes the leader.
func (f *formation) reorder() {
	coop, rest := f.cooperating(), f.passive()
	for i, r := range coop {
		r.orderInGroup = i
	}
	for i, r := range rest {
		r.orderInGroup = len(coop) + i
	}
	f.refreshLeader()
}

func (f *formation) refreshLeader() {
	if len(f.members) == 0 {
		f.leader = nil
		return
	}
	if f.pickLeader != nil {
		if r, ok := f.pickLeader(); ok {
			f.leader = r
			return
		}
	}
	f.fallbacks++
	f.leader = f.members[0]
	f.log.Warn("no cooperating leader, falling back to first member",
		log.String("rider", f.leader.Name()), log.Int("fallbacks", f.fallbacks))
}

// memberAt returns the cooperating member holding rank order.
func (f *formation) memberAt(order int) (*Rider, bool) {
	return lo.Find(f.members, func(r *Rider) bool {
		return r.cooperating && r.orderInGroup == order
	})
}

func (f *formation) AverageDistance() float64 {
	if len(f.members) == 0 {
		return 0
	}
	return lo.SumBy(f.members, func(r *Rider) float64 { return r.distance }) / float64(len(f.members))
}

func (f *formation) AverageSpeed() float64 {
	if len(f.members) == 0 {
		return 0
	}
	return lo.SumBy(f.members, func(r *Rider) float64 { return r.speed }) / float64(len(f.members))
}

// Spread is the distance between the first and last member.
func (f *formation) Spread() float64 {
	if len(f.members) < 2 {
		return 0
	}
	first := lo.MaxBy(f.members, func(a, b *Rider) bool { return a.distance > b.distance })
	last := lo.MinBy(f.members, func(a, b *Rider) bool { return a.distance < b.distance })
	return first.distance - last.distance
}

// prestep drops the last rider when it has fallen more than DropDistance
// behind the second to last.
func (f *formation) prestep() []*Rider {
	if len(f.members) < 2 {
		return nil
	}
	ranked := append([]*Rider(nil), f.members...)
	sortByDistanceDesc(ranked)
	last, next := ranked[len(ranked)-1], ranked[len(ranked)-2]
	if next.distance-last.distance <= f.tun.DropDistance {
		return nil
	}
	_ = f.Drop(last)
	f.log.Info("rider dropped",
		log.String("rider", last.Name()),
		log.Float64("gap_m", (next.distance-last.distance)*1000))
	return []*Rider{last}
}

// cooperatingAverage is the mean position of the riders sharing the work,
// or of the leader alone when nobody cooperates.
func (f *formation) cooperatingAverage() float64 {
	coop := f.cooperating()
	if len(coop) == 0 {
		return f.leader.distance
	}
	return lo.SumBy(coop, func(r *Rider) float64 { return r.distance }) / float64(len(coop))
}

// front is where the head of the group aims to be after this tick: the
// anchor position plus the leader's distance at the group effort on g. The
// anchor is the cooperating average unless the group kind sets its own.
func (f *formation) front(g float64) float64 {
	anchor := f.cooperatingAverage
	if f.anchor != nil {
		anchor = f.anchor
	}
	return anchor() + f.leader.DistanceFromPower(f.effort, g)
}

func (f *formation) minSpeed() float64 {
	return lo.MinBy(f.members, func(a, b *Rider) bool { return a.speed < b.speed }).speed
}

// adjust sets r's effort to reach target this tick. A rider behind its
// target asks for the power that closes the gap; one at or ahead of it holds
// the slowest member's speed. Followers get the draft discount and nobody
// exceeds the group effort.
func (f *formation) adjust(r *Rider, target, g, minSpeed float64) error {
	d := target - r.distance
	if d <= 0 {
		d = math.Max(0, minSpeed)
	}
	p, err := r.PowerForDistance(d, g)
	if err != nil {
		return err
	}
	if r != f.leader {
		p *= f.tun.DraftFactor
	}
	if p > f.effort {
		p = f.effort
	}
	r.SetEffort(Watts(p))
	return nil
}

// advance positions and steps every unfinished member. target returns the
// desired distance for a member given the front reference.
func (f *formation) advance(t Terrain, target func(r *Rider, front float64) float64) error {
	front := f.front(t.GradientAt(f.leader.distance))
	minSpeed := f.minSpeed()

	for _, r := range append([]*Rider(nil), f.members...) {
		if r.finished {
			continue
		}
		gr := t.GradientAt(r.distance)
		if err := f.adjust(r, target(r, front), gr, minSpeed); err != nil {
			return err
		}
		r.Step(gr, t.TotalDistance()-r.distance)
	}
	return nil
}

func sortByDistanceDesc(riders []*Rider) {
	sort.SliceStable(riders, func(i, j int) bool { return riders[i].distance > riders[j].distance })
}
