package race

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/log"
	"github.com/san-kum/peloton/internal/sim"
)

// Kind selects the group formation built by MakeGroup.
type Kind string

const (
	KindBasic    Kind = "basic"
	KindPaceline Kind = "paceline"
	KindPeloton  Kind = "peloton"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBasic, KindPaceline, KindPeloton:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MakeGroup forms a new group of the given kind. Riders are pulled out of
// any group they were in, and groups left with a single rider are
// disbanded. effort is the group's wattage ceiling.
func (m *Manager) MakeGroup(kind Kind, effort float64, riders ...*sim.Rider) (sim.Group, error) {
	if err := m.checkRoster(riders...); err != nil {
		return nil, err
	}
	riders = lo.Uniq(riders)
	if len(riders) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrGroupTooSmall, len(riders))
	}

	m.nextID++
	var (
		g   sim.Group
		err error
	)
	switch kind {
	case KindBasic:
		g, err = sim.NewBasicGroup(m.nextID, effort, m.tun, riders...)
	case KindPaceline:
		g, err = sim.NewRotatingPaceline(m.nextID, effort, m.tun, riders...)
	case KindPeloton:
		g, err = sim.NewPeloton(m.nextID, effort, m.tun, riders...)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}

	m.groups = append(m.groups, g)
	m.log.Info("group formed",
		log.Int("group", g.ID()),
		log.String("kind", string(kind)),
		log.Int("size", g.Size()),
		log.Float64("effort_w", g.Effort()))
	m.cleanup()
	return g, nil
}

// JoinWithRider moves r onto other's wheel. If other rides alone a new
// rotating paceline is formed at other's current desired power.
func (m *Manager) JoinWithRider(r, other *sim.Rider) error {
	if err := m.checkRoster(r, other); err != nil {
		return err
	}
	if r == other {
		return nil
	}
	if g := other.Group(); g != nil {
		g.Add(r)
		m.cleanup()
		return nil
	}
	_, err := m.MakeGroup(KindPaceline, other.DesiredPower(), other, r)
	return err
}

// DropFromGroup takes r out of its group. A group left with one rider is
// disbanded.
func (m *Manager) DropFromGroup(r *sim.Rider) error {
	if err := m.checkRoster(r); err != nil {
		return err
	}
	g := r.Group()
	if g == nil {
		return sim.ErrNotMember
	}
	if err := g.Drop(r); err != nil {
		return err
	}
	m.cleanup()
	return nil
}

// DisbandGroup releases every member of g.
func (m *Manager) DisbandGroup(g sim.Group) {
	if !lo.Contains(m.groups, g) {
		return
	}
	g.Disband()
	m.groups = lo.Without(m.groups, g)
	m.log.Info("group disbanded", log.Int("group", g.ID()))
}

// cleanup disbands every group with fewer than two riders.
func (m *Manager) cleanup() {
	for _, g := range m.Groups() {
		if g.Size() <= 1 {
			m.DisbandGroup(g)
		}
	}
}

func (m *Manager) checkRoster(riders ...*sim.Rider) error {
	for _, r := range riders {
		if r == nil || m.byName[r.Name()] != r {
			name := "<nil>"
			if r != nil {
				name = r.Name()
			}
			return fmt.Errorf("%w: %s", ErrUnknownRider, name)
		}
	}
	return nil
}
