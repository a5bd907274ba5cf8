package race

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/san-kum/peloton/internal/log"
	"github.com/san-kum/peloton/internal/sim"
)

// Course is the road a Manager races on. Buckets lists every integer
// gradient percentage the course can produce so the riders' power tables
// can be built up front.
type Course interface {
	sim.Terrain
	Buckets() []int
}

const (
	DefaultFrameInterval = 10
	// DefaultMaxTicks stops a race that has not finished after a week of
	// race time.
	DefaultMaxTicks = 7 * 24 * 3600
)

type Option func(*Manager)

// WithTunables replaces the group tunables. Zero fields keep their defaults.
func WithTunables(t sim.Tunables) Option {
	return func(m *Manager) { m.tun = t }
}

// WithFrameInterval sets how many ticks pass between sink updates.
func WithFrameInterval(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.frameInterval = n
		}
	}
}

func WithMaxTicks(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxTicks = n
		}
	}
}

// WithPeloton starts every rider in one peloton riding at effort watts.
func WithPeloton(effort float64) Option {
	return func(m *Manager) {
		m.startInPeloton = true
		m.pelotonEffort = effort
	}
}

// Manager owns the roster, the active groups and the race clock.
type Manager struct {
	course   Course
	riders   []*sim.Rider
	byName   map[string]*sim.Rider
	groups   []sim.Group
	tun      sim.Tunables
	tick     int
	nextID   int
	done     bool
	maxTicks int
	// failed latches the first tick error; the race cannot go on after it.
	failed error

	startInPeloton bool
	pelotonEffort  float64

	frameInterval int
	sinks         []Sink
	observers     []Observer

	log *log.Logger
}

// New builds the riders from their configurations and precomputes their
// power tables for every gradient bucket of c. A race that cannot be
// configured is refused here.
func New(c Course, riders []sim.RiderConfig, opts ...Option) (*Manager, error) {
	if c == nil {
		return nil, fmt.Errorf("race: nil course")
	}
	if len(riders) == 0 {
		return nil, ErrNoRiders
	}

	m := &Manager{
		course:        c,
		byName:        make(map[string]*sim.Rider, len(riders)),
		tun:           sim.DefaultTunables(),
		frameInterval: DefaultFrameInterval,
		maxTicks:      DefaultMaxTicks,
		log:           log.Default().Named("race"),
	}
	for _, opt := range opts {
		opt(m)
	}

	buckets := c.Buckets()
	for _, cfg := range riders {
		if _, dup := m.byName[cfg.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate rider name %q", sim.ErrInvalidRider, cfg.Name)
		}
		r, err := sim.NewRider(cfg, m.tun.DraftFactor)
		if err != nil {
			return nil, fmt.Errorf("rider %q: %w", cfg.Name, err)
		}
		r.Model().BuildTables(buckets)
		m.riders = append(m.riders, r)
		m.byName[cfg.Name] = r
	}

	if err := m.formStart(); err != nil {
		return nil, err
	}
	m.log.Info("race ready",
		log.Int("riders", len(m.riders)),
		log.Float64("distance_km", c.TotalDistance()),
		log.Int("buckets", len(buckets)))
	return m, nil
}

func (m *Manager) formStart() error {
	if !m.startInPeloton || len(m.riders) < 2 {
		return nil
	}
	_, err := m.MakeGroup(KindPeloton, m.pelotonEffort, m.riders...)
	return err
}

// Tick advances the race by one second. Ungrouped riders step alone on the
// gradient under their wheels; each group steps once, moving all of its
// members. Riders within FinishTolerance of the line are marked finished
// and leave their group, and any group left with one rider is disbanded.
func (m *Manager) Tick() error {
	if m.failed != nil {
		return m.failed
	}
	if m.done {
		return ErrFinished
	}
	if m.tick >= m.maxTicks {
		m.failed = &TickError{Tick: m.tick, Err: ErrStalled}
		return m.failed
	}

	total := m.course.TotalDistance()
	advanced := make(map[*sim.Rider]bool, len(m.riders))

	for _, r := range m.riders {
		if r.Finished() || advanced[r] {
			continue
		}
		g := r.Group()
		if g == nil {
			m.stepSolo(r, total)
			advanced[r] = true
			continue
		}

		dropped, err := g.Step(m.course)
		if err != nil {
			return m.tickError(r, err)
		}
		for _, member := range g.Members() {
			advanced[member] = true
		}
		for _, d := range dropped {
			m.log.Info("rider dropped",
				log.String("rider", d.Name()),
				log.Int("group", g.ID()),
				log.Int("tick", m.tick))
			if !advanced[d] && !d.Finished() {
				m.stepSolo(d, total)
				advanced[d] = true
			}
		}
	}

	m.markFinishers(total)
	m.cleanup()
	m.tick++

	m.done = lo.EveryBy(m.riders, func(r *sim.Rider) bool { return r.Finished() })
	if m.done {
		m.log.Info("race finished", log.Int("ticks", m.tick))
	}

	for _, o := range m.observers {
		o.OnTick(m)
	}
	if m.tick%m.frameInterval == 0 || m.done {
		m.publish()
	}
	return nil
}

func (m *Manager) stepSolo(r *sim.Rider, total float64) {
	d := r.Distance()
	r.Step(m.course.GradientAt(d), total-d)
}

func (m *Manager) markFinishers(total float64) {
	for _, r := range m.riders {
		if r.Finished() || r.Distance() < total-sim.FinishTolerance {
			continue
		}
		r.MarkFinished(total)
		if g := r.Group(); g != nil {
			_ = g.Drop(r)
		}
		m.log.Info("rider finished",
			log.String("rider", r.Name()),
			log.Float64("time_s", r.FinishTime()),
			log.Float64("avg_w", r.AveragePower()))
	}
}

func (m *Manager) tickError(r *sim.Rider, err error) error {
	te := &TickError{Tick: m.tick, Rider: r.Name(), Err: err}
	var le *sim.LookupError
	if errors.As(err, &le) && le.Rider != "" {
		te.Rider = le.Rider
	}
	m.log.Error("tick failed", log.Int("tick", m.tick), log.String("rider", te.Rider), log.ErrorField(err))
	m.failed = te
	return te
}

// Reset puts every rider back on the start line with a full tank, disbands
// all groups and zeroes the clock. The roster and sinks are kept.
func (m *Manager) Reset() error {
	for _, g := range m.groups {
		g.Disband()
	}
	m.groups = nil
	for _, r := range m.riders {
		r.Reset()
	}
	m.tick = 0
	m.done = false
	m.failed = nil
	for _, o := range m.observers {
		if rs, ok := o.(interface{ Reset() }); ok {
			rs.Reset()
		}
	}
	return m.formStart()
}

func (m *Manager) Course() Course         { return m.course }
func (m *Manager) Tunables() sim.Tunables { return m.tun }

// Ticks is the number of completed ticks, which is also the race clock in
// seconds.
func (m *Manager) Ticks() int { return m.tick }

// Finished reports whether every rider has crossed the line.
func (m *Manager) Finished() bool { return m.done }

func (m *Manager) Riders() []*sim.Rider {
	return append([]*sim.Rider(nil), m.riders...)
}

func (m *Manager) Rider(name string) (*sim.Rider, error) {
	r, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRider, name)
	}
	return r, nil
}

func (m *Manager) Groups() []sim.Group {
	return append([]sim.Group(nil), m.groups...)
}
