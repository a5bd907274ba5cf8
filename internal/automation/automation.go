// Package automation plays scripted race tactics: a YAML list of moves, each
// fired when the race reaches a point, applied to a preset or file race.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/peloton/internal/config"
	"github.com/san-kum/peloton/internal/experiment"
	"github.com/san-kum/peloton/internal/log"
	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

var ErrInvalidScript = errors.New("automation: invalid script")

// Script is a race plus the moves made during it.
type Script struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Race        string  `yaml:"race,omitempty"` // preset name
	File        string  `yaml:"file,omitempty"` // race file, used when Race is empty
	Events      []Event `yaml:"events"`
}

// When picks the moment an event fires. Exactly one field is set.
type When struct {
	Km      *float64       `yaml:"km,omitempty"` // leader distance; negative counts back from the finish
	Percent *float64       `yaml:"percent,omitempty"`
	After   *time.Duration `yaml:"after,omitempty"` // race clock
}

// Event is one move. Action is one of effort, join, drop, group,
// group-effort, cooperate, sit or disband.
type Event struct {
	When    `yaml:",inline"`
	Action  string   `yaml:"action"`
	Riders  []string `yaml:"riders"`
	With    string   `yaml:"with,omitempty"` // join: the wheel to follow
	Kind    string   `yaml:"kind,omitempty"` // group: basic, paceline or peloton
	Watts   float64  `yaml:"watts,omitempty"`
	Effort  float64  `yaml:"effort,omitempty"` // fraction of max power, used when Watts is zero
	Comment string   `yaml:"comment,omitempty"`
}

// Applied records an event as it happened.
type Applied struct {
	Tick     int      `json:"tick"`
	Distance float64  `json:"leader_km"`
	Action   string   `json:"action"`
	Riders   []string `json:"riders"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) validate() error {
	if s.Race == "" && s.File == "" {
		return fmt.Errorf("%w: name a race preset or a race file", ErrInvalidScript)
	}
	for i, e := range s.Events {
		if _, err := e.target(); err != nil {
			return fmt.Errorf("event %d: %w", i+1, err)
		}
		if _, ok := actions[e.Action]; !ok {
			return fmt.Errorf("%w: event %d: unknown action %q", ErrInvalidScript, i+1, e.Action)
		}
		if len(e.Riders) == 0 {
			return fmt.Errorf("%w: event %d: no riders", ErrInvalidScript, i+1)
		}
		if e.Action == "group-effort" && !(e.Watts > 0) {
			return fmt.Errorf("%w: event %d: group-effort needs positive watts", ErrInvalidScript, i+1)
		}
	}
	return nil
}

func (w When) target() (race.Target, error) {
	var set []race.Target
	if w.Km != nil {
		set = append(set, race.Kilometers(*w.Km))
	}
	if w.Percent != nil {
		set = append(set, race.Percent(*w.Percent))
	}
	if w.After != nil {
		set = append(set, race.Duration(*w.After))
	}
	if len(set) != 1 {
		return nil, fmt.Errorf("%w: set exactly one of km, percent or after", ErrInvalidScript)
	}
	return set[0], nil
}

func (s *Script) config() (*config.Config, error) {
	if s.Race != "" {
		cfg := config.GetPreset(s.Race)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %s", config.ErrUnknownPreset, s.Race)
		}
		return cfg, nil
	}
	return config.Load(s.File)
}

// Run plays the script in order. Each event waits for its moment, so events
// should be listed in the order they fire; an event whose moment has passed
// fires straight away. Events still pending when the race finishes are
// skipped.
func Run(ctx context.Context, s *Script) (*experiment.Result, []Applied, error) {
	cfg, err := s.config()
	if err != nil {
		return nil, nil, err
	}
	if s.Name != "" {
		cfg.Name = s.Name
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return nil, nil, err
	}
	m := exp.Manager()
	l := log.Default().With(log.String("script", cfg.Name))

	var applied []Applied
	for i, e := range s.Events {
		target, err := e.target()
		if err != nil {
			return nil, applied, err
		}
		if _, err := exp.Run(ctx, target); err != nil {
			return nil, applied, err
		}
		if m.Finished() {
			l.Warn("race over before event", log.Int("event", i+1), log.String("action", e.Action))
			break
		}
		if err := apply(m, e); err != nil {
			return nil, applied, fmt.Errorf("event %d (%s): %w", i+1, e.Action, err)
		}
		a := Applied{Tick: m.Ticks(), Distance: m.LeadingRider().Distance(), Action: e.Action, Riders: e.Riders}
		applied = append(applied, a)
		l.Info("event applied",
			log.Int("tick", a.Tick),
			log.Float64("leader_km", a.Distance),
			log.String("action", e.Action),
			log.Strings("riders", e.Riders))
	}

	res, err := exp.Run(ctx, nil)
	if err != nil {
		return nil, applied, err
	}
	res.Metrics["events_applied"] = float64(len(applied))
	return res, applied, nil
}

type action func(m *race.Manager, e Event, riders []*sim.Rider) error

var actions = map[string]action{
	"effort": func(_ *race.Manager, e Event, riders []*sim.Rider) error {
		for _, r := range riders {
			r.SetEffort(e.effort())
		}
		return nil
	},
	"join": func(m *race.Manager, e Event, riders []*sim.Rider) error {
		wheel, err := m.Rider(e.With)
		if err != nil {
			return err
		}
		for _, r := range riders {
			if err := m.JoinWithRider(r, wheel); err != nil {
				return err
			}
		}
		return nil
	},
	"drop": func(m *race.Manager, _ Event, riders []*sim.Rider) error {
		for _, r := range riders {
			if r.Group() == nil {
				continue
			}
			if err := m.DropFromGroup(r); err != nil {
				return err
			}
		}
		return nil
	},
	"group": func(m *race.Manager, e Event, riders []*sim.Rider) error {
		kind, err := race.ParseKind(e.Kind)
		if err != nil {
			return err
		}
		_, err = m.MakeGroup(kind, e.Watts, riders...)
		return err
	},
	"group-effort": func(_ *race.Manager, e Event, riders []*sim.Rider) error {
		g := riders[0].Group()
		if g == nil {
			return sim.ErrNotMember
		}
		g.SetEffort(e.Watts)
		return nil
	},
	"cooperate": func(_ *race.Manager, _ Event, riders []*sim.Rider) error {
		for _, r := range riders {
			r.SetCooperating(true)
		}
		return nil
	},
	"sit": func(_ *race.Manager, _ Event, riders []*sim.Rider) error {
		for _, r := range riders {
			r.SetCooperating(false)
		}
		return nil
	},
	"disband": func(m *race.Manager, _ Event, riders []*sim.Rider) error {
		if g := riders[0].Group(); g != nil {
			m.DisbandGroup(g)
		}
		return nil
	},
}

func (e Event) effort() sim.Effort {
	if e.Watts > 0 {
		return sim.Watts(e.Watts)
	}
	return sim.Fraction(e.Effort)
}

func apply(m *race.Manager, e Event) error {
	riders := make([]*sim.Rider, 0, len(e.Riders))
	for _, name := range e.Riders {
		r, err := m.Rider(name)
		if err != nil {
			return err
		}
		riders = append(riders, r)
	}
	return actions[e.Action](m, e, riders)
}
