// Package config reads and writes YAML race files and turns them into a
// ready-to-run race.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/peloton/internal/course"
	"github.com/san-kum/peloton/internal/race"
	"github.com/san-kum/peloton/internal/sim"
)

const (
	DefaultCourse        = "flat15"
	DefaultFrameInterval = race.DefaultFrameInterval
	DefaultDelay         = 20 * time.Millisecond
)

var (
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrInvalidConfig = errors.New("config: invalid race file")
)

type Config struct {
	Name          string        `yaml:"name"`
	Course        CourseConfig  `yaml:"course"`
	Riders        []RiderEntry  `yaml:"riders"`
	Groups        []GroupConfig `yaml:"groups,omitempty"`
	Peloton       float64       `yaml:"peloton,omitempty"` // start everyone in a peloton at this many watts
	Tunables      sim.Tunables  `yaml:"tunables"`
	FrameInterval int           `yaml:"frame_interval"`
	Delay         time.Duration `yaml:"delay"`
}

// CourseConfig names a preset or lists segments or an elevation profile.
// The first one set wins in that order.
type CourseConfig struct {
	Preset    string           `yaml:"preset,omitempty"`
	Segments  []course.Segment `yaml:"segments,omitempty"`
	Elevation []course.Point   `yaml:"elevation,omitempty"`
	Step      float64          `yaml:"step,omitempty"` // km between elevation samples
}

// RiderEntry is a rider record, optionally based on a preset. Fields set
// next to a preset override it.
type RiderEntry struct {
	sim.RiderConfig `yaml:",inline"`

	Preset  string  `yaml:"preset,omitempty"`
	Watts   float64 `yaml:"watts,omitempty"`   // starting effort as explicit wattage
	Redzone string  `yaml:"redzone,omitempty"` // "default" or "none"
}

type GroupConfig struct {
	Kind        string   `yaml:"kind"`
	Effort      float64  `yaml:"effort"` // watts
	TimeInFront int      `yaml:"time_in_front,omitempty"`
	Members     []string `yaml:"members"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:          "race",
		Course:        CourseConfig{Preset: DefaultCourse},
		Tunables:      sim.DefaultTunables(),
		FrameInterval: DefaultFrameInterval,
		Delay:         DefaultDelay,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildCourse resolves the course section.
func (c *Config) BuildCourse() (*course.Course, error) {
	cc := c.Course
	switch {
	case cc.Preset != "":
		return CoursePreset(cc.Preset)
	case len(cc.Segments) > 0:
		return course.New(cc.Segments)
	case len(cc.Elevation) > 0:
		step := cc.Step
		if step <= 0 {
			step = 0.1
		}
		return course.FromElevation(cc.Elevation, step)
	}
	return nil, fmt.Errorf("%w: no course", ErrInvalidConfig)
}

// RiderConfigs resolves presets and returns the literal rider records.
func (c *Config) RiderConfigs() ([]sim.RiderConfig, error) {
	out := make([]sim.RiderConfig, 0, len(c.Riders))
	for i, e := range c.Riders {
		rc, err := e.resolve()
		if err != nil {
			return nil, fmt.Errorf("rider %d: %w", i, err)
		}
		out = append(out, rc)
	}
	return out, nil
}

func (e RiderEntry) resolve() (sim.RiderConfig, error) {
	rc := e.RiderConfig
	if e.Preset != "" {
		base, err := RiderPreset(e.Preset, e.Name)
		if err != nil {
			return rc, err
		}
		rc = merge(base, e.RiderConfig)
	}
	switch e.Redzone {
	case "", "default":
	case "none":
		rc.Penalty = sim.NoPenalty
	default:
		return rc, fmt.Errorf("%w: redzone %q", ErrInvalidConfig, e.Redzone)
	}
	return rc, nil
}

func merge(base, over sim.RiderConfig) sim.RiderConfig {
	if over.Weight > 0 {
		base.Weight = over.Weight
	}
	if over.FlatAbility > 0 {
		base.FlatAbility = over.FlatAbility
	}
	if over.ClimbingAbility > 0 {
		base.ClimbingAbility = over.ClimbingAbility
	}
	if over.DescendingAbility > 0 {
		base.DescendingAbility = over.DescendingAbility
	}
	if over.Acceleration > 0 {
		base.Acceleration = over.Acceleration
	}
	if len(over.Curve) > 0 {
		base.Curve = over.Curve
	}
	if over.Effort > 0 {
		base.Effort = over.Effort
	}
	if over.TimeInFrontPercent > 0 {
		base.TimeInFrontPercent = over.TimeInFrontPercent
	}
	base.Passive = base.Passive || over.Passive
	return base
}

// Build turns the file into a race with its groups formed and starting
// efforts applied.
func Build(c *Config) (*race.Manager, error) {
	crs, err := c.BuildCourse()
	if err != nil {
		return nil, err
	}
	riders, err := c.RiderConfigs()
	if err != nil {
		return nil, err
	}

	opts := []race.Option{
		race.WithTunables(c.Tunables),
		race.WithFrameInterval(c.FrameInterval),
	}
	if c.Peloton > 0 {
		opts = append(opts, race.WithPeloton(c.Peloton))
	}
	m, err := race.New(crs, riders, opts...)
	if err != nil {
		return nil, err
	}

	for _, e := range c.Riders {
		if e.Watts <= 0 {
			continue
		}
		r, err := m.Rider(e.Name)
		if err != nil {
			return nil, err
		}
		r.SetEffort(sim.Watts(e.Watts))
	}

	for i, gc := range c.Groups {
		if err := buildGroup(m, gc); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
	}
	return m, nil
}

func buildGroup(m *race.Manager, gc GroupConfig) error {
	kind, err := race.ParseKind(gc.Kind)
	if err != nil {
		return err
	}
	if len(gc.Members) < 2 {
		return fmt.Errorf("%w: a group needs at least two members", ErrInvalidConfig)
	}
	members := make([]*sim.Rider, 0, len(gc.Members))
	for _, name := range gc.Members {
		r, err := m.Rider(name)
		if err != nil {
			return err
		}
		members = append(members, r)
	}
	g, err := m.MakeGroup(kind, gc.Effort, members...)
	if err != nil {
		return err
	}
	if gc.TimeInFront > 0 {
		g.SetTimeInFront(gc.TimeInFront)
	}
	return nil
}
