// Package experiment runs configured races end to end and collects their
// results, and holds the registry of named showcase scenarios.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/peloton/internal/config"
	"github.com/san-kum/peloton/internal/metrics"
	"github.com/san-kum/peloton/internal/race"
)

// Result is the outcome of one experiment.
type Result struct {
	Name      string                        `json:"name"`
	Summary   string                        `json:"summary"`
	Metrics   map[string]float64            `json:"metrics"`
	Passed    bool                          `json:"passed"`
	Ticks     int                           `json:"ticks"`
	Distance  float64                       `json:"distance_km"`
	Standings []race.Standing               `json:"standings"`
	Riders    map[string]map[string]float64 `json:"riders"`
	Trace     []metrics.Point               `json:"-"`
}

// Experiment wires a race built from a config to a metrics tracker and a
// trace recorder.
type Experiment struct {
	cfg      *config.Config
	manager  *race.Manager
	tracker  *metrics.Tracker
	recorder *metrics.Recorder
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup() error {
	m, err := config.Build(e.cfg)
	if err != nil {
		return fmt.Errorf("experiment %s: %w", e.cfg.Name, err)
	}
	e.manager = m
	e.tracker = metrics.NewTracker()
	e.recorder = metrics.NewRecorder()
	m.Observe(e.tracker)
	m.Subscribe(e.recorder)
	e.recorder.Update(m)
	return nil
}

// Run advances the race to target, or to the finish when target is nil, and
// reports its state. Run can be called again to continue the same race.
func (e *Experiment) Run(ctx context.Context, target race.Target) (*Result, error) {
	if e.manager == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	var err error
	if target == nil {
		err = e.manager.RunToFinish(ctx)
	} else {
		err = e.manager.RunTo(ctx, target)
	}
	if err != nil {
		return nil, err
	}
	return e.Result(), nil
}

// Result snapshots the race as it stands.
func (e *Experiment) Result() *Result {
	m := e.manager
	res := &Result{
		Name:      e.cfg.Name,
		Metrics:   make(map[string]float64),
		Passed:    m.Finished(),
		Ticks:     m.Ticks(),
		Distance:  m.Course().TotalDistance(),
		Standings: m.Standings(),
		Riders:    make(map[string]map[string]float64),
		Trace:     e.recorder.Points(),
	}
	for _, name := range e.tracker.Riders() {
		res.Riders[name] = e.tracker.Values(name)
	}
	if lead := res.Standings[0]; lead.Finished {
		res.Summary = fmt.Sprintf("%s wins in %s", lead.Name, clock(lead.Time))
		res.Metrics["winning_time_s"] = lead.Time
	} else {
		res.Summary = fmt.Sprintf("%s leads at %.2f km", lead.Name, lead.Distance)
	}
	return res
}

func (e *Experiment) Manager() *race.Manager { return e.manager }

// clock formats seconds as h:mm:ss.s.
func clock(s float64) string {
	h := int(s) / 3600
	mm := int(s) % 3600 / 60
	ss := s - float64(h*3600+mm*60)
	return fmt.Sprintf("%d:%02d:%04.1f", h, mm, ss)
}
