package experiment

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

var ErrUnknownScenario = errors.New("experiment: unknown scenario")

// Scenario is a named, self-checking race setup.
type Scenario struct {
	Name        string
	Description string
	run         func(ctx context.Context) (*Result, error)
}

func (s Scenario) Run(ctx context.Context) (*Result, error) {
	res, err := s.run(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	res.Name = s.Name
	return res, nil
}

type Registry struct {
	scenarios map[string]Scenario
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]Scenario)}
	for _, s := range builtin() {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Scenario) {
	r.scenarios[s.Name] = s
}

func (r *Registry) Get(name string) (Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return s, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunAll runs every registered scenario, at most limit at a time, and
// returns the results in List order.
func (r *Registry) RunAll(ctx context.Context, limit int) ([]*Result, error) {
	names := r.List()
	out := make([]*Result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, name := range names {
		s := r.scenarios[name]
		g.Go(func() error {
			res, err := s.Run(ctx)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
