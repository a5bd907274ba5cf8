package race

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Builder constructs one independent race.
type Builder func() (*Manager, error)

// Ensemble builds and runs every race to the finish, at most limit at a
// time. Races share nothing, so each runs on its own goroutine. A limit of
// zero or less uses GOMAXPROCS. The first error cancels the races still
// running.
func Ensemble(ctx context.Context, limit int, builders ...Builder) ([]*Manager, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	out := make([]*Manager, len(builders))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, build := range builders {
		g.Go(func() error {
			m, err := build()
			if err != nil {
				return err
			}
			if err := m.RunToFinish(ctx); err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
