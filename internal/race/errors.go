package race

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRiders indicates a race built with an empty roster.
	ErrNoRiders = errors.New("race: no riders")

	// ErrUnknownRider indicates a rider that is not on the roster.
	ErrUnknownRider = errors.New("race: unknown rider")

	// ErrFinished indicates a tick requested after every rider finished.
	ErrFinished = errors.New("race: race is finished")

	// ErrStalled indicates the race clock passed its tick limit.
	ErrStalled = errors.New("race: tick limit reached")

	// ErrUnknownKind indicates an unsupported group kind.
	ErrUnknownKind = errors.New("race: unknown group kind")

	// ErrGroupTooSmall indicates a group formed from fewer than two distinct riders.
	ErrGroupTooSmall = errors.New("race: a group needs at least two riders")
)

// TickError wraps a failure inside a tick with the tick number and, where
// known, the rider being stepped.
type TickError struct {
	Tick  int
	Rider string
	Err   error
}

func (e *TickError) Error() string {
	if e.Rider == "" {
		return fmt.Sprintf("tick %d: %v", e.Tick, e.Err)
	}
	return fmt.Sprintf("tick %d: rider %q: %v", e.Tick, e.Rider, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
