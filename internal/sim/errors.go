package sim

import (
	"errors"
	"fmt"
)

// Domain errors for rider and group operations.
var (
	// ErrInvalidCurve indicates missing, unsorted or non-decreasing power-curve anchors.
	ErrInvalidCurve = errors.New("sim: invalid power curve")

	// ErrInvalidRider indicates a physical attribute outside its valid range.
	ErrInvalidRider = errors.New("sim: invalid rider configuration")

	// ErrLookupMiss indicates a gradient bucket with no precomputed power table.
	ErrLookupMiss = errors.New("sim: no power table for gradient bucket")

	// ErrNotMember indicates a membership operation on a rider outside the group.
	ErrNotMember = errors.New("sim: rider is not a member of the group")

	// ErrEmptyGroup indicates a group built without members.
	ErrEmptyGroup = errors.New("sim: group has no members")

	// ErrInvalidEffort indicates a group effort ceiling that is not a positive wattage.
	ErrInvalidEffort = errors.New("sim: group effort must be positive watts")
)

// LookupError records the rider and gradient bucket of a table miss.
type LookupError struct {
	Rider  string
	Bucket int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: rider %q, bucket %d%%", ErrLookupMiss, e.Rider, e.Bucket)
}

func (e *LookupError) Unwrap() error {
	return ErrLookupMiss
}
