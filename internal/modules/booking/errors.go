// README: Booking lifecycle errors.
package booking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState     = errors.New("invalid state transition")
	ErrNotFound         = errors.New("booking not found")
	ErrConflict         = errors.New("booking state conflict, refetch and retry")
	ErrBadRequest       = errors.New("bad request")
	ErrNotAssignable    = errors.New("booking is not open for assignment")
	ErrResourceBusy     = errors.New("resource is assigned to another active booking")
	ErrResourceNotFound = errors.New("driver or vehicle not found")
)

// InvalidTransitionError reports the rejected (from, to) pair.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidState, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidState
}
