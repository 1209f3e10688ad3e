// README: Wizard errors.
package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrSubmitted          = errors.New("wizard already submitted")
	ErrLastStep           = errors.New("already at the last step")
	ErrNotReady           = errors.New("submission is only possible from the contact details step")
	ErrInvalidServiceType = errors.New("invalid service type")
	ErrSessionNotFound    = errors.New("wizard session not found")
)

// ValidationError is returned when a step gate fails.
type ValidationError struct {
	Step   Step
	Errors FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s has invalid fields", e.Step)
}
