package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every input-validation failure. Specific
// validation errors wrap it so the transport layer can map them with errors.Is.
var ErrValidation = errors.New("validation failed")

// Invalid returns a validation error carrying a human-readable reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
