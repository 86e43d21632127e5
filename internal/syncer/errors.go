package syncer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/surveysync/internal/validate"
)

// ValidationFailure rejects a definition before any mutation happens.
// Errors always holds the complete, ordered violation list.
type ValidationFailure struct {
	Errors []validate.ValidationError
}

// Error implements the error interface.
func (e *ValidationFailure) Error() string {
	if len(e.Errors) == 1 {
		return "definition rejected: " + e.Errors[0].Message
	}
	return fmt.Sprintf("definition rejected with %d violations: %s",
		len(e.Errors), strings.Join(e.Messages(), "; "))
}

// Messages returns the violations as plain strings.
func (e *ValidationFailure) Messages() []string {
	return validate.Messages(e.Errors)
}

// IsValidationFailure returns true if err is or wraps a *ValidationFailure.
func IsValidationFailure(err error) bool {
	var vf *ValidationFailure
	return errors.As(err, &vf)
}

// AsValidationFailure extracts a *ValidationFailure from err.
func AsValidationFailure(err error) (*ValidationFailure, bool) {
	var vf *ValidationFailure
	if errors.As(err, &vf) {
		return vf, true
	}
	return nil, false
}
