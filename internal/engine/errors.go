package engine

import (
	"errors"
	"fmt"
)

// SimulationErrorCode categorizes orchestrator errors.
type SimulationErrorCode string

const (
	// ErrCodeValidationFailed indicates a malformed request or overlay
	// spec; nothing was queried.
	ErrCodeValidationFailed SimulationErrorCode = "VALIDATION_FAILED"

	// ErrCodeSessionFailed indicates the simulation session could not be
	// opened or merged.
	ErrCodeSessionFailed SimulationErrorCode = "SESSION_FAILED"

	// ErrCodeContamination indicates the base chain's head changed across
	// a simulation. This is a core bug, never a user error, and must
	// never be silently swallowed.
	ErrCodeContamination SimulationErrorCode = "CONTAMINATION_DETECTED"
)

// SimulationError is a categorized orchestrator error.
type SimulationError struct {
	Code         SimulationErrorCode
	Message      string
	SimulationID string
	Details      map[string]string
}

func (e *SimulationError) Error() string {
	if e.SimulationID != "" {
		return fmt.Sprintf("%s: %s (simulation=%s)", e.Code, e.Message, e.SimulationID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err is a request/overlay validation
// error. Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var se *SimulationError
	if errors.As(err, &se) {
		return se.Code == ErrCodeValidationFailed
	}
	return false
}

// IsContaminationError reports whether err is a contamination violation.
func IsContaminationError(err error) bool {
	var se *SimulationError
	if errors.As(err, &se) {
		return se.Code == ErrCodeContamination
	}
	return false
}

func newValidationError(format string, args ...any) *SimulationError {
	return &SimulationError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf(format, args...),
	}
}
