package ledger

import (
	"errors"
	"fmt"
)

// ValidationError reports a cell that fails schema or monotonic-time
// checks. Nothing is appended when one occurs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation: %s", e.Message)
}

// IntegrityErrorCode categorizes integrity errors.
type IntegrityErrorCode string

const (
	// ErrCodeHeadMismatch indicates an appended cell's prev link does not
	// equal the chain's current head.
	ErrCodeHeadMismatch IntegrityErrorCode = "HEAD_MISMATCH"

	// ErrCodeDuplicateCell indicates the identifier already exists in the
	// chain.
	ErrCodeDuplicateCell IntegrityErrorCode = "DUPLICATE_CELL"

	// ErrCodeIDMismatch indicates a stored identifier no longer matches
	// the cell's content hash.
	ErrCodeIDMismatch IntegrityErrorCode = "ID_MISMATCH"

	// ErrCodeReplayDivergence indicates a persisted chain failed
	// verification during replay.
	ErrCodeReplayDivergence IntegrityErrorCode = "REPLAY_DIVERGENCE"
)

// IntegrityError is fatal: the operation aborts and the chain is left
// unchanged.
type IntegrityError struct {
	Code    IntegrityErrorCode
	Message string
	CellID  string
}

func (e *IntegrityError) Error() string {
	if e.CellID != "" {
		return fmt.Sprintf("%s: %s (cell=%s)", e.Code, e.Message, e.CellID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsIntegrityError reports whether err is (or wraps) an IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
