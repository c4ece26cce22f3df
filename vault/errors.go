package vault

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed or missing input. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates bad credentials or a bad session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates an authenticated caller without sufficient permission.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation (duplicate email, duplicate share).
	ErrConflict = errors.New("conflict")
	// ErrDependency indicates a record-store or mail-capability failure.
	// Workflows respond with a compensating rollback where a prior write
	// already happened.
	ErrDependency = errors.New("dependency failure")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// compensationError reports a failed compensating action together with the
// error that triggered the rollback. Both are preserved so the state can be
// reconciled manually; neither is ever swallowed.
func compensationError(cause, compErr error) error {
	return fmt.Errorf("compensating rollback failed (%v) after: %w", compErr, cause)
}
