// Package apperrors defines the error taxonomy shared by services and
// the HTTP boundary. Services return (possibly wrapped) sentinels;
// the boundary translates them to status codes in exactly one place.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and
	// missing claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when the expiry instant has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrUnknownPrincipal is returned when a verified subject no longer
	// resolves to a stored user.
	ErrUnknownPrincipal = errors.New("unknown principal")
	// ErrForbidden is returned when a principal lacks the required
	// permission.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on uniqueness violations.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials is returned on login failure. Deliberately
	// does not distinguish unknown user from wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInternal covers storage and filesystem failures during
	// coordinated writes. Its details stay out of responses.
	ErrInternal = errors.New("internal error")
)

// ValidationError reports malformed input as a field-level message
// list. It is expected control flow, not an internal failure.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Messages[0], len(e.Messages)-1)
}

// NotFoundf wraps ErrNotFound with an entity-specific message suitable
// for the response body.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflictf wraps ErrConflict with a caller-facing message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// Internal wraps err so the cause stays available for logging while
// the boundary only exposes the generic sentinel.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
