package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLocked             = errors.New("tournament deadline has passed, teams are locked")
	ErrValidationFailed   = errors.New("validation failed")
	ErrPersistenceFailed  = errors.New("persistence failed")
	ErrDataUnavailable    = errors.New("data not available yet")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email or pin already in use")
	ErrForbidden          = errors.New("forbidden")
	ErrSaveInFlight       = errors.New("a save is already in progress")
	ErrRefreshInFlight    = errors.New("a refresh is already in progress")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInternalError      = errors.New("internal server error")
)

// ValidationError describes why a roster or request was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed, e.Reason)
}

// Is lets errors.Is match ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Invalid returns a ValidationError with the given reason.
func Invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTournamentNotFound) ||
		errors.Is(err, ErrTeamNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsLocked checks if an error was caused by the roster lock
func IsLocked(err error) bool {
	return errors.Is(err, ErrLocked)
}

// IsValidation checks if an error is a user-correctable validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrInvalidRequest)
}
