package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidState      = errors.New("invalid state")
	ErrNotFound          = errors.New("not found")
)

var (
	ErrRideNotFound = fmt.Errorf("%w: ride not found", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrNoLocation   = fmt.Errorf("%w: no recent location for ride", ErrNotFound)

	ErrRideAlreadyTaken   = fmt.Errorf("%w: ride is no longer available", ErrConflict)
	ErrNotRideDriver      = fmt.Errorf("%w: not the driver of this ride", ErrForbidden)
	ErrNotRideParticipant = fmt.Errorf("%w: not a participant of this ride", ErrForbidden)
	ErrRoleNotAllowed     = fmt.Errorf("%w: insufficient role", ErrForbidden)
	ErrRideNotLive        = fmt.Errorf("%w: ride is not accepted or in progress", ErrInvalidState)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrExpiredToken       = fmt.Errorf("%w: token expired", ErrUnauthorized)
)

// ErrStatusMismatch is returned by ride storage when a guarded update found
// the ride in a different status than expected. Services translate it.
var ErrStatusMismatch = errors.New("ride status changed concurrently")

// Validationf builds a validation error with a specific message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Transitionf builds an invalid transition error with a specific message.
func Transitionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

// Stable kind strings exposed to clients.
const (
	KindValidation        = "validation"
	KindUnauthorized      = "unauthorized"
	KindForbidden         = "forbidden"
	KindConflict          = "conflict"
	KindInvalidTransition = "invalid_transition"
	KindInvalidState      = "invalid_state"
	KindNotFound          = "not_found"
	KindInternal          = "internal"
)

// KindOf maps err onto its stable kind.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
