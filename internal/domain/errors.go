package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of
// these, so callers switch on errors.Is rather than on messages.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermission       = errors.New("permission denied")
	ErrInvalidRange     = errors.New("end time must be after start time")
	ErrCapacityExceeded = errors.New("event is full")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

var (
	ErrEventNotFound   = kindError{kind: ErrNotFound, msg: "event not found"}
	ErrVenueNotFound   = kindError{kind: ErrNotFound, msg: "venue not found"}
	ErrUserNotFound    = kindError{kind: ErrNotFound, msg: "user not found"}
	ErrTicketNotFound  = kindError{kind: ErrNotFound, msg: "ticket not found"}
	ErrInvalidID       = kindError{kind: ErrNotFound, msg: "invalid id"}
	ErrNotOrganizer    = kindError{kind: ErrPermission, msg: "only the organizer can modify this event"}
	ErrCannotManage    = kindError{kind: ErrPermission, msg: "manager role required"}
	ErrTicketRequired  = kindError{kind: ErrPermission, msg: "a ticket for this event is required"}
	ErrUsernameTaken   = kindError{kind: ErrConflict, msg: "username already taken"}
	ErrEmailTaken      = kindError{kind: ErrConflict, msg: "email already registered"}
	ErrAlreadyReviewed = kindError{kind: ErrConflict, msg: "event already reviewed"}
	ErrTicketExists    = kindError{kind: ErrConflict, msg: "ticket already issued"}
	ErrEventNotStarted = kindError{kind: ErrValidation, msg: "event has not taken place yet"}
	ErrBadCredentials  = kindError{kind: ErrUnauthenticated, msg: "invalid username or password"}
)

type kindError struct {
	kind error
	msg  string
}

func (e kindError) Error() string { return e.msg }

func (e kindError) Unwrap() error { return e.kind }

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
