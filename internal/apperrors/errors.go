// Package apperrors defines the error taxonomy shared by services and handlers.
//
// Every error a service returns to a handler is either one of the kinds below
// (matched with errors.Is) or an unexpected error that handlers report as a
// generic internal server error.
package apperrors

import "errors"

// Error kinds
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication error")
	ErrStore      = errors.New("store error")
	ErrUpstream   = errors.New("upstream error")
)

// Error carries a kind, a message that is safe to show to the client and
// an optional internal cause that is only ever logged.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a user-correctable input error.
func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Conflict returns an error for a write rejected by a uniqueness rule.
func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Auth returns a credentials error.
func Auth(message string) error {
	return &Error{Kind: ErrAuth, Message: message}
}

// Store wraps a database failure.
func Store(err error) error {
	return &Error{Kind: ErrStore, Message: "store error", Err: err}
}

// Upstream wraps a failure of a third-party API.
func Upstream(message string, err error) error {
	return &Error{Kind: ErrUpstream, Message: message, Err: err}
}

// PublicMessage returns the client-facing message of err, or fallback when
// err is not an *Error.
func PublicMessage(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
