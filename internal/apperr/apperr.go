// Package apperr defines the error kinds returned by use cases.  Every
// use case returns an *Error (or a plain error, which is treated as an
// internal failure) so that controllers and HTTP handlers can branch on
// the kind instead of on concrete error values.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.  The zero value is KindInternal
// so that an unclassified error never maps to a client error.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// String returns the machine-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal_error"
	}
}

// Status maps the kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the tagged error value carried across use case boundaries.
// Message is stable and safe to show to clients; Err keeps the
// underlying cause for logs and errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int { return e.Kind.Status() }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthorized(msg string) *Error { return newError(KindUnauthorized, msg, nil) }
func Forbidden(msg string) *Error    { return newError(KindForbidden, msg, nil) }
func NotFound(msg string) *Error     { return newError(KindNotFound, msg, nil) }
func BadRequest(msg string) *Error   { return newError(KindBadRequest, msg, nil) }
func Conflict(msg string) *Error     { return newError(KindConflict, msg, nil) }

// Internal wraps an unexpected failure.  When msg is empty the cause's
// message is surfaced, which is what entity validation failures rely on.
func Internal(msg string, err error) *Error {
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return newError(KindInternal, msg, err)
}

// KindOf returns the kind of err.  Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status code for err.
func StatusOf(err error) int { return KindOf(err).Status() }

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
