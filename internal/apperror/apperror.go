// Package apperror defines the error taxonomy surfaced by the engine
// services. Handlers map kinds to HTTP status codes; services never swallow
// or retry, they return the typed error to the caller.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindInvalidState
	KindNotFound
)

// Error carries a kind alongside the message so callers can branch with
// errors.As without string matching.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation marks malformed input, rejected before any mutation.
func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

// Conflict marks a violation of the at-most-one-Pending invariant.
func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// InvalidState marks an operation not valid from the current status.
func InvalidState(format string, args ...interface{}) *Error {
	return newError(KindInvalidState, format, args...)
}

// NotFound marks a missing project, request or record.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// Wrap attaches an underlying cause while keeping the kind.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	e := newError(kind, format, args...)
	e.Err = err
	return e
}

// KindOf extracts the kind from an error chain; KindUnknown when untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
