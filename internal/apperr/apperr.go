// Package apperr carries the application error taxonomy. Every failure
// that reaches the HTTP boundary is one of these; anything else is
// treated as an internal error and kept out of client responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Message string
	// Fields holds diagnostic values merged into the response body,
	// e.g. the have/need role lists on a role denial.
	Fields map[string]any
	err    error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) WithFields(fields map[string]any) *Error {
	e.Fields = fields
	return e
}

func Unauthenticated(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound is also used for ownership denials where existence must not
// be disclosed to the caller.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Invalid(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, err: err}
}

// From returns err as an *Error, wrapping unknown errors as a generic
// internal error so no detail leaks to the client.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("server error", err)
}
