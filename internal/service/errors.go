package service

import (
	"errors"
	"net/http"
)

// Error is a terminal business error carrying the HTTP status class it
// surfaces as. Handlers map it straight to the response; anything else is a
// 500.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// BadRequest creates a 400 error
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized creates a 401 error
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden creates a 403 error
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound creates a 404 error
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict creates a 409 error
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// AsError extracts a business error from an error chain
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
