package errors

import (
	stderrors "errors"
	"net/http"
)

// Error is the application error type carrying a machine-readable code.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message surfaced to clients
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an application error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates an application error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HTTPStatus resolves the HTTP status for any error. Errors outside the
// application type are treated as internal failures.
func HTTPStatus(err error) int {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ClientMessage resolves the message surfaced to clients for any error.
// Internal failures never leak their underlying message.
func ClientMessage(err error) string {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
