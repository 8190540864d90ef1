// Package errors provides structured application errors with HTTP mappings.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unexpected internal failure.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidBody represents an unparseable request body.
	CodeInvalidBody Code = "INVALID_BODY"

	// Credential errors
	CodeUsernameRequired   Code = "USERNAME_REQUIRED"
	CodePasswordRequired   Code = "PASSWORD_REQUIRED"
	CodeUsernameTaken      Code = "USERNAME_TAKEN"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"

	// Token errors
	CodeTokenMissing Code = "TOKEN_MISSING"
	CodeTokenInvalid Code = "TOKEN_INVALID"
	CodeTokenExpired Code = "TOKEN_EXPIRED"

	// Task errors
	CodeTaskTitleRequired Code = "TASK_TITLE_REQUIRED"
	CodeTaskNotFound      Code = "TASK_NOT_FOUND"
)

// HTTPStatus maps an error code to the HTTP status surfaced to clients.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidBody, CodeUsernameRequired, CodePasswordRequired, CodeUsernameTaken, CodeTaskTitleRequired:
		return http.StatusBadRequest
	case CodeInvalidCredentials, CodeTokenMissing, CodeTokenInvalid, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeTaskNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
