// Package user defines the user model and credential validation rules.
package user

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/taskhub/internal/platform/errors"
)

var (
	// ErrEmptyUsername indicates a missing or blank username.
	ErrEmptyUsername = apperrors.New(apperrors.CodeUsernameRequired, "username is required")
	// ErrEmptyPassword indicates a missing or blank password.
	ErrEmptyPassword = apperrors.New(apperrors.CodePasswordRequired, "password is required")
)

// User represents a registered identity. PasswordHash holds a one-way hash
// and never crosses the API boundary.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials carries the raw values supplied on register and login.
type Credentials struct {
	Username string
	Password string
}

// NormalizeCredentials trims the username and validates both fields.
// The password is kept verbatim so leading whitespace stays significant.
func NormalizeCredentials(input Credentials) (Credentials, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return Credentials{}, ErrEmptyUsername
	}
	if input.Password == "" {
		return Credentials{}, ErrEmptyPassword
	}
	return input, nil
}
