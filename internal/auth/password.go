// Package auth provides password hashing and bearer token handling.
package auth

import (
	"fmt"

	apperrors "github.com/louisbranch/taskhub/internal/platform/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords so
// responses never reveal which usernames exist.
var ErrInvalidCredentials = apperrors.New(apperrors.CodeInvalidCredentials, "invalid username or password")

// HashPassword derives a one-way bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a stored hash.
func VerifyPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
