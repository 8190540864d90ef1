package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/taskhub/internal/platform/errors"
)

// tokenEnv holds raw env values before post-parse validation.
type tokenEnv struct {
	Secret string        `env:"TASKHUB_TOKEN_SECRET"`
	Issuer string        `env:"TASKHUB_TOKEN_ISSUER" envDefault:"taskhub"`
	TTL    time.Duration `env:"TASKHUB_TOKEN_TTL" envDefault:"1h"`
}

// TokenConfig defines how access tokens are signed and verified.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

// LoadTokenConfigFromEnv reads token signing configuration.
func LoadTokenConfigFromEnv(now func() time.Time) (TokenConfig, error) {
	var raw tokenEnv
	if err := env.Parse(&raw); err != nil {
		return TokenConfig{}, fmt.Errorf("parse token env: %w", err)
	}
	secret := strings.TrimSpace(raw.Secret)
	if secret == "" {
		return TokenConfig{}, fmt.Errorf("TASKHUB_TOKEN_SECRET is required")
	}
	if raw.TTL <= 0 {
		return TokenConfig{}, fmt.Errorf("TASKHUB_TOKEN_TTL must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return TokenConfig{
		Secret: []byte(secret),
		Issuer: strings.TrimSpace(raw.Issuer),
		TTL:    raw.TTL,
		Now:    now,
	}, nil
}

// TokenService issues and verifies signed access tokens whose subject is the
// user identifier. Verification is pure: no revocation state exists, so a
// token stays valid until it expires.
type TokenService struct {
	config TokenConfig
}

// NewTokenService builds a token service from cfg.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenService{config: cfg}, nil
}

// Issue signs an access token for the given user identifier.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.config.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    s.config.Issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.config.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a signed token and returns its subject user identifier.
func (s *TokenService) Verify(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperrors.New(apperrors.CodeTokenMissing, "bearer token is required")
	}

	var parsed jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return s.config.Secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return 0, mapJWTError(err)
	}

	if s.config.Issuer != "" && parsed.Issuer != s.config.Issuer {
		return 0, apperrors.New(apperrors.CodeTokenInvalid, "token issuer mismatch")
	}
	if parsed.ExpiresAt == nil {
		return 0, apperrors.New(apperrors.CodeTokenInvalid, "token exp is required")
	}
	now := s.config.Now().UTC()
	if !parsed.ExpiresAt.Time.UTC().After(now) {
		return 0, apperrors.New(apperrors.CodeTokenExpired, "token is expired")
	}

	userID, err := strconv.ParseInt(strings.TrimSpace(parsed.Subject), 10, 64)
	if err != nil || userID <= 0 {
		return 0, apperrors.New(apperrors.CodeTokenInvalid, "token subject is invalid")
	}
	return userID, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperrors.New(apperrors.CodeTokenInvalid, "token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeTokenInvalid, "token alg is invalid")
	}
	return apperrors.New(apperrors.CodeTokenInvalid, "token is invalid")
}
