package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

// DefaultTokenLifetime is how long a session token stays valid.
const DefaultTokenLifetime = 7 * 24 * time.Hour

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, expired, malformed.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the JWT payload for a logged-in user.
type Claims struct {
	Role            domain.Role `json:"role"`
	EstablishmentID *string     `json:"establishment_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer. A zero lifetime falls back
// to DefaultTokenLifetime.
func NewTokenIssuer(secret string, lifetime time.Duration) *TokenIssuer {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenIssuer{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Issue creates a signed token for the user.
func (i *TokenIssuer) Issue(user *domain.User) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		Role:            user.Role,
		EstablishmentID: user.EstablishmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
