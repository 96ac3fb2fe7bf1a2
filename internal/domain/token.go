package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultTokenTTL is how long a confirmation link stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// ConfirmationToken is a single-use credential linking one reminder
// occurrence to a pending confirmation. The establishment id is stored
// alongside the fiche reference so resolving the owning tenant never
// requires scanning partitions.
type ConfirmationToken struct {
	Token           string    `json:"token"`
	FicheID         string    `json:"fiche_id"`
	EstablishmentID string    `json:"establishment_id"`
	FicheName       string    `json:"fiche_name"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *ConfirmationToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// NewTokenValue returns a fresh 256-bit random token encoded as hex.
func NewTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
