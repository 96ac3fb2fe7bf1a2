package domain

import (
	"fmt"
	"time"
)

// TokenNotFoundError is returned when a confirmation token does not
// exist — either it never did, or it was already consumed.
type TokenNotFoundError struct {
	Token string
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("confirmation token not found: %s", e.Token)
}

// TokenExpiredError is returned when a token exists but is past its
// expiry. Distinct from TokenNotFoundError so the confirmation page can
// tell the user to contact their administrator instead of retrying.
type TokenExpiredError struct {
	Token     string
	ExpiredAt time.Time
}

func (e *TokenExpiredError) Error() string {
	return fmt.Sprintf("confirmation token expired at %s", e.ExpiredAt.Format(time.RFC3339))
}

// FicheNotFoundError is returned when a fiche ID does not exist.
type FicheNotFoundError struct {
	FicheID string
}

func (e *FicheNotFoundError) Error() string {
	return fmt.Sprintf("fiche not found: %s", e.FicheID)
}

// EstablishmentNotFoundError is returned when an establishment ID does not exist.
type EstablishmentNotFoundError struct {
	ID string
}

func (e *EstablishmentNotFoundError) Error() string {
	return fmt.Sprintf("establishment not found: %s", e.ID)
}

// ContactNotFoundError is returned when a contact ID does not exist.
type ContactNotFoundError struct {
	ContactID string
}

func (e *ContactNotFoundError) Error() string {
	return fmt.Sprintf("contact not found: %s", e.ContactID)
}

// UserNotFoundError is returned when no user matches the given email or id.
type UserNotFoundError struct {
	Key string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.Key)
}

// MeetingNotFoundError is returned when a meeting ID does not exist.
type MeetingNotFoundError struct {
	MeetingID string
}

func (e *MeetingNotFoundError) Error() string {
	return fmt.Sprintf("meeting not found: %s", e.MeetingID)
}

// ValidationError is returned for client-correctable input problems.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
