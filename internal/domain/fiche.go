package domain

import "time"

// FicheStatus represents the states a maintenance fiche can be in.
type FicheStatus string

const (
	// StatusPending means the fiche is waiting for its next_due date.
	StatusPending FicheStatus = "PENDING"
	// StatusNotified means a reminder was sent and confirmation is awaited.
	StatusNotified FicheStatus = "NOTIFIED"
	// StatusCompleted means a confirmation was received for the last occurrence.
	StatusCompleted FicheStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s FicheStatus) Valid() bool {
	return s == StatusPending || s == StatusNotified || s == StatusCompleted
}

// Fiche is a recurring maintenance task owned by an establishment.
// next_due drives the daily scan; the scanner advances it provisionally
// at notification time and the confirmation handler overwrites it with
// the value computed from the actual completion date.
type Fiche struct {
	ID                string       `json:"id"`
	EstablishmentID   string       `json:"establishment_id"`
	Name              string       `json:"name"`
	PDFURL            string       `json:"pdf_url,omitempty"`
	PeriodicityMonths int          `json:"periodicity_months"`
	NextDue           time.Time    `json:"next_due"`
	LastCompleted     *time.Time   `json:"last_completed,omitempty"`
	LastSentAt        *time.Time   `json:"last_sent_at,omitempty"`
	ContactIDs        []string     `json:"contact_ids"`
	OwnerName         string       `json:"owner_name,omitempty"`
	OwnerEmail        string       `json:"owner_email,omitempty"`
	DeputyName        string       `json:"deputy_name,omitempty"`
	DeputyEmail       string       `json:"deputy_email,omitempty"`
	Comment           string       `json:"comment,omitempty"`
	Status            FicheStatus  `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// DueAsOf reports whether the fiche is eligible for notification on the
// given day. Fiches in NOTIFIED state are excluded implicitly: their
// next_due was provisionally advanced past today when the reminder went
// out, so they only come due again a full period later.
func (f *Fiche) DueAsOf(today time.Time) bool {
	return !f.NextDue.After(today)
}
