package domain

import "time"

// HistoryType tags what kind of event a history entry records.
type HistoryType string

const (
	HistoryReminderSent HistoryType = "reminder_sent"
	HistoryConfirmation HistoryType = "confirmation"
)

// HistoryEntry is an append-only audit record. Entries are written by
// the scanner (one per notified fiche) and by the confirmation handler
// (exactly one per consumed token); nothing ever mutates or deletes them.
type HistoryEntry struct {
	ID               string      `json:"id"`
	EstablishmentID  string      `json:"establishment_id"`
	FicheID          string      `json:"fiche_id"`
	Type             HistoryType `json:"type"`
	FicheName        string      `json:"fiche_name"`
	CompletionDate   *time.Time  `json:"completion_date,omitempty"`
	NextDue          time.Time   `json:"next_due"`
	Comment          string      `json:"comment,omitempty"`
	ContactsNotified []string    `json:"contacts_notified,omitempty"`
	EmailsSent       int         `json:"emails_sent,omitempty"`
	RecordedAt       time.Time   `json:"recorded_at"`
}
