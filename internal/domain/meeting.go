package domain

import "time"

// Meeting is a recurring establishment meeting (réunion). Plain CRUD,
// no scheduling machinery attached.
type Meeting struct {
	ID              string    `json:"id"`
	EstablishmentID string    `json:"establishment_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Weekday         int       `json:"weekday"` // 0 = Sunday … 6 = Saturday
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	Frequency       string    `json:"frequency"` // e.g. "weekly", "monthly"
	Location        string    `json:"location,omitempty"`
	VideoURL        string    `json:"video_url,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
