package domain

import "time"

// EmailSettings is the per-establishment outbound mail configuration,
// stored as a JSONB column. An establishment with Configured == false
// is skipped entirely by the daily scan.
type EmailSettings struct {
	Configured   bool   `json:"configured"`
	FromName     string `json:"from_name,omitempty"`
	FromEmail    string `json:"from_email,omitempty"`
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPUser     string `json:"smtp_user,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`
}

// Establishment is a tenant: an organization owning its own fiches,
// contacts, meetings and users.
type Establishment struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Address    string        `json:"address,omitempty"`
	City       string        `json:"city,omitempty"`
	PostalCode string        `json:"postal_code,omitempty"`
	Country    string        `json:"country,omitempty"`
	Phone      string        `json:"phone,omitempty"`
	Email      string        `json:"email,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	EmailCfg   EmailSettings `json:"email_settings"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Contact is a person notified when one of the establishment's fiches
// comes due.
type Contact struct {
	ID              string    `json:"id"`
	EstablishmentID string    `json:"establishment_id"`
	LastName        string    `json:"last_name"`
	FirstName       string    `json:"first_name,omitempty"`
	Role            string    `json:"role,omitempty"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Mobile          string    `json:"mobile,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
