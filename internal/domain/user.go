package domain

import "time"

// Role distinguishes the global super-admin from per-establishment admins.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
)

// User is an authenticated account. EstablishmentID is nil for
// super-admins, who are not bound to a tenant.
type User struct {
	ID              string    `json:"id"`
	EstablishmentID *string   `json:"establishment_id,omitempty"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Name            string    `json:"name"`
	Role            Role      `json:"role"`
	CreatedAt       time.Time `json:"created_at"`
}

// CanAccess reports whether the user may act on the given establishment.
func (u *User) CanAccess(establishmentID string) bool {
	if u.Role == RoleSuperAdmin {
		return true
	}
	return u.EstablishmentID != nil && *u.EstablishmentID == establishmentID
}
