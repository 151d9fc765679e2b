package models

import (
	"time"

	"gym_backend/internal/membership"
)

// Member is a gym member. Admins create the record; the member attaches credentials at signup.
type Member struct {
	ID           int64              `json:"id" db:"id"`
	FullName     string             `json:"full_name" db:"full_name"`
	Email        string             `json:"email" db:"email"`
	PhoneNumber  string             `json:"phone_number" db:"phone_number"` // E.164
	RegisteredAt time.Time          `json:"registered_at" db:"registered_at"`
	ExpiresAt    time.Time          `json:"expires_at" db:"expires_at"`
	Username     *string            `json:"username,omitempty" db:"username"`
	PasswordHash *string            `json:"-" db:"password_hash"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
	Membership   *membership.Status `json:"membership,omitempty"`
}

// HasAccount reports whether signup has already attached credentials.
func (m *Member) HasAccount() bool {
	return m.Username != nil && *m.Username != ""
}

// MemberFilter narrows member listings.
type MemberFilter struct {
	Search           *string
	ExpiresOnOrAfter *time.Time
	ExpiresBefore    *time.Time
	Page             int
	PageSize         int // <= 0 returns every row
}

// MemberWindow is the slice of a member needed for status aggregation.
type MemberWindow struct {
	ID           int64
	FullName     string
	RegisteredAt time.Time
	ExpiresAt    time.Time
}
