package models

import "time"

const (
	BookingStatusPending  = "pending"
	BookingStatusApproved = "approved"
	BookingStatusRejected = "rejected"
)

// Trainer can be booked by members.
type Trainer struct {
	ID        int64     `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Specialty *string   `json:"specialty,omitempty" db:"specialty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Booking is a member's request for a trainer session.
type Booking struct {
	ID          int64      `json:"id" db:"id"`
	MemberID    int64      `json:"member_id" db:"member_id"`
	TrainerID   int64      `json:"trainer_id" db:"trainer_id"`
	BookingDate time.Time  `json:"booking_date" db:"booking_date"`
	BookingTime string     `json:"booking_time" db:"booking_time"` // HH:MM
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty" db:"decided_at"`

	MemberName  string `json:"member_name,omitempty"`
	TrainerName string `json:"trainer_name,omitempty"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	MemberID *int64
	Status   *string
	Search   *string // member name
	Page     int
	PageSize int
}
