package models

import "time"

// Testimonial is a member review. MemberName is captured when submitted.
type Testimonial struct {
	ID         int64     `json:"id" db:"id"`
	MemberID   int64     `json:"member_id" db:"member_id"`
	MemberName string    `json:"member_name" db:"member_name"`
	Body       string    `json:"body" db:"body"`
	Rating     int       `json:"rating" db:"rating"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type TestimonialFilter struct {
	Rating   *int
	Page     int
	PageSize int
}
