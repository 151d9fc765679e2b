// Package membership classifies a membership window against the current time.
package membership

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"gym_backend/pkg/utils"
)

type State string

const (
	StateActive       State = "active"
	StateExpiringSoon State = "expiring_soon"
	StateExpired      State = "expired"

	// ExpiringWindow is how close to expiry a membership counts as expiring soon.
	ExpiringWindow = 7 * 24 * time.Hour
)

var ErrInvalidDate = errors.New("invalid membership date")

// Status is the evaluated state. DaysLeft is only meaningful for StateExpiringSoon.
type Status struct {
	State    State `json:"state"`
	DaysLeft int   `json:"days_left"`
}

func (s Status) String() string {
	return string(s.State)
}

// MarshalJSON writes days_left only for StateExpiringSoon, where 0 means the expiry date is today.
func (s Status) MarshalJSON() ([]byte, error) {
	out := struct {
		State    State `json:"state"`
		DaysLeft *int  `json:"days_left,omitempty"`
	}{State: s.State}
	if s.State == StateExpiringSoon {
		days := s.DaysLeft
		out.DaysLeft = &days
	}
	return json.Marshal(out)
}

// Evaluate classifies a window. expiresAt is read as a calendar date at midnight in now's location.
// Registration does not affect the result; a window that has ended is expired whenever it began.
func Evaluate(registeredAt, expiresAt, now time.Time) Status {
	expiry := utils.DateIn(expiresAt, now.Location())
	if expiry.Before(now) {
		return Status{State: StateExpired}
	}
	remaining := expiry.Sub(now)
	if remaining <= ExpiringWindow {
		days := int(math.Ceil(float64(remaining) / float64(24*time.Hour)))
		return Status{State: StateExpiringSoon, DaysLeft: days}
	}
	return Status{State: StateActive}
}

// EvaluateStrings parses YYYY-MM-DD or DD/MM/YYYY dates before evaluating.
// Malformed input or an expiry before registration yields StateExpired together with ErrInvalidDate.
func EvaluateStrings(registered, expires string, now time.Time) (Status, error) {
	loc := now.Location()
	reg, err := utils.ParseCalendarDate(registered, loc)
	if err != nil {
		return Status{State: StateExpired}, ErrInvalidDate
	}
	exp, err := utils.ParseCalendarDate(expires, loc)
	if err != nil {
		return Status{State: StateExpired}, ErrInvalidDate
	}
	if exp.Before(reg) {
		return Status{State: StateExpired}, ErrInvalidDate
	}
	return Evaluate(reg, exp, now), nil
}

// Matches reports whether s satisfies a list filter: "active", "expiring" or "expired".
// An active filter includes memberships that are expiring soon.
func (s Status) Matches(filter string) bool {
	switch filter {
	case "", "all":
		return true
	case "active":
		return s.State != StateExpired
	case "expiring":
		return s.State == StateExpiringSoon
	case "expired":
		return s.State == StateExpired
	}
	return false
}

// Cutoffs returns the calendar-date bounds equivalent to Evaluate for a given now:
// expiry dates on or after activeFrom are not expired, and those also on or before
// expiringThrough are expiring soon. Both are midnight in now's location.
func Cutoffs(now time.Time) (activeFrom, expiringThrough time.Time) {
	loc := now.Location()
	today := utils.Today(now, loc)
	activeFrom = today
	if now.After(today) {
		activeFrom = today.AddDate(0, 0, 1)
	}
	expiringThrough = utils.Today(now.Add(ExpiringWindow), loc)
	return activeFrom, expiringThrough
}
