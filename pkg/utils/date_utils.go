package utils

import (
	"errors"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DayMonthLayout = "02/01/2006"
	ClockLayout    = "15:04"
)

var ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD or DD/MM/YYYY")

// ParseCalendarDate accepts YYYY-MM-DD or DD/MM/YYYY and returns midnight of that day in loc.
func ParseCalendarDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{DateLayout, DayMonthLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// DateIn reinterprets the calendar day of t (in t's own location) as midnight in loc.
// DATE columns come back from the driver as UTC midnight; this pins them to the gym's timezone.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Today returns midnight of the current day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateIn(now.In(loc), loc)
}

// IsClock reports whether s is a 24h HH:MM time.
func IsClock(s string) bool {
	_, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	return err == nil
}
