package domain

import "time"

// DateLayout is the canonical calendar-date format used across the journal.
const DateLayout = "2006-01-02"

// Day truncates a timestamp to its calendar day at UTC midnight.
// All dates in the journal and the snapshot sequence are stored in this form,
// so days compare with == and work as map keys.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDate builds a calendar day at UTC midnight.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DaysBetween returns the number of whole days from a to b.
// Negative if b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
