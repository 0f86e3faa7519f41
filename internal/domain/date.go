package domain

import "time"

// DateLayout is the calendar-date format used on the wire and in exports.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date. The zero time stays zero.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// WithinRange reports whether d falls inside [start, end]. A zero bound is open.
func WithinRange(d, start, end time.Time) bool {
	d = Day(d)
	if !start.IsZero() && d.Before(Day(start)) {
		return false
	}
	if !end.IsZero() && d.After(Day(end)) {
		return false
	}
	return true
}
