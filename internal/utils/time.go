package utils

import (
	"time"
)

// StartOfMonth returns the first instant of the calendar month containing t.
func StartOfMonth(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last instant of the calendar month containing t.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// MonthRange returns the inclusive [first, last] instants of the calendar
// month containing t, used to bound the monthly volume aggregation.
func MonthRange(t time.Time) (time.Time, time.Time) {
	return StartOfMonth(t), EndOfMonth(t)
}
