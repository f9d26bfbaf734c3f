package core

import "time"

// Calendar helpers shared by the aggregation, snapshot and recurring logic.
// All derived dates are UTC at midnight; callers pass whatever instant they
// have and get back day-granular values.

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// StartOfMonth returns midnight UTC on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last instant of t's calendar day, so that inclusive
// end-date filters cover the whole day instead of cutting off at midnight.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// LastDayOfMonth returns the number of days in t's month.
func LastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthDay returns midnight UTC on the given day of t's month, clamping days
// past the end of a short month to its last day (day 31 in February yields
// the 28th or 29th).
func MonthDay(t time.Time, day int) time.Time {
	if last := LastDayOfMonth(t); day > last {
		day = last
	}
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, time.UTC)
}

// MonthKey returns the calendar-month bucket key for t, e.g. "2025-08".
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// DayKey returns the calendar-day key for t, e.g. "2025-08-31".
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}
