package engine

import "time"

// civilDate builds midnight of the given calendar day in loc.
// time.Date normalizes out-of-range components (April 31 becomes May 1),
// which is exactly what the round-trip check in Validate relies on.
func civilDate(year, month, day int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in month of year.
// Months outside 1..12 wrap across year boundaries: DaysInMonth(2024, 0) is
// the length of December 2023.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLeapYear reports whether February of year has 29 days.
func IsLeapYear(year int) bool {
	return DaysInMonth(year, time.February) == 29
}
