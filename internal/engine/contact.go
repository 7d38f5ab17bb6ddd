package engine

import "time"

// ContactAge is one row of the contacts ages report.
type ContactAge struct {
	// UID is a stable hash of name and birth date.
	UID string `json:"uid"`

	Name string `json:"name"`

	// DateOfBirth is the parsed BDAY. When the year is unknown it sits in a leap year.
	DateOfBirth time.Time `json:"date_of_birth"`

	// YearKnown indicates if the vCard contained a year or just --MM-DD.
	YearKnown bool `json:"year_known"`

	// Age is the exact span since birth. Zero when YearKnown is false.
	Age Difference `json:"age"`

	// NextBirthday is the next occurrence, today included.
	NextBirthday time.Time `json:"next_birthday"`

	// UntilNext is the span from today to NextBirthday.
	UntilNext Difference `json:"until_next"`
}
