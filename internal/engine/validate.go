package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-datespan/internal/config"
)

// Direction selects which side of "today" a date must lie on.
type Direction int

const (
	// PastOnly accepts dates up to and including today (age since a birth date).
	PastOnly Direction = iota
	// FutureOnly accepts dates from today onwards (time until an event).
	FutureOnly
)

// String returns the stable name used in logs, metrics and the API.
func (d Direction) String() string {
	switch d {
	case PastOnly:
		return config.DirectionPast
	case FutureOnly:
		return config.DirectionFuture
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Code classifies a field-level validation failure.
type Code string

const (
	// CodeMissingField means a required field had no value.
	CodeMissingField Code = "missing_field"
	// CodeOutOfRange means a value failed its coarse per-field bound.
	CodeOutOfRange Code = "out_of_range"
	// CodeImpossibleDate means the triple does not name a real calendar day.
	CodeImpossibleDate Code = "impossible_date"
	// CodeDirectionViolation means the date is real but on the wrong side of today.
	CodeDirectionViolation Code = "direction_violation"
)

// FieldError associates one input field with a human-readable reason.
type FieldError struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// FieldErrors is the complete set of problems found in one submission.
// It implements error so it can travel through ordinary error returns.
type FieldErrors []FieldError

// Error joins every field error into a single line.
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, config.MsgFieldErrorJoin)
}

// For returns the errors attached to field, in report order.
func (fe FieldErrors) For(field string) []FieldError {
	var out []FieldError
	for _, e := range fe {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether field carries an error with the given code.
func (fe FieldErrors) Has(field string, code Code) bool {
	for _, e := range fe {
		if e.Field == field && e.Code == code {
			return true
		}
	}
	return false
}

// Fields lists the distinct fields that carry at least one error.
func (fe FieldErrors) Fields() []string {
	seen := make(map[string]bool, len(fe))
	var out []string
	for _, e := range fe {
		if !seen[e.Field] {
			seen[e.Field] = true
			out = append(out, e.Field)
		}
	}
	return out
}

// AsFieldErrors extracts the field errors carried by err, if any.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ValidatedDate is a real calendar day that satisfied a Direction against a
// specific "now". The zero value is not valid; only Validate builds one.
type ValidatedDate struct {
	date time.Time
	dir  Direction
}

// Time returns midnight of the validated day, in the location of the "now"
// it was validated against.
func (v ValidatedDate) Time() time.Time { return v.date }

// Direction returns the constraint the date was validated for.
func (v ValidatedDate) Direction() Direction { return v.dir }

// IsZero reports whether v was never produced by Validate.
func (v ValidatedDate) IsZero() bool { return v.date.IsZero() }

// String formats the date as YYYY-MM-DD.
func (v ValidatedDate) String() string { return v.date.Format(time.DateOnly) }

// Validate checks that (day, month, year) names a real Gregorian day and that
// the day lies on the side of now required by dir. Only the calendar day of
// now matters; its time of day is ignored.
//
// On failure the returned error is always a FieldErrors:
//   - impossible dates flag day, month and year with the same message;
//   - direction violations flag the year field alone.
//
// Coarse bounds (presence, positivity, day <= 31, month <= 12) belong to
// ParseRawInput. Values outside them are still handled safely here: they fail
// the round trip.
func Validate(day, month, year int, dir Direction, now time.Time) (ValidatedDate, error) {
	if dir != PastOnly && dir != FutureOnly {
		return ValidatedDate{}, fmt.Errorf("%s: %s", config.ErrDirection, dir)
	}

	date := civilDate(year, month, day, now.Location())
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return ValidatedDate{}, impossibleDate()
	}

	today := startOfDay(now)
	switch {
	case dir == PastOnly && date.After(today):
		return ValidatedDate{}, FieldErrors{{Field: config.FieldYear, Code: CodeDirectionViolation, Message: config.MsgFieldPast}}
	case dir == FutureOnly && date.Before(today):
		return ValidatedDate{}, FieldErrors{{Field: config.FieldYear, Code: CodeDirectionViolation, Message: config.MsgFieldFuture}}
	}

	return ValidatedDate{date: date, dir: dir}, nil
}

// impossibleDate flags the whole triple rather than guessing which field is wrong.
func impossibleDate() FieldErrors {
	return FieldErrors{
		{Field: config.FieldDay, Code: CodeImpossibleDate, Message: config.MsgFieldDate},
		{Field: config.FieldMonth, Code: CodeImpossibleDate, Message: config.MsgFieldDate},
		{Field: config.FieldYear, Code: CodeImpossibleDate, Message: config.MsgFieldDate},
	}
}
