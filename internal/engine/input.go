package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-datespan/internal/config"
)

// RawDateInput is the unvalidated triple collected by a shell for one submission.
type RawDateInput struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Validate runs the calendar checks on the triple. See Validate.
func (r RawDateInput) Validate(dir Direction, now time.Time) (ValidatedDate, error) {
	return Validate(r.Day, r.Month, r.Year, dir, now)
}

// ParseRawInput applies the coarse per-field rules that shells enforce before
// calendar validation: each field is required, must be a positive integer,
// and day/month must not exceed 31/12. Every failing field is reported.
func ParseRawInput(day, month, year string) (RawDateInput, error) {
	var errs FieldErrors
	raw := RawDateInput{
		Day:   parseField(config.FieldDay, day, config.MaxDay, &errs),
		Month: parseField(config.FieldMonth, month, config.MaxMonth, &errs),
		Year:  parseField(config.FieldYear, year, 0, &errs),
	}
	if len(errs) > 0 {
		return RawDateInput{}, errs
	}
	return raw, nil
}

// parseField converts one field; max <= 0 means no upper bound.
func parseField(field, value string, max int, errs *FieldErrors) int {
	value = strings.TrimSpace(value)
	if value == "" {
		*errs = append(*errs, FieldError{Field: field, Code: CodeMissingField, Message: config.MsgFieldRequired})
		return 0
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < config.MinFieldValue || (max > 0 && n > max) {
		*errs = append(*errs, FieldError{Field: field, Code: CodeOutOfRange, Message: config.MsgFieldInvalid})
		return 0
	}
	return n
}
