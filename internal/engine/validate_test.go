package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
)

// Reference "Now" for the calculator scenarios: March 15th, 2024, mid-morning.
var refNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func TestValidate_ImpossibleDates(t *testing.T) {
	tests := []struct {
		name             string
		day, month, year int
	}{
		{"June 31st", 31, 6, 2000},
		{"April 31st", 31, 4, 2010},
		{"Feb 29th in common year", 29, 2, 2023},
		{"Feb 29th in century year", 29, 2, 1900},
		{"Feb 30th in leap year", 30, 2, 2020},
		{"Day zero", 0, 5, 2000},
		{"Month thirteen", 1, 13, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Validate(tt.day, tt.month, tt.year, engine.PastOnly, refNow)
			require.Error(t, err)

			fe, ok := engine.AsFieldErrors(err)
			require.True(t, ok, "Validation failures must be FieldErrors")
			require.Len(t, fe, 3, "The whole triple is flagged")

			for _, field := range []string{config.FieldDay, config.FieldMonth, config.FieldYear} {
				assert.True(t, fe.Has(field, engine.CodeImpossibleDate), "field %s", field)
			}
			// Every field carries the same message.
			for _, e := range fe {
				assert.Equal(t, config.MsgFieldDate, e.Message)
			}
		})
	}
}

func TestValidate_LeapDayIsReal(t *testing.T) {
	v, err := engine.Validate(29, 2, 2020, engine.PastOnly, refNow)
	require.NoError(t, err)
	assert.Equal(t, "2020-02-29", v.String())
	assert.Equal(t, engine.PastOnly, v.Direction())

	_, err = engine.Validate(29, 2, 2000, engine.PastOnly, refNow)
	assert.NoError(t, err, "2000 is divisible by 400 and therefore leap")
}

func TestValidate_Direction(t *testing.T) {
	tests := []struct {
		name             string
		day, month, year int
		dir              engine.Direction
		wantErr          bool
		wantMsg          string
	}{
		{"Past date, PastOnly", 20, 3, 1990, engine.PastOnly, false, ""},
		{"Today, PastOnly", 15, 3, 2024, engine.PastOnly, false, ""},
		{"Tomorrow, PastOnly", 16, 3, 2024, engine.PastOnly, true, config.MsgFieldPast},
		{"Next year, PastOnly", 1, 1, 2025, engine.PastOnly, true, config.MsgFieldPast},
		{"Future date, FutureOnly", 1, 1, 2025, engine.FutureOnly, false, ""},
		{"Today, FutureOnly", 15, 3, 2024, engine.FutureOnly, false, ""},
		{"Yesterday, FutureOnly", 14, 3, 2024, engine.FutureOnly, true, config.MsgFieldFuture},
		{"Far past, FutureOnly", 20, 3, 1990, engine.FutureOnly, true, config.MsgFieldFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := engine.Validate(tt.day, tt.month, tt.year, tt.dir, refNow)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.False(t, v.IsZero())
				assert.Equal(t, tt.dir, v.Direction())
				return
			}

			fe, ok := engine.AsFieldErrors(err)
			require.True(t, ok)
			require.Len(t, fe, 1, "Direction violations flag the year field alone")
			assert.Equal(t, config.FieldYear, fe[0].Field)
			assert.Equal(t, engine.CodeDirectionViolation, fe[0].Code)
			assert.Equal(t, tt.wantMsg, fe[0].Message)
			assert.True(t, v.IsZero())
		})
	}
}

// TestValidate_TimeOfDayIgnored ensures "today" means the calendar day of now,
// whatever the hour.
func TestValidate_TimeOfDayIgnored(t *testing.T) {
	justAfterMidnight := time.Date(2024, 3, 15, 0, 0, 1, 0, time.UTC)
	_, err := engine.Validate(15, 3, 2024, engine.PastOnly, justAfterMidnight)
	assert.NoError(t, err)

	lateEvening := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	_, err = engine.Validate(15, 3, 2024, engine.FutureOnly, lateEvening)
	assert.NoError(t, err)
}

// TestValidate_UsesLocationOfNow ensures the date is built in now's zone.
func TestValidate_UsesLocationOfNow(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, tokyo) // Still March 14th in UTC

	v, err := engine.Validate(15, 3, 2024, engine.PastOnly, now)
	require.NoError(t, err)
	assert.Equal(t, tokyo, v.Time().Location())
}

func TestValidate_UnknownDirection(t *testing.T) {
	_, err := engine.Validate(1, 1, 2000, engine.Direction(7), refNow)
	require.Error(t, err)

	_, isField := engine.AsFieldErrors(err)
	assert.False(t, isField, "A programming error is not a field error")
	assert.Contains(t, err.Error(), config.ErrDirection)
}

func TestFieldErrors_Helpers(t *testing.T) {
	fe := engine.FieldErrors{
		{Field: config.FieldDay, Code: engine.CodeMissingField, Message: config.MsgFieldRequired},
		{Field: config.FieldYear, Code: engine.CodeOutOfRange, Message: config.MsgFieldInvalid},
		{Field: config.FieldYear, Code: engine.CodeDirectionViolation, Message: config.MsgFieldPast},
	}

	assert.Equal(t, []string{config.FieldDay, config.FieldYear}, fe.Fields())
	assert.Len(t, fe.For(config.FieldYear), 2)
	assert.Empty(t, fe.For(config.FieldMonth))
	assert.Contains(t, fe.Error(), "day: Required field")
	assert.Contains(t, fe.Error(), "year: It must be in the past")
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, config.DirectionPast, engine.PastOnly.String())
	assert.Equal(t, config.DirectionFuture, engine.FutureOnly.String())
	assert.Equal(t, "direction(9)", engine.Direction(9).String())
}
