package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/go-datespan/internal/config"
)

// Result is the outcome of one successful submission.
type Result struct {
	Reference ValidatedDate
	Today     time.Time
	Span      Difference
}

// Calculator runs validate-then-diff passes for the shells.
type Calculator struct {
	Clock Clock
}

// NewCalculator returns a Calculator bound to clock.
func NewCalculator(clock Clock) *Calculator {
	return &Calculator{Clock: clock}
}

// Submit validates raw for dir and computes its span. The clock is read once,
// so validation and the difference always agree on what "today" is.
// A rejected input returns FieldErrors.
func (c *Calculator) Submit(ctx context.Context, raw RawDateInput, dir Direction) (Result, error) {
	now := c.Clock.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyDirection, dir.String(),
	)

	ref, err := raw.Validate(dir, now)
	if err != nil {
		if fe, ok := AsFieldErrors(err); ok {
			log.DebugContext(ctx, config.MsgCalcRejected, config.LogKeyFields, fe.Fields())
		}
		return Result{}, err
	}

	span := Diff(ref, now)
	log.DebugContext(ctx, config.MsgCalcDone,
		config.LogKeyValue, ref.String(),
		slog.Group(config.LogKeySpan,
			slog.Int("years", span.Years),
			slog.Int("months", span.Months),
			slog.Int("days", span.Days),
		),
	)

	return Result{Reference: ref, Today: startOfDay(now), Span: span}, nil
}

// SubmitFields parses the three raw field values first, then submits them.
// Coarse field errors are returned without touching the calendar checks.
func (c *Calculator) SubmitFields(ctx context.Context, day, month, year string, dir Direction) (Result, error) {
	raw, err := ParseRawInput(day, month, year)
	if err != nil {
		return Result{}, err
	}
	return c.Submit(ctx, raw, dir)
}
