package engine

import (
	"time"

	"github.com/tartampluch/go-datespan/internal/config"
)

// Difference is a calendar span expressed in whole years, months and days.
// Months stay within [0,11] and days within [0,30].
type Difference struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// IsZero reports whether the span is empty (same calendar day).
func (d Difference) IsZero() bool {
	return d == Difference{}
}

// AddTo applies the span to t with calendar addition. For every result of
// Diff, AddTo on the earlier date yields the later one exactly.
func (d Difference) AddTo(t time.Time) time.Time {
	return t.AddDate(d.Years, d.Months, d.Days)
}

// Diff computes the calendar span between a validated date and current.
// The roles follow the date's direction so the result is never negative:
// a PastOnly date is the start of the span, a FutureOnly date its end.
// Only the calendar day of current is used.
//
// current must be the same "now" the date was validated against; Diff has
// no failure path of its own.
func Diff(reference ValidatedDate, current time.Time) Difference {
	if reference.Direction() == FutureOnly {
		return between(current, reference.Time())
	}
	return between(reference.Time(), current)
}

// between subtracts field by field and borrows from preceding months when
// the day count goes negative. Borrowing walks backwards from the month
// before to's month, so a start day longer than that month (31 Jan -> 1 Mar)
// borrows again instead of producing negative days.
func between(from, to time.Time) Difference {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()

	years := y2 - y1
	months := int(m2 - m1)
	days := d2 - d1

	borrow := m2
	for days < 0 {
		borrow--
		months--
		days += DaysInMonth(y2, borrow)
	}
	for months < 0 {
		years--
		months += config.MonthsPerYear
	}

	return Difference{Years: years, Months: months, Days: days}
}
