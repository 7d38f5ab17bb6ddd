package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// A Calculator samples it exactly once per submission and hands the same
// instant to both validation and the difference computation.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant. Useful for the CLI, replays and tests.
type FixedClock time.Time

// Now returns the wrapped instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
