package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datespan/internal/config"
	"github.com/tartampluch/go-datespan/internal/engine"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// tickingClock advances by step on every read, simulating a submission that
// straddles midnight.
type tickingClock struct {
	mu    sync.Mutex
	next  time.Time
	step  time.Duration
	reads int
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	c.reads++
	return now
}

func TestCalculator_Submit(t *testing.T) {
	calc := engine.NewCalculator(MockClock{CurrentTime: refNow})

	res, err := calc.Submit(context.Background(), engine.RawDateInput{Day: 29, Month: 2, Year: 2020}, engine.PastOnly)
	require.NoError(t, err)

	assert.Equal(t, engine.Difference{Years: 4, Days: 15}, res.Span)
	assert.Equal(t, "2020-02-29", res.Reference.String())
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), res.Today)
}

func TestCalculator_Submit_Rejections(t *testing.T) {
	calc := engine.NewCalculator(MockClock{CurrentTime: refNow})

	res, err := calc.Submit(context.Background(), engine.RawDateInput{Day: 31, Month: 6, Year: 2000}, engine.PastOnly)
	fe, ok := engine.AsFieldErrors(err)
	require.True(t, ok)
	assert.Len(t, fe, 3)
	assert.True(t, res.Reference.IsZero(), "No result accompanies field errors")
	assert.True(t, res.Span.IsZero())

	_, err = calc.Submit(context.Background(), engine.RawDateInput{Day: 1, Month: 1, Year: 2025}, engine.PastOnly)
	fe, ok = engine.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{config.FieldYear}, fe.Fields())
}

// TestCalculator_SamplesClockOnce verifies that validation and the difference
// use the same instant even if the wall clock crosses midnight mid-submission.
func TestCalculator_SamplesClockOnce(t *testing.T) {
	clock := &tickingClock{
		next: time.Date(2024, 3, 15, 23, 59, 59, 999_000_000, time.UTC),
		step: time.Second,
	}
	calc := engine.NewCalculator(clock)

	res, err := calc.Submit(context.Background(), engine.RawDateInput{Day: 15, Month: 3, Year: 2024}, engine.PastOnly)
	require.NoError(t, err)
	assert.True(t, res.Span.IsZero(), "Today minus today is zero, not one day")
	assert.Equal(t, 1, clock.reads)
}

func TestCalculator_SubmitFields(t *testing.T) {
	calc := engine.NewCalculator(MockClock{CurrentTime: refNow})

	res, err := calc.SubmitFields(context.Background(), "1", "1", "2025", engine.FutureOnly)
	require.NoError(t, err)
	assert.Equal(t, engine.Difference{Months: 9, Days: 17}, res.Span)

	_, err = calc.SubmitFields(context.Background(), "", "2", "2020", engine.PastOnly)
	fe, ok := engine.AsFieldErrors(err)
	require.True(t, ok)
	assert.True(t, fe.Has(config.FieldDay, engine.CodeMissingField))
}

func TestFixedClock(t *testing.T) {
	c := engine.FixedClock(refNow)
	assert.Equal(t, refNow, c.Now())
	assert.Equal(t, c.Now(), c.Now())
}
