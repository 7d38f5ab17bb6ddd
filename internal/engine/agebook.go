package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-datespan/internal/config"
)

// SourceConfig describes where the contacts come from.
type SourceConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Absolute path to the .vcf file
	WebURL    string // CardDAV or WebDAV URL
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

// AgeBook turns a vCard address book into exact ages and birthday countdowns.
type AgeBook struct {
	Clock   Clock        // Interface for time mocking.
	Fetcher VCardFetcher // Interface for network abstraction.
}

// reportStats counts what happened while reading the address book.
type reportStats struct{ processed, withBday, skipped int }

// Load reads the configured source and returns one ContactAge per contact
// with a usable BDAY, sorted by next birthday. The clock is read once for the
// whole report.
func (b *AgeBook) Load(ctx context.Context, cfg SourceConfig) ([]ContactAge, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := b.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contacts, err := b.buildReport(ctx, reader, b.Clock.Now())
	if err == nil {
		log.Debug(config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return contacts, err
}

// acquireStream opens the appropriate data source based on configuration.
func (b *AgeBook) acquireStream(ctx context.Context, cfg SourceConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if b.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return b.Fetcher.Fetch(ctx, cfg.WebURL, Credentials{User: cfg.WebUser, Pass: cfg.WebPass})
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// streamReader remembers the first transport error seen under the decoder,
// so a broken stream can be told apart from a malformed card.
type streamReader struct {
	r   io.Reader
	err error
}

func (s *streamReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}

// buildReport decodes every card and computes the spans against now.
// Malformed cards are skipped; a failing stream aborts the report.
func (b *AgeBook) buildReport(ctx context.Context, r io.Reader, now time.Time) ([]ContactAge, error) {
	stream := &streamReader{r: r}
	decoder := vcard.NewDecoder(stream)
	var stats reportStats
	var contacts []ContactAge

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if stream.err != nil {
			return nil, fmt.Errorf("%s: %s: %w", config.ErrVCardParse, config.ErrVCardRead, stream.err)
		}
		if err != nil {
			// Keep going: one broken card should not hide the others.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, yearKnown, err := parseDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}

		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil {
			name = n.Value
		}

		entry, err := contactAge(name, birthDate, yearKnown, now)
		if err != nil {
			stats.skipped++
			slog.Warn(config.MsgSkippedFuture,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyDOB, birthDate.Format(config.DateFormatFullDash),
				config.LogKeyError, err)
			continue
		}
		stats.withBday++
		contacts = append(contacts, entry)
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].NextBirthday.Before(contacts[j].NextBirthday)
	})

	slog.Info(config.MsgReportReady,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBday),
			slog.Int(config.LogKeySkipped, stats.skipped),
		),
	)
	return contacts, nil
}

// contactAge runs the birth date through the same validator as the
// calculator: a birth date must be PastOnly, the next birthday FutureOnly.
func contactAge(name string, birthDate time.Time, yearKnown bool, now time.Time) (ContactAge, error) {
	input := fmt.Sprintf(config.FormatHashInput, name, birthDate.Format(time.RFC3339), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))

	entry := ContactAge{
		UID:         fmt.Sprintf("%x", hash[:config.UIDHashLength]),
		Name:        name,
		DateOfBirth: birthDate,
		YearKnown:   yearKnown,
	}

	if yearKnown {
		born, err := Validate(birthDate.Day(), int(birthDate.Month()), birthDate.Year(), PastOnly, now)
		if err != nil {
			return ContactAge{}, err
		}
		entry.Age = Diff(born, now)
	}

	next := nextOccurrence(now, birthDate)
	upcoming, err := Validate(next.Day(), int(next.Month()), next.Year(), FutureOnly, now)
	if err != nil {
		return ContactAge{}, err
	}
	entry.NextBirthday = upcoming.Time()
	entry.UntilNext = Diff(upcoming, now)

	return entry, nil
}

// nextOccurrence returns the next birthday relative to now, today included.
// time.Date rolls Feb 29 over to March 1 in common years.
func nextOccurrence(now time.Time, birthDate time.Time) time.Time {
	loc := now.Location()
	candidate := time.Date(now.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	if candidate.Before(startOfDay(now)) {
		candidate = time.Date(now.Year()+1, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	}
	return candidate
}

// parseDate handles various vCard date formats.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (year unknown) get parked in a leap year so --02-29 survives.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safeDate := time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return safeDate, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
