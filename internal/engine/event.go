package engine

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-datespan/internal/config"
)

// EventCalendar renders a single all-day VEVENT on the event date. The
// description carries the countdown from now, computed with Diff.
// The date must have been validated as FutureOnly against now.
func EventCalendar(event ValidatedDate, now time.Time, summary string) ([]byte, error) {
	if event.IsZero() || event.Direction() != FutureOnly {
		return nil, errors.New(config.ErrNotFutureDate)
	}
	if summary == "" {
		summary = config.EventSummary
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	span := Diff(event, now)

	ev := ical.NewEvent()
	ev.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatEventUID,
		event.Time().Format(config.DateFormatEventUID), config.ICalDomain))
	ev.Props.SetText(config.PropSummary, summary)
	ev.Props.SetText(config.PropDescription, fmt.Sprintf(config.FormatEventDescr, span.Years, span.Months, span.Days))

	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(now.UTC())
	ev.Props.Set(stamp)

	start := ical.NewProp(config.PropDTStart)
	start.SetDate(event.Time())
	ev.Props.Set(start)

	cal.Children = append(cal.Children, ev.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}
