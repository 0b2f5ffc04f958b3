package calendar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"aqevent/internal/timerange"
	"aqevent/pkg/model"
)

const productID = "-//AQEvent//Venue Calendar//EN"

// ImportICS reads holidays from an iCalendar stream. Single-day entries
// become dated holidays; multi-day all-day entries become breaks.
func ImportICS(r io.Reader) ([]Holiday, []Break, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse holiday calendar: %w", err)
	}

	var holidays []Holiday
	var breaks []Break
	for _, ve := range cal.Events() {
		name := ""
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			name = strings.TrimSpace(p.Value)
		}
		if name == "" {
			continue
		}

		start, ok := propertyDate(ve, ical.ComponentPropertyDtStart)
		if !ok {
			continue
		}
		end, hasEnd := propertyDate(ve, ical.ComponentPropertyDtEnd)
		allDay := isDateValue(ve.GetProperty(ical.ComponentPropertyDtStart))

		// DTEND of an all-day event is exclusive.
		if hasEnd && allDay {
			end = end.AddDate(0, 0, -1)
		}
		if hasEnd && end.After(start) {
			breaks = append(breaks, Break{Name: name, Start: start, End: end})
			continue
		}
		holidays = append(holidays, Holiday{Name: name, Date: start})
	}
	return holidays, breaks, nil
}

// ImportICSFile is ImportICS over a file on disk.
func ImportICSFile(path string) ([]Holiday, []Break, error) {
	if path == "" {
		return nil, nil, errors.New("holiday calendar path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ImportICS(f)
}

func isDateValue(p *ical.IANAProperty) bool {
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func propertyDate(ve *ical.VEvent, name ical.ComponentProperty) (time.Time, bool) {
	p := ve.GetProperty(name)
	if p == nil || p.Value == "" {
		return time.Time{}, false
	}
	v := strings.TrimSpace(p.Value)
	if len(v) >= 8 {
		if t, err := time.Parse("20060102", v[:8]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExportICS renders events as an iCalendar feed. Events whose date or times
// do not parse are skipped.
func ExportICS(events []*model.Event, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("AQEvent Approved Events")

	for _, ev := range events {
		start, end := ev.EventStartTime, ev.EventEndTime
		if start == "" || end == "" {
			start, end = ev.ReservationStartTime, ev.ReservationEndTime
		}
		window, ok := timerange.Window(ev.EventDate, start, end, loc)
		if !ok {
			continue
		}

		ve := cal.AddEvent(ev.ID + "@aqevent")
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(window.Start)
		ve.SetEndAt(window.End)
		ve.SetSummary(ev.Name)
		ve.SetLocation(ev.Location)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.ContactEmail != "" {
			ve.SetOrganizer("mailto:"+ev.ContactEmail, ical.WithCN(ev.ContactPerson))
		}
	}
	return cal.Serialize()
}
