package conflicts

import (
	"fmt"
	"strings"
	"time"

	"aqevent/internal/timerange"
	"aqevent/pkg/model"
	"aqevent/pkg/sanitizer"
)

type report struct {
	conflicts []model.Issue
	warnings  []model.Issue
}

func newReport() *report {
	return &report{
		conflicts: []model.Issue{},
		warnings:  []model.Issue{},
	}
}

func (r *report) conflict(t model.IssueType, field, message string) {
	r.conflicts = append(r.conflicts, model.Issue{
		Type:     t,
		Severity: model.SeverityHigh,
		Message:  message,
		Field:    field,
	})
}

func (r *report) warn(t model.IssueType, sev model.Severity, field, message string) {
	r.warnings = append(r.warnings, model.Issue{
		Type:     t,
		Severity: sev,
		Message:  message,
		Field:    field,
	})
}

func (d *Detector) checkRoom(r *report, c *model.Event, corpus []model.CorpusEvent) {
	if sanitizer.LocationKey(c.Location) == "" {
		r.warn(model.IssueLocation, model.SeverityMedium, "location", "No location specified for event")
		return
	}

	window, ok := d.reservation(c)
	if !ok {
		return
	}
	padded := window.Pad(d.opts.Buffer)

	for _, ce := range corpus {
		if !sanitizer.SameLocation(c.Location, ce.Location) {
			continue
		}
		existing, ok := d.reservation(ce.Event)
		if !ok || !timerange.SameDay(window.Start, existing.Start) {
			continue
		}
		if !padded.Overlaps(existing.Pad(d.opts.Buffer)) {
			continue
		}

		start, end := reservationClocks(ce.Event)
		r.conflicts = append(r.conflicts, model.Issue{
			Type:     model.IssueRoom,
			Severity: model.SeverityHigh,
			Message: fmt.Sprintf("%s is already booked from %s to %s",
				strings.TrimSpace(c.Location), timerange.DisplayClock(start), timerange.DisplayClock(end)),
			Field: "location",
			ConflictingEvent: &model.ConflictingEvent{
				ID:        ce.ID,
				Name:      ce.Name,
				Date:      ce.EventDate,
				StartTime: start,
				EndTime:   end,
				Location:  ce.Location,
				Source:    ce.Source,
			},
		})
	}
}

// checkReservationBounds requires the event to sit inside its reservation.
// It is silent unless all four times parse.
func (d *Detector) checkReservationBounds(r *report, c *model.Event) {
	es, ok1 := timerange.ParseClock(c.EventStartTime)
	ee, ok2 := timerange.ParseClock(c.EventEndTime)
	rs, ok3 := timerange.ParseClock(c.ReservationStartTime)
	re, ok4 := timerange.ParseClock(c.ReservationEndTime)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return
	}

	if es < rs {
		r.conflict(model.IssueTime, "eventStartTime", "Event start time is before reservation start time")
	}
	if ee > re {
		r.conflict(model.IssueTime, "eventEndTime", "Event end time is after reservation end time")
	}
}

func (d *Detector) checkDurations(r *report, c *model.Event) {
	if dur, ok := clockSpan(c.EventStartTime, c.EventEndTime); ok {
		switch {
		case dur <= 0:
			r.conflict(model.IssueTime, "eventEndTime", "Event end time must be after start time")
		case dur < d.opts.MinDuration:
			r.warn(model.IssueTime, model.SeverityMedium, "eventEndTime",
				fmt.Sprintf("Event duration is very short (less than %s)", humanDuration(d.opts.MinDuration)))
		case dur > d.opts.MaxDuration:
			r.warn(model.IssueTime, model.SeverityMedium, "eventEndTime",
				fmt.Sprintf("Event duration is very long (more than %s)", humanDuration(d.opts.MaxDuration)))
		}
	}

	if dur, ok := clockSpan(c.ReservationStartTime, c.ReservationEndTime); ok && dur <= 0 {
		r.conflict(model.IssueTime, "reservationEndTime", "Reservation end time must be after start time")
	}
}

func clockSpan(start, end string) (time.Duration, bool) {
	s, ok := timerange.ParseClock(start)
	if !ok {
		return 0, false
	}
	e, ok := timerange.ParseClock(end)
	if !ok {
		return 0, false
	}
	return e - s, true
}

func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

// checkDate returns the parsed event day when the date is usable for the
// calendar checks.
func (d *Detector) checkDate(r *report, c *model.Event) (time.Time, bool) {
	if strings.TrimSpace(c.EventDate) == "" {
		return time.Time{}, false
	}
	day, ok := timerange.ParseDate(c.EventDate, d.opts.Location)
	if !ok {
		r.conflict(model.IssueDate, "eventDate", "Event date is not a valid date")
		return time.Time{}, false
	}

	today := timerange.StartOfDay(d.opts.Now().In(d.opts.Location))
	if day.Before(today) {
		r.conflict(model.IssueDate, "eventDate", "Event date cannot be in the past")
	}
	if day.After(today.AddDate(1, 0, 0)) {
		r.warn(model.IssueDate, model.SeverityLow, "eventDate", "Event is scheduled more than a year in advance")
	}
	return day, true
}

func (d *Detector) checkCalendar(r *report, day time.Time) {
	if !d.opts.Calendar.InAcademicYear(day) {
		r.warn(model.IssueAcademic, model.SeverityMedium, "eventDate", "Event is scheduled outside the typical academic year")
	}
	for _, name := range d.opts.Calendar.Occasions(day) {
		r.warn(model.IssueHoliday, model.SeverityMedium, "eventDate", "Event is scheduled on "+name)
	}
}
