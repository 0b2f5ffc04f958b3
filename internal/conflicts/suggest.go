package conflicts

import (
	"fmt"
	"time"

	"aqevent/internal/timerange"
	"aqevent/pkg/model"
	"aqevent/pkg/sanitizer"
)

// Slots start on the hour.
const timeStep = time.Hour

// suggest proposes alternatives for the recorded conflicts. It only reads
// the candidate.
func (d *Detector) suggest(result *model.ConflictResult, c *model.Event, corpus []model.CorpusEvent) []model.Suggestion {
	out := []model.Suggestion{}

	if result.HasConflictType(model.IssueRoom) {
		if s, ok := d.suggestLocations(c, corpus); ok {
			out = append(out, s)
		}
		if s, ok := d.suggestTimes(c, corpus); ok {
			out = append(out, s)
		} else if s, ok := d.suggestDates(c, corpus); ok {
			out = append(out, s)
		}
	}

	if result.HasConflictType(model.IssueTime) {
		if s, ok := d.suggestStartAdjustment(c); ok {
			out = append(out, s)
		}
	}
	return out
}

func (d *Detector) suggestLocations(c *model.Event, corpus []model.CorpusEvent) (model.Suggestion, bool) {
	window, ok := d.reservation(c)
	if !ok {
		return model.Suggestion{}, false
	}
	padded := window.Pad(d.opts.Buffer)

	var free []string
	for _, venue := range d.opts.Venues {
		if d.booked(venue, padded, corpus) {
			continue
		}
		free = append(free, venue)
		if len(free) == d.opts.MaxSuggestions {
			break
		}
	}
	if len(free) == 0 {
		return model.Suggestion{}, false
	}
	return model.Suggestion{
		Type:      model.SuggestLocation,
		Title:     "Alternative Locations Available",
		Message:   "These locations are free at the requested time",
		Action:    model.ActionChangeLocation,
		Locations: free,
	}, true
}

// suggestTimes walks fixed-length slots on the hour through the working day
// at the candidate's own location.
func (d *Detector) suggestTimes(c *model.Event, corpus []model.CorpusEvent) (model.Suggestion, bool) {
	day, ok := timerange.ParseDate(c.EventDate, d.opts.Location)
	if !ok {
		return model.Suggestion{}, false
	}
	var slots []model.TimeSlot
	for start := d.opts.DayStart; start+d.opts.SlotLength <= d.opts.DayEnd; start += timeStep {
		slot := timerange.Range{Start: timerange.At(day, start), End: timerange.At(day, start+d.opts.SlotLength)}
		if d.booked(c.Location, slot, corpus) {
			continue
		}
		from, to := timerange.FormatClock(slot.Start), timerange.FormatClock(slot.End)
		slots = append(slots, model.TimeSlot{
			StartTime: from,
			EndTime:   to,
			Display:   timerange.DisplayClock(from) + " - " + timerange.DisplayClock(to),
		})
		if len(slots) == d.opts.MaxSuggestions {
			break
		}
	}
	if len(slots) == 0 {
		return model.Suggestion{}, false
	}
	return model.Suggestion{
		Type:      model.SuggestTime,
		Title:     "Alternative Times Available",
		Message:   fmt.Sprintf("These times are free at %s", sanitizer.TrimAndNormalize(c.Location)),
		Action:    model.ActionChangeTime,
		TimeSlots: slots,
	}, true
}

// suggestDates keeps the candidate's times and location and looks at the
// following days.
func (d *Detector) suggestDates(c *model.Event, corpus []model.CorpusEvent) (model.Suggestion, bool) {
	window, ok := d.reservation(c)
	if !ok {
		return model.Suggestion{}, false
	}

	var dates []model.DateOption
	for i := 1; i <= d.opts.LookaheadDays; i++ {
		shifted := window.Shift(i)
		if d.booked(c.Location, shifted, corpus) {
			continue
		}
		dates = append(dates, model.DateOption{
			Date:      shifted.Start.Format(timerange.DateLayout),
			Formatted: shifted.Start.Format("Monday, January 2"),
			DayOfWeek: shifted.Start.Weekday().String(),
		})
		if len(dates) == d.opts.MaxSuggestions {
			break
		}
	}
	if len(dates) == 0 {
		return model.Suggestion{}, false
	}
	return model.Suggestion{
		Type:    model.SuggestDate,
		Title:   "Alternative Dates Available",
		Message: fmt.Sprintf("%s is free at the requested time on these dates", sanitizer.TrimAndNormalize(c.Location)),
		Action:  model.ActionChangeDate,
		Dates:   dates,
	}, true
}

func (d *Detector) suggestStartAdjustment(c *model.Event) (model.Suggestion, bool) {
	es, ok1 := timerange.ParseClock(c.EventStartTime)
	rs, ok2 := timerange.ParseClock(c.ReservationStartTime)
	if !ok1 || !ok2 || es >= rs {
		return model.Suggestion{}, false
	}

	suggested := rs + d.opts.StartAdjustment
	if suggested >= 24*time.Hour {
		return model.Suggestion{}, false
	}
	value := timerange.ClockFromMinutes(int(suggested.Minutes()))
	return model.Suggestion{
		Type:           model.SuggestTimeAdjustment,
		Title:          "Suggested Time Fix",
		Message:        fmt.Sprintf("Move event start time to %s or later", timerange.DisplayClock(value)),
		Action:         model.ActionAdjustStartTime,
		SuggestedValue: value,
	}, true
}
