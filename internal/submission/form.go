package submission

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aqevent/internal/recurrence"
	"aqevent/internal/timerange"
	"aqevent/pkg/model"
)

var ErrInvalidDate = errors.New("invalid date")

// Form is a submission as sent by the booking form: one event payload plus
// the recurrence that expands it into dates.
type Form struct {
	Event            *model.Event       `json:"event"`
	Recurrence       RecurrenceForm     `json:"recurrence"`
	Files            []model.FileUpload `json:"files,omitempty"`
	SubmissionSource string             `json:"submissionSource,omitempty"`
	UserAgent        string             `json:"-"`
}

type RecurrenceForm struct {
	Frequency      string   `json:"frequency"`
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
	Interval       int      `json:"interval,omitempty"`
	Weekdays       []string `json:"weekdays,omitempty"`
	MonthlyPattern string   `json:"monthlyPattern,omitempty"`
	Dates          []string `json:"dates,omitempty"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Spec converts the form into a recurrence spec. fallbackDate, usually the
// event date, is used when no start date was given.
func (f RecurrenceForm) Spec(fallbackDate string) (recurrence.Spec, error) {
	freq, err := recurrence.ParseFrequency(f.Frequency)
	if err != nil {
		return recurrence.Spec{}, err
	}
	spec := recurrence.Spec{
		Frequency:      freq,
		Interval:       f.Interval,
		MonthlyPattern: recurrence.MonthlyPattern(strings.ToLower(strings.TrimSpace(f.MonthlyPattern))),
	}

	startDate := f.StartDate
	if startDate == "" {
		startDate = fallbackDate
	}
	if startDate != "" {
		if spec.Start, err = parseDate("startDate", startDate); err != nil {
			return recurrence.Spec{}, err
		}
	}
	if f.EndDate != "" {
		if spec.End, err = parseDate("endDate", f.EndDate); err != nil {
			return recurrence.Spec{}, err
		}
	}
	for _, d := range f.Dates {
		t, err := parseDate("dates", d)
		if err != nil {
			return recurrence.Spec{}, err
		}
		spec.Dates = append(spec.Dates, t)
	}
	for _, name := range f.Weekdays {
		wd, err := parseWeekday(name)
		if err != nil {
			return recurrence.Spec{}, err
		}
		spec.Weekdays = append(spec.Weekdays, wd)
	}
	return spec, nil
}

// ExpandDates expands the form into the series dates.
func (f RecurrenceForm) ExpandDates(fallbackDate string) ([]time.Time, error) {
	spec, err := f.Spec(fallbackDate)
	if err != nil {
		return nil, err
	}
	return recurrence.Generate(spec)
}

func parseDate(field, s string) (time.Time, error) {
	t, ok := timerange.ParseDate(s, time.UTC)
	if !ok {
		return time.Time{}, fmt.Errorf("%w in %s: %q", ErrInvalidDate, field, s)
	}
	return t, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdayNames[s]; ok {
		return wd, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
