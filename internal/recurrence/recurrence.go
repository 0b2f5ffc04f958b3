// Package recurrence expands a frequency selection into the concrete calendar
// dates of a series.
package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

type Frequency string

const (
	Single   Frequency = "single"
	Multiple Frequency = "multiple"
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Monthly  Frequency = "monthly"
	Yearly   Frequency = "yearly"
)

type MonthlyPattern string

const (
	// PatternDate repeats on the same day of the month.
	PatternDate MonthlyPattern = "date"
	// PatternOrdinal repeats on the same nth weekday, e.g. the 2nd Tuesday.
	PatternOrdinal MonthlyPattern = "ordinal"
)

var (
	ErrInvalidRange     = errors.New("start date must be before end date")
	ErrMissingStart     = errors.New("start date is required")
	ErrNoDates          = errors.New("at least one date is required")
	ErrUnknownFrequency = errors.New("unknown frequency")
	ErrUnknownPattern   = errors.New("unknown monthly pattern")
)

// rruleWeekdays is indexed by time.Weekday. Nth has a pointer receiver, so
// the entries need to stay addressable.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// Spec describes one series. Start and End are inclusive calendar dates;
// only their year, month and day are used.
type Spec struct {
	Frequency      Frequency
	Start          time.Time
	End            time.Time
	Interval       int
	Weekdays       []time.Weekday
	MonthlyPattern MonthlyPattern
	Dates          []time.Time
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case Single, Multiple, Daily, Weekly, Monthly, Yearly:
		return f, nil
	case "":
		return Single, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
}

// Ranged reports whether the frequency needs both a start and an end date.
func (f Frequency) Ranged() bool {
	return f == Daily || f == Weekly || f == Monthly || f == Yearly
}

// Generate returns the ascending, deduplicated dates of the series at UTC
// midnight. It is a pure function of spec and never caps the result.
func Generate(spec Spec) ([]time.Time, error) {
	switch spec.Frequency {
	case Single, "":
		if spec.Start.IsZero() {
			return []time.Time{}, ErrMissingStart
		}
		return []time.Time{day(spec.Start)}, nil
	case Multiple:
		return explicit(spec.Dates)
	case Daily, Weekly, Monthly, Yearly:
	default:
		return []time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, spec.Frequency)
	}

	if spec.Start.IsZero() {
		return []time.Time{}, ErrMissingStart
	}
	start, end := day(spec.Start), day(spec.End)
	if !start.Before(end) {
		return []time.Time{}, ErrInvalidRange
	}

	opt, err := ruleOptions(spec, start, end)
	if err != nil {
		return []time.Time{}, err
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return []time.Time{}, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	out := make([]time.Time, 0)
	for _, t := range rule.Between(start, end, true) {
		t = day(t)
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, t)
	}
	return dedupe(out), nil
}

func ruleOptions(spec Spec, start, end time.Time) (rrule.ROption, error) {
	interval := spec.Interval
	if interval < 1 {
		interval = 1
	}
	opt := rrule.ROption{
		Dtstart:  start,
		Until:    end,
		Interval: interval,
		Wkst:     rrule.SU,
	}

	switch spec.Frequency {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
		// Anchor on the Sunday of the start week so interval counting matches
		// calendar weeks; dates before start are filtered by the caller.
		opt.Dtstart = start.AddDate(0, 0, -int(start.Weekday()))
		days := spec.Weekdays
		if len(days) == 0 {
			days = []time.Weekday{start.Weekday()}
		}
		for _, d := range days {
			if d < time.Sunday || d > time.Saturday {
				return opt, fmt.Errorf("invalid weekday %d", d)
			}
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
		}
	case Monthly:
		opt.Freq = rrule.MONTHLY
		switch spec.MonthlyPattern {
		case PatternDate, "":
			opt.Bymonthday = []int{start.Day()}
		case PatternOrdinal:
			opt.Byweekday = []rrule.Weekday{rruleWeekdays[start.Weekday()].Nth(WeekOfMonth(start))}
		default:
			return opt, fmt.Errorf("%w: %q", ErrUnknownPattern, spec.MonthlyPattern)
		}
	case Yearly:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{int(start.Month())}
		opt.Bymonthday = []int{start.Day()}
	}
	return opt, nil
}

func explicit(dates []time.Time) ([]time.Time, error) {
	if len(dates) == 0 {
		return []time.Time{}, ErrNoDates
	}
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		out = append(out, day(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return dedupe(out), nil
}

// dedupe drops adjacent duplicates from a sorted slice.
func dedupe(dates []time.Time) []time.Time {
	if len(dates) < 2 {
		return dates
	}
	out := dates[:1]
	for _, d := range dates[1:] {
		if !d.Equal(out[len(out)-1]) {
			out = append(out, d)
		}
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekOfMonth returns which occurrence of its weekday t is within its month (1..5).
func WeekOfMonth(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

// NthWeekdayOfMonth returns the nth weekday of the given month, or false
// when the month has no such day.
func NthWeekdayOfMonth(year int, month time.Month, n int, wd time.Weekday) (time.Time, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	d := first.AddDate(0, 0, offset+(n-1)*7)
	if d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}
