// Package calendar holds the academic calendar the conflict engine consults
// for out-of-term and holiday warnings, plus iCalendar import and export.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthDay is a yearly recurring calendar position such as Aug 15.
type MonthDay struct {
	Month time.Month
	Day   int
}

func ParseMonthDay(s string) (MonthDay, error) {
	mm, dd, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return MonthDay{}, fmt.Errorf("invalid month-day %q, expected MM-DD", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 1 || m > 12 {
		return MonthDay{}, fmt.Errorf("invalid month in %q", s)
	}
	d, err := strconv.Atoi(dd)
	if err != nil || d < 1 || d > 31 {
		return MonthDay{}, fmt.Errorf("invalid day in %q", s)
	}
	return MonthDay{Month: time.Month(m), Day: d}, nil
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

func (md MonthDay) in(year int, loc *time.Location) time.Time {
	return time.Date(year, md.Month, md.Day, 0, 0, 0, 0, loc)
}

// Holiday is either a fixed yearly date, an nth-weekday rule, or a single dated occurrence.
type Holiday struct {
	Name    string
	Fixed   *MonthDay
	Month   time.Month
	Nth     int
	Weekday time.Weekday
	Date    time.Time
}

func (h Holiday) Matches(day time.Time) bool {
	y, m, d := day.Date()
	switch {
	case h.Fixed != nil:
		return m == h.Fixed.Month && d == h.Fixed.Day
	case h.Nth > 0:
		return m == h.Month && day.Weekday() == h.Weekday && (d-1)/7+1 == h.Nth
	case !h.Date.IsZero():
		hy, hm, hd := h.Date.Date()
		return y == hy && m == hm && d == hd
	}
	return false
}

// Break is an inclusive span of days such as Winter Break.
type Break struct {
	Name  string
	Start time.Time
	End   time.Time
}

func (b Break) Contains(day time.Time) bool {
	y, m, d := day.Date()
	key := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	sy, sm, sd := b.Start.Date()
	ey, em, ed := b.End.Date()
	start := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return !key.Before(start) && !key.After(end)
}

type Calendar struct {
	AcademicStart MonthDay
	AcademicEnd   MonthDay
	Holidays      []Holiday
	Breaks        []Break
}

func fixed(m time.Month, d int) *MonthDay {
	return &MonthDay{Month: m, Day: d}
}

func DefaultHolidays() []Holiday {
	return []Holiday{
		{Name: "New Year's Day", Fixed: fixed(time.January, 1)},
		{Name: "Thanksgiving", Month: time.November, Nth: 4, Weekday: time.Thursday},
		{Name: "Christmas Day", Fixed: fixed(time.December, 25)},
	}
}

// Default is an Aug 15 to May 15 academic year with the standard holidays.
func Default() *Calendar {
	return &Calendar{
		AcademicStart: MonthDay{Month: time.August, Day: 15},
		AcademicEnd:   MonthDay{Month: time.May, Day: 15},
		Holidays:      DefaultHolidays(),
	}
}

// InAcademicYear reports whether day falls inside an academic-year window.
// A window whose start is later in the year than its end spans New Year.
func (c *Calendar) InAcademicYear(day time.Time) bool {
	loc := day.Location()
	y := day.Year()
	key := time.Date(y, day.Month(), day.Day(), 0, 0, 0, 0, loc)

	startThisYear := c.AcademicStart.in(y, loc)
	endThisYear := c.AcademicEnd.in(y, loc)

	if !startThisYear.After(endThisYear) {
		return !key.Before(startThisYear) && !key.After(endThisYear)
	}
	// Wrapping window: either the tail of the previous year's term or the
	// head of this year's term.
	return !key.After(endThisYear) || !key.Before(startThisYear)
}

// Occasions returns the names of every holiday and break that covers day.
func (c *Calendar) Occasions(day time.Time) []string {
	var out []string
	for _, h := range c.Holidays {
		if h.Matches(day) {
			out = append(out, h.Name)
		}
	}
	for _, b := range c.Breaks {
		if b.Contains(day) {
			out = append(out, b.Name)
		}
	}
	return out
}

// Merge appends holidays and breaks imported from another source.
func (c *Calendar) Merge(holidays []Holiday, breaks []Break) {
	c.Holidays = append(c.Holidays, holidays...)
	c.Breaks = append(c.Breaks, breaks...)
}
