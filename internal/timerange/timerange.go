// Package timerange parses the date and clock strings carried by events and
// answers overlap questions about the time windows they describe.
package timerange

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Range is a half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseClock turns "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	hh, mm, found := strings.Cut(s, ":")
	if !found || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, true
}

// ParseDate parses "YYYY-MM-DD" in loc. A full timestamp is accepted and
// only its calendar date is kept, which covers records written by older clients.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate rewrites any accepted date form to "YYYY-MM-DD".
func NormalizeDate(s string) string {
	t, ok := ParseDate(s, time.UTC)
	if !ok {
		return s
	}
	return t.Format(DateLayout)
}

// Combine places a clock string on a calendar day.
func Combine(day time.Time, clock string) (time.Time, bool) {
	offset, ok := ParseClock(clock)
	if !ok {
		return time.Time{}, false
	}
	return At(day, offset), true
}

// At returns the wall clock time offset after midnight on day, in day's
// location. On DST transition days this differs from midnight plus offset.
func At(day time.Time, offset time.Duration) time.Time {
	y, m, d := day.Date()
	h := int(offset / time.Hour)
	mi := int((offset % time.Hour) / time.Minute)
	return time.Date(y, m, d, h, mi, 0, 0, day.Location())
}

// Window builds a range from a date and two clock strings.
func Window(date string, start, end string, loc *time.Location) (Range, bool) {
	day, ok := ParseDate(date, loc)
	if !ok {
		return Range{}, false
	}
	s, ok := Combine(day, start)
	if !ok {
		return Range{}, false
	}
	e, ok := Combine(day, end)
	if !ok {
		return Range{}, false
	}
	return Range{Start: s, End: e}, true
}

// Overlaps reports whether [s1,e1) and [s2,e2) share any instant.
// Ranges that only touch at an endpoint do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

// Pad widens the range by buffer on both sides.
func (r Range) Pad(buffer time.Duration) Range {
	return Range{Start: r.Start.Add(-buffer), End: r.End.Add(buffer)}
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Shift moves the range by whole days, keeping wall clock times.
func (r Range) Shift(days int) Range {
	return Range{Start: r.Start.AddDate(0, 0, days), End: r.End.AddDate(0, 0, days)}
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatClock renders a time of day as "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// DisplayClock renders "HH:MM" as a 12 hour label such as "2:30 PM".
// Unparseable input is returned unchanged.
func DisplayClock(clock string) string {
	offset, ok := ParseClock(clock)
	if !ok {
		return clock
	}
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

// ClockFromMinutes formats minutes since midnight as "HH:MM".
func ClockFromMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
