package timerange

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
		ok    bool
	}{
		{"morning", "09:30", 9*time.Hour + 30*time.Minute, true},
		{"midnight", "00:00", 0, true},
		{"single digit hour", "7:05", 7*time.Hour + 5*time.Minute, true},
		{"last minute", "23:59", 23*time.Hour + 59*time.Minute, true},
		{"surrounding spaces", " 10:00 ", 10 * time.Hour, true},
		{"empty", "", 0, false},
		{"no colon", "0930", 0, false},
		{"hour out of range", "24:00", 0, false},
		{"minute out of range", "10:60", 0, false},
		{"letters", "ab:cd", 0, false},
		{"seconds", "10:00:00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseClock(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseClock(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2026-10-20", time.UTC)
	if !ok || got.Format(DateLayout) != "2026-10-20" {
		t.Fatalf("ParseDate plain date = %v, %v", got, ok)
	}

	got, ok = ParseDate("2026-10-20T00:00:00.000Z", time.UTC)
	if !ok || got.Format(DateLayout) != "2026-10-20" {
		t.Fatalf("ParseDate timestamp = %v, %v", got, ok)
	}

	for _, bad := range []string{"", "20-10-2026", "2026-13-01", "tomorrow"} {
		if _, ok := ParseDate(bad, time.UTC); ok {
			t.Errorf("ParseDate(%q) expected failure", bad)
		}
	}
}

func TestOverlaps_Symmetric(t *testing.T) {
	base := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	points := []time.Time{at(8, 0), at(9, 0), at(9, 30), at(10, 0), at(10, 15), at(11, 0), at(12, 0)}
	for _, s1 := range points {
		for _, e1 := range points {
			if !s1.Before(e1) {
				continue
			}
			for _, s2 := range points {
				for _, e2 := range points {
					if !s2.Before(e2) {
						continue
					}
					if Overlaps(s1, e1, s2, e2) != Overlaps(s2, e2, s1, e1) {
						t.Fatalf("asymmetric overlap for [%v,%v) and [%v,%v)", s1, e1, s2, e2)
					}
				}
			}
		}
	}
}

func TestOverlaps_Boundaries(t *testing.T) {
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	mk := func(start, end string) Range {
		s, _ := Combine(day, start)
		e, _ := Combine(day, end)
		return Range{Start: s, End: e}
	}

	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"touching", mk("09:00", "10:00"), mk("10:00", "11:00"), false},
		{"disjoint", mk("09:00", "10:00"), mk("10:15", "11:00"), false},
		{"partial", mk("09:00", "10:30"), mk("10:00", "11:00"), true},
		{"contained", mk("09:00", "12:00"), mk("10:00", "11:00"), true},
		{"identical", mk("09:00", "10:00"), mk("09:00", "10:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	a, _ := Window("2026-10-20", "09:00", "10:00", time.UTC)
	b, _ := Window("2026-10-20", "10:15", "11:00", time.UTC)

	if a.Overlaps(b) {
		t.Fatal("unpadded windows should not overlap")
	}
	if !a.Pad(15 * time.Minute).Overlaps(b.Pad(15 * time.Minute)) {
		t.Fatal("windows padded by 15 minutes should overlap")
	}

	padded := a.Pad(15 * time.Minute)
	want, _ := Combine(day, "08:45")
	if !padded.Start.Equal(want) {
		t.Errorf("padded start = %v, want %v", padded.Start, want)
	}
}

func TestDisplayClock(t *testing.T) {
	cases := map[string]string{
		"00:00": "12:00 AM",
		"09:05": "9:05 AM",
		"12:00": "12:00 PM",
		"22:30": "10:30 PM",
		"bad":   "bad",
	}
	for in, want := range cases {
		if got := DisplayClock(in); got != want {
			t.Errorf("DisplayClock(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCombine_KeepsWallClockAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("zone data unavailable: %v", err)
	}

	for _, date := range []string{"2026-03-08", "2026-11-01"} {
		t.Run(date, func(t *testing.T) {
			day, ok := ParseDate(date, ny)
			if !ok {
				t.Fatalf("ParseDate(%q) failed", date)
			}
			got, ok := Combine(day, "09:30")
			if !ok {
				t.Fatal("Combine failed")
			}
			if got.Hour() != 9 || got.Minute() != 30 {
				t.Errorf("Combine(%s, 09:30) = %s", date, got.Format(time.RFC3339))
			}
			if FormatClock(At(day, 10*time.Hour)) != "10:00" {
				t.Errorf("At(%s, 10h) = %s", date, At(day, 10*time.Hour).Format(time.RFC3339))
			}

			w, ok := Window(date, "09:00", "10:00", ny)
			if !ok {
				t.Fatal("Window failed")
			}
			if w.Duration() != time.Hour {
				t.Errorf("Window duration = %s, want 1h", w.Duration())
			}
			prev := w.Shift(-1)
			if FormatClock(prev.Start) != "09:00" || FormatClock(prev.End) != "10:00" {
				t.Errorf("Shift(-1) = %s-%s", FormatClock(prev.Start), FormatClock(prev.End))
			}
		})
	}
}
