package recurrence

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func formatAll(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, t := range dates {
		out = append(out, t.Format("2006-01-02"))
	}
	return out
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []string
	}{
		{
			name: "single",
			spec: Spec{Frequency: Single, Start: d("2026-10-20")},
			want: []string{"2026-10-20"},
		},
		{
			name: "multiple sorted and deduplicated",
			spec: Spec{Frequency: Multiple, Dates: []time.Time{d("2026-11-03"), d("2026-10-20"), d("2026-11-03")}},
			want: []string{"2026-10-20", "2026-11-03"},
		},
		{
			name: "daily inclusive",
			spec: Spec{Frequency: Daily, Start: d("2026-10-20"), End: d("2026-10-23")},
			want: []string{"2026-10-20", "2026-10-21", "2026-10-22", "2026-10-23"},
		},
		{
			name: "daily every other day",
			spec: Spec{Frequency: Daily, Start: d("2026-10-20"), End: d("2026-10-26"), Interval: 2},
			want: []string{"2026-10-20", "2026-10-22", "2026-10-24", "2026-10-26"},
		},
		{
			name: "weekly selected days include days before start in first week",
			// 2026-10-21 is a Wednesday; Monday of that week is excluded.
			spec: Spec{
				Frequency: Weekly,
				Start:     d("2026-10-21"),
				End:       d("2026-11-02"),
				Weekdays:  []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			},
			want: []string{"2026-10-21", "2026-10-23", "2026-10-26", "2026-10-28", "2026-10-30", "2026-11-02"},
		},
		{
			name: "weekly every two weeks",
			spec: Spec{
				Frequency: Weekly,
				Start:     d("2026-10-20"),
				End:       d("2026-11-20"),
				Interval:  2,
				Weekdays:  []time.Weekday{time.Tuesday},
			},
			want: []string{"2026-10-20", "2026-11-03", "2026-11-17"},
		},
		{
			name: "monthly ordinal second tuesday",
			// 2026-10-13 is the 2nd Tuesday of October.
			spec: Spec{Frequency: Monthly, Start: d("2026-10-13"), End: d("2027-01-31"), MonthlyPattern: PatternOrdinal},
			want: []string{"2026-10-13", "2026-11-10", "2026-12-08", "2027-01-12"},
		},
		{
			name: "monthly ordinal fifth weekday skips short months",
			// 2026-10-29 is the 5th Thursday of October; November and
			// January have no 5th Thursday, December has the 31st.
			spec: Spec{Frequency: Monthly, Start: d("2026-10-29"), End: d("2027-01-31"), MonthlyPattern: PatternOrdinal},
			want: []string{"2026-10-29", "2026-12-31"},
		},
		{
			name: "yearly",
			spec: Spec{Frequency: Yearly, Start: d("2026-10-20"), End: d("2029-01-01")},
			want: []string{"2026-10-20", "2027-10-20", "2028-10-20"},
		},
		{
			name: "yearly leap day only in leap years",
			spec: Spec{Frequency: Yearly, Start: d("2028-02-29"), End: d("2033-03-01")},
			want: []string{"2028-02-29", "2032-02-29"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(formatAll(got), tt.want) {
				t.Errorf("Generate() = %v, want %v", formatAll(got), tt.want)
			}
		})
	}
}

func TestGenerate_MonthlyDateSkipsShortMonths(t *testing.T) {
	got, err := Generate(Spec{
		Frequency:      Monthly,
		Start:          d("2027-01-31"),
		End:            d("2027-08-31"),
		MonthlyPattern: PatternDate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2027-01-31", "2027-03-31", "2027-05-31", "2027-07-31", "2027-08-31"}
	if !reflect.DeepEqual(formatAll(got), want) {
		t.Errorf("Generate() = %v, want %v", formatAll(got), want)
	}
	for _, date := range got {
		if date.Day() != 31 {
			t.Errorf("rolled over to %s", date.Format("2006-01-02"))
		}
	}
}

func TestGenerate_WeeklyDefaultsToStartWeekday(t *testing.T) {
	start := d("2026-10-22") // Thursday
	end := d("2026-12-31")

	got, err := Generate(Spec{Frequency: Weekly, Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	weeks := int(end.Sub(start).Hours()/24)/7 + 1
	if len(got) != weeks {
		t.Fatalf("expected %d dates, got %d", weeks, len(got))
	}
	seen := map[string]bool{}
	for _, date := range got {
		if date.Weekday() != time.Thursday {
			t.Errorf("%s is a %s", date.Format("2006-01-02"), date.Weekday())
		}
		y, w := date.ISOWeek()
		key := fmt.Sprintf("%d-%d", y, w)
		if seen[key] {
			t.Errorf("two dates in ISO week %d of %d", w, y)
		}
		seen[key] = true
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	spec := Spec{
		Frequency: Weekly,
		Start:     d("2026-10-20"),
		End:       d("2027-05-15"),
		Weekdays:  []time.Weekday{time.Tuesday, time.Thursday},
	}

	first, err := Generate(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Generate(spec)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("iteration %d: output differs", i)
		}
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"start equals end", Spec{Frequency: Daily, Start: d("2026-10-20"), End: d("2026-10-20")}, ErrInvalidRange},
		{"start after end", Spec{Frequency: Monthly, Start: d("2026-11-20"), End: d("2026-10-20")}, ErrInvalidRange},
		{"missing start", Spec{Frequency: Weekly, End: d("2026-10-20")}, ErrMissingStart},
		{"no explicit dates", Spec{Frequency: Multiple}, ErrNoDates},
		{"unknown frequency", Spec{Frequency: "hourly", Start: d("2026-10-20")}, ErrUnknownFrequency},
		{"unknown pattern", Spec{Frequency: Monthly, Start: d("2026-10-20"), End: d("2026-12-20"), MonthlyPattern: "last"}, ErrUnknownPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.spec)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(got) != 0 {
				t.Errorf("expected empty result, got %v", got)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	if f, err := ParseFrequency(" Weekly "); err != nil || f != Weekly {
		t.Errorf("ParseFrequency(Weekly) = %q, %v", f, err)
	}
	if f, err := ParseFrequency(""); err != nil || f != Single {
		t.Errorf("ParseFrequency(empty) = %q, %v", f, err)
	}
	if _, err := ParseFrequency("fortnightly"); !errors.Is(err, ErrUnknownFrequency) {
		t.Errorf("expected ErrUnknownFrequency, got %v", err)
	}
}

func TestNthWeekdayOfMonth(t *testing.T) {
	got, ok := NthWeekdayOfMonth(2026, time.November, 4, time.Thursday)
	if !ok || got.Format("2006-01-02") != "2026-11-26" {
		t.Errorf("4th Thursday of Nov 2026 = %v, %v", got, ok)
	}
	if _, ok := NthWeekdayOfMonth(2026, time.November, 5, time.Thursday); ok {
		t.Error("November 2026 has no 5th Thursday")
	}
}

func TestPreview(t *testing.T) {
	dates, err := Generate(Spec{Frequency: Daily, Start: d("2026-01-01"), End: d("2026-12-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := NewPreview(dates, 0)
	if len(p.Dates) != DefaultPreviewLimit {
		t.Errorf("expected %d preview dates, got %d", DefaultPreviewLimit, len(p.Dates))
	}
	if p.Total != 365 || p.Remaining != 265 {
		t.Errorf("total/remaining = %d/%d", p.Total, p.Remaining)
	}
	if p.More != "... and 265 more dates" {
		t.Errorf("unexpected marker %q", p.More)
	}

	small := NewPreview(dates[:3], 0)
	if small.Remaining != 0 || small.More != "" {
		t.Errorf("short series should not be capped: %+v", small)
	}
}
