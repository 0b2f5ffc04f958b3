package calendar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqevent/pkg/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestInAcademicYear(t *testing.T) {
	cal := Default()

	tests := []struct {
		date string
		want bool
	}{
		{"2026-08-14", false},
		{"2026-08-15", true},
		{"2026-10-20", true},
		{"2027-01-10", true},
		{"2027-05-15", true},
		{"2027-05-16", false},
		{"2027-07-04", false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.InAcademicYear(day(tt.date)))
		})
	}
}

func TestInAcademicYear_NonWrappingWindow(t *testing.T) {
	cal := &Calendar{
		AcademicStart: MonthDay{Month: time.January, Day: 10},
		AcademicEnd:   MonthDay{Month: time.June, Day: 1},
	}
	assert.True(t, cal.InAcademicYear(day("2027-03-01")))
	assert.False(t, cal.InAcademicYear(day("2027-01-09")))
	assert.False(t, cal.InAcademicYear(day("2027-10-01")))
}

func TestOccasions_DefaultHolidays(t *testing.T) {
	cal := Default()

	assert.Equal(t, []string{"Thanksgiving"}, cal.Occasions(day("2026-11-26")))
	assert.Equal(t, []string{"Christmas Day"}, cal.Occasions(day("2026-12-25")))
	assert.Equal(t, []string{"New Year's Day"}, cal.Occasions(day("2027-01-01")))
	assert.Empty(t, cal.Occasions(day("2026-11-19")))
}

func TestOccasions_Breaks(t *testing.T) {
	cal := Default()
	cal.Merge(nil, []Break{{Name: "Winter Break", Start: day("2026-12-20"), End: day("2027-01-05")}})

	assert.Equal(t, []string{"Winter Break"}, cal.Occasions(day("2026-12-20")))
	assert.Equal(t, []string{"Christmas Day", "Winter Break"}, cal.Occasions(day("2026-12-25")))
	assert.Equal(t, []string{"Winter Break"}, cal.Occasions(day("2027-01-05")))
	assert.Empty(t, cal.Occasions(day("2027-01-06")))
}

func TestLoad_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "calendar.yaml")

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "08-15", f.AcademicYear.Start)

	_, err = os.Stat(path)
	require.NoError(t, err, "default file should be written")

	cal, err := f.Calendar()
	require.NoError(t, err)
	assert.Len(t, cal.Holidays, 3)
}

func TestLoad_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	content := `
academic_year:
  start: "09-01"
  end: "06-01"
holidays:
  - name: Founders Day
    date: "04-02"
  - name: Reading Day
    on: "2027-05-03"
  - name: Labor Day
    month: 9
    weekday: monday
    nth: 1
breaks:
  - name: Spring Break
    start: "2027-03-08"
    end: "2027-03-12"
venues:
  - Concert Hall (Room 132)
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Concert Hall (Room 132)"}, f.Venues)

	cal, err := f.Calendar()
	require.NoError(t, err)
	assert.Equal(t, MonthDay{Month: time.September, Day: 1}, cal.AcademicStart)
	assert.Equal(t, []string{"Founders Day"}, cal.Occasions(day("2027-04-02")))
	assert.Equal(t, []string{"Reading Day"}, cal.Occasions(day("2027-05-03")))
	assert.Equal(t, []string{"Labor Day"}, cal.Occasions(day("2026-09-07")))
	assert.Equal(t, []string{"Spring Break"}, cal.Occasions(day("2027-03-10")))
}

func TestCalendar_InvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"bad academic start", File{AcademicYear: AcademicYearConfig{Start: "13-01", End: "05-15"}}},
		{"holiday without rule", File{Holidays: []HolidayConfig{{Name: "Mystery"}}}},
		{"bad weekday", File{Holidays: []HolidayConfig{{Name: "X", Month: 1, Weekday: "funday", Nth: 1}}}},
		{"break ends early", File{Breaks: []BreakConfig{{Name: "B", Start: "2027-03-10", End: "2027-03-01"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.file.Calendar()
			assert.Error(t, err)
		})
	}
}

func TestImportICS(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//EN",
		"BEGIN:VEVENT",
		"UID:mlk@test",
		"DTSTAMP:20260101T000000Z",
		"DTSTART;VALUE=DATE:20270118",
		"DTEND;VALUE=DATE:20270119",
		"SUMMARY:Martin Luther King Jr. Day",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:spring@test",
		"DTSTAMP:20260101T000000Z",
		"DTSTART;VALUE=DATE:20270308",
		"DTEND;VALUE=DATE:20270313",
		"SUMMARY:Spring Break",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	holidays, breaks, err := ImportICS(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	require.Len(t, breaks, 1)

	cal := &Calendar{}
	cal.Merge(holidays, breaks)
	assert.Equal(t, []string{"Martin Luther King Jr. Day"}, cal.Occasions(day("2027-01-18")))
	assert.Equal(t, []string{"Spring Break"}, cal.Occasions(day("2027-03-12")))
	assert.Empty(t, cal.Occasions(day("2027-03-13")))
}

func TestExportICS(t *testing.T) {
	events := []*model.Event{
		{
			ID:             "EVT_1",
			Name:           "Fall Recital",
			Location:       "Concert Hall (Room 132)",
			EventDate:      "2026-10-20",
			EventStartTime: "19:00",
			EventEndTime:   "21:00",
			ContactPerson:  "Sam Lee",
			ContactEmail:   "sam@example.edu",
		},
		{ID: "EVT_2", Name: "Broken", EventDate: "not a date"},
	}

	out := ExportICS(events, time.UTC, day("2026-10-14"))

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Fall Recital")
	assert.Contains(t, out, "UID:EVT_1@aqevent")
	assert.Contains(t, out, "20261020T190000Z")
	assert.NotContains(t, out, "EVT_2")
}
