package calendar

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AcademicYearConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// HolidayConfig accepts one of: date (MM-DD, yearly), on (YYYY-MM-DD, once)
// or month+weekday+nth (e.g. the 4th Thursday of November).
type HolidayConfig struct {
	Name    string `yaml:"name"`
	Date    string `yaml:"date,omitempty"`
	On      string `yaml:"on,omitempty"`
	Month   int    `yaml:"month,omitempty"`
	Weekday string `yaml:"weekday,omitempty"`
	Nth     int    `yaml:"nth,omitempty"`
}

type BreakConfig struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// File is the on-disk domain configuration.
type File struct {
	AcademicYear AcademicYearConfig `yaml:"academic_year"`
	Holidays     []HolidayConfig    `yaml:"holidays"`
	Breaks       []BreakConfig      `yaml:"breaks"`
	Venues       []string           `yaml:"venues"`
	HolidayICS   string             `yaml:"holiday_ics,omitempty"`
}

func DefaultFile() *File {
	return &File{
		AcademicYear: AcademicYearConfig{Start: "08-15", End: "05-15"},
		Holidays: []HolidayConfig{
			{Name: "New Year's Day", Date: "01-01"},
			{Name: "Thanksgiving", Month: 11, Weekday: "thursday", Nth: 4},
			{Name: "Christmas Day", Date: "12-25"},
		},
		Breaks: []BreakConfig{},
		Venues: []string{},
	}
}

// Normalize fills in missing values so partially written files still load.
func (f *File) Normalize() {
	if f.AcademicYear.Start == "" {
		f.AcademicYear.Start = "08-15"
	}
	if f.AcademicYear.End == "" {
		f.AcademicYear.End = "05-15"
	}
	if f.Holidays == nil {
		f.Holidays = DefaultFile().Holidays
	}
	if f.Breaks == nil {
		f.Breaks = []BreakConfig{}
	}
	if f.Venues == nil {
		f.Venues = []string{}
	}
}

// Load reads the YAML file at path. A missing file is created with defaults.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("calendar config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f := DefaultFile()
			if err := Save(path, f); err != nil {
				return f, err
			}
			return f, nil
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse calendar config: %w", err)
	}
	f.Normalize()
	return &f, nil
}

// Save writes f atomically through a temp file in the same directory.
func Save(path string, f *File) error {
	if path == "" {
		return errors.New("calendar config path is empty")
	}
	if f == nil {
		return errors.New("calendar config is nil")
	}
	f.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".aqevent-calendar-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Calendar converts the file into the runtime calendar.
func (f *File) Calendar() (*Calendar, error) {
	f.Normalize()

	start, err := ParseMonthDay(f.AcademicYear.Start)
	if err != nil {
		return nil, fmt.Errorf("academic_year.start: %w", err)
	}
	end, err := ParseMonthDay(f.AcademicYear.End)
	if err != nil {
		return nil, fmt.Errorf("academic_year.end: %w", err)
	}

	cal := &Calendar{AcademicStart: start, AcademicEnd: end}
	for i, hc := range f.Holidays {
		h, err := hc.holiday()
		if err != nil {
			return nil, fmt.Errorf("holidays[%d]: %w", i, err)
		}
		cal.Holidays = append(cal.Holidays, h)
	}
	for i, bc := range f.Breaks {
		b, err := bc.brk()
		if err != nil {
			return nil, fmt.Errorf("breaks[%d]: %w", i, err)
		}
		cal.Breaks = append(cal.Breaks, b)
	}
	return cal, nil
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

func (hc HolidayConfig) holiday() (Holiday, error) {
	if hc.Name == "" {
		return Holiday{}, errors.New("name is required")
	}
	switch {
	case hc.Date != "":
		md, err := ParseMonthDay(hc.Date)
		if err != nil {
			return Holiday{}, err
		}
		return Holiday{Name: hc.Name, Fixed: &md}, nil
	case hc.On != "":
		t, err := time.Parse("2006-01-02", hc.On)
		if err != nil {
			return Holiday{}, fmt.Errorf("invalid date %q", hc.On)
		}
		return Holiday{Name: hc.Name, Date: t}, nil
	case hc.Nth > 0:
		wd, ok := weekdays[strings.ToLower(hc.Weekday)]
		if !ok {
			return Holiday{}, fmt.Errorf("invalid weekday %q", hc.Weekday)
		}
		if hc.Month < 1 || hc.Month > 12 || hc.Nth > 5 {
			return Holiday{}, fmt.Errorf("invalid month %d or nth %d", hc.Month, hc.Nth)
		}
		return Holiday{Name: hc.Name, Month: time.Month(hc.Month), Nth: hc.Nth, Weekday: wd}, nil
	}
	return Holiday{}, fmt.Errorf("holiday %q needs date, on, or nth weekday", hc.Name)
}

func (bc BreakConfig) brk() (Break, error) {
	start, err := time.Parse("2006-01-02", bc.Start)
	if err != nil {
		return Break{}, fmt.Errorf("invalid start %q", bc.Start)
	}
	end, err := time.Parse("2006-01-02", bc.End)
	if err != nil {
		return Break{}, fmt.Errorf("invalid end %q", bc.End)
	}
	if end.Before(start) {
		return Break{}, fmt.Errorf("break %q ends before it starts", bc.Name)
	}
	return Break{Name: bc.Name, Start: start, End: end}, nil
}
