// Package conflicts decides whether a candidate event can be booked against
// the existing pending and approved events, and proposes alternatives when
// it cannot.
package conflicts

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"aqevent/internal/calendar"
	"aqevent/internal/timerange"
	"aqevent/pkg/logger"
	"aqevent/pkg/model"
	"aqevent/pkg/sanitizer"
)

const (
	DefaultBuffer   = 15 * time.Minute
	DefaultTimezone = "America/New_York"
)

// CorpusReader supplies every existing event, tagged with its collection.
// It is called on every check; results are never cached.
type CorpusReader interface {
	LoadCorpus(ctx context.Context) ([]model.CorpusEvent, error)
}

type Options struct {
	// Buffer pads both reservation windows before overlap is tested. Zero is allowed.
	Buffer   time.Duration
	Venues   []string
	Calendar *calendar.Calendar
	Location *time.Location
	Now      func() time.Time

	DayStart        time.Duration
	DayEnd          time.Duration
	SlotLength      time.Duration
	LookaheadDays   int
	MaxSuggestions  int
	StartAdjustment time.Duration

	MinDuration   time.Duration
	MaxDuration   time.Duration
	MaxNameLength int
}

func DefaultOptions() Options {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	return Options{
		Buffer:          DefaultBuffer,
		Venues:          DefaultVenues,
		Calendar:        calendar.Default(),
		Location:        loc,
		Now:             time.Now,
		DayStart:        8 * time.Hour,
		DayEnd:          22 * time.Hour,
		SlotLength:      2 * time.Hour,
		LookaheadDays:   7,
		MaxSuggestions:  3,
		StartAdjustment: 15 * time.Minute,
		MinDuration:     15 * time.Minute,
		MaxDuration:     8 * time.Hour,
		MaxNameLength:   100,
	}
}

// fill replaces unset fields with defaults. Buffer is left alone so that a
// zero buffer stays zero.
func (o Options) fill() Options {
	def := DefaultOptions()
	if len(o.Venues) == 0 {
		o.Venues = def.Venues
	}
	if o.Calendar == nil {
		o.Calendar = def.Calendar
	}
	if o.Location == nil {
		o.Location = def.Location
	}
	if o.Now == nil {
		o.Now = def.Now
	}
	if o.DayEnd <= o.DayStart {
		o.DayStart, o.DayEnd = def.DayStart, def.DayEnd
	}
	if o.SlotLength <= 0 {
		o.SlotLength = def.SlotLength
	}
	if o.LookaheadDays <= 0 {
		o.LookaheadDays = def.LookaheadDays
	}
	if o.MaxSuggestions <= 0 {
		o.MaxSuggestions = def.MaxSuggestions
	}
	if o.StartAdjustment <= 0 {
		o.StartAdjustment = def.StartAdjustment
	}
	if o.MinDuration <= 0 {
		o.MinDuration = def.MinDuration
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = def.MaxDuration
	}
	if o.MaxNameLength <= 0 {
		o.MaxNameLength = def.MaxNameLength
	}
	if o.Buffer < 0 {
		o.Buffer = 0
	}
	return o
}

type Detector struct {
	corpus   CorpusReader
	opts     Options
	validate *validator.Validate
	logger   *logger.Logger
}

func NewDetector(corpus CorpusReader, opts Options, log *logger.Logger) *Detector {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		log.Fatal("Failed to register event format validators",
			"error", err,
		)
	}

	return &Detector{
		corpus:   corpus,
		opts:     opts.fill(),
		validate: v,
		logger:   log,
	}
}

func (d *Detector) Options() Options {
	return d.opts
}

// Detect reads a fresh corpus and evaluates candidate against it. A corpus
// read failure does not block the caller: the result carries a system
// warning and no conflicts.
func (d *Detector) Detect(ctx context.Context, candidate *model.Event, excludeID string) *model.ConflictResult {
	corpus, err := d.corpus.LoadCorpus(ctx)
	if err != nil {
		d.logger.Error("Failed to load events for conflict detection",
			"error", err,
		)
		return Unavailable(err)
	}

	result := d.Evaluate(candidate, corpus, excludeID)
	d.logger.Debug("Conflict detection complete",
		"event_date", eventDate(candidate),
		"location", eventLocation(candidate),
		"conflicts", len(result.Conflicts),
		"warnings", len(result.Warnings),
	)
	return result
}

// Evaluate runs every check against an already loaded corpus.
func (d *Detector) Evaluate(candidate *model.Event, corpus []model.CorpusEvent, excludeID string) *model.ConflictResult {
	if candidate == nil {
		candidate = &model.Event{}
	}
	others := exclude(corpus, excludeID)

	r := newReport()
	d.checkRoom(r, candidate, others)
	d.checkReservationBounds(r, candidate)
	d.checkDurations(r, candidate)
	day, dateOK := d.checkDate(r, candidate)
	if dateOK {
		d.checkCalendar(r, day)
	}
	d.checkFields(r, candidate)

	result := &model.ConflictResult{
		HasConflicts: len(r.conflicts) > 0,
		HasWarnings:  len(r.warnings) > 0,
		Conflicts:    r.conflicts,
		Warnings:     r.warnings,
		Suggestions:  []model.Suggestion{},
	}
	if result.HasConflicts {
		result.Suggestions = d.suggest(result, candidate, others)
	}
	result.Summary = Summarize(len(result.Conflicts), len(result.Warnings))
	return result
}

func exclude(corpus []model.CorpusEvent, excludeID string) []model.CorpusEvent {
	out := make([]model.CorpusEvent, 0, len(corpus))
	for _, ce := range corpus {
		if ce.Event == nil {
			continue
		}
		if excludeID != "" && ce.ID == excludeID {
			continue
		}
		out = append(out, ce)
	}
	return out
}

// reservation is the window an event holds the room for. Missing
// reservation times fall back to the event times.
func (d *Detector) reservation(ev *model.Event) (timerange.Range, bool) {
	start, end := reservationClocks(ev)
	return timerange.Window(ev.EventDate, start, end, d.opts.Location)
}

func reservationClocks(ev *model.Event) (string, string) {
	start := ev.ReservationStartTime
	if start == "" {
		start = ev.EventStartTime
	}
	end := ev.ReservationEndTime
	if end == "" {
		end = ev.EventEndTime
	}
	return start, end
}

// booked reports whether location is held by any corpus event during window
// on the window's date. Corpus windows are always padded.
func (d *Detector) booked(location string, window timerange.Range, corpus []model.CorpusEvent) bool {
	for _, ce := range corpus {
		if !sanitizer.SameLocation(location, ce.Location) {
			continue
		}
		existing, ok := d.reservation(ce.Event)
		if !ok || !timerange.SameDay(existing.Start, window.Start) {
			continue
		}
		if window.Overlaps(existing.Pad(d.opts.Buffer)) {
			return true
		}
	}
	return false
}

func eventDate(ev *model.Event) string {
	if ev == nil {
		return ""
	}
	return ev.EventDate
}

func eventLocation(ev *model.Event) string {
	if ev == nil {
		return ""
	}
	return ev.Location
}
