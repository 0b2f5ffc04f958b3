package service

import (
	"context"
	"strings"
	"time"

	"aqevent/internal/timerange"
	"aqevent/pkg/model"
	"aqevent/pkg/sanitizer"
)

const unknownBucket = "Unknown"

// SearchCriteria filters are combined with AND. Zero values are ignored.
type SearchCriteria struct {
	Term       string       `json:"searchTerm,omitempty"`
	StartDate  time.Time    `json:"startDate,omitzero"`
	EndDate    time.Time    `json:"endDate,omitzero"`
	Location   string       `json:"location,omitempty"`
	EventType  string       `json:"eventType,omitempty"`
	Status     model.Source `json:"status,omitempty"`
	SeriesOnly bool         `json:"seriesOnly,omitempty"`
	HasFiles   bool         `json:"hasFiles,omitempty"`
}

type SearchResult struct {
	Results    []model.CorpusEvent `json:"results"`
	TotalCount int                 `json:"totalCount"`
	Criteria   SearchCriteria      `json:"criteria"`
}

type ListStats struct {
	Total     int `json:"total"`
	WithFiles int `json:"withFiles"`
	Series    int `json:"series"`
	ThisMonth int `json:"thisMonth"`
}

type ApprovedStats struct {
	ListStats
	Today int `json:"today"`
}

type FileStats struct {
	TotalFiles      int `json:"totalFiles"`
	EventsWithFiles int `json:"eventsWithFiles"`
}

type Breakdown struct {
	ByType             map[string]int `json:"byType"`
	ByLocation         map[string]int `json:"byLocation"`
	ByOrganizationType map[string]int `json:"byOrganizationType"`
	ByMonth            map[string]int `json:"byMonth"`
}

type Statistics struct {
	Pending     ListStats     `json:"pending"`
	Approved    ApprovedStats `json:"approved"`
	Files       FileStats     `json:"files"`
	Breakdown   Breakdown     `json:"breakdown"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

type PendingConflict struct {
	Event  *model.Event          `json:"event"`
	Result *model.ConflictResult `json:"result"`
}

type PendingReport struct {
	Total         int               `json:"total"`
	WithConflicts int               `json:"withConflicts"`
	WithWarnings  int               `json:"withWarnings"`
	Events        []PendingConflict `json:"events"`
}

func (s *eventService) Search(ctx context.Context, criteria SearchCriteria) (*SearchResult, error) {
	pending, approved, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load events for search", "error", err)
		return nil, s.mapError(err, "", "Failed to search events")
	}

	loc := s.cfg.Location()
	term := strings.ToLower(strings.TrimSpace(criteria.Term))
	results := []model.CorpusEvent{}
	for _, ce := range tag(pending, approved) {
		if matches(ce, criteria, term, loc) {
			results = append(results, ce)
		}
	}

	return &SearchResult{
		Results:    results,
		TotalCount: len(results),
		Criteria:   criteria,
	}, nil
}

func matches(ce model.CorpusEvent, c SearchCriteria, term string, loc *time.Location) bool {
	ev := ce.Event
	if term != "" && !containsAny(term, ev.Name, ev.Description, ev.ContactPerson, ev.Location) {
		return false
	}
	if !c.StartDate.IsZero() || !c.EndDate.IsZero() {
		day, ok := timerange.ParseDate(ev.EventDate, loc)
		if !ok {
			return false
		}
		if !c.StartDate.IsZero() && day.Before(sameDate(c.StartDate, loc)) {
			return false
		}
		if !c.EndDate.IsZero() && day.After(sameDate(c.EndDate, loc)) {
			return false
		}
	}
	if c.Location != "" && !sanitizer.SameLocation(c.Location, ev.Location) {
		return false
	}
	if c.EventType != "" && !strings.EqualFold(strings.TrimSpace(c.EventType), ev.EventType) {
		return false
	}
	if c.Status != "" && c.Status != ce.Source {
		return false
	}
	if c.SeriesOnly && !ev.IsPartOfSeries {
		return false
	}
	if c.HasFiles && !ev.HasFiles() {
		return false
	}
	return true
}

// sameDate keeps the calendar date of t and moves it to midnight in loc.
func sameDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func containsAny(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func (s *eventService) Statistics(ctx context.Context) (*Statistics, error) {
	pending, approved, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load events for statistics", "error", err)
		return nil, s.mapError(err, "", "Failed to generate statistics")
	}

	loc := s.cfg.Location()
	now := s.now().In(loc)
	stats := &Statistics{
		Breakdown: Breakdown{
			ByType:             map[string]int{},
			ByLocation:         map[string]int{},
			ByOrganizationType: map[string]int{},
			ByMonth:            map[string]int{},
		},
		GeneratedAt: now.UTC(),
	}

	stats.Pending = listStats(pending, now, loc)
	stats.Approved.ListStats = listStats(approved, now, loc)
	for _, ev := range approved {
		if day, ok := timerange.ParseDate(ev.EventDate, loc); ok && timerange.SameDay(day, now) {
			stats.Approved.Today++
		}
	}

	for _, ev := range append(append([]*model.Event{}, pending...), approved...) {
		if ev.HasFiles() {
			stats.Files.EventsWithFiles++
			stats.Files.TotalFiles += ev.UploadedFiles.Count
		}
		stats.Breakdown.ByType[bucket(ev.EventType)]++
		stats.Breakdown.ByLocation[bucket(ev.Location)]++
		stats.Breakdown.ByOrganizationType[bucket(ev.GroupCompanyType)]++
		month := unknownBucket
		if day, ok := timerange.ParseDate(ev.EventDate, loc); ok {
			month = day.Format("2006-01")
		}
		stats.Breakdown.ByMonth[month]++
	}
	return stats, nil
}

func listStats(events []*model.Event, now time.Time, loc *time.Location) ListStats {
	ls := ListStats{Total: len(events)}
	for _, ev := range events {
		if ev.HasFiles() {
			ls.WithFiles++
		}
		if ev.IsPartOfSeries {
			ls.Series++
		}
		if day, ok := timerange.ParseDate(ev.EventDate, loc); ok && day.Year() == now.Year() && day.Month() == now.Month() {
			ls.ThisMonth++
		}
	}
	return ls
}

func bucket(v string) string {
	if strings.TrimSpace(v) == "" {
		return unknownBucket
	}
	return v
}

// CheckPending evaluates every pending event against one fresh corpus read,
// excluding the event itself. Only events with conflicts or warnings are listed.
func (s *eventService) CheckPending(ctx context.Context) (*PendingReport, error) {
	pending, approved, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load events for conflict review", "error", err)
		return nil, s.mapError(err, "", "Failed to check pending events")
	}

	corpus := tag(pending, approved)
	report := &PendingReport{Total: len(pending), Events: []PendingConflict{}}
	for _, ev := range pending {
		if err := ctx.Err(); err != nil {
			return nil, s.mapError(err, "", "Conflict review cancelled")
		}
		result := s.detector.Evaluate(ev, corpus, ev.ID)
		if result.HasConflicts {
			report.WithConflicts++
		}
		if result.HasWarnings {
			report.WithWarnings++
		}
		if result.HasConflicts || result.HasWarnings {
			report.Events = append(report.Events, PendingConflict{Event: ev, Result: result})
		}
	}
	return report, nil
}

func tag(pending, approved []*model.Event) []model.CorpusEvent {
	out := make([]model.CorpusEvent, 0, len(pending)+len(approved))
	for _, ev := range pending {
		if ev != nil {
			out = append(out, model.CorpusEvent{Event: ev, Source: model.SourcePending})
		}
	}
	for _, ev := range approved {
		if ev != nil {
			out = append(out, model.CorpusEvent{Event: ev, Source: model.SourceApproved})
		}
	}
	return out
}
