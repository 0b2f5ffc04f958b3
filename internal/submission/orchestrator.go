package submission

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"aqevent/internal/events/service"
	"aqevent/pkg/config"
	apperrors "aqevent/pkg/errors"
	"aqevent/pkg/model"
)

type Status string

const (
	StatusAllSucceeded Status = "all_succeeded"
	StatusPartial      Status = "partial"
	StatusAllFailed    Status = "all_failed"
	StatusCancelled    Status = "cancelled"
)

const (
	seriesSuffixLen = 9
	base36          = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var ErrMissingEvent = errors.New("submission has no event")

// Checker runs a conflict check for one candidate. *conflicts.Detector satisfies it.
type Checker interface {
	Detect(ctx context.Context, candidate *model.Event, excludeID string) *model.ConflictResult
}

type Submitter interface {
	Submit(ctx context.Context, sub service.Submission) (*model.Event, error)
}

// ConfirmFunc is asked before any write when the report shows conflicts.
type ConfirmFunc func(report *Report) bool

type EventCheck struct {
	Index     int                   `json:"index"`
	EventDate string                `json:"eventDate"`
	Name      string                `json:"name"`
	Result    *model.ConflictResult `json:"result"`
}

type Report struct {
	Events        []EventCheck `json:"events"`
	TotalEvents   int          `json:"totalEvents"`
	ConflictCount int          `json:"conflictCount"`
	WarningCount  int          `json:"warningCount"`
	HasConflicts  bool         `json:"hasConflicts"`
	HasWarnings   bool         `json:"hasWarnings"`
}

type EventResult struct {
	Index     int    `json:"index"`
	EventDate string `json:"eventDate"`
	Name      string `json:"name"`
	EventID   string `json:"eventId,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`

	err error
}

// Err returns the error behind a failed result.
func (r EventResult) Err() error {
	return r.err
}

type Outcome struct {
	Status     Status        `json:"status"`
	SeriesID   string        `json:"seriesId,omitempty"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Results    []EventResult `json:"results"`
	Report     *Report       `json:"report,omitempty"`
	FirstError error         `json:"-"`
}

type Orchestrator struct {
	checker   Checker
	submitter Submitter
	cfg       *config.Config
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(checker Checker, submitter Submitter, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		checker:   checker,
		submitter: submitter,
		cfg:       cfg,
		now:       time.Now,
		sleep:     service.Sleep,
	}
}

// Plan expands the form into one event per generated date. A series of more
// than one event shares a series id and carries its position in the name.
func (o *Orchestrator) Plan(form Form) ([]*model.Event, error) {
	if form.Event == nil {
		return nil, ErrMissingEvent
	}
	dates, err := form.Recurrence.ExpandDates(form.Event.EventDate)
	if err != nil {
		return nil, err
	}

	frequency := form.Recurrence.Frequency
	if spec, err := form.Recurrence.Spec(form.Event.EventDate); err == nil {
		frequency = string(spec.Frequency)
	}

	total := len(dates)
	seriesID := ""
	if total > 1 {
		seriesID = o.newSeriesID()
	}

	events := make([]*model.Event, 0, total)
	for i, day := range dates {
		ev := form.Event.Clone()
		ev.ID = ""
		ev.EventDate = day.Format(time.DateOnly)
		ev.EventFrequency = frequency
		if total > 1 {
			ev.IsPartOfSeries = true
			ev.SeriesID = seriesID
			ev.SeriesIndex = i + 1
			ev.SeriesTotalCount = total
			ev.SeriesFrequency = frequency
			ev.Name = fmt.Sprintf("%s (%d/%d)", form.Event.Name, i+1, total)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Check runs the conflict engine for every planned event. Each check reads
// the corpus afresh.
func (o *Orchestrator) Check(ctx context.Context, events []*model.Event) *Report {
	report := &Report{Events: make([]EventCheck, 0, len(events)), TotalEvents: len(events)}
	for i, ev := range events {
		result := o.checker.Detect(ctx, ev, "")
		report.Events = append(report.Events, EventCheck{
			Index:     i + 1,
			EventDate: ev.EventDate,
			Name:      ev.Name,
			Result:    result,
		})
		if result.HasConflicts {
			report.ConflictCount++
			report.HasConflicts = true
		}
		if result.HasWarnings {
			report.WarningCount++
			report.HasWarnings = true
		}
	}
	return report
}

// Submit plans and checks the form, asks confirm when conflicts were found,
// then submits the events one at a time. A failed event never stops the
// ones after it; cancelling ctx does.
func (o *Orchestrator) Submit(ctx context.Context, form Form, confirm ConfirmFunc, progress service.ProgressFunc) (*Outcome, error) {
	events, err := o.Plan(form)
	if err != nil {
		return nil, err
	}

	report := o.Check(ctx, events)
	outcome := &Outcome{Total: len(events), Results: make([]EventResult, 0, len(events)), Report: report}
	if len(events) > 0 {
		outcome.SeriesID = events[0].SeriesID
	}

	if report.HasConflicts && (confirm == nil || !confirm(report)) {
		o.cfg.Log.Info("Submission cancelled after conflict check",
			"events", len(events),
			"conflicts", report.ConflictCount,
		)
		outcome.Status = StatusCancelled
		return outcome, nil
	}

	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			o.failRemaining(outcome, events[i:], i, err)
			break
		}
		if progress != nil {
			progress(i+1, len(events), fmt.Sprintf("Submitting event %d of %d...", i+1, len(events)))
		}

		result := EventResult{Index: i + 1, EventDate: ev.EventDate, Name: ev.Name}

		saved, err := o.submitter.Submit(ctx, service.Submission{
			Event:     ev,
			Files:     form.Files,
			UserAgent: form.UserAgent,
			Source:    form.SubmissionSource,
		})
		if err != nil {
			o.cfg.Log.Warn("Series event submission failed",
				"series_id", ev.SeriesID,
				"index", i+1,
				"event_date", ev.EventDate,
				"error", err,
			)
			o.fail(outcome, result, err)
		} else {
			result.Success = true
			result.EventID = saved.ID
			outcome.Succeeded++
			outcome.Results = append(outcome.Results, result)
		}

		if i < len(events)-1 {
			if err := o.sleep(ctx, o.cfg.SubmissionDelay); err != nil {
				o.failRemaining(outcome, events[i+1:], i+1, err)
				break
			}
		}
	}

	outcome.Status = status(outcome)
	o.cfg.Log.Info("Submission finished",
		"series_id", outcome.SeriesID,
		"status", outcome.Status,
		"succeeded", outcome.Succeeded,
		"failed", outcome.Failed,
	)
	return outcome, nil
}

func (o *Orchestrator) fail(outcome *Outcome, result EventResult, err error) {
	result.Success = false
	result.err = err
	result.Error = err.Error()
	if apperrors.IsAppError(err) {
		result.Error = apperrors.AsAppError(err).Message
	}
	if outcome.FirstError == nil {
		outcome.FirstError = err
	}
	outcome.Failed++
	outcome.Results = append(outcome.Results, result)
}

func (o *Orchestrator) failRemaining(outcome *Outcome, remaining []*model.Event, offset int, err error) {
	cancelled := apperrors.Wrap(err, apperrors.CodeTimeout, "Submission cancelled before this event was sent", http.StatusGatewayTimeout)
	for j, ev := range remaining {
		o.fail(outcome, EventResult{Index: offset + j + 1, EventDate: ev.EventDate, Name: ev.Name}, cancelled)
	}
}

func (o *Orchestrator) newSeriesID() string {
	suffix := make([]byte, seriesSuffixLen)
	for i := range suffix {
		suffix[i] = base36[rand.Intn(len(base36))]
	}
	return "SERIES_" + strconv.FormatInt(o.now().UnixMilli(), 10) + "_" + string(suffix)
}

func status(outcome *Outcome) Status {
	switch {
	case outcome.Total > 0 && outcome.Succeeded == outcome.Total:
		return StatusAllSucceeded
	case outcome.Succeeded > 0:
		return StatusPartial
	default:
		return StatusAllFailed
	}
}
