package submission

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqevent/internal/conflicts"
	"aqevent/internal/events/service"
	"aqevent/internal/recurrence"
	"aqevent/pkg/config"
	apperrors "aqevent/pkg/errors"
	"aqevent/pkg/logger"
	"aqevent/pkg/model"
)

var testNow = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

type mockCorpus struct {
	events []model.CorpusEvent
}

func (m *mockCorpus) LoadCorpus(ctx context.Context) ([]model.CorpusEvent, error) {
	return m.events, nil
}

type mockSubmitter struct {
	submitFunc func(ctx context.Context, sub service.Submission) (*model.Event, error)
	calls      []service.Submission
}

func (m *mockSubmitter) Submit(ctx context.Context, sub service.Submission) (*model.Event, error) {
	m.calls = append(m.calls, sub)
	if m.submitFunc != nil {
		return m.submitFunc(ctx, sub)
	}
	saved := sub.Event.Clone()
	saved.ID = fmt.Sprintf("EVT_%d", len(m.calls))
	return saved, nil
}

type fixture struct {
	orch      *Orchestrator
	submitter *mockSubmitter
	sleeps    []time.Duration
}

func newFixture(t *testing.T, corpus ...model.CorpusEvent) *fixture {
	t.Helper()
	opts := conflicts.DefaultOptions()
	opts.Location = time.UTC
	opts.Now = func() time.Time { return testNow }
	detector := conflicts.NewDetector(&mockCorpus{events: corpus}, opts, logger.Discard())

	f := &fixture{submitter: &mockSubmitter{}}
	cfg := &config.Config{Log: logger.Discard(), SubmissionDelay: 500 * time.Millisecond}
	f.orch = NewOrchestrator(detector, f.submitter, cfg)
	f.orch.now = func() time.Time { return testNow }
	f.orch.sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return ctx.Err()
	}
	return f
}

func recital() *model.Event {
	return &model.Event{
		Name:                 "Studio Class",
		EventDate:            "2026-10-20",
		Location:             "Concert Hall (Room 132)",
		EventType:            "Rehearsal",
		ContactPerson:        "Sam Lee",
		ContactEmail:         "sam@example.edu",
		ReservationStartTime: "09:00",
		ReservationEndTime:   "10:00",
		EventStartTime:       "09:00",
		EventEndTime:         "10:00",
	}
}

func weeklyForm() Form {
	return Form{
		Event: recital(),
		Recurrence: RecurrenceForm{
			Frequency: "weekly",
			EndDate:   "2026-11-03",
		},
		SubmissionSource: "test",
	}
}

func existing(date, start, end string) model.CorpusEvent {
	return model.CorpusEvent{
		Event: &model.Event{
			ID:                   "EVT_EXISTING",
			Name:                 "Jury Exams",
			Location:             "Concert Hall (Room 132)",
			EventDate:            date,
			ReservationStartTime: start,
			ReservationEndTime:   end,
		},
		Source: model.SourceApproved,
	}
}

func TestPlan_Series(t *testing.T) {
	f := newFixture(t)

	events, err := f.orch.Plan(weeklyForm())
	require.NoError(t, err)
	require.Len(t, events, 3)

	seriesID := events[0].SeriesID
	assert.Regexp(t, regexp.MustCompile(`^SERIES_\d+_[0-9a-z]{9}$`), seriesID)

	for i, ev := range events {
		assert.True(t, ev.IsPartOfSeries)
		assert.Equal(t, seriesID, ev.SeriesID)
		assert.Equal(t, i+1, ev.SeriesIndex)
		assert.Equal(t, 3, ev.SeriesTotalCount)
		assert.Equal(t, "weekly", ev.SeriesFrequency)
		assert.Equal(t, fmt.Sprintf("Studio Class (%d/3)", i+1), ev.Name)
	}
	assert.Equal(t, []string{"2026-10-20", "2026-10-27", "2026-11-03"},
		[]string{events[0].EventDate, events[1].EventDate, events[2].EventDate})
}

func TestPlan_SingleDateIsNotASeries(t *testing.T) {
	f := newFixture(t)

	events, err := f.orch.Plan(Form{Event: recital(), Recurrence: RecurrenceForm{Frequency: "single"}})
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.False(t, events[0].IsPartOfSeries)
	assert.Empty(t, events[0].SeriesID)
	assert.Equal(t, "Studio Class", events[0].Name)
	assert.Equal(t, "2026-10-20", events[0].EventDate)
}

func TestPlan_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		form    Form
		wantErr error
	}{
		{
			name:    "missing event",
			form:    Form{Recurrence: RecurrenceForm{Frequency: "single"}},
			wantErr: ErrMissingEvent,
		},
		{
			name:    "unknown frequency",
			form:    Form{Event: recital(), Recurrence: RecurrenceForm{Frequency: "fortnightly"}},
			wantErr: recurrence.ErrUnknownFrequency,
		},
		{
			name:    "end before start",
			form:    Form{Event: recital(), Recurrence: RecurrenceForm{Frequency: "daily", EndDate: "2026-10-01"}},
			wantErr: recurrence.ErrInvalidRange,
		},
		{
			name:    "bad explicit date",
			form:    Form{Event: recital(), Recurrence: RecurrenceForm{Frequency: "multiple", Dates: []string{"someday"}}},
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orch.Plan(tt.form)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheck_OneConflictingDateInSeries(t *testing.T) {
	f := newFixture(t, existing("2026-10-27", "09:30", "10:30"))

	events, err := f.orch.Plan(weeklyForm())
	require.NoError(t, err)

	report := f.orch.Check(context.Background(), events)

	require.Len(t, report.Events, 3)
	assert.Equal(t, 3, report.TotalEvents)
	assert.Equal(t, 1, report.ConflictCount)
	assert.True(t, report.HasConflicts)

	flagged := 0
	for _, ec := range report.Events {
		if ec.Result.HasConflicts {
			flagged++
			assert.Equal(t, "2026-10-27", ec.EventDate)
			assert.True(t, ec.Result.HasConflictType(model.IssueRoom))
		}
	}
	assert.Equal(t, 1, flagged)
}

func TestSubmit_DeclinedConfirmWritesNothing(t *testing.T) {
	f := newFixture(t, existing("2026-10-27", "09:30", "10:30"))

	var asked *Report
	outcome, err := f.orch.Submit(context.Background(), weeklyForm(), func(r *Report) bool {
		asked = r
		return false
	}, nil)
	require.NoError(t, err)

	require.NotNil(t, asked)
	assert.Equal(t, StatusCancelled, outcome.Status)
	assert.Empty(t, f.submitter.calls)
	assert.Empty(t, outcome.Results)
	assert.Same(t, asked, outcome.Report)
}

func TestSubmit_ConfirmedSubmitsEverything(t *testing.T) {
	f := newFixture(t, existing("2026-10-27", "09:30", "10:30"))

	var progress []string
	outcome, err := f.orch.Submit(context.Background(), weeklyForm(),
		func(*Report) bool { return true },
		func(current, total int, message string) { progress = append(progress, message) },
	)
	require.NoError(t, err)

	assert.Equal(t, StatusAllSucceeded, outcome.Status)
	assert.Equal(t, 3, outcome.Succeeded)
	assert.Len(t, f.submitter.calls, 3)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, f.sleeps)
	assert.Equal(t, "Submitting event 1 of 3...", progress[0])
	assert.Equal(t, "test", f.submitter.calls[0].Source)
	assert.Equal(t, "EVT_2", outcome.Results[1].EventID)
}

func TestSubmit_NoConflictsSkipsConfirm(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.orch.Submit(context.Background(), weeklyForm(), func(*Report) bool {
		t.Fatal("confirm must not be called without conflicts")
		return false
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusAllSucceeded, outcome.Status)
}

func TestSubmit_FailuresDoNotAbortBatch(t *testing.T) {
	tests := []struct {
		name       string
		failOn     map[int]bool
		wantStatus Status
		wantFailed int
	}{
		{name: "one failure", failOn: map[int]bool{2: true}, wantStatus: StatusPartial, wantFailed: 1},
		{name: "every failure", failOn: map[int]bool{1: true, 2: true, 3: true}, wantStatus: StatusAllFailed, wantFailed: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.submitter.submitFunc = func(ctx context.Context, sub service.Submission) (*model.Event, error) {
				if tt.failOn[sub.Event.SeriesIndex] {
					return nil, apperrors.Unavailable("event store")
				}
				saved := sub.Event.Clone()
				saved.ID = "EVT_OK"
				return saved, nil
			}

			outcome, err := f.orch.Submit(context.Background(), weeklyForm(), nil, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, outcome.Status)
			assert.Equal(t, tt.wantFailed, outcome.Failed)
			assert.Len(t, f.submitter.calls, 3)
			assert.Len(t, outcome.Results, 3)
			require.Error(t, outcome.FirstError)
			for _, r := range outcome.Results {
				if !r.Success {
					assert.Equal(t, "event store is temporarily unavailable", r.Error)
				}
			}
		})
	}
}

func TestSubmit_CancelledMarksRemainingFailed(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.orch.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	var messages []string
	progress := func(_, _ int, msg string) { messages = append(messages, msg) }

	outcome, err := f.orch.Submit(ctx, weeklyForm(), nil, progress)
	require.NoError(t, err)

	assert.Equal(t, []string{"Submitting event 1 of 3..."}, messages)
	assert.Len(t, f.submitter.calls, 1)
	assert.Equal(t, StatusPartial, outcome.Status)
	assert.Equal(t, 1, outcome.Succeeded)
	assert.Equal(t, 2, outcome.Failed)
	require.Len(t, outcome.Results, 3)
	assert.Equal(t, 2, outcome.Results[1].Index)
	assert.True(t, errors.Is(outcome.Results[2].Err(), context.Canceled))
}

func TestSubmit_CancelledBeforeStartAnnouncesNothing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var messages []string
	progress := func(_, _ int, msg string) { messages = append(messages, msg) }

	outcome, err := f.orch.Submit(ctx, weeklyForm(), nil, progress)
	require.NoError(t, err)

	assert.Empty(t, messages)
	assert.Empty(t, f.submitter.calls)
	assert.Equal(t, StatusAllFailed, outcome.Status)
	assert.Equal(t, 3, outcome.Failed)
}

func TestRecurrenceForm_Spec(t *testing.T) {
	form := RecurrenceForm{
		Frequency:      " Weekly ",
		EndDate:        "2026-12-01",
		Interval:       2,
		Weekdays:       []string{"Monday", "wed", "5"},
		MonthlyPattern: "",
	}

	spec, err := form.Spec("2026-10-20")
	require.NoError(t, err)

	assert.Equal(t, recurrence.Weekly, spec.Frequency)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), spec.Start)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), spec.End)
	assert.Equal(t, 2, spec.Interval)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, spec.Weekdays)

	_, err = RecurrenceForm{Frequency: "weekly", Weekdays: []string{"someday"}}.Spec("2026-10-20")
	require.Error(t, err)
}
