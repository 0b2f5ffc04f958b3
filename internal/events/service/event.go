package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"aqevent/internal/conflicts"
	eventserrors "aqevent/internal/events/errors"
	"aqevent/internal/events/repository"
	"aqevent/internal/events/validator"
	"aqevent/internal/timerange"
	"aqevent/pkg/config"
	apperrors "aqevent/pkg/errors"
	"aqevent/pkg/model"
	"aqevent/pkg/sanitizer"
	"aqevent/pkg/store"
)

const (
	DefaultApprover     = "AQEvent Admin"
	DefaultFormSource   = "AQEvent Form v2.0"
	idGenerationRetries = 5
)

type ProgressFunc func(current, total int, message string)

// Submission is one event as it arrives from the form, with its attachments.
type Submission struct {
	Event     *model.Event
	Files     []model.FileUpload
	UserAgent string
	Source    string
}

type BatchFailure struct {
	EventID string `json:"eventId"`
	Error   string `json:"error"`
}

type BatchResult struct {
	Successful []string       `json:"successful"`
	Failed     []BatchFailure `json:"failed"`
	Total      int            `json:"total"`
}

type EventService interface {
	Submit(ctx context.Context, sub Submission) (*model.Event, error)
	Approve(ctx context.Context, id string) (*model.Event, error)
	Reject(ctx context.Context, id string, reason string) (*model.Event, error)
	BatchApprove(ctx context.Context, ids []string, progress ProgressFunc) (*BatchResult, error)
	BatchReject(ctx context.Context, ids []string, reason string, progress ProgressFunc) (*BatchResult, error)
	GetByID(ctx context.Context, id string) (*model.CorpusEvent, error)
	ListPending(ctx context.Context) ([]*model.Event, error)
	ListApproved(ctx context.Context) ([]*model.Event, error)
	Search(ctx context.Context, criteria SearchCriteria) (*SearchResult, error)
	Statistics(ctx context.Context) (*Statistics, error)
	CheckConflicts(ctx context.Context, ev *model.Event, excludeID string) *model.ConflictResult
	CheckPending(ctx context.Context) (*PendingReport, error)
}

type eventService struct {
	repo      repository.EventRepository
	validator *validator.EventValidator
	detector  *conflicts.Detector
	notifier  Notifier
	cfg       *config.Config
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewEventService(
	repo repository.EventRepository,
	validator *validator.EventValidator,
	detector *conflicts.Detector,
	notifier Notifier,
	cfg *config.Config,
) EventService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &eventService{
		repo:      repo,
		validator: validator,
		detector:  detector,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
		sleep:     Sleep,
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *eventService) Submit(ctx context.Context, sub Submission) (*model.Event, error) {
	ev := sub.Event
	if ev == nil {
		return nil, apperrors.InvalidInput("event is required")
	}
	ev = ev.Clone()
	sanitizer.SanitizeEvent(ev)
	ev.EventDate = timerange.NormalizeDate(ev.EventDate)

	if err := s.validate(ev, sub.Files); err != nil {
		return nil, err
	}

	pending, approved, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load events for submission", "error", err)
		return nil, apperrors.Unavailable("event store")
	}
	id, err := s.newEventID(pending, approved)
	if err != nil {
		return nil, apperrors.Internal("Failed to assign event ID", err)
	}

	now := s.now().UTC()
	source := sub.Source
	if source == "" {
		source = DefaultFormSource
	}
	ev.ID = id
	ev.Status = model.StatusPending
	ev.SubmittedAt = &now
	ev.ApprovedAt = nil
	ev.ApprovalMetadata = nil
	ev.Version = model.SchemaVersion
	ev.SubmissionMetadata = &model.SubmissionMetadata{
		UserAgent:        sub.UserAgent,
		SubmissionSource: source,
		IPTimestamp:      now,
		FormVersion:      model.SchemaVersion,
	}
	ev.UploadedFiles = nil
	if len(sub.Files) > 0 {
		ev.UploadedFiles = s.uploadFiles(ctx, id, sub.Files)
	}

	description := fmt.Sprintf("Add new enhanced event: %s (ID: %s)", ev.Name, id)
	if err := s.repo.AppendPending(ctx, ev, description); err != nil {
		s.cfg.Log.Error("Failed to submit event", "event_id", id, "error", err)
		return nil, s.mapError(err, id, "Failed to submit event")
	}

	s.cfg.Log.Info("Event submitted",
		"event_id", id,
		"name", ev.Name,
		"location", ev.Location,
		"event_date", ev.EventDate,
		"series_id", ev.SeriesID,
	)
	s.notifier.Notify(ctx, newNotification(NotificationSubmitted, ev, now))
	return ev, nil
}

func (s *eventService) validate(ev *model.Event, files []model.FileUpload) error {
	if err := s.validator.Validate(ev); err != nil {
		return validationError(err)
	}
	if err := s.validator.ValidateFiles(files); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(verrs.Error(), verrs.Details())
	}
	return apperrors.Validation(err.Error(), nil)
}

// newEventID returns EVT_<unix ms>_<0..999> that is not used by any stored event.
func (s *eventService) newEventID(pending, approved []*model.Event) (string, error) {
	used := make(map[string]struct{}, len(pending)+len(approved))
	for _, ev := range append(append([]*model.Event{}, pending...), approved...) {
		if ev != nil {
			used[ev.ID] = struct{}{}
		}
	}
	for i := 0; i < idGenerationRetries; i++ {
		id := fmt.Sprintf("EVT_%d_%d", s.now().UnixMilli(), rand.Intn(1000))
		if _, taken := used[id]; !taken {
			return id, nil
		}
	}
	return "", errors.New("no free event id after retries")
}

// uploadFiles stores attachments one at a time. A failure is recorded on
// the event and never fails the submission.
func (s *eventService) uploadFiles(ctx context.Context, eventID string, files []model.FileUpload) *model.UploadedFiles {
	result := &model.UploadedFiles{
		Count: len(files),
		Files: []model.StoredFile{},
	}
	for i, f := range files {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.UploadDelay); err != nil {
				for _, rest := range files[i:] {
					result.FailedFiles = append(result.FailedFiles, model.FailedUpload{FileName: rest.Name, Error: err.Error()})
				}
				break
			}
		}

		data, err := store.DecodeUpload(f.Name, f.Content)
		if err == nil {
			var stored *model.StoredFile
			stored, err = s.repo.UploadFile(ctx, f.Name, data, eventID)
			if err == nil {
				result.Files = append(result.Files, *stored)
				result.SuccessCount++
				continue
			}
		}
		s.cfg.Log.Warn("File upload failed",
			"event_id", eventID,
			"file", f.Name,
			"error", err,
		)
		result.FailedFiles = append(result.FailedFiles, model.FailedUpload{FileName: f.Name, Error: err.Error()})
	}
	return result
}

func (s *eventService) Approve(ctx context.Context, id string) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	now := s.now().UTC()
	ev, err := s.repo.Approve(ctx, id, func(e *model.Event) {
		e.Status = model.StatusApproved
		e.ApprovedAt = &now
		e.Version = model.SchemaVersion
		e.ApprovalMetadata = &model.ApprovalMetadata{
			ApprovedBy:        DefaultApprover,
			ApprovalTimestamp: now,
			SystemVersion:     model.SchemaVersion,
		}
	})
	if err != nil {
		s.cfg.Log.Error("Failed to approve event", "event_id", id, "error", err)
		return nil, s.mapError(err, id, "Failed to approve event")
	}

	s.cfg.Log.Info("Event approved",
		"event_id", id,
		"name", ev.Name,
		"has_files", ev.HasFiles(),
	)
	s.notifier.Notify(ctx, newNotification(NotificationApproved, ev, now))
	return ev, nil
}

// Reject removes the event from the pending list. Its files stay in the store.
func (s *eventService) Reject(ctx context.Context, id string, reason string) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}
	reason = strings.TrimSpace(reason)

	ev, err := s.repo.RemovePending(ctx, id, func(e *model.Event) string {
		return fmt.Sprintf("Reject event: %s (%s) - %s", e.Name, id, reason)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reject event", "event_id", id, "error", err)
		return nil, s.mapError(err, id, "Failed to reject event")
	}

	rejected := ev.Clone()
	rejected.Status = model.StatusRejected
	s.cfg.Log.Info("Event rejected",
		"event_id", id,
		"name", rejected.Name,
		"reason", reason,
	)
	n := newNotification(NotificationRejected, rejected, s.now().UTC())
	n.Reason = reason
	s.notifier.Notify(ctx, n)
	return rejected, nil
}

func (s *eventService) BatchApprove(ctx context.Context, ids []string, progress ProgressFunc) (*BatchResult, error) {
	return s.batch(ctx, ids, progress, "Approving", func(id string) error {
		_, err := s.Approve(ctx, id)
		return err
	})
}

func (s *eventService) BatchReject(ctx context.Context, ids []string, reason string, progress ProgressFunc) (*BatchResult, error) {
	return s.batch(ctx, ids, progress, "Rejecting", func(id string) error {
		_, err := s.Reject(ctx, id, reason)
		return err
	})
}

// batch runs op for each id in order with a fixed delay between items.
// A failing item is recorded and the batch continues; a cancelled context
// marks the remaining items failed.
func (s *eventService) batch(ctx context.Context, ids []string, progress ProgressFunc, verb string, op func(id string) error) (*BatchResult, error) {
	if err := s.validator.ValidateIDs(ids); err != nil {
		return nil, validationError(err)
	}

	result := &BatchResult{
		Successful: []string{},
		Failed:     []BatchFailure{},
		Total:      len(ids),
	}
	for i, id := range ids {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.BatchDelay); err != nil {
				for _, rest := range ids[i:] {
					result.Failed = append(result.Failed, BatchFailure{EventID: rest, Error: err.Error()})
				}
				break
			}
		}
		if progress != nil {
			progress(i+1, len(ids), fmt.Sprintf("%s event %d...", verb, i+1))
		}
		if err := op(id); err != nil {
			result.Failed = append(result.Failed, BatchFailure{EventID: id, Error: apperrors.AsAppError(err).Message})
			continue
		}
		result.Successful = append(result.Successful, id)
	}

	s.cfg.Log.Info("Batch operation finished",
		"operation", strings.ToLower(verb),
		"total", result.Total,
		"successful", len(result.Successful),
		"failed", len(result.Failed),
	)
	return result, nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*model.CorpusEvent, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	ev, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve event")
	}
	return ev, nil
}

func (s *eventService) ListPending(ctx context.Context) ([]*model.Event, error) {
	events, err := s.repo.FindPending(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list pending events", "error", err)
		return nil, s.mapError(err, "", "Failed to retrieve pending events")
	}
	return events, nil
}

func (s *eventService) ListApproved(ctx context.Context) ([]*model.Event, error) {
	events, err := s.repo.FindApproved(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list approved events", "error", err)
		return nil, s.mapError(err, "", "Failed to retrieve approved events")
	}
	return events, nil
}

func (s *eventService) CheckConflicts(ctx context.Context, ev *model.Event, excludeID string) *model.ConflictResult {
	return s.detector.Detect(ctx, ev, excludeID)
}

func (s *eventService) mapError(err error, id string, message string) error {
	switch {
	case errors.Is(err, eventserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Event", id)
	case errors.Is(err, eventserrors.ErrNotPending):
		return apperrors.NotFoundWithID("Pending event", id)
	case errors.Is(err, eventserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid event ID format")
	case errors.Is(err, eventserrors.ErrAlreadyApproved):
		return apperrors.Conflict(fmt.Sprintf("Event with ID '%s' is already approved", id))
	case errors.Is(err, eventserrors.ErrStoreUnavailable):
		return apperrors.Unavailable("event store")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(message)
	}
	return apperrors.Internal(message, err)
}
