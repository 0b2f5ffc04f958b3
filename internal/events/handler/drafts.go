package handler

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"aqevent/internal/conflicts"
	"aqevent/internal/events/service"
	"aqevent/internal/recurrence"
	"aqevent/internal/submission"
	apperrors "aqevent/pkg/errors"
	httputil "aqevent/pkg/http"
	"aqevent/pkg/logger"
	"aqevent/pkg/model"
)

const (
	DraftSessionTTL  = 30 * time.Minute
	MaxDraftSessions = 1000
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

type DraftRequest struct {
	Event      *model.Event               `json:"event"`
	Recurrence *submission.RecurrenceForm `json:"recurrence,omitempty"`
	ExcludeID  string                     `json:"excludeId,omitempty"`
}

// DraftState is the latest check of a session. Pending is set while the
// most recent input has not been checked yet.
type DraftState struct {
	Session      string                `json:"session"`
	Result       *model.ConflictResult `json:"result,omitempty"`
	CheckedAt    *time.Time            `json:"checkedAt,omitempty"`
	Preview      *recurrence.Preview   `json:"preview,omitempty"`
	PreviewError string                `json:"previewError,omitempty"`
	Pending      bool                  `json:"pending"`
}

type draftSession struct {
	checks   *conflicts.LiveChecker
	previews *conflicts.LiveChecker

	mu         sync.Mutex
	state      DraftState
	requested  string
	checkedKey string
	touchedAt  time.Time
}

// DraftHandler runs debounced conflict checks while a booking form is being
// edited. Each session keeps the result of its latest check.
type DraftHandler struct {
	ctx     context.Context
	service service.EventService
	log     *logger.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*draftSession
	debounce time.Duration
	preview  time.Duration
}

func NewDraftHandler(ctx context.Context, service service.EventService, log *logger.Logger) *DraftHandler {
	return &DraftHandler{
		ctx:      ctx,
		service:  service,
		log:      log,
		now:      time.Now,
		sessions: map[string]*draftSession{},
		debounce: conflicts.DefaultDebounce,
		preview:  conflicts.RecurrenceDebounce,
	}
}

func (h *DraftHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("session")
	if !sessionIDPattern.MatchString(id) {
		h.writeError(w, "Update", apperrors.InvalidInput("invalid draft session id"))
		return
	}

	var req DraftRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Update", err)
		return
	}
	if req.Event == nil {
		h.writeError(w, "Update", apperrors.InvalidInput("draft event is required"))
		return
	}

	sess, err := h.session(id)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	ev := req.Event.Clone()
	excludeID := strings.TrimSpace(req.ExcludeID)
	key := conflicts.InputKey(struct {
		Event     *model.Event
		ExcludeID string
	}{ev, excludeID})
	sess.mu.Lock()
	sess.requested = key
	sess.state.Pending = key != sess.checkedKey
	sess.mu.Unlock()

	sess.checks.Trigger(key, func(ctx context.Context) {
		result := h.service.CheckConflicts(ctx, ev, excludeID)
		checkedAt := h.now().UTC()
		sess.mu.Lock()
		sess.state.Result = result
		sess.state.CheckedAt = &checkedAt
		sess.checkedKey = key
		sess.state.Pending = sess.requested != key
		sess.mu.Unlock()
	})

	if req.Recurrence != nil {
		form := *req.Recurrence
		sess.previews.Trigger(conflicts.InputKey(struct {
			Date string
			Form submission.RecurrenceForm
		}{ev.EventDate, form}), func(ctx context.Context) {
			dates, err := form.ExpandDates(ev.EventDate)
			sess.mu.Lock()
			defer sess.mu.Unlock()
			if err != nil {
				sess.state.Preview = nil
				sess.state.PreviewError = err.Error()
				return
			}
			p := recurrence.NewPreview(dates, recurrence.DefaultPreviewLimit)
			sess.state.Preview = &p
			sess.state.PreviewError = ""
		})
	}

	if err := httputil.WriteAccepted(w, h.snapshot(sess)); err != nil {
		h.log.Error("failed to write accepted response", "handler", "Update", "operation", "WriteAccepted", "error", err)
	}
}

func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.mu.Lock()
	sess, ok := h.sessions[ps.ByName("session")]
	h.mu.Unlock()
	if !ok {
		h.writeError(w, "Get", apperrors.NotFoundWithID("Draft session", ps.ByName("session")))
		return
	}

	if err := httputil.WriteSuccess(w, h.snapshot(sess)); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

// Stop cancels every scheduled check. Checks already running complete.
func (h *DraftHandler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sess := range h.sessions {
		sess.checks.Stop()
		sess.previews.Stop()
		delete(h.sessions, id)
	}
}

func (h *DraftHandler) session(id string) (*draftSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for key, sess := range h.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.touchedAt)
		sess.mu.Unlock()
		if idle > DraftSessionTTL {
			sess.checks.Stop()
			sess.previews.Stop()
			delete(h.sessions, key)
		}
	}

	sess, ok := h.sessions[id]
	if !ok {
		if len(h.sessions) >= MaxDraftSessions {
			return nil, apperrors.RateLimited("too many open draft sessions")
		}
		sess = &draftSession{
			checks:   conflicts.NewLiveChecker(h.ctx, h.debounce),
			previews: conflicts.NewLiveChecker(h.ctx, h.preview),
			state:    DraftState{Session: id},
		}
		h.sessions[id] = sess
	}
	sess.mu.Lock()
	sess.touchedAt = now
	sess.mu.Unlock()
	return sess, nil
}

func (h *DraftHandler) snapshot(sess *draftSession) DraftState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

func (h *DraftHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *DraftHandler) RegisterRoutes(router *httprouter.Router) {
	router.PUT("/api/v1/drafts/:session", h.Update)
	router.GET("/api/v1/drafts/:session", h.Get)
}
