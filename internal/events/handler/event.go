package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"aqevent/internal/calendar"
	"aqevent/internal/events/service"
	"aqevent/internal/recurrence"
	"aqevent/internal/submission"
	"aqevent/internal/timerange"
	"aqevent/pkg/config"
	apperrors "aqevent/pkg/errors"
	httputil "aqevent/pkg/http"
	"aqevent/pkg/model"
)

type PreviewRequest struct {
	EventDate  string                    `json:"eventDate"`
	Recurrence submission.RecurrenceForm `json:"recurrence"`
	Limit      int                       `json:"limit,omitempty"`
}

// EventHandler serves the public booking surface.
type EventHandler struct {
	service      service.EventService
	orchestrator *submission.Orchestrator
	cfg          *config.Config
	now          func() time.Time
}

func NewEventHandler(service service.EventService, orchestrator *submission.Orchestrator, cfg *config.Config) *EventHandler {
	return &EventHandler{
		service:      service,
		orchestrator: orchestrator,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (h *EventHandler) CheckConflicts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var ev model.Event
	if err := httputil.DecodeJSON(r, &ev); err != nil {
		h.writeError(w, "CheckConflicts", err)
		return
	}

	result := h.service.CheckConflicts(r.Context(), &ev, strings.TrimSpace(r.URL.Query().Get("excludeId")))
	if err := httputil.WriteSuccess(w, result); err != nil {
		h.cfg.Log.Error("failed to write success response", "handler", "CheckConflicts", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) PreviewRecurrence(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req PreviewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "PreviewRecurrence", err)
		return
	}

	dates, err := req.Recurrence.ExpandDates(req.EventDate)
	if err != nil {
		h.writeError(w, "PreviewRecurrence", apperrors.InvalidInput(err.Error()))
		return
	}

	if err := httputil.WriteSuccess(w, recurrence.NewPreview(dates, req.Limit)); err != nil {
		h.cfg.Log.Error("failed to write success response", "handler", "PreviewRecurrence", "operation", "WriteSuccess", "error", err)
	}
}

// Submit expands and checks a submission. When conflicts are found nothing
// is written unless the request carries confirm=true.
func (h *EventHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	confirmed, err := httputil.QueryBool(r, "confirm")
	if err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	var form submission.Form
	if err := httputil.DecodeJSON(r, &form); err != nil {
		h.writeError(w, "Submit", err)
		return
	}
	form.UserAgent = r.UserAgent()

	outcome, err := h.orchestrator.Submit(r.Context(), form,
		func(*submission.Report) bool { return confirmed },
		func(current, total int, message string) {
			h.cfg.Log.Debug("Submission progress", "current", current, "total", total, "message", message)
		},
	)
	if err != nil {
		h.writeError(w, "Submit", planError(err))
		return
	}

	if err := httputil.WriteJSON(w, outcomeStatus(outcome), httputil.SuccessResponse{Data: outcome}); err != nil {
		h.cfg.Log.Error("failed to write JSON response", "handler", "Submit", "operation", "WriteJSON", "error", err)
	}
}

func planError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.InvalidInput(err.Error())
}

func outcomeStatus(outcome *submission.Outcome) int {
	switch outcome.Status {
	case submission.StatusAllSucceeded:
		return http.StatusCreated
	case submission.StatusPartial:
		return http.StatusMultiStatus
	case submission.StatusCancelled:
		return http.StatusConflict
	default:
		if outcome.FirstError != nil {
			return apperrors.AsAppError(outcome.FirstError).StatusCode()
		}
		return http.StatusInternalServerError
	}
}

func (h *EventHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	criteria, err := searchCriteria(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	result, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.cfg.Log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func searchCriteria(r *http.Request) (service.SearchCriteria, error) {
	q := r.URL.Query()
	criteria := service.SearchCriteria{
		Term:      q.Get("q"),
		Location:  q.Get("location"),
		EventType: q.Get("eventType"),
	}
	if criteria.Term == "" {
		criteria.Term = q.Get("searchTerm")
	}

	for key, dst := range map[string]*time.Time{"startDate": &criteria.StartDate, "endDate": &criteria.EndDate} {
		s, err := httputil.QueryDate(r, key)
		if err != nil {
			return criteria, err
		}
		if s != "" {
			*dst, _ = timerange.ParseDate(s, time.UTC)
		}
	}

	switch status := model.Source(strings.ToLower(strings.TrimSpace(q.Get("status")))); status {
	case "", "all":
	case model.SourcePending, model.SourceApproved:
		criteria.Status = status
	default:
		return criteria, apperrors.InvalidInput("invalid status parameter: " + string(status))
	}

	var err error
	if criteria.SeriesOnly, err = httputil.QueryBool(r, "seriesOnly"); err != nil {
		return criteria, err
	}
	if criteria.HasFiles, err = httputil.QueryBool(r, "hasFiles"); err != nil {
		return criteria, err
	}
	return criteria, nil
}

func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ev, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, ev); err != nil {
		h.cfg.Log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) Calendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	approved, err := h.service.ListApproved(r.Context())
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="aqevent.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(calendar.ExportICS(approved, h.cfg.Location(), h.now()))); err != nil {
		h.cfg.Log.Error("failed to write calendar response", "handler", "Calendar", "operation", "Write", "error", err)
	}
}

func (h *EventHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.cfg.Log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *EventHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/conflicts/check", h.CheckConflicts)
	router.POST("/api/v1/recurrence/preview", h.PreviewRecurrence)
	router.POST("/api/v1/submissions", h.Submit)
	router.GET("/api/v1/events/search", h.Search)
	router.GET("/api/v1/events/id/:id", h.GetByID)
	router.GET("/api/v1/calendar.ics", h.Calendar)
}
