package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"aqevent/internal/events/service"
	"aqevent/internal/integrity"
	httputil "aqevent/pkg/http"
	"aqevent/pkg/logger"
	"aqevent/pkg/middleware"
)

type RejectRequest struct {
	Reason string `json:"reason"`
}

type BatchRequest struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason,omitempty"`
}

// AdminHandler serves the review surface. Every route requires the admin
// bearer token.
type AdminHandler struct {
	service   service.EventService
	integrity *integrity.Checker
	auth      func(http.Handler) http.Handler
	log       *logger.Logger
}

func NewAdminHandler(service service.EventService, checker *integrity.Checker, adminToken string, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		service:   service,
		integrity: checker,
		auth:      middleware.AdminAuth(adminToken, log),
		log:       log,
	}
}

func (h *AdminHandler) ListPending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	events, err := h.service.ListPending(r.Context())
	if err != nil {
		h.writeError(w, "ListPending", err)
		return
	}

	if err := httputil.WriteList(w, events, len(events)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListPending", "operation", "WriteList", "error", err)
	}
}

func (h *AdminHandler) ListApproved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	events, err := h.service.ListApproved(r.Context())
	if err != nil {
		h.writeError(w, "ListApproved", err)
		return
	}

	if err := httputil.WriteList(w, events, len(events)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListApproved", "operation", "WriteList", "error", err)
	}
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ev, err := h.service.Approve(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	if err := httputil.WriteSuccess(w, ev); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req RejectRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			h.writeError(w, "Reject", err)
			return
		}
	}

	ev, err := h.service.Reject(r.Context(), ps.ByName("id"), req.Reason)
	if err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	if err := httputil.WriteSuccess(w, ev); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) BatchApprove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "BatchApprove", err)
		return
	}

	result, err := h.service.BatchApprove(r.Context(), req.IDs, h.progress("BatchApprove"))
	if err != nil {
		h.writeError(w, "BatchApprove", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "BatchApprove", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) BatchReject(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "BatchReject", err)
		return
	}

	result, err := h.service.BatchReject(r.Context(), req.IDs, req.Reason, h.progress("BatchReject"))
	if err != nil {
		h.writeError(w, "BatchReject", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "BatchReject", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) CheckPending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.CheckPending(r.Context())
	if err != nil {
		h.writeError(w, "CheckPending", err)
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckPending", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) Statistics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		h.writeError(w, "Statistics", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Statistics", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) Integrity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.integrity.Check(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "Integrity", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) Repair(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.integrity.Repair(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "Repair", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report := h.integrity.Health(r.Context())
	status := http.StatusOK
	if report.Status == integrity.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	if err := httputil.WriteJSON(w, status, httputil.SuccessResponse{Data: report}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *AdminHandler) progress(handler string) service.ProgressFunc {
	return func(current, total int, message string) {
		h.log.Debug("Batch progress", "handler", handler, "current", current, "total", total, "message", message)
	}
}

func (h *AdminHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// guard runs next behind the admin token check.
func (h *AdminHandler) guard(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		h.auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next(w, r, ps)
		})).ServeHTTP(w, r)
	}
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/events/pending", h.guard(h.ListPending))
	router.GET("/api/v1/admin/events/approved", h.guard(h.ListApproved))
	router.POST("/api/v1/admin/events/id/:id/approve", h.guard(h.Approve))
	router.POST("/api/v1/admin/events/id/:id/reject", h.guard(h.Reject))
	router.POST("/api/v1/admin/events/batch/approve", h.guard(h.BatchApprove))
	router.POST("/api/v1/admin/events/batch/reject", h.guard(h.BatchReject))
	router.GET("/api/v1/admin/conflicts/pending", h.guard(h.CheckPending))
	router.GET("/api/v1/admin/integrity", h.guard(h.Integrity))
	router.POST("/api/v1/admin/integrity/repair", h.guard(h.Repair))
	router.GET("/api/v1/admin/statistics", h.guard(h.Statistics))
	router.GET("/api/v1/admin/health", h.guard(h.Health))
}
