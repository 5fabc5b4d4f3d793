package httpx

import (
	"log/slog"
	"net/http"

	"github.com/hostelhub/hostel-api/internal/domain/model"
	"github.com/hostelhub/hostel-api/internal/service"
)

// LeaveHandlers provides HTTP handlers for leave applications.
type LeaveHandlers struct {
	Svc    *service.LeaveService
	Logger *slog.Logger
}

// Create handles POST /api/leave.
func (h *LeaveHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLeaveRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	app, err := h.Svc.Submit(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, app)
}

// List handles GET /api/leave?status=&limit=&offset=.
func (h *LeaveHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.LeaveListOptions{Limit: limit, Offset: offset}
	if raw := queryPtr(r, "status"); raw != nil {
		st, ok := model.ParseLeaveStatus(*raw)
		if !ok {
			st = model.LeaveStatus(*raw)
		}
		opts.Status = &st
	}

	items, err := h.Svc.List(r.Context(), ActorFromContext(r.Context()), opts)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"applications": items,
		"limit":        limit,
		"offset":       offset,
	})
}

// Get handles GET /api/leave/{id}.
func (h *LeaveHandlers) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.Svc.Get(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// UpdateStatus handles PATCH /api/leave/{id}/status.
func (h *LeaveHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	app, err := h.Svc.UpdateStatus(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// Stats handles GET /api/leave/stats.
func (h *LeaveHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
