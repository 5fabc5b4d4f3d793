package httpx

import (
	"log/slog"
	"net/http"

	"github.com/hostelhub/hostel-api/internal/domain/model"
	"github.com/hostelhub/hostel-api/internal/service"
)

// NoticeHandlers provides HTTP handlers for the notice board.
type NoticeHandlers struct {
	Svc    *service.NoticeService
	Logger *slog.Logger
}

// List handles GET /api/notices?limit=&offset=.
func (h *NoticeHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	items, err := h.Svc.List(r.Context(), ActorFromContext(r.Context()), limit, offset)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"notices": items,
		"limit":   limit,
		"offset":  offset,
	})
}

// Get handles GET /api/notices/{id}.
func (h *NoticeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.Get(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, n)
}

// Create handles POST /api/notices.
func (h *NoticeHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateNoticeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	n, err := h.Svc.Create(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, n)
}

// Update handles PATCH /api/notices/{id}.
func (h *NoticeHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateNoticeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	n, err := h.Svc.Update(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, n)
}

// Delete handles DELETE /api/notices/{id}.
func (h *NoticeHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), ActorFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
