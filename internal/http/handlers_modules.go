package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	"github.com/hostelhub/hostel-api/internal/service"
)

// ModuleHandlers serves the dashboard modules.
type ModuleHandlers struct {
	Svc    *service.ModuleService
	Logger *slog.Logger
}

// All handles GET /api/modules.
func (h *ModuleHandlers) All(w http.ResponseWriter, r *http.Request) {
	mods, err := h.Svc.All(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, mods)
}

// saveModule decodes a JSON array body and hands it to save. Responds 204 on success.
func saveModule[T any](
	h *ModuleHandlers,
	save func(context.Context, domainauth.Actor, []T) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var items []T
		if !DecodeJSON(w, r, &items) {
			return
		}
		if err := save(r.Context(), ActorFromContext(r.Context()), items); err != nil {
			writeServiceError(w, r, h.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SaveMessMenu handles PUT /api/modules/mess-menu.
func (h *ModuleHandlers) SaveMessMenu() http.HandlerFunc {
	return saveModule[model.MessMenuDay](h, h.Svc.SaveMessMenu)
}

// SaveContacts handles PUT /api/modules/contacts.
func (h *ModuleHandlers) SaveContacts() http.HandlerFunc {
	return saveModule[model.EmergencyContact](h, h.Svc.SaveContacts)
}

// SaveRules handles PUT /api/modules/rules.
func (h *ModuleHandlers) SaveRules() http.HandlerFunc {
	return saveModule[model.HostelRule](h, h.Svc.SaveRules)
}

// SaveLinks handles PUT /api/modules/links.
func (h *ModuleHandlers) SaveLinks() http.HandlerFunc {
	return saveModule[model.QuickLink](h, h.Svc.SaveLinks)
}

// SaveEvents handles PUT /api/modules/events.
func (h *ModuleHandlers) SaveEvents() http.HandlerFunc {
	return saveModule[model.HostelEvent](h, h.Svc.SaveEvents)
}
