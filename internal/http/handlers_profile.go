package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/service"
)

// ProfileHandlers serves the caller's identity, role assignments and profiles.
type ProfileHandlers struct {
	Svc    *service.ProfileService
	Logger *slog.Logger
}

// Me returns the caller with resolved privilege and profile.
// GET /api/me?fresh=true bypasses cached role assignments.
func (h *ProfileHandlers) Me(w http.ResponseWriter, r *http.Request) {
	fresh, _ := strconv.ParseBool(r.URL.Query().Get("fresh"))
	me, err := h.Svc.Me(r.Context(), ActorFromContext(r.Context()), fresh)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, me)
}

// Roles lists the role assignments of a principal.
// GET /api/users/{id}/roles.
func (h *ProfileHandlers) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Svc.Roles(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

// Get returns a principal's profile.
// GET /api/users/{id}/profile.
func (h *ProfileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Svc.Get(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Update changes a principal's profile fields.
// PUT /api/users/{id}/profile.
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var upd domainauth.ProfileUpdate
	if !DecodeJSON(w, r, &upd) {
		return
	}
	profile, err := h.Svc.Update(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"), upd)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}
