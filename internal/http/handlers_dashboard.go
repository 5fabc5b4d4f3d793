package httpx

import (
	"log/slog"
	"net/http"

	"github.com/hostelhub/hostel-api/internal/service"
)

// DashboardHandlers serves the page-guarded dashboards.
type DashboardHandlers struct {
	Svc    *service.DashboardService
	Logger *slog.Logger
}

// Student handles GET /student-dashboard.
func (h *DashboardHandlers) Student(w http.ResponseWriter, r *http.Request) {
	d, err := h.Svc.Student(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

// Admin handles GET /admin-dashboard.
func (h *DashboardHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	d, err := h.Svc.Admin(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}
