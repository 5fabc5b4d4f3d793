package httpx

import (
	"log/slog"
	"net/http"

	"github.com/hostelhub/hostel-api/internal/authstate"
	"github.com/hostelhub/hostel-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth       AuthServiceInterface
	Resolver   PrincipalResolver
	Profiles   *service.ProfileService
	Complaints *service.ComplaintService
	Leave      *service.LeaveService
	Notices    *service.NoticeService
	Modules    *service.ModuleService
	Dashboards *service.DashboardService
	// Readiness checks served at /readyz, keyed by dependency name (optional).
	Readiness    map[string]ReadinessCheck
	CookieDomain string
	Logger       *slog.Logger
}

type middleware func(http.Handler) http.Handler

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	if services.Auth == nil || services.Resolver == nil {
		panic("Auth and Resolver are required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	authed := RequireAuth(services.Auth, services.Resolver)
	admin := func(h http.Handler) http.Handler { return authed(RequireAdmin()(h)) }

	registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: logger})
	if services.Profiles != nil {
		registerProfileRoutes(mux, &ProfileHandlers{Svc: services.Profiles, Logger: logger}, authed)
	}
	if services.Complaints != nil {
		registerComplaintRoutes(mux, &ComplaintHandlers{Svc: services.Complaints, Logger: logger}, authed, admin)
	}
	if services.Leave != nil {
		registerLeaveRoutes(mux, &LeaveHandlers{Svc: services.Leave, Logger: logger}, authed, admin)
	}
	if services.Notices != nil {
		registerNoticeRoutes(mux, &NoticeHandlers{Svc: services.Notices, Logger: logger}, authed, admin)
	}
	if services.Modules != nil {
		registerModuleRoutes(mux, &ModuleHandlers{Svc: services.Modules, Logger: logger}, authed, admin)
	}
	if services.Dashboards != nil {
		registerDashboardRoutes(mux, &DashboardHandlers{Svc: services.Dashboards, Logger: logger}, services, logger)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	if len(services.Readiness) > 0 {
		mux.Handle("GET /readyz", readyHandler(services.Readiness))
	}
	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /auth/signup", h.SignUp)
	mux.HandleFunc("POST /auth/signin", h.SignIn)
	mux.HandleFunc("POST /auth/signout", h.SignOut)
	mux.HandleFunc("GET /auth/session", h.Session)
	mux.HandleFunc("GET "+authstate.DefaultLoginPath, h.LoginPage)
	if h.Svc.SSOEnabled() {
		mux.HandleFunc("GET /auth/login", h.Login)
		mux.HandleFunc("GET /auth/callback", h.Callback)
	}
}

func registerProfileRoutes(mux *http.ServeMux, h *ProfileHandlers, authed middleware) {
	mux.Handle("GET /api/me", authed(http.HandlerFunc(h.Me)))
	mux.Handle("GET /api/users/{id}/roles", authed(http.HandlerFunc(h.Roles)))
	mux.Handle("GET /api/users/{id}/profile", authed(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/users/{id}/profile", authed(http.HandlerFunc(h.Update)))
}

func registerComplaintRoutes(mux *http.ServeMux, h *ComplaintHandlers, authed, admin middleware) {
	mux.Handle("POST /api/complaints", authed(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/complaints", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/complaints/stats", authed(http.HandlerFunc(h.Stats)))
	mux.Handle("GET /api/complaints/{id}", authed(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/complaints/{id}/photo", authed(http.HandlerFunc(h.UploadPhoto)))
	mux.Handle("PATCH /api/complaints/{id}/status", admin(http.HandlerFunc(h.UpdateStatus)))
}

func registerLeaveRoutes(mux *http.ServeMux, h *LeaveHandlers, authed, admin middleware) {
	mux.Handle("POST /api/leave", authed(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/leave", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/leave/stats", authed(http.HandlerFunc(h.Stats)))
	mux.Handle("GET /api/leave/{id}", authed(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/leave/{id}/status", admin(http.HandlerFunc(h.UpdateStatus)))
}

func registerNoticeRoutes(mux *http.ServeMux, h *NoticeHandlers, authed, admin middleware) {
	mux.Handle("GET /api/notices", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/notices/{id}", authed(http.HandlerFunc(h.Get)))
	mux.Handle("POST /api/notices", admin(http.HandlerFunc(h.Create)))
	mux.Handle("PATCH /api/notices/{id}", admin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/notices/{id}", admin(http.HandlerFunc(h.Delete)))
}

func registerModuleRoutes(mux *http.ServeMux, h *ModuleHandlers, authed, admin middleware) {
	mux.Handle("GET /api/modules", authed(http.HandlerFunc(h.All)))
	mux.Handle("PUT /api/modules/mess-menu", admin(h.SaveMessMenu()))
	mux.Handle("PUT /api/modules/contacts", admin(h.SaveContacts()))
	mux.Handle("PUT /api/modules/rules", admin(h.SaveRules()))
	mux.Handle("PUT /api/modules/links", admin(h.SaveLinks()))
	mux.Handle("PUT /api/modules/events", admin(h.SaveEvents()))
}

func registerDashboardRoutes(mux *http.ServeMux, h *DashboardHandlers, services RouterServices, logger *slog.Logger) {
	student := PageGuard(PageGuardOptions{Auth: services.Auth, Resolver: services.Resolver, Logger: logger})
	adminOnly := PageGuard(PageGuardOptions{
		Auth:         services.Auth,
		Resolver:     services.Resolver,
		RequireAdmin: true,
		Logger:       logger,
	})
	mux.Handle("GET /student-dashboard", student(http.HandlerFunc(h.Student)))
	mux.Handle("GET /admin-dashboard", adminOnly(http.HandlerFunc(h.Admin)))
}
