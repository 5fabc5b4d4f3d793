package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hostelhub/hostel-api/internal/authstate"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
)

// PageGuardOptions configures PageGuard.
type PageGuardOptions struct {
	Auth         AuthServiceInterface
	Resolver     PrincipalResolver
	RequireAdmin bool
	LoginPath    string
	FallbackPath string
	Logger       *slog.Logger
}

// PageGuard gates a page with an authstate.Guard driven by the request's credentials.
// Unauthenticated visitors are sent to the login page with the requested location preserved;
// principals denied after one refreshed resolution are sent to the fallback page.
func PageGuard(opts PageGuardOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			src := &requestStateSource{
				session:  getSessionFromRequest(r, opts.Auth),
				resolver: opts.Resolver,
			}
			guard := authstate.NewGuard(authstate.GuardOptions{
				RequireAdmin:  opts.RequireAdmin,
				RequestedPath: r.URL.RequestURI(),
				LoginPath:     opts.LoginPath,
				FallbackPath:  opts.FallbackPath,
			})

			d, err := guard.Run(r.Context(), src)
			if err != nil {
				writeServiceError(w, r, logger, err)
				return
			}
			if d.State != authstate.GuardAllowed {
				if d.State == authstate.GuardDeniedFinal {
					logger.InfoContext(r.Context(), "page access denied",
						"path", r.URL.Path, "principal_id", src.session.UserID)
				}
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}

			ctx := SetSessionInContext(r.Context(), src.session)
			ctx = SetActorInContext(ctx, domainauth.Actor{
				UserID:  src.session.UserID,
				Email:   src.session.Email,
				IsAdmin: src.res.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestStateSource presents one request's session as a settled auth state.
// Resolution happens lazily on the first WaitSettled; RefreshUserData bypasses cached roles.
type requestStateSource struct {
	session  *domainauth.Session
	resolver PrincipalResolver
	resolved bool
	res      domainauth.Resolution
}

func (s *requestStateSource) WaitSettled(ctx context.Context) (authstate.State, error) {
	if err := ctx.Err(); err != nil {
		return authstate.State{}, err
	}
	if s.session == nil {
		return authstate.State{}, nil
	}
	if !s.resolved {
		// Resolve fails closed; the zero resolution is the right state on error.
		s.res, _ = s.resolver.Resolve(ctx, s.session.UserID)
		s.resolved = true
	}
	user := s.session.User()
	return authstate.State{User: &user, Session: s.session, IsAdmin: s.res.IsAdmin, Profile: s.res.Profile}, nil
}

func (s *requestStateSource) RefreshUserData(ctx context.Context) error {
	if s.session == nil {
		return errors.New("no session")
	}
	res, err := s.resolver.Refresh(ctx, s.session.UserID)
	s.res, s.resolved = res, true
	return err
}
