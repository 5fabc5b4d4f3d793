package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/stretchr/testify/assert"
)

func guardedAdminPage(svc AuthServiceInterface, resolver PrincipalResolver, actor *domainauth.Actor) http.Handler {
	return PageGuard(PageGuardOptions{Auth: svc, Resolver: resolver, RequireAdmin: true})(captureActor(actor))
}

func TestPageGuard_Unauthenticated(t *testing.T) {
	var actor domainauth.Actor
	h := guardedAdminPage(newMockAuthService(), &stubResolver{}, &actor)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-dashboard?tab=leave", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fadmin-dashboard%3Ftab%3Dleave", w.Header().Get("Location"))
}

func TestPageGuard_Admin(t *testing.T) {
	svc := newMockAuthService()
	svc.addSession("tok-1", "warden-1", "warden@hostel.test")
	resolver := &stubResolver{admin: true}
	var actor domainauth.Actor

	req := httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
	w := httptest.NewRecorder()
	guardedAdminPage(svc, resolver, &actor).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, actor.IsAdmin)
	assert.Zero(t, resolver.refreshes, "no retry when already admin")
}

func TestPageGuard_RetrySucceedsAfterGrant(t *testing.T) {
	svc := newMockAuthService()
	svc.addSession("tok-1", "stu-1", "asha@hostel.test")
	resolver := &stubResolver{admin: false, refreshedAdmin: true}
	var actor domainauth.Actor

	req := httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	guardedAdminPage(svc, resolver, &actor).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, resolver.refreshes)
	assert.True(t, actor.IsAdmin)
}

func TestPageGuard_DeniedAfterOneRetry(t *testing.T) {
	tests := []struct {
		name     string
		resolver *stubResolver
	}{
		{name: "still not admin", resolver: &stubResolver{}},
		{name: "refresh fails", resolver: &stubResolver{refreshErr: errors.New("connection reset")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockAuthService()
			svc.addSession("tok-1", "stu-1", "asha@hostel.test")
			var actor domainauth.Actor

			req := httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil)
			req.Header.Set("Authorization", "Bearer tok-1")
			w := httptest.NewRecorder()
			guardedAdminPage(svc, tt.resolver, &actor).ServeHTTP(w, req)

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/student-dashboard", w.Header().Get("Location"))
			assert.Equal(t, 1, tt.resolver.refreshes, "exactly one retry")
		})
	}
}

func TestPageGuard_StudentPageAllowsAnySignedInPrincipal(t *testing.T) {
	svc := newMockAuthService()
	svc.addSession("tok-1", "stu-1", "asha@hostel.test")
	resolver := &stubResolver{}
	var actor domainauth.Actor
	h := PageGuard(PageGuardOptions{Auth: svc, Resolver: resolver})(captureActor(&actor))

	req := httptest.NewRequest(http.MethodGet, "/student-dashboard", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "stu-1", actor.UserID)
	assert.Zero(t, resolver.refreshes)
}

func TestPageGuard_CanceledRequest(t *testing.T) {
	svc := newMockAuthService()
	svc.addSession("tok-1", "stu-1", "asha@hostel.test")
	var actor domainauth.Actor

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	guardedAdminPage(svc, &stubResolver{}, &actor).ServeHTTP(w, req)

	assert.Equal(t, statusClientClosedRequest, w.Code)
	assert.Empty(t, actor.UserID)
}
