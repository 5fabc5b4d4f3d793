package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandlers_SignIn(t *testing.T) {
	mockSvc := newMockAuthService()
	mockSvc.signInFunc = func(_ context.Context, email, password string) (*domainauth.Session, error) {
		if email != "asha@hostel.test" || password != "hunter22" {
			return nil, apperrors.Unauthorized("invalid login credentials")
		}
		return &domainauth.Session{
			ID: "s1", UserID: "stu-1", Email: email, Token: "signed-token", ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin",
			strings.NewReader(`{"email":"asha@hostel.test","password":"hunter22"}`))
		w := httptest.NewRecorder()
		handlers.SignIn(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body sessionResponse
		decodeBody(t, w, &body)
		assert.True(t, body.Authenticated)
		require.NotNil(t, body.Session)
		assert.Equal(t, "signed-token", body.Session.Token)
		assert.Equal(t, "stu-1", body.User.ID)

		resp := w.Result()
		defer resp.Body.Close()
		cookie := findCookie(resp, sessionCookieName)
		require.NotNil(t, cookie)
		assert.Equal(t, "signed-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Positive(t, cookie.MaxAge)
	})

	t.Run("bad credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin",
			strings.NewReader(`{"email":"asha@hostel.test","password":"nope"}`))
		w := httptest.NewRecorder()
		handlers.SignIn(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid login credentials")
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"email":"a","pwd":"b"}`))
		w := httptest.NewRecorder()
		handlers.SignIn(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_json")
	})
}

func TestAuthHandlers_SignUp(t *testing.T) {
	mockSvc := newMockAuthService()
	mockSvc.signUpFunc = func(_ context.Context, in domainauth.SignUpInput) (*domainauth.User, error) {
		switch in.Email {
		case "taken@hostel.test":
			return nil, apperrors.Conflict("an account with this email already exists")
		case "":
			return nil, apperrors.ValidationField("email", "email is required")
		}
		return &domainauth.User{ID: "u-9", Email: in.Email}, nil
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{name: "created", body: `{"email":"new@hostel.test","password":"secret1","full_name":"New"}`, status: http.StatusCreated},
		{name: "duplicate", body: `{"email":"taken@hostel.test","password":"secret1","full_name":"X"}`, status: http.StatusConflict},
		{name: "missing email", body: `{"password":"secret1","full_name":"X"}`, status: http.StatusBadRequest, field: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handlers.SignUp(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.field != "" {
				var body map[string]string
				decodeBody(t, w, &body)
				assert.Equal(t, tt.field, body["field"])
			}
		})
	}
}

func TestAuthHandlers_SignOut(t *testing.T) {
	mockSvc := newMockAuthService()
	mockSvc.addSession("tok-1", "stu-1", "asha@hostel.test")
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
	w := httptest.NewRecorder()
	handlers.SignOut(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"tok-1"}, mockSvc.signedOut)
	resp := w.Result()
	defer resp.Body.Close()
	cookie := findCookie(resp, sessionCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)

	// Without credentials the cookie is still cleared and nothing is revoked.
	w = httptest.NewRecorder()
	handlers.SignOut(w, httptest.NewRequest(http.MethodPost, "/auth/signout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, mockSvc.signedOut, 1)
}

func TestAuthHandlers_Session(t *testing.T) {
	mockSvc := newMockAuthService()
	mockSvc.addSession("tok-1", "stu-1", "asha@hostel.test")
	handlers := &AuthHandlers{Svc: mockSvc}

	t.Run("cookie session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok-1"})
		w := httptest.NewRecorder()
		handlers.Session(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body sessionResponse
		decodeBody(t, w, &body)
		assert.True(t, body.Authenticated)
		assert.Equal(t, "stu-1", body.User.ID)
		assert.Empty(t, body.Session.Token, "token is not echoed back")
	})

	t.Run("bearer session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.Header.Set("Authorization", "Bearer tok-1")
		w := httptest.NewRecorder()
		handlers.Session(w, req)
		assert.Contains(t, w.Body.String(), `"authenticated":true`)
	})

	t.Run("no credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		handlers.Session(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("expired session clears cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "stale"})
		w := httptest.NewRecorder()
		handlers.Session(w, req)

		assert.Contains(t, w.Body.String(), `"authenticated":false`)
		resp := w.Result()
		defer resp.Body.Close()
		require.NotNil(t, findCookie(resp, sessionCookieName))
	})

	t.Run("store failure is not reported as signed out", func(t *testing.T) {
		failing := newMockAuthService()
		failing.getSessionErr = apperrors.Internal("redis unavailable")
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req.Header.Set("Authorization", "Bearer tok-1")
		w := httptest.NewRecorder()
		(&AuthHandlers{Svc: failing}).Session(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "redis")
	})
}

func TestAuthHandlers_Login(t *testing.T) {
	mockSvc := newMockAuthService()
	mockSvc.sso = true
	var gotRedirect string
	mockSvc.beginLoginFunc = func(_ context.Context, redirectURL string) (*service.BeginLoginResult, error) {
		gotRedirect = redirectURL
		return &service.BeginLoginResult{AuthURL: "https://idp.example.com/auth", State: "st", Nonce: "nn"}, nil
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=https://evil.example.com", nil)
	w := httptest.NewRecorder()
	handlers.Login(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://idp.example.com/auth", w.Header().Get("Location"))
	assert.Equal(t, "/", gotRedirect, "absolute redirects are replaced")

	resp := w.Result()
	defer resp.Body.Close()
	assert.Len(t, resp.Cookies(), 3)
	assert.Equal(t, "st", findCookie(resp, oauthStateCookie).Value)
	assert.Equal(t, "nn", findCookie(resp, oauthNonceCookie).Value)
	assert.Equal(t, oauthCookieMaxAge, findCookie(resp, postLoginRedirectCookie).MaxAge)
}

func TestAuthHandlers_Callback(t *testing.T) {
	mockSvc := newMockAuthService()
	mockSvc.sso = true
	var got service.CompleteLoginInput
	mockSvc.completeLoginFunc = func(_ context.Context, in service.CompleteLoginInput) (*domainauth.Session, error) {
		got = in
		return &domainauth.Session{ID: "s", UserID: "u", Token: "sso-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c1&state=st", nil)
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st"})
		req.AddCookie(&http.Cookie{Name: oauthNonceCookie, Value: "nn"})
		req.AddCookie(&http.Cookie{Name: postLoginRedirectCookie, Value: "/admin-dashboard"})
		w := httptest.NewRecorder()
		handlers.Callback(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin-dashboard", w.Header().Get("Location"))
		assert.Equal(t, service.CompleteLoginInput{Code: "c1", State: "st", Nonce: "nn"}, got)
		resp := w.Result()
		defer resp.Body.Close()
		assert.Equal(t, "sso-token", findCookie(resp, sessionCookieName).Value)
	})

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c1&state=forged", nil)
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st"})
		w := httptest.NewRecorder()
		handlers.Callback(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_state")
	})

	t.Run("missing code", func(t *testing.T) {
		w := httptest.NewRecorder()
		handlers.Callback(w, httptest.NewRequest(http.MethodGet, "/auth/callback?state=st", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("exchange rejected", func(t *testing.T) {
		failing := newMockAuthService()
		failing.completeLoginFunc = func(context.Context, service.CompleteLoginInput) (*domainauth.Session, error) {
			return nil, apperrors.Unauthorized("single sign-on failed")
		}
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c1&state=st", nil)
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "st"})
		req.AddCookie(&http.Cookie{Name: oauthNonceCookie, Value: "nn"})
		w := httptest.NewRecorder()
		(&AuthHandlers{Svc: failing}).Callback(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandlers_LoginPage(t *testing.T) {
	t.Run("password sign-in", func(t *testing.T) {
		handlers := &AuthHandlers{Svc: newMockAuthService()}
		w := httptest.NewRecorder()
		handlers.LoginPage(w, httptest.NewRequest(http.MethodGet, "/login?redirect_uri=%2Fadmin-dashboard", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		decodeBody(t, w, &body)
		assert.Equal(t, "/auth/signin", body["sign_in"])
		assert.Equal(t, "/admin-dashboard", body["redirect_uri"])
	})

	t.Run("single sign-on", func(t *testing.T) {
		svc := newMockAuthService()
		svc.sso = true
		w := httptest.NewRecorder()
		(&AuthHandlers{Svc: svc}).LoginPage(w, httptest.NewRequest(http.MethodGet, "/login?redirect_uri=%2Fadmin-dashboard", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/auth/login?redirect_uri=%2Fadmin-dashboard", w.Header().Get("Location"))
	})
}

func TestSafeRedirectPath(t *testing.T) {
	tests := map[string]string{
		"":                         "/",
		"/student-dashboard":       "/student-dashboard",
		"/admin-dashboard?tab=1":   "/admin-dashboard?tab=1",
		"https://evil.example.com": "/",
		"//evil.example.com/path":  "/",
		"relative/path":            "/",
		"javascript:alert(1)":      "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirectPath(in), in)
	}
}
