package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hostelhub/hostel-api/internal/authstate"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/service"
)

const (
	oauthStateCookie        = "oauth_state"
	oauthNonceCookie        = "oauth_nonce"
	postLoginRedirectCookie = "post_login_redirect"
	oauthCookieMaxAge       = 600
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	SignUp(ctx context.Context, in domainauth.SignUpInput) (*domainauth.User, error)
	SignIn(ctx context.Context, email, password string) (*domainauth.Session, error)
	GetSession(ctx context.Context, token string) (*domainauth.Session, error)
	SignOut(ctx context.Context, token string) error
	SSOEnabled() bool
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, in service.CompleteLoginInput) (*domainauth.Session, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse never carries the token for cookie-authenticated callers of /auth/session.
type sessionResponse struct {
	Authenticated bool                `json:"authenticated"`
	User          *domainauth.User    `json:"user,omitempty"`
	Session       *domainauth.Session `json:"session,omitempty"`
}

// SignUp registers a new student account.
// POST /auth/signup.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var in domainauth.SignUpInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	user, err := h.Svc.SignUp(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// SignIn verifies email and password, sets the session cookie and returns the session with its token.
// POST /auth/signin.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	sess, err := h.Svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}
	h.setSessionCookie(w, r, *sess)
	user := sess.User()
	WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: &user, Session: sess})
}

// SignOut ends the server session when one is presented and always clears the cookie.
// POST /auth/signout.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	if token := credentialsFromRequest(r); token != "" {
		if err := h.Svc.SignOut(r.Context(), token); err != nil {
			h.logger().WarnContext(r.Context(), "sign-out failed", "error", err)
		}
	}
	h.clearCookie(w, r, sessionCookieName)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Session reports the current session.
// GET /auth/session.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	token := credentialsFromRequest(r)
	if token == "" {
		WriteJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	sess, err := h.Svc.GetSession(r.Context(), token)
	if err != nil {
		if !apperrors.IsUnauthorized(err) {
			writeServiceError(w, r, h.logger(), err)
			return
		}
		// Session is invalid or expired, clear the cookie
		h.clearCookie(w, r, sessionCookieName)
		WriteJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	out := *sess
	out.Token = ""
	user := out.User()
	WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: &user, Session: &out})
}

// LoginPage is where the page guard sends unauthenticated visitors. With single sign-on it
// starts the provider flow; otherwise it describes the password sign-in endpoint.
// GET /login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	if h.Svc.SSOEnabled() {
		http.Redirect(w, r, "/auth/login?redirect_uri="+url.QueryEscape(redirectURI), http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"sign_in":      "/auth/signin",
		"sign_up":      "/auth/signup",
		"redirect_uri": redirectURI,
	})
}

// Login handles the single sign-on initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = authstate.DefaultFallbackPath
	}
	redirectURI = safeRedirectPath(redirectURI)

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	sess, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}

	h.setSessionCookie(w, r, *sess)
	h.clearCookie(w, r, oauthStateCookie)
	h.clearCookie(w, r, oauthNonceCookie)

	http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// clearCookie expires a cookie, mirroring the attributes used when it was set.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in short-lived cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	for name, value := range map[string]string{
		oauthStateCookie:        p.State,
		oauthNonceCookie:        p.Nonce,
		postLoginRedirectCookie: p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecureRequest(r),
			SameSite: http.SameSiteLaxMode,
			MaxAge:   oauthCookieMaxAge,
		})
	}
}

// setSessionCookie stores the signed session token until the session expires.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.Token,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := authstate.DefaultFallbackPath
	if c, err := r.Cookie(postLoginRedirectCookie); err == nil {
		if c.Value != "" {
			redirectURI = safeRedirectPath(c.Value)
		}
		h.clearCookie(w, r, postLoginRedirectCookie)
	}
	return redirectURI
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}
