package client

import (
	"context"
	"net/http"
	"strings"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/ports"
)

var _ ports.SessionStore = (*Client)(nil)

type sessionPayload struct {
	Authenticated bool                `json:"authenticated"`
	User          *domainauth.User    `json:"user,omitempty"`
	Session       *domainauth.Session `json:"session,omitempty"`
}

// GetCurrentSession asks the server who the presented token belongs to. It returns nil when
// nobody is signed in. A token the server no longer accepts is dropped and, if a session was
// known, a signed-out notification is emitted.
func (c *Client) GetCurrentSession(ctx context.Context) (*domainauth.Session, error) {
	if c.Token() == "" {
		return nil, nil
	}
	var out sessionPayload
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/session"}, &out); err != nil {
		return nil, err
	}
	if !out.Authenticated || out.Session == nil {
		if c.forget() {
			c.emit(domainauth.SessionEvent{Kind: domainauth.SessionSignedOut})
		}
		return nil, nil
	}

	sess := *out.Session
	c.mu.Lock()
	sess.Token = c.token
	c.current = &sess
	c.mu.Unlock()
	cp := sess
	return &cp, nil
}

// OnSessionChange registers fn and returns a function that removes it. Notifications are
// delivered on the goroutine that caused the change.
func (c *Client) OnSessionChange(fn func(domainauth.SessionEvent)) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// SignUp registers a student account. It does not sign in.
func (c *Client) SignUp(ctx context.Context, in domainauth.SignUpInput) error {
	in.Email = strings.TrimSpace(in.Email)
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/signup", body: in}, nil)
	return err
}

// SignInWithPassword exchanges credentials for a session and adopts its token.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domainauth.Session, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	var out sessionPayload
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/signin", body: body}, &out); err != nil {
		return nil, err
	}
	if out.Session == nil || out.Session.Token == "" {
		return nil, apperrors.Internal("sign-in response carried no session")
	}

	sess := *out.Session
	c.mu.Lock()
	c.token = sess.Token
	c.current = &sess
	c.mu.Unlock()
	c.logger.DebugContext(ctx, "signed in", "principal_id", sess.UserID)

	cp := sess
	c.emit(domainauth.SessionEvent{Kind: domainauth.SessionSignedIn, Session: &cp})
	ret := sess
	return &ret, nil
}

// SignOut ends the server session. Local credentials are dropped and the signed-out
// notification is emitted even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	var err error
	if c.Token() != "" {
		_, err = c.do(ctx, request{method: http.MethodPost, path: "/auth/signout"}, nil)
	}
	c.forget()
	c.emit(domainauth.SessionEvent{Kind: domainauth.SessionSignedOut})
	if err != nil && !apperrors.IsUnauthorized(err) {
		return err
	}
	return nil
}

// forget drops local credentials and reports whether a session had been known.
func (c *Client) forget() bool {
	c.mu.Lock()
	had := c.current != nil
	c.token = ""
	c.current = nil
	c.mu.Unlock()
	c.jar.reset()
	return had
}

func (c *Client) emit(ev domainauth.SessionEvent) {
	c.subMu.Lock()
	fns := make([]func(domainauth.SessionEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
