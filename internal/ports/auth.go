package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/client; orchestration in
// internal/service and internal/authstate.

import (
	"context"
	"errors"
	"io"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an SSO flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ErrSessionNotFound is returned by SessionRepository.Get for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists server-side sessions keyed by session id.
type SessionRepository interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps IdP groups to the initial role of an SSO-provisioned principal.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// SessionStore is the client-side source of truth for "who is signed in".
type SessionStore interface {
	GetCurrentSession(ctx context.Context) (*domainauth.Session, error)
	// OnSessionChange registers fn for session-change notifications and returns a function that removes it.
	OnSessionChange(fn func(domainauth.SessionEvent)) (unsubscribe func())
	SignUp(ctx context.Context, in domainauth.SignUpInput) error
	SignInWithPassword(ctx context.Context, email, password string) (*domainauth.Session, error)
	SignOut(ctx context.Context) error
}

// RoleProfileStore reads role assignments and profiles and writes profile updates.
type RoleProfileStore interface {
	ListRoleAssignments(ctx context.Context, principalID string) ([]domainauth.RoleAssignment, error)
	// GetProfile returns (nil, nil) when the principal has no profile.
	GetProfile(ctx context.Context, principalID string) (*domainauth.Profile, error)
	UpdateProfile(ctx context.Context, principalID string, upd domainauth.ProfileUpdate) error
}

// RoleCacheInvalidator is implemented by stores that cache role assignments.
type RoleCacheInvalidator interface {
	InvalidateRoles(ctx context.Context, principalID string) error
}

// IdentityResolver derives privilege and profile for a principal.
type IdentityResolver interface {
	Resolve(ctx context.Context, principalID string) (domainauth.Resolution, error)
}

// ObjectStore uploads binary objects (complaint photos) and returns a public URL.
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error)
}
