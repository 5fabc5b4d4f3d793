package authstate

import (
	"context"
	"net/url"
	"strings"
)

// GuardState is a Route Guard state.
type GuardState string

const (
	GuardChecking           GuardState = "checking"
	GuardUnauthenticated    GuardState = "unauthenticated"
	GuardAllowed            GuardState = "authenticated-allowed"
	GuardDeniedPendingRetry GuardState = "authenticated-denied-pending-retry"
	GuardDeniedFinal        GuardState = "authenticated-denied-final"
)

// Terminal reports whether the guard has reached a decision that needs no further input.
func (s GuardState) Terminal() bool {
	return s == GuardUnauthenticated || s == GuardAllowed || s == GuardDeniedFinal
}

const (
	DefaultLoginPath       = "/login"
	DefaultFallbackPath    = "/student-dashboard"
	redirectQueryParameter = "redirect_uri"
)

// Decision is the outcome of observing a state snapshot.
type Decision struct {
	State GuardState
	// Redirect is set for unauthenticated and denied-final decisions.
	Redirect string
	// Refresh asks the driver to re-resolve the principal once before deciding again.
	Refresh bool
}

// StateSource is what the guard needs from an auth context.
type StateSource interface {
	WaitSettled(ctx context.Context) (State, error)
	RefreshUserData(ctx context.Context) error
}

// GuardOptions configures a Guard.
type GuardOptions struct {
	RequireAdmin bool
	// RequestedPath is preserved in the login redirect for post-login navigation.
	RequestedPath string
	LoginPath     string
	FallbackPath  string
}

// Guard gates one navigation into a protected view. Use a new Guard per navigation;
// it retries admin resolution at most once over its lifetime.
type Guard struct {
	opts    GuardOptions
	state   GuardState
	retried bool
}

// NewGuard creates a Guard in the checking state.
func NewGuard(opts GuardOptions) *Guard {
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}
	if opts.FallbackPath == "" {
		opts.FallbackPath = DefaultFallbackPath
	}
	return &Guard{opts: opts, state: GuardChecking}
}

// State returns the current guard state.
func (g *Guard) State() GuardState { return g.state }

// Observe advances the guard with a snapshot. Loading snapshots leave the state unchanged.
func (g *Guard) Observe(s State) Decision {
	switch {
	case s.User == nil && !s.IsLoading:
		g.state = GuardUnauthenticated
		return Decision{State: g.state, Redirect: LoginRedirect(g.opts.LoginPath, g.opts.RequestedPath)}
	case s.IsLoading:
		return Decision{State: g.state}
	case !g.opts.RequireAdmin || s.IsAdmin:
		g.state = GuardAllowed
		return Decision{State: g.state}
	case !g.retried:
		g.retried = true
		g.state = GuardDeniedPendingRetry
		return Decision{State: g.state, Refresh: true}
	default:
		return g.deny()
	}
}

func (g *Guard) deny() Decision {
	g.state = GuardDeniedFinal
	return Decision{State: g.state, Redirect: g.opts.FallbackPath}
}

// Run waits for src to settle, performs at most one refresh, and returns the final decision.
// A failed refresh is treated as still not admin.
func (g *Guard) Run(ctx context.Context, src StateSource) (Decision, error) {
	for {
		st, err := src.WaitSettled(ctx)
		if err != nil {
			return Decision{State: g.state}, err
		}
		d := g.Observe(st)
		if !d.Refresh {
			return d, nil
		}
		if err := src.RefreshUserData(ctx); err != nil {
			if ctx.Err() != nil {
				return Decision{State: g.state}, ctx.Err()
			}
			return g.deny(), nil
		}
	}
}

// LoginRedirect builds the login destination carrying the originally requested location.
// Only site-relative locations are preserved.
func LoginRedirect(loginPath, requested string) string {
	if requested == "" || !strings.HasPrefix(requested, "/") || strings.HasPrefix(requested, "//") {
		return loginPath
	}
	return loginPath + "?" + redirectQueryParameter + "=" + url.QueryEscape(requested)
}
