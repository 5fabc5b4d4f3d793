package httpx

import (
	"context"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
)

// sessionKey and actorKey are unexported context key types to avoid collisions across packages.
type (
	sessionKey struct{}
	actorKey   struct{}
)

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// SetActorInContext stores the resolved caller of the request.
func SetActorInContext(ctx context.Context, actor domainauth.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the resolved caller. The zero Actor means unauthenticated.
func ActorFromContext(ctx context.Context) domainauth.Actor {
	actor, _ := ctx.Value(actorKey{}).(domainauth.Actor)
	return actor
}
