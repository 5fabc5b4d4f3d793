package auth

// Package auth contains domain-level types for principals, sessions, roles and profiles.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role is a capability tier granted to a principal through a role assignment.
// Keep string form for easy persistence.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent:
		return true
	default:
		return false
	}
}

// ParseRole normalizes value and reports whether it names a known role.
func ParseRole(value string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(value)))
	if r.Valid() {
		return r, true
	}
	return "", false
}

// Identity represents the authenticated principal returned by an external IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (e.g., samAccountName or sub)
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// FullName joins the identity's given and family names.
func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// User is a principal: a stable identifier plus contact email.
type User struct {
	ID    string `json:"id"    db:"id"`
	Email string `json:"email" db:"email"`
}

// Session is the time-bounded proof of authentication issued after sign-in.
// Token is the opaque bearer credential handed to clients; it is never persisted.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"access_token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// User returns the principal the session belongs to.
func (s Session) User() User {
	return User{ID: s.UserID, Email: s.Email}
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// RoleAssignment maps a principal to a role. A principal may hold several.
type RoleAssignment struct {
	ID        string    `json:"id"         db:"id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Role      Role      `json:"role"       db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasAdmin reports whether any assignment grants the admin role.
func HasAdmin(assignments []RoleAssignment) bool {
	for _, a := range assignments {
		if a.Role == RoleAdmin {
			return true
		}
	}
	return false
}

// Profile is the mutable descriptive record of a principal.
type Profile struct {
	ID         string    `json:"id"                    db:"id"`
	FullName   string    `json:"full_name"             db:"full_name"`
	RoomNumber *string   `json:"room_number,omitempty" db:"room_number"`
	Phone      *string   `json:"phone,omitempty"       db:"phone"`
	RollNumber *string   `json:"roll_number,omitempty" db:"roll_number"`
	CreatedAt  time.Time `json:"created_at"            db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"            db:"updated_at"`
}

// Resolution is the outcome of resolving a principal's privileges and profile.
// The zero value is the fail-closed outcome.
type Resolution struct {
	IsAdmin bool     `json:"is_admin"`
	Profile *Profile `json:"profile"`
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// SignUpInput carries the attributes collected at registration.
type SignUpInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	RoomNumber string `json:"room_number,omitempty"`
}

// SessionEventKind names a session-change notification.
type SessionEventKind string

const (
	SessionInitial   SessionEventKind = "initial_session"
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
	SessionRefreshed SessionEventKind = "token_refreshed"
	SessionUpdated   SessionEventKind = "user_updated"
)

// SessionEvent is emitted by a session store when the current session changes.
// Session is nil when no session is present after the change.
type SessionEvent struct {
	Kind    SessionEventKind
	Session *Session
}
