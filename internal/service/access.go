package service

import (
	"strings"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
)

var (
	errNoActor       = apperrors.Unauthorized("authentication required")
	errAdminRequired = apperrors.Forbidden("admin role required")
)

func requireActor(actor domainauth.Actor) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return errNoActor
	}
	return nil
}

func requireAdmin(actor domainauth.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin {
		return errAdminRequired
	}
	return nil
}

// requireSelfOrAdmin allows the owner of a record and administrators.
func requireSelfOrAdmin(actor domainauth.Actor, ownerID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsAdmin || actor.UserID == ownerID {
		return nil
	}
	return apperrors.Forbidden("not allowed to access another student's records")
}

// ownedBy returns the owner filter for listings: nil for admins, the actor otherwise.
func ownedBy(actor domainauth.Actor) *string {
	if actor.IsAdmin {
		return nil
	}
	id := actor.UserID
	return &id
}

// displayName picks the name stamped on student submissions.
func displayName(actor domainauth.Actor, profile *domainauth.Profile) string {
	if profile != nil && strings.TrimSpace(profile.FullName) != "" {
		return profile.FullName
	}
	if actor.Email != "" {
		return actor.Email
	}
	return actor.UserID
}
