package service

import (
	"context"
	"log/slog"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/ports"
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Store    ports.RoleProfileStore // Required
	Resolver *IdentityResolver      // Required
	Logger   *slog.Logger
}

// ProfileService exposes profiles and role assignments with self-or-admin access.
type ProfileService struct {
	store    ports.RoleProfileStore
	resolver *IdentityResolver
	logger   *slog.Logger
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	if opts.Store == nil || opts.Resolver == nil {
		panic("RoleProfileStore and IdentityResolver are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{
		store:    opts.Store,
		resolver: opts.Resolver,
		logger:   logger.With("component", "profile"),
	}
}

// Me describes the calling principal.
type Me struct {
	User    domainauth.User     `json:"user"`
	IsAdmin bool                `json:"is_admin"`
	Profile *domainauth.Profile `json:"profile"`
}

// Me resolves the caller. With fresh set, cached role assignments are bypassed.
func (s *ProfileService) Me(ctx context.Context, actor domainauth.Actor, fresh bool) (*Me, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var (
		res domainauth.Resolution
		err error
	)
	if fresh {
		res, err = s.resolver.Refresh(ctx, actor.UserID)
	} else {
		res, err = s.resolver.Resolve(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}
	return &Me{
		User:    domainauth.User{ID: actor.UserID, Email: actor.Email},
		IsAdmin: res.IsAdmin,
		Profile: res.Profile,
	}, nil
}

// Get returns the profile of principalID.
func (s *ProfileService) Get(ctx context.Context, actor domainauth.Actor, principalID string) (*domainauth.Profile, error) {
	if err := requireSelfOrAdmin(actor, principalID); err != nil {
		return nil, err
	}
	p, err := s.store.GetProfile(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("profile not found")
	}
	return p, nil
}

// Roles lists the role assignments of principalID.
func (s *ProfileService) Roles(
	ctx context.Context,
	actor domainauth.Actor,
	principalID string,
) ([]domainauth.RoleAssignment, error) {
	if err := requireSelfOrAdmin(actor, principalID); err != nil {
		return nil, err
	}
	roles, err := s.store.ListRoleAssignments(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []domainauth.RoleAssignment{}
	}
	return roles, nil
}

// Update applies upd to the profile of principalID and returns the stored result.
func (s *ProfileService) Update(
	ctx context.Context,
	actor domainauth.Actor,
	principalID string,
	upd domainauth.ProfileUpdate,
) (*domainauth.Profile, error) {
	if err := requireSelfOrAdmin(actor, principalID); err != nil {
		return nil, err
	}
	upd.Normalize()
	if upd.Empty() {
		return nil, apperrors.Validation("at least one field must be provided")
	}
	if err := upd.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := s.store.UpdateProfile(ctx, principalID, upd); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "profile updated", "principal_id", principalID, "actor_id", actor.UserID)
	return s.Get(ctx, actor, principalID)
}
