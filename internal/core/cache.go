// Package core holds repository ports and the small amount of orchestration that sits
// directly on top of them.
package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
)

// CacheRepository defines the interface for caching operations.
// The data layer provides a Redis implementation.
type CacheRepository interface {
	// Set stores a value with the given TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns nil when the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	Health(ctx context.Context) error
}

// CachedIdentityStoreOptions bundles dependencies for NewCachedIdentityStore.
type CachedIdentityStoreOptions struct {
	Cache  CacheRepository
	Store  IdentityRepository
	TTL    time.Duration
	Logger *slog.Logger
}

// CachedIdentityStore serves role assignments through a short-lived cache.
// Profiles are always read from the store.
type CachedIdentityStore struct {
	cache  CacheRepository
	store  IdentityRepository
	ttl    time.Duration
	logger *slog.Logger
}

// DefaultRoleCacheTTL bounds how long a revoked admin role may still be observed.
const DefaultRoleCacheTTL = 30 * time.Second

// NewCachedIdentityStore creates a CachedIdentityStore. A nil cache disables caching.
func NewCachedIdentityStore(opts CachedIdentityStoreOptions) *CachedIdentityStore {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultRoleCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedIdentityStore{
		cache:  opts.Cache,
		store:  opts.Store,
		ttl:    ttl,
		logger: logger.With("component", "role_cache"),
	}
}

// ListRoleAssignments returns cached assignments when present, otherwise reads and caches them.
// Cache failures degrade to a store read.
func (s *CachedIdentityStore) ListRoleAssignments(
	ctx context.Context,
	principalID string,
) ([]domainauth.RoleAssignment, error) {
	if s.cache == nil {
		return s.store.ListRoleAssignments(ctx, principalID)
	}

	key := rolesKey(principalID)
	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.logger.DebugContext(ctx, "role cache read failed", "error", err)
	} else if len(cached) > 0 {
		var out []domainauth.RoleAssignment
		if jerr := json.Unmarshal(cached, &out); jerr == nil {
			return out, nil
		}
	}

	roles, err := s.store.ListRoleAssignments(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []domainauth.RoleAssignment{}
	}
	if b, jerr := json.Marshal(roles); jerr == nil {
		if serr := s.cache.Set(ctx, key, b, s.ttl); serr != nil {
			s.logger.DebugContext(ctx, "role cache write failed", "error", serr)
		}
	}
	return roles, nil
}

// GetProfile reads the profile from the store.
func (s *CachedIdentityStore) GetProfile(ctx context.Context, principalID string) (*domainauth.Profile, error) {
	return s.store.GetProfile(ctx, principalID)
}

// UpdateProfile writes the profile through to the store.
func (s *CachedIdentityStore) UpdateProfile(
	ctx context.Context,
	principalID string,
	upd domainauth.ProfileUpdate,
) error {
	return s.store.UpdateProfile(ctx, principalID, upd)
}

// InvalidateRoles drops the cached assignments for principalID.
func (s *CachedIdentityStore) InvalidateRoles(ctx context.Context, principalID string) error {
	if s.cache == nil {
		return nil
	}
	_, err := s.cache.Delete(ctx, rolesKey(principalID))
	return err
}

// GrantRole grants role and invalidates the principal's cached assignments.
func (s *CachedIdentityStore) GrantRole(
	ctx context.Context,
	principalID string,
	role domainauth.Role,
) (*domainauth.RoleAssignment, error) {
	ra, err := s.store.GrantRole(ctx, principalID, role)
	if err != nil {
		return nil, err
	}
	return ra, s.InvalidateRoles(ctx, principalID)
}

// RevokeRole revokes role and invalidates the principal's cached assignments.
func (s *CachedIdentityStore) RevokeRole(ctx context.Context, principalID string, role domainauth.Role) (bool, error) {
	ok, err := s.store.RevokeRole(ctx, principalID, role)
	if err != nil {
		return false, err
	}
	return ok, s.InvalidateRoles(ctx, principalID)
}

func rolesKey(principalID string) string {
	return "roles:" + principalID
}
