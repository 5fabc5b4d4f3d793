package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/observability/metrics"
	"github.com/hostelhub/hostel-api/internal/observability/statsd"
	"github.com/hostelhub/hostel-api/internal/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultResolveTimeout bounds a single identity resolution.
const DefaultResolveTimeout = 10 * time.Second

// IdentityResolverOptions groups dependencies for IdentityResolver.
type IdentityResolverOptions struct {
	Store   ports.RoleProfileStore
	Logger  *slog.Logger
	Timeout time.Duration
	Metrics statsd.Sink
}

// IdentityResolver derives the admin flag and profile of a principal from its role
// assignments and profile row. It fails closed: any read error yields the zero Resolution.
type IdentityResolver struct {
	store   ports.RoleProfileStore
	logger  *slog.Logger
	timeout time.Duration
	metrics statsd.Sink
}

var _ ports.IdentityResolver = (*IdentityResolver)(nil)

// NewIdentityResolver constructs a new IdentityResolver.
func NewIdentityResolver(opts IdentityResolverOptions) *IdentityResolver {
	if opts.Store == nil {
		panic("RoleProfileStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &IdentityResolver{
		store:   opts.Store,
		logger:  logger.With("component", "identity_resolver"),
		timeout: timeout,
		metrics: opts.Metrics,
	}
}

// Resolve reads role assignments and the profile concurrently and waits for both.
// On failure the returned Resolution is the zero value and the error is returned for the caller to log or ignore.
func (r *IdentityResolver) Resolve(ctx context.Context, principalID string) (domainauth.Resolution, error) {
	return r.resolve(ctx, principalID, false)
}

func (r *IdentityResolver) resolve(ctx context.Context, principalID string, fresh bool) (domainauth.Resolution, error) {
	if strings.TrimSpace(principalID) == "" {
		return domainauth.Resolution{}, apperrors.ValidationField("principal_id", "principal id is required")
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		roles   []domainauth.RoleAssignment
		profile *domainauth.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = r.store.ListRoleAssignments(gctx, principalID)
		if err != nil {
			return fmt.Errorf("list role assignments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profile, err = r.store.GetProfile(gctx, principalID)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		r.logger.WarnContext(ctx, "identity resolution failed, treating principal as unprivileged",
			"principal_id", principalID,
			"error_code", apperrors.GetCode(err),
			"error", err)
		metrics.EmitResolution(r.metrics, metrics.Resolution{
			Result: metrics.ResultError, Fresh: fresh, Duration: time.Since(start), Err: err,
		})
		return domainauth.Resolution{}, err
	}

	res := domainauth.Resolution{IsAdmin: domainauth.HasAdmin(roles), Profile: profile}
	metrics.EmitResolution(r.metrics, metrics.Resolution{
		Result: metrics.ResultSuccess, Fresh: fresh, IsAdmin: res.IsAdmin, Duration: time.Since(start),
	})
	return res, nil
}

// Refresh drops cached role assignments when the store caches them, then resolves.
func (r *IdentityResolver) Refresh(ctx context.Context, principalID string) (domainauth.Resolution, error) {
	if inv, ok := r.store.(ports.RoleCacheInvalidator); ok && principalID != "" {
		if err := inv.InvalidateRoles(ctx, principalID); err != nil {
			r.logger.DebugContext(ctx, "role cache invalidation failed", "principal_id", principalID, "error", err)
		}
	}
	return r.resolve(ctx, principalID, true)
}

// IsAdmin reads only role assignments and reports whether any grants admin.
// Failures report false.
func (r *IdentityResolver) IsAdmin(ctx context.Context, principalID string) bool {
	if principalID == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	roles, err := r.store.ListRoleAssignments(ctx, principalID)
	if err != nil {
		r.logger.WarnContext(ctx, "role lookup failed, treating principal as unprivileged",
			"principal_id", principalID,
			"error_code", apperrors.GetCode(err),
			"error", err)
		return false
	}
	return domainauth.HasAdmin(roles)
}
