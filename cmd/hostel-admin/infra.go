package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hostelhub/hostel-api/config"
	"github.com/hostelhub/hostel-api/internal/bootstrap"
	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/data"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/redis/go-redis/v9"
)

// roleStore is the slice of identity storage the role commands need.
type roleStore interface {
	ListRoleAssignments(ctx context.Context, principalID string) ([]domainauth.RoleAssignment, error)
	GrantRole(ctx context.Context, principalID string, role domainauth.Role) (*domainauth.RoleAssignment, error)
	RevokeRole(ctx context.Context, principalID string, role domainauth.Role) (bool, error)
}

type userLookup interface {
	FindUserIDByEmail(ctx context.Context, email string) (string, error)
}

// roleInfra holds the connections behind the role commands.
type roleInfra struct {
	db     *sql.DB
	redis  redis.UniversalClient
	store  roleStore
	lookup userLookup
}

// connectRoleInfra opens Postgres and, when configured, Redis so role changes also drop the
// API's cached assignments.
func connectRoleInfra(logger *slog.Logger, cfg *config.AppConfig) (*roleInfra, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	repo := data.NewIdentityRepo(db)
	infra := &roleInfra{db: db, store: repo, lookup: repo}

	if !cfg.Redis.Configured() {
		logger.Info("no redis configuration detected; cached roles expire on their own TTL")
		return infra, nil
	}
	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{RedisConfig: cfg.Redis, Logger: logger})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("connect redis: %w", err), closeInfra(db, nil))
	}
	infra.redis = client
	infra.store = core.NewCachedIdentityStore(core.CachedIdentityStoreOptions{
		Cache:  data.NewRedisCacheRepo(client),
		Store:  repo,
		TTL:    cfg.Cache.RoleTTL,
		Logger: logger,
	})
	return infra, nil
}

func (r *roleInfra) Close() error {
	return closeInfra(r.db, r.redis)
}

func closeInfra(db *sql.DB, redisClient redis.UniversalClient) error {
	var closeErr error
	if db != nil {
		if err := db.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis: %w", err))
		}
	}
	return closeErr
}
