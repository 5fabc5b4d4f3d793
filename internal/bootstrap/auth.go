package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hostelhub/hostel-api/config"
	"github.com/hostelhub/hostel-api/internal/adapters/authroles"
	"github.com/hostelhub/hostel-api/internal/adapters/devauth"
	"github.com/hostelhub/hostel-api/internal/adapters/oidc"
	redisadapter "github.com/hostelhub/hostel-api/internal/adapters/redis"
	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/observability/statsd"
	"github.com/hostelhub/hostel-api/internal/ports"
	"github.com/hostelhub/hostel-api/internal/service"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// AuthConfig contains the dependencies of the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	IsDev       bool
	Accounts    core.AccountRepository
	RedisClient redis.UniversalClient
	// Sessions overrides the Redis session store (tests).
	Sessions ports.SessionRepository
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// BuildAuthService wires password sign-in and, depending on the mode, an SSO provider.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Accounts == nil {
		return nil, errors.New("account repository is required")
	}

	sessions := cfg.Sessions
	if sessions == nil {
		if cfg.RedisClient == nil {
			return nil, errors.New("redis client is required for sessions")
		}
		sessions = redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, sessionKeyPrefix)
	}

	secret := cfg.Auth.TokenSecret
	if secret == "" {
		if !cfg.IsDev {
			return nil, errors.New("AUTH_TOKEN_SECRET is required")
		}
		secret = randomSecret()
		logger.Warn("AUTH_TOKEN_SECRET not set; using an ephemeral dev secret, sessions will not survive a restart")
	}
	tokens, err := service.NewTokenIssuer(secret, cfg.Auth.TokenIssuer)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	provider, err := buildSSOProvider(ctx, cfg.Auth)
	if err != nil {
		return nil, err
	}
	sso := service.SSOOptions{}
	if provider != nil {
		sso = service.SSOOptions{Provider: provider, Roles: authroles.StaticRoleMapper{AdminGroup: cfg.Auth.AdminGroup}}
	}
	logger.Info("auth configured", "mode", cfg.Auth.Mode, "sso", provider != nil, "session_ttl", cfg.Auth.SessionTTL)

	return service.NewAuthService(service.AuthServiceOptions{
		Accounts:   cfg.Accounts,
		Sessions:   sessions,
		Tokens:     tokens,
		SSO:        sso,
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
		Metrics:    cfg.Metrics,
		Logger:     logger,
	}), nil
}

// buildSSOProvider returns nil in password mode.
//
//nolint:ireturn // the provider implementation depends on the auth mode.
func buildSSOProvider(ctx context.Context, cfg config.AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeOIDC:
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Scope:        cfg.OIDC.Scope,
			IssuerURL:    cfg.OIDC.IssuerURL,
			GroupsClaim:  cfg.OIDC.GroupsClaim,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		return prov, nil
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:          cfg.DevAuth.UserID,
			Email:           cfg.DevAuth.Email,
			FullName:        cfg.DevAuth.FullName,
			Groups:          cfg.DevAuth.Groups,
			SessionDuration: cfg.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return prov, nil
	default:
		return nil, nil
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
