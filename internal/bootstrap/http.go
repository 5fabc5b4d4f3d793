package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hostelhub/hostel-api/config"
	httpx "github.com/hostelhub/hostel-api/internal/http"
	"github.com/redis/go-redis/v9"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// ErrCh receives a listen failure (optional).
	ErrCh chan<- error
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := BuildHTTPHandler(HTTPHandlerConfig{
		Services:     cfg.Services,
		Readiness:    readinessChecks(cfg.DB, cfg.RedisClient),
		CookieDomain: appCfg.HTTP.CookieDomain,
		Logger:       logger,
	})
	return startServer(logger, handler, appCfg.HTTP.Addr, cfg.ErrCh)
}

// HTTPHandlerConfig contains what the router and its middleware need.
type HTTPHandlerConfig struct {
	Services     ServiceContainer
	Readiness    map[string]httpx.ReadinessCheck
	CookieDomain string
	Logger       *slog.Logger
}

// BuildHTTPHandler wraps the router as Recover -> Logging -> Router.
func BuildHTTPHandler(cfg HTTPHandlerConfig) http.Handler {
	router := httpx.NewRouter(httpx.RouterServices{
		Auth:         cfg.Services.Auth,
		Resolver:     cfg.Services.Resolver,
		Profiles:     cfg.Services.Profiles,
		Complaints:   cfg.Services.Complaints,
		Leave:        cfg.Services.Leave,
		Notices:      cfg.Services.Notices,
		Modules:      cfg.Services.Modules,
		Dashboards:   cfg.Services.Dashboards,
		Readiness:    cfg.Readiness,
		CookieDomain: cfg.CookieDomain,
		Logger:       cfg.Logger,
	})

	h := httpx.Logging(cfg.Logger)(router)
	h = httpx.Recover(cfg.Logger)(h)
	return h
}

func readinessChecks(db *sql.DB, rdb redis.UniversalClient) map[string]httpx.ReadinessCheck {
	checks := map[string]httpx.ReadinessCheck{}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

func startServer(logger *slog.Logger, handler http.Handler, addr string, errCh chan<- error) *http.Server {
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				select {
				case errCh <- fmt.Errorf("http server: %w", err):
				default:
				}
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	logger.Info("shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := cfg.Server.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
