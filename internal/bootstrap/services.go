package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hostelhub/hostel-api/config"
	"github.com/hostelhub/hostel-api/internal/adapters/objectstore"
	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/data"
	"github.com/hostelhub/hostel-api/internal/observability/notify"
	"github.com/hostelhub/hostel-api/internal/observability/notify/pagerduty"
	"github.com/hostelhub/hostel-api/internal/observability/notify/slack"
	"github.com/hostelhub/hostel-api/internal/observability/statsd"
	"github.com/hostelhub/hostel-api/internal/ports"
	"github.com/hostelhub/hostel-api/internal/service"
	"github.com/hostelhub/hostel-api/internal/service/staffalert"
	"github.com/redis/go-redis/v9"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Resolver      *service.IdentityResolver
	Profiles      *service.ProfileService
	Complaints    *service.ComplaintService
	Leave         *service.LeaveService
	Notices       *service.NoticeService
	Modules       *service.ModuleService
	Dashboards    *service.DashboardService
	Sweeper       *service.NoticeSweeper
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	Metrics     *statsd.Client
	StaffAlerts *staffalert.Service
}

// Close flushes pending staff alerts and releases the metrics socket.
func (o ObservabilityContainer) Close() {
	o.StaffAlerts.Wait()
	if o.Metrics != nil {
		_ = o.Metrics.Close()
	}
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	// Sessions overrides the Redis session store (tests).
	Sessions ports.SessionRepository
	Logger   *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Accounts   *data.AccountRepo
	Identity   ports.RoleProfileStore
	Complaints *data.ComplaintRepo
	Leave      *data.LeaveRepo
	Modules    *data.ModuleRepo
	Notices    *data.NoticeRepo
}

func buildObservability(logger *slog.Logger, cfg *config.AppConfig) ObservabilityContainer {
	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client; metrics disabled", "error", err)
		metrics, _ = statsd.NewClient(statsd.Config{Prefix: cfg.Observability.Metrics.Prefix, Logger: logger})
	}

	return ObservabilityContainer{
		Metrics:     metrics,
		StaffAlerts: buildStaffAlerts(logger, cfg.Observability.Notifications, cfg.HTTP.BaseURL, metrics),
	}
}

// buildStaffAlerts registers Slack for every event and PagerDuty for critical ones.
func buildStaffAlerts(
	logger *slog.Logger,
	cfg config.ObservabilityNotificationsConfig,
	baseURL string,
	metrics statsd.Sink,
) *staffalert.Service {
	if !cfg.Enabled {
		return staffalert.NewService(staffalert.Options{Logger: logger, Metrics: metrics})
	}

	sinks := make([]staffalert.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
			BaseURL:    baseURL,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, staffalert.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, staffalert.SinkRegistration{
				Name:        "pagerduty",
				Sink:        client,
				MinSeverity: notify.SeverityCritical,
			})
		}
	}

	return staffalert.NewService(staffalert.Options{
		Logger:  logger,
		Sinks:   sinks,
		Metrics: metrics,
	})
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(
	db *sql.DB,
	rdb redis.UniversalClient,
	cache config.CacheConfig,
	logger *slog.Logger,
) *serviceRepositories {
	var identity ports.RoleProfileStore = data.NewIdentityRepo(db)
	if rdb != nil && cache.RoleTTL > 0 {
		identity = core.NewCachedIdentityStore(core.CachedIdentityStoreOptions{
			Cache:  data.NewRedisCacheRepo(rdb),
			Store:  data.NewIdentityRepo(db),
			TTL:    cache.RoleTTL,
			Logger: logger,
		})
	}
	return &serviceRepositories{
		Accounts:   data.NewAccountRepo(db),
		Identity:   identity,
		Complaints: data.NewComplaintRepo(db),
		Leave:      data.NewLeaveRepo(db),
		Modules:    data.NewModuleRepo(db),
		Notices:    data.NewNoticeRepo(db),
	}
}

// newPhotoStore returns nil when S3 is not configured; uploads are then rejected.
//
//nolint:ireturn // nil interface disables photo uploads.
func newPhotoStore(cfg config.StorageConfig, logger *slog.Logger) (ports.ObjectStore, error) {
	if !cfg.Enabled() {
		logger.Info("complaint photo storage disabled")
		return nil, nil
	}
	store, err := objectstore.NewS3Store(objectstore.Config{
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		PublicBaseURL:   cfg.PublicBaseURL,
		UsePathStyle:    cfg.UsePathStyle,
		MaxBytes:        cfg.MaxBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("photo storage: %w", err)
	}
	return store, nil
}

// NewServices wires repositories, observability and domain services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return ServiceContainer{}, errors.New("config and database are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	obs := buildObservability(logger, cfg)
	repos := buildRepositories(deps.DB, deps.RedisClient, cfg.Cache, logger)

	auth, err := BuildAuthService(ctx, AuthConfig{
		Auth:        cfg.Auth,
		IsDev:       cfg.IsDev,
		Accounts:    repos.Accounts,
		RedisClient: deps.RedisClient,
		Sessions:    deps.Sessions,
		Metrics:     obs.Metrics,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	photos, err := newPhotoStore(cfg.Storage, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	resolver := service.NewIdentityResolver(service.IdentityResolverOptions{
		Store:   repos.Identity,
		Logger:  logger,
		Timeout: cfg.Auth.ResolveTimeout,
		Metrics: obs.Metrics,
	})
	complaints := service.NewComplaintService(service.ComplaintServiceOptions{
		Repo:     repos.Complaints,
		Profiles: repos.Identity,
		Photos:   photos,
		Notifier: obs.StaffAlerts,
		Metrics:  obs.Metrics,
		Logger:   logger,
	})
	leave := service.NewLeaveService(service.LeaveServiceOptions{
		Repo:     repos.Leave,
		Profiles: repos.Identity,
		Notifier: obs.StaffAlerts,
		Metrics:  obs.Metrics,
		Logger:   logger,
	})
	notices := service.NewNoticeService(service.NoticeServiceOptions{Repo: repos.Notices, Logger: logger})

	sweeper, err := service.NewNoticeSweeper(service.NoticeSweeperOptions{
		Repo:      repos.Notices,
		Interval:  cfg.NoticeSweeper.Interval,
		Freshness: cfg.NoticeSweeper.Freshness,
		Notifier:  obs.StaffAlerts,
		Metrics:   obs.Metrics,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("notice sweeper: %w", err)
	}

	profiles := service.NewProfileService(service.ProfileServiceOptions{
		Store:    repos.Identity,
		Resolver: resolver,
		Logger:   logger,
	})
	modules := service.NewModuleService(service.ModuleServiceOptions{Repo: repos.Modules, Logger: logger})
	dashboards := service.NewDashboardService(complaints, leave, notices)

	return ServiceContainer{
		Auth:          auth,
		Resolver:      resolver,
		Profiles:      profiles,
		Complaints:    complaints,
		Leave:         leave,
		Notices:       notices,
		Modules:       modules,
		Dashboards:    dashboards,
		Sweeper:       sweeper,
		Observability: obs,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// shutdownWaitTimeout is the maximum time to wait for background services to stop.
const shutdownWaitTimeout = 15 * time.Second

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

func launchBackground(
	ctx context.Context,
	logger *slog.Logger,
	errCh chan<- error,
	descriptor backgroundService,
) backgroundServiceHandle {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case errCh <- errMsg:
			default:
				logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
			}
		}
	}()
	logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return backgroundServiceHandle{name: descriptor.name, done: done}
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig, enabled map[config.ServiceMode]bool) []backgroundService {
	var out []backgroundService
	if enabled[config.ServiceModeNoticeSweeper] && cfg.Services.Sweeper != nil {
		out = append(out, backgroundService{
			mode:  config.ServiceModeNoticeSweeper,
			name:  "notice sweeper",
			start: cfg.Services.Sweeper.Run,
		})
	}
	return out
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// It blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, errorChannelBufferSize(enabled))

	var server *http.Server
	if enabled[config.ServiceModeHTTP] {
		server = StartHTTPServer(&HTTPServerConfig{
			Config:      cfg.Config,
			Services:    cfg.Services,
			DB:          cfg.DB,
			RedisClient: cfg.RedisClient,
			Logger:      logger,
			ErrCh:       errCh,
		})
	}
	var handles []backgroundServiceHandle
	for _, svc := range buildBackgroundServices(cfg, enabled) {
		handles = append(handles, launchBackground(serviceCtx, logger, errCh, svc))
	}

	return waitForShutdown(shutdownConfig{
		cancel:          cancel,
		errCh:           errCh,
		httpServer:      server,
		shutdownTimeout: cfg.Config.HTTP.ShutdownTimeout,
		observability:   cfg.Services.Observability,
		logger:          logger,
		backgrounds:     handles,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	cancel          context.CancelFunc
	errCh           <-chan error
	httpServer      *http.Server
	shutdownTimeout time.Duration
	observability   ObservabilityContainer
	logger          *slog.Logger
	backgrounds     []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop drains HTTP, waits for background services, then flushes observability.
func gracefulStop(cfg shutdownConfig) error {
	err := ShutdownHTTPServer(ShutdownConfig{
		Server:  cfg.httpServer,
		Timeout: cfg.shutdownTimeout,
		Logger:  cfg.logger,
	})
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}
	cfg.observability.Close()
	return err
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
