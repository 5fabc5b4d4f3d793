package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hostelhub/hostel-api/config"
	httpx "github.com/hostelhub/hostel-api/internal/http"
	"github.com/hostelhub/hostel-api/internal/mocks"
	mockauth "github.com/hostelhub/hostel-api/internal/mocks/auth"
	"github.com/hostelhub/hostel-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestErrorChannelCapacity(t *testing.T) {
	tests := []struct {
		name  string
		modes []config.ServiceMode
		want  int
	}{
		{name: "no services enabled", want: 0},
		{name: "http only", modes: []config.ServiceMode{config.ServiceModeHTTP}, want: 1},
		{
			name:  "all services enabled",
			modes: []config.ServiceMode{config.ServiceModeHTTP, config.ServiceModeNoticeSweeper},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[config.ServiceMode]bool, len(tt.modes))
			for _, mode := range tt.modes {
				enabled[mode] = true
			}
			assert.Equal(t, tt.want, errorChannelCapacity(enabled))
			assert.Equal(t, tt.want+1, errorChannelBufferSize(enabled))
		})
	}
}

func TestBuildStaffAlerts(t *testing.T) {
	logger := discardLogger()

	t.Run("disabled", func(t *testing.T) {
		svc := buildStaffAlerts(logger, config.ObservabilityNotificationsConfig{}, "", nil)
		require.NotNil(t, svc)
		assert.False(t, svc.Enabled())
	})

	t.Run("enabled without sinks", func(t *testing.T) {
		svc := buildStaffAlerts(logger, config.ObservabilityNotificationsConfig{Enabled: true}, "", nil)
		assert.False(t, svc.Enabled())
	})

	t.Run("slack and pagerduty", func(t *testing.T) {
		cfg := config.ObservabilityNotificationsConfig{
			Enabled:    true,
			Timeout:    time.Second,
			RetryLimit: 1,
			Slack:      config.SlackNotificationConfig{Enabled: true, WebhookURL: "https://hooks.slack.test/T0/B0/x"},
			PagerDuty:  config.PagerDutyNotificationConfig{Enabled: true, RoutingKey: "rk"},
		}
		svc := buildStaffAlerts(logger, cfg, "https://hostel.test", nil)
		assert.True(t, svc.Enabled())
	})
}

func TestBuildObservability_MetricsDisabled(t *testing.T) {
	obs := buildObservability(discardLogger(), &config.AppConfig{})
	require.NotNil(t, obs.Metrics)
	assert.False(t, obs.Metrics.Enabled())
	assert.False(t, obs.StaffAlerts.Enabled())
	obs.Close()
}

func TestNewPhotoStore_Disabled(t *testing.T) {
	store, err := newPhotoStore(config.StorageConfig{}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestBuildBackgroundServices(t *testing.T) {
	sweeper, err := service.NewNoticeSweeper(service.NoticeSweeperOptions{
		Repo:     mocks.NewMockNoticeRepository(gomock.NewController(t)),
		Interval: time.Hour,
	})
	require.NoError(t, err)
	cfg := &ServiceOrchestrationConfig{Services: ServiceContainer{Sweeper: sweeper}}

	assert.Empty(t, buildBackgroundServices(cfg, map[config.ServiceMode]bool{config.ServiceModeHTTP: true}))

	got := buildBackgroundServices(cfg, map[config.ServiceMode]bool{config.ServiceModeNoticeSweeper: true})
	require.Len(t, got, 1)
	assert.Equal(t, "notice sweeper", got[0].name)
}

func TestLaunchBackground_ReportsFailure(t *testing.T) {
	errCh := make(chan error, 1)
	h := launchBackground(context.Background(), discardLogger(), errCh, backgroundService{
		name:  "broken",
		start: func(context.Context) error { return errors.New("boom") },
	})
	waitForService(h.done, h.name, discardLogger())

	select {
	case err := <-errCh:
		assert.EqualError(t, err, "broken failed: boom")
	default:
		t.Fatal("expected an error on the channel")
	}
}

func TestLaunchBackground_IgnoresCancellation(t *testing.T) {
	errCh := make(chan error, 1)
	h := launchBackground(context.Background(), discardLogger(), errCh, backgroundService{
		name:  "sweeper",
		start: func(context.Context) error { return context.Canceled },
	})
	waitForService(h.done, h.name, discardLogger())
	assert.Empty(t, errCh)
}

func TestShutdownHTTPServer_NilServer(t *testing.T) {
	assert.NoError(t, ShutdownHTTPServer(ShutdownConfig{}))
}

func TestBuildHTTPHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth, err := BuildAuthService(context.Background(), AuthConfig{
		IsDev:    true,
		Accounts: mocks.NewMockAccountRepository(ctrl),
		Sessions: mockauth.NewMemorySessionRepository(),
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	resolver := service.NewIdentityResolver(service.IdentityResolverOptions{
		Store:  mockauth.NewFakeRoleProfileStore(),
		Logger: discardLogger(),
	})

	handler := BuildHTTPHandler(HTTPHandlerConfig{
		Services: ServiceContainer{Auth: auth, Resolver: resolver},
		Readiness: map[string]httpx.ReadinessCheck{
			"postgres": func(context.Context) error { return errors.New("down") },
		},
		Logger: discardLogger(),
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "postgres")
}
