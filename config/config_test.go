package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - notice-sweeper",
			input:    "notice-sweeper",
			expected: map[ServiceMode]bool{ServiceModeNoticeSweeper: true},
		},
		{
			name:  "services with spaces and duplicates",
			input: " http , notice-sweeper , http ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:          true,
				ServiceModeNoticeSweeper: true,
			},
		},
		{name: "empty string", input: "", expectError: true},
		{name: "only spaces and commas", input: " , , ", expectError: true},
		{name: "invalid service name", input: "http,scheduler", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	tests := []struct {
		services    string
		wantHTTP    bool
		wantSweeper bool
	}{
		{services: "http", wantHTTP: true},
		{services: "notice-sweeper", wantSweeper: true},
		{services: "http,notice-sweeper", wantHTTP: true, wantSweeper: true},
		{services: "invalid-service"},
	}

	for _, tt := range tests {
		t.Run(tt.services, func(t *testing.T) {
			cfg := AppConfig{Services: tt.services}
			if got := cfg.IsHTTPServerEnabled(); got != tt.wantHTTP {
				t.Errorf("IsHTTPServerEnabled(): expected %v, got %v", tt.wantHTTP, got)
			}
			if got := cfg.IsNoticeSweeperEnabled(); got != tt.wantSweeper {
				t.Errorf("IsNoticeSweeperEnabled(): expected %v, got %v", tt.wantSweeper, got)
			}
		})
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Services != "http,notice-sweeper" {
		t.Errorf("unexpected services default %q", cfg.Services)
	}
	if cfg.Auth.Mode != AuthModePassword {
		t.Errorf("expected password auth by default, got %q", cfg.Auth.Mode)
	}
	if cfg.Auth.ResolveTimeout != 10*time.Second {
		t.Errorf("expected 10s resolve timeout, got %v", cfg.Auth.ResolveTimeout)
	}
	if cfg.Cache.RoleTTL != 30*time.Second {
		t.Errorf("expected 30s role cache ttl, got %v", cfg.Cache.RoleTTL)
	}
	if cfg.NoticeSweeper.Freshness != 7*24*time.Hour {
		t.Errorf("expected 7 day notice freshness, got %v", cfg.NoticeSweeper.Freshness)
	}
	if cfg.Storage.Enabled() {
		t.Error("expected photo storage disabled without a bucket")
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "OIDC")
	t.Setenv("AUTH_SESSION_TTL", "12h")
	t.Setenv("AUTH_TOKEN_SECRET", strings.Repeat("s", 32))
	t.Setenv("AUTH_ADMIN_GROUP", "wardens")
	t.Setenv("OIDC_CLIENT_ID", "hostel")
	t.Setenv("OIDC_CLIENT_SECRET", "super-secret")
	t.Setenv("OIDC_ISSUER_URL", "https://login.example.com")
	t.Setenv("DEV_AUTH_GROUPS", "wardens;staff")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	expected := AuthConfig{
		Mode:           AuthModeOIDC,
		SessionTTL:     12 * time.Hour,
		TokenSecret:    strings.Repeat("s", 32),
		TokenIssuer:    "hostel-api",
		BcryptCost:     10,
		ResolveTimeout: 10 * time.Second,
		AdminGroup:     "wardens",
		OIDC: OIDCConfig{
			ClientID:     "hostel",
			ClientSecret: "super-secret",
			RedirectURL:  "http://localhost:8080/auth/callback",
			Scope:        "openid profile email groups",
			IssuerURL:    "https://login.example.com",
			GroupsClaim:  "groups",
		},
		DevAuth: DevAuthConfig{
			UserID:   "dev-warden",
			Email:    "warden@hostel.local",
			FullName: "Dev Warden",
			Groups:   []string{"wardens", "staff"},
		},
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
	if !cfg.Auth.SSOEnabled() {
		t.Fatal("expected oidc mode to enable SSO")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	if err := m.UnmarshalText([]byte("oauth")); err != nil || m != AuthModeOIDC {
		t.Fatalf("expected oauth alias to map to oidc, got %q (%v)", m, err)
	}
	if err := m.UnmarshalText([]byte("ldap")); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AppConfig
		wantErr string
	}{
		{
			name:    "missing token secret in production",
			cfg:     AppConfig{Services: "http", Auth: AuthConfig{Mode: AuthModePassword}},
			wantErr: "AUTH_TOKEN_SECRET is required",
		},
		{
			name:    "short token secret",
			cfg:     AppConfig{Services: "http", Auth: AuthConfig{Mode: AuthModePassword, TokenSecret: "short"}},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "mock auth outside development",
			cfg:     AppConfig{Services: "http", Auth: AuthConfig{Mode: AuthModeMock, TokenSecret: strings.Repeat("x", 32)}},
			wantErr: "only allowed in development",
		},
		{
			name:    "oidc without provider settings",
			cfg:     AppConfig{Services: "http", Auth: AuthConfig{Mode: AuthModeOIDC, TokenSecret: strings.Repeat("x", 32)}},
			wantErr: "requires OIDC_ISSUER_URL",
		},
		{
			name:    "invalid services",
			cfg:     AppConfig{Services: "nope"},
			wantErr: "invalid service name",
		},
		{
			name: "development without secret",
			cfg:  AppConfig{IsDev: true, Services: "http", Auth: AuthConfig{Mode: AuthModeMock}},
		},
		{
			name: "sweeper only needs no auth settings",
			cfg:  AppConfig{Services: "notice-sweeper"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSanitizeClamps(t *testing.T) {
	auth := AuthConfig{BcryptCost: 40, SessionTTL: time.Second}
	auth.Sanitize()
	if auth.BcryptCost != maxBcryptCost {
		t.Errorf("expected bcrypt cost clamped to %d, got %d", maxBcryptCost, auth.BcryptCost)
	}
	if auth.SessionTTL != time.Minute {
		t.Errorf("expected session ttl raised to 1m, got %v", auth.SessionTTL)
	}

	sweeper := NoticeSweeperConfig{Interval: time.Second}
	sweeper.Sanitize()
	if sweeper.Interval != time.Minute {
		t.Errorf("expected sweep interval raised to 1m, got %v", sweeper.Interval)
	}

	storage := StorageConfig{Bucket: " photos ", MaxBytes: 50 << 20}
	storage.Sanitize()
	if storage.Bucket != "photos" || storage.MaxBytes != defaultMaxPhotoBytes {
		t.Errorf("unexpected storage config %+v", storage)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: " "}
	cfg.Sanitize()
	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{Enabled: true, StatsdAddress: " statsd:1234 "}
	cfg.Sanitize()
	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" || cfg.Prefix != "hostel" {
		t.Fatalf("unexpected metrics config %+v", cfg)
	}
}

func TestObservabilityNotificationsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled:    true,
		RetryLimit: -1,
		Slack:      SlackNotificationConfig{Enabled: true, WebhookURL: " "},
		PagerDuty:  PagerDutyNotificationConfig{Enabled: true, RoutingKey: " "},
	}
	cfg.Sanitize()

	if cfg.Timeout <= 0 {
		t.Fatalf("expected timeout to fall back to default, got %v", cfg.Timeout)
	}
	if cfg.RetryLimit != 0 {
		t.Fatalf("expected retry limit to be clamped to 0, got %d", cfg.RetryLimit)
	}
	if cfg.Slack.Enabled || cfg.PagerDuty.Enabled {
		t.Fatal("expected sinks without credentials to be disabled")
	}
	if cfg.Slack.Username != "hostel" || cfg.PagerDuty.Source != "hostel" {
		t.Fatalf("expected defaults, got slack=%q pagerduty=%q", cfg.Slack.Username, cfg.PagerDuty.Source)
	}

	cfg = ObservabilityNotificationsConfig{
		Enabled:   false,
		Slack:     SlackNotificationConfig{Enabled: true, WebhookURL: "https://hooks.slack.com/services/test"},
		PagerDuty: PagerDutyNotificationConfig{Enabled: true, RoutingKey: "abc"},
	}
	cfg.Sanitize()
	if cfg.Slack.Enabled || cfg.PagerDuty.Enabled {
		t.Fatal("expected sinks to be disabled when top-level notifications disabled")
	}
}
