package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: sessions, tokens and single sign-on
//   - database.go: PostgreSQL, Redis and the role cache
//   - http.go: HTTP server
//   - storage.go: complaint photo storage
//   - services.go: service modes and the notice sweeper
//   - observability.go: metrics and staff notifications
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	HTTP HTTPConfig

	Storage StorageConfig `envPrefix:"S3_"`

	// Services is a comma-delimited list of enabled services.
	Services string `env:"SERVICES" envDefault:"http,notice-sweeper"`

	NoticeSweeper NoticeSweeperConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.Auth.Sanitize()
	c.Cache.Sanitize()
	c.HTTP.Sanitize()
	c.Storage.Sanitize()
	c.NoticeSweeper.Sanitize()
	c.Observability.Sanitize()
}

// Validate reports configuration that cannot be started. Call it after Sanitize.
func (c *AppConfig) Validate() error {
	var errs []error
	if _, err := c.GetEnabledServices(); err != nil {
		errs = append(errs, err)
	}
	if c.IsHTTPServerEnabled() {
		if err := c.Auth.Validate(c.IsDev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	return c.isEnabled(ServiceModeHTTP)
}

// IsNoticeSweeperEnabled returns true if the notice sweeper service is enabled.
func (c *AppConfig) IsNoticeSweeperEnabled() bool {
	return c.isEnabled(ServiceModeNoticeSweeper)
}

func (c *AppConfig) isEnabled(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[mode]
}
