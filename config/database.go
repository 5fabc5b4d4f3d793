package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"hostel"`
	Password string `env:"PASSWORD" envDefault:"hostel"`
	Name     string `env:"NAME"     envDefault:"hostel"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the server applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration. Sessions and the role cache live here.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Configured reports whether enough settings are present to attempt a connection.
func (r *RedisConfig) Configured() bool {
	switch {
	case r.UseCluster:
		return len(r.ClusterNodes) > 0 || r.URI != ""
	case r.UseSentinel:
		return len(r.SentinelNodes) > 0
	default:
		return r.URI != ""
	}
}

// CacheConfig contains role cache configuration.
type CacheConfig struct {
	// RoleTTL bounds how long a revoked admin role may still be observed by the API.
	RoleTTL time.Duration `env:"CACHE_ROLE_TTL" envDefault:"30s"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.RoleTTL < 0 {
		c.RoleTTL = 0
	}
	if c.RoleTTL > 5*time.Minute {
		c.RoleTTL = 5 * time.Minute
	}
}
