// Package testutil provides helpers for integration tests that need PostgreSQL or Redis.
// Tests skip when the infrastructure is unreachable unless TEST_REQUIRE_INFRA is set.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hostelhub/hostel-api/internal/migrate"
	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...any)
	Skipf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
	Cleanup(func())
}

// TestDBConfig holds configuration for the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig reads TEST_DB_* variables. The port defaults to the docker-compose test profile (55432).
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "55432"),
		User:     getEnvOrDefault("TEST_DB_USER", "hostel"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "hostel"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "hostel"),
	}
}

// DSN returns the connection string for the configuration.
func (c TestDBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.User, c.Password, net.JoinHostPort(c.Host, c.Port), c.DBName, getEnvOrDefault("DB_SSL_MODE", "disable"))
}

// testTables lists every application table in child-to-parent order.
var testTables = []string{
	"complaints", "leave_applications", "user_roles", "profiles", "users",
	"notices", "mess_menu", "emergency_contacts", "hostel_rules", "quick_links", "hostel_events",
}

// SetupTestDB opens the test database, applies migrations, truncates application tables
// and registers cleanup. It skips the test when the database is unavailable.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", DefaultTestDBConfig().DSN())
	if err != nil {
		skipOrFail(t, requireDB(), "test database not available:", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		skipOrFail(t, requireDB(), "test database not available:", pingErr)
		return nil
	}

	if _, migErr := migrate.Run(ctx, db, nil); migErr != nil {
		_ = db.Close()
		t.Fatal("failed to run migrations:", migErr)
	}

	CleanupTestDB(t, db)
	t.Cleanup(func() {
		CleanupTestDB(t, db)
		_ = db.Close()
	})
	return db
}

// CleanupTestDB removes all rows from application tables.
func CleanupTestDB(t TestingTB, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "TRUNCATE "+strings.Join(testTables, ", ")+" CASCADE"); err != nil {
		t.Fatalf("failed to truncate test tables: %v", err)
	}
}

// SeedUserParams groups inputs for SeedUser.
type SeedUserParams struct {
	Email    string
	FullName string
	Admin    bool
}

// SeedUser inserts a principal with a profile and the student role, plus admin when requested.
// It returns the new principal id.
func SeedUser(t TestingTB, db *sql.DB, p SeedUserParams) string {
	t.Helper()
	ctx := context.Background()

	var id string
	if err := db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, 'x') RETURNING id`, p.Email).Scan(&id); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	name := p.FullName
	if name == "" {
		name = p.Email
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO profiles (id, full_name) VALUES ($1, $2)`, id, name); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	roles := []string{"student"}
	if p.Admin {
		roles = append(roles, "admin")
	}
	for _, r := range roles {
		if _, err := db.ExecContext(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, id, r); err != nil {
			t.Fatalf("seed role %s: %v", r, err)
		}
	}
	return id
}

// SetupTestRedis returns a client for the test Redis, flushing its database and closing it on cleanup.
// The address comes from REDIS_ADDR, then redis:6379, localhost:6379 and localhost:56379.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	candidates := []string{"redis:6379", "localhost:6379", "localhost:56379"}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}

	var lastErr error
	for _, addr := range candidates {
		client := redis.NewClient(&redis.Options{Addr: addr, DB: 15, DialTimeout: time.Second})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = client.Ping(ctx).Err()
		if lastErr == nil {
			lastErr = client.FlushDB(ctx).Err()
		}
		cancel()
		if lastErr == nil {
			t.Cleanup(func() { _ = client.Close() })
			return client
		}
		_ = client.Close()
	}
	skipOrFail(t, requireRedis(), "test redis not available:", lastErr)
	return nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// TestTime returns a fixed time for testing.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func skipOrFail(t TestingTB, required bool, args ...any) {
	t.Helper()
	if required {
		t.Fatal(args...)
	}
	t.Skip(args...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func requireDB() bool    { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }
