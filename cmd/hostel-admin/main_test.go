package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hostelhub/hostel-api/config"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(host, stdin string) (*commandContext, *bytes.Buffer) {
	var out bytes.Buffer
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.AppConfig{Postgres: config.DBConfig{Host: host, Name: "hostel", Port: 5432}},
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
		Stderr: &out,
	}, &out
}

func TestIsLikelyRemoteHost(t *testing.T) {
	tests := map[string]bool{
		"":                   false,
		"localhost":          false,
		"127.0.0.1":          false,
		"::1":                false,
		"postgres.local":     false,
		"127.0.0.2":          false,
		"10.0.0.5":           true,
		"db.prod.hostel.com": true,
	}
	for host, want := range tests {
		assert.Equal(t, want, isLikelyRemoteHost(host), host)
	}
}

func TestGuardRemoteHost(t *testing.T) {
	t.Run("local host passes", func(t *testing.T) {
		cmdCtx, _ := testContext("localhost", "")
		remote, err := guardRemoteHost(cmdCtx, false, "reset")
		require.NoError(t, err)
		assert.False(t, remote)
	})

	t.Run("remote host refused without flag", func(t *testing.T) {
		cmdCtx, _ := testContext("db.prod.hostel.com", "")
		remote, err := guardRemoteHost(cmdCtx, false, "reset")
		require.Error(t, err)
		assert.True(t, remote)
		assert.Contains(t, err.Error(), "--allow-remote")
	})

	t.Run("remote host needs typed confirmation", func(t *testing.T) {
		cmdCtx, _ := testContext("db.prod.hostel.com", "db.prod.hostel.com\n")
		_, err := guardRemoteHost(cmdCtx, true, "reset")
		require.NoError(t, err)

		cmdCtx, _ = testContext("db.prod.hostel.com", "yes\n")
		_, err = guardRemoteHost(cmdCtx, true, "reset")
		assert.EqualError(t, err, "aborted by user")
	})
}

func TestConfirmAction(t *testing.T) {
	cmdCtx, _ := testContext("localhost", "")
	require.NoError(t, confirmAction(cmdCtx, dbResetConfirmOptions{yes: true}, "reset"))

	cmdCtx, out := testContext("localhost", "y\n")
	require.NoError(t, confirmAction(cmdCtx, dbResetConfirmOptions{target: "database \"hostel\""}, "reset"))
	assert.Contains(t, out.String(), "Continue? [y/N]")

	cmdCtx, _ = testContext("remote", "n\n")
	err := confirmAction(cmdCtx, dbResetConfirmOptions{yes: true, remoteHost: "remote"}, "reset")
	assert.EqualError(t, err, "aborted by user", "--yes does not skip the prompt for remote hosts")
}

func TestResetStatements(t *testing.T) {
	assert.Len(t, resetStatements("public"), 3)
	stmts := resetStatements(`ho"stel`)
	require.Len(t, stmts, 4)
	assert.Equal(t, `GRANT ALL ON SCHEMA public TO "ho""stel"`, stmts[3])
}

func TestParseRoleFlags(t *testing.T) {
	opts, err := parseRoleFlags("grant-role", []string{"asha@hostel.test"}, true)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, opts.Role)
	assert.Equal(t, defaultRoleTimeout, opts.Timeout)

	opts, err = parseRoleFlags("revoke-role", []string{"--role", "student", "u1"}, true)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleStudent, opts.Role)
	assert.Equal(t, "u1", opts.User)

	_, err = parseRoleFlags("grant-role", []string{"--role", "warden", "u1"}, true)
	assert.ErrorContains(t, err, "unknown role")

	_, err = parseRoleFlags("list-roles", nil, false)
	assert.ErrorContains(t, err, "usage: hostel-admin list-roles")
}

type lookupFunc func(ctx context.Context, email string) (string, error)

func (f lookupFunc) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	return f(ctx, email)
}

func TestResolvePrincipal(t *testing.T) {
	lookup := lookupFunc(func(_ context.Context, email string) (string, error) {
		if email == "asha@hostel.test" {
			return "u1", nil
		}
		return "", apperrors.NotFound("user not found")
	})

	id, err := resolvePrincipal(context.Background(), lookup, "asha@hostel.test")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	id, err = resolvePrincipal(context.Background(), lookup, "u42")
	require.NoError(t, err)
	assert.Equal(t, "u42", id)

	_, err = resolvePrincipal(context.Background(), lookup, "nobody@hostel.test")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRenderRoles(t *testing.T) {
	cmdCtx, out := testContext("localhost", "")
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, renderRoles(cmdCtx, "u1", []domainauth.RoleAssignment{
		{ID: "r1", UserID: "u1", Role: domainauth.RoleStudent, CreatedAt: at},
		{ID: "r2", UserID: "u1", Role: domainauth.RoleAdmin, CreatedAt: at},
	}))
	assert.Contains(t, out.String(), "ROLE")
	assert.Contains(t, out.String(), "2026-10-01T12:00:00Z")
	assert.True(t, strings.HasSuffix(out.String(), "admin: yes\n"))

	cmdCtx, out = testContext("localhost", "")
	require.NoError(t, renderRoles(cmdCtx, "u2", nil))
	assert.Equal(t, "u2 has no role assignments\n", out.String())
}

func TestPrintUsageIsSorted(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printUsage(&out))
	s := out.String()
	assert.Less(t, strings.Index(s, "db-reset"), strings.Index(s, "migrate"))
	assert.Contains(t, s, "grant-role")
}
