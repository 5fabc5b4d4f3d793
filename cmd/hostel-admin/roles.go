package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
)

type roleOptions struct {
	User    string
	Role    domainauth.Role
	Timeout time.Duration
}

func parseRoleFlags(name string, args []string, withRole bool) (roleOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var role string
	opts := roleOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultRoleTimeout, "Maximum duration for the command")
	if withRole {
		fs.StringVar(&role, "role", string(domainauth.RoleAdmin), "Role to change (admin or student)")
	}

	if err := fs.Parse(args); err != nil {
		return roleOptions{}, err
	}
	if fs.NArg() != 1 {
		return roleOptions{}, fmt.Errorf("usage: hostel-admin %s [flags] <email|user-id>", name)
	}
	opts.User = strings.TrimSpace(fs.Arg(0))
	if opts.Timeout <= 0 {
		return roleOptions{}, errors.New("--timeout must be greater than zero")
	}
	if withRole {
		r, ok := domainauth.ParseRole(role)
		if !ok {
			return roleOptions{}, fmt.Errorf("unknown role %q (valid: admin, student)", role)
		}
		opts.Role = r
	}
	return opts, nil
}

// withRoleInfra connects, resolves the user argument to a principal id and runs f.
func withRoleInfra(
	cmdCtx *commandContext,
	opts roleOptions,
	f func(ctx context.Context, store roleStore, principalID string) error,
) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	infra, err := connectRoleInfra(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(); cerr != nil {
			cmdCtx.Logger.Warn("close connections failed", "error", cerr)
		}
	}()

	principalID, err := resolvePrincipal(ctx, infra.lookup, opts.User)
	if err != nil {
		return err
	}
	return f(ctx, infra.store, principalID)
}

// resolvePrincipal treats arguments containing @ as emails.
func resolvePrincipal(ctx context.Context, lookup userLookup, user string) (string, error) {
	if !strings.Contains(user, "@") {
		return user, nil
	}
	id, err := lookup.FindUserIDByEmail(ctx, user)
	if err != nil {
		return "", fmt.Errorf("look up %s: %w", user, err)
	}
	return id, nil
}

func runGrantRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoleFlags("grant-role", args, true)
	if err != nil {
		return err
	}
	return withRoleInfra(cmdCtx, opts, func(ctx context.Context, store roleStore, principalID string) error {
		ra, err := store.GrantRole(ctx, principalID, opts.Role)
		if err != nil {
			return fmt.Errorf("grant %s: %w", opts.Role, err)
		}
		cmdCtx.Logger.InfoContext(ctx, "role granted", "principal_id", principalID, "role", ra.Role)
		return writef(cmdCtx.Stdout, "Granted %s to %s\n", ra.Role, principalID)
	})
}

func runRevokeRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoleFlags("revoke-role", args, true)
	if err != nil {
		return err
	}
	return withRoleInfra(cmdCtx, opts, func(ctx context.Context, store roleStore, principalID string) error {
		removed, err := store.RevokeRole(ctx, principalID, opts.Role)
		if err != nil {
			return fmt.Errorf("revoke %s: %w", opts.Role, err)
		}
		if !removed {
			return writef(cmdCtx.Stdout, "%s did not have %s\n", principalID, opts.Role)
		}
		cmdCtx.Logger.InfoContext(ctx, "role revoked", "principal_id", principalID, "role", opts.Role)
		return writef(cmdCtx.Stdout, "Revoked %s from %s\n", opts.Role, principalID)
	})
}

func runListRoles(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoleFlags("list-roles", args, false)
	if err != nil {
		return err
	}
	return withRoleInfra(cmdCtx, opts, func(ctx context.Context, store roleStore, principalID string) error {
		roles, err := store.ListRoleAssignments(ctx, principalID)
		if err != nil {
			return fmt.Errorf("list roles: %w", err)
		}
		return renderRoles(cmdCtx, principalID, roles)
	})
}

func renderRoles(cmdCtx *commandContext, principalID string, roles []domainauth.RoleAssignment) error {
	if len(roles) == 0 {
		return writef(cmdCtx.Stdout, "%s has no role assignments\n", principalID)
	}
	tw := tabwriter.NewWriter(cmdCtx.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "ROLE\tGRANTED\tID"); err != nil {
		return fmt.Errorf("write roles header: %w", err)
	}
	for _, ra := range roles {
		if err := writef(tw, "%s\t%s\t%s\n", ra.Role, ra.CreatedAt.Format(time.RFC3339), ra.ID); err != nil {
			return fmt.Errorf("write role row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush roles table: %w", err)
	}
	if domainauth.HasAdmin(roles) {
		return writeln(cmdCtx.Stdout, "admin: yes")
	}
	return writeln(cmdCtx.Stdout, "admin: no")
}
