package client

import (
	"context"
	"net/http"
	"net/url"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/ports"
)

var (
	_ ports.RoleProfileStore     = (*Client)(nil)
	_ ports.RoleCacheInvalidator = (*Client)(nil)
)

func userPath(principalID, leaf string) string {
	return "/api/users/" + url.PathEscape(principalID) + "/" + leaf
}

// ListRoleAssignments returns the role assignments of principalID as the server sees them.
func (c *Client) ListRoleAssignments(ctx context.Context, principalID string) ([]domainauth.RoleAssignment, error) {
	var out struct {
		Roles []domainauth.RoleAssignment `json:"roles"`
	}
	if _, err := c.do(ctx, request{method: http.MethodGet, path: userPath(principalID, "roles")}, &out); err != nil {
		return nil, err
	}
	return out.Roles, nil
}

// GetProfile returns the profile of principalID, or nil when none exists.
func (c *Client) GetProfile(ctx context.Context, principalID string) (*domainauth.Profile, error) {
	var p domainauth.Profile
	if _, err := c.do(ctx, request{method: http.MethodGet, path: userPath(principalID, "profile")}, &p); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpdateProfile writes the set fields of upd.
func (c *Client) UpdateProfile(ctx context.Context, principalID string, upd domainauth.ProfileUpdate) error {
	_, err := c.do(ctx, request{method: http.MethodPut, path: userPath(principalID, "profile"), body: upd}, nil)
	return err
}

// InvalidateRoles asks the server to drop its cached role assignments for the caller. The
// server only honours this for the signed-in principal, which is the only one a client
// ever refreshes.
func (c *Client) InvalidateRoles(ctx context.Context, _ string) error {
	q := url.Values{"fresh": {"true"}}
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/api/me", query: q}, nil)
	return err
}
