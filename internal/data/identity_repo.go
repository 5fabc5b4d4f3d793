package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/data/pgxutil"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/jackc/pgx/v5"
)

// IdentityRepo provides database operations for role assignments and profiles.
type IdentityRepo struct {
	DB *sql.DB
}

// NewIdentityRepo creates a new IdentityRepo.
func NewIdentityRepo(db *sql.DB) *IdentityRepo {
	return &IdentityRepo{DB: db}
}

var _ core.IdentityRepository = (*IdentityRepo)(nil)

const roleColumns = `id, user_id, role, created_at`

// ListRoleAssignments returns every role assignment held by principalID, oldest first.
func (r *IdentityRepo) ListRoleAssignments(
	ctx context.Context,
	principalID string,
) ([]domainauth.RoleAssignment, error) {
	out, err := queryRows[domainauth.RoleAssignment](ctx, r.DB,
		`SELECT `+roleColumns+` FROM user_roles WHERE user_id = $1 ORDER BY created_at, role`, principalID)
	if err != nil {
		return nil, fmt.Errorf("list role assignments: %w", err)
	}
	return out, nil
}

// GetProfile returns (nil, nil) when principalID has no profile.
func (r *IdentityRepo) GetProfile(ctx context.Context, principalID string) (*domainauth.Profile, error) {
	p, err := queryOne[domainauth.Profile](ctx, r.DB, `
		SELECT id, full_name, room_number, phone, roll_number, created_at, updated_at
		FROM profiles WHERE id = $1`, principalID)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies the set fields of upd. Empty optional fields are stored as NULL.
func (r *IdentityRepo) UpdateProfile(ctx context.Context, principalID string, upd domainauth.ProfileUpdate) error {
	if upd.Empty() {
		return nil
	}
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE profiles SET
				full_name   = COALESCE($2, full_name),
				room_number = CASE WHEN $3::text IS NULL THEN room_number ELSE NULLIF($3, '') END,
				phone       = CASE WHEN $4::text IS NULL THEN phone ELSE NULLIF($4, '') END,
				roll_number = CASE WHEN $5::text IS NULL THEN roll_number ELSE NULLIF($5, '') END,
				updated_at  = now()
			WHERE id = $1`,
			principalID, upd.FullName, upd.RoomNumber, upd.Phone, upd.RollNumber)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update profile: %w", apperrors.MapDBError(err))
	}
	if affected == 0 {
		return apperrors.NotFoundf("profile %s not found", principalID)
	}
	return nil
}

// GrantRole is idempotent: an existing assignment is returned unchanged.
func (r *IdentityRepo) GrantRole(
	ctx context.Context,
	principalID string,
	role domainauth.Role,
) (*domainauth.RoleAssignment, error) {
	if !role.Valid() {
		return nil, ErrUnknownRole
	}
	ra, err := queryOne[domainauth.RoleAssignment](ctx, r.DB, `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO UPDATE SET role = EXCLUDED.role
		RETURNING `+roleColumns, principalID, string(role))
	if err != nil {
		return nil, fmt.Errorf("grant role: %w", err)
	}
	return ra, nil
}

// RevokeRole reports whether an assignment was removed.
func (r *IdentityRepo) RevokeRole(ctx context.Context, principalID string, role domainauth.Role) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, principalID, string(role))
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("revoke role: %w", apperrors.MapDBError(err))
	}
	return affected > 0, nil
}

// FindUserIDByEmail resolves a principal id from an email address.
func (r *IdentityRepo) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	u, err := queryOne[domainauth.User](ctx, r.DB,
		`SELECT id, email FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	if err != nil {
		return "", notFoundOr(err, "user", email)
	}
	return u.ID, nil
}
