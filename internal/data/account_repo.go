package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/data/pgxutil"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/jackc/pgx/v5"
)

// AccountRepo provides database operations for principals and credentials.
type AccountRepo struct {
	DB *sql.DB
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{DB: db}
}

var _ core.AccountRepository = (*AccountRepo)(nil)

// CreateAccount inserts the principal, its profile and a student role assignment in one transaction.
func (r *AccountRepo) CreateAccount(ctx context.Context, in core.NewAccount) (*domainauth.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.PasswordHash == "" {
		return nil, apperrors.Validation("email and password hash are required")
	}

	var user domainauth.User
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, email`,
			email, in.PasswordHash)
		if err != nil {
			return err
		}
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.User])
		if err != nil {
			return err
		}
		return provisionIdentity(ctx, tx, user.ID, in.FullName, in.RoomNumber, domainauth.RoleStudent)
	}})
	if err != nil {
		mapped := apperrors.MapDBError(err)
		if apperrors.IsConflict(mapped) {
			return nil, &apperrors.AppError{
				Code:    apperrors.ErrCodeConflict,
				Message: "an account with this email already exists",
				Field:   "email",
				Cause:   err,
			}
		}
		return nil, fmt.Errorf("create account: %w", mapped)
	}
	return &user, nil
}

// GetCredentials looks up login material by email, case-insensitively.
func (r *AccountRepo) GetCredentials(ctx context.Context, email string) (*core.Credentials, error) {
	creds, err := queryOne[core.Credentials](ctx, r.DB, `
		SELECT id, email, COALESCE(password_hash, '') AS password_hash
		FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if creds.PasswordHash == "" {
		return nil, ErrNoPassword
	}
	return creds, nil
}

// EnsureSSOAccount returns the principal bound to the IdP subject. An existing password account
// with the same email is linked; otherwise a new principal is provisioned with InitialRole.
func (r *AccountRepo) EnsureSSOAccount(ctx context.Context, in core.SSOAccount) (*domainauth.User, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, apperrors.Validation("sso subject is required")
	}
	role := in.InitialRole
	if !role.Valid() {
		role = domainauth.RoleStudent
	}

	var user domainauth.User
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		found, err := collectUser(ctx, tx, `SELECT id, email FROM users WHERE sso_subject = $1`, in.Subject)
		if err != nil || found != nil {
			if found != nil {
				user = *found
			}
			return err
		}

		found, err = collectUser(ctx, tx, `
			UPDATE users SET sso_subject = $1, updated_at = now()
			WHERE lower(email) = lower($2) AND sso_subject IS NULL
			RETURNING id, email`, in.Subject, in.Email)
		if err != nil || found != nil {
			if found != nil {
				user = *found
			}
			return err
		}

		found, err = collectUser(ctx, tx,
			`INSERT INTO users (email, sso_subject) VALUES ($1, $2) RETURNING id, email`, in.Email, in.Subject)
		if err != nil {
			return err
		}
		user = *found
		name := strings.TrimSpace(in.FullName)
		if name == "" {
			name = in.Email
		}
		return provisionIdentity(ctx, tx, user.ID, name, nil, role)
	}})
	if err != nil {
		return nil, fmt.Errorf("ensure sso account: %w", apperrors.MapDBError(err))
	}
	return &user, nil
}

func collectUser(ctx context.Context, tx pgx.Tx, query string, args ...any) (*domainauth.User, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domainauth.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func provisionIdentity(
	ctx context.Context,
	tx pgx.Tx,
	userID, fullName string,
	room *string,
	role domainauth.Role,
) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO profiles (id, full_name, room_number) VALUES ($1, $2, NULLIF($3, ''))`,
		userID, strings.TrimSpace(fullName), room); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, string(role))
	return err
}
