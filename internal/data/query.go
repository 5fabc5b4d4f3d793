package data

import (
	"context"
	"database/sql"

	"github.com/hostelhub/hostel-api/internal/data/pgxutil"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/jackc/pgx/v5"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// queryRows runs query and scans every row into T by column name.
func queryRows[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	var out []T
	err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[T])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// queryOne runs query and scans exactly one row into T. No rows maps to a NotFound error.
func queryOne[T any](ctx context.Context, db *sql.DB, query string, args ...any) (*T, error) {
	var out T
	err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

func toPointers[T any](in []T) []*T {
	out := make([]*T, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return min(limit, maxListLimit), max(offset, 0)
}

func notFoundOr(err error, what, id string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NotFoundf("%s %s not found", what, id)
	}
	return err
}
