package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/data/pgxutil"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/jackc/pgx/v5"
)

// NoticeRepo provides database operations for the notice board.
type NoticeRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewNoticeRepo creates a new NoticeRepo using the system clock.
func NewNoticeRepo(db *sql.DB) *NoticeRepo {
	return &NoticeRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewNoticeRepoWithTimeProvider creates a NoticeRepo with a custom clock (useful for tests).
func NewNoticeRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *NoticeRepo {
	return &NoticeRepo{DB: db, timeProvider: nowOrReal(tp)}
}

var _ core.NoticeRepository = (*NoticeRepo)(nil)

const noticeColumns = `id, title, description, type, is_new, notice_date, created_at, updated_at`

// Create inserts a notice dated now.
func (r *NoticeRepo) Create(ctx context.Context, req model.CreateNoticeRequest) (*model.Notice, error) {
	isNew := true
	if req.IsNew != nil {
		isNew = *req.IsNew
	}
	now := r.timeProvider.Now().UTC()
	n, err := queryOne[model.Notice](ctx, r.DB, `
		INSERT INTO notices (title, description, type, is_new, notice_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5, $5)
		RETURNING `+noticeColumns, req.Title, req.Description, string(req.Type), isNew, now)
	if err != nil {
		return nil, fmt.Errorf("create notice: %w", err)
	}
	return n, nil
}

// GetByID retrieves a notice by ID.
func (r *NoticeRepo) GetByID(ctx context.Context, id string) (*model.Notice, error) {
	n, err := queryOne[model.Notice](ctx, r.DB, `SELECT `+noticeColumns+` FROM notices WHERE id = $1`, id)
	if err != nil {
		return nil, notFoundOr(err, "notice", id)
	}
	return n, nil
}

// List returns notices newest first.
func (r *NoticeRepo) List(ctx context.Context, limit, offset int) ([]*model.Notice, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := queryRows[model.Notice](ctx, r.DB,
		`SELECT `+noticeColumns+` FROM notices ORDER BY notice_date DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return toPointers(rows), nil
}

// Update changes the set fields of a notice.
func (r *NoticeRepo) Update(ctx context.Context, id string, req model.UpdateNoticeRequest) (*model.Notice, error) {
	var typ *string
	if req.Type != nil {
		s := string(*req.Type)
		typ = &s
	}
	n, err := queryOne[model.Notice](ctx, r.DB, `
		UPDATE notices SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			type        = COALESCE($4, type),
			is_new      = COALESCE($5, is_new),
			updated_at  = $6
		WHERE id = $1
		RETURNING `+noticeColumns,
		id, req.Title, req.Description, typ, req.IsNew, r.timeProvider.Now().UTC())
	if err != nil {
		return nil, notFoundOr(err, "notice", id)
	}
	return n, nil
}

// Delete reports whether a notice was removed.
func (r *NoticeRepo) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete notice: %w", err)
	}
	return affected > 0, nil
}

// ClearStale drops the is_new flag from notices dated before cutoff.
func (r *NoticeRepo) ClearStale(ctx context.Context, cutoff time.Time) (int64, error) {
	affected, err := r.exec(ctx,
		`UPDATE notices SET is_new = FALSE, updated_at = now() WHERE is_new AND notice_date < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("clear stale notices: %w", err)
	}
	return affected, nil
}

func (r *NoticeRepo) exec(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		affected = tag.RowsAffected()
		return err
	})
	return affected, apperrors.MapDBError(err)
}
