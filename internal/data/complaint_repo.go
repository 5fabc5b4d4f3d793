package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/data/database"
	"github.com/hostelhub/hostel-api/internal/domain/model"
)

// ComplaintRepo provides database operations for complaints.
type ComplaintRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewComplaintRepo creates a new ComplaintRepo using the system clock.
func NewComplaintRepo(db *sql.DB) *ComplaintRepo {
	return &ComplaintRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewComplaintRepoWithTimeProvider creates a ComplaintRepo with a custom clock (useful for tests).
func NewComplaintRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ComplaintRepo {
	return &ComplaintRepo{DB: db, timeProvider: nowOrReal(tp)}
}

var _ core.ComplaintRepository = (*ComplaintRepo)(nil)

const complaintColumns = `id, student_id, student_name, room_number, category, description, status, photo_url, created_at, updated_at`

// Create inserts a new complaint with status Pending.
func (r *ComplaintRepo) Create(ctx context.Context, in model.NewComplaint) (*model.Complaint, error) {
	now := r.timeProvider.Now().UTC()
	c, err := queryOne[model.Complaint](ctx, r.DB, `
		INSERT INTO complaints (student_id, student_name, room_number, category, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+complaintColumns,
		in.StudentID, in.StudentName, in.RoomNumber, in.Category, in.Description, string(model.ComplaintPending), now)
	if err != nil {
		return nil, fmt.Errorf("create complaint: %w", err)
	}
	return c, nil
}

// GetByID retrieves a complaint by ID.
func (r *ComplaintRepo) GetByID(ctx context.Context, id string) (*model.Complaint, error) {
	c, err := queryOne[model.Complaint](ctx, r.DB, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	if err != nil {
		return nil, notFoundOr(err, "complaint", id)
	}
	return c, nil
}

// List returns complaints newest first, optionally filtered by student and status.
func (r *ComplaintRepo) List(ctx context.Context, opts model.ComplaintListOptions) ([]*model.Complaint, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	query, args := database.BuildListQuery(database.NewListQueryOptions("complaints",
		database.WithColumns(database.SplitColumns(complaintColumns)...),
		database.WithConditions(studentStatusFilter(opts.StudentID, (*string)(opts.Status))...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithOrderBy("id", "ASC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	))

	rows, err := queryRows[model.Complaint](ctx, r.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return toPointers(rows), nil
}

// UpdateStatus sets a complaint's status.
func (r *ComplaintRepo) UpdateStatus(
	ctx context.Context,
	id string,
	status model.ComplaintStatus,
) (*model.Complaint, error) {
	c, err := queryOne[model.Complaint](ctx, r.DB, `
		UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1
		RETURNING `+complaintColumns, id, string(status), r.timeProvider.Now().UTC())
	if err != nil {
		return nil, notFoundOr(err, "complaint", id)
	}
	return c, nil
}

// SetPhotoURL records the uploaded photo location for a complaint.
func (r *ComplaintRepo) SetPhotoURL(ctx context.Context, id, photoURL string) (*model.Complaint, error) {
	c, err := queryOne[model.Complaint](ctx, r.DB, `
		UPDATE complaints SET photo_url = $2, updated_at = $3 WHERE id = $1
		RETURNING `+complaintColumns, id, photoURL, r.timeProvider.Now().UTC())
	if err != nil {
		return nil, notFoundOr(err, "complaint", id)
	}
	return c, nil
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// Stats counts complaints per status, optionally for one student.
func (r *ComplaintRepo) Stats(ctx context.Context, studentID *string) (*model.ComplaintStats, error) {
	where, args := database.BuildWhere(studentStatusFilter(studentID, nil)...)
	rows, err := queryRows[statusCount](ctx, r.DB,
		`SELECT status, count(*)::int AS count FROM complaints`+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("complaint stats: %w", err)
	}
	var out model.ComplaintStats
	for _, row := range rows {
		out.Add(model.ComplaintStatus(row.Status), row.Count)
	}
	return &out, nil
}

// studentStatusFilter returns the optional student/status conditions shared by list and stats queries.
func studentStatusFilter(studentID, status *string) []database.Condition {
	return append(database.OptionalEqual("student_id", studentID), database.OptionalEqual("status", status)...)
}
