package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/data/database"
	"github.com/hostelhub/hostel-api/internal/domain/model"
)

// LeaveRepo provides database operations for leave applications.
type LeaveRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewLeaveRepo creates a new LeaveRepo using the system clock.
func NewLeaveRepo(db *sql.DB) *LeaveRepo {
	return &LeaveRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewLeaveRepoWithTimeProvider creates a LeaveRepo with a custom clock (useful for tests).
func NewLeaveRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *LeaveRepo {
	return &LeaveRepo{DB: db, timeProvider: nowOrReal(tp)}
}

var _ core.LeaveRepository = (*LeaveRepo)(nil)

const leaveColumns = `id, student_id, student_name, roll_number, room_number, phone, leave_type,
	start_date, end_date, reason, parent_contact, address_during_leave, status, created_at, updated_at`

// Create inserts a new leave application with status Pending.
func (r *LeaveRepo) Create(ctx context.Context, in model.NewLeaveApplication) (*model.LeaveApplication, error) {
	now := r.timeProvider.Now().UTC()
	la, err := queryOne[model.LeaveApplication](ctx, r.DB, `
		INSERT INTO leave_applications (
			student_id, student_name, roll_number, room_number, phone, leave_type,
			start_date, end_date, reason, parent_contact, address_during_leave, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING `+leaveColumns,
		in.StudentID, in.StudentName, in.RollNumber, in.RoomNumber, in.Phone, string(in.LeaveType),
		in.StartDate, in.EndDate, in.Reason, in.ParentContact, in.AddressDuringLeave,
		string(model.LeavePending), now)
	if err != nil {
		return nil, fmt.Errorf("create leave application: %w", err)
	}
	return la, nil
}

// GetByID retrieves a leave application by ID.
func (r *LeaveRepo) GetByID(ctx context.Context, id string) (*model.LeaveApplication, error) {
	la, err := queryOne[model.LeaveApplication](ctx, r.DB,
		`SELECT `+leaveColumns+` FROM leave_applications WHERE id = $1`, id)
	if err != nil {
		return nil, notFoundOr(err, "leave application", id)
	}
	return la, nil
}

// List returns leave applications newest first, optionally filtered by student and status.
func (r *LeaveRepo) List(ctx context.Context, opts model.LeaveListOptions) ([]*model.LeaveApplication, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	query, args := database.BuildListQuery(database.NewListQueryOptions("leave_applications",
		database.WithColumns(database.SplitColumns(leaveColumns)...),
		database.WithConditions(studentStatusFilter(opts.StudentID, (*string)(opts.Status))...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithOrderBy("id", "ASC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	))

	rows, err := queryRows[model.LeaveApplication](ctx, r.DB, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave applications: %w", err)
	}
	return toPointers(rows), nil
}

// UpdateStatus records the admin decision on a leave application.
func (r *LeaveRepo) UpdateStatus(
	ctx context.Context,
	id string,
	status model.LeaveStatus,
) (*model.LeaveApplication, error) {
	la, err := queryOne[model.LeaveApplication](ctx, r.DB, `
		UPDATE leave_applications SET status = $2, updated_at = $3 WHERE id = $1
		RETURNING `+leaveColumns, id, string(status), r.timeProvider.Now().UTC())
	if err != nil {
		return nil, notFoundOr(err, "leave application", id)
	}
	return la, nil
}

// Stats counts leave applications per status, optionally for one student.
func (r *LeaveRepo) Stats(ctx context.Context, studentID *string) (*model.LeaveStats, error) {
	where, args := database.BuildWhere(studentStatusFilter(studentID, nil)...)
	rows, err := queryRows[statusCount](ctx, r.DB,
		`SELECT status, count(*)::int AS count FROM leave_applications`+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("leave stats: %w", err)
	}
	var out model.LeaveStats
	for _, row := range rows {
		out.Add(model.LeaveStatus(row.Status), row.Count)
	}
	return &out, nil
}
