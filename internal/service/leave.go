package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hostelhub/hostel-api/internal/core"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/observability/metrics"
	"github.com/hostelhub/hostel-api/internal/observability/statsd"
	"github.com/hostelhub/hostel-api/internal/ports"
)

// LeaveServiceOptions groups dependencies for LeaveService.
type LeaveServiceOptions struct {
	Repo     core.LeaveRepository   // Required
	Profiles ports.RoleProfileStore // Required: source of name, roll, room and phone
	Notifier ports.StaffNotifier    // Optional: wardens are told about new applications
	Metrics  statsd.Sink            // Optional
	Logger   *slog.Logger
}

// LeaveService handles leave applications.
type LeaveService struct {
	repo     core.LeaveRepository
	profiles ports.RoleProfileStore
	notifier ports.StaffNotifier
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewLeaveService constructs a new LeaveService.
func NewLeaveService(opts LeaveServiceOptions) *LeaveService {
	if opts.Repo == nil || opts.Profiles == nil {
		panic("LeaveRepository and RoleProfileStore are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaveService{
		repo:     opts.Repo,
		profiles: opts.Profiles,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "leave"),
	}
}

// Submit files a leave application. Student details are copied from the applicant's
// profile as it stands at submission time.
func (s *LeaveService) Submit(
	ctx context.Context,
	actor domainauth.Actor,
	req model.CreateLeaveRequest,
) (*model.LeaveApplication, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	start, end, err := req.Dates()
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	profile, err := s.profiles.GetProfile(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	in := model.NewLeaveApplication{
		StudentID:          actor.UserID,
		StudentName:        displayName(actor, profile),
		LeaveType:          req.LeaveType,
		StartDate:          start,
		EndDate:            end,
		Reason:             req.Reason,
		ParentContact:      nonBlank(req.ParentContact),
		AddressDuringLeave: nonBlank(req.AddressDuringLeave),
	}
	if profile != nil {
		in.RollNumber = profile.RollNumber
		in.RoomNumber = profile.RoomNumber
		in.Phone = profile.Phone
	}
	app, err := s.repo.Create(ctx, in)
	if err != nil {
		metrics.EmitSubmission(s.metrics, metrics.Submission{Kind: "leave", Result: metrics.ResultError, Err: err})
		return nil, err
	}
	s.logger.InfoContext(ctx, "leave application submitted", "leave_id", app.ID, "student_id", actor.UserID)
	metrics.EmitSubmission(s.metrics, metrics.Submission{Kind: "leave", Result: metrics.ResultSuccess})
	if s.notifier != nil {
		s.notifier.Notify(ctx, leaveRequestedEvent(app))
	}
	return app, nil
}

// List returns applications newest first. Students only ever see their own.
func (s *LeaveService) List(
	ctx context.Context,
	actor domainauth.Actor,
	opts model.LeaveListOptions,
) ([]*model.LeaveApplication, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		opts.StudentID = ownedBy(actor)
	}
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, apperrors.ValidationField("status", "unknown leave status")
	}
	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.LeaveApplication{}
	}
	return items, nil
}

// Get returns one application. Another student's application reads as not found.
func (s *LeaveService) Get(ctx context.Context, actor domainauth.Actor, id string) (*model.LeaveApplication, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && app.StudentID != actor.UserID {
		return nil, apperrors.NotFound("leave application not found")
	}
	return app, nil
}

// UpdateStatus approves or rejects an application. Admin only.
func (s *LeaveService) UpdateStatus(
	ctx context.Context,
	actor domainauth.Actor,
	id, status string,
) (*model.LeaveApplication, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	st, ok := model.ParseLeaveStatus(status)
	if !ok {
		return nil, apperrors.ValidationField("status", "status must be one of Pending, Approved, Rejected")
	}
	app, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "leave status updated", "leave_id", id, "status", string(st), "actor_id", actor.UserID)
	return app, nil
}

// Stats counts applications per status, scoped like List.
func (s *LeaveService) Stats(ctx context.Context, actor domainauth.Actor) (*model.LeaveStats, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, ownedBy(actor))
}

func nonBlank(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
