package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-api/internal/core"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/observability/metrics"
	"github.com/hostelhub/hostel-api/internal/observability/statsd"
	"github.com/hostelhub/hostel-api/internal/ports"
)

// photoExtensions maps accepted upload content types to object name extensions.
var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ComplaintServiceOptions groups dependencies for ComplaintService.
type ComplaintServiceOptions struct {
	Repo     core.ComplaintRepository // Required
	Profiles ports.RoleProfileStore   // Required: source of student name and room
	Photos   ports.ObjectStore        // Optional: photo uploads are rejected when nil
	Notifier ports.StaffNotifier      // Optional: wardens are told about new complaints
	Metrics  statsd.Sink              // Optional
	Logger   *slog.Logger
}

// ComplaintService files and triages student complaints.
type ComplaintService struct {
	repo     core.ComplaintRepository
	profiles ports.RoleProfileStore
	photos   ports.ObjectStore
	notifier ports.StaffNotifier
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewComplaintService constructs a new ComplaintService.
func NewComplaintService(opts ComplaintServiceOptions) *ComplaintService {
	if opts.Repo == nil || opts.Profiles == nil {
		panic("ComplaintRepository and RoleProfileStore are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ComplaintService{
		repo:     opts.Repo,
		profiles: opts.Profiles,
		photos:   opts.Photos,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "complaints"),
	}
}

// Submit files a complaint for the actor. New complaints start Pending.
func (s *ComplaintService) Submit(
	ctx context.Context,
	actor domainauth.Actor,
	req model.CreateComplaintRequest,
) (*model.Complaint, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	profile, err := s.profiles.GetProfile(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	in := model.NewComplaint{
		StudentID:   actor.UserID,
		StudentName: displayName(actor, profile),
		Category:    req.Category,
		Description: req.Description,
	}
	if profile != nil {
		in.RoomNumber = profile.RoomNumber
	}
	c, err := s.repo.Create(ctx, in)
	if err != nil {
		metrics.EmitSubmission(s.metrics, metrics.Submission{Kind: "complaint", Result: metrics.ResultError, Err: err})
		return nil, err
	}
	s.logger.InfoContext(ctx, "complaint submitted", "complaint_id", c.ID, "student_id", actor.UserID)
	metrics.EmitSubmission(s.metrics, metrics.Submission{Kind: "complaint", Result: metrics.ResultSuccess})
	if s.notifier != nil {
		s.notifier.Notify(ctx, complaintFiledEvent(c))
	}
	return c, nil
}

// List returns complaints newest first. Students only ever see their own.
func (s *ComplaintService) List(
	ctx context.Context,
	actor domainauth.Actor,
	opts model.ComplaintListOptions,
) ([]*model.Complaint, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		opts.StudentID = ownedBy(actor)
	}
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, apperrors.ValidationField("status", "unknown complaint status")
	}
	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Complaint{}
	}
	return items, nil
}

// Get returns one complaint. Another student's complaint reads as not found.
func (s *ComplaintService) Get(ctx context.Context, actor domainauth.Actor, id string) (*model.Complaint, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && c.StudentID != actor.UserID {
		return nil, apperrors.NotFound("complaint not found")
	}
	return c, nil
}

// UpdateStatus moves a complaint to status. Admin only.
func (s *ComplaintService) UpdateStatus(
	ctx context.Context,
	actor domainauth.Actor,
	id, status string,
) (*model.Complaint, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	st, ok := model.ParseComplaintStatus(status)
	if !ok {
		return nil, apperrors.ValidationField("status", "status must be one of Pending, In Progress, Resolved")
	}
	c, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "complaint status updated",
		"complaint_id", id, "status", string(st), "actor_id", actor.UserID)
	return c, nil
}

// Stats counts complaints per status, scoped like List.
func (s *ComplaintService) Stats(ctx context.Context, actor domainauth.Actor) (*model.ComplaintStats, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, ownedBy(actor))
}

// AttachPhoto uploads an image for a complaint and records its URL. Owner or admin.
func (s *ComplaintService) AttachPhoto(
	ctx context.Context,
	actor domainauth.Actor,
	id, contentType string,
	body io.Reader,
) (*model.Complaint, error) {
	if s.photos == nil {
		return nil, apperrors.Validation("photo uploads are not configured")
	}
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := photoExtensions[ct]
	if !ok {
		return nil, apperrors.ValidationField("photo", "photo must be a JPEG, PNG, WebP or GIF image")
	}

	path := fmt.Sprintf("complaints/%s/%s%s", c.ID, uuid.NewString(), ext)
	url, err := s.photos.Upload(ctx, path, ct, body)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	updated, err := s.repo.SetPhotoURL(ctx, c.ID, url)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "complaint photo attached", "complaint_id", c.ID, "object", path)
	return updated, nil
}
