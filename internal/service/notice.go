package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hostelhub/hostel-api/internal/core"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/hostelhub/hostel-api/internal/observability/metrics"
	"github.com/hostelhub/hostel-api/internal/observability/statsd"
	"github.com/hostelhub/hostel-api/internal/ports"
)

// DefaultNoticeFreshness is how long a notice keeps its "new" badge.
const DefaultNoticeFreshness = 7 * 24 * time.Hour

// NoticeServiceOptions groups dependencies for NoticeService.
type NoticeServiceOptions struct {
	Repo   core.NoticeRepository // Required
	Logger *slog.Logger
}

// NoticeService manages the notice board. Reads are open to any signed-in principal.
type NoticeService struct {
	repo   core.NoticeRepository
	logger *slog.Logger
}

// NewNoticeService constructs a new NoticeService.
func NewNoticeService(opts NoticeServiceOptions) *NoticeService {
	if opts.Repo == nil {
		panic("NoticeRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NoticeService{repo: opts.Repo, logger: logger.With("component", "notices")}
}

// List returns notices newest first.
func (s *NoticeService) List(ctx context.Context, actor domainauth.Actor, limit, offset int) ([]*model.Notice, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Notice{}
	}
	return items, nil
}

// Get returns one notice.
func (s *NoticeService) Get(ctx context.Context, actor domainauth.Actor, id string) (*model.Notice, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Create publishes a notice. Admin only.
func (s *NoticeService) Create(
	ctx context.Context,
	actor domainauth.Actor,
	req model.CreateNoticeRequest,
) (*model.Notice, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	n, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "notice created", "notice_id", n.ID, "type", string(n.Type), "actor_id", actor.UserID)
	return n, nil
}

// Update edits a notice. Admin only.
func (s *NoticeService) Update(
	ctx context.Context,
	actor domainauth.Actor,
	id string,
	req model.UpdateNoticeRequest,
) (*model.Notice, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	n, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "notice updated", "notice_id", id, "actor_id", actor.UserID)
	return n, nil
}

// Delete removes a notice. Admin only. Unknown ids are reported as not found.
func (s *NoticeService) Delete(ctx context.Context, actor domainauth.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("notice not found")
	}
	s.logger.InfoContext(ctx, "notice deleted", "notice_id", id, "actor_id", actor.UserID)
	return nil
}

// NoticeSweeperOptions groups dependencies for NoticeSweeper.
type NoticeSweeperOptions struct {
	Repo      core.NoticeRepository // Required
	Interval  time.Duration         // Required: time between sweeps
	Freshness time.Duration         // Notices older than this lose the "new" badge
	Notifier  ports.StaffNotifier   // Optional: told when a sweep fails
	Metrics   statsd.Sink           // Optional
	Logger    *slog.Logger
}

// NoticeSweeper periodically clears the "new" badge from old notices.
type NoticeSweeper struct {
	repo      core.NoticeRepository
	interval  time.Duration
	freshness time.Duration
	notifier  ports.StaffNotifier
	metrics   statsd.Sink
	logger    *slog.Logger
	now       func() time.Time
}

// NewNoticeSweeper constructs a new NoticeSweeper.
func NewNoticeSweeper(opts NoticeSweeperOptions) (*NoticeSweeper, error) {
	if opts.Repo == nil {
		return nil, errors.New("NoticeRepository is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}
	freshness := opts.Freshness
	if freshness <= 0 {
		freshness = DefaultNoticeFreshness
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NoticeSweeper{
		repo:      opts.Repo,
		interval:  opts.Interval,
		freshness: freshness,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "notice_sweeper"),
		now:       time.Now,
	}, nil
}

// Run sweeps immediately and then on every interval until ctx is cancelled.
// Returns nil on graceful shutdown.
func (s *NoticeSweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting notice sweeper", "interval", s.interval, "freshness", s.freshness)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "notice sweeper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns the number of notices changed.
func (s *NoticeSweeper) Sweep(ctx context.Context) (int64, error) {
	return s.repo.ClearStale(ctx, s.now().Add(-s.freshness))
}

func (s *NoticeSweeper) sweep(ctx context.Context) {
	start := time.Now()
	n, err := s.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "notice sweep failed", "error", err)
			metrics.EmitSweep(s.metrics, metrics.Sweep{Duration: time.Since(start), Err: err})
			if s.notifier != nil {
				s.notifier.Notify(ctx, sweepFailedEvent(err))
			}
		}
		return
	}
	metrics.EmitSweep(s.metrics, metrics.Sweep{Cleared: n, Duration: time.Since(start)})
	if n > 0 {
		s.logger.InfoContext(ctx, "cleared stale notices", "count", n)
	}
}
