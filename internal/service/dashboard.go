package service

import (
	"context"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

const dashboardNoticeLimit = 5

// DashboardService aggregates the figures shown on the student and admin dashboards.
type DashboardService struct {
	complaints *ComplaintService
	leave      *LeaveService
	notices    *NoticeService
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(complaints *ComplaintService, leave *LeaveService, notices *NoticeService) *DashboardService {
	if complaints == nil || leave == nil || notices == nil {
		panic("complaint, leave and notice services are required")
	}
	return &DashboardService{complaints: complaints, leave: leave, notices: notices}
}

// StudentDashboard is the signed-in student's overview.
type StudentDashboard struct {
	Complaints *model.ComplaintStats `json:"complaints"`
	Leave      *model.LeaveStats     `json:"leave"`
	Notices    []*model.Notice       `json:"notices"`
}

// AdminDashboard is the hostel-wide overview.
type AdminDashboard struct {
	Complaints   *model.ComplaintStats `json:"complaints"`
	Leave        *model.LeaveStats     `json:"leave"`
	PendingLeave int                   `json:"pending_leave"`
}

// Student returns the actor's own counts and the latest notices.
func (s *DashboardService) Student(ctx context.Context, actor domainauth.Actor) (*StudentDashboard, error) {
	own := actor
	own.IsAdmin = false
	out := &StudentDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Complaints, err = s.complaints.Stats(gctx, own); return })
	g.Go(func() (err error) { out.Leave, err = s.leave.Stats(gctx, own); return })
	g.Go(func() (err error) { out.Notices, err = s.notices.List(gctx, own, dashboardNoticeLimit, 0); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Admin returns hostel-wide counts. Admin only.
func (s *DashboardService) Admin(ctx context.Context, actor domainauth.Actor) (*AdminDashboard, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	out := &AdminDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Complaints, err = s.complaints.Stats(gctx, actor); return })
	g.Go(func() (err error) { out.Leave, err = s.leave.Stats(gctx, actor); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.PendingLeave = out.Leave.Pending
	return out, nil
}
