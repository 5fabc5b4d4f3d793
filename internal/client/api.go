package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
)

// ErrSignedOut is returned by calls that need a signed-in principal when no token is held.
var ErrSignedOut = errors.New("not signed in")

// Me describes the signed-in principal.
type Me struct {
	User    domainauth.User     `json:"user"`
	IsAdmin bool                `json:"is_admin"`
	Profile *domainauth.Profile `json:"profile"`
}

// ListOptions filters and pages list calls. Zero values use server defaults.
type ListOptions struct {
	Status string
	Limit  int
	Offset int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// StudentDashboard is the caller's own overview.
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

func (c *Client) requireToken() error {
	if c.Token() == "" {
		return ErrSignedOut
	}
	return nil
}

// Me resolves the caller on the server. With fresh set the server bypasses cached roles.
func (c *Client) Me(ctx context.Context, fresh bool) (*Me, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var q url.Values
	if fresh {
		q = url.Values{"fresh": {"true"}}
	}
	var out Me
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/api/me", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Complaints lists complaints visible to the caller.
func (c *Client) Complaints(ctx context.Context, opts ListOptions) ([]*model.Complaint, error) {
	var out struct {
		Complaints []*model.Complaint `json:"complaints"`
	}
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/api/complaints", query: opts.values()}, &out)
	return out.Complaints, err
}

// SubmitComplaint files a complaint as the caller.
func (c *Client) SubmitComplaint(ctx context.Context, req model.CreateComplaintRequest) (*model.Complaint, error) {
	var out model.Complaint
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/api/complaints", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetComplaintStatus moves a complaint to status. Admin only.
func (c *Client) SetComplaintStatus(ctx context.Context, id, status string) (*model.Complaint, error) {
	var out model.Complaint
	path := "/api/complaints/" + url.PathEscape(id) + "/status"
	if _, err := c.do(ctx, request{method: http.MethodPatch, path: path, body: map[string]string{"status": status}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadComplaintPhoto attaches an image to a complaint.
func (c *Client) UploadComplaintPhoto(ctx context.Context, id, contentType string, body io.Reader) (*model.Complaint, error) {
	var out model.Complaint
	req := request{
		method:      http.MethodPut,
		path:        "/api/complaints/" + url.PathEscape(id) + "/photo",
		raw:         body,
		contentType: contentType,
	}
	if _, err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaveApplications lists leave applications visible to the caller.
func (c *Client) LeaveApplications(ctx context.Context, opts ListOptions) ([]*model.LeaveApplication, error) {
	var out struct {
		Applications []*model.LeaveApplication `json:"applications"`
	}
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/api/leave", query: opts.values()}, &out)
	return out.Applications, err
}

// SubmitLeave files a leave application as the caller.
func (c *Client) SubmitLeave(ctx context.Context, req model.CreateLeaveRequest) (*model.LeaveApplication, error) {
	var out model.LeaveApplication
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/api/leave", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetLeaveStatus approves or rejects an application. Admin only.
func (c *Client) SetLeaveStatus(ctx context.Context, id, status string) (*model.LeaveApplication, error) {
	var out model.LeaveApplication
	path := "/api/leave/" + url.PathEscape(id) + "/status"
	if _, err := c.do(ctx, request{method: http.MethodPatch, path: path, body: map[string]string{"status": status}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Notices lists the notice board, newest first.
func (c *Client) Notices(ctx context.Context, opts ListOptions) ([]*model.Notice, error) {
	var out struct {
		Notices []*model.Notice `json:"notices"`
	}
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/api/notices", query: opts.values()}, &out)
	return out.Notices, err
}

// CreateNotice publishes a notice. Admin only.
func (c *Client) CreateNotice(ctx context.Context, req model.CreateNoticeRequest) (*model.Notice, error) {
	var out model.Notice
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/api/notices", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNotice removes a notice. Admin only.
func (c *Client) DeleteNotice(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/api/notices/" + url.PathEscape(id)}, nil)
	return err
}

// Modules returns every dashboard module.
func (c *Client) Modules(ctx context.Context) (*model.DashboardModules, error) {
	var out model.DashboardModules
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/api/modules"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StudentDashboard fetches the caller's overview.
func (c *Client) StudentDashboard(ctx context.Context) (*StudentDashboard, error) {
	var out StudentDashboard
	if err := c.page(ctx, "/student-dashboard", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminDashboard fetches the hostel-wide overview. Non-admins get a forbidden error.
func (c *Client) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	var out AdminDashboard
	if err := c.page(ctx, "/admin-dashboard", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// page fetches a guarded page and turns the guard's redirects into errors.
func (c *Client) page(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path}, out)
	if err != nil {
		return err
	}
	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return nil
	}
	loc := resp.Header.Get("Location")
	if strings.HasPrefix(loc, "/login") {
		return apperrors.Unauthorized("sign in required")
	}
	return apperrors.Forbidden("admin role required")
}
