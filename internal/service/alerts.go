package service

import (
	"fmt"
	"time"

	"github.com/hostelhub/hostel-api/internal/domain/model"
	"github.com/hostelhub/hostel-api/internal/observability/notify"
)

func complaintFiledEvent(c *model.Complaint) notify.Event {
	return notify.Event{
		Kind:       notify.KindComplaintFiled,
		SubjectID:  c.ID,
		Student:    c.StudentName,
		Room:       derefOr(c.RoomNumber, ""),
		Summary:    fmt.Sprintf("%s: %s", c.Category, truncateRunes(c.Description, 140)),
		Severity:   notify.SeverityInfo,
		OccurredAt: c.CreatedAt,
		Details:    map[string]string{"category": c.Category},
	}
}

// leaveRequestedEvent escalates emergency and medical leave so the on-call warden is paged.
func leaveRequestedEvent(l *model.LeaveApplication) notify.Event {
	severity := notify.SeverityInfo
	if l.LeaveType == model.LeaveEmergency || l.LeaveType == model.LeaveMedical {
		severity = notify.SeverityCritical
	}
	details := map[string]string{"leave_type": string(l.LeaveType)}
	if l.ParentContact != nil {
		details["parent_contact"] = *l.ParentContact
	}
	if l.Phone != nil {
		details["phone"] = *l.Phone
	}
	summary := fmt.Sprintf("%s leave %s to %s",
		l.LeaveType, l.StartDate.Format(time.DateOnly), l.EndDate.Format(time.DateOnly))
	return notify.Event{
		Kind:       notify.KindLeaveRequested,
		SubjectID:  l.ID,
		Student:    l.StudentName,
		Room:       derefOr(l.RoomNumber, ""),
		Summary:    summary,
		Severity:   severity,
		OccurredAt: l.CreatedAt,
		Details:    details,
	}
}

func sweepFailedEvent(err error) notify.Event {
	return notify.Event{
		Kind:     notify.KindNoticeSweepFailed,
		Summary:  err.Error(),
		Severity: notify.SeverityWarning,
	}
}

func derefOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
