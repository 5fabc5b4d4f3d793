// Package notify defines the staff notifications emitted when something needs a warden's
// attention, and the sinks that deliver them.
package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks, lowest first.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Kind names what happened.
type Kind string

const (
	KindComplaintFiled    Kind = "complaint_filed"
	KindLeaveRequested    Kind = "leave_requested"
	KindNoticeSweepFailed Kind = "notice_sweep_failed"
)

// Event is the canonical staff notification payload.
type Event struct {
	Kind Kind
	// SubjectID is the complaint or leave application the event is about.
	SubjectID  string
	Student    string
	Room       string
	Summary    string
	Severity   string
	OccurredAt time.Time
	Details    map[string]string
}

// Title is a short human heading for the event.
func (e Event) Title() string {
	switch e.Kind {
	case KindComplaintFiled:
		return "New complaint"
	case KindLeaveRequested:
		return "Leave request awaiting approval"
	case KindNoticeSweepFailed:
		return "Notice sweep failed"
	default:
		return string(e.Kind)
	}
}

// Path is the API path of the event's subject, or "" when it has none.
func (e Event) Path() string {
	if e.SubjectID == "" {
		return ""
	}
	switch e.Kind {
	case KindComplaintFiled:
		return "/api/complaints/" + e.SubjectID
	case KindLeaveRequested:
		return "/api/leave/" + e.SubjectID
	default:
		return ""
	}
}

// SeverityRank orders severities; unknown values rank as info.
func SeverityRank(s string) int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Sink describes a destination capable of delivering staff notifications.
type Sink interface {
	Send(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, ev Event) error

// Send implements the Sink interface.
func (f SinkFunc) Send(ctx context.Context, ev Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, ev)
}
