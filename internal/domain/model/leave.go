//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxLeaveReasonLen  = 2000
	maxLeaveAddressLen = 500
	maxLeaveContactLen = 32
	leaveDateLayout    = "2006-01-02"
)

// LeaveStatus is the decision state of a leave application.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

// Valid reports whether the status is supported.
func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected:
		return true
	default:
		return false
	}
}

// ParseLeaveStatus normalizes case and reports whether value names a leave status.
func ParseLeaveStatus(value string) (LeaveStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending":
		return LeavePending, true
	case "approved":
		return LeaveApproved, true
	case "rejected":
		return LeaveRejected, true
	default:
		return "", false
	}
}

// LeaveType classifies the reason for leaving the hostel.
type LeaveType string

const (
	LeaveHome      LeaveType = "home"
	LeaveMedical   LeaveType = "medical"
	LeaveEmergency LeaveType = "emergency"
	LeaveOther     LeaveType = "other"
)

// Valid reports whether the leave type is supported.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveHome, LeaveMedical, LeaveEmergency, LeaveOther:
		return true
	default:
		return false
	}
}

// LeaveApplication is a student's request to be away from the hostel.
type LeaveApplication struct {
	ID                 string      `json:"id"                             db:"id"`
	StudentID          string      `json:"student_id"                     db:"student_id"`
	StudentName        string      `json:"student_name"                   db:"student_name"`
	RollNumber         *string     `json:"roll_number,omitempty"          db:"roll_number"`
	RoomNumber         *string     `json:"room_number,omitempty"          db:"room_number"`
	Phone              *string     `json:"phone,omitempty"                db:"phone"`
	LeaveType          LeaveType   `json:"leave_type"                     db:"leave_type"`
	StartDate          time.Time   `json:"start_date"                     db:"start_date"`
	EndDate            time.Time   `json:"end_date"                       db:"end_date"`
	Reason             string      `json:"reason"                         db:"reason"`
	ParentContact      *string     `json:"parent_contact,omitempty"       db:"parent_contact"`
	AddressDuringLeave *string     `json:"address_during_leave,omitempty" db:"address_during_leave"`
	Status             LeaveStatus `json:"status"                         db:"status"`
	CreatedAt          time.Time   `json:"created_at"                     db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"                     db:"updated_at"`
}

// CreateLeaveRequest is the student-supplied part of a leave application.
// Dates use the YYYY-MM-DD layout.
type CreateLeaveRequest struct {
	LeaveType          LeaveType `json:"leave_type"`
	StartDate          string    `json:"start_date"`
	EndDate            string    `json:"end_date"`
	Reason             string    `json:"reason"`
	ParentContact      *string   `json:"parent_contact,omitempty"`
	AddressDuringLeave *string   `json:"address_during_leave,omitempty"`
}

// Dates parses and validates the request's date range.
func (r CreateLeaveRequest) Dates() (time.Time, time.Time, error) {
	start, err := time.Parse(leaveDateLayout, strings.TrimSpace(r.StartDate))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(leaveDateLayout, strings.TrimSpace(r.EndDate))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end_date cannot be before start_date")
	}
	return start, end, nil
}

// Validate checks the leave type, dates, reason and optional contact fields.
func (r *CreateLeaveRequest) Validate() error {
	r.LeaveType = LeaveType(strings.ToLower(strings.TrimSpace(string(r.LeaveType))))
	if !r.LeaveType.Valid() {
		return errors.New("leave_type must be one of home, medical, emergency, other")
	}
	if _, _, err := r.Dates(); err != nil {
		return err
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return errors.New("reason is required")
	}
	if utf8.RuneCountInString(r.Reason) > maxLeaveReasonLen {
		return errors.New("reason is too long")
	}
	if r.ParentContact != nil && utf8.RuneCountInString(*r.ParentContact) > maxLeaveContactLen {
		return errors.New("parent_contact is too long")
	}
	if r.AddressDuringLeave != nil && utf8.RuneCountInString(*r.AddressDuringLeave) > maxLeaveAddressLen {
		return errors.New("address_during_leave is too long")
	}
	return nil
}

// NewLeaveApplication is the repository input for a leave application.
type NewLeaveApplication struct {
	StudentID          string
	StudentName        string
	RollNumber         *string
	RoomNumber         *string
	Phone              *string
	LeaveType          LeaveType
	StartDate          time.Time
	EndDate            time.Time
	Reason             string
	ParentContact      *string
	AddressDuringLeave *string
}

// LeaveListOptions filters leave listings. A nil StudentID lists everyone's applications.
type LeaveListOptions struct {
	StudentID *string
	Status    *LeaveStatus
	Limit     int
	Offset    int
}

// LeaveStats counts leave applications per status.
type LeaveStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Add folds count applications of the given status into the totals.
func (s *LeaveStats) Add(status LeaveStatus, count int) {
	switch status {
	case LeavePending:
		s.Pending += count
	case LeaveApproved:
		s.Approved += count
	case LeaveRejected:
		s.Rejected += count
	default:
		return
	}
	s.Total += count
}
