//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxComplaintCategoryLen    = 64
	maxComplaintDescriptionLen = 4000
)

// ComplaintStatus tracks a complaint through triage.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "Pending"
	ComplaintInProgress ComplaintStatus = "In Progress"
	ComplaintResolved   ComplaintStatus = "Resolved"
)

// Valid reports whether the status is supported.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintPending, ComplaintInProgress, ComplaintResolved:
		return true
	default:
		return false
	}
}

// ParseComplaintStatus accepts the canonical form as well as snake/kebab case variants.
func ParseComplaintStatus(value string) (ComplaintStatus, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.NewReplacer("_", " ", "-", " ").Replace(v)
	switch v {
	case "pending":
		return ComplaintPending, true
	case "in progress":
		return ComplaintInProgress, true
	case "resolved":
		return ComplaintResolved, true
	default:
		return "", false
	}
}

// Complaint is a maintenance or service issue raised by a student.
type Complaint struct {
	ID          string          `json:"id"                    db:"id"`
	StudentID   string          `json:"student_id"            db:"student_id"`
	StudentName string          `json:"student_name"          db:"student_name"`
	RoomNumber  *string         `json:"room_number,omitempty" db:"room_number"`
	Category    string          `json:"category"              db:"category"`
	Description string          `json:"description"           db:"description"`
	Status      ComplaintStatus `json:"status"                db:"status"`
	PhotoURL    *string         `json:"photo_url,omitempty"   db:"photo_url"`
	CreatedAt   time.Time       `json:"created_at"            db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"            db:"updated_at"`
}

// CreateComplaintRequest is the student-supplied part of a new complaint.
type CreateComplaintRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Validate checks required fields and lengths.
func (r *CreateComplaintRequest) Validate() error {
	r.Category = strings.TrimSpace(r.Category)
	r.Description = strings.TrimSpace(r.Description)
	if r.Category == "" {
		return errors.New("category is required")
	}
	if utf8.RuneCountInString(r.Category) > maxComplaintCategoryLen {
		return errors.New("category is too long")
	}
	if r.Description == "" {
		return errors.New("description is required")
	}
	if utf8.RuneCountInString(r.Description) > maxComplaintDescriptionLen {
		return errors.New("description is too long")
	}
	return nil
}

// NewComplaint is the repository input: the request plus who filed it.
type NewComplaint struct {
	StudentID   string
	StudentName string
	RoomNumber  *string
	Category    string
	Description string
}

// ComplaintListOptions filters complaint listings. A nil StudentID lists everyone's complaints.
type ComplaintListOptions struct {
	StudentID *string
	Status    *ComplaintStatus
	Limit     int
	Offset    int
}

// ComplaintStats counts complaints per status.
type ComplaintStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
}

// Add folds count complaints of the given status into the totals.
func (s *ComplaintStats) Add(status ComplaintStatus, count int) {
	switch status {
	case ComplaintPending:
		s.Pending += count
	case ComplaintInProgress:
		s.InProgress += count
	case ComplaintResolved:
		s.Resolved += count
	default:
		return
	}
	s.Total += count
}
