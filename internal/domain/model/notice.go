//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNoticeTitleLen       = 200
	maxNoticeDescriptionLen = 4000
)

// NoticeType categorizes a notice on the board.
type NoticeType string

const (
	NoticeEvent     NoticeType = "event"
	NoticeMess      NoticeType = "mess"
	NoticeBilling   NoticeType = "billing"
	NoticeImportant NoticeType = "important"
	NoticeGeneral   NoticeType = "general"
)

// Valid reports whether the notice type is supported.
func (t NoticeType) Valid() bool {
	switch t {
	case NoticeEvent, NoticeMess, NoticeBilling, NoticeImportant, NoticeGeneral:
		return true
	default:
		return false
	}
}

func normalizeNoticeType(t NoticeType) NoticeType {
	n := NoticeType(strings.ToLower(strings.TrimSpace(string(t))))
	if n == "" {
		return NoticeGeneral
	}
	return n
}

// Notice is an announcement published by administrators.
type Notice struct {
	ID          string     `json:"id"          db:"id"`
	Title       string     `json:"title"       db:"title"`
	Description string     `json:"description" db:"description"`
	Type        NoticeType `json:"type"        db:"type"`
	IsNew       bool       `json:"is_new"      db:"is_new"`
	Date        time.Time  `json:"date"        db:"notice_date"`
	CreatedAt   time.Time  `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"  db:"updated_at"`
}

// CreateNoticeRequest creates a notice. Type defaults to general and IsNew to true.
type CreateNoticeRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        NoticeType `json:"type"`
	IsNew       *bool      `json:"is_new,omitempty"`
}

// Validate normalizes the type and checks required fields.
func (r *CreateNoticeRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Type = normalizeNoticeType(r.Type)
	if err := validateNoticeText(r.Title, r.Description); err != nil {
		return err
	}
	if !r.Type.Valid() {
		return errors.New("type must be one of event, mess, billing, important, general")
	}
	return nil
}

// UpdateNoticeRequest changes selected notice fields.
type UpdateNoticeRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Type        *NoticeType `json:"type,omitempty"`
	IsNew       *bool       `json:"is_new,omitempty"`
}

// Validate checks whichever fields are set.
func (r *UpdateNoticeRequest) Validate() error {
	if r.Title == nil && r.Description == nil && r.Type == nil && r.IsNew == nil {
		return errors.New("at least one field must be provided")
	}
	if r.Title != nil {
		*r.Title = strings.TrimSpace(*r.Title)
		if *r.Title == "" || utf8.RuneCountInString(*r.Title) > maxNoticeTitleLen {
			return errors.New("title must be 1-200 characters")
		}
	}
	if r.Description != nil {
		*r.Description = strings.TrimSpace(*r.Description)
		if *r.Description == "" || utf8.RuneCountInString(*r.Description) > maxNoticeDescriptionLen {
			return errors.New("description must be 1-4000 characters")
		}
	}
	if r.Type != nil {
		t := normalizeNoticeType(*r.Type)
		if !t.Valid() {
			return errors.New("type must be one of event, mess, billing, important, general")
		}
		r.Type = &t
	}
	return nil
}

func validateNoticeText(title, description string) error {
	if title == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(title) > maxNoticeTitleLen {
		return errors.New("title is too long")
	}
	if description == "" {
		return errors.New("description is required")
	}
	if utf8.RuneCountInString(description) > maxNoticeDescriptionLen {
		return errors.New("description is too long")
	}
	return nil
}
