package core

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Service implementations depend on these interfaces, not on the data layer.

// NewAccount is the input for creating a password account with its profile and student role.
type NewAccount struct {
	Email        string
	PasswordHash string
	FullName     string
	RoomNumber   *string
}

// Credentials is the stored login material for a password account.
type Credentials struct {
	UserID       string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}

// SSOAccount identifies an externally authenticated principal.
type SSOAccount struct {
	Subject     string
	Email       string
	FullName    string
	InitialRole domainauth.Role
}

// ErrNoPassword is returned by GetCredentials for accounts provisioned through SSO only.
var ErrNoPassword = errors.New("account has no password")

// AccountRepository manages principals and their credentials.
type AccountRepository interface {
	// CreateAccount creates the principal, its profile and a student role assignment atomically.
	CreateAccount(ctx context.Context, in NewAccount) (*domainauth.User, error)
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	// EnsureSSOAccount returns the principal linked to the subject, provisioning it on first login.
	EnsureSSOAccount(ctx context.Context, in SSOAccount) (*domainauth.User, error)
}

// IdentityRepository reads and writes role assignments and profiles.
type IdentityRepository interface {
	ListRoleAssignments(ctx context.Context, principalID string) ([]domainauth.RoleAssignment, error)
	GetProfile(ctx context.Context, principalID string) (*domainauth.Profile, error)
	UpdateProfile(ctx context.Context, principalID string, upd domainauth.ProfileUpdate) error
	// GrantRole is idempotent; granting an existing role returns the existing assignment.
	GrantRole(ctx context.Context, principalID string, role domainauth.Role) (*domainauth.RoleAssignment, error)
	RevokeRole(ctx context.Context, principalID string, role domainauth.Role) (bool, error)
	FindUserIDByEmail(ctx context.Context, email string) (string, error)
}

// ComplaintRepository defines complaint data operations.
type ComplaintRepository interface {
	Create(ctx context.Context, in model.NewComplaint) (*model.Complaint, error)
	GetByID(ctx context.Context, id string) (*model.Complaint, error)
	List(ctx context.Context, opts model.ComplaintListOptions) ([]*model.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status model.ComplaintStatus) (*model.Complaint, error)
	SetPhotoURL(ctx context.Context, id, photoURL string) (*model.Complaint, error)
	Stats(ctx context.Context, studentID *string) (*model.ComplaintStats, error)
}

// LeaveRepository defines leave application data operations.
type LeaveRepository interface {
	Create(ctx context.Context, in model.NewLeaveApplication) (*model.LeaveApplication, error)
	GetByID(ctx context.Context, id string) (*model.LeaveApplication, error)
	List(ctx context.Context, opts model.LeaveListOptions) ([]*model.LeaveApplication, error)
	UpdateStatus(ctx context.Context, id string, status model.LeaveStatus) (*model.LeaveApplication, error)
	Stats(ctx context.Context, studentID *string) (*model.LeaveStats, error)
}

// NoticeRepository defines notice board data operations.
type NoticeRepository interface {
	Create(ctx context.Context, req model.CreateNoticeRequest) (*model.Notice, error)
	GetByID(ctx context.Context, id string) (*model.Notice, error)
	List(ctx context.Context, limit, offset int) ([]*model.Notice, error)
	Update(ctx context.Context, id string, req model.UpdateNoticeRequest) (*model.Notice, error)
	Delete(ctx context.Context, id string) (bool, error)
	// ClearStale drops the is_new flag from notices dated before cutoff and returns the number changed.
	ClearStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// ModuleRepository defines dashboard module data operations.
// Replace* methods swap the whole list in one transaction, assigning sort_order by position.
type ModuleRepository interface {
	ListMessMenu(ctx context.Context) ([]model.MessMenuDay, error)
	UpsertMessMenu(ctx context.Context, days []model.MessMenuDay) error
	ListContacts(ctx context.Context) ([]model.EmergencyContact, error)
	ReplaceContacts(ctx context.Context, items []model.EmergencyContact) error
	ListRules(ctx context.Context) ([]model.HostelRule, error)
	ReplaceRules(ctx context.Context, items []model.HostelRule) error
	ListLinks(ctx context.Context) ([]model.QuickLink, error)
	ReplaceLinks(ctx context.Context, items []model.QuickLink) error
	ListEvents(ctx context.Context) ([]model.HostelEvent, error)
	ReplaceEvents(ctx context.Context, items []model.HostelEvent) error
}
