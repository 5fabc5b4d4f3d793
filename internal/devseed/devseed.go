// Package devseed loads demo accounts and hostel data for local development.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/data"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "hostel123"

// Services bundles the repositories needed for development seeding.
type Services struct {
	Accounts   core.AccountRepository
	Identity   core.IdentityRepository
	Notices    core.NoticeRepository
	Modules    core.ModuleRepository
	Complaints core.ComplaintRepository
	Leave      core.LeaveRepository
	// Now anchors seeded dates. Defaults to time.Now.
	Now func() time.Time
}

// NewServices constructs the seeding repositories over db.
func NewServices(db *sql.DB) Services {
	return Services{
		Accounts:   data.NewAccountRepo(db),
		Identity:   data.NewIdentityRepo(db),
		Notices:    data.NewNoticeRepo(db),
		Modules:    data.NewModuleRepo(db),
		Complaints: data.NewComplaintRepo(db),
		Leave:      data.NewLeaveRepo(db),
	}
}

type accountSeed struct {
	Email    string
	FullName string
	Room     string
	Admin    bool
}

func defaultAccounts() []accountSeed {
	return []accountSeed{
		{Email: "warden@hostel.test", FullName: "Meera Iyer", Admin: true},
		{Email: "asha@hostel.test", FullName: "Asha Rao", Room: "B-204"},
		{Email: "ravi@hostel.test", FullName: "Ravi Kumar", Room: "C-110"},
	}
}

// Run seeds every dataset. It is safe to run repeatedly: existing accounts are reused and
// per-student records are only created for students that have none.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if svcs.Now == nil {
		svcs.Now = time.Now
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	failures := 0
	students := make(map[string]accountSeed)
	for _, acct := range defaultAccounts() {
		id, err := ensureAccount(ctx, svcs, acct, string(hash))
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed account", "email", acct.Email, "error", err)
			failures++
			continue
		}
		logger.InfoContext(ctx, "seeded account", "email", acct.Email, "admin", acct.Admin)
		if !acct.Admin {
			students[id] = acct
		}
	}

	if err := seedModules(ctx, svcs.Modules, svcs.Now()); err != nil {
		logger.ErrorContext(ctx, "failed to seed modules", "error", err)
		failures++
	}
	if err := seedNotices(ctx, svcs.Notices, logger); err != nil {
		logger.ErrorContext(ctx, "failed to seed notices", "error", err)
		failures++
	}
	for id, acct := range students {
		if err := seedStudentRecords(ctx, svcs, id, acct); err != nil {
			logger.ErrorContext(ctx, "failed to seed student records", "email", acct.Email, "error", err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func ensureAccount(ctx context.Context, svcs Services, acct accountSeed, hash string) (string, error) {
	var room *string
	if acct.Room != "" {
		room = &acct.Room
	}
	user, err := svcs.Accounts.CreateAccount(ctx, core.NewAccount{
		Email:        acct.Email,
		PasswordHash: hash,
		FullName:     acct.FullName,
		RoomNumber:   room,
	})
	var id string
	switch {
	case err == nil:
		id = user.ID
	case apperrors.IsConflict(err):
		id, err = svcs.Identity.FindUserIDByEmail(ctx, acct.Email)
		if err != nil {
			return "", fmt.Errorf("find existing account: %w", err)
		}
	default:
		return "", err
	}

	if acct.Admin {
		if _, err := svcs.Identity.GrantRole(ctx, id, domainauth.RoleAdmin); err != nil {
			return "", fmt.Errorf("grant admin: %w", err)
		}
	}
	return id, nil
}

func seedModules(ctx context.Context, repo core.ModuleRepository, now time.Time) error {
	menu := []model.MessMenuDay{
		{Day: "Monday", Breakfast: "Idli, sambar", Lunch: "Rice, dal, cabbage", Dinner: "Chapati, paneer"},
		{Day: "Tuesday", Breakfast: "Poha", Lunch: "Rice, rajma", Dinner: "Chapati, mixed veg"},
		{Day: "Wednesday", Breakfast: "Dosa", Lunch: "Biryani, raita", Dinner: "Chapati, chana"},
		{Day: "Thursday", Breakfast: "Upma", Lunch: "Rice, sambar, beans", Dinner: "Chapati, aloo gobi"},
		{Day: "Friday", Breakfast: "Paratha, curd", Lunch: "Rice, kadhi", Dinner: "Fried rice, manchurian"},
		{Day: "Saturday", Breakfast: "Puri, bhaji", Lunch: "Rice, dal fry", Dinner: "Chapati, egg curry"},
		{Day: "Sunday", Breakfast: "Bread, omelette", Lunch: "Special thali", Dinner: "Khichdi"},
	}
	if err := repo.UpsertMessMenu(ctx, menu); err != nil {
		return fmt.Errorf("mess menu: %w", err)
	}

	contacts := []model.EmergencyContact{
		{Name: "Meera Iyer", Role: "Chief Warden", Phone: "+91 90000 00001", SortOrder: 1},
		{Name: "Campus Security", Role: "Security desk", Phone: "+91 90000 00002", SortOrder: 2},
		{Name: "Health Centre", Role: "Medical", Phone: "+91 90000 00003", SortOrder: 3},
	}
	if err := repo.ReplaceContacts(ctx, contacts); err != nil {
		return fmt.Errorf("contacts: %w", err)
	}

	rules := []model.HostelRule{
		{Rule: "Gates close at 10:30 PM.", SortOrder: 1},
		{Rule: "Visitors are allowed in the common room only.", SortOrder: 2},
		{Rule: "Apply for leave at least a day before travelling.", SortOrder: 3},
	}
	if err := repo.ReplaceRules(ctx, rules); err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	links := []model.QuickLink{
		{Title: "Fee portal", URL: "https://fees.hostel.test", Icon: "credit-card", SortOrder: 1},
		{Title: "Library", URL: "https://library.hostel.test", Icon: "book", SortOrder: 2},
	}
	if err := repo.ReplaceLinks(ctx, links); err != nil {
		return fmt.Errorf("links: %w", err)
	}

	evening, hall := "18:00", "Common hall"
	events := []model.HostelEvent{
		{Title: "Welcome night", EventDate: now.AddDate(0, 0, 7), EventTime: &evening, Location: &hall, SortOrder: 1},
		{Title: "Blood donation camp", EventDate: now.AddDate(0, 0, 14), SortOrder: 2},
	}
	if err := repo.ReplaceEvents(ctx, events); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	return nil
}

func seedNotices(ctx context.Context, repo core.NoticeRepository, logger *slog.Logger) error {
	existing, err := repo.List(ctx, 1, 0)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.InfoContext(ctx, "notices already present; skipping")
		return nil
	}
	notices := []model.CreateNoticeRequest{
		{Title: "Water outage on Sunday", Description: "No water supply from 9 AM to 1 PM.", Type: model.NoticeImportant},
		{Title: "Mess fee due", Description: "Pay this month's mess fee by the 10th.", Type: model.NoticeBilling},
		{Title: "Festive dinner", Description: "Special dinner on Saturday night.", Type: model.NoticeMess},
	}
	for _, n := range notices {
		if _, err := repo.Create(ctx, n); err != nil {
			return fmt.Errorf("create notice %q: %w", n.Title, err)
		}
	}
	return nil
}

func seedStudentRecords(ctx context.Context, svcs Services, studentID string, acct accountSeed) error {
	room := &acct.Room
	existing, err := svcs.Complaints.List(ctx, model.ComplaintListOptions{StudentID: &studentID, Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		if _, err := svcs.Complaints.Create(ctx, model.NewComplaint{
			StudentID:   studentID,
			StudentName: acct.FullName,
			RoomNumber:  room,
			Category:    "Plumbing",
			Description: "Bathroom tap leaks through the night.",
		}); err != nil {
			return fmt.Errorf("complaint: %w", err)
		}
	}

	leave, err := svcs.Leave.List(ctx, model.LeaveListOptions{StudentID: &studentID, Limit: 1})
	if err != nil {
		return err
	}
	if len(leave) > 0 {
		return nil
	}
	start := svcs.Now().AddDate(0, 0, 3).Truncate(24 * time.Hour)
	_, err = svcs.Leave.Create(ctx, model.NewLeaveApplication{
		StudentID:   studentID,
		StudentName: acct.FullName,
		RoomNumber:  room,
		LeaveType:   model.LeaveHome,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 2),
		Reason:      "Family function at home.",
	})
	if err != nil {
		return fmt.Errorf("leave: %w", err)
	}
	return nil
}
