package service

import (
	"context"
	"log/slog"

	"github.com/hostelhub/hostel-api/internal/core"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"golang.org/x/sync/errgroup"
)

// ModuleServiceOptions groups dependencies for ModuleService.
type ModuleServiceOptions struct {
	Repo   core.ModuleRepository // Required
	Logger *slog.Logger
}

// ModuleService serves the dashboard modules: mess menu, emergency contacts,
// hostel rules, quick links and events.
type ModuleService struct {
	repo   core.ModuleRepository
	logger *slog.Logger
}

// NewModuleService constructs a new ModuleService.
func NewModuleService(opts ModuleServiceOptions) *ModuleService {
	if opts.Repo == nil {
		panic("ModuleRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ModuleService{repo: opts.Repo, logger: logger.With("component", "modules")}
}

// All loads every module concurrently.
func (s *ModuleService) All(ctx context.Context, actor domainauth.Actor) (*model.DashboardModules, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	out := &model.DashboardModules{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.MessMenu, err = s.repo.ListMessMenu(gctx); return })
	g.Go(func() (err error) { out.EmergencyContacts, err = s.repo.ListContacts(gctx); return })
	g.Go(func() (err error) { out.HostelRules, err = s.repo.ListRules(gctx); return })
	g.Go(func() (err error) { out.QuickLinks, err = s.repo.ListLinks(gctx); return })
	g.Go(func() (err error) { out.Events, err = s.repo.ListEvents(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	fillEmpty(out)
	return out, nil
}

func fillEmpty(m *model.DashboardModules) {
	if m.MessMenu == nil {
		m.MessMenu = []model.MessMenuDay{}
	}
	if m.EmergencyContacts == nil {
		m.EmergencyContacts = []model.EmergencyContact{}
	}
	if m.HostelRules == nil {
		m.HostelRules = []model.HostelRule{}
	}
	if m.QuickLinks == nil {
		m.QuickLinks = []model.QuickLink{}
	}
	if m.Events == nil {
		m.Events = []model.HostelEvent{}
	}
}

// SaveMessMenu upserts the menu for the given days. Admin only.
func (s *ModuleService) SaveMessMenu(ctx context.Context, actor domainauth.Actor, days []model.MessMenuDay) error {
	return s.save(ctx, actor, "mess_menu", len(days),
		func() error { return model.ValidateMessMenu(days) },
		func() error { return s.repo.UpsertMessMenu(ctx, days) })
}

// SaveContacts replaces the emergency contacts. Admin only.
func (s *ModuleService) SaveContacts(ctx context.Context, actor domainauth.Actor, items []model.EmergencyContact) error {
	return s.save(ctx, actor, "emergency_contacts", len(items),
		func() error { return model.ValidateContacts(items) },
		func() error { return s.repo.ReplaceContacts(ctx, items) })
}

// SaveRules replaces the hostel rules. Admin only.
func (s *ModuleService) SaveRules(ctx context.Context, actor domainauth.Actor, items []model.HostelRule) error {
	return s.save(ctx, actor, "hostel_rules", len(items),
		func() error { return model.ValidateRules(items) },
		func() error { return s.repo.ReplaceRules(ctx, items) })
}

// SaveLinks replaces the quick links. Admin only.
func (s *ModuleService) SaveLinks(ctx context.Context, actor domainauth.Actor, items []model.QuickLink) error {
	return s.save(ctx, actor, "quick_links", len(items),
		func() error { return model.ValidateLinks(items) },
		func() error { return s.repo.ReplaceLinks(ctx, items) })
}

// SaveEvents replaces the events. Admin only.
func (s *ModuleService) SaveEvents(ctx context.Context, actor domainauth.Actor, items []model.HostelEvent) error {
	return s.save(ctx, actor, "events", len(items),
		func() error { return model.ValidateEvents(items) },
		func() error { return s.repo.ReplaceEvents(ctx, items) })
}

func (s *ModuleService) save(
	ctx context.Context,
	actor domainauth.Actor,
	module string,
	count int,
	validate, write func() error,
) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := validate(); err != nil {
		return apperrors.Validation(err.Error())
	}
	if err := write(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "module saved", "module", module, "items", count, "actor_id", actor.UserID)
	return nil
}
