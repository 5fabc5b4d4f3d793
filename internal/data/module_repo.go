package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hostelhub/hostel-api/internal/core"
	"github.com/hostelhub/hostel-api/internal/data/pgxutil"
	"github.com/hostelhub/hostel-api/internal/domain/model"
	apperrors "github.com/hostelhub/hostel-api/internal/errors"
	"github.com/jackc/pgx/v5"
)

// ModuleRepo provides database operations for the dashboard modules.
type ModuleRepo struct {
	DB *sql.DB
}

// NewModuleRepo creates a new ModuleRepo.
func NewModuleRepo(db *sql.DB) *ModuleRepo {
	return &ModuleRepo{DB: db}
}

var _ core.ModuleRepository = (*ModuleRepo)(nil)

// ListMessMenu returns the menu in weekday order.
func (r *ModuleRepo) ListMessMenu(ctx context.Context) ([]model.MessMenuDay, error) {
	out, err := queryRows[model.MessMenuDay](ctx, r.DB, `
		SELECT id, day, breakfast, lunch, dinner, updated_at FROM mess_menu
		ORDER BY array_position(ARRAY['Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'], day)`)
	if err != nil {
		return nil, fmt.Errorf("list mess menu: %w", err)
	}
	return out, nil
}

// UpsertMessMenu inserts or updates each day keyed by weekday.
func (r *ModuleRepo) UpsertMessMenu(ctx context.Context, days []model.MessMenuDay) error {
	return r.inTx(ctx, "upsert mess menu", func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, d := range days {
			batch.Queue(`
				INSERT INTO mess_menu (day, breakfast, lunch, dinner, updated_at)
				VALUES ($1, $2, $3, $4, now())
				ON CONFLICT (day) DO UPDATE SET
					breakfast = EXCLUDED.breakfast,
					lunch = EXCLUDED.lunch,
					dinner = EXCLUDED.dinner,
					updated_at = now()`, d.Day, d.Breakfast, d.Lunch, d.Dinner)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// ListContacts returns emergency contacts in display order.
func (r *ModuleRepo) ListContacts(ctx context.Context) ([]model.EmergencyContact, error) {
	out, err := queryRows[model.EmergencyContact](ctx, r.DB,
		`SELECT id, name, role, phone, sort_order FROM emergency_contacts ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list emergency contacts: %w", err)
	}
	return out, nil
}

// ReplaceContacts swaps the whole contact list.
func (r *ModuleRepo) ReplaceContacts(ctx context.Context, items []model.EmergencyContact) error {
	return r.replace(ctx, "emergency_contacts", len(items), func(b *pgx.Batch, i int) {
		b.Queue(`INSERT INTO emergency_contacts (name, role, phone, sort_order) VALUES ($1, $2, $3, $4)`,
			items[i].Name, items[i].Role, items[i].Phone, i)
	})
}

// ListRules returns hostel rules in display order.
func (r *ModuleRepo) ListRules(ctx context.Context) ([]model.HostelRule, error) {
	out, err := queryRows[model.HostelRule](ctx, r.DB,
		`SELECT id, rule, sort_order FROM hostel_rules ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list hostel rules: %w", err)
	}
	return out, nil
}

// ReplaceRules swaps the whole rule list.
func (r *ModuleRepo) ReplaceRules(ctx context.Context, items []model.HostelRule) error {
	return r.replace(ctx, "hostel_rules", len(items), func(b *pgx.Batch, i int) {
		b.Queue(`INSERT INTO hostel_rules (rule, sort_order) VALUES ($1, $2)`, items[i].Rule, i)
	})
}

// ListLinks returns quick links in display order.
func (r *ModuleRepo) ListLinks(ctx context.Context) ([]model.QuickLink, error) {
	out, err := queryRows[model.QuickLink](ctx, r.DB,
		`SELECT id, title, url, icon, sort_order FROM quick_links ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list quick links: %w", err)
	}
	return out, nil
}

// ReplaceLinks swaps the whole link list.
func (r *ModuleRepo) ReplaceLinks(ctx context.Context, items []model.QuickLink) error {
	return r.replace(ctx, "quick_links", len(items), func(b *pgx.Batch, i int) {
		b.Queue(`INSERT INTO quick_links (title, url, icon, sort_order) VALUES ($1, $2, $3, $4)`,
			items[i].Title, items[i].URL, items[i].Icon, i)
	})
}

// ListEvents returns events by date.
func (r *ModuleRepo) ListEvents(ctx context.Context) ([]model.HostelEvent, error) {
	out, err := queryRows[model.HostelEvent](ctx, r.DB, `
		SELECT id, title, event_date, event_time, location, sort_order
		FROM hostel_events ORDER BY event_date, sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// ReplaceEvents swaps the whole event list.
func (r *ModuleRepo) ReplaceEvents(ctx context.Context, items []model.HostelEvent) error {
	return r.replace(ctx, "hostel_events", len(items), func(b *pgx.Batch, i int) {
		b.Queue(`INSERT INTO hostel_events (title, event_date, event_time, location, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			items[i].Title, items[i].EventDate, items[i].EventTime, items[i].Location, i)
	})
}

// replace deletes every row of table and queues n inserts in one transaction.
// table is always one of the constant module table names above.
func (r *ModuleRepo) replace(ctx context.Context, table string, n int, queue func(*pgx.Batch, int)) error {
	return r.inTx(ctx, "replace "+table, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM ` + pgx.Identifier{table}.Sanitize())
		for i := range n {
			queue(batch, i)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *ModuleRepo) inTx(ctx context.Context, op string, fn func(pgx.Tx) error) error {
	if err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: fn}); err != nil {
		return fmt.Errorf("%s: %w", op, apperrors.MapDBError(err))
	}
	return nil
}
