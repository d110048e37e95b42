package repository

import (
	"context"
	"database/sql"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// AdventureRepo provides CRUD operations for adventures and their
// pricing tiers.  Tiers are small and always consumed as the full set
// for one adventure, so they are loaded eagerly and resolved in
// memory by the pricing service.  All timestamp columns are stored in
// UTC.
type AdventureRepo struct {
	db *sql.DB
}

// NewAdventureRepo returns a new AdventureRepo bound to the given database.
func NewAdventureRepo(db *sql.DB) *AdventureRepo { return &AdventureRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// that span several repositories.
func (r *AdventureRepo) DB() *sql.DB { return r.db }

const adventureColumns = `id, title, slug, short_description, description, difficulty,
	duration_hours, min_participants, max_participants, location, meeting_point,
	base_price_cents, is_featured, is_active, show_in_listing, created_at, updated_at`

func scanAdventure(row interface{ Scan(...any) error }) (*model.Adventure, error) {
	var a model.Adventure
	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &a.ShortDescription, &a.Description, &a.Difficulty,
		&a.DurationHours, &a.MinParticipants, &a.MaxParticipants, &a.Location, &a.MeetingPoint,
		&a.BasePriceCents, &a.IsFeatured, &a.IsActive, &a.ShowInListing, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an adventure and populates its generated ID and
// timestamps.  min_participants <= max_participants is validated by
// the handler before this point.
func (r *AdventureRepo) Create(ctx context.Context, a *model.Adventure) error {
	const q = `INSERT INTO adventures
		(title, slug, short_description, description, difficulty, duration_hours,
		 min_participants, max_participants, location, meeting_point,
		 base_price_cents, is_featured, is_active, show_in_listing)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		a.Title, a.Slug, a.ShortDescription, a.Description, a.Difficulty, a.DurationHours,
		a.MinParticipants, a.MaxParticipants, a.Location, a.MeetingPoint,
		a.BasePriceCents, a.IsFeatured, a.IsActive, a.ShowInListing)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict // slug already taken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM adventures WHERE id = ?`, a.ID).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

// Update rewrites the mutable columns of an adventure.
func (r *AdventureRepo) Update(ctx context.Context, a *model.Adventure) error {
	const q = `UPDATE adventures SET
		title=?, short_description=?, description=?, difficulty=?, duration_hours=?,
		min_participants=?, max_participants=?, location=?, meeting_point=?,
		base_price_cents=?, is_featured=?, is_active=?, show_in_listing=?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		a.Title, a.ShortDescription, a.Description, a.Difficulty, a.DurationHours,
		a.MinParticipants, a.MaxParticipants, a.Location, a.MeetingPoint,
		a.BasePriceCents, a.IsFeatured, a.IsActive, a.ShowInListing, a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also 0 for no-change updates; confirm existence.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM adventures WHERE id=?`, a.ID).Scan(&one); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a single adventure.  sql.ErrNoRows when absent.
func (r *AdventureRepo) GetByID(ctx context.Context, id uint64) (*model.Adventure, error) {
	return scanAdventure(r.db.QueryRowContext(ctx,
		`SELECT `+adventureColumns+` FROM adventures WHERE id = ?`, id))
}

// GetBySlug fetches a single adventure by its unique slug.
func (r *AdventureRepo) GetBySlug(ctx context.Context, slug string) (*model.Adventure, error) {
	return scanAdventure(r.db.QueryRowContext(ctx,
		`SELECT `+adventureColumns+` FROM adventures WHERE slug = ?`, slug))
}

// ListPublic returns active, listed adventures ordered the way the
// storefront shows them: featured first, then newest.
func (r *AdventureRepo) ListPublic(ctx context.Context) ([]model.Adventure, error) {
	const q = `SELECT ` + adventureColumns + ` FROM adventures
		WHERE is_active = 1 AND show_in_listing = 1
		ORDER BY is_featured DESC, created_at DESC`
	return r.list(ctx, q)
}

// ListAll returns every adventure for staff management views.
func (r *AdventureRepo) ListAll(ctx context.Context) ([]model.Adventure, error) {
	return r.list(ctx, `SELECT `+adventureColumns+` FROM adventures ORDER BY created_at DESC`)
}

func (r *AdventureRepo) list(ctx context.Context, q string, args ...any) ([]model.Adventure, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Adventure, 0)
	for rows.Next() {
		a, err := scanAdventure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// TiersByAdventure returns all pricing tiers of an adventure ordered
// by start date.  The pricing service applies its own tie-break when
// several tiers cover the same instant, so no filtering happens here.
func (r *AdventureRepo) TiersByAdventure(ctx context.Context, adventureID uint64) ([]model.PricingTier, error) {
	const q = `SELECT id, adventure_id, name, price_cents, start_date, end_date,
		is_active, created_at, updated_at
		FROM pricing_tiers WHERE adventure_id = ? ORDER BY start_date, id`
	rows, err := r.db.QueryContext(ctx, q, adventureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PricingTier, 0)
	for rows.Next() {
		var t model.PricingTier
		if err := rows.Scan(&t.ID, &t.AdventureID, &t.Name, &t.PriceCents,
			&t.StartDate, &t.EndDate, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTier inserts a pricing tier and populates its generated ID.
func (r *AdventureRepo) CreateTier(ctx context.Context, t *model.PricingTier) error {
	const q = `INSERT INTO pricing_tiers
		(adventure_id, name, price_cents, start_date, end_date, is_active)
		VALUES (?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		t.AdventureID, t.Name, t.PriceCents, t.StartDate.UTC(), t.EndDate.UTC(), t.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// UpdateTier rewrites the mutable columns of a pricing tier.
func (r *AdventureRepo) UpdateTier(ctx context.Context, t *model.PricingTier) error {
	const q = `UPDATE pricing_tiers SET name=?, price_cents=?, start_date=?, end_date=?, is_active=?
		WHERE id = ? AND adventure_id = ?`
	_, err := r.db.ExecContext(ctx, q,
		t.Name, t.PriceCents, t.StartDate.UTC(), t.EndDate.UTC(), t.IsActive, t.ID, t.AdventureID)
	return err
}

// DeleteTier removes a pricing tier.
func (r *AdventureRepo) DeleteTier(ctx context.Context, adventureID, tierID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM pricing_tiers WHERE id = ? AND adventure_id = ?`, tierID, adventureID)
	return err
}
