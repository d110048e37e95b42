package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// EventRepo provides CRUD operations for adventure events.  The
// current_participants column is deliberately absent from Update: it
// is a derived projection owned by the booking ledger and only
// written through RecountParticipantsTx in the booking repo.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning events and bookings.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, adventure_id, date, start_time, end_time, max_participants,
	current_participants, custom_price_cents, status, is_active, registration_deadline,
	meeting_instructions, special_notes, created_at, updated_at`

type eventScanner interface{ Scan(...any) error }

func scanEvent(row eventScanner) (*model.AdventureEvent, error) {
	var (
		e           model.AdventureEvent
		endTime     sql.NullString
		customPrice sql.NullInt64
		deadline    sql.NullTime
	)
	err := row.Scan(
		&e.ID, &e.AdventureID, &e.Date, &e.StartTime, &endTime, &e.MaxParticipants,
		&e.CurrentParticipants, &customPrice, &e.Status, &e.IsActive, &deadline,
		&e.MeetingInstructions, &e.SpecialNotes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		v := endTime.String
		e.EndTime = &v
	}
	if customPrice.Valid {
		v := customPrice.Int64
		e.CustomPriceCents = &v
	}
	if deadline.Valid {
		v := deadline.Time
		e.RegistrationDeadline = &v
	}
	return &e, nil
}

// Create inserts an event.  The (adventure, date, start_time) triple
// is unique; violations surface as ErrConflict.
func (r *EventRepo) Create(ctx context.Context, e *model.AdventureEvent) error {
	const q = `INSERT INTO adventure_events
		(adventure_id, date, start_time, end_time, max_participants, custom_price_cents,
		 status, is_active, registration_deadline, meeting_instructions, special_notes)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		e.AdventureID, e.Date.Format("2006-01-02"), e.StartTime, e.EndTime,
		e.MaxParticipants, e.CustomPriceCents, e.Status, e.IsActive,
		nullableTime(e.RegistrationDeadline), e.MeetingInstructions, e.SpecialNotes)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// Update rewrites the mutable columns of an event.  Participant
// counts are excluded; see the package comment on EventRepo.
func (r *EventRepo) Update(ctx context.Context, e *model.AdventureEvent) error {
	const q = `UPDATE adventure_events SET
		date=?, start_time=?, end_time=?, max_participants=?, custom_price_cents=?,
		status=?, is_active=?, registration_deadline=?, meeting_instructions=?, special_notes=?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		e.Date.Format("2006-01-02"), e.StartTime, e.EndTime, e.MaxParticipants,
		e.CustomPriceCents, e.Status, e.IsActive, nullableTime(e.RegistrationDeadline),
		e.MeetingInstructions, e.SpecialNotes, e.ID)
	if err != nil && isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// GetByID fetches a single event.  sql.ErrNoRows when absent.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.AdventureEvent, error) {
	return scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM adventure_events WHERE id = ?`, id))
}

// GetByIDForUpdateTx loads an event inside tx with its row locked
// (SELECT ... FOR UPDATE).  The booking ledger uses this to serialize
// the capacity check, insert and recount for one event, so two
// concurrent bookings can never both pass the capacity check.
func (r *EventRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.AdventureEvent, error) {
	return scanEvent(tx.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM adventure_events WHERE id = ? FOR UPDATE`, id))
}

// ListUpcomingByAdventure returns scheduled, active events of an
// adventure from today onward, soonest first.
func (r *EventRepo) ListUpcomingByAdventure(ctx context.Context, adventureID uint64) ([]model.AdventureEvent, error) {
	const q = `SELECT ` + eventColumns + ` FROM adventure_events
		WHERE adventure_id = ? AND is_active = 1 AND status = 'scheduled' AND date >= CURDATE()
		ORDER BY date, start_time`
	return r.list(ctx, q, adventureID)
}

// ListByAdventure returns every event of an adventure for staff views.
func (r *EventRepo) ListByAdventure(ctx context.Context, adventureID uint64) ([]model.AdventureEvent, error) {
	const q = `SELECT ` + eventColumns + ` FROM adventure_events
		WHERE adventure_id = ? ORDER BY date DESC, start_time DESC`
	return r.list(ctx, q, adventureID)
}

func (r *EventRepo) list(ctx context.Context, q string, args ...any) ([]model.AdventureEvent, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AdventureEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// nullableTime converts an optional instant to a driver value,
// normalizing to UTC the way every other timestamp is stored.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
