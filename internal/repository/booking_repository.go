package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// BookingRepo provides CRUD operations for bookings and owns the
// participant recount.  Write paths that touch booking status run
// inside a transaction opened by the booking ledger with the event
// row locked; the Tx-suffixed methods here expect that transaction.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for the booking ledger's
// transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, user_id, event_id, participants_count, total_price_cents,
	status, payment_status, user_notes, contact_phone, created_at, updated_at, approved_at`

func scanBooking(row eventScanner) (*model.Booking, error) {
	var (
		b          model.Booking
		approvedAt sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.EventID, &b.ParticipantsCount, &b.TotalPriceCents,
		&b.Status, &b.PaymentStatus, &b.UserNotes, &b.ContactPhone,
		&b.CreatedAt, &b.UpdatedAt, &approvedAt,
	)
	if err != nil {
		return nil, err
	}
	if approvedAt.Valid {
		v := approvedAt.Time
		b.ApprovedAt = &v
	}
	return &b, nil
}

// ExistsForUserEventTx reports whether the user already has a booking
// for the event.  Runs inside the ledger's transaction so the answer
// cannot go stale before the insert.
func (r *BookingRepo) ExistsForUserEventTx(ctx context.Context, tx *sql.Tx, userID, eventID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM bookings WHERE user_id = ? AND event_id = ? LIMIT 1`,
		userID, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a booking within the ledger's transaction and
// populates the generated ID.  A duplicate (user, event) pair is
// reported as ErrDuplicateBooking even if the existence pre-check
// raced with another writer.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(user_id, event_id, participants_count, total_price_cents, status, payment_status,
		 user_notes, contact_phone)
		VALUES (?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		b.UserID, b.EventID, b.ParticipantsCount, b.TotalPriceCents,
		b.Status, b.PaymentStatus, b.UserNotes, b.ContactPhone)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateBooking
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM bookings WHERE id = ?`, b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID fetches a single booking.  sql.ErrNoRows when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
}

// GetByIDTx fetches a booking inside a transaction with its row
// locked, so a status transition and the recount it triggers see a
// stable snapshot.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	return scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListByEvent returns every booking of an event for staff review,
// newest first.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE event_id = ? ORDER BY created_at DESC`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateStatusTx sets the booking status (and approved_at when moving
// to approved) inside the ledger's transaction.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string, approvedAt *time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, approved_at = COALESCE(?, approved_at) WHERE id = ?`,
		status, nullableTime(approvedAt), id)
	return err
}

// UpdatePaymentStatusTx sets the payment status column inside the
// ledger's transaction.
func (r *BookingRepo) UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, id uint64, paymentStatus string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET payment_status = ? WHERE id = ?`, paymentStatus, id)
	return err
}

// ApprovedParticipantsTx returns the sum of participants_count over
// approved bookings of the event, excluding one booking when
// excludeBookingID is non-zero (used when re-approving that booking).
// Runs under the event row lock taken by the ledger.
func (r *BookingRepo) ApprovedParticipantsTx(ctx context.Context, tx *sql.Tx, eventID, excludeBookingID uint64) (uint32, error) {
	var total sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT SUM(participants_count) FROM bookings
		 WHERE event_id = ? AND status = 'approved' AND id <> ?`,
		eventID, excludeBookingID).Scan(&total)
	if err != nil {
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	return uint32(total.Int64), nil
}

// RecountParticipantsTx recomputes current_participants from the sum
// of approved bookings and persists it on the event, all inside the
// ledger's transaction.  Recounting from the source of truth on every
// write avoids the drift an incremented counter accumulates from
// missed updates, at the cost of an O(n) aggregate per write.
func (r *BookingRepo) RecountParticipantsTx(ctx context.Context, tx *sql.Tx, eventID uint64) (uint32, error) {
	const q = `UPDATE adventure_events SET current_participants = (
			SELECT COALESCE(SUM(participants_count), 0) FROM bookings
			WHERE event_id = ? AND status = 'approved'
		) WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, eventID, eventID); err != nil {
		return 0, err
	}
	var current uint32
	err := tx.QueryRowContext(ctx,
		`SELECT current_participants FROM adventure_events WHERE id = ?`, eventID).Scan(&current)
	return current, err
}

// CompletedCountTx returns how many bookings the user has completed.
// The loyalty engine evaluates adventures_completed badges against
// this inside its own transaction.
func (r *BookingRepo) CompletedCountTx(ctx context.Context, tx *sql.Tx, userID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE user_id = ? AND status = 'completed'`,
		userID).Scan(&n)
	return n, err
}

// CompletedAdventureIDsTx returns the distinct adventures the user has
// completed at least once, for specific_adventure badge checks.
func (r *BookingRepo) CompletedAdventureIDsTx(ctx context.Context, tx *sql.Tx, userID uint64) (map[uint64]bool, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT e.adventure_id FROM bookings b
		 JOIN adventure_events e ON e.id = b.event_id
		 WHERE b.user_id = ? AND b.status = 'completed'`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
