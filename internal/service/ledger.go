package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
)

// BookingLedger owns every write to the bookings table.  All writes
// run in a transaction that locks the event row first, so the
// duplicate check, the capacity check and the participant recount all
// see the same snapshot and two concurrent registrations cannot both
// take the last seat.
type BookingLedger struct {
	db         *sql.DB
	bookings   *repository.BookingRepo
	events     *repository.EventRepo
	adventures *repository.AdventureRepo
	loc        *time.Location
	log        zerolog.Logger
}

// NewBookingLedger wires the ledger with its repositories and the
// business timezone used to interpret event dates.
func NewBookingLedger(db *sql.DB, bookings *repository.BookingRepo, events *repository.EventRepo, adventures *repository.AdventureRepo, loc *time.Location, log zerolog.Logger) *BookingLedger {
	return &BookingLedger{db: db, bookings: bookings, events: events, adventures: adventures, loc: loc, log: log}
}

// bookingTransitions lists the allowed status moves.  Staff drive all
// of them except cancelled, which the owner can reach through
// CancelByUser under the 24 hour rule.
var bookingTransitions = map[string][]string{
	model.BookingPending:  {model.BookingApproved, model.BookingRejected, model.BookingCancelled},
	model.BookingApproved: {model.BookingCancelled, model.BookingCompleted},
}

func transitionAllowed(from, to string) bool {
	for _, t := range bookingTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Create registers a user on an event.  The price is resolved and
// snapshotted at this instant; later tier changes never touch the
// booking.  Participants must fit within the remaining capacity at
// creation time even though the booking starts out pending.
func (l *BookingLedger) Create(ctx context.Context, userID, eventID uint64, participants uint32, userNotes, contactPhone string) (*model.Booking, error) {
	now := time.Now().UTC()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ev, err := l.events.GetByIDForUpdateTx(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	adv, err := l.adventures.GetByID(ctx, ev.AdventureID)
	if err != nil {
		return nil, err
	}
	if open, _ := RegistrationOpen(adv, ev, now, l.loc); !open {
		return nil, repository.ErrRegistrationClosed
	}

	exists, err := l.bookings.ExistsForUserEventTx(ctx, tx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrDuplicateBooking
	}

	if int64(ev.CurrentParticipants)+int64(participants) > int64(ev.MaxParticipants) {
		return nil, repository.ErrCapacityExceeded
	}

	tiers, err := l.adventures.TiersByAdventure(ctx, ev.AdventureID)
	if err != nil {
		return nil, err
	}
	unit := ResolvePrice(adv, ev, tiers, now)

	b := &model.Booking{
		UserID:            userID,
		EventID:           eventID,
		ParticipantsCount: participants,
		TotalPriceCents:   FinalPriceCents(unit.Cents, participants),
		Status:            model.BookingPending,
		PaymentStatus:     model.PaymentStatusPending,
		UserNotes:         userNotes,
		ContactPhone:      contactPhone,
	}
	if err := l.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	l.log.Info().
		Uint64("booking_id", b.ID).
		Uint64("user_id", userID).
		Uint64("event_id", eventID).
		Uint32("participants", participants).
		Int64("total_cents", b.TotalPriceCents).
		Str("price_source", unit.Source).
		Msg("booking created")
	return b, nil
}

// Transition moves a booking to a new status on behalf of staff.  A
// move to approved re-checks capacity against the other approved
// bookings; any move triggers a recount so current_participants stays
// equal to the sum over approved bookings.
func (l *BookingLedger) Transition(ctx context.Context, bookingID uint64, newStatus string) (*model.Booking, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := l.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(b.Status, newStatus) {
		return nil, repository.ErrConflict
	}

	// Event row lock serializes transitions of sibling bookings.
	if _, err := l.events.GetByIDForUpdateTx(ctx, tx, b.EventID); err != nil {
		return nil, err
	}

	var approvedAt *time.Time
	if newStatus == model.BookingApproved {
		taken, err := l.bookings.ApprovedParticipantsTx(ctx, tx, b.EventID, b.ID)
		if err != nil {
			return nil, err
		}
		ev, err := l.events.GetByID(ctx, b.EventID)
		if err != nil {
			return nil, err
		}
		if int64(taken)+int64(b.ParticipantsCount) > int64(ev.MaxParticipants) {
			return nil, repository.ErrCapacityExceeded
		}
		now := time.Now().UTC()
		approvedAt = &now
	}

	if err := l.bookings.UpdateStatusTx(ctx, tx, b.ID, newStatus, approvedAt); err != nil {
		return nil, err
	}
	current, err := l.bookings.RecountParticipantsTx(ctx, tx, b.EventID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	l.log.Info().
		Uint64("booking_id", b.ID).
		Str("from", b.Status).
		Str("to", newStatus).
		Uint32("event_participants", current).
		Msg("booking transitioned")

	b.Status = newStatus
	if approvedAt != nil {
		b.ApprovedAt = approvedAt
	}
	return b, nil
}

// CancelByUser cancels the caller's own booking under the 24 hour
// rule.  ErrForbidden when the booking belongs to someone else,
// ErrConflict when the cutoff has passed or the status does not allow
// cancelling.
func (l *BookingLedger) CancelByUser(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	now := time.Now().UTC()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := l.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, repository.ErrForbidden
	}
	ev, err := l.events.GetByIDForUpdateTx(ctx, tx, b.EventID)
	if err != nil {
		return nil, err
	}
	if !CanCancel(b, ev, now, l.loc) {
		return nil, repository.ErrConflict
	}

	if err := l.bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingCancelled, nil); err != nil {
		return nil, err
	}
	if _, err := l.bookings.RecountParticipantsTx(ctx, tx, b.EventID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	l.log.Info().Uint64("booking_id", b.ID).Uint64("user_id", userID).Msg("booking cancelled by owner")
	b.Status = model.BookingCancelled
	return b, nil
}

// MarkPaid flips the booking to approved/paid after a settled payment.
// Runs its own transaction with the event locked so the recount stays
// consistent with concurrent staff transitions.
func (l *BookingLedger) MarkPaid(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := l.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := l.events.GetByIDForUpdateTx(ctx, tx, b.EventID); err != nil {
		return nil, err
	}

	if b.Status == model.BookingPending {
		taken, err := l.bookings.ApprovedParticipantsTx(ctx, tx, b.EventID, b.ID)
		if err != nil {
			return nil, err
		}
		ev, err := l.events.GetByID(ctx, b.EventID)
		if err != nil {
			return nil, err
		}
		if int64(taken)+int64(b.ParticipantsCount) > int64(ev.MaxParticipants) {
			return nil, repository.ErrCapacityExceeded
		}
		now := time.Now().UTC()
		if err := l.bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingApproved, &now); err != nil {
			return nil, err
		}
		b.Status = model.BookingApproved
		b.ApprovedAt = &now
	}
	if err := l.bookings.UpdatePaymentStatusTx(ctx, tx, b.ID, model.PaymentStatusPaid); err != nil {
		return nil, err
	}
	if _, err := l.bookings.RecountParticipantsTx(ctx, tx, b.EventID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	b.PaymentStatus = model.PaymentStatusPaid
	l.log.Info().Uint64("booking_id", b.ID).Msg("booking marked paid")
	return b, nil
}
