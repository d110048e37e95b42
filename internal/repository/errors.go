// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as services and handlers to distinguish between failure
// scenarios: a duplicate booking is rendered as an HTTP 409 while a
// closed registration window becomes a 422, and so on.  Repositories
// translate driver-level errors (duplicate key, no rows) into these
// values so callers never inspect MySQL error codes.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicateBooking is returned when a booking already exists for
// the same (user, event) pair.  The bookings table enforces this with
// a unique key; handlers translate it into an HTTP 409.
var ErrDuplicateBooking = errors.New("booking already exists for this event")

// ErrDuplicatePreRegistration is returned when a pre-registration
// with the same CPF already exists for the event.
var ErrDuplicatePreRegistration = errors.New("pre-registration already exists for this cpf and event")

// ErrCapacityExceeded is returned by the booking ledger when approving
// or creating a booking would push the event past max_participants.
var ErrCapacityExceeded = errors.New("event capacity exceeded")

// ErrRegistrationClosed is returned when the event no longer accepts
// registrations (inactive, not scheduled, or past its deadline).
var ErrRegistrationClosed = errors.New("registration closed for this event")

// ErrBadgeAlreadyAwarded is returned when inserting a (user, badge)
// row that already exists.  Callers treat it as a no-op: a badge is
// awarded at most once and a rejected award never changes points.
var ErrBadgeAlreadyAwarded = errors.New("badge already awarded")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into a 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot proceed due to
// conflicting state, such as transitioning a cancelled booking.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether err is a MySQL duplicate-key error
// (code 1062).  The driver does not expose a typed error for this, so
// the code is matched in the message, the same way the user repo
// detects duplicate emails.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
