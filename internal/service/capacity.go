package service

import (
	"time"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// Reasons returned by RegistrationOpen when an event is closed.
const (
	ClosedAdventureInactive = "adventure_inactive"
	ClosedEventInactive     = "event_inactive"
	ClosedEventNotScheduled = "event_not_scheduled"
	ClosedDeadlinePassed    = "deadline_passed"
	ClosedEventDatePassed   = "event_date_passed"
	ClosedEventFull         = "event_full"
)

// AvailableSpots returns how many seats remain on an event.  The
// result can go negative when staff shrink max_participants below the
// already approved headcount; callers treat anything <= 0 as full.
func AvailableSpots(ev *model.AdventureEvent) int64 {
	return int64(ev.MaxParticipants) - int64(ev.CurrentParticipants)
}

// IsFull reports whether an event has no remaining seats.
func IsFull(ev *model.AdventureEvent) bool {
	return AvailableSpots(ev) <= 0
}

// RegistrationOpen decides whether the event accepts registrations at
// the given instant.  When a deadline is set it alone bounds the
// window; without one the whole event date stays open in the business
// timezone, so same-day walk-ups after the start time still register.
// When closed, the second return value names the first rule that
// failed, in the order the rules are checked.
func RegistrationOpen(adv *model.Adventure, ev *model.AdventureEvent, now time.Time, loc *time.Location) (bool, string) {
	if !adv.IsActive {
		return false, ClosedAdventureInactive
	}
	if !ev.IsActive {
		return false, ClosedEventInactive
	}
	if ev.Status != model.EventScheduled {
		return false, ClosedEventNotScheduled
	}
	if ev.RegistrationDeadline != nil {
		if now.After(*ev.RegistrationDeadline) {
			return false, ClosedDeadlinePassed
		}
	} else if dayAfter(now, ev.Date, loc) {
		return false, ClosedEventDatePassed
	}
	if IsFull(ev) {
		return false, ClosedEventFull
	}
	return true, ""
}

// dayAfter reports whether now falls on a later calendar day than day,
// with now read in loc and day taken as stored (date only).
func dayAfter(now, day time.Time, loc *time.Location) bool {
	ny, nm, nd := now.In(loc).Date()
	dy, dm, dd := day.Date()
	if ny != dy {
		return ny > dy
	}
	if nm != dm {
		return nm > dm
	}
	return nd > dd
}

// CanCancel reports whether the owner may still cancel a booking: the
// booking must be pending or approved and the event must start more
// than 24 hours from now.
func CanCancel(b *model.Booking, ev *model.AdventureEvent, now time.Time, loc *time.Location) bool {
	if b.Status != model.BookingPending && b.Status != model.BookingApproved {
		return false
	}
	return ev.StartInstant(loc).Sub(now) > 24*time.Hour
}
