package model

import "time"

// Event status values.  Registrations are only accepted while an
// event is scheduled.
const (
	EventScheduled = "scheduled"
	EventConfirmed = "confirmed"
	EventCancelled = "cancelled"
	EventCompleted = "completed"
)

// AdventureEvent is one dated, timed occurrence of an adventure that
// customers book against.  The (adventure, date, start_time) triple is
// unique.  CurrentParticipants is a derived projection: it is written
// only by the booking ledger's recount and always equals the sum of
// participants across approved bookings.
//
// Fields:
//  ID                  – primary key identifier.
//  AdventureID         – owning adventure.
//  Date                – calendar date of the event (midnight, local tz).
//  StartTime           – "HH:MM:SS" start time as stored in the TIME column.
//  EndTime             – optional "HH:MM:SS" end time.
//  MaxParticipants     – capacity for this event; may differ from the
//                        adventure's own bounds, no cross-check is made.
//  CurrentParticipants – derived approved-participant count.
//  CustomPriceCents    – optional price that bypasses tier resolution.
//  Status              – one of the Event* constants.
//  IsActive            – inactive events accept no registrations.
//  RegistrationDeadline– optional cut-off instant for registrations.
//  MeetingInstructions – free text shown to confirmed participants.
//  SpecialNotes        – internal staff notes.
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type AdventureEvent struct {
	ID                   uint64     // adventure_events.id
	AdventureID          uint64     // adventure_events.adventure_id
	Date                 time.Time  // adventure_events.date
	StartTime            string     // adventure_events.start_time
	EndTime              *string    // adventure_events.end_time (nullable)
	MaxParticipants      uint32     // adventure_events.max_participants
	CurrentParticipants  uint32     // adventure_events.current_participants
	CustomPriceCents     *int64     // adventure_events.custom_price_cents (nullable)
	Status               string     // adventure_events.status
	IsActive             bool       // adventure_events.is_active
	RegistrationDeadline *time.Time // adventure_events.registration_deadline (nullable)
	MeetingInstructions  string     // adventure_events.meeting_instructions
	SpecialNotes         string     // adventure_events.special_notes
	CreatedAt            time.Time  // adventure_events.created_at
	UpdatedAt            time.Time  // adventure_events.updated_at
}

// StartInstant combines the event's date and start time into a single
// instant in the given location.  A malformed start time degrades to
// midnight rather than failing; the column is validated on write.
func (e *AdventureEvent) StartInstant(loc *time.Location) time.Time {
	t, err := time.Parse("15:04:05", e.StartTime)
	if err != nil {
		t, err = time.Parse("15:04", e.StartTime)
		if err != nil {
			t = time.Time{}
		}
	}
	return time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, loc)
}
