package model

import "time"

// Booking status values.  Only approved bookings count toward an
// event's participant total.
const (
	BookingPending   = "pending"
	BookingApproved  = "approved"
	BookingRejected  = "rejected"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Payment status values carried on the booking itself (the Payment
// entity tracks individual attempts).
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPartial  = "partial"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Booking ties a user to an adventure event.  At most one booking may
// exist per (user, event); the database enforces this with a unique
// key and the ledger surfaces violations as a conflict.  TotalPriceCents
// is a snapshot taken at creation time using the price resolution in
// effect at that instant and is never recomputed afterwards, even if
// pricing tiers change.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – booking owner.
//  EventID           – event being booked.
//  ParticipantsCount – number of seats taken by this booking (>= 1).
//  TotalPriceCents   – price snapshot, final price * participants.
//  Status            – one of the Booking* constants.
//  PaymentStatus     – one of the PaymentStatus* constants.
//  UserNotes         – free text supplied by the customer.
//  ContactPhone      – phone used for confirmations.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
//  ApprovedAt        – set when the booking transitions to approved.
type Booking struct {
	ID                uint64     // bookings.id
	UserID            uint64     // bookings.user_id
	EventID           uint64     // bookings.event_id
	ParticipantsCount uint32     // bookings.participants_count
	TotalPriceCents   int64      // bookings.total_price_cents
	Status            string     // bookings.status
	PaymentStatus     string     // bookings.payment_status
	UserNotes         string     // bookings.user_notes
	ContactPhone      string     // bookings.contact_phone
	CreatedAt         time.Time  // bookings.created_at
	UpdatedAt         time.Time  // bookings.updated_at
	ApprovedAt        *time.Time // bookings.approved_at (nullable)
}
