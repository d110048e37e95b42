package model

import "time"

// WhatsApp message template types.
const (
	MessagePreRegistration       = "pre_registration"
	MessageRegistrationConfirmed = "registration_confirmed"
	MessagePaymentConfirmed      = "payment_confirmed"
	MessageEventReminder         = "event_reminder"
	MessageCancellation          = "cancellation"
)

// WhatsApp delivery status values.  Delivery is best effort: a failed
// message is logged and left in failed status, never retried
// automatically and never allowed to block a booking or payment.
const (
	MessagePending   = "pending"
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageRead      = "read"
	MessageFailed    = "failed"
)

// WhatsAppMessage is the log of an outbound notification.  Rows are
// created in pending status when the message is queued and updated by
// the delivery consumer.
//
// Fields:
//  ID                – primary key identifier.
//  BookingID         – related booking, when applicable.
//  PreRegistrationID – related pre-registration, when applicable.
//  PhoneNumber       – destination in international digits.
//  RecipientName     – display name of the recipient.
//  MessageType       – one of the Message* template constants.
//  MessageText       – full rendered message body.
//  Status            – delivery status.
//  ErrorMessage      – delivery error detail, if any.
//  SentAt            – when the consumer handed it off.
//  CreatedAt         – creation timestamp.
type WhatsAppMessage struct {
	ID                uint64     // whatsapp_messages.id
	BookingID         *uint64    // whatsapp_messages.booking_id (nullable)
	PreRegistrationID *uint64    // whatsapp_messages.pre_registration_id (nullable)
	PhoneNumber       string     // whatsapp_messages.phone_number
	RecipientName     string     // whatsapp_messages.recipient_name
	MessageType       string     // whatsapp_messages.message_type
	MessageText       string     // whatsapp_messages.message_text
	Status            string     // whatsapp_messages.status
	ErrorMessage      string     // whatsapp_messages.error_message
	SentAt            *time.Time // whatsapp_messages.sent_at (nullable)
	CreatedAt         time.Time  // whatsapp_messages.created_at
}
