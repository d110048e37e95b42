// Package queue defines the payloads exchanged over the message broker
// plus the publisher and the background consumer for outbound WhatsApp
// notifications.
package queue

// WhatsAppOutboundEvent is published for every notification the
// platform wants delivered.  It carries enough for the delivery worker
// to send without querying the primary database; MessageID points back
// to the whatsapp_messages log row to update.
type WhatsAppOutboundEvent struct {
	MessageID     uint64 `json:"message_id"`
	PhoneNumber   string `json:"phone_number"`
	RecipientName string `json:"recipient_name"`
	MessageType   string `json:"message_type"`
	Text          string `json:"text"`
	QueuedAt      string `json:"queued_at"`
}
