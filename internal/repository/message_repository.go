package repository

import (
	"context"
	"database/sql"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// MessageRepo is the outbound WhatsApp message log.  The notifier
// inserts pending rows before publishing; the delivery consumer marks
// them sent or failed.
type MessageRepo struct{ db *sql.DB }

// NewMessageRepo returns a new MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

const messageColumns = `id, booking_id, pre_registration_id, phone_number, recipient_name,
	message_type, message_text, status, error_message, sent_at, created_at`

func scanMessage(row eventScanner) (*model.WhatsAppMessage, error) {
	var (
		m         model.WhatsAppMessage
		bookingID sql.NullInt64
		preRegID  sql.NullInt64
		sentAt    sql.NullTime
	)
	err := row.Scan(
		&m.ID, &bookingID, &preRegID, &m.PhoneNumber, &m.RecipientName,
		&m.MessageType, &m.MessageText, &m.Status, &m.ErrorMessage, &sentAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if bookingID.Valid {
		v := uint64(bookingID.Int64)
		m.BookingID = &v
	}
	if preRegID.Valid {
		v := uint64(preRegID.Int64)
		m.PreRegistrationID = &v
	}
	if sentAt.Valid {
		v := sentAt.Time
		m.SentAt = &v
	}
	return &m, nil
}

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// Create inserts a pending message row and populates the generated ID.
func (r *MessageRepo) Create(ctx context.Context, m *model.WhatsAppMessage) error {
	const q = `INSERT INTO whatsapp_messages
		(booking_id, pre_registration_id, phone_number, recipient_name,
		 message_type, message_text, status)
		VALUES (?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		nullableID(m.BookingID), nullableID(m.PreRegistrationID),
		m.PhoneNumber, m.RecipientName, m.MessageType, m.MessageText, m.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID fetches a single message row.  sql.ErrNoRows when absent.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (*model.WhatsAppMessage, error) {
	return scanMessage(r.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM whatsapp_messages WHERE id = ?`, id))
}

// MarkSent stamps the message sent by the delivery consumer.
func (r *MessageRepo) MarkSent(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE whatsapp_messages SET status = ?, sent_at = NOW() WHERE id = ?`,
		model.MessageSent, id)
	return err
}

// MarkFailed records a delivery failure with its reason.  Failed
// messages stay failed; there is no automatic retry.
func (r *MessageRepo) MarkFailed(ctx context.Context, id uint64, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE whatsapp_messages SET status = ?, error_message = ? WHERE id = ?`,
		model.MessageFailed, reason, id)
	return err
}
