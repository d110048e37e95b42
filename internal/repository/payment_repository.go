package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// PaymentRepo persists payment attempts.  A booking accumulates one
// row per attempt; the payment service decides which attempt settles
// the booking.
type PaymentRepo struct{ db *sql.DB }

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, booking_id, method, amount_cents, installments, status,
	external_payment_id, pix_key, pix_qr_code, payment_data, created_at, updated_at, processed_at`

func scanPayment(row eventScanner) (*model.Payment, error) {
	var (
		p           model.Payment
		data        sql.NullString
		processedAt sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.BookingID, &p.Method, &p.AmountCents, &p.Installments, &p.Status,
		&p.ExternalPaymentID, &p.PixKey, &p.PixQRCode, &data,
		&p.CreatedAt, &p.UpdatedAt, &processedAt,
	)
	if err != nil {
		return nil, err
	}
	if data.Valid {
		p.PaymentData = []byte(data.String)
	}
	if processedAt.Valid {
		v := processedAt.Time
		p.ProcessedAt = &v
	}
	return &p, nil
}

// Create inserts a payment attempt and populates its generated ID and
// timestamps.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments
		(booking_id, method, amount_cents, installments, status, external_payment_id,
		 pix_key, pix_qr_code, payment_data)
		VALUES (?,?,?,?,?,?,?,?,?)`
	data := p.PaymentData
	if len(data) == 0 {
		data = []byte("{}")
	}
	res, err := r.db.ExecContext(ctx, q,
		p.BookingID, p.Method, p.AmountCents, p.Installments, p.Status,
		p.ExternalPaymentID, p.PixKey, p.PixQRCode, string(data))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM payments WHERE id = ?`, p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetByID fetches a single payment.  sql.ErrNoRows when absent.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	return scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
}

// ListByBooking returns a booking's payment attempts, newest first.
func (r *PaymentRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE booking_id = ? ORDER BY created_at DESC`,
		bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateStatus records the outcome of a gateway interaction.  A nil
// processedAt leaves the column untouched.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uint64, status string, processedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = ?, processed_at = COALESCE(?, processed_at) WHERE id = ?`,
		status, nullableTime(processedAt), id)
	return err
}

// SetPixData stores the generated QR code and payload after the PIX
// charge is assembled.
func (r *PaymentRepo) SetPixData(ctx context.Context, id uint64, qrCode string, paymentData []byte) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payments SET pix_qr_code = ?, payment_data = ? WHERE id = ?`,
		qrCode, string(paymentData), id)
	return err
}
