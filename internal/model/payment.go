package model

import "time"

// Payment methods accepted by the platform.
const (
	PaymentMethodCreditCard   = "credit_card"
	PaymentMethodPix          = "pix"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
)

// Payment attempt status values.  A booking may accumulate several
// attempts; only an approved one marks the booking as paid.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentApproved   = "approved"
	PaymentRejected   = "rejected"
	PaymentRefunded   = "refunded"
	PaymentCancelled  = "cancelled"
)

// Payment records a single payment attempt against a booking.  PIX
// payments carry the receiving key and a QR code rendered as a base64
// PNG data URL; card payments carry opaque gateway data in
// PaymentData.  Gateway failures are recorded on Status, never raised
// to abort an otherwise valid booking.
//
// Fields:
//  ID                – primary key identifier.
//  BookingID         – booking being paid.
//  Method            – one of the PaymentMethod* constants.
//  AmountCents       – amount of this attempt.
//  Installments      – card installment count (1 for everything else).
//  Status            – one of the Payment* attempt constants.
//  ExternalPaymentID – identifier handed to / received from the gateway.
//  PixKey            – receiving PIX key (PIX only).
//  PixQRCode         – base64 PNG data URL of the PIX QR code.
//  PaymentData       – raw JSON payload with method-specific details.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
//  ProcessedAt       – when the gateway settled the attempt.
type Payment struct {
	ID                uint64     // payments.id
	BookingID         uint64     // payments.booking_id
	Method            string     // payments.method
	AmountCents       int64      // payments.amount_cents
	Installments      uint32     // payments.installments
	Status            string     // payments.status
	ExternalPaymentID string     // payments.external_payment_id
	PixKey            string     // payments.pix_key
	PixQRCode         string     // payments.pix_qr_code
	PaymentData       []byte     // payments.payment_data (JSON)
	CreatedAt         time.Time  // payments.created_at
	UpdatedAt         time.Time  // payments.updated_at
	ProcessedAt       *time.Time // payments.processed_at (nullable)
}
