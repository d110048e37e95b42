package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
)

// Simulated gateway odds.  There is no real payment gateway; card
// charges approve at roughly 90% and each PIX status poll has a 30%
// chance of finding the transfer confirmed, which mimics a customer
// paying at some point after the QR code is shown.
const (
	cardApprovalRate = 0.90
	pixConfirmRate   = 0.30
)

// PaymentProcessor drives the simulated payment flows.  An approved
// payment settles the booking through the ledger, credits loyalty
// points and fires the payment notification.  randFloat is injectable
// so tests can force either outcome.
type PaymentProcessor struct {
	payments   *repository.PaymentRepo
	bookings   *repository.BookingRepo
	adventures *repository.AdventureRepo
	events     *repository.EventRepo
	users      *repository.UserRepo
	ledger     *BookingLedger
	loyalty    *LoyaltyEngine
	notifier   *WhatsAppNotifier

	pixKey        string
	pointsPerReal int64
	randFloat     func() float64
	log           zerolog.Logger
}

// NewPaymentProcessor wires the processor.  pointsPerReal is the
// loyalty credit per whole currency unit paid.
func NewPaymentProcessor(
	payments *repository.PaymentRepo,
	bookings *repository.BookingRepo,
	adventures *repository.AdventureRepo,
	events *repository.EventRepo,
	users *repository.UserRepo,
	ledger *BookingLedger,
	loyalty *LoyaltyEngine,
	notifier *WhatsAppNotifier,
	pixKey string,
	pointsPerReal int64,
	log zerolog.Logger,
) *PaymentProcessor {
	return &PaymentProcessor{
		payments:   payments,
		bookings:   bookings,
		adventures: adventures,
		events:     events,
		users:      users,
		ledger:     ledger,
		loyalty:    loyalty,
		notifier:   notifier,

		pixKey:        pixKey,
		pointsPerReal: pointsPerReal,
		randFloat:     rand.Float64,
		log:           log,
	}
}

// PointsForAmount converts a paid amount in cents to loyalty points:
// whole currency units times the configured rate, cents truncated.
func PointsForAmount(amountCents, pointsPerReal int64) int64 {
	return amountCents / 100 * pointsPerReal
}

// pixPayload builds the copy-and-paste string encoded into the QR
// code.  The format mimics an EMV BR Code closely enough for a
// front end to display; it is not a bank-valid payload.
func pixPayload(pixKey, txID string, amountCents int64) string {
	return fmt.Sprintf("00020126PIX|key=%s|amount=%d.%02d|txid=%s|6304",
		pixKey, amountCents/100, amountCents%100, txID)
}

// ownedPendingBooking loads the booking and checks that it belongs to
// the user and still awaits payment.
func (p *PaymentProcessor) ownedPendingBooking(ctx context.Context, bookingID, userID uint64) (*model.Booking, error) {
	b, err := p.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, repository.ErrForbidden
	}
	if b.PaymentStatus == model.PaymentStatusPaid ||
		b.Status == model.BookingCancelled || b.Status == model.BookingRejected {
		return nil, repository.ErrConflict
	}
	return b, nil
}

// CreatePix opens a PIX charge for the booking: a pending payment row
// carrying the receiving key, the copy-and-paste payload and the QR
// code rendered as a base64 PNG data URL.
func (p *PaymentProcessor) CreatePix(ctx context.Context, bookingID, userID uint64) (*model.Payment, error) {
	b, err := p.ownedPendingBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	txID := uuid.NewString()
	payload := pixPayload(p.pixKey, txID, b.TotalPriceCents)

	pay := &model.Payment{
		BookingID:         b.ID,
		Method:            model.PaymentMethodPix,
		AmountCents:       b.TotalPriceCents,
		Installments:      1,
		Status:            model.PaymentPending,
		ExternalPaymentID: txID,
		PixKey:            p.pixKey,
	}
	if err := p.payments.Create(ctx, pay); err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		// Payload still works for copy-and-paste without the image.
		p.log.Warn().Err(err).Uint64("payment_id", pay.ID).Msg("pix qr encode failed")
	} else {
		pay.PixQRCode = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}
	data, _ := json.Marshal(map[string]string{"payload": payload, "txid": txID})
	pay.PaymentData = data
	if err := p.payments.SetPixData(ctx, pay.ID, pay.PixQRCode, data); err != nil {
		return nil, err
	}

	p.log.Info().
		Uint64("payment_id", pay.ID).
		Uint64("booking_id", b.ID).
		Int64("amount_cents", pay.AmountCents).
		Msg("pix charge created")
	return pay, nil
}

// VerifyPix polls a pending PIX charge.  Each poll confirms with the
// simulated odds; on confirmation the payment settles the booking.
// Returns the payment with its current status either way.
func (p *PaymentProcessor) VerifyPix(ctx context.Context, paymentID, userID uint64) (*model.Payment, error) {
	pay, err := p.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	b, err := p.bookings.GetByID(ctx, pay.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, repository.ErrForbidden
	}
	if pay.Status != model.PaymentPending && pay.Status != model.PaymentProcessing {
		return pay, nil
	}

	if p.randFloat() >= pixConfirmRate {
		return pay, nil
	}

	now := time.Now().UTC()
	if err := p.payments.UpdateStatus(ctx, paymentID, model.PaymentApproved, &now); err != nil {
		return nil, err
	}
	pay.Status = model.PaymentApproved
	pay.ProcessedAt = &now
	if err := p.settle(ctx, pay, b); err != nil {
		return nil, err
	}
	return pay, nil
}

// ProcessCard runs a simulated card charge: approved at the gateway
// odds, rejected otherwise.  Card data is never stored; only the
// brand and the last four digits go into payment_data.
func (p *PaymentProcessor) ProcessCard(ctx context.Context, bookingID, userID uint64, installments uint32, cardBrand, lastFour string) (*model.Payment, error) {
	b, err := p.ownedPendingBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if installments == 0 {
		installments = 1
	}

	data, _ := json.Marshal(map[string]string{"brand": cardBrand, "last_four": lastFour})
	pay := &model.Payment{
		BookingID:         b.ID,
		Method:            model.PaymentMethodCreditCard,
		AmountCents:       b.TotalPriceCents,
		Installments:      installments,
		Status:            model.PaymentProcessing,
		ExternalPaymentID: uuid.NewString(),
		PaymentData:       data,
	}
	if err := p.payments.Create(ctx, pay); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if p.randFloat() >= cardApprovalRate {
		if err := p.payments.UpdateStatus(ctx, pay.ID, model.PaymentRejected, &now); err != nil {
			return nil, err
		}
		pay.Status = model.PaymentRejected
		pay.ProcessedAt = &now
		p.log.Info().Uint64("payment_id", pay.ID).Uint64("booking_id", b.ID).Msg("card payment rejected")
		return pay, nil
	}

	if err := p.payments.UpdateStatus(ctx, pay.ID, model.PaymentApproved, &now); err != nil {
		return nil, err
	}
	pay.Status = model.PaymentApproved
	pay.ProcessedAt = &now
	if err := p.settle(ctx, pay, b); err != nil {
		return nil, err
	}
	return pay, nil
}

// settle applies the side effects of an approved payment: the booking
// flips to approved/paid with a recount, the payer earns points and
// the confirmation message goes out.  Loyalty and notification
// failures are logged, not propagated; the money already moved.
func (p *PaymentProcessor) settle(ctx context.Context, pay *model.Payment, b *model.Booking) error {
	updated, err := p.ledger.MarkPaid(ctx, b.ID)
	if err != nil {
		return err
	}

	ev, evErr := p.events.GetByID(ctx, b.EventID)
	var adventureID uint64
	if evErr == nil {
		adventureID = ev.AdventureID
	}

	points := PointsForAmount(pay.AmountCents, p.pointsPerReal)
	if err := p.loyalty.AddPoints(ctx, b.UserID, points, adventureID, "payment"); err != nil {
		p.log.Error().Err(err).Uint64("booking_id", b.ID).Msg("loyalty credit failed after payment")
	}

	u, err := p.users.GetByID(ctx, b.UserID)
	if err == nil && evErr == nil {
		if adv, advErr := p.adventures.GetByID(ctx, ev.AdventureID); advErr == nil {
			p.notifier.PaymentConfirmed(ctx, u, updated, adv)
		}
	}

	p.log.Info().
		Uint64("payment_id", pay.ID).
		Uint64("booking_id", b.ID).
		Str("method", pay.Method).
		Int64("amount_cents", pay.AmountCents).
		Int64("points", points).
		Msg("payment settled")
	return nil
}
