package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/queue"
	"github.com/conexao-adventure/booking-api/internal/repository"
)

// WhatsAppNotifier renders notification templates, logs each message
// as a pending row and hands it to the broker.  Everything here is
// best effort: a broker outage marks the row failed and the calling
// flow carries on.
type WhatsAppNotifier struct {
	messages     *repository.MessageRepo
	companyName  string
	companyPhone string
	log          zerolog.Logger
}

// NewWhatsAppNotifier wires the notifier.  companyName and
// companyPhone appear inside the rendered templates.
func NewWhatsAppNotifier(messages *repository.MessageRepo, companyName, companyPhone string, log zerolog.Logger) *WhatsAppNotifier {
	return &WhatsAppNotifier{messages: messages, companyName: companyName, companyPhone: companyPhone, log: log}
}

// CleanPhone normalizes a raw phone string to international digits.
// Non-digits are stripped; bare Brazilian numbers (10 digits with area
// code, or 11 with the mobile nine) get the 55 country code prepended.
func CleanPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}

// formatBRL renders integer cents as a Brazilian currency string.
func formatBRL(cents int64) string {
	return fmt.Sprintf("R$ %d,%02d", cents/100, cents%100)
}

func (n *WhatsAppNotifier) send(ctx context.Context, m *model.WhatsAppMessage) {
	m.PhoneNumber = CleanPhone(m.PhoneNumber)
	m.Status = model.MessagePending
	if err := n.messages.Create(ctx, m); err != nil {
		n.log.Warn().Err(err).Str("type", m.MessageType).Msg("whatsapp message log insert failed")
		return
	}
	err := queue.PublishWhatsAppOutbound(ctx, queue.WhatsAppOutboundEvent{
		MessageID:     m.ID,
		PhoneNumber:   m.PhoneNumber,
		RecipientName: m.RecipientName,
		MessageType:   m.MessageType,
		Text:          m.MessageText,
		QueuedAt:      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		_ = n.messages.MarkFailed(ctx, m.ID, err.Error())
		n.log.Warn().Err(err).Uint64("message_id", m.ID).Msg("whatsapp publish failed")
	}
}

// PreRegistrationReceived confirms receipt of a pre-registration.
func (n *WhatsAppNotifier) PreRegistrationReceived(ctx context.Context, p *model.PreRegistration, adv *model.Adventure, ev *model.AdventureEvent) {
	text := fmt.Sprintf(
		"Olá %s! Recebemos sua pré-inscrição para *%s* em %s. Nossa equipe vai revisar seus dados e entrar em contato em breve. — %s",
		p.FirstName, adv.Title, ev.Date.Format("02/01/2006"), n.companyName)
	n.send(ctx, &model.WhatsAppMessage{
		PreRegistrationID: &p.ID,
		PhoneNumber:       p.Phone,
		RecipientName:     p.FullName(),
		MessageType:       model.MessagePreRegistration,
		MessageText:       text,
	})
}

// BookingConfirmed tells the customer their registration was approved.
func (n *WhatsAppNotifier) BookingConfirmed(ctx context.Context, u *model.User, b *model.Booking, adv *model.Adventure, ev *model.AdventureEvent) {
	text := fmt.Sprintf(
		"Olá %s! Sua inscrição para *%s* em %s às %s foi confirmada. Total: %s. Ponto de encontro: %s. Dúvidas? %s — %s",
		u.FirstName, adv.Title, ev.Date.Format("02/01/2006"), ev.StartTime,
		formatBRL(b.TotalPriceCents), adv.MeetingPoint, n.companyPhone, n.companyName)
	n.send(ctx, &model.WhatsAppMessage{
		BookingID:     &b.ID,
		PhoneNumber:   contactPhone(b, u),
		RecipientName: u.FullName(),
		MessageType:   model.MessageRegistrationConfirmed,
		MessageText:   text,
	})
}

// PaymentConfirmed tells the customer their payment settled.
func (n *WhatsAppNotifier) PaymentConfirmed(ctx context.Context, u *model.User, b *model.Booking, adv *model.Adventure) {
	text := fmt.Sprintf(
		"Olá %s! Confirmamos o pagamento de %s para *%s*. Sua vaga está garantida. Até breve! — %s",
		u.FirstName, formatBRL(b.TotalPriceCents), adv.Title, n.companyName)
	n.send(ctx, &model.WhatsAppMessage{
		BookingID:     &b.ID,
		PhoneNumber:   contactPhone(b, u),
		RecipientName: u.FullName(),
		MessageType:   model.MessagePaymentConfirmed,
		MessageText:   text,
	})
}

// EventReminder nudges a confirmed participant before the event.
func (n *WhatsAppNotifier) EventReminder(ctx context.Context, u *model.User, b *model.Booking, adv *model.Adventure, ev *model.AdventureEvent) {
	text := fmt.Sprintf(
		"Olá %s! Lembrete: *%s* acontece em %s às %s. Ponto de encontro: %s. %s — %s",
		u.FirstName, adv.Title, ev.Date.Format("02/01/2006"), ev.StartTime,
		adv.MeetingPoint, ev.MeetingInstructions, n.companyName)
	n.send(ctx, &model.WhatsAppMessage{
		BookingID:     &b.ID,
		PhoneNumber:   contactPhone(b, u),
		RecipientName: u.FullName(),
		MessageType:   model.MessageEventReminder,
		MessageText:   text,
	})
}

// BookingCancelled confirms a cancellation to the customer.
func (n *WhatsAppNotifier) BookingCancelled(ctx context.Context, u *model.User, b *model.Booking, adv *model.Adventure, ev *model.AdventureEvent) {
	text := fmt.Sprintf(
		"Olá %s, sua inscrição para *%s* em %s foi cancelada. Esperamos ver você em uma próxima aventura! — %s",
		u.FirstName, adv.Title, ev.Date.Format("02/01/2006"), n.companyName)
	n.send(ctx, &model.WhatsAppMessage{
		BookingID:     &b.ID,
		PhoneNumber:   contactPhone(b, u),
		RecipientName: u.FullName(),
		MessageType:   model.MessageCancellation,
		MessageText:   text,
	})
}

// contactPhone prefers the phone supplied on the booking over the
// account phone.
func contactPhone(b *model.Booking, u *model.User) string {
	if b.ContactPhone != "" {
		return b.ContactPhone
	}
	return u.Phone
}
