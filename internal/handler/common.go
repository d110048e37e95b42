// Package handler defines the HTTP handlers of the booking API.
package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/service"
)

// reqCtx bounds every database call made from a handler.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	return n, err == nil && n > 0
}

// ----- shared response shapes -----

type adventureView struct {
	ID               uint64 `json:"id"`
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description,omitempty"`
	Difficulty       string `json:"difficulty"`
	DurationHours    uint32 `json:"duration_hours"`
	MinParticipants  uint32 `json:"min_participants"`
	MaxParticipants  uint32 `json:"max_participants"`
	Location         string `json:"location"`
	MeetingPoint     string `json:"meeting_point,omitempty"`
	BasePriceCents   int64  `json:"base_price_cents"`
	IsFeatured       bool   `json:"is_featured"`
}

func adventureToView(a *model.Adventure, full bool) adventureView {
	v := adventureView{
		ID:               a.ID,
		Title:            a.Title,
		Slug:             a.Slug,
		ShortDescription: a.ShortDescription,
		Difficulty:       a.Difficulty,
		DurationHours:    a.DurationHours,
		MinParticipants:  a.MinParticipants,
		MaxParticipants:  a.MaxParticipants,
		Location:         a.Location,
		BasePriceCents:   a.BasePriceCents,
		IsFeatured:       a.IsFeatured,
	}
	if full {
		v.Description = a.Description
		v.MeetingPoint = a.MeetingPoint
	}
	return v
}

type eventView struct {
	ID                   uint64                `json:"id"`
	AdventureID          uint64                `json:"adventure_id"`
	Date                 string                `json:"date"`
	StartTime            string                `json:"start_time"`
	EndTime              *string               `json:"end_time,omitempty"`
	MaxParticipants      uint32                `json:"max_participants"`
	CurrentParticipants  uint32                `json:"current_participants"`
	AvailableSpots       int64                 `json:"available_spots"`
	Status               string                `json:"status"`
	RegistrationDeadline *time.Time            `json:"registration_deadline,omitempty"`
	RegistrationOpen     bool                  `json:"registration_open"`
	ClosedReason         string                `json:"closed_reason,omitempty"`
	Price                service.ResolvedPrice `json:"price"`
	NextPriceChange      *upcomingTierView     `json:"next_price_change,omitempty"`
	MeetingInstructions  string                `json:"meeting_instructions,omitempty"`
}

// upcomingTierView announces the tier that will take effect next and
// when, so clients can show "price goes up on" style notices.
type upcomingTierView struct {
	TierID     uint64    `json:"tier_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	StartsAt   time.Time `json:"starts_at"`
}

// eventToView resolves the live price and availability for one event.
func eventToView(adv *model.Adventure, ev *model.AdventureEvent, tiers []model.PricingTier, now time.Time, loc *time.Location) eventView {
	open, reason := service.RegistrationOpen(adv, ev, now, loc)
	v := eventView{
		ID:                   ev.ID,
		AdventureID:          ev.AdventureID,
		Date:                 ev.Date.Format("2006-01-02"),
		StartTime:            ev.StartTime,
		EndTime:              ev.EndTime,
		MaxParticipants:      ev.MaxParticipants,
		CurrentParticipants:  ev.CurrentParticipants,
		AvailableSpots:       service.AvailableSpots(ev),
		Status:               ev.Status,
		RegistrationDeadline: ev.RegistrationDeadline,
		RegistrationOpen:     open,
		ClosedReason:         reason,
		Price:                service.ResolvePrice(adv, ev, tiers, now),
		MeetingInstructions:  ev.MeetingInstructions,
	}
	if ev.CustomPriceCents == nil {
		if t := service.NextPriceChange(tiers, now); t != nil {
			v.NextPriceChange = &upcomingTierView{
				TierID:     t.ID,
				Name:       t.Name,
				PriceCents: t.PriceCents,
				StartsAt:   t.StartDate,
			}
		}
	}
	return v
}

type bookingView struct {
	ID                uint64     `json:"id"`
	UserID            uint64     `json:"user_id"`
	EventID           uint64     `json:"event_id"`
	ParticipantsCount uint32     `json:"participants_count"`
	TotalPriceCents   int64      `json:"total_price_cents"`
	Status            string     `json:"status"`
	PaymentStatus     string     `json:"payment_status"`
	UserNotes         string     `json:"user_notes,omitempty"`
	ContactPhone      string     `json:"contact_phone,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
}

func bookingToView(b *model.Booking) bookingView {
	return bookingView{
		ID:                b.ID,
		UserID:            b.UserID,
		EventID:           b.EventID,
		ParticipantsCount: b.ParticipantsCount,
		TotalPriceCents:   b.TotalPriceCents,
		Status:            b.Status,
		PaymentStatus:     b.PaymentStatus,
		UserNotes:         b.UserNotes,
		ContactPhone:      b.ContactPhone,
		CreatedAt:         b.CreatedAt,
		ApprovedAt:        b.ApprovedAt,
	}
}

type paymentView struct {
	ID           uint64     `json:"id"`
	BookingID    uint64     `json:"booking_id"`
	Method       string     `json:"method"`
	AmountCents  int64      `json:"amount_cents"`
	Installments uint32     `json:"installments"`
	Status       string     `json:"status"`
	PixKey       string     `json:"pix_key,omitempty"`
	PixQRCode    string     `json:"pix_qr_code,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func paymentToView(p *model.Payment) paymentView {
	return paymentView{
		ID:           p.ID,
		BookingID:    p.BookingID,
		Method:       p.Method,
		AmountCents:  p.AmountCents,
		Installments: p.Installments,
		Status:       p.Status,
		PixKey:       p.PixKey,
		PixQRCode:    p.PixQRCode,
		ProcessedAt:  p.ProcessedAt,
		CreatedAt:    p.CreatedAt,
	}
}
