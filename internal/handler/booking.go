package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/middleware"
	"github.com/conexao-adventure/booking-api/internal/repository"
	"github.com/conexao-adventure/booking-api/internal/service"
)

// BookingHandler serves the customer-facing booking endpoints.  All
// writes go through the ledger; this layer only binds, authorizes and
// renders.
type BookingHandler struct {
	Ledger     *service.BookingLedger
	Bookings   *repository.BookingRepo
	Events     *repository.EventRepo
	Adventures *repository.AdventureRepo
	Users      *repository.UserRepo
	Notifier   *service.WhatsAppNotifier
	Loc        *time.Location
}

func NewBookingHandler(ledger *service.BookingLedger, bookings *repository.BookingRepo, events *repository.EventRepo, adventures *repository.AdventureRepo, users *repository.UserRepo, notifier *service.WhatsAppNotifier, loc *time.Location) *BookingHandler {
	return &BookingHandler{Ledger: ledger, Bookings: bookings, Events: events, Adventures: adventures, Users: users, Notifier: notifier, Loc: loc}
}

type createBookingReq struct {
	EventID           uint64 `json:"event_id" validate:"required"`
	ParticipantsCount uint32 `json:"participants_count" validate:"required,min=1"`
	UserNotes         string `json:"user_notes"`
	ContactPhone      string `json:"contact_phone"`
}

// Create registers the caller on an event.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Ledger.Create(ctx, middleware.UserID(c), req.EventID, req.ParticipantsCount, req.UserNotes, req.ContactPhone)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrRegistrationClosed):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "registration closed"})
	case errors.Is(err, repository.ErrDuplicateBooking):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already booked for this event"})
	case errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough spots left"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	return c.JSON(http.StatusCreated, bookingToView(b))
}

// ListMine returns the caller's bookings, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	bookings, err := h.Bookings.ListByUser(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]bookingView, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookingToView(&bookings[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Get returns one of the caller's bookings together with whether it
// can still be cancelled.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.UserID != middleware.UserID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ev, err := h.Events.GetByID(ctx, b.EventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking":    bookingToView(b),
		"can_cancel": service.CanCancel(b, ev, time.Now().UTC(), h.Loc),
	})
}

// Cancel cancels the caller's booking under the 24 hour rule and
// sends the cancellation notice.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Ledger.CancelByUser(ctx, middleware.UserID(c), id)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking can no longer be cancelled"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	if u, uErr := h.Users.GetByID(ctx, b.UserID); uErr == nil {
		if ev, evErr := h.Events.GetByID(ctx, b.EventID); evErr == nil {
			if adv, advErr := h.Adventures.GetByID(ctx, ev.AdventureID); advErr == nil {
				h.Notifier.BookingCancelled(ctx, u, b, adv, ev)
			}
		}
	}
	return c.JSON(http.StatusOK, bookingToView(b))
}
