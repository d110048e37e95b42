package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/config"
	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
	"github.com/conexao-adventure/booking-api/internal/service"
)

// StaffBookingHandler drives booking transitions on behalf of staff:
// approve, reject, cancel and complete.  Completing a booking awards
// the completion bonus and runs the badge cascade.
type StaffBookingHandler struct {
	Cfg        config.Config
	Ledger     *service.BookingLedger
	Loyalty    *service.LoyaltyEngine
	Bookings   *repository.BookingRepo
	Events     *repository.EventRepo
	Adventures *repository.AdventureRepo
	Users      *repository.UserRepo
	Notifier   *service.WhatsAppNotifier
}

func NewStaffBookingHandler(cfg config.Config, ledger *service.BookingLedger, loyalty *service.LoyaltyEngine, bookings *repository.BookingRepo, events *repository.EventRepo, adventures *repository.AdventureRepo, users *repository.UserRepo, notifier *service.WhatsAppNotifier) *StaffBookingHandler {
	return &StaffBookingHandler{Cfg: cfg, Ledger: ledger, Loyalty: loyalty, Bookings: bookings, Events: events, Adventures: adventures, Users: users, Notifier: notifier}
}

func (h *StaffBookingHandler) transition(c echo.Context, newStatus string) (*model.Booking, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Ledger.Transition(ctx, id, newStatus)
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrConflict):
		return nil, c.JSON(http.StatusConflict, echo.Map{"error": "transition not allowed"})
	case errors.Is(err, repository.ErrCapacityExceeded):
		return nil, c.JSON(http.StatusConflict, echo.Map{"error": "not enough spots left"})
	default:
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "transition failed"})
	}
}

// Approve confirms a pending booking and notifies the customer.
func (h *StaffBookingHandler) Approve(c echo.Context) error {
	b, err := h.transition(c, model.BookingApproved)
	if b == nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if u, uErr := h.Users.GetByID(ctx, b.UserID); uErr == nil {
		if ev, evErr := h.Events.GetByID(ctx, b.EventID); evErr == nil {
			if adv, advErr := h.Adventures.GetByID(ctx, ev.AdventureID); advErr == nil {
				h.Notifier.BookingConfirmed(ctx, u, b, adv, ev)
			}
		}
	}
	return c.JSON(http.StatusOK, bookingToView(b))
}

// Reject declines a pending booking.
func (h *StaffBookingHandler) Reject(c echo.Context) error {
	b, err := h.transition(c, model.BookingRejected)
	if b == nil {
		return err
	}
	return c.JSON(http.StatusOK, bookingToView(b))
}

// Cancel cancels a booking on behalf of staff, without the 24 hour
// restriction that applies to customers.
func (h *StaffBookingHandler) Cancel(c echo.Context) error {
	b, err := h.transition(c, model.BookingCancelled)
	if b == nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if u, uErr := h.Users.GetByID(ctx, b.UserID); uErr == nil {
		if ev, evErr := h.Events.GetByID(ctx, b.EventID); evErr == nil {
			if adv, advErr := h.Adventures.GetByID(ctx, ev.AdventureID); advErr == nil {
				h.Notifier.BookingCancelled(ctx, u, b, adv, ev)
			}
		}
	}
	return c.JSON(http.StatusOK, bookingToView(b))
}

// Complete marks an approved booking completed after the event ran,
// awards the completion bonus and re-evaluates badges.
func (h *StaffBookingHandler) Complete(c echo.Context) error {
	b, err := h.transition(c, model.BookingCompleted)
	if b == nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	var adventureID uint64
	if ev, evErr := h.Events.GetByID(ctx, b.EventID); evErr == nil {
		adventureID = ev.AdventureID
	}
	if err := h.Loyalty.AddPoints(ctx, b.UserID, h.Cfg.CompletionBonus, adventureID, "adventure completed"); err != nil {
		// Booking is already completed; report the loyalty failure
		// without undoing the transition.
		return c.JSON(http.StatusOK, echo.Map{
			"booking": bookingToView(b),
			"warning": "loyalty credit failed",
		})
	}
	return c.JSON(http.StatusOK, bookingToView(b))
}
