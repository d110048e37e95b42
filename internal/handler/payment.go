package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/middleware"
	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
	"github.com/conexao-adventure/booking-api/internal/service"
)

// PaymentHandler serves the customer payment endpoints backed by the
// simulated gateway.
type PaymentHandler struct {
	Processor *service.PaymentProcessor
	Payments  *repository.PaymentRepo
	Bookings  *repository.BookingRepo
}

func NewPaymentHandler(processor *service.PaymentProcessor, payments *repository.PaymentRepo, bookings *repository.BookingRepo) *PaymentHandler {
	return &PaymentHandler{Processor: processor, Payments: payments, Bookings: bookings}
}

func paymentError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking not payable"})
	case errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough spots left"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}
}

// CreatePix opens a PIX charge for the caller's booking and returns
// the QR code.
func (h *PaymentHandler) CreatePix(c echo.Context) error {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pay, err := h.Processor.CreatePix(ctx, bookingID, middleware.UserID(c))
	if err != nil {
		return paymentError(c, err)
	}
	return c.JSON(http.StatusCreated, paymentToView(pay))
}

// VerifyPix polls a PIX charge.  The response carries the payment's
// current status; clients poll until approved.
func (h *PaymentHandler) VerifyPix(c echo.Context) error {
	paymentID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pay, err := h.Processor.VerifyPix(ctx, paymentID, middleware.UserID(c))
	if err != nil {
		return paymentError(c, err)
	}
	return c.JSON(http.StatusOK, paymentToView(pay))
}

type cardPaymentReq struct {
	Installments uint32 `json:"installments" validate:"omitempty,max=12"`
	CardBrand    string `json:"card_brand" validate:"required"`
	LastFour     string `json:"last_four" validate:"required,len=4,numeric"`
}

// ProcessCard charges a card against the caller's booking.  The
// result is final: approved settles the booking, rejected leaves it
// payable again.
func (h *PaymentHandler) ProcessCard(c echo.Context) error {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req cardPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pay, err := h.Processor.ProcessCard(ctx, bookingID, middleware.UserID(c), req.Installments, req.CardBrand, req.LastFour)
	if err != nil {
		return paymentError(c, err)
	}
	status := http.StatusOK
	if pay.Status == model.PaymentApproved {
		status = http.StatusCreated
	}
	return c.JSON(status, paymentToView(pay))
}

// ListByBooking returns the payment attempts of the caller's booking.
func (h *PaymentHandler) ListByBooking(c echo.Context) error {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b.UserID != middleware.UserID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	payments, err := h.Payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]paymentView, 0, len(payments))
	for i := range payments {
		out = append(out, paymentToView(&payments[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}
