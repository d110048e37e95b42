package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
	"github.com/conexao-adventure/booking-api/internal/service"
)

// StaffEventHandler manages the event schedule.  All routes require
// the STAFF role.
type StaffEventHandler struct {
	Events   *repository.EventRepo
	Advs     *repository.AdventureRepo
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
	Notifier *service.WhatsAppNotifier
}

func NewStaffEventHandler(events *repository.EventRepo, advs *repository.AdventureRepo, bookings *repository.BookingRepo, users *repository.UserRepo, notifier *service.WhatsAppNotifier) *StaffEventHandler {
	return &StaffEventHandler{Events: events, Advs: advs, Bookings: bookings, Users: users, Notifier: notifier}
}

type eventReq struct {
	Date                 string  `json:"date" validate:"required"` // YYYY-MM-DD
	StartTime            string  `json:"start_time" validate:"required,hhmm"`
	EndTime              *string `json:"end_time" validate:"omitempty,hhmm"`
	MaxParticipants      uint32  `json:"max_participants" validate:"required,min=1"`
	CustomPriceCents     *int64  `json:"custom_price_cents" validate:"omitempty,min=0"`
	Status               string  `json:"status" validate:"omitempty,oneof=scheduled confirmed cancelled completed"`
	IsActive             bool    `json:"is_active"`
	RegistrationDeadline *string `json:"registration_deadline"` // RFC 3339
	MeetingInstructions  string  `json:"meeting_instructions"`
	SpecialNotes         string  `json:"special_notes"`
}

func (r *eventReq) apply(e *model.AdventureEvent) error {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return errors.New("invalid date")
	}
	e.Date = date
	e.StartTime = r.StartTime
	e.EndTime = r.EndTime
	e.MaxParticipants = r.MaxParticipants
	e.CustomPriceCents = r.CustomPriceCents
	if r.Status != "" {
		e.Status = r.Status
	} else if e.Status == "" {
		e.Status = model.EventScheduled
	}
	e.IsActive = r.IsActive
	if r.RegistrationDeadline != nil {
		dl, err := time.Parse(time.RFC3339, *r.RegistrationDeadline)
		if err != nil {
			return errors.New("invalid registration_deadline")
		}
		e.RegistrationDeadline = &dl
	} else {
		e.RegistrationDeadline = nil
	}
	e.MeetingInstructions = r.MeetingInstructions
	e.SpecialNotes = r.SpecialNotes
	return nil
}

// ListByAdventure returns every event of an adventure for staff
// views, newest first.
func (h *StaffEventHandler) ListByAdventure(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid adventure id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	events, err := h.Events.ListByAdventure(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Create schedules a new event for an adventure.
func (h *StaffEventHandler) Create(c echo.Context) error {
	adventureID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid adventure id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Advs.GetByID(ctx, adventureID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "adventure not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	e := model.AdventureEvent{AdventureID: adventureID}
	if err := req.apply(&e); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Events.Create(ctx, &e); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "event already exists at that date and time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, e)
}

// Update rewrites an event's mutable fields.  The participant count
// is derived and cannot be set here; use Recount to repair it.
func (h *StaffEventHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := req.apply(e); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Events.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "event already exists at that date and time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, e)
}

// ListBookings returns every booking of an event for staff review.
func (h *StaffEventHandler) ListBookings(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	bookings, err := h.Bookings.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]bookingView, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookingToView(&bookings[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Remind sends the event reminder to every approved booking of the
// event.  Sending is best effort per recipient; the response counts
// how many reminders were queued.
func (h *StaffEventHandler) Remind(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	adv, err := h.Advs.GetByID(ctx, ev.AdventureID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	bookings, err := h.Bookings.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	queued := 0
	for i := range bookings {
		b := &bookings[i]
		if b.Status != model.BookingApproved {
			continue
		}
		u, uErr := h.Users.GetByID(ctx, b.UserID)
		if uErr != nil {
			continue
		}
		h.Notifier.EventReminder(ctx, u, b, adv, ev)
		queued++
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": id, "reminders_queued": queued})
}

// Recount recomputes current_participants from approved bookings.
// The ledger keeps the projection consistent on every transition;
// this endpoint repairs drift after manual database surgery.
func (h *StaffEventHandler) Recount(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "recount failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.Events.GetByIDForUpdateTx(ctx, tx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "recount failed"})
	}
	current, err := h.Bookings.RecountParticipantsTx(ctx, tx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "recount failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "recount failed"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"event_id": id, "current_participants": current})
}
