package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/config"
	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
	"github.com/conexao-adventure/booking-api/internal/service"
	"github.com/conexao-adventure/booking-api/internal/utils"
)

// PreRegistrationHandler serves the pre-registration flow: the public
// signup form for first-time customers and the staff review queue that
// converts approved records into accounts and bookings.
type PreRegistrationHandler struct {
	Cfg      config.Config
	PreRegs  *repository.PreRegistrationRepo
	Users    *repository.UserRepo
	Events   *repository.EventRepo
	Advs     *repository.AdventureRepo
	Ledger   *service.BookingLedger
	Notifier *service.WhatsAppNotifier
}

func NewPreRegistrationHandler(cfg config.Config, preRegs *repository.PreRegistrationRepo, users *repository.UserRepo, events *repository.EventRepo, advs *repository.AdventureRepo, ledger *service.BookingLedger, notifier *service.WhatsAppNotifier) *PreRegistrationHandler {
	return &PreRegistrationHandler{Cfg: cfg, PreRegs: preRegs, Users: users, Events: events, Advs: advs, Ledger: ledger, Notifier: notifier}
}

type checkCPFReq struct {
	CPF string `json:"cpf" validate:"required,cpf"`
}

// CheckCPF tells the signup form whether a CPF already has an
// account, so returning customers are sent to login instead of the
// pre-registration form.
func (h *PreRegistrationHandler) CheckCPF(c echo.Context) error {
	var req checkCPFReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	_, err := h.Users.GetByCPF(ctx, req.CPF)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"has_account": true})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusOK, echo.Map{"has_account": false})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
}

type createPreRegReq struct {
	EventID               uint64 `json:"event_id" validate:"required"`
	FirstName             string `json:"first_name" validate:"required"`
	LastName              string `json:"last_name" validate:"required"`
	Email                 string `json:"email" validate:"required,email"`
	Phone                 string `json:"phone" validate:"required"`
	CPF                   string `json:"cpf" validate:"required,cpf"`
	BirthDate             string `json:"birth_date" validate:"required"`
	EmergencyContactName  string `json:"emergency_contact_name" validate:"required"`
	EmergencyContactPhone string `json:"emergency_contact_phone" validate:"required"`
	Address               string `json:"address"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	ZipCode               string `json:"zip_code"`
	MedicalConditions     string `json:"medical_conditions"`
	Medications           string `json:"medications"`
	Allergies             string `json:"allergies"`
	UserNotes             string `json:"user_notes"`
}

// Create accepts a pre-registration from the public form.  One per
// CPF per event; the event must still accept registrations.
func (h *PreRegistrationHandler) Create(c echo.Context) error {
	var req createPreRegReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	birth, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid birth_date"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, req.EventID)
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
	if open, _ := service.RegistrationOpen(adv, ev, time.Now().UTC(), h.Cfg.Timezone); !open {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "registration closed"})
	}

	p := &model.PreRegistration{
		EventID:               req.EventID,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		CPF:                   req.CPF,
		BirthDate:             birth,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		Address:               req.Address,
		City:                  req.City,
		State:                 req.State,
		ZipCode:               req.ZipCode,
		MedicalConditions:     req.MedicalConditions,
		Medications:           req.Medications,
		Allergies:             req.Allergies,
		Status:                model.PreRegPending,
		UserNotes:             req.UserNotes,
	}
	if err := h.PreRegs.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicatePreRegistration) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "cpf already pre-registered for this event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create pre-registration failed"})
	}

	h.Notifier.PreRegistrationReceived(ctx, p, adv, ev)
	return c.JSON(http.StatusCreated, echo.Map{"id": p.ID, "status": p.Status})
}

type preRegView struct {
	ID            uint64     `json:"id"`
	EventID       uint64     `json:"event_id"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	CPF           string     `json:"cpf"`
	Status        string     `json:"status"`
	UserNotes     string     `json:"user_notes,omitempty"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	CreatedUserID *uint64    `json:"created_user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
}

func preRegToView(p *model.PreRegistration) preRegView {
	return preRegView{
		ID:            p.ID,
		EventID:       p.EventID,
		FullName:      p.FullName(),
		Email:         p.Email,
		Phone:         p.Phone,
		CPF:           p.CPF,
		Status:        p.Status,
		UserNotes:     p.UserNotes,
		AdminNotes:    p.AdminNotes,
		CreatedUserID: p.CreatedUserID,
		CreatedAt:     p.CreatedAt,
		ApprovedAt:    p.ApprovedAt,
	}
}

// ListByStatus returns the staff review queue, default pending.
func (h *PreRegistrationHandler) ListByStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = model.PreRegPending
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	regs, err := h.PreRegs.ListByStatus(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]preRegView, 0, len(regs))
	for i := range regs {
		out = append(out, preRegToView(&regs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"pre_registrations": out})
}

type reviewReq struct {
	AdminNotes string `json:"admin_notes"`
}

// Reject closes a pre-registration without conversion.
func (h *PreRegistrationHandler) Reject(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reviewReq
	_ = c.Bind(&req)

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.PreRegs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pre-registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.Status != model.PreRegPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already reviewed"})
	}
	if err := h.PreRegs.UpdateStatus(ctx, id, model.PreRegRejected, req.AdminNotes, nil); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	p.Status = model.PreRegRejected
	p.AdminNotes = req.AdminNotes
	return c.JSON(http.StatusOK, preRegToView(p))
}

// Approve converts a pending pre-registration: an account is matched
// by CPF or created with a temporary password, the record is linked,
// and a pending booking for one participant is opened on the event.
// The temporary password is returned once for staff to pass along.
func (h *PreRegistrationHandler) Approve(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reviewReq
	_ = c.Bind(&req)

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.PreRegs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pre-registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.Status != model.PreRegPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already reviewed"})
	}

	// Match by CPF first; a returning customer keeps their account.
	var (
		u        *model.User
		tempPass string
	)
	u, err = h.Users.GetByCPF(ctx, p.CPF)
	if errors.Is(err, sql.ErrNoRows) {
		tempPass, err = utils.TempPassword()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password generation failed"})
		}
		hash, hErr := utils.HashPassword(tempPass, h.Cfg.BcryptCost)
		if hErr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
		}
		birth := p.BirthDate
		u = &model.User{
			Email:        p.Email,
			PasswordHash: hash,
			Role:         model.RoleCustomer,
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Phone:        p.Phone,
			CPF:          p.CPF,
			BirthDate:    &birth,
		}
		if _, err = h.Users.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "email already belongs to another account"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	// Open the booking before flipping the record so a capacity
	// failure leaves the pre-registration reviewable.
	b, err := h.Ledger.Create(ctx, u.ID, p.EventID, 1, p.UserNotes, p.Phone)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicateBooking):
		return c.JSON(http.StatusConflict, echo.Map{"error": "user already booked for this event"})
	case errors.Is(err, repository.ErrRegistrationClosed):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "registration closed"})
	case errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough spots left"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	now := time.Now().UTC()
	if err := h.PreRegs.Convert(ctx, id, u.ID, req.AdminNotes, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if ev, evErr := h.Events.GetByID(ctx, p.EventID); evErr == nil {
		if adv, advErr := h.Advs.GetByID(ctx, ev.AdventureID); advErr == nil {
			h.Notifier.BookingConfirmed(ctx, u, b, adv, ev)
		}
	}

	resp := echo.Map{
		"pre_registration_id": p.ID,
		"user_id":             u.ID,
		"booking_id":          b.ID,
		"status":              model.PreRegConverted,
	}
	if tempPass != "" {
		resp["temporary_password"] = tempPass
	}
	return c.JSON(http.StatusOK, resp)
}
