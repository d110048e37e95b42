package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
)

// StaffAdventureHandler manages the adventure catalog and pricing
// tiers.  All routes require the STAFF role.
type StaffAdventureHandler struct {
	Adventures *repository.AdventureRepo
}

func NewStaffAdventureHandler(adventures *repository.AdventureRepo) *StaffAdventureHandler {
	return &StaffAdventureHandler{Adventures: adventures}
}

type adventureReq struct {
	Title            string `json:"title" validate:"required"`
	Slug             string `json:"slug" validate:"required"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Difficulty       string `json:"difficulty" validate:"required,oneof=beginner moderate intermediate advanced expert"`
	DurationHours    uint32 `json:"duration_hours" validate:"required,min=1,max=720"`
	MinParticipants  uint32 `json:"min_participants" validate:"required,min=1"`
	MaxParticipants  uint32 `json:"max_participants" validate:"required,min=1"`
	Location         string `json:"location" validate:"required"`
	MeetingPoint     string `json:"meeting_point"`
	BasePriceCents   int64  `json:"base_price_cents" validate:"required,min=0"`
	IsFeatured       bool   `json:"is_featured"`
	IsActive         bool   `json:"is_active"`
	ShowInListing    bool   `json:"show_in_listing"`
}

func (r *adventureReq) toModel(a *model.Adventure) error {
	if r.MinParticipants > r.MaxParticipants {
		return errors.New("min_participants exceeds max_participants")
	}
	a.Title = strings.TrimSpace(r.Title)
	a.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	a.ShortDescription = r.ShortDescription
	a.Description = r.Description
	a.Difficulty = r.Difficulty
	a.DurationHours = r.DurationHours
	a.MinParticipants = r.MinParticipants
	a.MaxParticipants = r.MaxParticipants
	a.Location = r.Location
	a.MeetingPoint = r.MeetingPoint
	a.BasePriceCents = r.BasePriceCents
	a.IsFeatured = r.IsFeatured
	a.IsActive = r.IsActive
	a.ShowInListing = r.ShowInListing
	return nil
}

// List returns every adventure, including inactive and hidden ones.
func (h *StaffAdventureHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	advs, err := h.Adventures.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"adventures": advs})
}

// Create adds an adventure to the catalog.
func (h *StaffAdventureHandler) Create(c echo.Context) error {
	var req adventureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	var a model.Adventure
	if err := req.toModel(&a); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Adventures.Create(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, a)
}

// Update rewrites an adventure's mutable fields.  The slug is fixed
// after creation so published links never break.
func (h *StaffAdventureHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid adventure id"})
	}
	var req adventureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Adventures.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "adventure not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	slug := a.Slug
	if err := req.toModel(a); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	a.Slug = slug
	if err := h.Adventures.Update(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, a)
}

type tierReq struct {
	Name       string `json:"name" validate:"required"`
	PriceCents int64  `json:"price_cents" validate:"required,min=0"`
	StartDate  string `json:"start_date" validate:"required"` // RFC 3339
	EndDate    string `json:"end_date" validate:"required"`
	IsActive   bool   `json:"is_active"`
}

func (r *tierReq) window() (start, end time.Time, err error) {
	start, err = time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		return
	}
	end, err = time.Parse(time.RFC3339, r.EndDate)
	if err != nil {
		return
	}
	if end.Before(start) {
		err = errors.New("end_date before start_date")
	}
	return
}

// ListTiers returns the pricing tiers of an adventure.
func (h *StaffAdventureHandler) ListTiers(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid adventure id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	tiers, err := h.Adventures.TiersByAdventure(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tiers": tiers})
}

// CreateTier adds a pricing tier to an adventure.  Overlapping
// windows are allowed; resolution picks the cheapest applicable tier.
func (h *StaffAdventureHandler) CreateTier(c echo.Context) error {
	adventureID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid adventure id"})
	}
	var req tierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	start, end, err := req.window()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Adventures.GetByID(ctx, adventureID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "adventure not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	t := model.PricingTier{
		AdventureID: adventureID,
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		StartDate:   start,
		EndDate:     end,
		IsActive:    req.IsActive,
	}
	if err := h.Adventures.CreateTier(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tier failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// UpdateTier rewrites a pricing tier.
func (h *StaffAdventureHandler) UpdateTier(c echo.Context) error {
	adventureID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid adventure id"})
	}
	tierID, ok := pathID(c, "tier_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tier id"})
	}
	var req tierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	start, end, err := req.window()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t := model.PricingTier{
		ID:          tierID,
		AdventureID: adventureID,
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		StartDate:   start,
		EndDate:     end,
		IsActive:    req.IsActive,
	}
	if err := h.Adventures.UpdateTier(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update tier failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTier removes a pricing tier.  Existing bookings keep their
// snapshotted prices.
func (h *StaffAdventureHandler) DeleteTier(c echo.Context) error {
	adventureID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid adventure id"})
	}
	tierID, ok := pathID(c, "tier_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tier id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Adventures.DeleteTier(ctx, adventureID, tierID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete tier failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
