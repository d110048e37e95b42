package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
)

// PublicHandler serves the unauthenticated storefront: adventure
// listings, detail pages with live pricing and upcoming events with
// availability.  These routes sit behind the Redis response cache.
type PublicHandler struct {
	Adventures *repository.AdventureRepo
	Events     *repository.EventRepo
	Loyalty    *repository.LoyaltyRepo
	Loc        *time.Location
}

func NewPublicHandler(adventures *repository.AdventureRepo, events *repository.EventRepo, loyalty *repository.LoyaltyRepo, loc *time.Location) *PublicHandler {
	return &PublicHandler{Adventures: adventures, Events: events, Loyalty: loyalty, Loc: loc}
}

// ListAdventures returns active, listed adventures, featured first.
func (h *PublicHandler) ListAdventures(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	advs, err := h.Adventures.ListPublic(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adventureView, 0, len(advs))
	for i := range advs {
		out = append(out, adventureToView(&advs[i], false))
	}
	return c.JSON(http.StatusOK, echo.Map{"adventures": out})
}

// GetAdventure returns one adventure by slug with its pricing tiers
// and upcoming events.  Hidden adventures stay reachable by slug as
// long as they are active.
func (h *PublicHandler) GetAdventure(c echo.Context) error {
	slug := c.Param("slug")
	ctx, cancel := reqCtx(c)
	defer cancel()

	adv, err := h.Adventures.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "adventure not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !adv.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "adventure not found"})
	}

	tiers, err := h.Adventures.TiersByAdventure(ctx, adv.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	events, err := h.Events.ListUpcomingByAdventure(ctx, adv.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	now := time.Now().UTC()
	evViews := make([]eventView, 0, len(events))
	for i := range events {
		evViews = append(evViews, eventToView(adv, &events[i], tiers, now, h.Loc))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"adventure": adventureToView(adv, true),
		"events":    evViews,
	})
}

// GetEvent returns a single event with price and availability.
func (h *PublicHandler) GetEvent(c echo.Context) error {
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
	adv, err := h.Adventures.GetByID(ctx, ev.AdventureID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	tiers, err := h.Adventures.TiersByAdventure(ctx, adv.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, eventToView(adv, ev, tiers, time.Now().UTC(), h.Loc))
}

// ListRewards returns the active reward catalog so visitors can see
// what loyalty points buy before signing up.
func (h *PublicHandler) ListRewards(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rewards, err := h.Loyalty.ListActiveRewards(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	type rewardView struct {
		ID          uint64 `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Icon        string `json:"icon,omitempty"`
		PointsCost  int64  `json:"points_cost"`
		RewardType  string `json:"reward_type"`
	}
	out := make([]rewardView, 0, len(rewards))
	for _, w := range rewards {
		out = append(out, rewardView{
			ID: w.ID, Name: w.Name, Description: w.Description,
			Icon: w.Icon, PointsCost: w.PointsCost, RewardType: w.RewardType,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"rewards": out})
}

// ListLevels documents the level ladder for the storefront.
func (h *PublicHandler) ListLevels(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"levels": []echo.Map{
		{"level": model.LevelTrailBeginner, "min_points": 0},
		{"level": model.LevelJungleExplorer, "min_points": 200},
		{"level": model.LevelHighlandsWarrior, "min_points": 500},
		{"level": model.LevelMaster, "min_points": 1000},
	}})
}
