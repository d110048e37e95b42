package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/conexao-adventure/booking-api/internal/middleware"
	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
	"github.com/conexao-adventure/booking-api/internal/service"
)

// LoyaltyHandler serves the customer's loyalty surface: the points
// summary, earned badges, the reward catalog and redemptions.
type LoyaltyHandler struct {
	Engine  *service.LoyaltyEngine
	Loyalty *repository.LoyaltyRepo
	Users   *repository.UserRepo
}

func NewLoyaltyHandler(engine *service.LoyaltyEngine, loyalty *repository.LoyaltyRepo, users *repository.UserRepo) *LoyaltyHandler {
	return &LoyaltyHandler{Engine: engine, Loyalty: loyalty, Users: users}
}

type badgeView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	Points      int64  `json:"points"`
}

// Summary returns the caller's points, level, progress and badges.
func (h *LoyaltyHandler) Summary(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	uid := middleware.UserID(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	badges, err := h.Loyalty.BadgesByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	bv := make([]badgeView, 0, len(badges))
	for _, b := range badges {
		bv = append(bv, badgeView{ID: b.ID, Name: b.Name, Description: b.Description, Icon: b.Icon, Points: b.Points})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_points":     u.TotalPoints,
		"available_points": u.AvailablePoints,
		"adventurer_level": u.AdventurerLevel,
		"level_progress":   u.LevelProgress,
		"badges":           bv,
	})
}

type redemptionView struct {
	ID         uint64     `json:"id"`
	RewardID   uint64     `json:"reward_id"`
	Status     string     `json:"status"`
	RedeemedAt time.Time  `json:"redeemed_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}

func redemptionToView(ur *model.UserReward) redemptionView {
	return redemptionView{
		ID:         ur.ID,
		RewardID:   ur.RewardID,
		Status:     ur.Status,
		RedeemedAt: ur.RedeemedAt,
		UsedAt:     ur.UsedAt,
	}
}

// Redeem exchanges available points for a reward.  A declined
// redemption (unknown reward, inactive, insufficient balance) is a
// 422 rather than an error: the request was well-formed, the exchange
// just did not happen.
func (h *LoyaltyHandler) Redeem(c echo.Context) error {
	rewardID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reward id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	ur, err := h.Engine.RedeemReward(ctx, middleware.UserID(c), rewardID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "redeem failed"})
	}
	if ur == nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "redemption declined"})
	}
	return c.JSON(http.StatusCreated, redemptionToView(ur))
}

// Redemptions lists the caller's past redemptions, newest first.
func (h *LoyaltyHandler) Redemptions(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	redemptions, err := h.Loyalty.RedemptionsByUser(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]redemptionView, 0, len(redemptions))
	for i := range redemptions {
		out = append(out, redemptionToView(&redemptions[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"redemptions": out})
}
