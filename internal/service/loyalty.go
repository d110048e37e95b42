package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/conexao-adventure/booking-api/internal/model"
	"github.com/conexao-adventure/booking-api/internal/repository"
)

// Point thresholds for the adventurer levels.
const (
	thresholdJungleExplorer   = 200
	thresholdHighlandsWarrior = 500
	thresholdMaster           = 1000
)

// DeriveLevel maps a lifetime point total to an adventurer level and
// the progress percentage toward the next one.  Masters sit at 100%.
func DeriveLevel(totalPoints int64) (string, float64) {
	switch {
	case totalPoints >= thresholdMaster:
		return model.LevelMaster, 100
	case totalPoints >= thresholdHighlandsWarrior:
		return model.LevelHighlandsWarrior, progress(totalPoints, thresholdHighlandsWarrior, thresholdMaster)
	case totalPoints >= thresholdJungleExplorer:
		return model.LevelJungleExplorer, progress(totalPoints, thresholdJungleExplorer, thresholdHighlandsWarrior)
	default:
		return model.LevelTrailBeginner, progress(totalPoints, 0, thresholdJungleExplorer)
	}
}

func progress(total, lower, upper int64) float64 {
	return float64(total-lower) / float64(upper-lower) * 100
}

// BadgeStats is the user activity snapshot the cascade evaluates badge
// requirements against.  TotalPoints is mutated by the cascade itself
// as bonuses accumulate.  TriggeringAdventureID names the adventure
// that caused the point change (zero when none); it counts toward
// specific-adventure badges even before a completed booking row
// reflects it, since points settle at payment time.
type BadgeStats struct {
	CompletedCount        int
	TotalPoints           int64
	TriggeringAdventureID uint64
	CompletedAdventureIDs map[uint64]bool
}

// badgeMatches evaluates one badge requirement against the stats.
// payment_method badges reference data the platform no longer tracks
// and never match.
func badgeMatches(b *model.Badge, stats *BadgeStats) bool {
	req := b.Requirement()
	switch b.RequirementType {
	case model.RequireAdventuresCompleted:
		return req.Count > 0 && stats.CompletedCount >= req.Count
	case model.RequirePointsEarned:
		return req.Points > 0 && stats.TotalPoints >= req.Points
	case model.RequireSpecificAdventure:
		if req.AdventureID == 0 {
			return false
		}
		return req.AdventureID == stats.TriggeringAdventureID ||
			stats.CompletedAdventureIDs[req.AdventureID]
	default:
		return false
	}
}

// PlanCascade decides which badges to award given the catalog, the
// already-owned set and the activity stats.  Because awarding a badge
// grants bonus points which may satisfy a points_earned badge, the
// catalog is re-scanned until a pass awards nothing.  The visited set
// makes each badge awardable at most once and the pass count is
// bounded by the catalog size, so the loop always terminates.  Returns
// the badges to award in order and the total bonus points granted.
func PlanCascade(catalog []model.Badge, owned map[uint64]bool, stats BadgeStats) ([]model.Badge, int64) {
	visited := make(map[uint64]bool, len(owned))
	for id := range owned {
		visited[id] = true
	}
	var (
		awards []model.Badge
		bonus  int64
	)
	for pass := 0; pass <= len(catalog); pass++ {
		awardedThisPass := false
		for i := range catalog {
			b := &catalog[i]
			if visited[b.ID] || !badgeMatches(b, &stats) {
				continue
			}
			visited[b.ID] = true
			awards = append(awards, *b)
			bonus += b.Points
			stats.TotalPoints += b.Points
			awardedThisPass = true
		}
		if !awardedThisPass {
			break
		}
	}
	return awards, bonus
}

// LoyaltyEngine applies point changes and badge awards.  Every
// mutation locks the user row first so concurrent awards serialize and
// the cascade never works from a stale balance.
type LoyaltyEngine struct {
	db       *sql.DB
	users    *repository.UserRepo
	loyalty  *repository.LoyaltyRepo
	bookings *repository.BookingRepo
	log      zerolog.Logger
}

// NewLoyaltyEngine wires the engine with its repositories.
func NewLoyaltyEngine(db *sql.DB, users *repository.UserRepo, loyalty *repository.LoyaltyRepo, bookings *repository.BookingRepo, log zerolog.Logger) *LoyaltyEngine {
	return &LoyaltyEngine{db: db, users: users, loyalty: loyalty, bookings: bookings, log: log}
}

// AddPoints credits points to a user, runs the badge cascade and
// re-derives the level, all in one transaction.  points may be zero to
// re-evaluate badges after a completion without a direct point grant.
// adventureID identifies the adventure behind the change, zero when
// none applies.
func (e *LoyaltyEngine) AddPoints(ctx context.Context, userID uint64, points int64, adventureID uint64, reason string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	u, err := e.users.GetByIDForUpdateTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	u.TotalPoints += points
	u.AvailablePoints += points

	catalog, err := e.loyalty.ListBadgesTx(ctx, tx)
	if err != nil {
		return err
	}
	owned, err := e.loyalty.OwnedBadgeIDsTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	completed, err := e.bookings.CompletedCountTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	adventureIDs, err := e.bookings.CompletedAdventureIDsTx(ctx, tx, userID)
	if err != nil {
		return err
	}

	awards, bonus := PlanCascade(catalog, owned, BadgeStats{
		CompletedCount:        completed,
		TotalPoints:           u.TotalPoints,
		TriggeringAdventureID: adventureID,
		CompletedAdventureIDs: adventureIDs,
	})
	for i := range awards {
		err := e.loyalty.AwardBadgeTx(ctx, tx, userID, awards[i].ID)
		if err != nil && !errors.Is(err, repository.ErrBadgeAlreadyAwarded) {
			return err
		}
	}
	u.TotalPoints += bonus
	u.AvailablePoints += bonus
	u.AdventurerLevel, u.LevelProgress = DeriveLevel(u.TotalPoints)

	if err := e.users.UpdatePointsTx(ctx, tx, u); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	e.log.Info().
		Uint64("user_id", userID).
		Int64("points", points).
		Uint64("adventure_id", adventureID).
		Int64("badge_bonus", bonus).
		Int("badges_awarded", len(awards)).
		Str("level", u.AdventurerLevel).
		Str("reason", reason).
		Msg("points applied")
	return nil
}

// RedeemReward exchanges available points for a catalog reward.  A
// missing or inactive reward, or an insufficient balance, returns
// (nil, nil): redemption fails silently rather than with an error, and
// the caller renders the absence as a declined redemption.
func (e *LoyaltyEngine) RedeemReward(ctx context.Context, userID, rewardID uint64) (*model.UserReward, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	u, err := e.users.GetByIDForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	w, err := e.loyalty.GetRewardTx(ctx, tx, rewardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !w.IsActive || u.AvailablePoints < w.PointsCost {
		return nil, nil
	}

	u.AvailablePoints -= w.PointsCost
	ur := &model.UserReward{UserID: userID, RewardID: rewardID, Status: model.RedemptionPending}
	if err := e.loyalty.CreateRedemptionTx(ctx, tx, ur); err != nil {
		return nil, err
	}
	// Lifetime total is untouched, so level and progress stay as-is.
	if err := e.users.UpdatePointsTx(ctx, tx, u); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	e.log.Info().
		Uint64("user_id", userID).
		Uint64("reward_id", rewardID).
		Int64("points_cost", w.PointsCost).
		Int64("available_after", u.AvailablePoints).
		Msg("reward redeemed")
	return ur, nil
}
