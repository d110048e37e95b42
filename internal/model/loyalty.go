package model

import (
	"encoding/json"
	"time"
)

// Badge requirement types.  The requirement_value JSON payload is
// decoded according to the type: {"count": n} for completed
// adventures, {"points": n} for earned points and {"adventure_id": n}
// for a specific adventure.
const (
	RequireAdventuresCompleted = "adventures_completed"
	RequirePointsEarned        = "points_earned"
	RequireSpecificAdventure   = "specific_adventure"
	// RequirePaymentMethod exists in legacy badge catalogs but
	// references a field the Adventure entity does not have; badges of
	// this type never match.  Kept so old rows still decode.
	RequirePaymentMethod = "payment_method"
)

// Badge is an achievement rule from the shared catalog.  Awarding a
// badge grants its Points as a bonus, which may in turn unlock
// further badges; the loyalty service bounds that cascade.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – display name.
//  Description      – what the badge is for.
//  Icon             – CSS icon class used by the front end.
//  Points           – bonus points granted on award.
//  RequirementType  – one of the Require* constants.
//  RequirementValue – raw JSON parameters for the requirement.
//  CreatedAt        – creation timestamp.
type Badge struct {
	ID               uint64          // badges.id
	Name             string          // badges.name
	Description      string          // badges.description
	Icon             string          // badges.icon
	Points           int64           // badges.points
	RequirementType  string          // badges.requirement_type
	RequirementValue json.RawMessage // badges.requirement_value (JSON)
	CreatedAt        time.Time       // badges.created_at
}

// BadgeRequirement is the decoded form of Badge.RequirementValue.
// Unused keys stay at their zero value for the given type.
type BadgeRequirement struct {
	Count       int    `json:"count"`
	Points      int64  `json:"points"`
	AdventureID uint64 `json:"adventure_id"`
	Method      string `json:"method"`
}

// Requirement decodes the requirement payload.  A malformed payload
// yields the zero requirement, which never matches anything.
func (b *Badge) Requirement() BadgeRequirement {
	var req BadgeRequirement
	if len(b.RequirementValue) > 0 {
		_ = json.Unmarshal(b.RequirementValue, &req)
	}
	return req
}

// Reward is a catalog entry redeemable with available points.  The
// Value payload is opaque to this core and interpreted by whatever
// fulfils the redemption (discount codes, free adventures, swag).
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  Description – what the customer gets.
//  Icon        – CSS icon class used by the front end.
//  PointsCost  – points deducted from the available balance.
//  RewardType  – free-form category (discount, free_adventure, ...).
//  Value       – raw JSON payload for the redemption handler.
//  IsActive    – inactive rewards cannot be redeemed.
//  CreatedAt   – creation timestamp.
type Reward struct {
	ID          uint64          // rewards.id
	Name        string          // rewards.name
	Description string          // rewards.description
	Icon        string          // rewards.icon
	PointsCost  int64           // rewards.points_cost
	RewardType  string          // rewards.reward_type
	Value       json.RawMessage // rewards.value (JSON)
	IsActive    bool            // rewards.is_active
	CreatedAt   time.Time       // rewards.created_at
}

// UserBadge marks a badge as earned by a user.  (user, badge) is
// unique, which is what makes badge awards idempotent even when a
// cascade re-evaluates the catalog.
type UserBadge struct {
	ID       uint64    // user_badges.id
	UserID   uint64    // user_badges.user_id
	BadgeID  uint64    // user_badges.badge_id
	EarnedAt time.Time // user_badges.earned_at
}

// Redemption status values for UserReward.
const (
	RedemptionPending  = "pending"
	RedemptionApproved = "approved"
	RedemptionUsed     = "used"
	RedemptionExpired  = "expired"
)

// UserReward records a redemption of a catalog reward.  It starts in
// pending status and moves through its own lifecycle independently of
// the points that paid for it.
type UserReward struct {
	ID         uint64     // user_rewards.id
	UserID     uint64     // user_rewards.user_id
	RewardID   uint64     // user_rewards.reward_id
	Status     string     // user_rewards.status
	RedeemedAt time.Time  // user_rewards.redeemed_at
	UsedAt     *time.Time // user_rewards.used_at (nullable)
}
