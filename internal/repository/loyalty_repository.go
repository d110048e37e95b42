package repository

import (
	"context"
	"database/sql"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// LoyaltyRepo persists the badge and reward catalogs together with
// the per-user join records.  The (user, badge) unique key is the
// idempotency guard for badge awards: a second insert for the same
// pair is rejected by the database regardless of application state.
type LoyaltyRepo struct{ db *sql.DB }

// NewLoyaltyRepo returns a new LoyaltyRepo bound to the given database.
func NewLoyaltyRepo(db *sql.DB) *LoyaltyRepo { return &LoyaltyRepo{db: db} }

// ListBadgesTx returns the full badge catalog inside the loyalty
// engine's transaction.  The catalog is small; the engine evaluates
// it in memory.
func (r *LoyaltyRepo) ListBadgesTx(ctx context.Context, tx *sql.Tx) ([]model.Badge, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, description, icon, points, requirement_type, requirement_value, created_at
		 FROM badges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Badge, 0)
	for rows.Next() {
		var b model.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Points,
			&b.RequirementType, &b.RequirementValue, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// OwnedBadgeIDsTx returns the set of badge IDs the user has already
// earned, inside the engine's transaction.
func (r *LoyaltyRepo) OwnedBadgeIDsTx(ctx context.Context, tx *sql.Tx, userID uint64) (map[uint64]bool, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT badge_id FROM user_badges WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	owned := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

// AwardBadgeTx inserts the (user, badge) join row.  A duplicate key
// becomes ErrBadgeAlreadyAwarded so a racing cascade treats the award
// as already done instead of failing the transaction.
func (r *LoyaltyRepo) AwardBadgeTx(ctx context.Context, tx *sql.Tx, userID, badgeID uint64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_badges (user_id, badge_id) VALUES (?, ?)`, userID, badgeID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrBadgeAlreadyAwarded
		}
		return err
	}
	return nil
}

// BadgesByUser returns the earned badges joined with their catalog
// entries, newest first, for the loyalty summary endpoint.
func (r *LoyaltyRepo) BadgesByUser(ctx context.Context, userID uint64) ([]model.Badge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.name, b.description, b.icon, b.points, b.requirement_type,
		        b.requirement_value, b.created_at
		 FROM user_badges ub
		 JOIN badges b ON b.id = ub.badge_id
		 WHERE ub.user_id = ?
		 ORDER BY ub.earned_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Badge, 0)
	for rows.Next() {
		var b model.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Points,
			&b.RequirementType, &b.RequirementValue, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListActiveRewards returns the redeemable reward catalog.
func (r *LoyaltyRepo) ListActiveRewards(ctx context.Context) ([]model.Reward, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, icon, points_cost, reward_type, value, is_active, created_at
		 FROM rewards WHERE is_active = 1 ORDER BY points_cost`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reward, 0)
	for rows.Next() {
		var w model.Reward
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.Icon, &w.PointsCost,
			&w.RewardType, &w.Value, &w.IsActive, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetRewardTx fetches one reward inside the redemption transaction.
func (r *LoyaltyRepo) GetRewardTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reward, error) {
	var w model.Reward
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, description, icon, points_cost, reward_type, value, is_active, created_at
		 FROM rewards WHERE id = ?`, id).
		Scan(&w.ID, &w.Name, &w.Description, &w.Icon, &w.PointsCost,
			&w.RewardType, &w.Value, &w.IsActive, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateRedemptionTx inserts a pending redemption record inside the
// redemption transaction and populates the generated ID.
func (r *LoyaltyRepo) CreateRedemptionTx(ctx context.Context, tx *sql.Tx, ur *model.UserReward) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO user_rewards (user_id, reward_id, status) VALUES (?,?,?)`,
		ur.UserID, ur.RewardID, ur.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ur.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT redeemed_at FROM user_rewards WHERE id = ?`, ur.ID).Scan(&ur.RedeemedAt)
}

// RedemptionsByUser returns the user's redemptions, newest first.
func (r *LoyaltyRepo) RedemptionsByUser(ctx context.Context, userID uint64) ([]model.UserReward, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, reward_id, status, redeemed_at, used_at
		 FROM user_rewards WHERE user_id = ? ORDER BY redeemed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.UserReward, 0)
	for rows.Next() {
		var (
			ur     model.UserReward
			usedAt sql.NullTime
		)
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.RewardID, &ur.Status,
			&ur.RedeemedAt, &usedAt); err != nil {
			return nil, err
		}
		if usedAt.Valid {
			v := usedAt.Time
			ur.UsedAt = &v
		}
		out = append(out, ur)
	}
	return out, rows.Err()
}
