// Package service holds the domain logic that sits between the HTTP
// handlers and the repositories: price resolution, capacity rules, the
// booking ledger, the loyalty engine, payment simulation and outbound
// notifications.  Everything that can be a pure function is one, so it
// can be tested without a database.
package service

import (
	"time"

	"github.com/conexao-adventure/booking-api/internal/model"
)

// Price sources reported by ResolvePrice.
const (
	PriceSourceCustom = "custom"
	PriceSourceTier   = "tier"
	PriceSourceBase   = "base"
)

// ResolvedPrice is the outcome of price resolution for one event at
// one instant.
type ResolvedPrice struct {
	Cents    int64  `json:"price_cents"`
	Source   string `json:"source"`
	TierID   uint64 `json:"tier_id,omitempty"`
	TierName string `json:"tier_name,omitempty"`
}

// ResolvePrice returns the per-participant price for an event at the
// given instant.  An event-level custom price wins outright and skips
// tier resolution.  Otherwise the active tiers whose [start, end]
// window covers the instant compete; among them the lowest price wins,
// ties broken by earliest start date, then by lowest ID, so the result
// is deterministic however the tiers overlap.  With no applicable tier
// the adventure's base price applies.
func ResolvePrice(adv *model.Adventure, ev *model.AdventureEvent, tiers []model.PricingTier, now time.Time) ResolvedPrice {
	if ev != nil && ev.CustomPriceCents != nil {
		return ResolvedPrice{Cents: *ev.CustomPriceCents, Source: PriceSourceCustom}
	}
	var best *model.PricingTier
	for i := range tiers {
		t := &tiers[i]
		if !t.IsActive {
			continue
		}
		if now.Before(t.StartDate) || now.After(t.EndDate) {
			continue
		}
		if best == nil || tierBefore(t, best) {
			best = t
		}
	}
	if best != nil {
		return ResolvedPrice{Cents: best.PriceCents, Source: PriceSourceTier, TierID: best.ID, TierName: best.Name}
	}
	return ResolvedPrice{Cents: adv.BasePriceCents, Source: PriceSourceBase}
}

// tierBefore reports whether a should win over b: lowest price, then
// earliest start, then lowest ID.
func tierBefore(a, b *model.PricingTier) bool {
	if a.PriceCents != b.PriceCents {
		return a.PriceCents < b.PriceCents
	}
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.Before(b.StartDate)
	}
	return a.ID < b.ID
}

// NextPriceChange returns the next tier to come into effect: the
// active tier with the earliest start date after now, ties broken by
// lowest ID.  Nil when no active tier lies ahead.  Event custom prices
// never change by themselves, so callers skip this for custom-priced
// events.
func NextPriceChange(tiers []model.PricingTier, now time.Time) *model.PricingTier {
	var next *model.PricingTier
	for i := range tiers {
		t := &tiers[i]
		if !t.IsActive || !t.StartDate.After(now) {
			continue
		}
		if next == nil || t.StartDate.Before(next.StartDate) ||
			(t.StartDate.Equal(next.StartDate) && t.ID < next.ID) {
			next = t
		}
	}
	return next
}

// FinalPriceCents is the total a booking pays: unit price times
// participant count.  This is the value snapshotted on the booking.
func FinalPriceCents(unitCents int64, participants uint32) int64 {
	return unitCents * int64(participants)
}
