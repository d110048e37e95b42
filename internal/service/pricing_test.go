package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conexao-adventure/booking-api/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePriceBaseFallback(t *testing.T) {
	adv := &model.Adventure{BasePriceCents: 45000}
	ev := &model.AdventureEvent{}

	got := ResolvePrice(adv, ev, nil, day(2026, time.March, 10))
	require.Equal(t, int64(45000), got.Cents)
	require.Equal(t, PriceSourceBase, got.Source)
}

func TestResolvePriceActiveTierWins(t *testing.T) {
	adv := &model.Adventure{BasePriceCents: 45000}
	ev := &model.AdventureEvent{}
	tiers := []model.PricingTier{
		{ID: 1, Name: "Early bird", PriceCents: 40000, StartDate: day(2026, time.January, 1), EndDate: day(2026, time.January, 31), IsActive: true},
		{ID: 2, Name: "Regular", PriceCents: 45000, StartDate: day(2026, time.February, 1), EndDate: day(2026, time.March, 31), IsActive: true},
	}

	got := ResolvePrice(adv, ev, tiers, day(2026, time.January, 15))
	require.Equal(t, int64(40000), got.Cents)
	require.Equal(t, PriceSourceTier, got.Source)
	require.Equal(t, uint64(1), got.TierID)
}

func TestResolvePriceInactiveTierSkipped(t *testing.T) {
	adv := &model.Adventure{BasePriceCents: 45000}
	tiers := []model.PricingTier{
		{ID: 1, PriceCents: 30000, StartDate: day(2026, time.January, 1), EndDate: day(2026, time.December, 31), IsActive: false},
	}

	got := ResolvePrice(adv, &model.AdventureEvent{}, tiers, day(2026, time.June, 1))
	require.Equal(t, PriceSourceBase, got.Source)
	require.Equal(t, int64(45000), got.Cents)
}

func TestResolvePriceWindowBoundsInclusive(t *testing.T) {
	adv := &model.Adventure{BasePriceCents: 45000}
	tier := model.PricingTier{ID: 1, PriceCents: 40000,
		StartDate: day(2026, time.January, 1), EndDate: day(2026, time.January, 31), IsActive: true}
	tiers := []model.PricingTier{tier}

	for _, at := range []time.Time{tier.StartDate, tier.EndDate} {
		got := ResolvePrice(adv, &model.AdventureEvent{}, tiers, at)
		require.Equal(t, PriceSourceTier, got.Source, "at %s", at)
	}
	got := ResolvePrice(adv, &model.AdventureEvent{}, tiers, tier.EndDate.Add(time.Second))
	require.Equal(t, PriceSourceBase, got.Source)
}

func TestResolvePriceOverlapLowestPriceWins(t *testing.T) {
	adv := &model.Adventure{BasePriceCents: 45000}
	tiers := []model.PricingTier{
		{ID: 1, Name: "Promo A", PriceCents: 42000, StartDate: day(2026, time.January, 1), EndDate: day(2026, time.March, 31), IsActive: true},
		{ID: 2, Name: "Promo B", PriceCents: 38000, StartDate: day(2026, time.February, 1), EndDate: day(2026, time.February, 28), IsActive: true},
	}

	got := ResolvePrice(adv, &model.AdventureEvent{}, tiers, day(2026, time.February, 10))
	require.Equal(t, int64(38000), got.Cents)
	require.Equal(t, uint64(2), got.TierID)
}

func TestResolvePriceOverlapTieBreaks(t *testing.T) {
	adv := &model.Adventure{BasePriceCents: 45000}

	// Same price: earlier start wins.
	tiers := []model.PricingTier{
		{ID: 5, PriceCents: 40000, StartDate: day(2026, time.February, 1), EndDate: day(2026, time.March, 31), IsActive: true},
		{ID: 6, PriceCents: 40000, StartDate: day(2026, time.January, 1), EndDate: day(2026, time.March, 31), IsActive: true},
	}
	got := ResolvePrice(adv, &model.AdventureEvent{}, tiers, day(2026, time.February, 10))
	require.Equal(t, uint64(6), got.TierID)

	// Same price and start: lowest ID wins.
	tiers = []model.PricingTier{
		{ID: 9, PriceCents: 40000, StartDate: day(2026, time.January, 1), EndDate: day(2026, time.March, 31), IsActive: true},
		{ID: 3, PriceCents: 40000, StartDate: day(2026, time.January, 1), EndDate: day(2026, time.March, 31), IsActive: true},
	}
	got = ResolvePrice(adv, &model.AdventureEvent{}, tiers, day(2026, time.February, 10))
	require.Equal(t, uint64(3), got.TierID)
}

func TestResolvePriceCustomShortCircuits(t *testing.T) {
	adv := &model.Adventure{BasePriceCents: 45000}
	custom := int64(25000)
	ev := &model.AdventureEvent{CustomPriceCents: &custom}
	tiers := []model.PricingTier{
		{ID: 1, PriceCents: 10000, StartDate: day(2026, time.January, 1), EndDate: day(2026, time.December, 31), IsActive: true},
	}

	got := ResolvePrice(adv, ev, tiers, day(2026, time.June, 1))
	require.Equal(t, custom, got.Cents)
	require.Equal(t, PriceSourceCustom, got.Source)
}

func TestNextPriceChange(t *testing.T) {
	tiers := []model.PricingTier{
		{ID: 1, Name: "Early bird", PriceCents: 40000, StartDate: day(2026, time.January, 1), EndDate: day(2026, time.January, 31), IsActive: true},
		{ID: 2, Name: "Regular", PriceCents: 45000, StartDate: day(2026, time.March, 1), EndDate: day(2026, time.March, 31), IsActive: true},
		{ID: 3, StartDate: day(2026, time.February, 1), EndDate: day(2026, time.February, 10), IsActive: false},
	}

	// Mid January the running tier's own end is not a change; the next
	// tier to come into effect is Regular.
	next := NextPriceChange(tiers, day(2026, time.January, 15))
	require.NotNil(t, next)
	require.Equal(t, uint64(2), next.ID)
	require.Equal(t, day(2026, time.March, 1), next.StartDate)

	next = NextPriceChange(tiers, day(2026, time.February, 15))
	require.NotNil(t, next)
	require.Equal(t, uint64(2), next.ID, "inactive tiers are ignored")

	require.Nil(t, NextPriceChange(tiers, day(2026, time.March, 1)), "a tier starting now is already in effect")
	require.Nil(t, NextPriceChange(tiers, day(2026, time.April, 1)))

	// Same start date falls back to the lowest ID.
	tied := []model.PricingTier{
		{ID: 9, StartDate: day(2026, time.March, 1), EndDate: day(2026, time.March, 31), IsActive: true},
		{ID: 4, StartDate: day(2026, time.March, 1), EndDate: day(2026, time.March, 31), IsActive: true},
	}
	next = NextPriceChange(tied, day(2026, time.February, 1))
	require.NotNil(t, next)
	require.Equal(t, uint64(4), next.ID)
}

func TestFinalPriceSnapshot(t *testing.T) {
	// Two participants at an early-bird 200.00 each: 400.00 total.
	require.Equal(t, int64(40000), FinalPriceCents(20000, 2))
	require.Equal(t, int64(0), FinalPriceCents(20000, 0))
}
