package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conexao-adventure/booking-api/internal/model"
)

func TestDeriveLevel(t *testing.T) {
	cases := []struct {
		points   int64
		level    string
		progress float64
	}{
		{0, model.LevelTrailBeginner, 0},
		{100, model.LevelTrailBeginner, 50},
		{199, model.LevelTrailBeginner, 99.5},
		{200, model.LevelJungleExplorer, 0},
		{499, model.LevelJungleExplorer, 99.66666666666667},
		{500, model.LevelHighlandsWarrior, 0},
		{750, model.LevelHighlandsWarrior, 50},
		{1000, model.LevelMaster, 100},
		{5000, model.LevelMaster, 100},
	}
	for _, tc := range cases {
		level, progress := DeriveLevel(tc.points)
		require.Equal(t, tc.level, level, "points=%d", tc.points)
		require.InDelta(t, tc.progress, progress, 0.0001, "points=%d", tc.points)
	}
}

func TestDeriveLevelCrossingExample(t *testing.T) {
	// 180 lifetime points plus a 30 point award crosses into
	// jungle_explorer with 10/300 progress.
	level, progress := DeriveLevel(180 + 30)
	require.Equal(t, model.LevelJungleExplorer, level)
	require.InDelta(t, 3.3333, progress, 0.001)
}

func reqJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestPlanCascadeSimpleAward(t *testing.T) {
	catalog := []model.Badge{
		{ID: 1, Name: "First Steps", Points: 10, RequirementType: model.RequireAdventuresCompleted,
			RequirementValue: reqJSON(t, map[string]int{"count": 1})},
		{ID: 2, Name: "Veteran", Points: 50, RequirementType: model.RequireAdventuresCompleted,
			RequirementValue: reqJSON(t, map[string]int{"count": 10})},
	}

	awards, bonus := PlanCascade(catalog, nil, BadgeStats{CompletedCount: 1, TotalPoints: 40})
	require.Len(t, awards, 1)
	require.Equal(t, uint64(1), awards[0].ID)
	require.Equal(t, int64(10), bonus)
}

func TestPlanCascadeOwnedBadgesSkipped(t *testing.T) {
	catalog := []model.Badge{
		{ID: 1, Points: 10, RequirementType: model.RequireAdventuresCompleted,
			RequirementValue: reqJSON(t, map[string]int{"count": 1})},
	}
	owned := map[uint64]bool{1: true}

	awards, bonus := PlanCascade(catalog, owned, BadgeStats{CompletedCount: 5})
	require.Empty(t, awards)
	require.Zero(t, bonus)
}

func TestPlanCascadeBonusUnlocksPointsBadge(t *testing.T) {
	// Completing an adventure at 95 points awards the completion badge
	// (+10), which pushes the total past the 100 point badge, which in
	// turn pushes past the 150 point badge.  Each fires exactly once.
	catalog := []model.Badge{
		{ID: 1, Name: "Finisher", Points: 10, RequirementType: model.RequireAdventuresCompleted,
			RequirementValue: reqJSON(t, map[string]int{"count": 1})},
		{ID: 2, Name: "Century", Points: 50, RequirementType: model.RequirePointsEarned,
			RequirementValue: reqJSON(t, map[string]int64{"points": 100})},
		{ID: 3, Name: "Collector", Points: 5, RequirementType: model.RequirePointsEarned,
			RequirementValue: reqJSON(t, map[string]int64{"points": 150})},
	}

	awards, bonus := PlanCascade(catalog, nil, BadgeStats{CompletedCount: 1, TotalPoints: 95})
	require.Len(t, awards, 3)
	require.Equal(t, int64(65), bonus)

	seen := map[uint64]int{}
	for _, a := range awards {
		seen[a.ID]++
	}
	for id, n := range seen {
		require.Equal(t, 1, n, "badge %d awarded more than once", id)
	}
}

func TestPlanCascadeSpecificAdventure(t *testing.T) {
	catalog := []model.Badge{
		{ID: 7, Name: "Canyon Conqueror", Points: 25, RequirementType: model.RequireSpecificAdventure,
			RequirementValue: reqJSON(t, map[string]uint64{"adventure_id": 42})},
	}

	awards, _ := PlanCascade(catalog, nil, BadgeStats{CompletedAdventureIDs: map[uint64]bool{41: true}})
	require.Empty(t, awards)

	awards, bonus := PlanCascade(catalog, nil, BadgeStats{CompletedAdventureIDs: map[uint64]bool{42: true}})
	require.Len(t, awards, 1)
	require.Equal(t, int64(25), bonus)

	// Points settle at payment time, before any booking row is marked
	// completed; the adventure behind the payment counts on its own.
	awards, bonus = PlanCascade(catalog, nil, BadgeStats{TriggeringAdventureID: 42})
	require.Len(t, awards, 1)
	require.Equal(t, int64(25), bonus)

	awards, _ = PlanCascade(catalog, nil, BadgeStats{TriggeringAdventureID: 41})
	require.Empty(t, awards)

	// A zero-valued requirement must not match a zero trigger.
	zero := []model.Badge{
		{ID: 8, Points: 10, RequirementType: model.RequireSpecificAdventure,
			RequirementValue: reqJSON(t, map[string]uint64{"adventure_id": 0})},
	}
	awards, _ = PlanCascade(zero, nil, BadgeStats{})
	require.Empty(t, awards)
}

func TestPlanCascadeLegacyAndMalformedNeverMatch(t *testing.T) {
	catalog := []model.Badge{
		{ID: 1, Points: 10, RequirementType: model.RequirePaymentMethod,
			RequirementValue: reqJSON(t, map[string]string{"method": "pix"})},
		{ID: 2, Points: 10, RequirementType: model.RequirePointsEarned,
			RequirementValue: json.RawMessage(`{not json`)},
		{ID: 3, Points: 10, RequirementType: "unknown_type",
			RequirementValue: reqJSON(t, map[string]int{"count": 1})},
	}

	awards, bonus := PlanCascade(catalog, nil, BadgeStats{CompletedCount: 100, TotalPoints: 100000})
	require.Empty(t, awards)
	require.Zero(t, bonus)
}

func TestPlanCascadeTerminates(t *testing.T) {
	// Every badge grants points and unlocks the next; the loop must
	// still finish with each badge awarded once.
	var catalog []model.Badge
	for i := 1; i <= 20; i++ {
		catalog = append(catalog, model.Badge{
			ID: uint64(i), Points: 10, RequirementType: model.RequirePointsEarned,
			RequirementValue: reqJSON(t, map[string]int{"points": i * 10}),
		})
	}

	awards, bonus := PlanCascade(catalog, nil, BadgeStats{TotalPoints: 10})
	require.Len(t, awards, 20)
	require.Equal(t, int64(200), bonus)
}

func TestPointsForAmount(t *testing.T) {
	require.Equal(t, int64(400), PointsForAmount(40000, 1))
	require.Equal(t, int64(800), PointsForAmount(40000, 2))
	// Cents below a whole unit do not earn points.
	require.Equal(t, int64(0), PointsForAmount(99, 1))
	require.Equal(t, int64(1), PointsForAmount(199, 1))
}
