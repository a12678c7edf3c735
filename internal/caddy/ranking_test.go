package caddy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aicaddy/caddy-api/internal/models"
)

func TestDriverBarred(t *testing.T) {
	assert.True(t, driverBarred("Driver", "Fairway"))
	assert.True(t, driverBarred("Driver", "Rough"))
	assert.False(t, driverBarred("Driver", "Tee Box"))
	assert.False(t, driverBarred("7 Iron", "Fairway"))
}

func TestLieAverages(t *testing.T) {
	shots := []Shot{
		{Club: "7 Iron", Distance: 150, Lie: models.LieFairway},
		{Club: "7 Iron", Distance: 160, Lie: models.LieTeeBox},
		{Club: "7 Iron", Distance: 130, Lie: models.LieRough},
		{Club: "9 Iron", Distance: 120, Lie: models.LieRough},
		{Club: "56 Degree", Distance: 80, Lie: models.LieSand},
	}

	t.Run("fairway pools tee box shots", func(t *testing.T) {
		avgs := lieAverages(shots, "Fairway")
		assert.InDelta(t, 155.0, avgs["7 Iron"], 1e-9)
		_, ok := avgs["9 Iron"]
		assert.False(t, ok, "rough-only club has no fairway average")
	})

	t.Run("rough stands alone", func(t *testing.T) {
		avgs := lieAverages(shots, "Rough")
		assert.InDelta(t, 130.0, avgs["7 Iron"], 1e-9)
		assert.InDelta(t, 120.0, avgs["9 Iron"], 1e-9)
	})

	t.Run("other lies use overall averages", func(t *testing.T) {
		avgs := lieAverages(shots, "Sand")
		assert.InDelta(t, (150.0+160.0+130.0)/3, avgs["7 Iron"], 1e-9)
		assert.InDelta(t, 80.0, avgs["56 Degree"], 1e-9)
	})
}

func TestRankCandidatesOrderingAndFilters(t *testing.T) {
	cal := &calibration{
		probabilities: map[string]float64{"7 Iron": 0.8, "8 Iron": 0.5, "Driver": 0.9, "3 Wood": 0.4},
		agreement:     map[string]float64{"7 Iron": 1.0, "8 Iron": 0.5, "Driver": 1.0, "3 Wood": 0.2},
		combined:      map[string]float64{"7 Iron": 0.8, "8 Iron": 0.4, "Driver": 0.9, "3 Wood": 0.0},
	}
	averages := map[string]float64{
		"7 Iron": 150,
		"8 Iron": 140,
		"Driver": 230,
	}
	q := Query{TargetDistance: 150, Lie: "Fairway"}

	candidates := rankCandidates(cal, averages, q)

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.club)
	}
	// Driver filtered off a fairway lie, 3 Wood filtered for zero score;
	// 7 Iron outranks 8 Iron on both blend terms.
	assert.Equal(t, []string{"7 Iron", "8 Iron"}, names)

	// final = combined*0.7 + max(0, 1-diff/100)*0.3
	assert.InDelta(t, 0.8*0.7+1.0*0.3, candidates[0].finalScore, 1e-9)
	assert.InDelta(t, 0.4*0.7+0.9*0.3, candidates[1].finalScore, 1e-9)
}

func TestRankCandidatesSkipsClubsWithoutAverages(t *testing.T) {
	cal := &calibration{
		probabilities: map[string]float64{"60 Degree": 0.9},
		agreement:     map[string]float64{"60 Degree": 1.0},
		combined:      map[string]float64{"60 Degree": 0.9},
	}
	candidates := rankCandidates(cal, map[string]float64{}, Query{TargetDistance: 70, Lie: "Fairway"})
	assert.Empty(t, candidates)
}

func TestLabelAndTrim(t *testing.T) {
	mk := func(club string, combined float64) candidate {
		return candidate{club: club, combined: combined, finalScore: combined}
	}

	t.Run("weak candidates dropped", func(t *testing.T) {
		cal := &calibration{avgNeighborDistance: 2, medianNeighborDistance: 1}
		kept := labelAndTrim([]candidate{mk("A", 1.0), mk("B", 0.3)}, cal)
		assert.Len(t, kept, 1)
		assert.Equal(t, "A", kept[0].club)
	})

	t.Run("high requires tight neighborhood", func(t *testing.T) {
		loose := &calibration{avgNeighborDistance: 2, medianNeighborDistance: 1}
		kept := labelAndTrim([]candidate{mk("A", 1.0)}, loose)
		assert.Equal(t, ConfidenceMedium, kept[0].confidence)

		tight := &calibration{avgNeighborDistance: 0.5, medianNeighborDistance: 1}
		kept = labelAndTrim([]candidate{mk("A", 1.0)}, tight)
		assert.Equal(t, ConfidenceHigh, kept[0].confidence)
	})

	t.Run("two results by default", func(t *testing.T) {
		cal := &calibration{}
		kept := labelAndTrim([]candidate{mk("A", 1.0), mk("B", 0.9), mk("C", 0.5)}, cal)
		assert.Len(t, kept, 2)
	})

	t.Run("third kept on a near tie", func(t *testing.T) {
		cal := &calibration{}
		kept := labelAndTrim([]candidate{mk("A", 1.0), mk("B", 0.9), mk("C", 0.88)}, cal)
		assert.Len(t, kept, 3)
	})

	t.Run("all zero scores yield nothing", func(t *testing.T) {
		cal := &calibration{}
		assert.Nil(t, labelAndTrim([]candidate{mk("A", 0)}, cal))
	})
}

func TestFallbackCandidates(t *testing.T) {
	bag := []string{"Driver", "7 Iron", "8 Iron", "9 Iron"}
	averages := map[string]float64{
		"Driver": 230,
		"7 Iron": 150,
		"8 Iron": 140,
		"9 Iron": 130,
	}
	q := Query{TargetDistance: 145, Lie: "Fairway"}

	candidates := fallbackCandidates(bag, averages, q)

	assert.Len(t, candidates, 2)
	assert.Equal(t, "7 Iron", candidates[0].club)
	assert.Equal(t, "8 Iron", candidates[1].club)
	for _, c := range candidates {
		assert.Equal(t, ConfidenceLow, c.confidence)
		assert.Equal(t, 0.0, c.probability)
		assert.Equal(t, 0.0, c.agreement)
	}
}
