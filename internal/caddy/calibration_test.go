package caddy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalibrateDistanceConfidence(t *testing.T) {
	// Uniform neighborhood: avg == max, confidence bottoms at 0.5.
	uniform := []neighbor{
		{distance: 2, label: "A"},
		{distance: 2, label: "A"},
		{distance: 2, label: "B"},
	}
	cal := calibrate(uniform, nil)
	assert.InDelta(t, 0.5, cal.distanceConfidence, 1e-9)

	// Perfect matches: zero distances, max defaults to 1, confidence 1.
	exact := []neighbor{
		{distance: 0, label: "A"},
		{distance: 0, label: "A"},
	}
	cal = calibrate(exact, nil)
	assert.InDelta(t, 1.0, cal.distanceConfidence, 1e-9)
}

func TestCalibrateAgreement(t *testing.T) {
	neighbors := []neighbor{
		{distance: 1, label: "7 Iron"},
		{distance: 1, label: "7 Iron"},
		{distance: 1, label: "7 Iron"},
		{distance: 1, label: "8 Iron"},
	}
	cal := calibrate(neighbors, nil)

	assert.InDelta(t, 0.75, cal.agreement["7 Iron"], 1e-9)
	assert.InDelta(t, 0.25, cal.agreement["8 Iron"], 1e-9)
}

func TestCalibrateAbsentClubDamped(t *testing.T) {
	neighbors := []neighbor{
		{distance: 1, label: "7 Iron"},
	}
	global := map[string]float64{
		"7 Iron": 0.6,
		"9 Iron": 0.4,
	}
	cal := calibrate(neighbors, global)

	// 9 Iron never appears in the neighborhood, so it keeps half its
	// global probability and zero agreement.
	assert.InDelta(t, 0.2, cal.probabilities["9 Iron"], 1e-9)
	assert.Equal(t, 0.0, cal.agreement["9 Iron"])
}

func TestCalibrateCombinedScore(t *testing.T) {
	neighbors := []neighbor{
		{distance: 0, label: "7 Iron"},
		{distance: 0, label: "7 Iron"},
		{distance: 0, label: "7 Iron"},
	}
	cal := calibrate(neighbors, nil)

	// Unanimous exact neighborhood: share 1, confidence 1, so the
	// probability is the full blend and combined is p * (0.3 + 0.7).
	assert.InDelta(t, 1.0, cal.probabilities["7 Iron"], 1e-9)
	assert.InDelta(t, 1.0, cal.combined["7 Iron"], 1e-9)
}

func TestCalibrateNeverNegativeOrNaN(t *testing.T) {
	cal := calibrate(nil, map[string]float64{"X": -0.5})
	for _, p := range cal.probabilities {
		assert.GreaterOrEqual(t, p, 0.0)
	}
	for _, c := range cal.combined {
		assert.GreaterOrEqual(t, c, 0.0)
	}
	assert.False(t, cal.distanceConfidence < 0)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
	assert.Equal(t, 3.0, median([]float64{3}))
	assert.Equal(t, 2.5, median([]float64{1, 2, 3, 4}))
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
}
