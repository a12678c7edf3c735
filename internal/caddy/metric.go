package caddy

import "math"

// Metric and blending constants. These weights were tuned empirically
// against real shot logs; treat them as a matched set rather than
// re-deriving any one of them in isolation.
const (
	// liePenalty is added whenever two shots were taken from different
	// lies. It dwarfs every other term: lie is the strongest signal of
	// whether a club is viable at all.
	liePenalty = 10.0

	// distanceNorm normalizes yardage gaps against an assumed 300-yard
	// maximum shot before distanceWeight scales them.
	distanceNorm   = 300.0
	distanceWeight = 5.0

	bendWeight  = 1.0
	shapeWeight = 1.0

	// voteEpsilon keeps inverse-distance vote weights finite when a
	// neighbor sits exactly on the query point.
	voteEpsilon = 0.0001

	// Calibration blend: local vote shares are scaled into
	// [localBlendBase, localBlendBase+localBlendSpan] by the distance
	// confidence; clubs absent from the neighborhood only keep
	// globalDamping of their global probability.
	localBlendBase = 0.6
	localBlendSpan = 0.4
	globalDamping  = 0.5

	// Combined score: probability is modulated by neighbor agreement.
	agreementBase = 0.3
	agreementSpan = 0.7

	// Final ranking blend of combined score vs distance match, and the
	// yardage range over which a distance mismatch decays to zero.
	scoreWeight         = 0.7
	distanceMatchWeight = 0.3
	distanceMatchRange  = 100.0

	// Confidence label and result-set cutoffs, relative to the top
	// candidate's combined score.
	highCutoff    = 0.75
	mediumCutoff  = 0.5
	dropCutoff    = 0.4
	nearTieCutoff = 0.85

	// fallbackDistanceFactor triggers the average-distance fallback when
	// the neighborhood is too scattered to trust.
	fallbackDistanceFactor = 2.0
)

// featureDistance scores the dissimilarity of two encoded shots. It is
// deterministic, symmetric and non-negative, but not a true metric: the
// categorical codes carry no ordering, so the bend/shape terms measure
// "different-ness", not magnitude.
func featureDistance(a, b featureVector) float64 {
	var lieTerm float64
	if a.lie != b.lie {
		lieTerm = liePenalty
	}
	distanceTerm := math.Abs(a.distance-b.distance) / distanceNorm * distanceWeight
	bendTerm := math.Abs(float64(a.bend-b.bend)) * bendWeight
	shapeTerm := math.Abs(float64(a.shape-b.shape)) * shapeWeight

	return lieTerm + distanceTerm + bendTerm + shapeTerm
}
