package caddy

import (
	"math"
	"sort"
)

// calibration merges two probability sources for each club: the local
// inverse-distance vote share among the k neighbors, and the classifier's
// global distribution. Clubs with local evidence get their share scaled by
// how tight the neighborhood is; clubs without it keep only a damped
// fraction of their global probability.
type calibration struct {
	probabilities map[string]float64 // merged per-club probability
	agreement     map[string]float64 // fraction of neighbors voting for the club

	avgNeighborDistance    float64
	maxNeighborDistance    float64
	medianNeighborDistance float64
	distanceConfidence     float64

	combined map[string]float64 // final score feeding the ranker
}

func calibrate(neighbors []neighbor, global map[string]float64) *calibration {
	c := &calibration{
		probabilities: make(map[string]float64),
		agreement:     make(map[string]float64),
		combined:      make(map[string]float64),
	}

	// Local vote shares over the neighborhood.
	localRaw := make(map[string]float64, len(neighbors))
	counts := make(map[string]int, len(neighbors))
	totalWeight := 0.0
	sumDist := 0.0
	maxDist := 0.0
	dists := make([]float64, 0, len(neighbors))
	for _, n := range neighbors {
		w := 1.0 / (n.distance + voteEpsilon)
		localRaw[n.label] += w
		counts[n.label]++
		totalWeight += w
		sumDist += n.distance
		if n.distance > maxDist {
			maxDist = n.distance
		}
		dists = append(dists, n.distance)
	}

	if len(neighbors) > 0 {
		c.avgNeighborDistance = sumDist / float64(len(neighbors))
	}
	c.maxNeighborDistance = maxDist
	if c.maxNeighborDistance == 0 {
		c.maxNeighborDistance = 1
	}
	c.medianNeighborDistance = median(dists)

	// Tighter clusters push the confidence toward 1; a neighborhood whose
	// average distance equals its max bottoms out at 0.5.
	c.distanceConfidence = sanitize(1.0 / (1.0 + c.avgNeighborDistance/c.maxNeighborDistance))

	for club, raw := range localRaw {
		share := 0.0
		if totalWeight > 0 {
			share = raw / totalWeight
		}
		adjusted := clamp01(sanitize(share * (localBlendBase + localBlendSpan*c.distanceConfidence)))
		c.probabilities[club] = adjusted
		c.agreement[club] = sanitize(float64(counts[club]) / float64(len(neighbors)))
	}

	// Clubs the neighborhood never saw: damped global probability only.
	for club, p := range global {
		if _, ok := c.probabilities[club]; !ok {
			c.probabilities[club] = clamp01(sanitize(p * globalDamping))
		}
	}

	for club, p := range c.probabilities {
		agree := c.agreement[club]
		c.combined[club] = sanitize(p * (agreementBase + agreementSpan*agree) * c.distanceConfidence)
	}

	return c
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// sanitize clamps NaN and negative intermediates to 0 so a numerical edge
// case (zero-variance distances, empty neighborhoods) can never leak into
// the ranking.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
