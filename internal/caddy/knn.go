package caddy

import (
	"math"
	"sort"
)

const (
	minNeighbors = 3
	maxNeighbors = 10
)

// chooseK picks the neighborhood size for n training shots: round(sqrt(n))
// clamped to [3, 10], then clamped again so we never ask for more neighbors
// than there are shots.
func chooseK(n int) int {
	k := int(math.Round(math.Sqrt(float64(n))))
	if k < minNeighbors {
		k = minNeighbors
	}
	if k > maxNeighbors {
		k = maxNeighbors
	}
	if k > n {
		k = n
	}
	return k
}

// neighbor is one training row ranked by its distance to the query.
type neighbor struct {
	index    int
	distance float64
	label    string
}

// nearestNeighbors returns the k training rows closest to q under
// featureDistance, nearest first. Ties keep training order, which makes the
// result deterministic for a given snapshot.
func nearestNeighbors(t *trainingSet, q featureVector, k int) []neighbor {
	all := make([]neighbor, len(t.rows))
	for i, row := range t.rows {
		all[i] = neighbor{index: i, distance: featureDistance(row, q), label: t.labels[i]}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].distance < all[j].distance
	})
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}

// classProbabilities produces the smoothed per-club distribution over the
// whole training set, not just the neighborhood: every row votes for its
// club with weight 1/(distance+eps), and the totals are normalized to sum
// to 1. Clubs far from the query still get mass, just very little.
func classProbabilities(t *trainingSet, q featureVector) map[string]float64 {
	weights := make(map[string]float64, len(t.clubs.classes))
	total := 0.0
	for i, row := range t.rows {
		w := 1.0 / (featureDistance(row, q) + voteEpsilon)
		weights[t.labels[i]] += w
		total += w
	}

	probs := make(map[string]float64, len(weights))
	if total <= 0 {
		return probs
	}
	for club, w := range weights {
		probs[club] = w / total
	}
	return probs
}

// predictLabel returns the club winning the distance-weighted vote among
// the neighbors.
func predictLabel(neighbors []neighbor) string {
	votes := make(map[string]float64, len(neighbors))
	for _, n := range neighbors {
		votes[n.label] += 1.0 / (n.distance + voteEpsilon)
	}

	var best string
	bestVote := math.Inf(-1)
	// Iterate clubs in a stable order so equal votes resolve the same way
	// every time.
	for _, n := range neighbors {
		if v := votes[n.label]; v > bestVote {
			best = n.label
			bestVote = v
		}
	}
	return best
}
