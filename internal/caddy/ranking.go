package caddy

import (
	"math"
	"sort"
	"strings"

	"github.com/aicaddy/caddy-api/internal/models"
)

// candidate is one club under consideration, alive only for the duration of
// a single request.
type candidate struct {
	club         string
	avgDistance  float64
	probability  float64
	agreement    float64
	combined     float64
	distanceDiff float64
	finalScore   float64
	confidence   string
}

// driverBarred enforces the one hard domain rule: never suggest a driver
// unless the ball is on a tee.
func driverBarred(club string, lie string) bool {
	return strings.Contains(strings.ToLower(club), "driver") && lie != string(models.LieTeeBox)
}

// lieAverages computes each club's average carry for the queried lie:
// Fairway and Tee Box shots pool together, Rough stands alone, and any
// other lie falls back to the club's overall average. Clubs with no
// qualifying shots are left out entirely.
func lieAverages(shots []Shot, lie string) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	include := func(s Shot) bool {
		switch lie {
		case string(models.LieFairway), string(models.LieTeeBox):
			return s.Lie == models.LieFairway || s.Lie == models.LieTeeBox
		case string(models.LieRough):
			return s.Lie == models.LieRough
		default:
			return true
		}
	}

	for _, s := range shots {
		if include(s) {
			sums[s.Club] += float64(s.Distance)
			counts[s.Club]++
		}
	}

	averages := make(map[string]float64, len(sums))
	for club, sum := range sums {
		averages[club] = sum / float64(counts[club])
	}
	return averages
}

// rankCandidates applies the domain filters and folds the distance-match
// score into each surviving club's final ranking score.
func rankCandidates(cal *calibration, averages map[string]float64, q Query) []candidate {
	candidates := make([]candidate, 0, len(cal.combined))
	for club, combined := range cal.combined {
		if combined <= 0 {
			continue
		}
		if driverBarred(club, q.Lie) {
			continue
		}
		avg, ok := averages[club]
		if !ok {
			continue
		}

		diff := math.Abs(avg - float64(q.TargetDistance))
		match := math.Max(0, 1-diff/distanceMatchRange)
		candidates = append(candidates, candidate{
			club:         club,
			avgDistance:  avg,
			probability:  cal.probabilities[club],
			agreement:    cal.agreement[club],
			combined:     combined,
			distanceDiff: diff,
			finalScore:   combined*scoreWeight + match*distanceMatchWeight,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].finalScore != candidates[j].finalScore {
			return candidates[i].finalScore > candidates[j].finalScore
		}
		return candidates[i].distanceDiff < candidates[j].distanceDiff
	})
	return candidates
}

// labelAndTrim drops weak candidates, assigns confidence labels relative to
// the strongest combined score, and cuts the list to two entries — three
// when the third is effectively tied with the second.
func labelAndTrim(candidates []candidate, cal *calibration) []candidate {
	if len(candidates) == 0 {
		return nil
	}

	topScore := 0.0
	for _, c := range candidates {
		if c.combined > topScore {
			topScore = c.combined
		}
	}
	if topScore <= 0 {
		return nil
	}

	kept := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.combined < dropCutoff*topScore {
			continue
		}
		switch {
		case c.combined > highCutoff*topScore && cal.avgNeighborDistance < cal.medianNeighborDistance:
			c.confidence = ConfidenceHigh
		case c.combined > mediumCutoff*topScore:
			c.confidence = ConfidenceMedium
		default:
			c.confidence = ConfidenceLow
		}
		kept = append(kept, c)
	}

	limit := 2
	if len(kept) >= 3 && kept[2].combined >= nearTieCutoff*kept[1].combined {
		limit = 3
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

// fallbackCandidates ignores the classifier entirely: when the neighborhood
// is empty or untrustworthy, just hand back the two clubs whose lie-specific
// average sits closest to the target. Deliberately simpler and more
// conservative than the KNN path.
func fallbackCandidates(bag []string, averages map[string]float64, q Query) []candidate {
	candidates := make([]candidate, 0, len(bag))
	for _, club := range bag {
		if driverBarred(club, q.Lie) {
			continue
		}
		avg, ok := averages[club]
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{
			club:         club,
			avgDistance:  avg,
			distanceDiff: math.Abs(avg - float64(q.TargetDistance)),
			confidence:   ConfidenceLow,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distanceDiff < candidates[j].distanceDiff
	})
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}
	return candidates
}
