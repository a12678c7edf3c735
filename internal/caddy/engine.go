package caddy

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// MinTrainingShots is the smallest shot history the engine will work with.
const MinTrainingShots = 3

var (
	// ErrInsufficientData is returned when the user has logged too few
	// shots for any recommendation to be meaningful.
	ErrInsufficientData = errors.New("at least 3 recorded shots are required to generate recommendations")

	// ErrInvalidTarget is returned for a non-positive target distance.
	ErrInvalidTarget = errors.New("target distance must be a positive number of yards")
)

// Engine runs the full recommendation pipeline. It holds no model state:
// every call refits encoders and the classifier from the snapshot it is
// given, so concurrent calls never share anything.
type Engine struct {
	log *logrus.Logger
}

func NewEngine(log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{log: log}
}

// Recommend produces the ordered club recommendations for one query against
// one user's shot history snapshot. bag is the user's full club roster and
// is only consulted on the fallback path. The pipeline never panics out:
// unexpected computation errors are converted into a plain error at this
// boundary.
func (e *Engine) Recommend(q Query, shots []Shot, bag []string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Error("recommendation pipeline panicked")
			result = nil
			err = fmt.Errorf("could not generate recommendations: %v", r)
		}
	}()

	q = q.normalized()
	if q.TargetDistance <= 0 {
		return nil, ErrInvalidTarget
	}
	if len(shots) < MinTrainingShots {
		return nil, ErrInsufficientData
	}

	training := buildTrainingSet(shots)
	queryVec := training.encodeQuery(q)

	k := chooseK(len(shots))
	neighbors := nearestNeighbors(training, queryVec, k)
	global := classProbabilities(training, queryVec)
	cal := calibrate(neighbors, global)

	averages := lieAverages(shots, q.Lie)
	candidates := labelAndTrim(rankCandidates(cal, averages, q), cal)

	usedFallback := false
	if len(candidates) == 0 || cal.avgNeighborDistance > fallbackDistanceFactor*float64(q.TargetDistance) {
		usedFallback = true
		candidates = fallbackCandidates(bag, averages, q)
	}

	recommendations := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		avg := int(math.Round(c.avgDistance))
		recommendations = append(recommendations, Recommendation{
			ClubName:    c.club,
			AvgDistance: &avg,
			Confidence:  c.confidence,
			Probability: roundPercent(c.probability),
			Agreement:   roundPercent(c.agreement),
		})
	}

	e.log.WithFields(logrus.Fields{
		"k":             k,
		"total_shots":   len(shots),
		"candidates":    len(recommendations),
		"used_fallback": usedFallback,
	}).Debug("recommendation pipeline complete")

	return &Result{
		Recommendations: recommendations,
		K:               k,
		TotalShots:      len(shots),
		UsedFallback:    usedFallback,
	}, nil
}

// roundPercent converts a [0,1] probability to a percentage with one
// decimal place.
func roundPercent(v float64) float64 {
	return math.Round(sanitize(v)*1000) / 10
}
