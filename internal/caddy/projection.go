package caddy

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aicaddy/caddy-api/internal/models"
)

const featureDim = 4

// clubPalette cycles over the clubs in a user's bag; sorted club order keeps
// the assignment stable across requests for the same bag.
var clubPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	"#aec7e8", "#ffbb78", "#98df8a",
}

// Project reduces the combined training+query feature space to two
// principal components for visualization. It fits its own encoders and
// recomputes the neighborhood, sharing no state with any concurrently
// running recommendation, and never influences the recommendation output.
func (e *Engine) Project(q Query, shots []Shot) (proj *Projection, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Error("projection pipeline panicked")
			proj = nil
			err = fmt.Errorf("could not project shot neighborhood: %v", r)
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

	// Stack training rows and the query into one matrix so both live in
	// the same projected plane.
	n := len(training.rows) + 1
	data := mat.NewDense(n, featureDim, nil)
	for i, row := range training.rows {
		data.SetRow(i, []float64{row.distance, float64(row.lie), float64(row.bend), float64(row.shape)})
	}
	data.SetRow(n-1, []float64{queryVec.distance, float64(queryVec.lie), float64(queryVec.bend), float64(queryVec.shape)})

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, errors.New("principal component decomposition failed")
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	variances := pc.VarsTo(nil)

	// Center the stacked matrix and project it onto the first two
	// components.
	centered := mat.NewDense(n, featureDim, nil)
	for j := 0; j < featureDim; j++ {
		col := mat.Col(nil, j, data)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			centered.Set(i, j, data.At(i, j)-mean)
		}
	}
	components := vectors.Slice(0, featureDim, 0, 2)
	var projected mat.Dense
	projected.Mul(centered, components)

	totalVar := 0.0
	for _, v := range variances {
		totalVar += v
	}
	explained := make([]float64, 2)
	if totalVar > 0 {
		explained[0] = variances[0] / totalVar
		explained[1] = variances[1] / totalVar
	}

	k := chooseK(len(shots))
	neighbors := nearestNeighbors(training, queryVec, k)
	neighborIdx := make(map[int]bool, len(neighbors))
	for _, nb := range neighbors {
		neighborIdx[nb.index] = true
	}

	points := make([]ProjectedShot, len(training.shots))
	for i, s := range training.shots {
		points[i] = ProjectedShot{
			X:          projected.At(i, 0),
			Y:          projected.At(i, 1),
			Club:       s.Club,
			Distance:   s.Distance,
			Lie:        s.Lie,
			Bend:       models.InferBend(s.Shape),
			Shape:      s.Shape,
			IsNeighbor: neighborIdx[i],
		}
	}

	colors := make(map[string]string, len(training.clubs.classes))
	for i, club := range training.clubs.classes {
		colors[club] = clubPalette[i%len(clubPalette)]
	}

	return &Projection{
		Shots:             points,
		Query:             Point2D{X: projected.At(n-1, 0), Y: projected.At(n-1, 1)},
		PredictedClub:     predictLabel(neighbors),
		ExplainedVariance: explained,
		ClubColors:        colors,
		K:                 k,
	}, nil
}
