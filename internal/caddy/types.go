package caddy

import (
	"github.com/aicaddy/caddy-api/internal/models"
)

// Shot is a snapshot of one historical shot, resolved to the owning club's
// name. The engine only ever reads these; persistence lives elsewhere.
type Shot struct {
	Club     string
	Distance int
	Lie      models.Lie
	Shape    models.ShotShape
}

// Query carries the caller's situation on the course.
type Query struct {
	TargetDistance int
	Lie            string
	Bend           string
	Shape          string
}

// normalized fills in the documented defaults for omitted categories.
func (q Query) normalized() Query {
	if q.Lie == "" {
		q.Lie = string(models.LieFairway)
	}
	if q.Bend == "" {
		q.Bend = string(models.BendStraight)
	}
	if q.Shape == "" {
		q.Shape = string(models.ShapeStraight)
	}
	return q
}

// Confidence labels attached to each recommendation.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// Recommendation is one entry of the final ordered result.
type Recommendation struct {
	ClubName    string  `json:"club_name"`
	AvgDistance *int    `json:"avg_dist"`
	Confidence  string  `json:"confidence"`
	Probability float64 `json:"probability"` // percent, one decimal
	Agreement   float64 `json:"agreement"`   // percent, one decimal
}

// Result is the full response of one recommendation request.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	K               int              `json:"k"`
	TotalShots      int              `json:"total_shots_analyzed"`
	UsedFallback    bool             `json:"used_fallback"`
}

// ProjectedShot is one training shot mapped into the 2D visualization plane.
type ProjectedShot struct {
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
	Club       string           `json:"club"`
	Distance   int              `json:"distance"`
	Lie        models.Lie       `json:"lie"`
	Bend       models.Bend      `json:"bend"`
	Shape      models.ShotShape `json:"shot_shape"`
	IsNeighbor bool             `json:"is_neighbor"`
}

// Point2D is a bare coordinate pair.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projection is the visualization payload: every training shot and the query
// reduced to two principal components.
type Projection struct {
	Shots             []ProjectedShot   `json:"shots"`
	Query             Point2D           `json:"query"`
	PredictedClub     string            `json:"predicted_club"`
	ExplainedVariance []float64         `json:"explained_variance"`
	ClubColors        map[string]string `json:"club_colors"`
	K                 int               `json:"k"`
}
