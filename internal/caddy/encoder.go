package caddy

import (
	"sort"

	"github.com/aicaddy/caddy-api/internal/models"
)

// labelEncoder maps category strings to integer codes. It is fitted fresh on
// every request from that request's training set, so codes are only
// meaningful within a single request. Classes are sorted, which makes the
// unknown-value fallback (class 0) deterministic.
type labelEncoder struct {
	classes []string
	index   map[string]int
}

func fitLabels(values []string) *labelEncoder {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &labelEncoder{classes: classes, index: index}
}

// code returns the integer code for v. Values never seen during fitting map
// to the first fitted class rather than failing; a query for an unknown lie
// must still produce a recommendation.
func (e *labelEncoder) code(v string) int {
	if i, ok := e.index[v]; ok {
		return i
	}
	return 0
}

// featureVector is the fixed-order encoding of one shot:
// carry distance plus the integer codes of its categorical attributes.
type featureVector struct {
	distance float64
	lie      int
	bend     int
	shape    int
}

// trainingSet holds one request's encoded shot history together with the
// encoders fitted on it. It is a value object: built, used, discarded.
type trainingSet struct {
	rows   []featureVector
	labels []string // club name per row
	shots  []Shot   // originals, same order as rows

	lies   *labelEncoder
	bends  *labelEncoder
	shapes *labelEncoder
	clubs  *labelEncoder
}

func buildTrainingSet(shots []Shot) *trainingSet {
	lieVals := make([]string, len(shots))
	bendVals := make([]string, len(shots))
	shapeVals := make([]string, len(shots))
	clubVals := make([]string, len(shots))
	for i, s := range shots {
		lieVals[i] = string(s.Lie)
		bendVals[i] = string(models.InferBend(s.Shape))
		shapeVals[i] = string(s.Shape)
		clubVals[i] = s.Club
	}

	t := &trainingSet{
		rows:   make([]featureVector, len(shots)),
		labels: clubVals,
		shots:  shots,
		lies:   fitLabels(lieVals),
		bends:  fitLabels(bendVals),
		shapes: fitLabels(shapeVals),
		clubs:  fitLabels(clubVals),
	}
	for i, s := range shots {
		t.rows[i] = featureVector{
			distance: float64(s.Distance),
			lie:      t.lies.code(lieVals[i]),
			bend:     t.bends.code(bendVals[i]),
			shape:    t.shapes.code(shapeVals[i]),
		}
	}
	return t
}

// encodeQuery encodes the caller's situation with the same request-local
// encoders used for the training rows.
func (t *trainingSet) encodeQuery(q Query) featureVector {
	return featureVector{
		distance: float64(q.TargetDistance),
		lie:      t.lies.code(q.Lie),
		bend:     t.bends.code(q.Bend),
		shape:    t.shapes.code(q.Shape),
	}
}
