package models

// Lie represents the terrain a ball rests on before a shot.
type Lie string

const (
	LieFairway Lie = "Fairway"
	LieRough   Lie = "Rough"
	LieSand    Lie = "Sand"
	LieTeeBox  Lie = "Tee Box"
)

// ShotShape represents the curvature pattern of a shot's flight.
type ShotShape string

const (
	ShapeStraight ShotShape = "Straight"
	ShapeFade     ShotShape = "Fade"
	ShapeDraw     ShotShape = "Draw"
	ShapeSlice    ShotShape = "Slice"
	ShapeHook     ShotShape = "Hook"
)

// Bend is the hole-curvature label derived from a shot's shape. It is never
// stored; it is recomputed from ShotShape whenever features are built.
type Bend string

const (
	BendStraight Bend = "Straight"
	BendLeft     Bend = "Dogleg Left"
	BendRight    Bend = "Dogleg Right"
)

// Lies lists the closed set of valid lie values.
func Lies() []Lie {
	return []Lie{LieFairway, LieRough, LieSand, LieTeeBox}
}

// ShotShapes lists the closed set of valid shot shape values.
func ShotShapes() []ShotShape {
	return []ShotShape{ShapeStraight, ShapeFade, ShapeDraw, ShapeSlice, ShapeHook}
}

// ValidLie reports whether s is a member of the lie enum.
func ValidLie(s string) bool {
	switch Lie(s) {
	case LieFairway, LieRough, LieSand, LieTeeBox:
		return true
	}
	return false
}

// ValidShotShape reports whether s is a member of the shot shape enum.
func ValidShotShape(s string) bool {
	switch ShotShape(s) {
	case ShapeStraight, ShapeFade, ShapeDraw, ShapeSlice, ShapeHook:
		return true
	}
	return false
}

// InferBend derives the hole-curvature proxy from a recorded shot shape.
// Shots that curve left suggest the player handles a dogleg left, and
// vice versa.
func InferBend(shape ShotShape) Bend {
	switch shape {
	case ShapeDraw, ShapeHook:
		return BendLeft
	case ShapeFade, ShapeSlice:
		return BendRight
	default:
		return BendStraight
	}
}
