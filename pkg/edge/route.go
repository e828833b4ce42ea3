package edge

import "strings"

// Edge type tags understood by [Route].
const (
	TypeDefault      = "default"
	TypeBezier       = "bezier"
	TypeStraight     = "straight"
	TypeStep         = "step"
	TypeSmoothStep   = "smoothstep"
	TypeSimpleBezier = "simplebezier"
)

// Types lists the recognized edge type tags.
var Types = []string{TypeDefault, TypeStraight, TypeStep, TypeSmoothStep, TypeSimpleBezier}

// Options bundles the per-kind routing options.
type Options struct {
	Step   StepOptions
	Bezier BezierOptions
}

// Route dispatches on an edge type tag. Tags are case-insensitive; empty or
// unknown tags route as bezier.
func Route(edgeType string, p Params, opts Options) Path {
	switch strings.ToLower(edgeType) {
	case TypeStraight:
		return Straight(p)
	case TypeStep:
		return Step(p, opts.Step)
	case TypeSmoothStep:
		return SmoothStep(p, opts.Step)
	case TypeSimpleBezier:
		return SimpleBezier(p)
	default:
		return Bezier(p, opts.Bezier)
	}
}

// Known reports whether edgeType is a recognized tag.
func Known(edgeType string) bool {
	switch strings.ToLower(edgeType) {
	case TypeDefault, TypeBezier, TypeStraight, TypeStep, TypeSmoothStep, TypeSimpleBezier:
		return true
	}
	return false
}
