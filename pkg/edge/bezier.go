package edge

import "github.com/matzehuels/flowcore/pkg/geom"

// DefaultCurvature is the control offset factor used when BezierOptions.Curvature is zero.
const DefaultCurvature = 0.25

// BezierOptions configures [Bezier].
type BezierOptions struct {
	// Curvature scales the control point offset relative to the distance
	// between the endpoints. Zero means DefaultCurvature.
	Curvature float64
}

// Bezier routes a cubic curve whose control points extend from each handle
// along its facing by Curvature times the endpoint distance, so short edges
// bend less than long ones.
func Bezier(p Params, opts BezierOptions) Path {
	k := opts.Curvature
	if k <= 0 {
		k = DefaultCurvature
	}
	offset := k * p.Source.Dist(p.Target)
	c1 := p.Source.Add(p.SourcePosition.Vector().Scale(offset))
	c2 := p.Target.Add(p.TargetPosition.Vector().Scale(offset))
	return cubic(p.Source, c1, c2, p.Target)
}

// SimpleBezier routes a cubic curve that ignores handle facings. Both
// control points sit on the vertical line halfway between the endpoints.
func SimpleBezier(p Params) Path {
	mx := (p.Source.X + p.Target.X) / 2
	c1 := geom.Point{X: mx, Y: p.Source.Y}
	c2 := geom.Point{X: mx, Y: p.Target.Y}
	return cubic(p.Source, c1, c2, p.Target)
}

func cubic(s, c1, c2, t geom.Point) Path {
	var w pathWriter
	w.cmd('M', s)
	w.cmd('C', c1, c2, t)
	return Path{
		D:      w.String(),
		Points: []geom.Point{s, c1, c2, t},
		Label:  cubicAt(s, c1, c2, t, 0.5),
	}
}

// cubicAt evaluates a cubic bezier at parameter u.
func cubicAt(s, c1, c2, t geom.Point, u float64) geom.Point {
	v := 1 - u
	a, b, c, d := v*v*v, 3*v*v*u, 3*v*u*u, u*u*u
	return geom.Point{
		X: a*s.X + b*c1.X + c*c2.X + d*t.X,
		Y: a*s.Y + b*c1.Y + c*c2.Y + d*t.Y,
	}
}
