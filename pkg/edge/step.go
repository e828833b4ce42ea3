package edge

import (
	"math"

	"github.com/matzehuels/flowcore/pkg/geom"
)

// DefaultOffset is the handle stub length used when StepOptions.Offset is zero.
const DefaultOffset = 20

// StepOptions configures orthogonal routing.
type StepOptions struct {
	// BorderRadius rounds every bend. Zero gives sharp corners.
	BorderRadius float64
	// Offset is the length of the stub leaving each handle before the
	// first bend. Zero means DefaultOffset.
	Offset float64
}

// shape is the routing strategy picked for a pair of facings.
type shape int

const (
	// shapeOpposed: facings point at each other (e.g. right -> left).
	shapeOpposed shape = iota
	// shapeSame: both handles face the same way.
	shapeSame
	// shapeCorner: facings are perpendicular.
	shapeCorner
)

// stepTable is indexed [source facing][target facing] in Top, Right,
// Bottom, Left order.
var stepTable = [4][4]shape{
	geom.Top:    {shapeSame, shapeCorner, shapeOpposed, shapeCorner},
	geom.Right:  {shapeCorner, shapeSame, shapeCorner, shapeOpposed},
	geom.Bottom: {shapeOpposed, shapeCorner, shapeSame, shapeCorner},
	geom.Left:   {shapeCorner, shapeOpposed, shapeCorner, shapeSame},
}

// Step routes an orthogonal edge with sharp corners.
func Step(p Params, opts StepOptions) Path {
	opts.BorderRadius = 0
	return SmoothStep(p, opts)
}

// SmoothStep routes an orthogonal edge and rounds each bend with
// opts.BorderRadius, shrunk where a segment is too short to fit it.
// The path always leaves the source along its facing and enters the target
// against the target's facing. Handles facing the same way and aligned on
// the perpendicular axis are joined by a single straight segment.
func SmoothStep(p Params, opts StepOptions) Path {
	pts := StepPoints(p, opts.Offset)
	return Path{
		D:      roundedD(pts, opts.BorderRadius),
		Points: pts,
		Label:  arcMidpoint(pts),
	}
}

// StepPoints returns the corner points of the orthogonal route, endpoints
// included, with duplicate and collinear points removed.
func StepPoints(p Params, offset float64) []geom.Point {
	if offset <= 0 {
		offset = DefaultOffset
	}
	s, t := p.Source, p.Target
	if !valid(p.SourcePosition) || !valid(p.TargetPosition) {
		return simplify([]geom.Point{s, t})
	}
	var pts []geom.Point
	switch stepTable[p.SourcePosition][p.TargetPosition] {
	case shapeOpposed:
		pts = routeOpposed(s, p.SourcePosition, t, p.TargetPosition, offset)
	case shapeSame:
		pts = routeSame(s, p.SourcePosition, t, offset)
	default:
		pts = routeCorner(s, p.SourcePosition, t, p.TargetPosition, offset)
	}
	return simplify(pts)
}

func valid(p geom.Position) bool { return p >= geom.Top && p <= geom.Left }

func dot(a, b geom.Point) float64 { return a.X*b.X + a.Y*b.Y }

// axisPoint builds a point from coordinates along the main axis (the one
// the facing points along) and the cross axis.
func axisPoint(horizontal bool, main, cross float64) geom.Point {
	if horizontal {
		return geom.Point{X: main, Y: cross}
	}
	return geom.Point{X: cross, Y: main}
}

func split(p geom.Point, horizontal bool) (main, cross float64) {
	if horizontal {
		return p.X, p.Y
	}
	return p.Y, p.X
}

func routeOpposed(s geom.Point, sp geom.Position, t geom.Point, tp geom.Position, offset float64) []geom.Point {
	h := sp.Horizontal()
	sm, sc := split(s, h)
	tm, tc := split(t, h)
	ds := sp.Vector()

	if dot(t.Sub(s), ds) > 0 {
		if sc == tc {
			return []geom.Point{s, t}
		}
		mid := (sm + tm) / 2
		return []geom.Point{s, axisPoint(h, mid, sc), axisPoint(h, mid, tc), t}
	}

	// Target lies behind the source: leave through the stubs and cross over
	// halfway between the two handles.
	s2 := s.Add(ds.Scale(offset))
	t2 := t.Add(tp.Vector().Scale(offset))
	s2m, _ := split(s2, h)
	t2m, _ := split(t2, h)
	midCross := (sc + tc) / 2
	if sc == tc {
		midCross = sc + offset
	}
	return []geom.Point{s, s2, axisPoint(h, s2m, midCross), axisPoint(h, t2m, midCross), t2, t}
}

func routeSame(s geom.Point, pos geom.Position, t geom.Point, offset float64) []geom.Point {
	h := pos.Horizontal()
	sm, sc := split(s, h)
	tm, tc := split(t, h)
	if sc == tc {
		return []geom.Point{s, t}
	}
	var ext float64
	if dot(pos.Vector(), geom.Point{X: 1, Y: 1}) > 0 {
		ext = math.Max(sm, tm) + offset
	} else {
		ext = math.Min(sm, tm) - offset
	}
	return []geom.Point{s, axisPoint(h, ext, sc), axisPoint(h, ext, tc), t}
}

func routeCorner(s geom.Point, sp geom.Position, t geom.Point, tp geom.Position, offset float64) []geom.Point {
	ds, dt := sp.Vector(), tp.Vector()
	var c geom.Point
	if sp.Horizontal() {
		c = geom.Point{X: t.X, Y: s.Y}
	} else {
		c = geom.Point{X: s.X, Y: t.Y}
	}
	if dot(c.Sub(s), ds) > 0 && dot(t.Sub(c), dt) < 0 {
		return []geom.Point{s, c, t}
	}

	s2 := s.Add(ds.Scale(offset))
	t2 := t.Add(dt.Scale(offset))
	var a geom.Point
	if sp.Horizontal() {
		a = geom.Point{X: s2.X, Y: t2.Y}
	} else {
		a = geom.Point{X: t2.X, Y: s2.Y}
	}
	return []geom.Point{s, s2, a, t2, t}
}

// simplify drops repeated points and interior points that continue a
// segment in the same direction. Reversals are kept.
func simplify(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		if n := len(out); n >= 2 {
			a, b := out[n-2], out[n-1]
			d1, d2 := b.Sub(a), p.Sub(b)
			if d1.X*d2.Y-d1.Y*d2.X == 0 && dot(d1, d2) > 0 {
				out[n-1] = p
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// roundedD renders an orthogonal polyline, replacing each corner with a
// quadratic curve of the given radius.
func roundedD(pts []geom.Point, radius float64) string {
	var w pathWriter
	for i, p := range pts {
		switch {
		case i == 0:
			w.cmd('M', p)
		case i == len(pts)-1 || radius <= 0:
			w.cmd('L', p)
		default:
			prev, next := pts[i-1], pts[i+1]
			r := math.Min(radius, math.Min(prev.Dist(p)/2, p.Dist(next)/2))
			if r <= 0 {
				w.cmd('L', p)
				continue
			}
			a := p.Add(unit(prev.Sub(p)).Scale(r))
			b := p.Add(unit(next.Sub(p)).Scale(r))
			w.cmd('L', a)
			w.cmd('Q', p, b)
		}
	}
	return w.String()
}

func unit(v geom.Point) geom.Point {
	l := math.Hypot(v.X, v.Y)
	if l == 0 {
		return geom.Point{}
	}
	return v.Scale(1 / l)
}
