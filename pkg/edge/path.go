package edge

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/flowcore/pkg/geom"
)

// Params are the endpoints of an edge with the facing of each handle.
type Params struct {
	Source         geom.Point
	SourcePosition geom.Position
	Target         geom.Point
	TargetPosition geom.Position
}

// Path is routed edge geometry.
//
// D is SVG path data. Points is the polyline through the path's corners for
// straight and orthogonal edges, or [start, control1, control2, end] for
// bezier edges. Label is the suggested label anchor.
type Path struct {
	D      string       `json:"d"`
	Points []geom.Point `json:"points"`
	Label  geom.Point   `json:"label"`
}

// Straight connects source and target directly with the label at the midpoint.
func Straight(p Params) Path {
	pts := []geom.Point{p.Source, p.Target}
	return Path{
		D:      polylineD(pts),
		Points: pts,
		Label:  p.Source.Lerp(p.Target, 0.5),
	}
}

// pathWriter builds compact SVG path data.
type pathWriter struct{ b strings.Builder }

func (w *pathWriter) cmd(c byte, pts ...geom.Point) {
	if w.b.Len() > 0 {
		w.b.WriteByte(' ')
	}
	w.b.WriteByte(c)
	for i, p := range pts {
		if i > 0 {
			w.b.WriteByte(' ')
		}
		w.b.WriteString(num(p.X))
		w.b.WriteByte(',')
		w.b.WriteString(num(p.Y))
	}
}

func (w *pathWriter) String() string { return w.b.String() }

func polylineD(pts []geom.Point) string {
	var w pathWriter
	for i, p := range pts {
		if i == 0 {
			w.cmd('M', p)
			continue
		}
		w.cmd('L', p)
	}
	return w.String()
}

func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // normalizes -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// arcMidpoint returns the point halfway along the polyline by length.
func arcMidpoint(pts []geom.Point) geom.Point {
	if len(pts) == 0 {
		return geom.Point{}
	}
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Dist(pts[i])
	}
	half := total / 2
	for i := 1; i < len(pts); i++ {
		seg := pts[i-1].Dist(pts[i])
		if seg > 0 && half <= seg {
			return pts[i-1].Lerp(pts[i], half/seg)
		}
		half -= seg
	}
	return pts[len(pts)-1]
}
