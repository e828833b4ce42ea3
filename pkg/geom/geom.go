package geom

import (
	"fmt"
	"math"
)

// Point is a 2D coordinate. Depending on context it lives in flow space
// (the diagram's logical coordinates) or screen space (viewer pixels).
type Point struct {
	X float64 `json:"x" toml:"x" yaml:"x"`
	Y float64 `json:"y" toml:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p multiplied by k on both axes.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Lerp interpolates between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Size is a width/height pair. The zero Size means "not measured yet".
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether the size has no area in either dimension.
func (s Size) IsZero() bool { return s.Width <= 0 || s.Height <= 0 }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X      float64 `json:"x" toml:"x" yaml:"x"`
	Y      float64 `json:"y" toml:"y" yaml:"y"`
	Width  float64 `json:"width" toml:"width" yaml:"width"`
	Height float64 `json:"height" toml:"height" yaml:"height"`
}

// RectAt builds a rectangle from a top-left point and a size.
func RectAt(p Point, s Size) Rect { return Rect{p.X, p.Y, s.Width, s.Height} }

func (r Rect) Right() float64    { return r.X + r.Width }
func (r Rect) Bottom() float64   { return r.Y + r.Height }
func (r Rect) TopLeft() Point    { return Point{r.X, r.Y} }
func (r Rect) Size() Size        { return Size{r.Width, r.Height} }
func (r Rect) Center() Point     { return Point{r.X + r.Width/2, r.Y + r.Height/2} }
func (r Rect) IsEmpty() bool     { return r.Width <= 0 || r.Height <= 0 }
func (r Rect) Move(d Point) Rect { return Rect{r.X + d.X, r.Y + d.Y, r.Width, r.Height} }

// Contains reports whether o lies entirely within r (edges inclusive).
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// ContainsPoint reports whether p lies within r (edges inclusive).
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// OverlapArea returns the area shared by r and o. Rectangles that only
// touch along an edge have zero overlap.
func (r Rect) OverlapArea(o Rect) float64 {
	w := math.Min(r.Right(), o.Right()) - math.Max(r.X, o.X)
	h := math.Min(r.Bottom(), o.Bottom()) - math.Max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x0, y0 := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	x1, y1 := math.Max(r.Right(), o.Right()), math.Max(r.Bottom(), o.Bottom())
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Inflate grows r by m on every side.
func (r Rect) Inflate(m float64) Rect {
	return Rect{r.X - m, r.Y - m, r.Width + 2*m, r.Height + 2*m}
}

// UnionAll returns the bounding box of rects and false when rects is empty.
func UnionAll(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	box := rects[0]
	for _, r := range rects[1:] {
		box = box.Union(r)
	}
	return box, true
}

// TopLeft converts an anchor position into the top-left corner of a box of
// the given size. origin is fractional: (0,0) is top-left, (0.5,0.5) center.
func TopLeft(pos Point, size Size, origin Point) Point {
	return Point{pos.X - origin.X*size.Width, pos.Y - origin.Y*size.Height}
}

// Anchor is the inverse of [TopLeft].
func Anchor(topLeft Point, size Size, origin Point) Point {
	return Point{topLeft.X + origin.X*size.Width, topLeft.Y + origin.Y*size.Height}
}

// Position is the compass facing of a handle.
type Position int

const (
	Top Position = iota
	Right
	Bottom
	Left
)

var positionNames = [...]string{"top", "right", "bottom", "left"}

func (p Position) String() string {
	if p < Top || p > Left {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

// ParsePosition parses "top", "right", "bottom" or "left".
func ParsePosition(s string) (Position, error) {
	for i, name := range positionNames {
		if s == name {
			return Position(i), nil
		}
	}
	return Top, fmt.Errorf("unknown position %q", s)
}

func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Opposite returns the facing 180 degrees from p.
func (p Position) Opposite() Position {
	switch p {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	default:
		return Left
	}
}

// Horizontal reports whether p faces along the x axis.
func (p Position) Horizontal() bool { return p == Left || p == Right }

// Vector returns the unit vector p points along (y grows downward).
func (p Position) Vector() Point {
	switch p {
	case Top:
		return Point{0, -1}
	case Bottom:
		return Point{0, 1}
	case Left:
		return Point{-1, 0}
	default:
		return Point{1, 0}
	}
}
