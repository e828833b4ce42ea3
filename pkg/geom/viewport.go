package geom

import "math"

// Viewport maps flow space to screen space: screen = flow*Zoom + (X, Y).
type Viewport struct {
	X    float64 `json:"x" toml:"x" yaml:"x"`
	Y    float64 `json:"y" toml:"y" yaml:"y"`
	Zoom float64 `json:"zoom" toml:"zoom" yaml:"zoom"`
}

// Pan returns the translation part of the viewport.
func (v Viewport) Pan() Point { return Point{v.X, v.Y} }

// Lerp interpolates pan and zoom between v (t=0) and w (t=1).
func (v Viewport) Lerp(w Viewport, t float64) Viewport {
	return Viewport{
		X:    v.X + (w.X-v.X)*t,
		Y:    v.Y + (w.Y-v.Y)*t,
		Zoom: v.Zoom + (w.Zoom-v.Zoom)*t,
	}
}

// Grid is a snap grid cell size.
type Grid struct {
	X float64
	Y float64
}

// Snap rounds p to the nearest multiple of the grid cell on each axis.
func (g Grid) Snap(p Point) Point {
	if g.X <= 0 || g.Y <= 0 {
		return p
	}
	return Point{math.Round(p.X/g.X) * g.X, math.Round(p.Y/g.Y) * g.Y}
}

// ScreenToFlow converts a screen point into flow space. When snap is non-nil
// the result is rounded to the nearest grid multiple.
func ScreenToFlow(p Point, vp Viewport, snap *Grid) Point {
	f := Point{(p.X - vp.X) / vp.Zoom, (p.Y - vp.Y) / vp.Zoom}
	if snap != nil {
		f = snap.Snap(f)
	}
	return f
}

// FlowToScreen converts a flow point into screen space.
func FlowToScreen(p Point, vp Viewport) Point {
	return Point{p.X*vp.Zoom + vp.X, p.Y*vp.Zoom + vp.Y}
}

// RectToScreen transforms a flow-space rectangle through vp.
func RectToScreen(r Rect, vp Viewport) Rect {
	tl := FlowToScreen(r.TopLeft(), vp)
	return Rect{tl.X, tl.Y, r.Width * vp.Zoom, r.Height * vp.Zoom}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampRect moves a box of the given size so it lies inside extent and
// returns the adjusted top-left with a flag telling whether it moved. A box
// larger than the extent is aligned with the extent's top-left.
func ClampRect(topLeft Point, size Size, extent Rect) (Point, bool) {
	x := math.Max(extent.X, math.Min(topLeft.X, extent.Right()-size.Width))
	y := math.Max(extent.Y, math.Min(topLeft.Y, extent.Bottom()-size.Height))
	return Point{x, y}, x != topLeft.X || y != topLeft.Y
}

// ClampPan constrains the pan of vp so the visible flow area of a
// width x height screen stays within extent. Axes where the extent is
// smaller than the visible area center it instead.
func ClampPan(vp Viewport, width, height float64, extent Rect) (Viewport, bool) {
	out := vp
	out.X = clampPanAxis(vp.X, width, extent.X, extent.Right(), vp.Zoom)
	out.Y = clampPanAxis(vp.Y, height, extent.Y, extent.Bottom(), vp.Zoom)
	return out, out != vp
}

func clampPanAxis(pan, screen, lo, hi, zoom float64) float64 {
	if math.IsInf(lo, -1) || math.IsInf(hi, 1) {
		return pan
	}
	// Visible flow interval is [-pan/zoom, (screen-pan)/zoom].
	maxPan := -lo * zoom
	minPan := screen - hi*zoom
	if minPan > maxPan {
		return (minPan + maxPan) / 2
	}
	return Clamp(pan, minPan, maxPan)
}

// FitOptions configures [FitViewport].
type FitOptions struct {
	Padding float64
	MinZoom float64
	MaxZoom float64
}

// FitViewport returns the viewport that centers bounds in a width x height
// screen, scaled to fit with the given padding fraction and clamped to
// [MinZoom, MaxZoom]. Empty bounds keep zoom at 1 and center the box origin.
func FitViewport(bounds Rect, width, height float64, opts FitOptions) Viewport {
	zoom := 1.0
	if bounds.Width > 0 && bounds.Height > 0 {
		zoom = math.Min(width/bounds.Width, height/bounds.Height) * (1 - opts.Padding)
	}
	zoom = Clamp(zoom, opts.MinZoom, opts.MaxZoom)
	c := bounds.Center()
	return Viewport{
		X:    width/2 - c.X*zoom,
		Y:    height/2 - c.Y*zoom,
		Zoom: zoom,
	}
}

// ZoomAround scales vp to zoom while keeping the screen point anchor fixed.
func ZoomAround(vp Viewport, anchor Point, zoom float64) Viewport {
	f := ScreenToFlow(anchor, vp, nil)
	return Viewport{
		X:    anchor.X - f.X*zoom,
		Y:    anchor.Y - f.Y*zoom,
		Zoom: zoom,
	}
}

// AutoPanVelocity returns the per-frame pan delta for a pointer near the
// edge of a width x height screen. Inside margin the speed grows linearly
// with the penetration depth, reaching speed at the edge. Outside the
// margin band the result is the zero Point.
func AutoPanVelocity(p Point, width, height, margin, speed float64) Point {
	if margin <= 0 {
		return Point{}
	}
	return Point{
		X: edgeVelocity(p.X, width, margin, speed),
		Y: edgeVelocity(p.Y, height, margin, speed),
	}
}

func edgeVelocity(v, size, margin, speed float64) float64 {
	switch {
	case v < margin:
		return speed * math.Min(1, (margin-v)/margin)
	case v > size-margin:
		return -speed * math.Min(1, (v-(size-margin))/margin)
	}
	return 0
}
