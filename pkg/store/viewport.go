package store

import (
	"math"
	"slices"
	"time"

	"github.com/matzehuels/flowcore/pkg/anim"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// FitViewOptions configures [Store.FitView].
type FitViewOptions struct {
	// Nodes limits the fit to these ids. Empty fits every visible node.
	Nodes []string
	// Padding is the fraction of the viewport left empty, in [0, 1).
	Padding float64
	// MinZoom and MaxZoom narrow the configured zoom range. Zero keeps it.
	MinZoom float64
	MaxZoom float64
	// Duration animates the transition when positive.
	Duration time.Duration
}

// DefaultFitView returns fit options using the configured padding.
func (s *Store[T]) DefaultFitView() FitViewOptions {
	return FitViewOptions{Padding: s.cfg.Viewport.Padding}
}

// Viewport returns the current viewport.
func (s *Store[T]) Viewport() geom.Viewport { return s.vp }

// Size returns the screen size of the viewport.
func (s *Store[T]) Size() (width, height float64) { return s.width, s.height }

// SetViewport moves the viewport to vp, animating over duration when it is
// positive. Any running viewport animation is cancelled first; a new
// animation starts from the current, possibly interpolated, viewport.
func (s *Store[T]) SetViewport(vp geom.Viewport, duration time.Duration) {
	if s.closed {
		return
	}
	if err := errors.ValidateViewport(vp.X, vp.Y, vp.Zoom, math.SmallestNonzeroFloat64, math.MaxFloat64); err != nil {
		s.report(err.(*errors.Error))
		return
	}
	ch := s.channel(channelViewport)
	ch.Stop()
	if duration <= 0 {
		s.applyViewport(vp)
		return
	}
	from, to := s.vp, s.clampViewport(vp)
	s.logger.Debug("animating viewport", "to", to, "duration", duration)
	ch.Start(anim.Tween(duration, anim.EaseCubicInOut, func(t float64) {
		s.applyViewport(from.Lerp(to, t))
	}))
}

// PanBy shifts the viewport by (dx, dy) screen pixels.
func (s *Store[T]) PanBy(dx, dy float64) {
	if s.closed {
		return
	}
	s.channel(channelViewport).Stop()
	s.applyViewport(geom.Viewport{X: s.vp.X + dx, Y: s.vp.Y + dy, Zoom: s.vp.Zoom})
}

// ZoomTo zooms around the viewport center.
func (s *Store[T]) ZoomTo(zoom float64, duration time.Duration) {
	if s.closed {
		return
	}
	center := geom.Point{X: s.width / 2, Y: s.height / 2}
	s.SetViewport(geom.ZoomAround(s.vp, center, s.clampZoom(zoom)), duration)
}

// ZoomAt multiplies the zoom by factor keeping the screen point p fixed.
func (s *Store[T]) ZoomAt(p geom.Point, factor float64) {
	if s.closed || factor <= 0 {
		return
	}
	s.SetViewport(geom.ZoomAround(s.vp, p, s.clampZoom(s.vp.Zoom*factor)), 0)
}

// FitView fits the measured nodes into the viewport. It reports false
// when no node has been measured yet.
func (s *Store[T]) FitView(opts FitViewOptions) bool {
	if s.closed {
		return false
	}
	var subset []flow.Node[T]
	for _, n := range s.nodes {
		if n.Hidden || (len(opts.Nodes) > 0 && !slices.Contains(opts.Nodes, n.ID)) {
			continue
		}
		subset = append(subset, n)
	}

	rects := make([]geom.Rect, 0, len(subset))
	for _, n := range subset {
		if !n.Measured.IsZero() {
			rects = append(rects, s.hier.Placements[n.ID].Rect(n.Measured))
		}
	}
	bounds, ok := geom.UnionAll(rects)
	if !ok {
		return false
	}

	minZoom, maxZoom := s.cfg.Viewport.MinZoom, s.cfg.Viewport.MaxZoom
	if opts.MinZoom > 0 {
		minZoom = math.Max(minZoom, opts.MinZoom)
	}
	if opts.MaxZoom > 0 {
		maxZoom = math.Min(maxZoom, opts.MaxZoom)
	}
	vp := geom.FitViewport(bounds, s.width, s.height, geom.FitOptions{
		Padding: opts.Padding,
		MinZoom: minZoom,
		MaxZoom: max(minZoom, maxZoom),
	})
	s.SetViewport(vp, opts.Duration)
	return true
}

// ScreenToFlow converts a screen point to flow space, snapped to the grid
// when snapping is on.
func (s *Store[T]) ScreenToFlow(p geom.Point) geom.Point {
	return geom.ScreenToFlow(p, s.vp, s.cfg.Grid())
}

// FlowToScreen converts a flow point to screen space.
func (s *Store[T]) FlowToScreen(p geom.Point) geom.Point {
	return geom.FlowToScreen(p, s.vp)
}

// Resize records a new screen size for the viewport.
func (s *Store[T]) Resize(width, height float64) {
	if s.closed {
		return
	}
	if width < 0 || height < 0 || math.IsNaN(width) || math.IsNaN(height) {
		s.report(errors.New(errors.ErrCodeInvalidViewport, "invalid viewport size %vx%v", width, height))
		return
	}
	s.width, s.height = width, height
	s.applyViewport(s.vp)
}

func (s *Store[T]) clampZoom(z float64) float64 {
	return geom.Clamp(z, s.cfg.Viewport.MinZoom, s.cfg.Viewport.MaxZoom)
}

func (s *Store[T]) clampViewport(vp geom.Viewport) geom.Viewport {
	vp.Zoom = s.clampZoom(vp.Zoom)
	if e := s.cfg.Viewport.Extent; e != nil && s.width > 0 && s.height > 0 {
		vp, _ = geom.ClampPan(vp, s.width, s.height, e.Rect())
	}
	return vp
}

// applyViewport clamps vp and notifies OnMove when it differs from the
// current viewport.
func (s *Store[T]) applyViewport(vp geom.Viewport) {
	vp = s.clampViewport(vp)
	if vp == s.vp {
		return
	}
	s.vp = vp
	if s.h.OnMove != nil {
		s.h.OnMove(vp)
	}
}
