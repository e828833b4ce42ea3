// Package geom provides the coordinate math shared by the diagram engine.
//
// Two coordinate systems exist. Flow space is the diagram's logical plane
// where node positions live; screen space is the viewer's pixel grid. A
// [Viewport] relates them:
//
//	screen = flow * Zoom + (X, Y)
//	flow   = (screen - (X, Y)) / Zoom
//
// [ScreenToFlow] optionally snaps the result to a [Grid]. [FitViewport]
// computes the viewport that frames a bounding box, [ClampPan] and
// [ClampRect] enforce translate and node extents, and [AutoPanVelocity]
// gives the per-frame pan speed used while a gesture nears the screen edge.
//
// All functions are pure: identical inputs give identical outputs.
package geom
