// Package edge computes edge path geometry.
//
// Every router is a pure function of [Params] (endpoint positions and the
// facing of each handle) plus per-kind options, returning a [Path] with SVG
// path data, the defining points and a label anchor:
//
//   - [Straight]: one segment, label at its midpoint.
//   - [Step] and [SmoothStep]: orthogonal routes chosen from a fixed table
//     keyed by the two facings. SmoothStep rounds bends; Step is SmoothStep
//     with radius zero. The label sits at the arc-length midpoint.
//   - [Bezier]: cubic curve with control points pushed out along each facing.
//   - [SimpleBezier]: cubic curve with control points derived from the
//     endpoints alone.
//
// [Route] dispatches on an edge's type tag.
package edge
