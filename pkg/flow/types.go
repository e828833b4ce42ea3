package flow

import (
	"github.com/matzehuels/flowcore/pkg/geom"
)

// =============================================================================
// Nodes
// =============================================================================

// ExtentKind selects how a node's placement is constrained.
type ExtentKind string

const (
	// ExtentNone leaves the node unconstrained (the global node extent still applies).
	ExtentNone ExtentKind = ""
	// ExtentParent keeps the node inside its parent's measured box.
	ExtentParent ExtentKind = "parent"
	// ExtentBox keeps the node inside Extent.Box (flow space, parent-relative for children).
	ExtentBox ExtentKind = "box"
)

// Extent is a placement constraint for a node.
type Extent struct {
	Kind ExtentKind `json:"kind,omitempty"`
	Box  geom.Rect  `json:"box,omitzero"`
}

// Node is a diagram node carrying an opaque payload of type T.
//
// Position is the location of the node's origin point: relative to the
// parent's top-left corner when ParentID is set, absolute otherwise.
// Selected, Dragging and Measured are transient view state maintained by the
// store; they never decide whether an externally supplied node changed.
type Node[T any] struct {
	ID       string      `json:"id"`
	Type     string      `json:"type,omitempty"`
	Position geom.Point  `json:"position"`
	Measured geom.Size   `json:"measured,omitzero"`
	Origin   *geom.Point `json:"origin,omitempty"`
	ParentID string      `json:"parentId,omitempty"`
	Extent   Extent      `json:"extent,omitzero"`

	Draggable   *bool `json:"draggable,omitempty"`
	Selectable  *bool `json:"selectable,omitempty"`
	Connectable *bool `json:"connectable,omitempty"`
	Focusable   *bool `json:"focusable,omitempty"`
	Deletable   *bool `json:"deletable,omitempty"`

	Hidden   bool `json:"hidden,omitempty"`
	Selected bool `json:"selected,omitempty"`
	Dragging bool `json:"dragging,omitempty"`
	ZIndex   int  `json:"zIndex,omitempty"`

	Data T `json:"data"`
}

// Flags holds store-wide defaults for the per-node boolean flags.
type Flags struct {
	Draggable   bool
	Selectable  bool
	Connectable bool
	Focusable   bool
	Deletable   bool
}

// DefaultFlags enables every capability.
var DefaultFlags = Flags{true, true, true, true, true}

// Resolve returns f with every non-nil override applied.
func (f Flags) Resolve(draggable, selectable, connectable, focusable, deletable *bool) Flags {
	return Flags{
		Draggable:   boolOr(draggable, f.Draggable),
		Selectable:  boolOr(selectable, f.Selectable),
		Connectable: boolOr(connectable, f.Connectable),
		Focusable:   boolOr(focusable, f.Focusable),
		Deletable:   boolOr(deletable, f.Deletable),
	}
}

// FlagsOf returns the effective flags of n given store defaults.
func FlagsOf[T any](n Node[T], defaults Flags) Flags {
	return defaults.Resolve(n.Draggable, n.Selectable, n.Connectable, n.Focusable, n.Deletable)
}

// OriginOf returns n's origin, falling back to def.
func OriginOf[T any](n Node[T], def geom.Point) geom.Point {
	if n.Origin != nil {
		return *n.Origin
	}
	return def
}

// Bool returns a pointer to v, for populating optional flags.
func Bool(v bool) *bool { return &v }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// =============================================================================
// Edges and handles
// =============================================================================

// Edge connects two nodes, optionally through specific handles.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Type         string `json:"type,omitempty"`
	Label        string `json:"label,omitempty"`

	Selected         bool    `json:"selected,omitempty"`
	Animated         bool    `json:"animated,omitempty"`
	Hidden           bool    `json:"hidden,omitempty"`
	Updatable        bool    `json:"updatable,omitempty"`
	InteractionWidth float64 `json:"interactionWidth,omitempty"`

	Style       string `json:"style,omitempty"`
	MarkerStart string `json:"markerStart,omitempty"`
	MarkerEnd   string `json:"markerEnd,omitempty"`
}

// HandleType is the direction of a handle.
type HandleType string

const (
	HandleSource HandleType = "source"
	HandleTarget HandleType = "target"
)

// Opposite returns the complementary handle type.
func (t HandleType) Opposite() HandleType {
	if t == HandleSource {
		return HandleTarget
	}
	return HandleSource
}

// Handle is a connection point on a node. X, Y, Width and Height are
// relative to the node's top-left corner.
type Handle struct {
	NodeID   string        `json:"nodeId"`
	ID       string        `json:"id,omitempty"`
	Type     HandleType    `json:"type"`
	Position geom.Position `json:"position"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Connectable      *bool `json:"connectable,omitempty"`
	ConnectableStart *bool `json:"connectableStart,omitempty"`
	ConnectableEnd   *bool `json:"connectableEnd,omitempty"`
}

// Rect returns the handle box offset by the owning node's top-left.
func (h Handle) Rect(nodeTopLeft geom.Point) geom.Rect {
	return geom.Rect{X: nodeTopLeft.X + h.X, Y: nodeTopLeft.Y + h.Y, Width: h.Width, Height: h.Height}
}

// Anchor returns the point an edge attaches to: the middle of the handle
// side facing away from the node.
func (h Handle) Anchor(nodeTopLeft geom.Point) geom.Point {
	r := h.Rect(nodeTopLeft)
	switch h.Position {
	case geom.Top:
		return geom.Point{X: r.X + r.Width/2, Y: r.Y}
	case geom.Bottom:
		return geom.Point{X: r.X + r.Width/2, Y: r.Bottom()}
	case geom.Left:
		return geom.Point{X: r.X, Y: r.Y + r.Height/2}
	default:
		return geom.Point{X: r.Right(), Y: r.Y + r.Height/2}
	}
}

// CanStart reports whether a connection may begin at h.
func (h Handle) CanStart(nodeConnectable bool) bool {
	return nodeConnectable && boolOr(h.Connectable, true) && boolOr(h.ConnectableStart, true)
}

// CanEnd reports whether a connection may end at h.
func (h Handle) CanEnd(nodeConnectable bool) bool {
	return nodeConnectable && boolOr(h.Connectable, true) && boolOr(h.ConnectableEnd, true)
}

// Connection is a proposed edge between two handles.
type Connection struct {
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle,omitempty"`
}
