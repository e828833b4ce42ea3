package changes

import (
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// Kind is the type of a change record.
type Kind string

const (
	KindAdd        Kind = "add"
	KindRemove     Kind = "remove"
	KindSelect     Kind = "select"
	KindPosition   Kind = "position"
	KindDimensions Kind = "dimensions"
	KindReplace    Kind = "replace"
)

// NodeChange is one mutation instruction for a node. Which fields are
// meaningful depends on Kind:
//
//	add, replace   Item
//	select         Selected
//	position       Position and/or Dragging
//	dimensions     Dimensions
type NodeChange[T any] struct {
	Kind       Kind          `json:"type"`
	ID         string        `json:"id"`
	Item       *flow.Node[T] `json:"item,omitempty"`
	Selected   bool          `json:"selected,omitempty"`
	Position   *geom.Point   `json:"position,omitempty"`
	Dragging   *bool         `json:"dragging,omitempty"`
	Dimensions *geom.Size    `json:"dimensions,omitempty"`
}

// EdgeChange is one mutation instruction for an edge. Only add, remove,
// select and replace apply to edges.
type EdgeChange struct {
	Kind     Kind       `json:"type"`
	ID       string     `json:"id"`
	Item     *flow.Edge `json:"item,omitempty"`
	Selected bool       `json:"selected,omitempty"`
}

// AddNode returns an add change for n.
func AddNode[T any](n flow.Node[T]) NodeChange[T] {
	return NodeChange[T]{Kind: KindAdd, ID: n.ID, Item: &n}
}

// ReplaceNode returns a replace change swapping in n.
func ReplaceNode[T any](n flow.Node[T]) NodeChange[T] {
	return NodeChange[T]{Kind: KindReplace, ID: n.ID, Item: &n}
}

// RemoveNode returns a remove change.
func RemoveNode[T any](id string) NodeChange[T] {
	return NodeChange[T]{Kind: KindRemove, ID: id}
}

// SelectNode returns a select change.
func SelectNode[T any](id string, selected bool) NodeChange[T] {
	return NodeChange[T]{Kind: KindSelect, ID: id, Selected: selected}
}

// MoveNode returns a position change. A nil dragging leaves the flag as is.
func MoveNode[T any](id string, pos geom.Point, dragging *bool) NodeChange[T] {
	return NodeChange[T]{Kind: KindPosition, ID: id, Position: &pos, Dragging: dragging}
}

// ResizeNode returns a dimensions change.
func ResizeNode[T any](id string, size geom.Size) NodeChange[T] {
	return NodeChange[T]{Kind: KindDimensions, ID: id, Dimensions: &size}
}

// AddEdge returns an add change for e.
func AddEdge(e flow.Edge) EdgeChange { return EdgeChange{Kind: KindAdd, ID: e.ID, Item: &e} }

// ReplaceEdge returns a replace change swapping in e.
func ReplaceEdge(e flow.Edge) EdgeChange { return EdgeChange{Kind: KindReplace, ID: e.ID, Item: &e} }

// RemoveEdge returns a remove change.
func RemoveEdge(id string) EdgeChange { return EdgeChange{Kind: KindRemove, ID: id} }

// SelectEdge returns a select change.
func SelectEdge(id string, selected bool) EdgeChange {
	return EdgeChange{Kind: KindSelect, ID: id, Selected: selected}
}
