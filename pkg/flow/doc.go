// Package flow defines the diagram data model: nodes, edges, handles and
// connections.
//
// # Nodes
//
// A [Node] carries an opaque payload of type parameter T that the engine
// never inspects. Nodes may nest: a node with ParentID set stores its
// Position relative to the parent's top-left corner. [Resolve] walks parent
// chains (ancestors first) to compute absolute [Placement]s and reports
// missing or cyclic parents as [Issue]s instead of failing.
//
// # Edges
//
// An [Edge] joins two node ids, optionally through named handles. Edges may
// reference nodes that no longer exist; such dangling edges are skipped by
// routing but are not an error. [AddEdge] and [EdgeID] help external state
// owners turn a [Connection] into an edge.
//
// # Bounds
//
// [ComputeBounds] returns the union of the absolute rectangles of all
// measured nodes, honoring each node's origin.
package flow
