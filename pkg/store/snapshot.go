package store

import (
	"maps"
	"slices"

	"github.com/matzehuels/flowcore/pkg/edge"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// Snapshot is an immutable copy of the store state for renderers. It shares
// no memory with the store except the opaque node payloads.
type Snapshot[T any] struct {
	Nodes      []flow.Node[T]            `json:"nodes"`
	Edges      []flow.Edge               `json:"edges"`
	Placements map[string]flow.Placement `json:"placements"`
	Handles    map[string][]flow.Handle  `json:"handles,omitempty"`
	Paths      map[string]edge.Path      `json:"paths"`
	Viewport   geom.Viewport             `json:"viewport"`
	Width      float64                   `json:"width"`
	Height     float64                   `json:"height"`

	SelectedNodes []string `json:"selectedNodes,omitempty"`
	SelectedEdges []string `json:"selectedEdges,omitempty"`
	Gesture       string   `json:"gesture"`
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() Snapshot[T] {
	handles := make(map[string][]flow.Handle, len(s.handles))
	for id, hs := range s.handles {
		handles[id] = slices.Clone(hs)
	}
	selNodes, selEdges := selectedIDs(s.nodes, s.edges)
	return Snapshot[T]{
		Nodes:         slices.Clone(s.nodes),
		Edges:         slices.Clone(s.edges),
		Placements:    maps.Clone(s.hier.Placements),
		Handles:       handles,
		Paths:         s.EdgePaths(),
		Viewport:      s.vp,
		Width:         s.width,
		Height:        s.height,
		SelectedNodes: selNodes,
		SelectedEdges: selEdges,
		Gesture:       s.g.kind.String(),
	}
}

// Bounds returns the flow-space box around the snapshot's measured,
// visible nodes.
func (sn Snapshot[T]) Bounds() (geom.Rect, bool) {
	var rects []geom.Rect
	for _, n := range sn.Nodes {
		if n.Hidden || n.Measured.IsZero() {
			continue
		}
		rects = append(rects, sn.Placements[n.ID].Rect(n.Measured))
	}
	return geom.UnionAll(rects)
}
