package store

import (
	"github.com/matzehuels/flowcore/pkg/changes"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// Measurement is a size report for one node from the rendering layer.
type Measurement struct {
	ID   string
	Size geom.Size
	// Handles replaces the node's registered handles. Nil keeps them.
	Handles []flow.Handle
}

// UpdateNodePositions moves node id by delta (flow space). When the node is
// selected, every other selected draggable node moves by the same delta.
// Nodes whose ancestor is also moving are left to follow their ancestor.
//
// Positions are snapped to the grid when snapping is on and clamped to the
// node's extent and the global node extent; clamping reports
// OUT_OF_EXTENT. One position batch is emitted.
func (s *Store[T]) UpdateNodePositions(id string, delta geom.Point, dragging bool) {
	if s.closed {
		return
	}
	targets := make(map[string]geom.Point)
	for _, mid := range s.moveSet(id) {
		n := s.nodes[s.index[mid]]
		targets[mid] = n.Position.Add(delta)
	}
	s.moveNodes(targets, dragging)
}

// moveSet returns the ids that move together when id is dragged.
func (s *Store[T]) moveSet(id string) []string {
	n, ok := s.Node(id)
	if !ok || !s.flags(n).Draggable {
		return nil
	}
	if !n.Selected {
		return []string{id}
	}
	picked := make(map[string]bool)
	var ids []string
	for _, m := range s.nodes {
		if (m.ID == id || m.Selected) && s.flags(m).Draggable {
			picked[m.ID] = true
			ids = append(ids, m.ID)
		}
	}
	out := ids[:0]
	for _, mid := range ids {
		if !s.ancestorIn(mid, picked) {
			out = append(out, mid)
		}
	}
	return out
}

func (s *Store[T]) ancestorIn(id string, set map[string]bool) bool {
	p := s.hier.Placements[id].Parent
	for hops := 0; p != "" && hops <= len(s.nodes); hops++ {
		if set[p] {
			return true
		}
		p = s.hier.Placements[p].Parent
	}
	return false
}

// moveNodes emits position changes moving each node to its target
// (parent-relative) position after snapping and clamping.
func (s *Store[T]) moveNodes(targets map[string]geom.Point, dragging bool) {
	if len(targets) == 0 {
		return
	}
	grid := s.cfg.Grid()
	var nc []changes.NodeChange[T]
	for _, n := range s.nodes {
		pos, ok := targets[n.ID]
		if !ok {
			continue
		}
		if grid != nil {
			pos = grid.Snap(pos)
		}
		pos = s.clampPosition(n, pos)
		if pos == n.Position && n.Dragging == dragging {
			continue
		}
		nc = append(nc, changes.MoveNode[T](n.ID, pos, &dragging))
	}
	if len(nc) > 0 {
		s.commit(nc, nil)
	}
}

// clampPosition keeps n inside its own extent and the global node extent.
// Both are evaluated in n's parent-relative frame.
func (s *Store[T]) clampPosition(n flow.Node[T], pos geom.Point) geom.Point {
	origin := flow.OriginOf(n, s.origin())
	tl := geom.TopLeft(pos, n.Measured, origin)
	parent := s.hier.Placements[n.ID].Parent

	var boxes []geom.Rect
	switch n.Extent.Kind {
	case flow.ExtentParent:
		if p, ok := s.Node(parent); ok && !p.Measured.IsZero() {
			boxes = append(boxes, geom.Rect{Width: p.Measured.Width, Height: p.Measured.Height})
		}
	case flow.ExtentBox:
		boxes = append(boxes, n.Extent.Box)
	}
	if e := s.cfg.Nodes.Extent; e != nil {
		box := e.Rect()
		if parent != "" {
			box = box.Move(geom.Point{}.Sub(s.hier.Placements[parent].TopLeft))
		}
		boxes = append(boxes, box)
	}

	clamped := false
	for _, box := range boxes {
		var moved bool
		tl, moved = geom.ClampRect(tl, n.Measured, box)
		clamped = clamped || moved
	}
	if !clamped {
		return pos
	}
	s.report(errors.New(errors.ErrCodeOutOfExtent, "node %q clamped into its extent", n.ID))
	return geom.Anchor(tl, n.Measured, origin)
}

// UpdateNodeDimensions records measured sizes and handle bounds. Reporting
// the same size again produces no change. Size changes are forwarded as
// dimensions changes and may grow parents.
//
// Measured sizes are view state and are recorded in both modes; the
// derived parent growth follows the usual controlled-mode rules.
func (s *Store[T]) UpdateNodeDimensions(measurements []Measurement) {
	if s.closed {
		return
	}
	var nc []changes.NodeChange[T]
	for _, m := range measurements {
		n, ok := s.Node(m.ID)
		if !ok {
			s.logger.Debug("measurement for unknown node", "id", m.ID)
			continue
		}
		if m.Handles != nil {
			hs := make([]flow.Handle, len(m.Handles))
			for i, h := range m.Handles {
				h.NodeID = m.ID
				hs[i] = h
			}
			s.handles[m.ID] = hs
		}
		if m.Size == n.Measured || m.Size.Width < 0 || m.Size.Height < 0 {
			continue
		}
		nc = append(nc, changes.ResizeNode[T](m.ID, m.Size))
	}
	if len(nc) == 0 {
		return
	}
	if s.cfg.Controlled {
		s.nodes = changes.ApplyNodeChanges(s.nodes, nc)
		s.refresh()
		// The explicit sizes are already in place; forward them along with
		// whatever growth they cause.
		grow := changes.Expand(s.nodes, touchedIDs(nc), s.changeOptions())
		all := append(nc, grow...)
		s.forwardNodes(all)
		return
	}
	s.commit(nc, nil)
}

func (s *Store[T]) forwardNodes(nc []changes.NodeChange[T]) {
	if s.h.OnNodesChange != nil {
		s.h.OnNodesChange(nc)
	}
}

func touchedIDs[T any](nc []changes.NodeChange[T]) []string {
	ids := make([]string, len(nc))
	for i, c := range nc {
		ids[i] = c.ID
	}
	return ids
}

// RemoveSelected removes the selected deletable nodes and edges. Removal
// cascades to descendants and connected edges.
func (s *Store[T]) RemoveSelected() {
	if s.closed {
		return
	}
	var nc []changes.NodeChange[T]
	for _, n := range s.nodes {
		if n.Selected && s.flags(n).Deletable {
			nc = append(nc, changes.RemoveNode[T](n.ID))
		}
	}
	var ec []changes.EdgeChange
	if s.cfg.Edges.Deletable {
		for _, e := range s.edges {
			if e.Selected {
				ec = append(ec, changes.RemoveEdge(e.ID))
			}
		}
	}
	if len(nc) == 0 && len(ec) == 0 {
		return
	}
	s.logger.Debug("removing selection", "nodes", len(nc), "edges", len(ec))
	s.commit(nc, ec)
}
