package store

import (
	"slices"

	"github.com/matzehuels/flowcore/pkg/changes"
)

// AddSelectedNodes selects the given nodes. Unless the multi-selection
// modifier is held, everything else is unselected first. Nodes that are
// not selectable are ignored.
func (s *Store[T]) AddSelectedNodes(ids []string) {
	if s.closed {
		return
	}
	s.selectOnly(ids, nil, !s.multi())
}

// AddSelectedEdges selects the given edges, replacing the selection unless
// the multi-selection modifier is held.
func (s *Store[T]) AddSelectedEdges(ids []string) {
	if s.closed {
		return
	}
	s.selectOnly(nil, ids, !s.multi())
}

// UnselectAll clears the selection.
func (s *Store[T]) UnselectAll() {
	if s.closed {
		return
	}
	s.selectOnly(nil, nil, true)
}

// SelectedNodes returns the sorted ids of selected nodes.
func (s *Store[T]) SelectedNodes() []string {
	n, _ := selectedIDs(s.nodes, s.edges)
	return n
}

// SelectedEdges returns the sorted ids of selected edges.
func (s *Store[T]) SelectedEdges() []string {
	_, e := selectedIDs(s.nodes, s.edges)
	return e
}

// selectOnly selects nodeIDs and edgeIDs. With replace, every other node
// and edge is unselected in the same batch.
func (s *Store[T]) selectOnly(nodeIDs, edgeIDs []string, replace bool) {
	var nc []changes.NodeChange[T]
	for _, n := range s.nodes {
		want := n.Selected && !replace
		if slices.Contains(nodeIDs, n.ID) && s.flags(n).Selectable {
			want = true
		}
		if want != n.Selected {
			nc = append(nc, changes.SelectNode[T](n.ID, want))
		}
	}
	var ec []changes.EdgeChange
	for _, e := range s.edges {
		want := e.Selected && !replace
		if slices.Contains(edgeIDs, e.ID) && s.cfg.Edges.Selectable {
			want = true
		}
		if want != e.Selected {
			ec = append(ec, changes.SelectEdge(e.ID, want))
		}
	}
	if len(nc) > 0 || len(ec) > 0 {
		s.commit(nc, ec)
	}
}

// setNodeSelection applies select changes for the given diff only.
func (s *Store[T]) setNodeSelection(added, removed []string) {
	var nc []changes.NodeChange[T]
	for _, id := range added {
		nc = append(nc, changes.SelectNode[T](id, true))
	}
	for _, id := range removed {
		nc = append(nc, changes.SelectNode[T](id, false))
	}
	if len(nc) > 0 {
		s.commit(nc, nil)
	}
}
