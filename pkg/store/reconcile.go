package store

import (
	"time"

	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/observability"
)

// SetNodes reconciles the store against the owner's node list.
//
// Nodes are matched by id. Surviving nodes keep their measured size when
// the incoming node carries none, and their registered handles. In
// uncontrolled mode they also keep the store's Selected and Dragging flags;
// in controlled mode the incoming values are authoritative. Removed ids are
// dropped together with their handles.
//
// Duplicate ids keep the later entry (DUPLICATE_ID is reported). Nodes
// with a missing or cyclic parent are placed top-level (INVALID_PARENT).
func (s *Store[T]) SetNodes(nodes []flow.Node[T]) {
	if s.closed {
		return
	}
	start := time.Now()

	last := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if err := errors.ValidateID("node", n.ID); err != nil {
			s.report(err.(*errors.Error))
			continue
		}
		if _, dup := last[n.ID]; dup {
			s.report(errors.New(errors.ErrCodeDuplicateID, "duplicate node id %q: keeping the later entry", n.ID))
		}
		last[n.ID] = i
	}

	next := make([]flow.Node[T], 0, len(last))
	for i, n := range nodes {
		if j, ok := last[n.ID]; !ok || j != i {
			continue
		}
		if prev, ok := s.Node(n.ID); ok {
			if n.Measured.IsZero() {
				n.Measured = prev.Measured
			}
			if !s.cfg.Controlled {
				n.Selected = prev.Selected
				n.Dragging = prev.Dragging
			}
		}
		next = append(next, n)
	}

	s.nodes = next
	s.dropStaleHandles()
	s.refresh()
	for _, issue := range s.hier.Issues {
		switch issue.Kind {
		case flow.IssueParentCycle:
			s.report(errors.New(errors.ErrCodeInvalidParent, "node %q: parent %q forms a cycle; treated as top-level", issue.NodeID, issue.ParentID))
		default:
			s.report(errors.New(errors.ErrCodeInvalidParent, "node %q: parent %q not found; treated as top-level", issue.NodeID, issue.ParentID))
		}
	}
	s.abortStaleGesture()

	d := time.Since(start)
	observability.Store().OnReconcile(s.id, len(s.nodes), len(s.edges), d)
	s.logger.Debug("nodes reconciled", "nodes", len(s.nodes), "issues", len(s.hier.Issues), "took", d)
}

// SetEdges reconciles the store against the owner's edge list. Duplicate
// ids keep the later entry. Edges whose endpoints do not exist are kept
// but cannot be routed.
func (s *Store[T]) SetEdges(edges []flow.Edge) {
	if s.closed {
		return
	}
	start := time.Now()

	last := make(map[string]int, len(edges))
	for i, e := range edges {
		if err := errors.ValidateID("edge", e.ID); err != nil {
			s.report(err.(*errors.Error))
			continue
		}
		if _, dup := last[e.ID]; dup {
			s.report(errors.New(errors.ErrCodeDuplicateID, "duplicate edge id %q: keeping the later entry", e.ID))
		}
		last[e.ID] = i
	}

	prev := make(map[string]bool, len(s.edges))
	for _, e := range s.edges {
		prev[e.ID] = e.Selected
	}

	next := make([]flow.Edge, 0, len(last))
	for i, e := range edges {
		if j, ok := last[e.ID]; !ok || j != i {
			continue
		}
		if sel, ok := prev[e.ID]; ok && !s.cfg.Controlled {
			e.Selected = sel
		}
		next = append(next, e)
	}
	s.edges = next

	d := time.Since(start)
	observability.Store().OnReconcile(s.id, len(s.nodes), len(s.edges), d)
	s.logger.Debug("edges reconciled", "edges", len(s.edges), "took", d)
}

// abortStaleGesture cancels a drag whose nodes were removed underneath it.
func (s *Store[T]) abortStaleGesture() {
	if s.g.kind != GestureDrag && s.g.kind != GesturePending {
		return
	}
	if _, ok := s.index[s.g.node]; !ok {
		s.logger.Debug("gesture target removed", "gesture", s.g.id, "node", s.g.node)
		s.endGesture("cancelled")
	}
}
