package store

import (
	"github.com/matzehuels/flowcore/pkg/connect"
	"github.com/matzehuels/flowcore/pkg/edge"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// EdgePath routes the edge with the given id in flow space.
//
// Endpoints attach to the registered handles named by the edge. A node
// without any registered handle attaches at the middle of its bottom side
// (source) or top side (target). Errors carry code NOT_FOUND for unknown
// or dangling edges and MISSING_HANDLE for unresolvable handle ids.
func (s *Store[T]) EdgePath(id string) (edge.Path, error) {
	for _, e := range s.edges {
		if e.ID == id {
			return s.route(e)
		}
	}
	return edge.Path{}, errors.New(errors.ErrCodeNotFound, "edge %q not found", id)
}

// EdgePaths routes every visible edge whose endpoints resolve. Edges that
// are hidden, touch a hidden node or cannot be routed are skipped.
func (s *Store[T]) EdgePaths() map[string]edge.Path {
	out := make(map[string]edge.Path, len(s.edges))
	for _, e := range s.edges {
		if e.Hidden || s.hidden(e.Source) || s.hidden(e.Target) {
			continue
		}
		if p, err := s.route(e); err == nil {
			out[e.ID] = p
		}
	}
	return out
}

func (s *Store[T]) route(e flow.Edge) (edge.Path, error) {
	src, sp, err := s.endpoint(e.ID, e.Source, e.SourceHandle, flow.HandleSource)
	if err != nil {
		return edge.Path{}, err
	}
	tgt, tp, err := s.endpoint(e.ID, e.Target, e.TargetHandle, flow.HandleTarget)
	if err != nil {
		return edge.Path{}, err
	}
	params := edge.Params{Source: src, SourcePosition: sp, Target: tgt, TargetPosition: tp}
	return edge.Route(edgeTypeOr(e.Type, s.cfg.Edges.DefaultType), params, s.cfg.EdgeOptions()), nil
}

// endpoint resolves the flow-space anchor and facing of one edge end.
func (s *Store[T]) endpoint(edgeID, nodeID, handleID string, typ flow.HandleType) (geom.Point, geom.Position, error) {
	n, ok := s.Node(nodeID)
	if !ok {
		return geom.Point{}, 0, errors.New(errors.ErrCodeNotFound, "edge %q: node %q not found", edgeID, nodeID)
	}
	pl := s.hier.Placements[nodeID]
	hs := s.handles[nodeID]
	if len(hs) == 0 && handleID == "" {
		r := pl.Rect(n.Measured)
		if typ == flow.HandleSource {
			return geom.Point{X: r.X + r.Width/2, Y: r.Bottom()}, geom.Bottom, nil
		}
		return geom.Point{X: r.X + r.Width/2, Y: r.Y}, geom.Top, nil
	}
	h, ok := findHandle(hs, handleID, typ)
	if !ok {
		return geom.Point{}, 0, errors.New(errors.ErrCodeMissingHandle, "edge %q: node %q has no %s handle %q", edgeID, nodeID, typ, handleID)
	}
	return h.Anchor(pl.TopLeft), h.Position, nil
}

// findHandle picks the handle with the given id and type. An empty id
// matches the first handle of that type. Handles of the other type are
// tried last.
func findHandle(hs []flow.Handle, id string, typ flow.HandleType) (flow.Handle, bool) {
	for _, want := range []flow.HandleType{typ, typ.Opposite()} {
		for _, h := range hs {
			if h.Type == want && (id == "" || h.ID == id) {
				return h, true
			}
		}
	}
	return flow.Handle{}, false
}

// screenHandles returns every handle of the visible nodes in screen space,
// ready for the connection resolver.
func (s *Store[T]) screenHandles() []connect.Handle {
	var out []connect.Handle
	for _, i := range s.stack() {
		n := s.nodes[i]
		if n.Hidden {
			continue
		}
		connectable := s.flags(n).Connectable
		tl := s.hier.Placements[n.ID].TopLeft
		for _, h := range s.handles[n.ID] {
			out = append(out, connect.Handle{
				NodeID:   n.ID,
				ID:       h.ID,
				Type:     h.Type,
				Position: h.Position,
				Rect:     geom.RectToScreen(h.Rect(tl), s.vp),
				CanStart: h.CanStart(connectable),
				CanEnd:   h.CanEnd(connectable),
			})
		}
	}
	return out
}

func (s *Store[T]) hidden(id string) bool {
	n, ok := s.Node(id)
	return ok && n.Hidden
}

// hasHandle reports whether the registry still holds the handle.
func (s *Store[T]) hasHandle(nodeID, handleID string) bool {
	for _, h := range s.handles[nodeID] {
		if h.ID == handleID {
			return true
		}
	}
	return false
}
