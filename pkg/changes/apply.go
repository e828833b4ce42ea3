package changes

import (
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// nodePatch is the merged effect of every change targeting one node id.
type nodePatch[T any] struct {
	removed  bool
	item     *flow.Node[T]
	selected *bool
	position *geom.Point
	dragging *bool
	dims     *geom.Size
}

// ApplyNodeChanges is the plain node reducer. Changes are grouped by id and
// merged left to right so the latest change wins per field; removal and
// re-adding follow the same rule. New nodes are appended in the order of
// their first add. Changes for unknown ids without an add are ignored.
// The input slice is not modified.
func ApplyNodeChanges[T any](nodes []flow.Node[T], changes []NodeChange[T]) []flow.Node[T] {
	if len(changes) == 0 {
		return append([]flow.Node[T](nil), nodes...)
	}

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	patches := make(map[string]*nodePatch[T], len(changes))
	var added []string
	for _, c := range changes {
		p := patches[c.ID]
		if p == nil {
			p = &nodePatch[T]{}
			patches[c.ID] = p
		}
		switch c.Kind {
		case KindAdd, KindReplace:
			if c.Item == nil {
				continue
			}
			if c.Kind == KindAdd && !known[c.ID] && p.item == nil {
				added = append(added, c.ID)
			}
			item := *c.Item
			*p = nodePatch[T]{item: &item}
		case KindRemove:
			p.removed = true
		case KindSelect:
			v := c.Selected
			p.selected = &v
		case KindPosition:
			if c.Position != nil {
				pos := *c.Position
				p.position = &pos
			}
			if c.Dragging != nil {
				v := *c.Dragging
				p.dragging = &v
			}
		case KindDimensions:
			if c.Dimensions != nil {
				d := *c.Dimensions
				p.dims = &d
			}
		}
	}

	out := make([]flow.Node[T], 0, len(nodes)+len(added))
	for _, n := range nodes {
		p := patches[n.ID]
		if p == nil {
			out = append(out, n)
			continue
		}
		if p.removed {
			continue
		}
		out = append(out, p.apply(n))
	}
	for _, id := range added {
		if p := patches[id]; !p.removed {
			out = append(out, p.apply(*p.item))
		}
	}
	return out
}

func (p *nodePatch[T]) apply(n flow.Node[T]) flow.Node[T] {
	if p.item != nil {
		n = *p.item
	}
	if p.selected != nil {
		n.Selected = *p.selected
	}
	if p.position != nil {
		n.Position = *p.position
	}
	if p.dragging != nil {
		n.Dragging = *p.dragging
	}
	if p.dims != nil {
		n.Measured = *p.dims
	}
	return n
}

type edgePatch struct {
	removed  bool
	item     *flow.Edge
	selected *bool
}

// ApplyEdgeChanges is the plain edge reducer with the same merge rules as
// [ApplyNodeChanges].
func ApplyEdgeChanges(edges []flow.Edge, changes []EdgeChange) []flow.Edge {
	if len(changes) == 0 {
		return append([]flow.Edge(nil), edges...)
	}

	known := make(map[string]bool, len(edges))
	for _, e := range edges {
		known[e.ID] = true
	}

	patches := make(map[string]*edgePatch, len(changes))
	var added []string
	for _, c := range changes {
		p := patches[c.ID]
		if p == nil {
			p = &edgePatch{}
			patches[c.ID] = p
		}
		switch c.Kind {
		case KindAdd, KindReplace:
			if c.Item == nil {
				continue
			}
			if c.Kind == KindAdd && !known[c.ID] && p.item == nil {
				added = append(added, c.ID)
			}
			item := *c.Item
			*p = edgePatch{item: &item}
		case KindRemove:
			p.removed = true
		case KindSelect:
			v := c.Selected
			p.selected = &v
		}
	}

	out := make([]flow.Edge, 0, len(edges)+len(added))
	for _, e := range edges {
		p := patches[e.ID]
		if p == nil {
			out = append(out, e)
			continue
		}
		if p.removed {
			continue
		}
		out = append(out, p.apply(e))
	}
	for _, id := range added {
		if p := patches[id]; !p.removed {
			out = append(out, p.apply(*p.item))
		}
	}
	return out
}

func (p *edgePatch) apply(e flow.Edge) flow.Edge {
	if p.item != nil {
		e = *p.item
	}
	if p.selected != nil {
		e.Selected = *p.selected
	}
	return e
}
