package changes

import (
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// DefaultExpandMargin is the padding added when a parent grows to fit its children.
const DefaultExpandMargin = 10

// Options configures [Apply] and [Expand].
type Options struct {
	// Origin is the node origin used when a node has none.
	Origin geom.Point
	// ExpandMargin pads a parent on each side a child overflowed.
	ExpandMargin float64
	// Deletable is the default for nodes whose Deletable flag is unset.
	// Descendants that are not deletable survive a cascade by detaching.
	Deletable bool
}

// DefaultOptions returns top-left origin, DefaultExpandMargin and deletable nodes.
func DefaultOptions() Options {
	return Options{ExpandMargin: DefaultExpandMargin, Deletable: true}
}

// Result is the outcome of [Apply]: the next state and the full change
// batches (the caller's changes followed by derived ones) to forward to
// the state owner.
type Result[T any] struct {
	Nodes       []flow.Node[T]
	Edges       []flow.Edge
	NodeChanges []NodeChange[T]
	EdgeChanges []EdgeChange
}

// Apply reduces one batch of node and edge changes against the previous
// state.
//
// Removing a node cascades: every descendant is removed too, and so is every
// edge touching a removed node. A descendant that is not deletable survives
// by detaching: it becomes top-level, its position converted to absolute so
// it stays where it was on screen, and its subtree stays attached to it.
//
// After positions and sizes are applied, parents whose children overflow
// their measured box are grown (see [Expand]).
func Apply[T any](prevNodes []flow.Node[T], prevEdges []flow.Edge, nodeChanges []NodeChange[T], edgeChanges []EdgeChange, opts Options) Result[T] {
	res := Result[T]{
		NodeChanges: append([]NodeChange[T](nil), nodeChanges...),
		EdgeChanges: append([]EdgeChange(nil), edgeChanges...),
	}

	nodes := ApplyNodeChanges(prevNodes, nodeChanges)

	removed := removedIDs(prevNodes, nodes)
	if len(removed) > 0 {
		derived := cascade(prevNodes, nodes, removed, opts)
		if len(derived) > 0 {
			nodes = ApplyNodeChanges(nodes, derived)
			res.NodeChanges = append(res.NodeChanges, derived...)
		}
	}

	edges := ApplyEdgeChanges(prevEdges, edgeChanges)
	if len(removed) > 0 {
		var derived []EdgeChange
		for _, e := range edges {
			if removed[e.Source] || removed[e.Target] {
				derived = append(derived, RemoveEdge(e.ID))
			}
		}
		if len(derived) > 0 {
			edges = ApplyEdgeChanges(edges, derived)
			res.EdgeChanges = append(res.EdgeChanges, derived...)
		}
	}

	var touched []string
	for _, c := range nodeChanges {
		switch c.Kind {
		case KindAdd, KindReplace, KindPosition, KindDimensions:
			touched = append(touched, c.ID)
		}
	}
	if grow := Expand(nodes, touched, opts); len(grow) > 0 {
		nodes = ApplyNodeChanges(nodes, grow)
		res.NodeChanges = append(res.NodeChanges, grow...)
	}

	res.Nodes, res.Edges = nodes, edges
	return res
}

func removedIDs[T any](before, after []flow.Node[T]) map[string]bool {
	present := make(map[string]bool, len(after))
	for _, n := range after {
		present[n.ID] = true
	}
	out := make(map[string]bool)
	for _, n := range before {
		if !present[n.ID] {
			out[n.ID] = true
		}
	}
	return out
}

// cascade derives removals and detachments for the descendants of removed
// nodes. removed is extended with every derived removal.
func cascade[T any](prev, nodes []flow.Node[T], removed map[string]bool, opts Options) []NodeChange[T] {
	placements := flow.Resolve(prev, opts.Origin).Placements
	children := flow.Children(nodes)
	byID := make(map[string]flow.Node[T], len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var out []NodeChange[T]
	var queue []string
	for _, n := range prev {
		if removed[n.ID] {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, id := range children[parent] {
			n, ok := byID[id]
			if !ok || removed[id] {
				continue
			}
			if flow.FlagsOf(n, flow.Flags{Deletable: opts.Deletable}).Deletable {
				removed[id] = true
				out = append(out, RemoveNode[T](id))
				queue = append(queue, id)
				continue
			}
			detached := n
			detached.ParentID = ""
			detached.Position = placements[parent].TopLeft.Add(n.Position)
			if detached.Extent.Kind == flow.ExtentParent {
				detached.Extent = flow.Extent{}
			}
			out = append(out, ReplaceNode(detached))
		}
	}
	return out
}

// Expand computes the changes that grow parents to contain the given
// children, without applying them.
//
// For each touched child whose box (its origin applied) does not fit in its
// parent's measured box, the parent is resized to the smallest box holding
// its current box and all its direct children, padded by ExpandMargin on
// each side that overflowed. Growth to the left or top moves the parent and
// shifts its children back so nothing moves on screen. The check repeats
// up the ancestor chain. Unmeasured parents are never expanded.
func Expand[T any](nodes []flow.Node[T], touched []string, opts Options) []NodeChange[T] {
	if len(touched) == 0 {
		return nil
	}
	work := make(map[string]flow.Node[T], len(nodes))
	for _, n := range nodes {
		work[n.ID] = n
	}
	children := flow.Children(nodes)

	relRect := func(n flow.Node[T]) geom.Rect {
		tl := geom.TopLeft(n.Position, n.Measured, flow.OriginOf(n, opts.Origin))
		return geom.RectAt(tl, n.Measured)
	}

	var out []NodeChange[T]
	queue := append([]string(nil), touched...)
	seen := make(map[string]int)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		// Bounded so a cyclic parent chain terminates.
		if seen[id]++; seen[id] > len(nodes)+1 {
			continue
		}
		n, ok := work[id]
		if !ok || n.ParentID == "" {
			continue
		}
		parent, ok := work[n.ParentID]
		if !ok || parent.Measured.IsZero() {
			continue
		}
		box := geom.Rect{Width: parent.Measured.Width, Height: parent.Measured.Height}
		if box.Contains(relRect(n)) {
			continue
		}

		var rects []geom.Rect
		for _, cid := range children[parent.ID] {
			if c, ok := work[cid]; ok {
				rects = append(rects, relRect(c))
			}
		}
		cu, _ := geom.UnionAll(rects)
		m := opts.ExpandMargin
		x0, y0, x1, y1 := 0.0, 0.0, box.Width, box.Height
		if cu.X < 0 {
			x0 = cu.X - m
		}
		if cu.Y < 0 {
			y0 = cu.Y - m
		}
		if cu.Right() > x1 {
			x1 = cu.Right() + m
		}
		if cu.Bottom() > y1 {
			y1 = cu.Bottom() + m
		}

		shift := geom.Point{X: x0, Y: y0}
		size := geom.Size{Width: x1 - x0, Height: y1 - y0}
		origin := flow.OriginOf(parent, opts.Origin)
		topLeft := geom.TopLeft(parent.Position, parent.Measured, origin).Add(shift)
		pos := geom.Anchor(topLeft, size, origin)

		if pos != parent.Position {
			out = append(out, MoveNode[T](parent.ID, pos, nil))
			parent.Position = pos
		}
		out = append(out, ResizeNode[T](parent.ID, size))
		parent.Measured = size
		work[parent.ID] = parent

		if shift != (geom.Point{}) {
			for _, cid := range children[parent.ID] {
				c, ok := work[cid]
				if !ok {
					continue
				}
				c.Position = c.Position.Sub(shift)
				work[cid] = c
				out = append(out, MoveNode[T](cid, c.Position, nil))
			}
		}
		queue = append(queue, parent.ID)
	}
	return out
}
