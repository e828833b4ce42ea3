package flow

import (
	"slices"

	"github.com/matzehuels/flowcore/pkg/geom"
)

// IssueKind classifies a parent reference that could not be followed.
type IssueKind string

const (
	// IssueMissingParent means ParentID names no node in the set.
	IssueMissingParent IssueKind = "missing"
	// IssueParentCycle means following ParentID leads back to the node.
	IssueParentCycle IssueKind = "cycle"
)

// Issue describes a node whose parent was ignored during resolution.
// The node is placed as a top-level node instead.
type Issue struct {
	NodeID   string
	ParentID string
	Kind     IssueKind
}

// Placement is the resolved absolute geometry of one node.
type Placement struct {
	// Absolute is the flow-space location of the node's origin point.
	Absolute geom.Point `json:"absolute"`
	// TopLeft is the flow-space top-left corner of the node's box.
	TopLeft geom.Point `json:"topLeft"`
	// Parent is the effective parent ("" when top-level or when the
	// declared parent was rejected).
	Parent string `json:"parent,omitempty"`
	// Depth is 0 for top-level nodes and parent depth + 1 otherwise.
	Depth int `json:"depth"`
}

// Rect returns the node's absolute box for the given size.
func (p Placement) Rect(size geom.Size) geom.Rect { return geom.RectAt(p.TopLeft, size) }

// Hierarchy is the result of [Resolve].
type Hierarchy struct {
	Placements map[string]Placement
	// Order lists node ids with every ancestor before its descendants;
	// ties keep input order.
	Order  []string
	Issues []Issue
}

// Resolve walks parent chains and computes absolute placements.
//
// Nodes whose parent is missing, or whose parent link closes a cycle, are
// treated as top-level and reported in Issues. Cycles are found with
// depth-first search using white/gray/black coloring; the node whose link
// points back to a gray (in-progress) ancestor is the one detached, which
// makes the outcome depend only on input order.
//
// Node ids must be unique; later duplicates shadow earlier entries.
func Resolve[T any](nodes []Node[T], defaultOrigin geom.Point) Hierarchy {
	const (
		white = iota
		gray
		black
	)

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	h := Hierarchy{Placements: make(map[string]Placement, len(index))}
	color := make(map[string]int, len(index))
	parent := make(map[string]string, len(index))
	depth := make(map[string]int, len(index))

	var visit func(id string) int
	visit = func(id string) int {
		if color[id] == black {
			return depth[id]
		}
		color[id] = gray
		n := nodes[index[id]]
		p, d := n.ParentID, 0
		if p != "" {
			switch _, ok := index[p]; {
			case !ok:
				h.Issues = append(h.Issues, Issue{NodeID: id, ParentID: p, Kind: IssueMissingParent})
				p = ""
			case color[p] == gray:
				h.Issues = append(h.Issues, Issue{NodeID: id, ParentID: p, Kind: IssueParentCycle})
				p = ""
			default:
				d = visit(p) + 1
			}
		}
		parent[id], depth[id] = p, d
		color[id] = black
		return d
	}

	for i, n := range nodes {
		if index[n.ID] != i {
			continue
		}
		h.Order = append(h.Order, n.ID)
		visit(n.ID)
	}

	slices.SortStableFunc(h.Order, func(a, b string) int { return depth[a] - depth[b] })

	for _, id := range h.Order {
		n := nodes[index[id]]
		abs := n.Position
		if p := parent[id]; p != "" {
			abs = h.Placements[p].TopLeft.Add(n.Position)
		}
		h.Placements[id] = Placement{
			Absolute: abs,
			TopLeft:  geom.TopLeft(abs, n.Measured, OriginOf(n, defaultOrigin)),
			Parent:   parent[id],
			Depth:    depth[id],
		}
	}
	return h
}

// Children maps each parent id to the ids of its direct children, in input order.
func Children[T any](nodes []Node[T]) map[string][]string {
	out := make(map[string][]string)
	for _, n := range nodes {
		if n.ParentID != "" {
			out[n.ParentID] = append(out[n.ParentID], n.ID)
		}
	}
	return out
}

// Descendants returns every transitive child of id, breadth first.
// Cyclic parent links are followed at most once per node.
func Descendants[T any](nodes []Node[T], id string) []string {
	children := Children(nodes)
	seen := map[string]bool{id: true}
	var out []string
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}
