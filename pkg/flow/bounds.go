package flow

import "github.com/matzehuels/flowcore/pkg/geom"

// ComputeBounds returns the smallest box containing the absolute rectangle
// of every measured node. Parented nodes are placed through their parent
// chain; nodes without a measured size are skipped. The second result is
// false when no node contributed.
func ComputeBounds[T any](nodes []Node[T], defaultOrigin geom.Point) (geom.Rect, bool) {
	h := Resolve(nodes, defaultOrigin)
	sizes := make(map[string]geom.Size, len(nodes))
	for _, n := range nodes {
		sizes[n.ID] = n.Measured
	}
	rects := make([]geom.Rect, 0, len(h.Order))
	for _, id := range h.Order {
		if size := sizes[id]; !size.IsZero() {
			rects = append(rects, h.Placements[id].Rect(size))
		}
	}
	return geom.UnionAll(rects)
}
