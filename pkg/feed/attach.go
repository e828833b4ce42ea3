package feed

import (
	"context"

	"github.com/matzehuels/flowcore/pkg/changes"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/store"
)

// SelectionPayload is the payload of a selection message.
type SelectionPayload struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// Attach returns h with every outgoing callback also published through p.
// Existing callbacks in h still run first. ctx bounds every publish.
func Attach[T any](ctx context.Context, p *Publisher, h store.Handlers[T]) store.Handlers[T] {
	nodes, edges, conn, move, sel := h.OnNodesChange, h.OnEdgesChange, h.OnConnect, h.OnMove, h.OnSelectionChange

	h.OnNodesChange = func(c []changes.NodeChange[T]) {
		if nodes != nil {
			nodes(c)
		}
		_ = p.Publish(ctx, KindNodes, len(c), c)
	}
	h.OnEdgesChange = func(c []changes.EdgeChange) {
		if edges != nil {
			edges(c)
		}
		_ = p.Publish(ctx, KindEdges, len(c), c)
	}
	h.OnConnect = func(c flow.Connection) {
		if conn != nil {
			conn(c)
		}
		_ = p.Publish(ctx, KindConnect, 1, c)
	}
	h.OnMove = func(vp geom.Viewport) {
		if move != nil {
			move(vp)
		}
		_ = p.Publish(ctx, KindViewport, 1, vp)
	}
	h.OnSelectionChange = func(ns []flow.Node[T], es []flow.Edge) {
		if sel != nil {
			sel(ns, es)
		}
		payload := SelectionPayload{Nodes: make([]string, len(ns)), Edges: make([]string, len(es))}
		for i, n := range ns {
			payload.Nodes[i] = n.ID
		}
		for i, e := range es {
			payload.Edges[i] = e.ID
		}
		_ = p.Publish(ctx, KindSelection, len(ns)+len(es), payload)
	}
	return h
}
