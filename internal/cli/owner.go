package cli

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcore/pkg/anim"
	"github.com/matzehuels/flowcore/pkg/changes"
	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/input"
	"github.com/matzehuels/flowcore/pkg/store"
)

// ownerStats counts what the store reported to its owner.
type ownerStats struct {
	Events      int `json:"events"`
	NodeBatches int `json:"nodeBatches"`
	EdgeBatches int `json:"edgeBatches"`
	Connections int `json:"connections"`
	Errors      int `json:"errors"`
}

// owner plays the external state owner for a scene store. Finished
// connections become edges. In controlled mode it keeps its own copy of the
// graph, applies every forwarded batch to it and hands the result back
// after each event.
type owner struct {
	s      *sceneStore
	loop   *anim.Loop
	cfg    config.Config
	logger *log.Logger

	nodes   []sceneNode
	edges   []flow.Edge
	dirty   bool
	pending []flow.Connection
	stats   ownerStats
}

// newOwner opens sc. wrap, when non-nil, decorates the handlers before the
// store is built.
func newOwner(sc Scene, cfg config.Config, logger *log.Logger, wrap func(store.Handlers[sceneData]) store.Handlers[sceneData]) (*owner, error) {
	o := &owner{
		loop:   anim.NewLoop(),
		cfg:    cfg,
		logger: logger,
		nodes:  sc.Nodes,
		edges:  sc.Edges,
	}
	h := o.handlers()
	if wrap != nil {
		h = wrap(h)
	}
	s, err := sc.open(cfg, h, o.loop, logger)
	if err != nil {
		return nil, err
	}
	o.s = s
	o.sync()
	return o, nil
}

func (o *owner) handlers() store.Handlers[sceneData] {
	return store.Handlers[sceneData]{
		OnNodesChange: func(c []changes.NodeChange[sceneData]) {
			o.stats.NodeBatches++
			if o.cfg.Controlled {
				o.nodes = changes.ApplyNodeChanges(o.nodes, c)
				o.dirty = true
			}
		},
		OnEdgesChange: func(c []changes.EdgeChange) {
			o.stats.EdgeBatches++
			if o.cfg.Controlled {
				o.edges = changes.ApplyEdgeChanges(o.edges, c)
				o.dirty = true
			}
		},
		OnConnect: func(c flow.Connection) {
			o.stats.Connections++
			o.pending = append(o.pending, c)
		},
		OnError: func(code errors.Code, message string) {
			o.stats.Errors++
		},
	}
}

// handle feeds one event to the store and settles the owner's side.
func (o *owner) handle(ev input.Event) {
	o.stats.Events++
	o.s.HandleEvent(ev)
	o.sync()
}

// advance runs one animation frame. It returns the number of active
// animation channels.
func (o *owner) advance(now time.Time) int {
	n := o.loop.Advance(now)
	o.sync()
	return n
}

// sync turns pending connections into edges and, in controlled mode, hands
// the owner's graph back to the store.
func (o *owner) sync() {
	if o.s == nil {
		return
	}
	if len(o.pending) > 0 {
		edges := o.edges
		if !o.cfg.Controlled {
			edges = o.s.Edges()
		}
		added := false
		for _, c := range o.pending {
			var ok bool
			if edges, ok = flow.AddEdge(edges, c, o.cfg.Edges.DefaultType); ok {
				added = true
				o.logger.Debug("connected", "source", c.Source, "target", c.Target)
			}
		}
		o.pending = o.pending[:0]
		if added {
			o.edges = edges
			if o.cfg.Controlled {
				o.dirty = true
			} else {
				o.s.SetEdges(edges)
			}
		}
	}
	if o.cfg.Controlled && o.dirty {
		o.dirty = false
		o.s.SetNodes(o.nodes)
		o.s.SetEdges(o.edges)
	}
}

func (o *owner) close() {
	o.s.Close()
}
