package store

import (
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowcore/pkg/anim"
	"github.com/matzehuels/flowcore/pkg/changes"
	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/connect"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/input"
	"github.com/matzehuels/flowcore/pkg/observability"
	"github.com/matzehuels/flowcore/pkg/selection"
)

// Handlers are the callbacks through which the store talks to the external
// state owner. Every field is optional.
type Handlers[T any] struct {
	// OnNodesChange receives every node change batch, explicit and derived,
	// in the order it was produced.
	OnNodesChange func([]changes.NodeChange[T])
	// OnEdgesChange receives every edge change batch.
	OnEdgesChange func([]changes.EdgeChange)
	// OnConnect receives a finalized connection gesture.
	OnConnect func(flow.Connection)
	// OnMove receives the viewport after every change to it.
	OnMove func(geom.Viewport)
	// OnSelectionChange receives the selected nodes and edges whenever the
	// selected set changes.
	OnSelectionChange func(nodes []flow.Node[T], edges []flow.Edge)
	// OnError receives non-fatal problems. They never abort an operation.
	OnError func(code errors.Code, message string)
	// IsValidConnection vets connection candidates. Nil accepts all.
	IsValidConnection func(flow.Connection) bool
}

// Store owns the graph state of one diagram instance.
//
// A Store is not safe for concurrent use. Hosts that receive events on
// several goroutines must serialize calls.
type Store[T any] struct {
	id     string
	cfg    config.Config
	h      Handlers[T]
	loop   *anim.Loop
	logger *log.Logger
	closed bool

	defaults   flow.Flags
	connMode   connect.Mode
	selectMode selection.Mode

	nodes   []flow.Node[T]
	edges   []flow.Edge
	index   map[string]int
	hier    flow.Hierarchy
	handles map[string][]flow.Handle

	vp            geom.Viewport
	width, height float64

	mods     input.Modifiers
	held     map[string]bool
	pointer  geom.Point
	g        gesture
	resolver *connect.Resolver
}

// New constructs a store from cfg. A nil loop gets a private one (see
// [Store.Loop]); a nil logger uses log.Default().
//
// Configuration problems are returned as *errors.Error with code
// INVALID_VIEWPORT or INVALID_CONFIG.
func New[T any](cfg config.Config, h Handlers[T], loop *anim.Loop, logger *log.Logger) (*Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	connMode, err := connect.ParseMode(cfg.Connection.Mode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connection mode")
	}
	selectMode, err := selection.ParseMode(cfg.Selection.Mode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "selection mode")
	}
	if loop == nil {
		loop = anim.NewLoop()
	}
	if logger == nil {
		logger = log.Default()
	}

	id := uuid.NewString()
	s := &Store[T]{
		id:     id,
		cfg:    cfg,
		h:      h,
		loop:   loop,
		logger: logger.With("store", id[:8]),
		defaults: flow.Flags{
			Draggable:   cfg.Nodes.Draggable,
			Selectable:  cfg.Nodes.Selectable,
			Connectable: cfg.Nodes.Connectable,
			Focusable:   cfg.Nodes.Focusable,
			Deletable:   cfg.Nodes.Deletable,
		},
		connMode:   connMode,
		selectMode: selectMode,
		index:      map[string]int{},
		handles:    map[string][]flow.Handle{},
		held:       map[string]bool{},
		width:      cfg.Viewport.Width,
		height:     cfg.Viewport.Height,
	}
	s.vp = s.clampViewport(cfg.Viewport.Initial)
	s.refresh()
	s.logger.Debug("store created", "mode", s.mode(), "zoom", s.vp.Zoom)
	return s, nil
}

// ID returns the store instance id.
func (s *Store[T]) ID() string { return s.id }

// Loop returns the frame loop driving the store's animations.
func (s *Store[T]) Loop() *anim.Loop { return s.loop }

// Config returns the configuration the store was built with.
func (s *Store[T]) Config() config.Config { return s.cfg }

// Close cancels every running animation and gesture. Later calls to any
// mutating method are no-ops.
func (s *Store[T]) Close() {
	if s.closed {
		return
	}
	s.channel(channelViewport).Stop()
	s.channel(channelAutoPan).Stop()
	if s.resolver != nil {
		s.resolver.Cancel()
	}
	s.g = gesture{}
	s.closed = true
	s.logger.Debug("store closed")
}

// Closed reports whether Close has been called.
func (s *Store[T]) Closed() bool { return s.closed }

// Nodes returns a copy of the current nodes.
func (s *Store[T]) Nodes() []flow.Node[T] { return slices.Clone(s.nodes) }

// Edges returns a copy of the current edges.
func (s *Store[T]) Edges() []flow.Edge { return slices.Clone(s.edges) }

// Node returns the node with the given id.
func (s *Store[T]) Node(id string) (flow.Node[T], bool) {
	i, ok := s.index[id]
	if !ok {
		return flow.Node[T]{}, false
	}
	return s.nodes[i], true
}

// Placement returns the resolved absolute placement of a node.
func (s *Store[T]) Placement(id string) (flow.Placement, bool) {
	p, ok := s.hier.Placements[id]
	return p, ok
}

// Handles returns the registered handles of a node.
func (s *Store[T]) Handles(nodeID string) []flow.Handle {
	return slices.Clone(s.handles[nodeID])
}

// =============================================================================
// Internals
// =============================================================================

const (
	channelViewport = "viewport"
	channelAutoPan  = "autopan"
)

func (s *Store[T]) channel(name string) *anim.Channel {
	return s.loop.Channel(s.id[:8] + "/" + name)
}

func (s *Store[T]) mode() string {
	if s.cfg.Controlled {
		return "controlled"
	}
	return "uncontrolled"
}

func (s *Store[T]) origin() geom.Point { return s.cfg.NodeOrigin() }

func (s *Store[T]) changeOptions() changes.Options {
	return changes.Options{
		Origin:       s.origin(),
		ExpandMargin: s.cfg.Nodes.ExpandMargin,
		Deletable:    s.cfg.Nodes.Deletable,
	}
}

func (s *Store[T]) flags(n flow.Node[T]) flow.Flags { return flow.FlagsOf(n, s.defaults) }

// refresh rebuilds the id index and the resolved hierarchy.
func (s *Store[T]) refresh() {
	clear(s.index)
	for i, n := range s.nodes {
		s.index[n.ID] = i
	}
	s.hier = flow.Resolve(s.nodes, s.origin())
}

// report logs a non-fatal problem and forwards it to OnError.
func (s *Store[T]) report(e *errors.Error) {
	s.logger.Warn(e.Message, "code", e.Code)
	errors.Reporter(s.h.OnError).Report(e)
}

// commit runs a change batch through the change engine, forwards the full
// result and, in uncontrolled mode, adopts the next state.
func (s *Store[T]) commit(nc []changes.NodeChange[T], ec []changes.EdgeChange) changes.Result[T] {
	res := changes.Apply(s.nodes, s.edges, nc, ec, s.changeOptions())
	beforeNodes, beforeEdges := selectedIDs(s.nodes, s.edges)

	if len(res.NodeChanges) > 0 {
		observability.Store().OnChanges(s.id, "nodes", len(res.NodeChanges))
		if s.h.OnNodesChange != nil {
			s.h.OnNodesChange(res.NodeChanges)
		}
	}
	if len(res.EdgeChanges) > 0 {
		observability.Store().OnChanges(s.id, "edges", len(res.EdgeChanges))
		if s.h.OnEdgesChange != nil {
			s.h.OnEdgesChange(res.EdgeChanges)
		}
	}

	afterNodes, afterEdges := selectedIDs(res.Nodes, res.Edges)
	if s.h.OnSelectionChange != nil && (!slices.Equal(beforeNodes, afterNodes) || !slices.Equal(beforeEdges, afterEdges)) {
		s.h.OnSelectionChange(selectedNodes(res.Nodes), selectedEdges(res.Edges))
	}

	if !s.cfg.Controlled {
		s.nodes, s.edges = res.Nodes, res.Edges
		s.dropStaleHandles()
		s.refresh()
	}
	return res
}

func (s *Store[T]) dropStaleHandles() {
	present := make(map[string]bool, len(s.nodes))
	for _, n := range s.nodes {
		present[n.ID] = true
	}
	for id := range s.handles {
		if !present[id] {
			delete(s.handles, id)
		}
	}
}

func selectedIDs[T any](nodes []flow.Node[T], edges []flow.Edge) (n, e []string) {
	for _, x := range nodes {
		if x.Selected {
			n = append(n, x.ID)
		}
	}
	for _, x := range edges {
		if x.Selected {
			e = append(e, x.ID)
		}
	}
	slices.Sort(n)
	slices.Sort(e)
	return n, e
}

func selectedNodes[T any](nodes []flow.Node[T]) []flow.Node[T] {
	var out []flow.Node[T]
	for _, n := range nodes {
		if n.Selected {
			out = append(out, n)
		}
	}
	return out
}

func selectedEdges(edges []flow.Edge) []flow.Edge {
	var out []flow.Edge
	for _, e := range edges {
		if e.Selected {
			out = append(out, e)
		}
	}
	return out
}

func edgeTypeOr(t, def string) string {
	if strings.TrimSpace(t) == "" {
		return def
	}
	return t
}
