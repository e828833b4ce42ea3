package store

import (
	"io"
	"math"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcore/pkg/changes"
	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/input"
)

// recorder captures every notification a store emits.
type recorder struct {
	nodeBatches [][]changes.NodeChange[string]
	edgeBatches [][]changes.EdgeChange
	connections []flow.Connection
	moves       []geom.Viewport
	selections  [][]string
	errs        []errors.Code
}

func (r *recorder) handlers() Handlers[string] {
	return Handlers[string]{
		OnNodesChange: func(c []changes.NodeChange[string]) { r.nodeBatches = append(r.nodeBatches, c) },
		OnEdgesChange: func(c []changes.EdgeChange) { r.edgeBatches = append(r.edgeBatches, c) },
		OnConnect:     func(c flow.Connection) { r.connections = append(r.connections, c) },
		OnMove:        func(vp geom.Viewport) { r.moves = append(r.moves, vp) },
		OnSelectionChange: func(nodes []flow.Node[string], _ []flow.Edge) {
			ids := []string{}
			for _, n := range nodes {
				ids = append(ids, n.ID)
			}
			r.selections = append(r.selections, ids)
		},
		OnError: func(code errors.Code, _ string) { r.errs = append(r.errs, code) },
	}
}

func (r *recorder) hasError(code errors.Code) bool { return slices.Contains(r.errs, code) }

func newTestStore(t *testing.T, cfg config.Config) (*Store[string], *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := New(cfg, rec.handlers(), nil, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s, rec
}

func node(id string, x, y, w, h float64) flow.Node[string] {
	return flow.Node[string]{
		ID:       id,
		Position: geom.Point{X: x, Y: y},
		Measured: geom.Size{Width: w, Height: h},
		Data:     id,
	}
}

func child(id, parent string, x, y, w, h float64) flow.Node[string] {
	n := node(id, x, y, w, h)
	n.ParentID = parent
	return n
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func mustNode(t *testing.T, s *Store[string], id string) flow.Node[string] {
	t.Helper()
	n, ok := s.Node(id)
	if !ok {
		t.Fatalf("Node(%q) not found", id)
	}
	return n
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		code   errors.Code
	}{
		{"inverted zoom", func(c *config.Config) { c.Viewport.MinZoom, c.Viewport.MaxZoom = 3, 2 }, errors.ErrCodeInvalidViewport},
		{"zero min zoom", func(c *config.Config) { c.Viewport.MinZoom = 0 }, errors.ErrCodeInvalidViewport},
		{"nan initial", func(c *config.Config) { c.Viewport.Initial.X = math.NaN() }, errors.ErrCodeInvalidViewport},
		{"bad connection mode", func(c *config.Config) { c.Connection.Mode = "sticky" }, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			_, err := New[string](cfg, Handlers[string]{}, nil, nil)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("New() code = %v, want %v (err %v)", got, tt.code, err)
			}
		})
	}

	cfg := config.Default()
	cfg.Viewport.Initial = geom.Viewport{X: 5, Y: 6, Zoom: 10}
	s, _ := newTestStore(t, cfg)
	if got := s.Viewport(); got != (geom.Viewport{X: 5, Y: 6, Zoom: 2}) {
		t.Errorf("initial Viewport() = %+v, want zoom clamped to 2", got)
	}
	if s.ID() == "" {
		t.Error("ID() is empty")
	}
}

func TestSetNodesPreservesTransientState(t *testing.T) {
	s, _ := newTestStore(t, config.Default())
	a := node("a", 0, 0, 0, 0)
	s.SetNodes([]flow.Node[string]{a, node("b", 100, 0, 10, 10)})
	s.UpdateNodeDimensions([]Measurement{{
		ID:      "a",
		Size:    geom.Size{Width: 50, Height: 50},
		Handles: []flow.Handle{{ID: "out", Type: flow.HandleSource, Position: geom.Right, X: 50, Y: 20, Width: 10, Height: 10}},
	}})
	s.AddSelectedNodes([]string{"a"})

	moved := node("a", 5, 5, 0, 0)
	s.SetNodes([]flow.Node[string]{moved})

	got := mustNode(t, s, "a")
	if got.Position != (geom.Point{X: 5, Y: 5}) {
		t.Errorf("Position = %v, want (5,5)", got.Position)
	}
	if got.Measured != (geom.Size{Width: 50, Height: 50}) {
		t.Errorf("Measured = %+v, want 50x50 kept", got.Measured)
	}
	if !got.Selected {
		t.Error("Selected lost across reconciliation")
	}
	if _, ok := s.Node("b"); ok {
		t.Error("removed node b still present")
	}
	if hs := s.Handles("a"); len(hs) != 1 || hs[0].NodeID != "a" {
		t.Errorf("Handles(a) = %+v, want the registered handle", hs)
	}

	s.SetNodes(nil)
	if hs := s.Handles("a"); len(hs) != 0 {
		t.Errorf("Handles(a) after removal = %+v, want none", hs)
	}
}

func TestSetNodesDuplicateKeepsLater(t *testing.T) {
	s, rec := newTestStore(t, config.Default())
	s.SetNodes([]flow.Node[string]{node("a", 0, 0, 10, 10), node("b", 0, 0, 10, 10), node("a", 7, 7, 10, 10)})

	if got := len(s.Nodes()); got != 2 {
		t.Fatalf("len(Nodes()) = %d, want 2", got)
	}
	if got := mustNode(t, s, "a").Position; got != (geom.Point{X: 7, Y: 7}) {
		t.Errorf("a.Position = %v, want the later entry (7,7)", got)
	}
	if !rec.hasError(errors.ErrCodeDuplicateID) {
		t.Errorf("errors = %v, want DUPLICATE_ID", rec.errs)
	}

	s.SetEdges([]flow.Edge{{ID: "e", Source: "a", Target: "b"}, {ID: "e", Source: "b", Target: "a"}})
	if got := s.Edges(); len(got) != 1 || got[0].Source != "b" {
		t.Errorf("Edges() = %+v, want the later duplicate", got)
	}
}

func TestSetNodesInvalidParent(t *testing.T) {
	s, rec := newTestStore(t, config.Default())
	s.SetNodes([]flow.Node[string]{
		child("a", "b", 1, 1, 10, 10),
		child("b", "a", 2, 2, 10, 10),
		child("orphan", "ghost", 30, 30, 10, 10),
	})

	count := 0
	for _, c := range rec.errs {
		if c == errors.ErrCodeInvalidParent {
			count++
		}
	}
	if count != 2 {
		t.Errorf("INVALID_PARENT reports = %d, want 2 (one cycle, one missing)", count)
	}

	b, _ := s.Placement("b")
	a, _ := s.Placement("a")
	if b.Parent != "" || b.Absolute != (geom.Point{X: 2, Y: 2}) {
		t.Errorf("b placement = %+v, want top-level at (2,2)", b)
	}
	if a.Parent != "b" || a.Absolute != (geom.Point{X: 3, Y: 3}) {
		t.Errorf("a placement = %+v, want under b at (3,3)", a)
	}
	if o, _ := s.Placement("orphan"); o.Parent != "" || o.Absolute != (geom.Point{X: 30, Y: 30}) {
		t.Errorf("orphan placement = %+v, want top-level", o)
	}
}

func TestAbsolutePositionFollowsAncestors(t *testing.T) {
	s, _ := newTestStore(t, config.Default())
	s.SetNodes([]flow.Node[string]{
		node("p", 100, 100, 200, 200),
		child("c", "p", 10, 20, 20, 20),
		child("g", "c", 1, 1, 5, 5),
	})
	if pl, _ := s.Placement("g"); pl.Absolute != (geom.Point{X: 111, Y: 121}) {
		t.Fatalf("g absolute = %v, want (111,121)", pl.Absolute)
	}

	s.UpdateNodePositions("p", geom.Point{X: 50, Y: 0}, false)
	if pl, _ := s.Placement("g"); pl.Absolute != (geom.Point{X: 161, Y: 121}) {
		t.Errorf("g absolute after moving p = %v, want (161,121)", pl.Absolute)
	}
	if got := mustNode(t, s, "c").Position; got != (geom.Point{X: 10, Y: 20}) {
		t.Errorf("c relative position = %v, want unchanged", got)
	}
}

func TestUpdateNodePositionsMovesSelection(t *testing.T) {
	s, rec := newTestStore(t, config.Default())
	locked := node("locked", 0, 100, 10, 10)
	locked.Draggable = flow.Bool(false)
	s.SetNodes([]flow.Node[string]{
		node("a", 0, 0, 10, 10),
		node("b", 50, 0, 10, 10),
		node("c", 100, 0, 10, 10),
		locked,
	})
	s.AddSelectedNodes([]string{"a", "b", "locked"})
	rec.nodeBatches = nil

	s.UpdateNodePositions("a", geom.Point{X: 10, Y: 5}, true)

	if len(rec.nodeBatches) != 1 || len(rec.nodeBatches[0]) != 2 {
		t.Fatalf("batches = %+v, want one batch of two position changes", rec.nodeBatches)
	}
	for id, want := range map[string]geom.Point{"a": {X: 10, Y: 5}, "b": {X: 60, Y: 5}, "c": {X: 100}, "locked": {Y: 100}} {
		if got := mustNode(t, s, id).Position; got != want {
			t.Errorf("%s.Position = %v, want %v", id, got, want)
		}
	}
	if !mustNode(t, s, "a").Dragging {
		t.Error("a.Dragging = false, want true")
	}
}

func TestUpdateNodePositionsSnapAndClamp(t *testing.T) {
	cfg := config.Default()
	cfg.Nodes.SnapToGrid = true
	cfg.Nodes.SnapGrid = [2]float64{10, 10}
	cfg.Nodes.Extent = &config.Extent{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	s, rec := newTestStore(t, cfg)

	box := node("box", 0, 0, 20, 20)
	box.Extent = flow.Extent{Kind: flow.ExtentBox, Box: geom.Rect{X: 0, Y: 0, Width: 60, Height: 200}}
	s.SetNodes([]flow.Node[string]{
		node("n", 0, 0, 20, 20),
		box,
		node("p", 200, 200, 100, 100),
	})

	s.UpdateNodePositions("n", geom.Point{X: 14, Y: 200}, false)
	if got := mustNode(t, s, "n").Position; got != (geom.Point{X: 10, Y: 80}) {
		t.Errorf("n.Position = %v, want snapped (10,...) and clamped to (10,80)", got)
	}
	if !rec.hasError(errors.ErrCodeOutOfExtent) {
		t.Errorf("errors = %v, want OUT_OF_EXTENT", rec.errs)
	}

	s.UpdateNodePositions("box", geom.Point{X: 90, Y: 30}, false)
	if got := mustNode(t, s, "box").Position; got != (geom.Point{X: 40, Y: 30}) {
		t.Errorf("box.Position = %v, want clamped to its box at (40,30)", got)
	}
}

func TestUpdateNodePositionsParentExtent(t *testing.T) {
	s, _ := newTestStore(t, config.Default())
	c := child("c", "p", 0, 0, 20, 20)
	c.Extent = flow.Extent{Kind: flow.ExtentParent}
	s.SetNodes([]flow.Node[string]{node("p", 50, 50, 100, 100), c})

	s.UpdateNodePositions("c", geom.Point{X: 200, Y: -5}, false)
	if got := mustNode(t, s, "c").Position; got != (geom.Point{X: 80, Y: 0}) {
		t.Errorf("c.Position = %v, want clamped to parent at (80,0)", got)
	}
	if got := mustNode(t, s, "p").Measured; got != (geom.Size{Width: 100, Height: 100}) {
		t.Errorf("p.Measured = %+v, want parent untouched", got)
	}
}

func TestUpdateNodeDimensionsIdempotent(t *testing.T) {
	s, rec := newTestStore(t, config.Default())
	s.SetNodes([]flow.Node[string]{node("a", 0, 0, 0, 0)})

	m := []Measurement{{ID: "a", Size: geom.Size{Width: 40, Height: 30}}}
	s.UpdateNodeDimensions(m)
	s.UpdateNodeDimensions(m)
	s.UpdateNodeDimensions([]Measurement{{ID: "unknown", Size: geom.Size{Width: 1, Height: 1}}})

	if len(rec.nodeBatches) != 1 {
		t.Errorf("node batches = %d, want 1", len(rec.nodeBatches))
	}
	if got := mustNode(t, s, "a").Measured; got != m[0].Size {
		t.Errorf("Measured = %+v, want %+v", got, m[0].Size)
	}
}

func TestUpdateNodeDimensionsExpandsParent(t *testing.T) {
	s, rec := newTestStore(t, config.Default())
	s.SetNodes([]flow.Node[string]{
		node("p", 0, 0, 100, 100),
		child("c", "p", 90, 90, 0, 0),
	})

	s.UpdateNodeDimensions([]Measurement{{ID: "c", Size: geom.Size{Width: 20, Height: 20}}})

	if got := mustNode(t, s, "p").Measured; got != (geom.Size{Width: 120, Height: 120}) {
		t.Errorf("p.Measured = %+v, want 120x120", got)
	}
	if len(rec.nodeBatches) != 1 {
		t.Fatalf("node batches = %d, want 1", len(rec.nodeBatches))
	}
	var derived bool
	for _, c := range rec.nodeBatches[0] {
		if c.ID == "p" && c.Kind == changes.KindDimensions {
			derived = true
		}
	}
	if !derived {
		t.Errorf("batch %+v lacks the derived parent dimensions change", rec.nodeBatches[0])
	}
}

func TestRemoveSelectedCascades(t *testing.T) {
	s, rec := newTestStore(t, config.Default())
	keep := child("keep", "a", 10, 10, 10, 10)
	keep.Deletable = flow.Bool(false)
	s.SetNodes([]flow.Node[string]{
		node("a", 100, 100, 100, 100),
		child("b", "a", 0, 0, 10, 10),
		keep,
		node("c", 400, 0, 10, 10),
	})
	s.SetEdges([]flow.Edge{{ID: "e1", Source: "a", Target: "c"}, {ID: "e2", Source: "c", Target: "keep"}})
	s.AddSelectedNodes([]string{"a"})

	s.HandleEvent(input.Key(input.KeyDelete, input.Modifiers{}))

	var ids []string
	for _, n := range s.Nodes() {
		ids = append(ids, n.ID)
	}
	if !slices.Equal(ids, []string{"keep", "c"}) {
		t.Errorf("nodes = %v, want [keep c]", ids)
	}
	if got := s.Edges(); len(got) != 1 || got[0].ID != "e2" {
		t.Errorf("edges = %+v, want only e2", got)
	}
	k := mustNode(t, s, "keep")
	if k.ParentID != "" || k.Position != (geom.Point{X: 110, Y: 110}) {
		t.Errorf("keep = parent %q at %v, want detached at (110,110)", k.ParentID, k.Position)
	}
	if len(rec.edgeBatches) == 0 {
		t.Error("no edge batch forwarded for the cascade")
	}
}

func TestSelectionNotifications(t *testing.T) {
	s, rec := newTestStore(t, config.Default())
	locked := node("locked", 0, 0, 10, 10)
	locked.Selectable = flow.Bool(false)
	s.SetNodes([]flow.Node[string]{node("a", 0, 0, 10, 10), node("b", 0, 0, 10, 10), locked})
	s.SetEdges([]flow.Edge{{ID: "e", Source: "a", Target: "b"}})

	s.AddSelectedNodes([]string{"a", "locked"})
	s.AddSelectedNodes([]string{"a"})
	if len(rec.selections) != 1 || !slices.Equal(rec.selections[0], []string{"a"}) {
		t.Fatalf("selections = %v, want one notification [a]", rec.selections)
	}

	s.AddSelectedEdges([]string{"e"})
	if got, want := s.SelectedNodes(), []string(nil); !slices.Equal(got, want) {
		t.Errorf("SelectedNodes() = %v, want replaced selection", got)
	}
	if got := s.SelectedEdges(); !slices.Equal(got, []string{"e"}) {
		t.Errorf("SelectedEdges() = %v, want [e]", got)
	}

	s.HandleEvent(input.Event{Kind: input.KeyDown, Key: input.KeyShift})
	s.AddSelectedNodes([]string{"b"})
	s.HandleEvent(input.Event{Kind: input.KeyUp, Key: input.KeyShift})
	if got := s.SelectedEdges(); !slices.Equal(got, []string{"e"}) {
		t.Errorf("SelectedEdges() with shift = %v, want e kept", got)
	}

	s.UnselectAll()
	if len(s.SelectedNodes())+len(s.SelectedEdges()) != 0 {
		t.Error("UnselectAll() left a selection")
	}
	if got := len(rec.selections); got != 4 {
		t.Errorf("selection notifications = %d, want 4", got)
	}
}

func TestControlledMode(t *testing.T) {
	cfg := config.Default()
	cfg.Controlled = true
	s, rec := newTestStore(t, cfg)
	nodes := []flow.Node[string]{node("a", 100, 100, 10, 10)}
	s.SetNodes(nodes)

	s.UpdateNodePositions("a", geom.Point{X: 10}, false)
	if got := mustNode(t, s, "a").Position; got != (geom.Point{X: 100, Y: 100}) {
		t.Errorf("Position = %v, want unchanged until reconciliation", got)
	}
	if len(rec.nodeBatches) != 1 {
		t.Fatalf("node batches = %d, want 1 forwarded", len(rec.nodeBatches))
	}

	nodes = changes.ApplyNodeChanges(nodes, rec.nodeBatches[0])
	s.SetNodes(nodes)
	if got := mustNode(t, s, "a").Position; got != (geom.Point{X: 110, Y: 100}) {
		t.Errorf("Position after echo = %v, want (110,100)", got)
	}

	s.AddSelectedNodes([]string{"a"})
	if len(s.SelectedNodes()) != 0 {
		t.Error("selection applied internally in controlled mode")
	}
	nodes[0].Selected = true
	s.SetNodes(nodes)
	if got := s.SelectedNodes(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("SelectedNodes() = %v, want the owner's selection", got)
	}
}

func TestUncontrolledIgnoresIncomingSelection(t *testing.T) {
	s, _ := newTestStore(t, config.Default())
	n := node("a", 0, 0, 10, 10)
	s.SetNodes([]flow.Node[string]{n})
	n.Selected = true
	s.SetNodes([]flow.Node[string]{n})
	if len(s.SelectedNodes()) != 0 {
		t.Error("incoming Selected overrode store state in uncontrolled mode")
	}
}

func TestClose(t *testing.T) {
	s, rec := newTestStore(t, config.Default())
	s.SetNodes([]flow.Node[string]{node("a", 0, 0, 100, 40)})
	s.FitView(FitViewOptions{Duration: 1e9})
	if s.Loop().Active() != 1 {
		t.Fatalf("Active() = %d, want 1 running animation", s.Loop().Active())
	}

	s.Close()
	s.Close()
	if s.Loop().Active() != 0 {
		t.Errorf("Active() after Close = %d, want 0", s.Loop().Active())
	}
	before := len(rec.moves)
	s.PanBy(10, 10)
	s.SetNodes(nil)
	if len(rec.moves) != before || len(s.Nodes()) != 1 {
		t.Error("store mutated after Close")
	}
}
