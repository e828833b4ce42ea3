package store

import (
	"slices"
	"testing"

	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/edge"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

func edgeScene(t *testing.T) *Store[string] {
	t.Helper()
	s, _ := newTestStore(t, config.Default())
	s.SetNodes([]flow.Node[string]{
		node("a", 0, 0, 50, 50),
		node("b", 200, 0, 50, 50),
		node("c", 0, 100, 40, 20),
		node("d", 0, 200, 40, 20),
	})
	s.UpdateNodeDimensions([]Measurement{
		{ID: "a", Size: geom.Size{Width: 50, Height: 50}, Handles: []flow.Handle{
			{ID: "out", Type: flow.HandleSource, Position: geom.Right, X: 50, Y: 20, Width: 10, Height: 10},
		}},
		{ID: "b", Size: geom.Size{Width: 50, Height: 50}, Handles: []flow.Handle{
			{ID: "in", Type: flow.HandleTarget, Position: geom.Left, X: -10, Y: 20, Width: 10, Height: 10},
		}},
	})
	s.SetEdges([]flow.Edge{
		{ID: "ab", Source: "a", SourceHandle: "out", Target: "b", TargetHandle: "in", Type: edge.TypeStraight},
		{ID: "cd", Source: "c", Target: "d", Type: edge.TypeStraight},
		{ID: "dangling", Source: "a", Target: "ghost"},
		{ID: "badhandle", Source: "a", SourceHandle: "nope", Target: "b"},
		{ID: "hidden", Source: "c", Target: "d", Hidden: true},
	})
	return s
}

func TestEdgePath(t *testing.T) {
	s := edgeScene(t)

	p, err := s.EdgePath("ab")
	if err != nil {
		t.Fatalf("EdgePath(ab) error = %v", err)
	}
	want := []geom.Point{{X: 60, Y: 25}, {X: 190, Y: 25}}
	if !slices.Equal(p.Points, want) {
		t.Errorf("Points = %v, want %v", p.Points, want)
	}
	if p.Label != (geom.Point{X: 125, Y: 25}) {
		t.Errorf("Label = %v, want (125,25)", p.Label)
	}

	p, err = s.EdgePath("cd")
	if err != nil {
		t.Fatalf("EdgePath(cd) error = %v", err)
	}
	if want := []geom.Point{{X: 20, Y: 120}, {X: 20, Y: 200}}; !slices.Equal(p.Points, want) {
		t.Errorf("handle-less Points = %v, want %v", p.Points, want)
	}
}

func TestEdgePathErrors(t *testing.T) {
	s := edgeScene(t)
	tests := []struct {
		id   string
		code errors.Code
	}{
		{"missing", errors.ErrCodeNotFound},
		{"dangling", errors.ErrCodeNotFound},
		{"badhandle", errors.ErrCodeMissingHandle},
	}
	for _, tt := range tests {
		_, err := s.EdgePath(tt.id)
		if got := errors.GetCode(err); got != tt.code {
			t.Errorf("EdgePath(%q) code = %v, want %v", tt.id, got, tt.code)
		}
	}
}

func TestEdgePathsFollowNodes(t *testing.T) {
	s := edgeScene(t)
	paths := s.EdgePaths()
	if len(paths) != 2 {
		t.Errorf("EdgePaths() = %d paths, want 2 routable visible edges", len(paths))
	}

	s.UpdateNodePositions("b", geom.Point{X: 0, Y: 100}, false)
	p, _ := s.EdgePath("ab")
	if got := p.Points[len(p.Points)-1]; got != (geom.Point{X: 190, Y: 125}) {
		t.Errorf("target anchor = %v, want (190,125) after moving b", got)
	}
}

func TestEdgePathsSkipHiddenNodes(t *testing.T) {
	s := edgeScene(t)
	nodes := s.Nodes()
	for i := range nodes {
		if nodes[i].ID == "c" {
			nodes[i].Hidden = true
		}
	}
	s.SetNodes(nodes)

	paths := s.EdgePaths()
	if _, ok := paths["cd"]; ok {
		t.Error("EdgePaths() routed cd although c is hidden")
	}
	if _, ok := paths["ab"]; !ok || len(paths) != 1 {
		t.Errorf("EdgePaths() = %v, want only ab", paths)
	}
	if _, ok := s.Snapshot().Paths["cd"]; ok {
		t.Error("Snapshot().Paths contains cd")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := edgeScene(t)
	s.AddSelectedNodes([]string{"a"})

	snap := s.Snapshot()
	snap.Nodes[0].Position = geom.Point{X: 999}
	snap.Handles["a"][0].X = 999

	if got := mustNode(t, s, "a").Position; got != (geom.Point{}) {
		t.Errorf("store node changed through snapshot: %v", got)
	}
	if got := s.Handles("a")[0].X; got != 50 {
		t.Errorf("store handle changed through snapshot: %v", got)
	}
	if !slices.Equal(snap.SelectedNodes, []string{"a"}) || snap.Gesture != "idle" {
		t.Errorf("snapshot selection = %v gesture = %q", snap.SelectedNodes, snap.Gesture)
	}
	b, ok := snap.Bounds()
	if !ok || b != (geom.Rect{X: 0, Y: 0, Width: 250, Height: 220}) {
		t.Errorf("Bounds() = %+v, %v", b, ok)
	}
}
