package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/store"
)

func quietLogger() *log.Logger {
	return newLogger(os.Stderr, log.FatalLevel)
}

// testScene has two measured nodes side by side. a has a source handle on
// its right edge and b a target handle on its left edge.
func testScene(withEdge bool) Scene {
	sc := Scene{
		Nodes: []sceneNode{
			{ID: "a", Position: geom.Point{X: 100, Y: 100}, Measured: geom.Size{Width: 80, Height: 40}, Data: json.RawMessage(`{"label":"A"}`)},
			{ID: "b", Position: geom.Point{X: 300, Y: 100}, Measured: geom.Size{Width: 80, Height: 40}},
		},
		Handles: map[string][]flow.Handle{
			"a": {{ID: "out", Type: flow.HandleSource, Position: geom.Right, X: 75, Y: 15, Width: 10, Height: 10}},
			"b": {{ID: "in", Type: flow.HandleTarget, Position: geom.Left, X: -5, Y: 15, Width: 10, Height: 10}},
		},
	}
	if withEdge {
		sc.Edges = []flow.Edge{{ID: "ab", Source: "a", SourceHandle: "out", Target: "b", TargetHandle: "in", Type: "straight"}}
	}
	return sc
}

func writeFile(t *testing.T, name string, v any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := writeJSON(path, v); err != nil {
		t.Fatalf("writeJSON() error = %v", err)
	}
	return path
}

func TestReadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	data := `{
  "nodes": [
    {"id": "a", "position": {"x": 10, "y": 20}, "measured": {"width": 50, "height": 30}, "data": {"label": "A"}},
    {"id": "c", "parentId": "a", "position": {"x": 5, "y": 5}, "extent": {"kind": "parent"}}
  ],
  "edges": [{"id": "e", "source": "a", "target": "c", "type": "step"}],
  "handles": {"a": [{"id": "out", "type": "source", "position": "bottom", "x": 20, "y": 25, "width": 10, "height": 10}]},
  "width": 640,
  "height": 480
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := readScene(path)
	if err != nil {
		t.Fatalf("readScene() error = %v", err)
	}
	if len(sc.Nodes) != 2 || len(sc.Edges) != 1 {
		t.Fatalf("readScene() = %d nodes, %d edges", len(sc.Nodes), len(sc.Edges))
	}
	if got := string(sc.Nodes[0].Data); got != `{"label": "A"}` {
		t.Errorf("payload = %s, want it untouched", got)
	}
	if h := sc.Handles["a"][0]; h.Position != geom.Bottom || h.Type != flow.HandleSource {
		t.Errorf("handle = %+v", h)
	}

	s, err := sc.open(config.Default(), store.Handlers[sceneData]{}, nil, quietLogger())
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	defer s.Close()

	if w, h := s.Size(); w != 640 || h != 480 {
		t.Errorf("Size() = %vx%v, want 640x480", w, h)
	}
	if hs := s.Handles("a"); len(hs) != 1 || hs[0].NodeID != "a" {
		t.Errorf("Handles(a) = %+v", hs)
	}
	if p, ok := s.Placement("c"); !ok || p.Absolute != (geom.Point{X: 15, Y: 25}) {
		t.Errorf("Placement(c) = %+v, %v", p, ok)
	}
}

func TestReadSceneErrors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(t.TempDir(), "nope.json"), errors.ErrCodeNotFound},
		{"malformed", bad, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readScene(tt.path)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("readScene() code = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestSceneRoundTrip(t *testing.T) {
	s, err := testScene(true).open(config.Default(), store.Handlers[sceneData]{}, nil, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	path := writeFile(t, "out.json", sceneOf(s.Snapshot()))
	sc, err := readScene(path)
	if err != nil {
		t.Fatalf("readScene() error = %v", err)
	}
	if len(sc.Nodes) != 2 || len(sc.Edges) != 1 || len(sc.Handles["b"]) != 1 {
		t.Errorf("round trip lost data: %+v", sc)
	}
	if sc.Viewport == nil || sc.Viewport.Zoom != 1 {
		t.Errorf("Viewport = %+v, want zoom 1", sc.Viewport)
	}
}
