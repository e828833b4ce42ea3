package export

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/store"
)

func scene(t *testing.T) store.Snapshot[string] {
	t.Helper()
	s, err := store.New[string](config.Default(), store.Handlers[string]{}, nil, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	s.SetNodes([]flow.Node[string]{
		{ID: "a", Measured: geom.Size{Width: 72, Height: 36}, Data: "alpha"},
		{ID: "b", Position: geom.Point{X: 144}, Measured: geom.Size{Width: 72, Height: 36}},
		{ID: "c", Position: geom.Point{Y: 100}, Measured: geom.Size{Width: 72, Height: 36}, Hidden: true},
	})
	s.UpdateNodeDimensions([]store.Measurement{
		{ID: "a", Size: geom.Size{Width: 72, Height: 36}, Handles: []flow.Handle{
			{ID: "out", Type: flow.HandleSource, Position: geom.Right, X: 72, Y: 13, Width: 10, Height: 10},
		}},
		{ID: "b", Size: geom.Size{Width: 72, Height: 36}, Handles: []flow.Handle{
			{ID: "in", Type: flow.HandleTarget, Position: geom.Left, X: -10, Y: 13, Width: 10, Height: 10},
		}},
	})
	s.SetEdges([]flow.Edge{
		{ID: "ab", Source: "a", SourceHandle: "out", Target: "b", TargetHandle: "in", Label: "uses", Animated: true},
		{ID: "ac", Source: "a", Target: "c"},
		{ID: "ba", Source: "b", Target: "a"},
	})
	s.AddSelectedNodes([]string{"a"})
	return s.Snapshot()
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(scene(t), Options{})

	tests := []struct {
		name string
		want string
	}{
		{"pinned a", `"a" [label="a", pos="0.5,-0.25!", width=1, height=0.5, penwidth=3];`},
		{"pinned b", `"b" [label="b", pos="2.5,-0.25!", width=1, height=0.5];`},
		{"ports", `"a" -> "b" [tailport=e, headport=w, label="uses", style=dashed];`},
		{"default ports", `"b" -> "a";`},
		{"engine", "layout=neato;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(dot, tt.want) {
				t.Errorf("ToDOT() missing %s\n%s", tt.want, dot)
			}
		})
	}

	if strings.Contains(dot, `"c"`) {
		t.Errorf("hidden node or its edges exported:\n%s", dot)
	}
}

func TestToDOTScaleAndDetail(t *testing.T) {
	dot := ToDOT(scene(t), Options{Detailed: true, Scale: 2})
	if !strings.Contains(dot, `pos="1,-0.5!", width=2, height=1`) {
		t.Errorf("scaled node missing:\n%s", dot)
	}
	if !strings.Contains(dot, `data: alpha`) {
		t.Errorf("detailed label missing payload:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox changed")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(scene(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("viewBox")) {
		t.Errorf("RenderSVG() output is not an SVG document: %.200s", svg)
	}

	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG() accepted malformed DOT")
	}
}
