package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/store"
)

// pointsPerInch converts flow units (treated as points) to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Detailed adds position, size and payload to node labels.
	Detailed bool
	// Scale multiplies every coordinate. Zero means 1.
	Scale float64
}

// ToDOT converts a snapshot to Graphviz DOT source with pinned node
// positions. Hidden nodes, hidden edges and edges to hidden or missing
// nodes are left out.
func ToDOT[T any](snap store.Snapshot[T], opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	inch := func(v float64) float64 { return v * scale / pointsPerInch }

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=10];\n")
	buf.WriteString("\n")

	visible := make(map[string]bool, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if n.Hidden {
			continue
		}
		visible[n.ID] = true
		rect := snap.Placements[n.ID].Rect(n.Measured)
		c := rect.Center()
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(n, rect, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(inch(c.X)), num(-inch(c.Y))),
			fmt.Sprintf("width=%s", num(inch(rect.Width))),
			fmt.Sprintf("height=%s", num(inch(rect.Height))),
		}
		if n.Selected {
			attrs = append(attrs, "penwidth=3")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range snap.Edges {
		if e.Hidden || !visible[e.Source] || !visible[e.Target] {
			continue
		}
		var attrs []string
		if port, ok := port(snap.Handles[e.Source], e.SourceHandle, flow.HandleSource); ok {
			attrs = append(attrs, fmt.Sprintf("tailport=%s", port))
		}
		if port, ok := port(snap.Handles[e.Target], e.TargetHandle, flow.HandleTarget); ok {
			attrs = append(attrs, fmt.Sprintf("headport=%s", port))
		}
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		if e.Animated {
			attrs = append(attrs, "style=dashed")
		}
		if e.Selected {
			attrs = append(attrs, "penwidth=3")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel[T any](n flow.Node[T], rect geom.Rect, detailed bool) string {
	if !detailed {
		return n.ID
	}
	return fmt.Sprintf("%s\npos: %s,%s\nsize: %sx%s\ndata: %v",
		n.ID, num(rect.X), num(rect.Y), num(rect.Width), num(rect.Height), n.Data)
}

// port returns the compass point of the handle an edge end attaches to.
// An empty id picks the node's first handle of type t.
func port(handles []flow.Handle, id string, t flow.HandleType) (string, bool) {
	for _, h := range handles {
		if (id != "" && h.ID == id) || (id == "" && h.Type == t) {
			return compass(h.Position), true
		}
	}
	return "", false
}

func compass(p geom.Position) string {
	switch p {
	case geom.Top:
		return "n"
	case geom.Right:
		return "e"
	case geom.Bottom:
		return "s"
	default:
		return "w"
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG with the neato engine, honoring the
// pinned positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the SVG scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
