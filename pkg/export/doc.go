// Package export renders store snapshots as Graphviz diagrams.
//
// Node positions are taken from the snapshot and pinned, so the picture
// matches what the editor shows instead of a fresh Graphviz layout:
//
//	dot := export.ToDOT(s.Snapshot(), export.Options{})
//	svg, err := export.RenderSVG(ctx, dot)
//
// Edges leave and enter nodes on the compass side of the handle they are
// attached to. Selected items are drawn with a heavier pen and animated
// edges are dashed.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering with the neato engine.
package export
