// Package config holds the engine configuration surface.
//
// Configuration can be built in code from [Default] or loaded from a TOML or
// YAML file with [Load]; the format follows the file extension. Keys missing
// from a file keep their default values. [Watch] reloads a file whenever it
// changes on disk.
//
// Example TOML:
//
//	controlled = false
//
//	[connection]
//	mode = "loose"
//	radius = 25
//
//	[viewport]
//	min_zoom = 0.25
//	max_zoom = 4
//
//	[nodes]
//	origin = [0.5, 0.5]
//	snap_to_grid = true
//	snap_grid = [20, 20]
package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowcore/pkg/edge"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// Config is the full engine configuration.
type Config struct {
	// Controlled forwards changes to the external owner without applying
	// them; the next SetNodes/SetEdges is the only path back into state.
	Controlled bool `toml:"controlled" yaml:"controlled"`

	Connection ConnectionConfig `toml:"connection" yaml:"connection"`
	Selection  SelectionConfig  `toml:"selection" yaml:"selection"`
	Viewport   ViewportConfig   `toml:"viewport" yaml:"viewport"`
	Nodes      NodesConfig      `toml:"nodes" yaml:"nodes"`
	Edges      EdgesConfig      `toml:"edges" yaml:"edges"`
	AutoPan    AutoPanConfig    `toml:"autopan" yaml:"autopan"`
}

// ConnectionConfig configures connection gestures.
type ConnectionConfig struct {
	Mode   string  `toml:"mode" yaml:"mode"` // "strict" or "loose"
	Radius float64 `toml:"radius" yaml:"radius"`
	// DisallowSelf rejects same-node connections in loose mode.
	DisallowSelf bool `toml:"disallow_self" yaml:"disallow_self"`
}

// SelectionConfig configures box selection.
type SelectionConfig struct {
	Mode string `toml:"mode" yaml:"mode"` // "full" or "partial"
	// PanOnDrag makes a plain drag on the pane pan the viewport; box
	// selection then needs the multi-selection modifier.
	PanOnDrag bool `toml:"pan_on_drag" yaml:"pan_on_drag"`
}

// ViewportConfig configures zoom bounds and the initial viewport.
type ViewportConfig struct {
	MinZoom  float64       `toml:"min_zoom" yaml:"min_zoom"`
	MaxZoom  float64       `toml:"max_zoom" yaml:"max_zoom"`
	Initial  geom.Viewport `toml:"initial" yaml:"initial"`
	Width    float64       `toml:"width" yaml:"width"`
	Height   float64       `toml:"height" yaml:"height"`
	Extent   *Extent       `toml:"translate_extent" yaml:"translate_extent"`
	Padding  float64       `toml:"fit_padding" yaml:"fit_padding"`
	ZoomStep float64       `toml:"zoom_step" yaml:"zoom_step"`
}

// NodesConfig configures node placement and default flags.
type NodesConfig struct {
	Origin        [2]float64 `toml:"origin" yaml:"origin"`
	Extent        *Extent    `toml:"extent" yaml:"extent"`
	SnapToGrid    bool       `toml:"snap_to_grid" yaml:"snap_to_grid"`
	SnapGrid      [2]float64 `toml:"snap_grid" yaml:"snap_grid"`
	ExpandMargin  float64    `toml:"expand_margin" yaml:"expand_margin"`
	DragThreshold float64    `toml:"drag_threshold" yaml:"drag_threshold"`

	Draggable   bool `toml:"draggable" yaml:"draggable"`
	Selectable  bool `toml:"selectable" yaml:"selectable"`
	Connectable bool `toml:"connectable" yaml:"connectable"`
	Focusable   bool `toml:"focusable" yaml:"focusable"`
	Deletable   bool `toml:"deletable" yaml:"deletable"`
}

// EdgesConfig configures edge routing defaults.
type EdgesConfig struct {
	DefaultType  string  `toml:"default_type" yaml:"default_type"`
	Curvature    float64 `toml:"curvature" yaml:"curvature"`
	BorderRadius float64 `toml:"border_radius" yaml:"border_radius"`
	Offset       float64 `toml:"offset" yaml:"offset"`
	Selectable   bool    `toml:"selectable" yaml:"selectable"`
	Deletable    bool    `toml:"deletable" yaml:"deletable"`
}

// AutoPanConfig configures edge auto-panning during gestures.
type AutoPanConfig struct {
	OnConnect bool    `toml:"on_connect" yaml:"on_connect"`
	OnDrag    bool    `toml:"on_drag" yaml:"on_drag"`
	Margin    float64 `toml:"margin" yaml:"margin"`
	Speed     float64 `toml:"speed" yaml:"speed"`
}

// Extent is a flow-space bounding box.
type Extent struct {
	MinX float64 `toml:"min_x" yaml:"min_x"`
	MinY float64 `toml:"min_y" yaml:"min_y"`
	MaxX float64 `toml:"max_x" yaml:"max_x"`
	MaxY float64 `toml:"max_y" yaml:"max_y"`
}

// Rect converts the extent to a rectangle.
func (e Extent) Rect() geom.Rect {
	return geom.Rect{X: e.MinX, Y: e.MinY, Width: e.MaxX - e.MinX, Height: e.MaxY - e.MinY}
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Connection: ConnectionConfig{Mode: "strict", Radius: 20},
		Selection:  SelectionConfig{Mode: "full"},
		Viewport: ViewportConfig{
			MinZoom:  0.5,
			MaxZoom:  2,
			Initial:  geom.Viewport{Zoom: 1},
			Width:    800,
			Height:   600,
			Padding:  0.1,
			ZoomStep: 1.2,
		},
		Nodes: NodesConfig{
			SnapGrid:      [2]float64{15, 15},
			ExpandMargin:  10,
			DragThreshold: 1,
			Draggable:     true,
			Selectable:    true,
			Connectable:   true,
			Focusable:     true,
			Deletable:     true,
		},
		Edges: EdgesConfig{
			DefaultType:  "default",
			Curvature:    0.25,
			BorderRadius: 5,
			Offset:       20,
			Selectable:   true,
			Deletable:    true,
		},
		AutoPan: AutoPanConfig{OnConnect: true, OnDrag: true, Margin: 40, Speed: 15},
	}
}

// NodeOrigin returns the default node origin.
func (c Config) NodeOrigin() geom.Point {
	return geom.Point{X: c.Nodes.Origin[0], Y: c.Nodes.Origin[1]}
}

// Grid returns the snap grid, or nil when snapping is off.
func (c Config) Grid() *geom.Grid {
	if !c.Nodes.SnapToGrid {
		return nil
	}
	return &geom.Grid{X: c.Nodes.SnapGrid[0], Y: c.Nodes.SnapGrid[1]}
}

// EdgeOptions returns the routing options for the configured edge shapes.
func (c Config) EdgeOptions() edge.Options {
	return edge.Options{
		Step:   edge.StepOptions{BorderRadius: c.Edges.BorderRadius, Offset: c.Edges.Offset},
		Bezier: edge.BezierOptions{Curvature: c.Edges.Curvature},
	}
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if err := errors.ValidateZoomRange(c.Viewport.MinZoom, c.Viewport.MaxZoom); err != nil {
		return err
	}
	vp := c.Viewport.Initial
	// The initial zoom is clamped into range at construction; only a
	// non-finite or non-positive value is malformed.
	if err := errors.ValidateViewport(vp.X, vp.Y, vp.Zoom, math.SmallestNonzeroFloat64, math.MaxFloat64); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidViewport, err, "initial viewport")
	}
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return errors.New(errors.ErrCodeInvalidViewport, "viewport size must not be negative")
	}
	if c.Viewport.Padding < 0 || c.Viewport.Padding >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "fit_padding must be in [0, 1) (got %v)", c.Viewport.Padding)
	}
	if c.Viewport.ZoomStep <= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom_step must be greater than 1 (got %v)", c.Viewport.ZoomStep)
	}
	for name, e := range map[string]*Extent{"translate_extent": c.Viewport.Extent, "nodes.extent": c.Nodes.Extent} {
		if e != nil && (e.MaxX < e.MinX || e.MaxY < e.MinY) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s is inverted", name)
		}
	}

	switch strings.ToLower(c.Connection.Mode) {
	case "strict", "loose":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown connection mode %q", c.Connection.Mode)
	}
	if c.Connection.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "connection radius must not be negative")
	}
	switch strings.ToLower(c.Selection.Mode) {
	case "full", "partial":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown selection mode %q", c.Selection.Mode)
	}

	if c.Nodes.SnapToGrid {
		if err := errors.ValidateGrid(c.Nodes.SnapGrid[0], c.Nodes.SnapGrid[1]); err != nil {
			return err
		}
	}
	if c.Nodes.ExpandMargin < 0 || c.Nodes.DragThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "expand_margin and drag_threshold must not be negative")
	}
	if c.AutoPan.Margin < 0 || c.AutoPan.Speed < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "autopan margin and speed must not be negative")
	}
	if c.Edges.Curvature < 0 || c.Edges.BorderRadius < 0 || c.Edges.Offset < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "edge routing options must not be negative")
	}
	return nil
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file on top of
// [Default] and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeNotFound, err, "read config %s", path)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes config data in the format named by ext (".toml", ".yaml"
// or ".yml") on top of [Default] and validates the result.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml config")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml config")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeUnsupported, "unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
