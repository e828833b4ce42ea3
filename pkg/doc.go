// Package pkg provides the core libraries of the flowcore diagram engine.
//
// # Overview
//
// flowcore is the state and interaction engine behind a node/edge diagram
// editor. It owns the diagram (nodes, edges, handles, viewport, selection),
// turns normalized pointer and keyboard input into drag, connect, box-select
// and pan gestures, and reports every mutation as a batch of change records.
// Rendering is left to the host; the engine only computes geometry.
//
// # Architecture
//
// The typical data flow through flowcore:
//
//	host input (pointer, wheel, key, resize)
//	         ↓
//	    [input] normalized events
//	         ↓
//	    [store] gesture state machines
//	         ↓
//	    [changes] change batches → owner (controlled) or store (uncontrolled)
//	         ↓
//	    [edge] paths, [geom] transforms → host renderer
//
// # Quick Start
//
//	loop := anim.NewLoop()
//	s, _ := store.New[string](config.Default(), store.Handlers[string]{
//	    OnConnect: func(c flow.Connection) { ... },
//	}, loop, logger)
//	defer s.Close()
//
//	s.Resize(800, 600)
//	s.SetNodes(nodes)
//	s.UpdateNodeDimensions(measurements)
//	s.FitView(s.DefaultFitView())
//
//	s.HandleEvent(input.Down(120, 120))
//	loop.Advance(time.Now())
//
// # Main Packages
//
// ## Engine
//
// [store] - The graph store. Holds nodes, edges and measured handles, runs the
// gesture state machines and the viewport, and emits change batches.
//
// [changes] - Change records and the reducer that applies them to node and
// edge lists.
//
// [edge] - Edge routers (default bezier, straight, step, smoothstep) and
// label placement.
//
// [connect] - Connection resolution: nearest handle within the connection
// radius, strict and loose validity.
//
// [selection] - Box-selection geometry and the selection-change diff.
//
// [geom] - Points, rects, the viewport transform, bounds and fit math.
//
// [flow] - Data model: nodes, edges, handles, connections, parent hierarchy.
//
// [anim] - The frame loop driving viewport transitions and auto-pan.
//
// [input] - Normalized pointer, wheel, key and resize events.
//
// ## Integration
//
// [feed] - Publishes change batches to Redis pub/sub for collaborating
// processes.
//
// [export] - DOT and SVG export of a store snapshot via Graphviz.
//
// [config] - TOML/YAML configuration with defaults and file watching.
//
// ## Shared
//
// [errors] - Coded errors shared across packages.
//
// [observability] - Hooks for store and feed events.
//
// [buildinfo] - Version information stamped at build time.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/store/...      # Specific package
package pkg
