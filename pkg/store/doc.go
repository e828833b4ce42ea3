// Package store implements the graph store: the single owner of one
// diagram's nodes, edges, viewport, selection and gestures.
//
// # Lifecycle
//
// A store is created with [New] and torn down with [Store.Close]. There is
// no package-level instance; every diagram owns its store.
//
//	s, err := store.New[MyData](config.Default(), store.Handlers[MyData]{
//	    OnNodesChange: func(c []changes.NodeChange[MyData]) { ... },
//	    OnConnect:     func(c flow.Connection) { ... },
//	}, loop, logger)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	s.SetNodes(nodes)
//	s.SetEdges(edges)
//	s.UpdateNodeDimensions(measurements)
//
// # Modes
//
// In uncontrolled mode the store applies its own changes and forwards them
// to the owner for information. In controlled mode ([config.Config]
// Controlled) changes are only forwarded; the owner applies them (for
// example with [changes.ApplyNodeChanges]) and hands the result back through
// SetNodes and SetEdges.
//
// # Input
//
// [Store.HandleEvent] consumes normalized pointer, wheel, key and resize
// events in screen space and drives the drag, box-selection, connection
// and pan state machines. Animations (fit-view transitions and auto-pan)
// run on the store's [anim.Loop], which the host advances once per frame.
//
// A store is not safe for concurrent use.
package store
