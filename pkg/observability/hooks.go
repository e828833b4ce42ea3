// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about store reconciliation, gesture transitions, animation
// frames and change-feed publishing.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Store and frame hooks are invoked synchronously from inside event handling,
// so implementations must be cheap and must not call back into the store.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetFrameHooks(&myFrameHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnGesture(storeID, "connect", "finalized")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from a graph store.
type StoreHooks interface {
	// OnReconcile records a SetNodes/SetEdges pass.
	OnReconcile(store string, nodes, edges int, duration time.Duration)

	// OnChanges records a change batch forwarded on the "nodes" or "edges" channel.
	OnChanges(store, channel string, count int)

	// OnGesture records a gesture state transition.
	OnGesture(store, gesture, state string)
}

// =============================================================================
// Frame Hooks
// =============================================================================

// FrameHooks receives events from animation channels.
type FrameHooks interface {
	// OnFrameStart records a ticker becoming active on a channel.
	OnFrameStart(channel string)

	// OnFrameStop records a ticker ending, with the number of frames it ran.
	OnFrameStop(channel string, frames int)
}

// =============================================================================
// Feed Hooks
// =============================================================================

// FeedHooks receives events from change-feed publishers.
type FeedHooks interface {
	// OnPublish records a published batch (err is nil on success).
	OnPublish(ctx context.Context, channel string, size int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnReconcile(string, int, int, time.Duration) {}
func (NoopStoreHooks) OnChanges(string, string, int)               {}
func (NoopStoreHooks) OnGesture(string, string, string)            {}

// NoopFrameHooks is a no-op implementation of FrameHooks.
type NoopFrameHooks struct{}

func (NoopFrameHooks) OnFrameStart(string)     {}
func (NoopFrameHooks) OnFrameStop(string, int) {}

// NoopFeedHooks is a no-op implementation of FeedHooks.
type NoopFeedHooks struct{}

func (NoopFeedHooks) OnPublish(context.Context, string, int, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks StoreHooks = NoopStoreHooks{}
	frameHooks FrameHooks = NoopFrameHooks{}
	feedHooks  FeedHooks  = NoopFeedHooks{}
	hooksMu    sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store is created.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetFrameHooks registers custom frame hooks.
func SetFrameHooks(h FrameHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		frameHooks = h
	}
}

// SetFeedHooks registers custom feed hooks.
func SetFeedHooks(h FeedHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		feedHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Frame returns the registered frame hooks.
func Frame() FrameHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return frameHooks
}

// Feed returns the registered feed hooks.
func Feed() FeedHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return feedHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	frameHooks = NoopFrameHooks{}
	feedHooks = NoopFeedHooks{}
}
