// Package connect resolves pointer-driven connection gestures.
//
// A [Resolver] starts on a connectable handle, tracks the pointer and
// proposes the handle the connection would snap to. [Strict] mode accepts
// only the opposite handle type on another node; [Loose] mode accepts any
// handle, the origin node's included unless Options.DisallowSelf. Candidates the
// external predicate rejects remain visible through [Resolver.Candidate]
// but cannot finalize the gesture.
package connect
