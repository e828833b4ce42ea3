// Package changes implements the change-record reducer.
//
// A change record is a typed mutation: add, remove, select, position,
// dimensions or replace. [Apply] reduces a batch against the previous node
// and edge slices and returns the next state together with every change to
// forward to the external state owner, including the changes it derived:
//
//   - removal cascades to connected edges and to descendant nodes;
//   - non-deletable descendants of a removed node are detached instead,
//     keeping their absolute position;
//   - parents grow to fit children that moved or resized out of their box.
//
// Within a batch, changes are grouped by id and merged left to right, so the
// latest change wins per field. [ApplyNodeChanges] and [ApplyEdgeChanges]
// are the plain reducers without derived changes, for owners that apply the
// forwarded batches themselves.
package changes
