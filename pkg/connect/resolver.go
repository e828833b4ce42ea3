package connect

import (
	"cmp"

	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

// Resolver is the connection gesture state machine:
//
//	Idle -> Connecting -> Finalized | Cancelled
//
// A finished gesture stays in its terminal state until the next Start or
// Reset. The zero value is not usable; construct with [NewResolver].
type Resolver struct {
	opts      Options
	state     State
	from      Handle
	pointer   geom.Point
	candidate *Candidate
}

// NewResolver returns an idle resolver.
func NewResolver(opts Options) *Resolver {
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}
	return &Resolver{opts: opts}
}

// State returns the current gesture state.
func (r *Resolver) State() State { return r.state }

// From returns the handle the gesture started on.
func (r *Resolver) From() (Handle, bool) { return r.from, r.state == Connecting }

// Pointer returns the last pointer position seen by the gesture.
func (r *Resolver) Pointer() geom.Point { return r.pointer }

// Candidate returns the current target candidate, if any.
func (r *Resolver) Candidate() (Candidate, bool) {
	if r.state != Connecting || r.candidate == nil {
		return Candidate{}, false
	}
	return *r.candidate, true
}

// Start begins a gesture on h.
func (r *Resolver) Start(h Handle, pointer geom.Point) error {
	if r.state == Connecting {
		return ErrGestureActive
	}
	if !h.CanStart {
		return ErrNotConnectable
	}
	r.state = Connecting
	r.from = h
	r.pointer = pointer
	r.candidate = nil
	return nil
}

// Move updates the pointer and recomputes the candidate. A compatible
// handle directly under the pointer wins; otherwise the nearest compatible
// handle center within the radius is chosen. Ties are broken by distance,
// then by preferring the complementary handle type, then by node and
// handle id.
func (r *Resolver) Move(pointer geom.Point, handles []Handle) (Candidate, bool) {
	if r.state != Connecting {
		return Candidate{}, false
	}
	r.pointer = pointer
	r.candidate = nil

	var over, near *Handle
	var overDist, nearDist float64
	for i := range handles {
		h := &handles[i]
		if !r.compatible(*h) {
			continue
		}
		d := h.Rect.Center().Dist(pointer)
		if h.Rect.ContainsPoint(pointer) {
			if over == nil || r.less(*h, d, *over, overDist) {
				over, overDist = h, d
			}
			continue
		}
		if d <= r.opts.Radius && (near == nil || r.less(*h, d, *near, nearDist)) {
			near, nearDist = h, d
		}
	}

	pick, dist := over, overDist
	if pick == nil {
		pick, dist = near, nearDist
	}
	if pick == nil {
		return Candidate{}, false
	}

	conn := r.connection(*pick)
	r.candidate = &Candidate{
		Handle:     *pick,
		Connection: conn,
		Distance:   dist,
		Valid:      r.opts.IsValid == nil || r.opts.IsValid(conn),
	}
	return *r.candidate, true
}

// End finishes the gesture at pointer-up. It finalizes with the candidate's
// connection when the candidate is valid and cancels otherwise.
func (r *Resolver) End() (flow.Connection, bool) {
	if r.state != Connecting {
		return flow.Connection{}, false
	}
	if r.candidate == nil || !r.candidate.Valid {
		r.state = Cancelled
		return flow.Connection{}, false
	}
	r.state = Finalized
	return r.candidate.Connection, true
}

// Cancel aborts an active gesture.
func (r *Resolver) Cancel() {
	if r.state == Connecting {
		r.state = Cancelled
	}
}

// Reset returns the resolver to Idle from any state.
func (r *Resolver) Reset() {
	r.state = Idle
	r.from = Handle{}
	r.candidate = nil
}

func (r *Resolver) compatible(h Handle) bool {
	from := r.from
	if !h.CanEnd || h.Key() == from.Key() {
		return false
	}
	if r.opts.Mode == Strict {
		return h.Type != from.Type && h.NodeID != from.NodeID
	}
	return h.NodeID != from.NodeID || !r.opts.DisallowSelf
}

func (r *Resolver) less(a Handle, da float64, b Handle, db float64) bool {
	if da != db {
		return da < db
	}
	ca, cb := a.Type != r.from.Type, b.Type != r.from.Type
	if ca != cb {
		return ca
	}
	if c := cmp.Compare(a.NodeID, b.NodeID); c != 0 {
		return c < 0
	}
	if c := cmp.Compare(a.ID, b.ID); c != 0 {
		return c < 0
	}
	return a.Type < b.Type
}

// connection orients the proposed edge: dragging out of a target handle
// produces a connection with the dragged handle as the target.
func (r *Resolver) connection(to Handle) flow.Connection {
	if r.from.Type == flow.HandleTarget {
		return flow.Connection{Source: to.NodeID, SourceHandle: to.ID, Target: r.from.NodeID, TargetHandle: r.from.ID}
	}
	return flow.Connection{Source: r.from.NodeID, SourceHandle: r.from.ID, Target: to.NodeID, TargetHandle: to.ID}
}
