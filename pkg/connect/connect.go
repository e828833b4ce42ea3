package connect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/flowcore/pkg/flow"
	"github.com/matzehuels/flowcore/pkg/geom"
)

var (
	// ErrNotConnectable is returned by [Resolver.Start] when the handle
	// may not begin a connection.
	ErrNotConnectable = errors.New("handle is not connectable as a start")

	// ErrGestureActive is returned by [Resolver.Start] while a gesture is
	// already in progress.
	ErrGestureActive = errors.New("connection gesture already active")
)

// State is the resolver's gesture state.
type State int

const (
	Idle State = iota
	Connecting
	Finalized
	Cancelled
)

var stateNames = [...]string{"idle", "connecting", "finalized", "cancelled"}

func (s State) String() string {
	if s < Idle || s > Cancelled {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Mode controls which handles are acceptable targets.
type Mode int

const (
	// Strict accepts only handles of the opposite type on another node.
	Strict Mode = iota
	// Loose accepts any handle, including the origin node's, unless
	// Options.DisallowSelf is set.
	Loose
)

func (m Mode) String() string {
	if m == Loose {
		return "loose"
	}
	return "strict"
}

// ParseMode parses "strict" or "loose" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "strict":
		return Strict, nil
	case "loose":
		return Loose, nil
	}
	return Strict, fmt.Errorf("unknown connection mode %q", s)
}

// DefaultRadius is the snapping radius used when Options.Radius is zero.
const DefaultRadius = 20

// Options configures a [Resolver].
type Options struct {
	Mode Mode
	// Radius is the search distance from the pointer to a handle center.
	Radius float64
	// DisallowSelf rejects targets on the origin node in Loose mode.
	DisallowSelf bool
	// IsValid is the external validity predicate. Nil accepts every
	// mode-compatible candidate.
	IsValid func(flow.Connection) bool
}

// Handle is a registered handle with its box in the coordinate space the
// pointer is reported in.
type Handle struct {
	NodeID   string
	ID       string
	Type     flow.HandleType
	Position geom.Position
	Rect     geom.Rect
	// CanStart and CanEnd are the resolved connectable flags.
	CanStart bool
	CanEnd   bool
}

// Key identifies the handle within its node.
func (h Handle) Key() string { return h.NodeID + "/" + string(h.Type) + "/" + h.ID }

// Candidate is the handle currently proposed as the connection target.
type Candidate struct {
	Handle     Handle
	Connection flow.Connection
	Distance   float64
	// Valid is false when the external predicate rejected the connection.
	// Invalid candidates are still reported for feedback but cannot finalize.
	Valid bool
}
