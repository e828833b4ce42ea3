package store

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowcore/pkg/connect"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/input"
	"github.com/matzehuels/flowcore/pkg/observability"
	"github.com/matzehuels/flowcore/pkg/selection"
)

// GestureKind identifies the pointer gesture in progress.
type GestureKind int

const (
	GestureNone GestureKind = iota
	// GesturePending is a press on a node that has not yet moved past the
	// drag threshold.
	GesturePending
	GestureDrag
	GestureSelect
	GestureConnect
	GesturePan
)

var gestureNames = [...]string{"idle", "pending", "drag", "select", "connect", "pan"}

func (k GestureKind) String() string {
	if k < GestureNone || k > GesturePan {
		return fmt.Sprintf("GestureKind(%d)", int(k))
	}
	return gestureNames[k]
}

type gesture struct {
	kind      GestureKind
	id        string
	start     geom.Point // screen
	startFlow geom.Point // flow, unsnapped
	node      string

	// drag
	origins map[string]geom.Point
	targets map[string]geom.Point

	// box selection
	base    []string
	current []string

	// pan
	vpStart geom.Viewport
}

// Gesture returns the gesture in progress.
func (s *Store[T]) Gesture() GestureKind { return s.g.kind }

// SelectionRect returns the screen-space box of an active box selection.
func (s *Store[T]) SelectionRect() (geom.Rect, bool) {
	if s.g.kind != GestureSelect {
		return geom.Rect{}, false
	}
	return selection.RectFromPoints(s.g.start, s.pointer), true
}

// ConnectionLine returns the screen-space start of an active connection
// gesture, the pointer, and the current candidate if there is one.
func (s *Store[T]) ConnectionLine() (from connect.Handle, pointer geom.Point, cand *connect.Candidate, ok bool) {
	if s.g.kind != GestureConnect || s.resolver == nil {
		return connect.Handle{}, geom.Point{}, nil, false
	}
	from, _ = s.resolver.From()
	if c, found := s.resolver.Candidate(); found {
		cand = &c
	}
	return from, s.resolver.Pointer(), cand, true
}

// HandleEvent feeds one normalized input event through the gesture state
// machines. Pointer coordinates are in screen space.
//
// A primary press on a connectable handle starts a connection, on a node
// selects it and arms a drag, and on the empty pane starts a box selection
// (or a pan with PanOnDrag). A middle-button press always pans. Escape
// cancels the active gesture, and Delete or Backspace removes the
// selection when no gesture is active.
func (s *Store[T]) HandleEvent(ev input.Event) {
	if s.closed {
		return
	}
	switch ev.Kind {
	case input.PointerDown:
		s.mods = ev.Modifiers
		s.pointerDown(ev)
	case input.PointerMove:
		s.mods = ev.Modifiers
		s.pointerMove(ev.Point)
	case input.PointerUp:
		s.mods = ev.Modifiers
		s.pointerUp(ev.Point)
	case input.PointerLeave:
		s.pointer = ev.Point
	case input.Wheel:
		s.wheel(ev)
	case input.KeyDown:
		s.keyDown(ev.Key)
	case input.KeyUp:
		delete(s.held, ev.Key)
	case input.Resize:
		s.Resize(ev.Width, ev.Height)
	}
}

func (s *Store[T]) multi() bool {
	return s.mods.Multi() || s.held[input.KeyShift] || s.held[input.KeyMeta] || s.held[input.KeyControl]
}

func (s *Store[T]) pointerDown(ev input.Event) {
	s.pointer = ev.Point
	if s.g.kind != GestureNone {
		return
	}
	switch ev.Button {
	case input.ButtonMiddle:
		s.beginPan(ev.Point)
		return
	case input.ButtonPrimary:
	default:
		return
	}

	if h, ok := s.handleAt(ev.Point); ok {
		s.beginConnect(h, ev.Point)
		return
	}
	if id, ok := s.nodeAt(ev.Point); ok {
		s.beginPress(id, ev.Point)
		return
	}
	if s.cfg.Selection.PanOnDrag && !s.multi() {
		s.beginPan(ev.Point)
		return
	}
	s.beginSelect(ev.Point)
}

func (s *Store[T]) pointerMove(p geom.Point) {
	s.pointer = p
	switch s.g.kind {
	case GesturePending:
		if p.Dist(s.g.start) < s.cfg.Nodes.DragThreshold {
			return
		}
		ids := s.moveSet(s.g.node)
		if len(ids) == 0 {
			return
		}
		s.g.origins = make(map[string]geom.Point, len(ids))
		for _, id := range ids {
			s.g.origins[id] = s.nodes[s.index[id]].Position
		}
		s.transition(GestureDrag)
		s.dragTo(p)
	case GestureDrag:
		s.dragTo(p)
	case GestureSelect:
		s.selectTo(p)
	case GestureConnect:
		s.resolver.Move(p, s.screenHandles())
	case GesturePan:
		d := p.Sub(s.g.start)
		s.applyViewport(geom.Viewport{X: s.g.vpStart.X + d.X, Y: s.g.vpStart.Y + d.Y, Zoom: s.vp.Zoom})
	}
	s.updateAutoPan()
}

func (s *Store[T]) pointerUp(p geom.Point) {
	s.pointer = p
	switch s.g.kind {
	case GestureNone:
		return
	case GestureDrag:
		s.dragTo(p)
		s.moveNodes(s.g.targets, false)
		s.endGesture("finished")
	case GestureConnect:
		// The release point decides the target, not the last move.
		s.resolver.Move(p, s.screenHandles())
		s.finishConnect()
	default:
		s.endGesture("finished")
	}
}

func (s *Store[T]) keyDown(key string) {
	switch key {
	case input.KeyEscape:
		s.cancelGesture()
	case input.KeyDelete, input.KeyBackspace:
		if s.g.kind == GestureNone {
			s.RemoveSelected()
		}
	case input.KeyShift, input.KeyMeta, input.KeyControl:
		s.held[key] = true
	}
}

func (s *Store[T]) wheel(ev input.Event) {
	if ev.DeltaY == 0 {
		return
	}
	factor := s.cfg.Viewport.ZoomStep
	if ev.DeltaY > 0 {
		factor = 1 / factor
	}
	s.ZoomAt(ev.Point, factor)
}

// =============================================================================
// Gesture lifecycle
// =============================================================================

func (s *Store[T]) startGesture(kind GestureKind, p geom.Point) {
	s.g = gesture{
		kind:      kind,
		id:        uuid.NewString()[:8],
		start:     p,
		startFlow: geom.ScreenToFlow(p, s.vp, nil),
	}
	observability.Store().OnGesture(s.id, kind.String(), "started")
	s.logger.Debug("gesture started", "gesture", kind, "id", s.g.id)
}

func (s *Store[T]) transition(kind GestureKind) {
	s.g.kind = kind
	observability.Store().OnGesture(s.id, kind.String(), "started")
	s.logger.Debug("gesture transition", "gesture", kind, "id", s.g.id)
}

func (s *Store[T]) endGesture(state string) {
	if s.g.kind == GestureNone {
		return
	}
	s.channel(channelAutoPan).Stop()
	if s.resolver != nil {
		s.resolver.Reset()
	}
	observability.Store().OnGesture(s.id, s.g.kind.String(), state)
	s.logger.Debug("gesture ended", "gesture", s.g.kind, "id", s.g.id, "state", state)
	s.g = gesture{}
}

// cancelGesture aborts the active gesture. A cancelled drag puts the
// nodes back where the drag started.
func (s *Store[T]) cancelGesture() {
	switch s.g.kind {
	case GestureNone:
		return
	case GestureDrag:
		s.moveNodes(s.g.origins, false)
	case GestureConnect:
		s.resolver.Cancel()
	}
	s.endGesture("cancelled")
}

// =============================================================================
// Drag
// =============================================================================

func (s *Store[T]) beginPress(id string, p geom.Point) {
	n := s.nodes[s.index[id]]
	if s.flags(n).Selectable {
		switch {
		case s.multi() && n.Selected:
			s.setNodeSelection(nil, []string{id})
		case !n.Selected:
			s.selectOnly([]string{id}, nil, !s.multi())
		}
	}
	s.startGesture(GesturePending, p)
	s.g.node = id
}

// dragTo moves the dragged set so it follows the pointer. The offset is
// measured in flow space so auto-panning carries the nodes along.
func (s *Store[T]) dragTo(p geom.Point) {
	delta := geom.ScreenToFlow(p, s.vp, nil).Sub(s.g.startFlow)
	s.g.targets = make(map[string]geom.Point, len(s.g.origins))
	for id, o := range s.g.origins {
		s.g.targets[id] = o.Add(delta)
	}
	s.moveNodes(s.g.targets, true)
}

// =============================================================================
// Box selection
// =============================================================================

func (s *Store[T]) beginSelect(p geom.Point) {
	var base []string
	if s.multi() {
		base = s.SelectedNodes()
	} else {
		s.UnselectAll()
	}
	s.startGesture(GestureSelect, p)
	s.g.base = base
	s.g.current = slices.Clone(base)
}

func (s *Store[T]) selectTo(p geom.Point) {
	rect := selection.RectFromPoints(s.g.start, p)
	var cands []selection.Candidate
	for _, n := range s.nodes {
		if n.Hidden || n.Measured.IsZero() || !s.flags(n).Selectable {
			continue
		}
		r := s.hier.Placements[n.ID].Rect(n.Measured)
		cands = append(cands, selection.Candidate{ID: n.ID, Rect: geom.RectToScreen(r, s.vp)})
	}
	next := append(slices.Clone(s.g.base), selection.Select(rect, cands, s.selectMode)...)
	slices.Sort(next)
	next = slices.Compact(next)

	added, removed := selection.Diff(s.g.current, next)
	s.g.current = next
	s.setNodeSelection(added, removed)
}

// =============================================================================
// Connection
// =============================================================================

func (s *Store[T]) beginConnect(h connect.Handle, p geom.Point) {
	s.resolver = connect.NewResolver(connect.Options{
		Mode:         s.connMode,
		Radius:       s.cfg.Connection.Radius,
		DisallowSelf: s.cfg.Connection.DisallowSelf,
		IsValid:      s.h.IsValidConnection,
	})
	if err := s.resolver.Start(h, p); err != nil {
		s.logger.Debug("connection not started", "handle", h.Key(), "err", err)
		return
	}
	s.startGesture(GestureConnect, p)
	s.g.node = h.NodeID
}

func (s *Store[T]) finishConnect() {
	conn, ok := s.resolver.End()
	if !ok {
		s.endGesture("cancelled")
		return
	}
	if !s.hasHandle(conn.Source, conn.SourceHandle) || !s.hasHandle(conn.Target, conn.TargetHandle) {
		s.report(errors.New(errors.ErrCodeMissingHandle, "connection %s:%s -> %s:%s references an unregistered handle",
			conn.Source, conn.SourceHandle, conn.Target, conn.TargetHandle))
		s.endGesture("cancelled")
		return
	}
	s.logger.Debug("connection finalized", "source", conn.Source, "target", conn.Target)
	if s.h.OnConnect != nil {
		s.h.OnConnect(conn)
	}
	s.endGesture("finalized")
}

// =============================================================================
// Pan and auto-pan
// =============================================================================

func (s *Store[T]) beginPan(p geom.Point) {
	s.channel(channelViewport).Stop()
	s.startGesture(GesturePan, p)
	s.g.vpStart = s.vp
}

func (s *Store[T]) autoPanEnabled() bool {
	switch s.g.kind {
	case GestureDrag:
		return s.cfg.AutoPan.OnDrag
	case GestureConnect:
		return s.cfg.AutoPan.OnConnect
	}
	return false
}

func (s *Store[T]) autoPanVelocity() geom.Point {
	return geom.AutoPanVelocity(s.pointer, s.width, s.height, s.cfg.AutoPan.Margin, s.cfg.AutoPan.Speed)
}

// updateAutoPan starts the auto-pan ticker when the pointer enters the
// edge margin during a drag or connection, and stops it when it leaves.
func (s *Store[T]) updateAutoPan() {
	ch := s.channel(channelAutoPan)
	if !s.autoPanEnabled() || s.autoPanVelocity() == (geom.Point{}) {
		ch.Stop()
		return
	}
	if ch.Active() {
		return
	}
	gid := s.g.id
	ch.Start(func(time.Time) bool {
		if s.closed || s.g.id != gid || !s.autoPanEnabled() {
			return false
		}
		v := s.autoPanVelocity()
		if v == (geom.Point{}) {
			return false
		}
		s.channel(channelViewport).Stop()
		s.applyViewport(geom.Viewport{X: s.vp.X + v.X, Y: s.vp.Y + v.Y, Zoom: s.vp.Zoom})
		switch s.g.kind {
		case GestureDrag:
			s.dragTo(s.pointer)
		case GestureConnect:
			s.resolver.Move(s.pointer, s.screenHandles())
		}
		return true
	})
}

// =============================================================================
// Hit testing
// =============================================================================

// stack returns node indexes from bottom to top: by z-index, then nesting
// depth, then input order.
func (s *Store[T]) stack() []int {
	idx := make([]int, len(s.nodes))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		na, nb := s.nodes[a], s.nodes[b]
		if c := cmp.Compare(na.ZIndex, nb.ZIndex); c != 0 {
			return c
		}
		return cmp.Compare(s.hier.Placements[na.ID].Depth, s.hier.Placements[nb.ID].Depth)
	})
	return idx
}

// nodeAt returns the topmost visible measured node under screen point p.
func (s *Store[T]) nodeAt(p geom.Point) (string, bool) {
	f := geom.ScreenToFlow(p, s.vp, nil)
	st := s.stack()
	for i := len(st) - 1; i >= 0; i-- {
		n := s.nodes[st[i]]
		if n.Hidden || n.Measured.IsZero() {
			continue
		}
		if s.hier.Placements[n.ID].Rect(n.Measured).ContainsPoint(f) {
			return n.ID, true
		}
	}
	return "", false
}

// handleAt returns the topmost handle under screen point p that can start
// a connection.
func (s *Store[T]) handleAt(p geom.Point) (connect.Handle, bool) {
	hs := s.screenHandles()
	for i := len(hs) - 1; i >= 0; i-- {
		if hs[i].CanStart && hs[i].Rect.ContainsPoint(p) {
			return hs[i], true
		}
	}
	return connect.Handle{}, false
}
