// Package input defines the normalized input events the store consumes.
//
// Events are produced by an input-normalization layer (a browser bridge, a
// terminal, a test script) and carry screen-space coordinates plus modifier
// state. They serialize to JSON so recorded sessions can be replayed.
package input

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowcore/pkg/geom"
)

// Kind is the event type.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	// PointerLeave reports the pointer leaving the viewport; active
	// gestures keep running.
	PointerLeave
	Wheel
	KeyDown
	KeyUp
	Resize
)

var kindNames = [...]string{
	"pointerdown", "pointermove", "pointerup", "pointerleave", "wheel", "keydown", "keyup", "resize",
}

func (k Kind) String() string {
	if k < PointerDown || k > Resize {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses an event kind name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(s)
	for i, name := range kindNames {
		if s == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Button is a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Well-known key names.
const (
	KeyEscape    = "Escape"
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
	KeyShift     = "Shift"
	KeyMeta      = "Meta"
	KeyControl   = "Control"
)

// Modifiers is the modifier key state at the time of an event.
type Modifiers struct {
	Shift bool `json:"shift,omitempty"`
	Meta  bool `json:"meta,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
	Alt   bool `json:"alt,omitempty"`
}

// Multi reports whether the modifiers request multi-selection.
func (m Modifiers) Multi() bool { return m.Shift || m.Meta || m.Ctrl }

// Event is one normalized input event. Point is in screen space. DeltaY is
// the wheel delta (negative zooms in). Width and Height are set on Resize.
type Event struct {
	Kind      Kind       `json:"kind"`
	Point     geom.Point `json:"point,omitzero"`
	Button    Button     `json:"button,omitempty"`
	DeltaY    float64    `json:"deltaY,omitempty"`
	Key       string     `json:"key,omitempty"`
	Modifiers Modifiers  `json:"modifiers,omitzero"`
	Width     float64    `json:"width,omitempty"`
	Height    float64    `json:"height,omitempty"`
}

// Down returns a primary-button pointer-down event.
func Down(x, y float64) Event { return Event{Kind: PointerDown, Point: geom.Point{X: x, Y: y}} }

// Move returns a pointer-move event.
func Move(x, y float64) Event { return Event{Kind: PointerMove, Point: geom.Point{X: x, Y: y}} }

// Up returns a pointer-up event.
func Up(x, y float64) Event { return Event{Kind: PointerUp, Point: geom.Point{X: x, Y: y}} }

// Key returns a key-down event.
func Key(key string, mods Modifiers) Event { return Event{Kind: KeyDown, Key: key, Modifiers: mods} }

// ResizeTo returns a resize event.
func ResizeTo(w, h float64) Event { return Event{Kind: Resize, Width: w, Height: h} }

// WheelAt returns a wheel event at (x, y).
func WheelAt(x, y, deltaY float64) Event {
	return Event{Kind: Wheel, Point: geom.Point{X: x, Y: y}, DeltaY: deltaY}
}
