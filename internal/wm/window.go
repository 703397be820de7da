// Package wm is the window registry: it owns every window record, runs drag
// and resize gestures, keeps the stacking order and focus, and reports each
// geometry change to a damage sink.
//
// A Registry is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves (see internal/shell).
package wm

import (
	"fmt"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
)

// WindowID is an opaque window handle. Zero is never a valid id.
type WindowID uint64

// State is the display state of a window.
type State int

const (
	StateNormal State = iota
	StateMinimized
	StateMaximized
	StateSnapped
)

var stateNames = [...]string{
	StateNormal:    "normal",
	StateMinimized: "minimized",
	StateMaximized: "maximized",
	StateSnapped:   "snapped",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ParseState converts a state name back to a State.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return StateNormal, fmt.Errorf("unknown window state %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	parsed, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Window is a copy of a registry record. Z and Focused are filled in when
// the copy is taken.
type Window struct {
	ID        WindowID
	Title     string
	Bounds    geom.Rect
	State     State
	Zone      snap.Zone // set when State is StateSnapped
	Z         int
	Focused   bool
	Resizable bool
	Movable   bool
	MinWidth  float64
	MinHeight float64
	// Restore is the geometry to return to when a maximized or snapped
	// window goes back to normal.
	Restore geom.Rect

	// minimum asked for by the opener; MinWidth/MinHeight also include the
	// registry minimum in effect
	ownMinWidth  float64
	ownMinHeight float64
}

// Visible reports whether the window is painted.
func (w *Window) Visible() bool {
	return w.State != StateMinimized
}

func (w *Window) applyMinimum(minWidth, minHeight float64) {
	w.MinWidth = max(w.ownMinWidth, minWidth)
	w.MinHeight = max(w.ownMinHeight, minHeight)
}

func (w *Window) fits(r geom.Rect) bool {
	return r.Width >= w.MinWidth && r.Height >= w.MinHeight
}

func (w *Window) clampSize(r geom.Rect) geom.Rect {
	if !(r.Width >= w.MinWidth) {
		r.Width = w.MinWidth
	}
	if !(r.Height >= w.MinHeight) {
		r.Height = w.MinHeight
	}
	return r
}

// Handle names the edge or corner grabbed by a resize gesture.
type Handle int

const (
	HandleLeft Handle = iota
	HandleRight
	HandleTop
	HandleBottom
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
)

var handleNames = [...]string{
	HandleLeft:        "left",
	HandleRight:       "right",
	HandleTop:         "top",
	HandleBottom:      "bottom",
	HandleTopLeft:     "top-left",
	HandleTopRight:    "top-right",
	HandleBottomLeft:  "bottom-left",
	HandleBottomRight: "bottom-right",
}

func (h Handle) String() string {
	if h >= 0 && int(h) < len(handleNames) {
		return handleNames[h]
	}
	return "unknown"
}

// ParseHandle converts a handle name back to a Handle.
func ParseHandle(s string) (Handle, error) {
	for i, name := range handleNames {
		if name == s {
			return Handle(i), nil
		}
	}
	return HandleLeft, fmt.Errorf("unknown resize handle %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(b []byte) error {
	parsed, err := ParseHandle(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (h Handle) left() bool {
	return h == HandleLeft || h == HandleTopLeft || h == HandleBottomLeft
}

func (h Handle) right() bool {
	return h == HandleRight || h == HandleTopRight || h == HandleBottomRight
}

func (h Handle) top() bool {
	return h == HandleTop || h == HandleTopLeft || h == HandleTopRight
}

func (h Handle) bottom() bool {
	return h == HandleBottom || h == HandleBottomLeft || h == HandleBottomRight
}
