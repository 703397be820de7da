package wm

import (
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
)

// EventKind identifies what changed.
type EventKind int

const (
	EventOpened EventKind = iota
	EventClosed
	EventFocused
	EventMoved
	EventResized
	EventStateChanged
)

var eventNames = [...]string{
	EventOpened:       "opened",
	EventClosed:       "closed",
	EventFocused:      "focused",
	EventMoved:        "moved",
	EventResized:      "resized",
	EventStateChanged: "state_changed",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event reports one change to a window. Bounds, State and Zone describe the
// window after the change.
type Event struct {
	Kind   EventKind `json:"kind"`
	Window WindowID  `json:"window"`
	Bounds geom.Rect `json:"bounds"`
	State  State     `json:"state"`
	Zone   snap.Zone `json:"zone,omitempty"`
}

// Subscribe registers fn for every event. Listeners run synchronously inside
// the mutating call and must not call back into the registry. The returned
// func removes the listener.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	key := r.nextListener
	r.nextListener++
	r.listeners[key] = fn
	return func() { delete(r.listeners, key) }
}

func (r *Registry) emit(ev Event) {
	for _, fn := range r.listeners {
		fn(ev)
	}
}
