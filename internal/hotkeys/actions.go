package hotkeys

import (
	"errors"
	"fmt"

	"github.com/1broseidon/snapwm/internal/config"
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

// ErrNoFocusedWindow is returned by window actions when nothing has focus.
var ErrNoFocusedWindow = errors.New("no focused window")

// Action mutates the registry in response to a key press.
type Action func(r *wm.Registry) error

var snapActions = map[string]snap.Zone{
	config.ActionSnapLeft:        snap.ZoneLeft,
	config.ActionSnapRight:       snap.ZoneRight,
	config.ActionSnapTop:         snap.ZoneTop,
	config.ActionSnapBottom:      snap.ZoneBottom,
	config.ActionSnapTopLeft:     snap.ZoneTopLeft,
	config.ActionSnapTopRight:    snap.ZoneTopRight,
	config.ActionSnapBottomLeft:  snap.ZoneBottomLeft,
	config.ActionSnapBottomRight: snap.ZoneBottomRight,
}

// Lookup returns the action registered under name.
func Lookup(name string) (Action, error) {
	if zone, ok := snapActions[name]; ok {
		return onFocused(func(r *wm.Registry, w wm.Window) error {
			return snapFocused(r, w, zone)
		}), nil
	}

	switch name {
	case config.ActionMaximize:
		return onFocused(toggleMaximize), nil
	case config.ActionMinimize:
		return onFocused(func(r *wm.Registry, w wm.Window) error {
			return r.SetState(w.ID, wm.StateMinimized)
		}), nil
	case config.ActionRestore:
		return onFocused(func(r *wm.Registry, w wm.Window) error {
			if w.State == wm.StateNormal {
				return nil
			}
			return r.SetState(w.ID, wm.StateNormal)
		}), nil
	case config.ActionClose:
		return onFocused(func(r *wm.Registry, w wm.Window) error {
			return r.Close(w.ID)
		}), nil
	case config.ActionCycleFocus:
		return func(r *wm.Registry) error {
			r.CycleFocus()
			return nil
		}, nil
	}
	return nil, fmt.Errorf("unknown hotkey action %q", name)
}

func onFocused(fn func(r *wm.Registry, w wm.Window) error) Action {
	return func(r *wm.Registry) error {
		id, ok := r.Focused()
		if !ok {
			return ErrNoFocusedWindow
		}
		w, err := r.Window(id)
		if err != nil {
			return err
		}
		return fn(r, w)
	}
}

// snapFocused snaps w to zone. Pressing the key for the zone w already
// occupies puts it back to normal. A maximized window is restored first.
func snapFocused(r *wm.Registry, w wm.Window, zone snap.Zone) error {
	if w.State == wm.StateSnapped && w.Zone == zone {
		return r.Snap(w.ID, snap.ZoneNone)
	}
	if w.State == wm.StateMaximized {
		if err := checkTarget(w, zone.Target(r.WorkArea())); err != nil {
			return err
		}
		if err := r.SetState(w.ID, wm.StateNormal); err != nil {
			return err
		}
	}
	return r.Snap(w.ID, zone)
}

func toggleMaximize(r *wm.Registry, w wm.Window) error {
	switch w.State {
	case wm.StateMaximized:
		return r.SetState(w.ID, wm.StateNormal)
	case wm.StateSnapped:
		if err := checkTarget(w, r.WorkArea()); err != nil {
			return err
		}
		if err := r.SetState(w.ID, wm.StateNormal); err != nil {
			return err
		}
	}
	return r.SetState(w.ID, wm.StateMaximized)
}

// checkTarget rejects a two-step transition up front so a refused second
// step never leaves w half way in normal state.
func checkTarget(w wm.Window, target geom.Rect) error {
	if !w.Resizable {
		return fmt.Errorf("window %d is not resizable: %w", w.ID, wm.ErrConstraintViolation)
	}
	if target.Width < w.MinWidth || target.Height < w.MinHeight {
		return fmt.Errorf("window %d: %gx%g is below the minimum %gx%g: %w",
			w.ID, target.Width, target.Height, w.MinWidth, w.MinHeight, wm.ErrConstraintViolation)
	}
	return nil
}
