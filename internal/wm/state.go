package wm

import (
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
)

// SetState moves a window through its state machine:
//
//	normal <-> minimized
//	normal <-> maximized
//	snapped -> normal
//
// Any other transition is a conflicting operation. Setting the current state
// again is a no-op.
func (r *Registry) SetState(id WindowID, next State) error {
	w, ok := r.windows[id]
	if !ok {
		return opErr("set-state", id, ErrInvalidReference, "no such window")
	}
	if w.State == next {
		return nil
	}
	if r.drag != nil && r.drag.Window == id {
		return opErr("set-state", id, ErrConflictingOperation, "window is being dragged")
	}

	switch {
	case w.State == StateNormal && next == StateMinimized:
		r.minimize(w)
	case w.State == StateMinimized && next == StateNormal:
		w.State = StateNormal
		r.damage.MarkDirty(w.Bounds)
		r.revision++
		r.emitState(w)
	case w.State == StateNormal && next == StateMaximized:
		if !w.Resizable {
			return opErr("set-state", id, ErrConstraintViolation, "window is not resizable")
		}
		if !w.fits(r.workArea) {
			return opErr("set-state", id, ErrConstraintViolation,
				"work area %gx%g is below the window minimum %gx%g",
				r.workArea.Width, r.workArea.Height, w.MinWidth, w.MinHeight)
		}
		w.Restore = w.Bounds
		w.State = StateMaximized
		r.setBounds(w, r.workArea)
		r.revision++
		r.emitState(w)
	case (w.State == StateMaximized || w.State == StateSnapped) && next == StateNormal:
		restore := w.Restore
		w.State = StateNormal
		w.Zone = snap.ZoneNone
		w.Restore = geom.Rect{}
		if !restore.Empty() {
			r.setBounds(w, w.clampSize(restore))
		}
		r.revision++
		r.emitState(w)
	default:
		return opErr("set-state", id, ErrConflictingOperation, "cannot go from %s to %s", w.State, next)
	}
	return nil
}

func (r *Registry) minimize(w *Window) {
	r.damage.MarkDirty(w.Bounds)
	w.State = StateMinimized
	r.revision++
	r.emitState(w)
	if focused, ok := r.stack.Focused(); ok && focused == w.ID {
		r.focusFallback()
	}
}

func (r *Registry) emitState(w *Window) {
	r.emit(Event{Kind: EventStateChanged, Window: w.ID, Bounds: w.Bounds, State: w.State, Zone: w.Zone})
}

// Snap tiles a normal or snapped window into zone without a drag gesture.
// snap.ZoneNone returns a snapped window to normal.
func (r *Registry) Snap(id WindowID, zone snap.Zone) error {
	w, ok := r.windows[id]
	if !ok {
		return opErr("snap", id, ErrInvalidReference, "no such window")
	}
	if zone == snap.ZoneNone {
		if w.State != StateSnapped {
			return nil
		}
		return r.SetState(id, StateNormal)
	}
	if r.drag != nil && r.drag.Window == id {
		return opErr("snap", id, ErrConflictingOperation, "window is being dragged")
	}
	if w.State != StateNormal && w.State != StateSnapped {
		return opErr("snap", id, ErrConflictingOperation, "cannot snap a %s window", w.State)
	}
	if !w.Resizable {
		return opErr("snap", id, ErrConstraintViolation, "window is not resizable")
	}
	target := zone.Target(r.workArea)
	if !w.fits(target) {
		return opErr("snap", id, ErrConstraintViolation,
			"zone %s is %gx%g, below the window minimum %gx%g",
			zone, target.Width, target.Height, w.MinWidth, w.MinHeight)
	}
	restore := w.Bounds
	if w.State == StateSnapped {
		restore = w.Restore
	}
	r.applySnap(w, zone, target, restore)
	return nil
}

func (r *Registry) applySnap(w *Window, zone snap.Zone, target, restore geom.Rect) {
	w.State = StateSnapped
	w.Zone = zone
	w.Restore = restore
	r.setBounds(w, target)
	r.revision++
	r.emitState(w)
}

// Move places a normal window's origin at p.
func (r *Registry) Move(id WindowID, p geom.Point) error {
	w, ok := r.windows[id]
	if !ok {
		return opErr("move", id, ErrInvalidReference, "no such window")
	}
	if !w.Movable {
		return opErr("move", id, ErrConstraintViolation, "window is not movable")
	}
	if r.drag != nil && r.drag.Window == id {
		return opErr("move", id, ErrConflictingOperation, "window is being dragged")
	}
	if w.State != StateNormal && w.State != StateMinimized {
		return opErr("move", id, ErrConflictingOperation, "cannot move a %s window", w.State)
	}
	r.setBounds(w, w.Bounds.WithOrigin(p))
	return nil
}

// SetScreenBounds changes the screen rectangle. Maximized and snapped windows
// are re-laid out against the new work area; any that no longer fit their
// zone fall back to normal.
func (r *Registry) SetScreenBounds(screen geom.Rect) {
	opts := r.opts
	opts.Screen = screen
	r.Configure(opts)
}

// Configure replaces the registry options, e.g. after a config reload.
func (r *Registry) Configure(opts Options) {
	opts = sanitize(opts)
	oldScreen := r.opts.Screen
	r.opts = opts
	r.workArea = computeWorkArea(opts.Screen, opts.Padding)

	if r.drag != nil && r.drag.HasCandidate {
		r.damage.MarkDirty(r.drag.Candidate.Target)
		r.drag.Candidate, r.drag.HasCandidate = snap.SnapZone{}, false
	}

	for _, id := range r.stack.Order() {
		w := r.windows[id]
		w.applyMinimum(opts.MinWidth, opts.MinHeight)
		r.relayout(w)
	}

	if oldScreen != opts.Screen {
		r.damage.MarkDirty(geom.Union(oldScreen, opts.Screen))
	}
	r.revision++
}

func (r *Registry) relayout(w *Window) {
	var target geom.Rect
	switch w.State {
	case StateMaximized:
		target = r.workArea
	case StateSnapped:
		target = w.Zone.Target(r.workArea)
	default:
		if !w.fits(w.Bounds) {
			r.setBounds(w, w.clampSize(w.Bounds))
		}
		return
	}
	if w.fits(target) {
		r.setBounds(w, target)
		return
	}
	restore := w.Restore
	w.State = StateNormal
	w.Zone = snap.ZoneNone
	w.Restore = geom.Rect{}
	if restore.Empty() {
		restore = w.Bounds
	}
	r.setBounds(w, w.clampSize(restore))
	r.emitState(w)
}
