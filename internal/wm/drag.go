package wm

import (
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
)

// DragSession is the state of the active move gesture.
type DragSession struct {
	Window WindowID
	// Offset is the pointer position relative to the window origin at
	// the time the drag began.
	Offset  geom.Point
	Pointer geom.Point
	// Candidate is the zone the window would snap to if dropped now.
	Candidate    snap.SnapZone
	HasCandidate bool

	startBounds  geom.Rect
	startState   State
	startZone    snap.Zone
	startRestore geom.Rect
}

// Drag returns a copy of the active drag session.
func (r *Registry) Drag() (DragSession, bool) {
	if r.drag == nil {
		return DragSession{}, false
	}
	return *r.drag, true
}

// BeginDrag starts moving window id with the pointer at p. Only one drag may
// be active at a time. A snapped or maximized window is first restored to
// its normal size under the pointer.
func (r *Registry) BeginDrag(id WindowID, p geom.Point) error {
	if r.drag != nil {
		return opErr("begin-drag", id, ErrConflictingOperation, "window %d is already being dragged", r.drag.Window)
	}
	w, ok := r.windows[id]
	if !ok {
		return opErr("begin-drag", id, ErrInvalidReference, "no such window")
	}
	if !w.Movable {
		return opErr("begin-drag", id, ErrConstraintViolation, "window is not movable")
	}
	if w.State == StateMinimized {
		return opErr("begin-drag", id, ErrConflictingOperation, "window is minimized")
	}

	s := &DragSession{
		Window:       id,
		Pointer:      p,
		startBounds:  w.Bounds,
		startState:   w.State,
		startZone:    w.Zone,
		startRestore: w.Restore,
	}

	if w.State == StateSnapped || w.State == StateMaximized {
		r.unsnapUnderPointer(w, p)
	}
	s.Offset = p.Sub(w.Bounds.Origin())
	r.drag = s
	r.focus(id)
	return nil
}

// unsnapUnderPointer shrinks a tiled window back to its restore size,
// keeping the grab point at the same relative horizontal position.
func (r *Registry) unsnapUnderPointer(w *Window, p geom.Point) {
	tiled := w.Bounds
	size := w.clampSize(w.Restore)
	if w.Restore.Empty() {
		size = w.clampSize(geom.Rect{Width: r.opts.DefaultWidth, Height: r.opts.DefaultHeight})
	}

	fx := 0.5
	if tiled.Width > 0 {
		fx = (p.X - tiled.X) / tiled.Width
	}
	dy := p.Y - tiled.Y
	if dy > size.Height {
		dy = size.Height
	}
	if dy < 0 {
		dy = 0
	}
	nb := geom.Rect{
		X:      p.X - fx*size.Width,
		Y:      p.Y - dy,
		Width:  size.Width,
		Height: size.Height,
	}

	prev := w.State
	w.State = StateNormal
	w.Zone = snap.ZoneNone
	w.Restore = geom.Rect{}
	r.setBounds(w, nb)
	if prev != w.State {
		r.emit(Event{Kind: EventStateChanged, Window: w.ID, Bounds: w.Bounds, State: w.State})
	}
}

// UpdateDrag moves the dragged window so the grab point follows p and
// refreshes the snap candidate. The candidate is only previewed here.
func (r *Registry) UpdateDrag(p geom.Point) error {
	s := r.drag
	if s == nil {
		return opErr("update-drag", 0, ErrConflictingOperation, "no drag in progress")
	}
	w := r.windows[s.Window]
	s.Pointer = p
	r.setBounds(w, w.Bounds.WithOrigin(p.Sub(s.Offset)))

	cand, ok := r.detect(w, p)
	if ok == s.HasCandidate && cand.Zone == s.Candidate.Zone {
		return nil
	}
	if s.HasCandidate {
		r.damage.MarkDirty(s.Candidate.Target)
	}
	if ok {
		r.damage.MarkDirty(cand.Target)
	}
	s.Candidate, s.HasCandidate = cand, ok
	r.revision++
	return nil
}

// detect finds the snap zone under p, skipping targets too small for w.
func (r *Registry) detect(w *Window, p geom.Point) (snap.SnapZone, bool) {
	if r.opts.SnapMargin <= 0 {
		return snap.SnapZone{}, false
	}
	sz, ok := snap.Detect(p, r.workArea, r.opts.SnapMargin)
	if !ok || !w.fits(sz.Target) {
		return snap.SnapZone{}, false
	}
	return sz, true
}

// EndDrag commits the gesture. With an active candidate the window snaps to
// its target; otherwise it stays where it was dropped in the normal state.
func (r *Registry) EndDrag() error {
	s := r.drag
	if s == nil {
		return opErr("end-drag", 0, ErrConflictingOperation, "no drag in progress")
	}
	r.drag = nil
	w := r.windows[s.Window]
	if s.HasCandidate {
		r.damage.MarkDirty(s.Candidate.Target)
	}
	if !s.HasCandidate {
		r.revision++
		return nil
	}

	restore := s.startBounds
	if s.startState != StateNormal {
		restore = s.startRestore
	}
	r.applySnap(w, s.Candidate.Zone, s.Candidate.Target, restore)
	return nil
}

// CancelDrag aborts the gesture and puts the window back exactly as it was
// before BeginDrag.
func (r *Registry) CancelDrag() error {
	s := r.drag
	if s == nil {
		return opErr("cancel-drag", 0, ErrConflictingOperation, "no drag in progress")
	}
	r.drag = nil
	w := r.windows[s.Window]
	if s.HasCandidate {
		r.damage.MarkDirty(s.Candidate.Target)
	}
	prev := w.State
	w.State = s.startState
	w.Zone = s.startZone
	w.Restore = s.startRestore
	r.setBounds(w, s.startBounds)
	if prev != w.State {
		r.emit(Event{Kind: EventStateChanged, Window: w.ID, Bounds: w.Bounds, State: w.State, Zone: w.Zone})
	}
	r.revision++
	return nil
}

// discardDrag drops the session of a window that is going away.
func (r *Registry) discardDrag() {
	if r.drag.HasCandidate {
		r.damage.MarkDirty(r.drag.Candidate.Target)
	}
	r.drag = nil
}
