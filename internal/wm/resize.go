package wm

import (
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
)

// Resize moves the grabbed edge or corner by delta. Left and top handles
// keep the opposite edge fixed. Sizes below the window minimum are clamped.
// Resizing a snapped window returns it to normal.
func (r *Registry) Resize(id WindowID, h Handle, delta geom.Point) error {
	return r.resize("resize", id, h, delta, false)
}

// ResizeStrict is Resize but rejects, rather than clamps, a result below the
// minimum size.
func (r *Registry) ResizeStrict(id WindowID, h Handle, delta geom.Point) error {
	return r.resize("resize-strict", id, h, delta, true)
}

func (r *Registry) resize(op string, id WindowID, h Handle, delta geom.Point, strict bool) error {
	w, ok := r.windows[id]
	if !ok {
		return opErr(op, id, ErrInvalidReference, "no such window")
	}
	if h < HandleLeft || h > HandleBottomRight {
		return opErr(op, id, ErrConstraintViolation, "unknown handle %d", int(h))
	}
	if !w.Resizable {
		return opErr(op, id, ErrConstraintViolation, "window is not resizable")
	}
	if r.drag != nil && r.drag.Window == id {
		return opErr(op, id, ErrConflictingOperation, "window is being dragged")
	}
	if w.State == StateMinimized || w.State == StateMaximized {
		return opErr(op, id, ErrConflictingOperation, "cannot resize a %s window", w.State)
	}

	b := w.Bounds
	width, height := b.Width, b.Height
	switch {
	case h.left():
		width -= delta.X
	case h.right():
		width += delta.X
	}
	switch {
	case h.top():
		height -= delta.Y
	case h.bottom():
		height += delta.Y
	}

	if strict && !(width >= w.MinWidth && height >= w.MinHeight) {
		return opErr(op, id, ErrConstraintViolation,
			"%gx%g is below the minimum %gx%g", width, height, w.MinWidth, w.MinHeight)
	}
	if !(width >= w.MinWidth) {
		width = w.MinWidth
	}
	if !(height >= w.MinHeight) {
		height = w.MinHeight
	}

	nb := geom.Rect{X: b.X, Y: b.Y, Width: width, Height: height}
	if h.left() {
		nb.X = b.Right() - width
	}
	if h.top() {
		nb.Y = b.Bottom() - height
	}

	if w.State == StateSnapped {
		w.State = StateNormal
		w.Zone = snap.ZoneNone
		w.Restore = geom.Rect{}
		r.revision++
		r.emitState(w)
	}
	r.setBounds(w, nb)
	return nil
}
