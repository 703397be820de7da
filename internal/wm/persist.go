package wm

import (
	"sort"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
)

// Record is the persisted form of one window.
type Record struct {
	ID        WindowID  `json:"id"`
	Title     string    `json:"title,omitempty"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	W         float64   `json:"w"`
	H         float64   `json:"h"`
	State     State     `json:"state"`
	Zone      snap.Zone `json:"zone,omitempty"`
	ZIndex    int       `json:"zIndex"`
	// MinWidth and MinHeight are the minimum requested at open. The
	// registry minimum in effect at restore time still applies.
	MinWidth  float64   `json:"minWidth,omitempty"`
	MinHeight float64   `json:"minHeight,omitempty"`
	Restore   geom.Rect `json:"restore"`
	Focused   bool      `json:"focused,omitempty"`
	Resizable bool      `json:"resizable"`
	Movable   bool      `json:"movable"`
}

// Snapshot returns one record per window, bottom of the stack first.
func (r *Registry) Snapshot() []Record {
	wins := r.Windows()
	out := make([]Record, 0, len(wins))
	for _, w := range wins {
		out = append(out, Record{
			ID:        w.ID,
			Title:     w.Title,
			X:         w.Bounds.X,
			Y:         w.Bounds.Y,
			W:         w.Bounds.Width,
			H:         w.Bounds.Height,
			State:     w.State,
			Zone:      w.Zone,
			ZIndex:    w.Z,
			MinWidth:  w.ownMinWidth,
			MinHeight: w.ownMinHeight,
			Restore:   w.Restore,
			Focused:   w.Focused,
			Resizable: w.Resizable,
			Movable:   w.Movable,
		})
	}
	return out
}

// Restore replaces every window with records. Z indices are taken as a
// relative order and renumbered densely; ties break by id. Geometry is
// clamped to minimum sizes and tiled windows are laid out against the
// current work area. On error the registry is unchanged.
func (r *Registry) Restore(records []Record) error {
	if r.drag != nil {
		return opErr("restore", 0, ErrConflictingOperation, "a drag is in progress")
	}
	seen := make(map[WindowID]bool, len(records))
	for _, rec := range records {
		if rec.ID == 0 {
			return opErr("restore", 0, ErrInvalidReference, "record with id 0")
		}
		if seen[rec.ID] {
			return opErr("restore", rec.ID, ErrInvalidReference, "duplicate window id")
		}
		seen[rec.ID] = true
		if rec.State < StateNormal || rec.State > StateSnapped {
			return opErr("restore", rec.ID, ErrConstraintViolation, "unknown state %d", int(rec.State))
		}
		if rec.State == StateSnapped && rec.Zone == snap.ZoneNone {
			return opErr("restore", rec.ID, ErrConstraintViolation, "snapped window without a zone")
		}
	}

	sorted := append([]Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ZIndex != sorted[j].ZIndex {
			return sorted[i].ZIndex < sorted[j].ZIndex
		}
		return sorted[i].ID < sorted[j].ID
	})

	old := r.windows
	r.windows = make(map[WindowID]*Window, len(sorted))
	r.stack.Reset()
	r.nextID = 1
	for _, w := range old {
		if w.Visible() {
			r.damage.MarkDirty(w.Bounds)
		}
	}

	var focusID WindowID
	for _, rec := range sorted {
		w := &Window{
			ID:        rec.ID,
			Title:     rec.Title,
			State:     rec.State,
			Resizable:    rec.Resizable,
			Movable:      rec.Movable,
			Restore:      rec.Restore,
			ownMinWidth:  rec.MinWidth,
			ownMinHeight: rec.MinHeight,
		}
		w.applyMinimum(r.opts.MinWidth, r.opts.MinHeight)
		if w.State == StateSnapped {
			w.Zone = rec.Zone
		}
		w.Bounds = w.clampSize(geom.Rect{X: rec.X, Y: rec.Y, Width: rec.W, Height: rec.H})
		r.windows[w.ID] = w
		r.stack.Push(w.ID)
		r.relayout(w)
		if rec.Focused && w.Visible() {
			focusID = w.ID
		}
		if w.ID >= r.nextID {
			r.nextID = w.ID + 1
		}
	}

	if focusID != 0 {
		_ = r.stack.SetFocus(focusID)
	} else {
		r.focusFallback()
	}
	r.damage.MarkDirty(r.opts.Screen)
	r.revision++
	return nil
}
