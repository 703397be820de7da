package wm

import (
	"sort"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/zorder"
)

// DamageSink receives every screen region a registry mutation invalidates.
type DamageSink interface {
	MarkDirty(r geom.Rect)
}

type discardSink struct{}

func (discardSink) MarkDirty(geom.Rect) {}

// Insets reserve space along the screen edges, e.g. for a taskbar.
type Insets struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Options configure a Registry.
type Options struct {
	// Screen is the full screen area in screen coordinates.
	Screen geom.Rect
	// Padding is removed from Screen to get the work area that snapping
	// and maximizing fill.
	Padding Insets
	// SnapMargin is the width of the edge activation bands. Zero disables
	// drag snapping.
	SnapMargin float64

	DefaultWidth   float64
	DefaultHeight  float64
	MinWidth       float64
	MinHeight      float64
	TitleBarHeight float64
}

// DefaultOptions returns options for a 1920x1080 screen with a 20px snap band.
func DefaultOptions() Options {
	return Options{
		Screen:         geom.Rect{Width: 1920, Height: 1080},
		SnapMargin:     20,
		DefaultWidth:   800,
		DefaultHeight:  600,
		MinWidth:       200,
		MinHeight:      150,
		TitleBarHeight: 30,
	}
}

// Registry owns the open windows. See the package doc for the threading
// contract.
type Registry struct {
	opts     Options
	workArea geom.Rect
	windows  map[WindowID]*Window
	stack    *zorder.Stack[WindowID]
	damage   DamageSink
	nextID   WindowID
	drag     *DragSession

	listeners    map[int]func(Event)
	nextListener int
	revision     uint64
}

// NewRegistry returns an empty registry. A nil sink discards damage.
func NewRegistry(opts Options, sink DamageSink) *Registry {
	if sink == nil {
		sink = discardSink{}
	}
	r := &Registry{
		windows:   make(map[WindowID]*Window),
		stack:     zorder.New[WindowID](),
		damage:    sink,
		nextID:    1,
		listeners: make(map[int]func(Event)),
	}
	r.opts = sanitize(opts)
	r.workArea = computeWorkArea(r.opts.Screen, r.opts.Padding)
	return r
}

func sanitize(opts Options) Options {
	if opts.SnapMargin < 0 {
		opts.SnapMargin = 0
	}
	if opts.MinWidth < 1 {
		opts.MinWidth = 1
	}
	if opts.MinHeight < 1 {
		opts.MinHeight = 1
	}
	if opts.DefaultWidth < opts.MinWidth {
		opts.DefaultWidth = opts.MinWidth
	}
	if opts.DefaultHeight < opts.MinHeight {
		opts.DefaultHeight = opts.MinHeight
	}
	if opts.TitleBarHeight < 0 {
		opts.TitleBarHeight = 0
	}
	return opts
}

func computeWorkArea(screen geom.Rect, p Insets) geom.Rect {
	return screen.Inset(p.Top, p.Right, p.Bottom, p.Left)
}

// Options returns the active options.
func (r *Registry) Options() Options { return r.opts }

// Screen returns the full screen bounds.
func (r *Registry) Screen() geom.Rect { return r.opts.Screen }

// WorkArea returns the screen minus padding.
func (r *Registry) WorkArea() geom.Rect { return r.workArea }

// Revision increases on every successful mutation.
func (r *Registry) Revision() uint64 { return r.revision }

// OpenOptions describe a window to open.
type OpenOptions struct {
	Title string
	// Bounds with a zero size selects the default size centered in the
	// work area.
	Bounds geom.Rect
	// MinWidth and MinHeight override the registry minimum when larger.
	MinWidth  float64
	MinHeight float64
	FixedSize bool
	Pinned    bool // not movable
}

// Open adds a window on top of the stack and focuses it.
func (r *Registry) Open(o OpenOptions) (WindowID, error) {
	if r.nextID == 0 {
		return 0, opErr("open", 0, ErrResourceExhausted, "window id space exhausted")
	}
	id := r.nextID
	r.nextID++

	w := &Window{
		ID:        id,
		Title:     o.Title,
		State:     StateNormal,
		Resizable:    !o.FixedSize,
		Movable:      !o.Pinned,
		ownMinWidth:  o.MinWidth,
		ownMinHeight: o.MinHeight,
	}
	w.applyMinimum(r.opts.MinWidth, r.opts.MinHeight)
	bounds := o.Bounds
	if bounds.Empty() {
		bounds = geom.CenteredIn(r.workArea, r.opts.DefaultWidth, r.opts.DefaultHeight)
	}
	w.Bounds = w.clampSize(bounds)

	r.windows[id] = w
	r.stack.Push(id)
	r.damage.MarkDirty(w.Bounds)
	r.revision++
	r.emit(Event{Kind: EventOpened, Window: id, Bounds: w.Bounds, State: w.State})
	r.focus(id)
	return id, nil
}

// Close removes a window. If it held focus, focus passes to the topmost
// remaining visible window. Closing the window being dragged ends the drag.
func (r *Registry) Close(id WindowID) error {
	w, ok := r.windows[id]
	if !ok {
		return opErr("close", id, ErrInvalidReference, "no such window")
	}
	if r.drag != nil && r.drag.Window == id {
		r.discardDrag()
	}

	focused, hasFocus := r.stack.Focused()
	wasFocused := hasFocus && focused == id

	_ = r.stack.Remove(id)
	delete(r.windows, id)
	r.revision++
	if w.Visible() {
		r.damage.MarkDirty(w.Bounds)
	}
	r.emit(Event{Kind: EventClosed, Window: id, Bounds: w.Bounds, State: w.State})

	if wasFocused {
		r.focusFallback()
	}
	return nil
}

// Focus gives id the focus and raises it to the top.
func (r *Registry) Focus(id WindowID) error {
	w, ok := r.windows[id]
	if !ok {
		return opErr("focus", id, ErrInvalidReference, "no such window")
	}
	if !w.Visible() {
		return opErr("focus", id, ErrConflictingOperation, "window is minimized; activate it instead")
	}
	r.focus(id)
	return nil
}

// Activate restores a minimized window and focuses it, as a taskbar click does.
func (r *Registry) Activate(id WindowID) error {
	w, ok := r.windows[id]
	if !ok {
		return opErr("activate", id, ErrInvalidReference, "no such window")
	}
	if w.State == StateMinimized {
		if err := r.SetState(id, StateNormal); err != nil {
			return err
		}
	}
	r.focus(id)
	return nil
}

// CycleFocus raises and focuses the lowest visible window, rotating through
// the stack the way alt-tab does. It reports false when no window is visible.
func (r *Registry) CycleFocus() (WindowID, bool) {
	for _, id := range r.stack.Order() {
		if r.windows[id].Visible() {
			r.focus(id)
			return id, true
		}
	}
	return 0, false
}

func (r *Registry) focus(id WindowID) {
	w := r.windows[id]
	prev, hadFocus := r.stack.Focused()

	oldRank := r.stack.Index(id)
	above := r.stack.Order()[oldRank+1:]
	_ = r.stack.Raise(id)
	_ = r.stack.SetFocus(id)

	if hadFocus && prev != id {
		if pw, ok := r.windows[prev]; ok && pw.Visible() {
			r.damage.MarkDirty(r.titleBar(pw))
		}
	}
	if w.Visible() {
		r.damage.MarkDirty(r.titleBar(w))
		// Raising uncovers whatever the windows above were hiding.
		for _, other := range above {
			if ow := r.windows[other]; ow.Visible() && geom.Intersects(ow.Bounds, w.Bounds) {
				r.damage.MarkDirty(w.Bounds)
				break
			}
		}
	}

	if !hadFocus || prev != id || len(above) > 0 {
		r.revision++
		r.emit(Event{Kind: EventFocused, Window: id, Bounds: w.Bounds, State: w.State})
	}
}

// focusFallback moves focus to the topmost visible window without changing
// the stacking order, or clears it.
func (r *Registry) focusFallback() {
	next, ok := r.stack.TopWhere(func(id WindowID) bool { return r.windows[id].Visible() })
	if !ok {
		r.stack.ClearFocus()
		r.revision++
		return
	}
	_ = r.stack.SetFocus(next)
	w := r.windows[next]
	r.damage.MarkDirty(r.titleBar(w))
	r.revision++
	r.emit(Event{Kind: EventFocused, Window: next, Bounds: w.Bounds, State: w.State})
}

func (r *Registry) titleBar(w *Window) geom.Rect {
	tb := w.Bounds
	if r.opts.TitleBarHeight > 0 && r.opts.TitleBarHeight < tb.Height {
		tb.Height = r.opts.TitleBarHeight
	}
	return tb
}

// HitTest returns the topmost visible window containing p.
func (r *Registry) HitTest(p geom.Point) (WindowID, bool) {
	return r.stack.TopWhere(func(id WindowID) bool {
		w := r.windows[id]
		return w.Visible() && geom.Contains(w.Bounds, p)
	})
}

// Focused returns the focused window id.
func (r *Registry) Focused() (WindowID, bool) {
	return r.stack.Focused()
}

// Count returns the number of open windows.
func (r *Registry) Count() int { return len(r.windows) }

// Window returns a copy of one window.
func (r *Registry) Window(id WindowID) (Window, error) {
	w, ok := r.windows[id]
	if !ok {
		return Window{}, opErr("lookup", id, ErrInvalidReference, "no such window")
	}
	return r.view(w), nil
}

// Windows returns copies of every window in paint order, bottom first.
func (r *Registry) Windows() []Window {
	order := r.stack.Order()
	out := make([]Window, 0, len(order))
	for _, id := range order {
		out = append(out, r.view(r.windows[id]))
	}
	return out
}

// TitleEntry is one taskbar button.
type TitleEntry struct {
	ID      WindowID
	Title   string
	State   State
	Focused bool
}

// Titles lists windows in the order they were opened, for taskbars and task
// switchers.
func (r *Registry) Titles() []TitleEntry {
	focused, hasFocus := r.stack.Focused()
	out := make([]TitleEntry, 0, len(r.windows))
	for id, w := range r.windows {
		out = append(out, TitleEntry{
			ID:      id,
			Title:   w.Title,
			State:   w.State,
			Focused: hasFocus && focused == id,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetTitle renames a window and repaints its title bar.
func (r *Registry) SetTitle(id WindowID, title string) error {
	w, ok := r.windows[id]
	if !ok {
		return opErr("set-title", id, ErrInvalidReference, "no such window")
	}
	if w.Title == title {
		return nil
	}
	w.Title = title
	if w.Visible() {
		r.damage.MarkDirty(r.titleBar(w))
	}
	r.revision++
	return nil
}

func (r *Registry) view(w *Window) Window {
	out := *w
	out.Z = r.stack.Index(w.ID)
	focused, ok := r.stack.Focused()
	out.Focused = ok && focused == w.ID
	return out
}

// setBounds applies new geometry and reports old ∪ new as damage.
func (r *Registry) setBounds(w *Window, nb geom.Rect) {
	old := w.Bounds
	if old == nb {
		return
	}
	w.Bounds = nb
	if w.Visible() {
		r.damage.MarkDirty(geom.Union(old, nb))
	}
	r.revision++

	kind := EventMoved
	if old.Width != nb.Width || old.Height != nb.Height {
		kind = EventResized
	}
	r.emit(Event{Kind: kind, Window: w.ID, Bounds: nb, State: w.State, Zone: w.Zone})
}
