package mcp

import (
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/palette"
	"github.com/1broseidon/snapwm/internal/snap"
)

// Empty is the input for tools that take no arguments.
type Empty struct{}

// WindowRef names a single window.
type WindowRef struct {
	ID uint64 `json:"id" jsonschema:"required,Window id as returned by list_windows or open_window"`
}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	WindowCount int       `json:"window_count"`
	FocusedID   uint64    `json:"focused_id,omitempty"`
	Dragging    bool      `json:"dragging"`
	Revision    uint64    `json:"revision"`
	Screen      geom.Rect `json:"screen"`
	WorkArea    geom.Rect `json:"work_area"`
}

// WindowOutput describes one managed window. State and zone are names so
// the inferred output schema matches what is sent.
type WindowOutput struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Bounds    geom.Rect `json:"bounds"`
	State     string    `json:"state"`
	Zone      string    `json:"zone,omitempty"`
	Z         int       `json:"z"`
	Focused   bool      `json:"focused,omitempty"`
	Resizable bool      `json:"resizable"`
	Movable   bool      `json:"movable"`
}

func newWindowOutput(w ipc.WindowInfo) WindowOutput {
	out := WindowOutput{
		ID:        w.ID,
		Title:     w.Title,
		Bounds:    w.Bounds,
		State:     w.State.String(),
		Z:         w.Z,
		Focused:   w.Focused,
		Resizable: w.Resizable,
		Movable:   w.Movable,
	}
	if w.Zone != snap.ZoneNone {
		out.Zone = w.Zone.String()
	}
	return out
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows  []WindowOutput `json:"windows"`
	Screen   geom.Rect      `json:"screen"`
	WorkArea geom.Rect      `json:"work_area"`
	Revision uint64         `json:"revision"`
}

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	Title     string  `json:"title,omitempty" jsonschema:"Window title"`
	X         float64 `json:"x,omitempty" jsonschema:"Left edge in screen pixels. Ignored unless width and height are set."`
	Y         float64 `json:"y,omitempty" jsonschema:"Top edge in screen pixels. Ignored unless width and height are set."`
	Width     float64 `json:"width,omitempty" jsonschema:"Width in pixels (default: configured default width, centered in the work area)"`
	Height    float64 `json:"height,omitempty" jsonschema:"Height in pixels (default: configured default height, centered in the work area)"`
	MinWidth  float64 `json:"min_width,omitempty" jsonschema:"Minimum width; defaults to the configured minimum"`
	MinHeight float64 `json:"min_height,omitempty" jsonschema:"Minimum height; defaults to the configured minimum"`
	FixedSize bool    `json:"fixed_size,omitempty" jsonschema:"When true the window cannot be resized"`
	Pinned    bool    `json:"pinned,omitempty" jsonschema:"When true the window cannot be moved"`
}

// OpenWindowOutput is the output for the open_window tool.
type OpenWindowOutput struct {
	ID uint64 `json:"id"`
}

// OKOutput acknowledges a mutating tool.
type OKOutput struct {
	OK bool `json:"ok"`
}

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	ID   uint64 `json:"id" jsonschema:"required,Window id"`
	Zone string `json:"zone" jsonschema:"required,One of left, right, top, bottom, top-left, top-right, bottom-left, bottom-right"`
}

// SetStateInput is the input for the set_window_state tool.
type SetStateInput struct {
	ID    uint64 `json:"id" jsonschema:"required,Window id"`
	State string `json:"state" jsonschema:"required,One of normal, minimized, maximized"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	ID uint64  `json:"id" jsonschema:"required,Window id"`
	X  float64 `json:"x" jsonschema:"required,New left edge"`
	Y  float64 `json:"y" jsonschema:"required,New top edge"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	ID     uint64  `json:"id" jsonschema:"required,Window id"`
	Handle string  `json:"handle" jsonschema:"required,Edge or corner being dragged: left, right, top, bottom, top-left, top-right, bottom-left, bottom-right"`
	DX     float64 `json:"dx,omitempty" jsonschema:"Horizontal pointer delta in pixels"`
	DY     float64 `json:"dy,omitempty" jsonschema:"Vertical pointer delta in pixels"`
	Strict bool    `json:"strict,omitempty" jsonschema:"When true a resize that would violate the minimum size fails instead of clamping"`
}

// SetTitleInput is the input for the set_title tool.
type SetTitleInput struct {
	ID    uint64 `json:"id" jsonschema:"required,Window id"`
	Title string `json:"title" jsonschema:"required,New title"`
}

// FocusOutput reports which window received focus.
type FocusOutput struct {
	Found bool   `json:"found"`
	ID    uint64 `json:"id,omitempty"`
}

// PointInput is a screen position.
type PointInput struct {
	X float64 `json:"x" jsonschema:"required,Pointer x in screen pixels"`
	Y float64 `json:"y" jsonschema:"required,Pointer y in screen pixels"`
}

// HitTestOutput is the output for the hit_test tool.
type HitTestOutput struct {
	Found bool   `json:"found"`
	ID    uint64 `json:"id,omitempty"`
}

// DragWindowInput is the input for the drag_window tool.
type DragWindowInput struct {
	ID   uint64       `json:"id" jsonschema:"required,Window to drag"`
	Path []PointInput `json:"path" jsonschema:"required,Pointer positions; the first grabs the window and the last releases it"`
}

// DragWindowOutput is the output for the drag_window tool.
type DragWindowOutput struct {
	Bounds  geom.Rect `json:"bounds"`
	Snapped bool      `json:"snapped"`
	Zone    string    `json:"zone,omitempty"`
}

// FindWindowsInput is the input for the find_windows tool.
type FindWindowsInput struct {
	Query string `json:"query" jsonschema:"required,Fuzzy title query"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of matches (default: all)"`
}

// FindWindowsOutput is the output for the find_windows tool.
type FindWindowsOutput struct {
	Matches []palette.Match `json:"matches"`
}

// DamageOutput is the output for the drain_damage tool.
type DamageOutput struct {
	Seq      uint64      `json:"seq"`
	Revision uint64      `json:"revision"`
	Rects    []geom.Rect `json:"rects"`
}

// SessionInput names a saved session.
type SessionInput struct {
	Name string `json:"name,omitempty" jsonschema:"Session name (default: the autosave session)"`
}

// SessionOutput is the output for the save_session and load_session tools.
type SessionOutput struct {
	Path    string `json:"path"`
	Windows int    `json:"windows"`
}
