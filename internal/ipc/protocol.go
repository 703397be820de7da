package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/palette"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing         CommandType = "PING"
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandListWindows  CommandType = "LIST_WINDOWS"
	CommandOpenWindow   CommandType = "OPEN_WINDOW"
	CommandCloseWindow  CommandType = "CLOSE_WINDOW"
	CommandFocusWindow  CommandType = "FOCUS_WINDOW"
	CommandActivate     CommandType = "ACTIVATE_WINDOW"
	CommandMoveWindow   CommandType = "MOVE_WINDOW"
	CommandResizeWindow CommandType = "RESIZE_WINDOW"
	CommandSetState     CommandType = "SET_STATE"
	CommandSnapWindow   CommandType = "SNAP_WINDOW"
	CommandSetTitle     CommandType = "SET_TITLE"
	CommandCycleFocus   CommandType = "CYCLE_FOCUS"
	CommandDragBegin    CommandType = "DRAG_BEGIN"
	CommandDragUpdate   CommandType = "DRAG_UPDATE"
	CommandDragEnd      CommandType = "DRAG_END"
	CommandDragCancel   CommandType = "DRAG_CANCEL"
	CommandHitTest      CommandType = "HIT_TEST"
	CommandDrainDamage  CommandType = "DRAIN_DAMAGE"
	CommandSetScreen    CommandType = "SET_SCREEN"
	CommandSaveSession  CommandType = "SAVE_SESSION"
	CommandLoadSession  CommandType = "LOAD_SESSION"
	CommandFindWindows  CommandType = "FIND_WINDOWS"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	// Code carries the registry error kind, see wm.Code.
	Code string `json:"code,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount   int       `json:"window_count"`
	FocusedID     uint64    `json:"focused_id,omitempty"`
	Dragging      bool      `json:"dragging"`
	Revision      uint64    `json:"revision"`
	Screen        geom.Rect `json:"screen"`
	WorkArea      geom.Rect `json:"work_area"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	DaemonRunning bool      `json:"daemon_running"`
}

// WindowInfo is the wire form of wm.Window.
type WindowInfo struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Bounds    geom.Rect `json:"bounds"`
	State     wm.State  `json:"state"`
	Zone      snap.Zone `json:"zone,omitempty"`
	Z         int       `json:"z"`
	Focused   bool      `json:"focused,omitempty"`
	Resizable bool      `json:"resizable"`
	Movable   bool      `json:"movable"`
	MinWidth  float64   `json:"min_width"`
	MinHeight float64   `json:"min_height"`
}

// NewWindowInfo converts a registry window.
func NewWindowInfo(w wm.Window) WindowInfo {
	return WindowInfo{
		ID:        uint64(w.ID),
		Title:     w.Title,
		Bounds:    w.Bounds,
		State:     w.State,
		Zone:      w.Zone,
		Z:         w.Z,
		Focused:   w.Focused,
		Resizable: w.Resizable,
		Movable:   w.Movable,
		MinWidth:  w.MinWidth,
		MinHeight: w.MinHeight,
	}
}

// WindowsData is returned by LIST_WINDOWS, bottom of the stack first.
type WindowsData struct {
	Windows  []WindowInfo `json:"windows"`
	Screen   geom.Rect    `json:"screen"`
	WorkArea geom.Rect    `json:"work_area"`
	Revision uint64       `json:"revision"`
}

type WindowPayload struct {
	ID uint64 `json:"id"`
}

type OpenWindowPayload struct {
	Title     string    `json:"title"`
	Bounds    geom.Rect `json:"bounds"`
	MinWidth  float64   `json:"min_width,omitempty"`
	MinHeight float64   `json:"min_height,omitempty"`
	FixedSize bool      `json:"fixed_size,omitempty"`
	Pinned    bool      `json:"pinned,omitempty"`
}

type OpenWindowData struct {
	ID uint64 `json:"id"`
}

type MoveWindowPayload struct {
	ID uint64  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type ResizeWindowPayload struct {
	ID     uint64    `json:"id"`
	Handle wm.Handle `json:"handle"`
	DX     float64   `json:"dx"`
	DY     float64   `json:"dy"`
	Strict bool      `json:"strict,omitempty"`
}

type SetStatePayload struct {
	ID    uint64   `json:"id"`
	State wm.State `json:"state"`
}

type SnapWindowPayload struct {
	ID   uint64    `json:"id"`
	Zone snap.Zone `json:"zone"`
}

type SetTitlePayload struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// PointerPayload carries a pointer position. ID is only read by DRAG_BEGIN.
type PointerPayload struct {
	ID uint64  `json:"id,omitempty"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// DragData reports the drag session after DRAG_BEGIN and DRAG_UPDATE.
type DragData struct {
	Window       uint64        `json:"window"`
	Bounds       geom.Rect     `json:"bounds"`
	HasCandidate bool          `json:"has_candidate"`
	Candidate    snap.SnapZone `json:"candidate,omitempty"`
}

type HitTestData struct {
	Found bool   `json:"found"`
	ID    uint64 `json:"id,omitempty"`
}

type FocusData struct {
	Found bool   `json:"found"`
	ID    uint64 `json:"id,omitempty"`
}

type SetScreenPayload struct {
	Bounds geom.Rect `json:"bounds"`
}

// SessionPayload names a saved layout. An empty name selects the autosave
// file.
type SessionPayload struct {
	Name string `json:"name,omitempty"`
}

type SessionData struct {
	Path    string `json:"path"`
	Windows int    `json:"windows"`
}

type FindWindowsPayload struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type FindWindowsData struct {
	Matches []palette.Match `json:"matches"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// NewErrorResponseFrom creates an error response that keeps the registry
// error kind of err.
func NewErrorResponseFrom(err error) *Response {
	resp := NewErrorResponse(err.Error())
	resp.Code = wm.Code(err)
	return resp
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
