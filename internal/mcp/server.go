// Package mcp exposes a running snapwm daemon to MCP clients over stdio.
// Every tool is a thin call through the daemon's IPC socket.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/shell"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

const (
	ServerName    = "snapwm"
	ServerVersion = "0.1.0"
)

// Daemon is the slice of the IPC client the tools call. *ipc.Client
// satisfies it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	OpenWindow(p ipc.OpenWindowPayload) (uint64, error)
	CloseWindow(id uint64) error
	ActivateWindow(id uint64) error
	MoveWindow(id uint64, x, y float64) error
	ResizeWindow(p ipc.ResizeWindowPayload) error
	SetState(id uint64, state wm.State) error
	SnapWindow(id uint64, zone snap.Zone) error
	SetTitle(id uint64, title string) error
	CycleFocus() (*ipc.FocusData, error)
	DragBegin(id uint64, x, y float64) (*ipc.DragData, error)
	DragUpdate(x, y float64) (*ipc.DragData, error)
	DragEnd() error
	DragCancel() error
	HitTest(x, y float64) (*ipc.HitTestData, error)
	DrainDamage() (*shell.Frame, error)
	FindWindows(query string, limit int) (*ipc.FindWindowsData, error)
	SaveSession(name string) (*ipc.SessionData, error)
	LoadSession(name string) (*ipc.SessionData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for snapwm.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to d.
func NewServer(d Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		daemon: d,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the window count, focused window, drag state, registry revision, screen and work area of the running snapwm daemon.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every managed window bottom to top with its bounds, state, snap zone and focus.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a new window. Without width and height it gets the configured default size centered in the work area. The new window is focused and raised. Returns its id.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. Focus falls back to the topmost remaining visible window.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus a window and raise it to the top of the stack, restoring it first if minimized.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cycle_focus",
		Description: "Move focus to the next visible window below the focused one, wrapping to the top.",
	}, s.handleCycleFocus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap a window to a screen zone (halves, corners, or top for maximize-like). The pre-snap bounds are remembered for restore.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_state",
		Description: "Set a window to normal, minimized or maximized. Normal restores the remembered bounds of a maximized or snapped window.",
	}, s.handleSetState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a normal window so its top-left corner is at x,y. The window is kept partly on screen.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a normal window by dragging one edge or corner by dx,dy. The opposite edge stays fixed and the minimum size is honored.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_title",
		Description: "Change a window title.",
	}, s.handleSetTitle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "drag_window",
		Description: "Drag a window along a pointer path in one gesture. The first point grabs the window by its title bar position and the last releases it; releasing inside a snap zone snaps the window there.",
	}, s.handleDragWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hit_test",
		Description: "Return the topmost visible window under a screen point.",
	}, s.handleHitTest)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_windows",
		Description: "Fuzzy-search window titles. Best matches first.",
	}, s.handleFindWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "drain_damage",
		Description: "Take the coalesced dirty rectangles accumulated since the last drain. Draining clears them.",
	}, s.handleDrainDamage)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_session",
		Description: "Save every window's geometry, state and stacking to a named session (default: the autosave session).",
	}, s.handleSaveSession)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_session",
		Description: "Replace all windows with the ones recorded in a named session (default: the autosave session).",
	}, s.handleLoadSession)
}

func toPoint(p PointInput) geom.Point {
	return geom.Point{X: p.X, Y: p.Y}
}
