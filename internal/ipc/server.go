package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/palette"
	"github.com/1broseidon/snapwm/internal/runtimepath"
	"github.com/1broseidon/snapwm/internal/session"
	"github.com/1broseidon/snapwm/internal/shell"
	"github.com/1broseidon/snapwm/internal/wm"
)

// Hooks connect daemon-level operations to the server. Nil hooks make the
// matching command fail.
type Hooks struct {
	// Reload re-reads configuration and reconfigures the shell.
	Reload func() error
	// SessionPath resolves a session name to a file. The empty name is the
	// autosave file.
	SessionPath func(name string) (string, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	shell        *shell.Shell
	hooks        Hooks
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the runtime socket path.
func NewServer(sh *shell.Shell, hooks Hooks, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, sh, hooks, logger), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, sh *shell.Shell, hooks Hooks, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		shell:      sh,
		hooks:      hooks,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", string(req.Command))

	switch req.Command {
	case CommandPing:
		return ok(nil)
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandOpenWindow:
		return s.handleOpenWindow(req.Payload)
	case CommandCloseWindow:
		return s.withWindow(req.Payload, func(r *wm.Registry, id wm.WindowID) error { return r.Close(id) })
	case CommandFocusWindow:
		return s.withWindow(req.Payload, func(r *wm.Registry, id wm.WindowID) error { return r.Focus(id) })
	case CommandActivate:
		return s.withWindow(req.Payload, func(r *wm.Registry, id wm.WindowID) error { return r.Activate(id) })
	case CommandMoveWindow:
		return s.handleMoveWindow(req.Payload)
	case CommandResizeWindow:
		return s.handleResizeWindow(req.Payload)
	case CommandSetState:
		return s.handleSetState(req.Payload)
	case CommandSnapWindow:
		return s.handleSnapWindow(req.Payload)
	case CommandSetTitle:
		return s.handleSetTitle(req.Payload)
	case CommandCycleFocus:
		return s.handleCycleFocus()
	case CommandDragBegin:
		return s.handleDragBegin(req.Payload)
	case CommandDragUpdate:
		return s.handleDragUpdate(req.Payload)
	case CommandDragEnd:
		return s.do(func(r *wm.Registry) error { return r.EndDrag() })
	case CommandDragCancel:
		return s.do(func(r *wm.Registry) error { return r.CancelDrag() })
	case CommandHitTest:
		return s.handleHitTest(req.Payload)
	case CommandDrainDamage:
		return ok(s.shell.Drain())
	case CommandSetScreen:
		return s.handleSetScreen(req.Payload)
	case CommandSaveSession:
		return s.handleSaveSession(req.Payload)
	case CommandLoadSession:
		return s.handleLoadSession(req.Payload)
	case CommandFindWindows:
		return s.handleFindWindows(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decode(payload json.RawMessage, v interface{}) *Response {
	if len(payload) == 0 {
		return NewErrorResponse("missing payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	return nil
}

// do runs fn under the shell lock and maps its error onto a response.
func (s *Server) do(fn func(r *wm.Registry) error) *Response {
	if err := s.shell.Do(fn); err != nil {
		return NewErrorResponseFrom(err)
	}
	return ok(nil)
}

func (s *Server) withWindow(payload json.RawMessage, fn func(r *wm.Registry, id wm.WindowID) error) *Response {
	var req WindowPayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	return s.do(func(r *wm.Registry) error { return fn(r, wm.WindowID(req.ID)) })
}

func (s *Server) handleReload() *Response {
	if s.hooks.Reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	s.logger.Info("IPC: received RELOAD command")
	if err := s.hooks.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}
	s.shell.View(func(r *wm.Registry) {
		status.WindowCount = r.Count()
		if id, ok := r.Focused(); ok {
			status.FocusedID = uint64(id)
		}
		_, status.Dragging = r.Drag()
		status.Revision = r.Revision()
		status.Screen = r.Screen()
		status.WorkArea = r.WorkArea()
	})
	return ok(status)
}

func (s *Server) handleListWindows() *Response {
	var data WindowsData
	s.shell.View(func(r *wm.Registry) {
		windows := r.Windows()
		data.Windows = make([]WindowInfo, len(windows))
		for i, w := range windows {
			data.Windows[i] = NewWindowInfo(w)
		}
		data.Screen = r.Screen()
		data.WorkArea = r.WorkArea()
		data.Revision = r.Revision()
	})
	return ok(data)
}

func (s *Server) handleOpenWindow(payload json.RawMessage) *Response {
	var req OpenWindowPayload
	if len(payload) > 0 {
		if resp := decode(payload, &req); resp != nil {
			return resp
		}
	}
	var id wm.WindowID
	err := s.shell.Do(func(r *wm.Registry) error {
		var err error
		id, err = r.Open(wm.OpenOptions{
			Title:     req.Title,
			Bounds:    req.Bounds,
			MinWidth:  req.MinWidth,
			MinHeight: req.MinHeight,
			FixedSize: req.FixedSize,
			Pinned:    req.Pinned,
		})
		return err
	})
	if err != nil {
		return NewErrorResponseFrom(err)
	}
	return ok(OpenWindowData{ID: uint64(id)})
}

func (s *Server) handleMoveWindow(payload json.RawMessage) *Response {
	var req MoveWindowPayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	return s.do(func(r *wm.Registry) error {
		return r.Move(wm.WindowID(req.ID), geom.Point{X: req.X, Y: req.Y})
	})
}

func (s *Server) handleResizeWindow(payload json.RawMessage) *Response {
	var req ResizeWindowPayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	delta := geom.Point{X: req.DX, Y: req.DY}
	return s.do(func(r *wm.Registry) error {
		if req.Strict {
			return r.ResizeStrict(wm.WindowID(req.ID), req.Handle, delta)
		}
		return r.Resize(wm.WindowID(req.ID), req.Handle, delta)
	})
}

func (s *Server) handleSetState(payload json.RawMessage) *Response {
	var req SetStatePayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	return s.do(func(r *wm.Registry) error { return r.SetState(wm.WindowID(req.ID), req.State) })
}

func (s *Server) handleSnapWindow(payload json.RawMessage) *Response {
	var req SnapWindowPayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	return s.do(func(r *wm.Registry) error { return r.Snap(wm.WindowID(req.ID), req.Zone) })
}

func (s *Server) handleSetTitle(payload json.RawMessage) *Response {
	var req SetTitlePayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	return s.do(func(r *wm.Registry) error { return r.SetTitle(wm.WindowID(req.ID), req.Title) })
}

func (s *Server) handleCycleFocus() *Response {
	var data FocusData
	err := s.shell.Do(func(r *wm.Registry) error {
		id, found := r.CycleFocus()
		data = FocusData{Found: found, ID: uint64(id)}
		return nil
	})
	if err != nil {
		return NewErrorResponseFrom(err)
	}
	return ok(data)
}

func dragData(r *wm.Registry) DragData {
	d, _ := r.Drag()
	data := DragData{
		Window:       uint64(d.Window),
		HasCandidate: d.HasCandidate,
		Candidate:    d.Candidate,
	}
	if w, err := r.Window(d.Window); err == nil {
		data.Bounds = w.Bounds
	}
	return data
}

func (s *Server) handleDragBegin(payload json.RawMessage) *Response {
	var req PointerPayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	var data DragData
	err := s.shell.Do(func(r *wm.Registry) error {
		if err := r.BeginDrag(wm.WindowID(req.ID), geom.Point{X: req.X, Y: req.Y}); err != nil {
			return err
		}
		data = dragData(r)
		return nil
	})
	if err != nil {
		return NewErrorResponseFrom(err)
	}
	return ok(data)
}

func (s *Server) handleDragUpdate(payload json.RawMessage) *Response {
	var req PointerPayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	var data DragData
	err := s.shell.Do(func(r *wm.Registry) error {
		if err := r.UpdateDrag(geom.Point{X: req.X, Y: req.Y}); err != nil {
			return err
		}
		data = dragData(r)
		return nil
	})
	if err != nil {
		return NewErrorResponseFrom(err)
	}
	return ok(data)
}

func (s *Server) handleHitTest(payload json.RawMessage) *Response {
	var req PointerPayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	var data HitTestData
	s.shell.View(func(r *wm.Registry) {
		id, found := r.HitTest(geom.Point{X: req.X, Y: req.Y})
		data = HitTestData{Found: found, ID: uint64(id)}
	})
	return ok(data)
}

func (s *Server) handleSetScreen(payload json.RawMessage) *Response {
	var req SetScreenPayload
	if resp := decode(payload, &req); resp != nil {
		return resp
	}
	if req.Bounds.Empty() {
		return NewErrorResponse("screen bounds must have positive size")
	}
	return s.do(func(r *wm.Registry) error {
		r.SetScreenBounds(req.Bounds)
		return nil
	})
}

func (s *Server) sessionPath(payload json.RawMessage) (string, string, *Response) {
	var req SessionPayload
	if len(payload) > 0 {
		if resp := decode(payload, &req); resp != nil {
			return "", "", resp
		}
	}
	if s.hooks.SessionPath == nil {
		return "", "", NewErrorResponse("sessions are not supported")
	}
	path, err := s.hooks.SessionPath(req.Name)
	if err != nil {
		return "", "", NewErrorResponse(err.Error())
	}
	return req.Name, path, nil
}

func (s *Server) handleSaveSession(payload json.RawMessage) *Response {
	name, path, resp := s.sessionPath(payload)
	if resp != nil {
		return resp
	}
	sess := session.Capture(s.shell, name)
	if err := session.SaveFile(path, sess); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to save session: %v", err))
	}
	s.logger.Info("session saved", "path", path, "windows", len(sess.Windows))
	return ok(SessionData{Path: path, Windows: len(sess.Windows)})
}

func (s *Server) handleLoadSession(payload json.RawMessage) *Response {
	_, path, resp := s.sessionPath(payload)
	if resp != nil {
		return resp
	}
	sess, err := session.LoadFile(path)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to load session: %v", err))
	}
	if err := session.Apply(s.shell, sess); err != nil {
		return NewErrorResponseFrom(err)
	}
	s.logger.Info("session loaded", "path", path, "windows", len(sess.Windows))
	return ok(SessionData{Path: path, Windows: len(sess.Windows)})
}

func (s *Server) handleFindWindows(payload json.RawMessage) *Response {
	var req FindWindowsPayload
	if len(payload) > 0 {
		if resp := decode(payload, &req); resp != nil {
			return resp
		}
	}
	var entries []palette.Entry
	s.shell.View(func(r *wm.Registry) {
		entries = EntriesFromTitles(r.Titles())
	})
	return ok(FindWindowsData{Matches: palette.Rank(req.Query, entries, req.Limit)})
}

// EntriesFromTitles converts registry title entries for the palette.
func EntriesFromTitles(titles []wm.TitleEntry) []palette.Entry {
	entries := make([]palette.Entry, len(titles))
	for i, t := range titles {
		entries[i] = palette.Entry{
			ID:      uint64(t.ID),
			Title:   t.Title,
			State:   t.State.String(),
			Focused: t.Focused,
		}
	}
	return entries
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
