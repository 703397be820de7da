package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/runtimepath"
	"github.com/1broseidon/snapwm/internal/shell"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response. Error responses
// that carry a registry code are returned as errors wrapping that kind.
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, wm.ErrorFromCode(resp.Code, "daemon error: "+resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the response data
// into out when out is non-nil.
func (c *Client) call(command CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Ping checks that the daemon answers.
func (c *Client) Ping() error {
	return c.call(CommandPing, nil, nil)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListWindows returns every window, bottom of the stack first.
func (c *Client) ListWindows() (*WindowsData, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// OpenWindow opens a window and returns its id.
func (c *Client) OpenWindow(p OpenWindowPayload) (uint64, error) {
	var data OpenWindowData
	if err := c.call(CommandOpenWindow, p, &data); err != nil {
		return 0, err
	}
	return data.ID, nil
}

func (c *Client) CloseWindow(id uint64) error {
	return c.call(CommandCloseWindow, WindowPayload{ID: id}, nil)
}

func (c *Client) FocusWindow(id uint64) error {
	return c.call(CommandFocusWindow, WindowPayload{ID: id}, nil)
}

// ActivateWindow focuses id, restoring it first if it is minimized.
func (c *Client) ActivateWindow(id uint64) error {
	return c.call(CommandActivate, WindowPayload{ID: id}, nil)
}

func (c *Client) MoveWindow(id uint64, x, y float64) error {
	return c.call(CommandMoveWindow, MoveWindowPayload{ID: id, X: x, Y: y}, nil)
}

func (c *Client) ResizeWindow(p ResizeWindowPayload) error {
	return c.call(CommandResizeWindow, p, nil)
}

func (c *Client) SetState(id uint64, state wm.State) error {
	return c.call(CommandSetState, SetStatePayload{ID: id, State: state}, nil)
}

func (c *Client) SnapWindow(id uint64, zone snap.Zone) error {
	return c.call(CommandSnapWindow, SnapWindowPayload{ID: id, Zone: zone}, nil)
}

func (c *Client) SetTitle(id uint64, title string) error {
	return c.call(CommandSetTitle, SetTitlePayload{ID: id, Title: title}, nil)
}

// CycleFocus raises and focuses the bottom-most visible window.
func (c *Client) CycleFocus() (*FocusData, error) {
	var data FocusData
	if err := c.call(CommandCycleFocus, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) DragBegin(id uint64, x, y float64) (*DragData, error) {
	var data DragData
	if err := c.call(CommandDragBegin, PointerPayload{ID: id, X: x, Y: y}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) DragUpdate(x, y float64) (*DragData, error) {
	var data DragData
	if err := c.call(CommandDragUpdate, PointerPayload{X: x, Y: y}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) DragEnd() error {
	return c.call(CommandDragEnd, nil, nil)
}

func (c *Client) DragCancel() error {
	return c.call(CommandDragCancel, nil, nil)
}

// HitTest returns the topmost visible window under (x, y).
func (c *Client) HitTest(x, y float64) (*HitTestData, error) {
	var data HitTestData
	if err := c.call(CommandHitTest, PointerPayload{X: x, Y: y}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DrainDamage takes the pending dirty rectangles from the daemon.
func (c *Client) DrainDamage() (*shell.Frame, error) {
	var frame shell.Frame
	if err := c.call(CommandDrainDamage, nil, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

func (c *Client) SetScreen(bounds geom.Rect) error {
	return c.call(CommandSetScreen, SetScreenPayload{Bounds: bounds}, nil)
}

// SaveSession writes the current layout. An empty name targets the autosave
// file.
func (c *Client) SaveSession(name string) (*SessionData, error) {
	var data SessionData
	if err := c.call(CommandSaveSession, SessionPayload{Name: name}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) LoadSession(name string) (*SessionData, error) {
	var data SessionData
	if err := c.call(CommandLoadSession, SessionPayload{Name: name}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// FindWindows ranks window titles against query.
func (c *Client) FindWindows(query string, limit int) (*FindWindowsData, error) {
	var data FindWindowsData
	if err := c.call(CommandFindWindows, FindWindowsPayload{Query: query, Limit: limit}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
