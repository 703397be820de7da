package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

func (s *Server) logCall(tool string, err error, attrs ...any) {
	if err != nil {
		s.logger.Warn("tool failed", append([]any{"tool", tool, "error", err, "code", wm.Code(err)}, attrs...)...)
		return
	}
	s.logger.Debug("tool ok", append([]any{"tool", tool}, attrs...)...)
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ Empty) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	s.logCall("get_status", err)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		WindowCount: st.WindowCount,
		FocusedID:   st.FocusedID,
		Dragging:    st.Dragging,
		Revision:    st.Revision,
		Screen:      st.Screen,
		WorkArea:    st.WorkArea,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ Empty) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.daemon.ListWindows()
	s.logCall("list_windows", err)
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{
		Windows:  make([]WindowOutput, 0, len(data.Windows)),
		Screen:   data.Screen,
		WorkArea: data.WorkArea,
		Revision: data.Revision,
	}
	for _, w := range data.Windows {
		out.Windows = append(out.Windows, newWindowOutput(w))
	}
	return nil, out, nil
}

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, OpenWindowOutput, error) {
	p := ipc.OpenWindowPayload{
		Title:     args.Title,
		MinWidth:  args.MinWidth,
		MinHeight: args.MinHeight,
		FixedSize: args.FixedSize,
		Pinned:    args.Pinned,
	}
	if args.Width > 0 && args.Height > 0 {
		p.Bounds = geom.Rect{X: args.X, Y: args.Y, Width: args.Width, Height: args.Height}
	}
	id, err := s.daemon.OpenWindow(p)
	s.logCall("open_window", err, "id", id)
	if err != nil {
		return nil, OpenWindowOutput{}, err
	}
	return nil, OpenWindowOutput{ID: id}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowRef) (*mcpsdk.CallToolResult, OKOutput, error) {
	err := s.daemon.CloseWindow(args.ID)
	s.logCall("close_window", err, "id", args.ID)
	return nil, OKOutput{OK: err == nil}, err
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowRef) (*mcpsdk.CallToolResult, OKOutput, error) {
	err := s.daemon.ActivateWindow(args.ID)
	s.logCall("focus_window", err, "id", args.ID)
	return nil, OKOutput{OK: err == nil}, err
}

func (s *Server) handleCycleFocus(_ context.Context, _ *mcpsdk.CallToolRequest, _ Empty) (*mcpsdk.CallToolResult, FocusOutput, error) {
	data, err := s.daemon.CycleFocus()
	s.logCall("cycle_focus", err)
	if err != nil {
		return nil, FocusOutput{}, err
	}
	return nil, FocusOutput{Found: data.Found, ID: data.ID}, nil
}

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	zone, err := snap.ParseZone(args.Zone)
	if err != nil {
		return nil, OKOutput{}, err
	}
	err = s.daemon.SnapWindow(args.ID, zone)
	s.logCall("snap_window", err, "id", args.ID, "zone", args.Zone)
	return nil, OKOutput{OK: err == nil}, err
}

func (s *Server) handleSetState(_ context.Context, _ *mcpsdk.CallToolRequest, args SetStateInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	state, err := wm.ParseState(args.State)
	if err == nil && state == wm.StateSnapped {
		err = fmt.Errorf("use snap_window to snap a window")
	}
	if err != nil {
		return nil, OKOutput{}, err
	}
	err = s.daemon.SetState(args.ID, state)
	s.logCall("set_window_state", err, "id", args.ID, "state", args.State)
	return nil, OKOutput{OK: err == nil}, err
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	err := s.daemon.MoveWindow(args.ID, args.X, args.Y)
	s.logCall("move_window", err, "id", args.ID)
	return nil, OKOutput{OK: err == nil}, err
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	h, err := wm.ParseHandle(args.Handle)
	if err != nil {
		return nil, OKOutput{}, err
	}
	err = s.daemon.ResizeWindow(ipc.ResizeWindowPayload{
		ID:     args.ID,
		Handle: h,
		DX:     args.DX,
		DY:     args.DY,
		Strict: args.Strict,
	})
	s.logCall("resize_window", err, "id", args.ID, "handle", args.Handle)
	return nil, OKOutput{OK: err == nil}, err
}

func (s *Server) handleSetTitle(_ context.Context, _ *mcpsdk.CallToolRequest, args SetTitleInput) (*mcpsdk.CallToolResult, OKOutput, error) {
	err := s.daemon.SetTitle(args.ID, args.Title)
	s.logCall("set_title", err, "id", args.ID)
	return nil, OKOutput{OK: err == nil}, err
}

func (s *Server) handleDragWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args DragWindowInput) (*mcpsdk.CallToolResult, DragWindowOutput, error) {
	out, err := s.drag(args.ID, args.Path)
	s.logCall("drag_window", err, "id", args.ID, "points", len(args.Path))
	return nil, out, err
}

// drag replays path as one gesture. A failure after the grab cancels the
// drag so the window returns to where it started.
func (s *Server) drag(id uint64, path []PointInput) (DragWindowOutput, error) {
	if len(path) == 0 {
		return DragWindowOutput{}, fmt.Errorf("path needs at least one point")
	}
	start := toPoint(path[0])
	last, err := s.daemon.DragBegin(id, start.X, start.Y)
	if err != nil {
		return DragWindowOutput{}, err
	}
	for _, p := range path[1:] {
		pt := toPoint(p)
		last, err = s.daemon.DragUpdate(pt.X, pt.Y)
		if err != nil {
			_ = s.daemon.DragCancel()
			return DragWindowOutput{}, err
		}
	}
	if err := s.daemon.DragEnd(); err != nil {
		return DragWindowOutput{}, err
	}

	out := DragWindowOutput{Bounds: last.Bounds}
	if last.HasCandidate {
		out.Snapped = true
		out.Zone = last.Candidate.Zone.String()
		out.Bounds = last.Candidate.Target
	}
	return out, nil
}

func (s *Server) handleHitTest(_ context.Context, _ *mcpsdk.CallToolRequest, args PointInput) (*mcpsdk.CallToolResult, HitTestOutput, error) {
	data, err := s.daemon.HitTest(args.X, args.Y)
	s.logCall("hit_test", err)
	if err != nil {
		return nil, HitTestOutput{}, err
	}
	return nil, HitTestOutput{Found: data.Found, ID: data.ID}, nil
}

func (s *Server) handleFindWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args FindWindowsInput) (*mcpsdk.CallToolResult, FindWindowsOutput, error) {
	data, err := s.daemon.FindWindows(args.Query, args.Limit)
	s.logCall("find_windows", err, "query", args.Query)
	if err != nil {
		return nil, FindWindowsOutput{}, err
	}
	return nil, FindWindowsOutput{Matches: data.Matches}, nil
}

func (s *Server) handleDrainDamage(_ context.Context, _ *mcpsdk.CallToolRequest, _ Empty) (*mcpsdk.CallToolResult, DamageOutput, error) {
	frame, err := s.daemon.DrainDamage()
	s.logCall("drain_damage", err)
	if err != nil {
		return nil, DamageOutput{}, err
	}
	return nil, DamageOutput{Seq: frame.Seq, Revision: frame.Revision, Rects: frame.Rects}, nil
}

func (s *Server) handleSaveSession(_ context.Context, _ *mcpsdk.CallToolRequest, args SessionInput) (*mcpsdk.CallToolResult, SessionOutput, error) {
	data, err := s.daemon.SaveSession(args.Name)
	s.logCall("save_session", err, "name", args.Name)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, SessionOutput{Path: data.Path, Windows: data.Windows}, nil
}

func (s *Server) handleLoadSession(_ context.Context, _ *mcpsdk.CallToolRequest, args SessionInput) (*mcpsdk.CallToolResult, SessionOutput, error) {
	data, err := s.daemon.LoadSession(args.Name)
	s.logCall("load_session", err, "name", args.Name)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, SessionOutput{Path: data.Path, Windows: data.Windows}, nil
}
