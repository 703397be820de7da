package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/palette"
	"github.com/1broseidon/snapwm/internal/shell"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

type fakeDaemon struct {
	opened   []ipc.OpenWindowPayload
	snapped  map[uint64]snap.Zone
	states   map[uint64]wm.State
	resized  []ipc.ResizeWindowPayload
	drag     []geom.Point
	ended    bool
	canceled bool
	failAt   int // DragUpdate call number that fails; 0 never
	updates  int
	err      error
}

func newFake() *fakeDaemon {
	return &fakeDaemon{snapped: map[uint64]snap.Zone{}, states: map[uint64]wm.State{}}
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{WindowCount: 2, FocusedID: 2, Revision: 7}, f.err
}

func (f *fakeDaemon) ListWindows() (*ipc.WindowsData, error) {
	return &ipc.WindowsData{
		Screen: geom.Rect{Width: 1920, Height: 1080},
		Windows: []ipc.WindowInfo{
			{ID: 1, Title: "editor", State: wm.StateSnapped, Zone: snap.ZoneLeft},
			{ID: 2, Title: "browser", State: wm.StateNormal, Focused: true},
		},
		Revision: 7,
	}, f.err
}

func (f *fakeDaemon) OpenWindow(p ipc.OpenWindowPayload) (uint64, error) {
	f.opened = append(f.opened, p)
	return uint64(len(f.opened)), f.err
}

func (f *fakeDaemon) CloseWindow(id uint64) error    { return f.err }
func (f *fakeDaemon) ActivateWindow(id uint64) error { return f.err }
func (f *fakeDaemon) MoveWindow(id uint64, x, y float64) error {
	return f.err
}

func (f *fakeDaemon) ResizeWindow(p ipc.ResizeWindowPayload) error {
	f.resized = append(f.resized, p)
	return f.err
}

func (f *fakeDaemon) SetState(id uint64, state wm.State) error {
	f.states[id] = state
	return f.err
}

func (f *fakeDaemon) SnapWindow(id uint64, zone snap.Zone) error {
	f.snapped[id] = zone
	return f.err
}

func (f *fakeDaemon) SetTitle(id uint64, title string) error { return f.err }
func (f *fakeDaemon) CycleFocus() (*ipc.FocusData, error) {
	return &ipc.FocusData{Found: true, ID: 1}, f.err
}

func (f *fakeDaemon) DragBegin(id uint64, x, y float64) (*ipc.DragData, error) {
	f.drag = append(f.drag, geom.Point{X: x, Y: y})
	return &ipc.DragData{Window: id, Bounds: geom.Rect{X: x, Y: y, Width: 100, Height: 100}}, f.err
}

func (f *fakeDaemon) DragUpdate(x, y float64) (*ipc.DragData, error) {
	f.updates++
	if f.failAt != 0 && f.updates == f.failAt {
		return nil, wm.ErrConflictingOperation
	}
	f.drag = append(f.drag, geom.Point{X: x, Y: y})
	d := &ipc.DragData{Bounds: geom.Rect{X: x, Y: y, Width: 100, Height: 100}}
	if x <= 0 {
		d.HasCandidate = true
		d.Candidate = snap.SnapZone{Zone: snap.ZoneLeft, Target: geom.Rect{Width: 960, Height: 1080}}
	}
	return d, nil
}

func (f *fakeDaemon) DragEnd() error {
	f.ended = true
	return nil
}

func (f *fakeDaemon) DragCancel() error {
	f.canceled = true
	return nil
}

func (f *fakeDaemon) HitTest(x, y float64) (*ipc.HitTestData, error) {
	return &ipc.HitTestData{Found: x < 100, ID: 1}, f.err
}

func (f *fakeDaemon) DrainDamage() (*shell.Frame, error) {
	return &shell.Frame{Seq: 3, Revision: 7, Rects: []geom.Rect{{Width: 10, Height: 10}}}, f.err
}

func (f *fakeDaemon) FindWindows(query string, limit int) (*ipc.FindWindowsData, error) {
	return &ipc.FindWindowsData{Matches: []palette.Match{{Entry: palette.Entry{ID: 2, Title: "browser"}, Score: 10}}}, f.err
}

func (f *fakeDaemon) SaveSession(name string) (*ipc.SessionData, error) {
	return &ipc.SessionData{Path: "/tmp/" + name + ".json", Windows: 2}, f.err
}

func (f *fakeDaemon) LoadSession(name string) (*ipc.SessionData, error) {
	return &ipc.SessionData{Path: "/tmp/" + name + ".json", Windows: 2}, f.err
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(newFake(), nil)
	if s.mcpServer == nil {
		t.Fatal("mcp server not created")
	}
}

func TestListWindowsUsesNames(t *testing.T) {
	s := NewServer(newFake(), nil)
	_, out, err := s.handleListWindows(context.Background(), nil, Empty{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if len(out.Windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(out.Windows))
	}
	if out.Windows[0].State != "snapped" || out.Windows[0].Zone != "left" {
		t.Errorf("window 1 = %+v", out.Windows[0])
	}
	if out.Windows[1].State != "normal" || out.Windows[1].Zone != "" {
		t.Errorf("window 2 = %+v", out.Windows[1])
	}
}

func TestOpenWindowBounds(t *testing.T) {
	f := newFake()
	s := NewServer(f, nil)

	if _, _, err := s.handleOpenWindow(context.Background(), nil, OpenWindowInput{Title: "a", X: 5, Y: 5}); err != nil {
		t.Fatalf("open_window: %v", err)
	}
	if !f.opened[0].Bounds.Empty() {
		t.Errorf("partial geometry should fall back to defaults, got %+v", f.opened[0].Bounds)
	}

	_, out, err := s.handleOpenWindow(context.Background(), nil, OpenWindowInput{Title: "b", X: 10, Y: 20, Width: 300, Height: 200})
	if err != nil {
		t.Fatalf("open_window: %v", err)
	}
	if out.ID != 2 {
		t.Errorf("id = %d, want 2", out.ID)
	}
	want := geom.Rect{X: 10, Y: 20, Width: 300, Height: 200}
	if f.opened[1].Bounds != want {
		t.Errorf("bounds = %+v, want %+v", f.opened[1].Bounds, want)
	}
}

func TestSnapWindowParsesZone(t *testing.T) {
	f := newFake()
	s := NewServer(f, nil)

	if _, _, err := s.handleSnapWindow(context.Background(), nil, SnapWindowInput{ID: 1, Zone: "top-right"}); err != nil {
		t.Fatalf("snap_window: %v", err)
	}
	if f.snapped[1] != snap.ZoneTopRight {
		t.Errorf("zone = %s, want top-right", f.snapped[1])
	}

	for _, zone := range []string{"none", "middle", ""} {
		if _, _, err := s.handleSnapWindow(context.Background(), nil, SnapWindowInput{ID: 1, Zone: zone}); err == nil {
			t.Errorf("zone %q should be rejected", zone)
		}
	}
}

func TestSetStateRejectsSnapped(t *testing.T) {
	f := newFake()
	s := NewServer(f, nil)

	if _, _, err := s.handleSetState(context.Background(), nil, SetStateInput{ID: 4, State: "maximized"}); err != nil {
		t.Fatalf("set_window_state: %v", err)
	}
	if f.states[4] != wm.StateMaximized {
		t.Errorf("state = %s", f.states[4])
	}
	if _, _, err := s.handleSetState(context.Background(), nil, SetStateInput{ID: 4, State: "snapped"}); err == nil {
		t.Error("snapped should be rejected")
	}
	if _, _, err := s.handleSetState(context.Background(), nil, SetStateInput{ID: 4, State: "hidden"}); err == nil {
		t.Error("unknown state should be rejected")
	}
}

func TestResizeWindowParsesHandle(t *testing.T) {
	f := newFake()
	s := NewServer(f, nil)

	_, _, err := s.handleResizeWindow(context.Background(), nil, ResizeWindowInput{ID: 1, Handle: "bottom-left", DX: -10, DY: 20, Strict: true})
	if err != nil {
		t.Fatalf("resize_window: %v", err)
	}
	got := f.resized[0]
	if got.Handle != wm.HandleBottomLeft || got.DX != -10 || got.DY != 20 || !got.Strict {
		t.Errorf("payload = %+v", got)
	}
	if _, _, err := s.handleResizeWindow(context.Background(), nil, ResizeWindowInput{ID: 1, Handle: "middle"}); err == nil {
		t.Error("unknown handle should be rejected")
	}
}

func TestDragWindowSnapsOnRelease(t *testing.T) {
	f := newFake()
	s := NewServer(f, nil)

	path := []PointInput{{X: 500, Y: 10}, {X: 200, Y: 10}, {X: 0, Y: 400}}
	_, out, err := s.handleDragWindow(context.Background(), nil, DragWindowInput{ID: 1, Path: path})
	if err != nil {
		t.Fatalf("drag_window: %v", err)
	}
	if !f.ended || f.canceled {
		t.Errorf("ended=%v canceled=%v", f.ended, f.canceled)
	}
	if len(f.drag) != 3 {
		t.Errorf("replayed %d points, want 3", len(f.drag))
	}
	if !out.Snapped || out.Zone != "left" {
		t.Errorf("out = %+v", out)
	}
	if out.Bounds != (geom.Rect{Width: 960, Height: 1080}) {
		t.Errorf("bounds = %+v", out.Bounds)
	}
}

func TestDragWindowCancelsOnFailure(t *testing.T) {
	f := newFake()
	f.failAt = 2
	s := NewServer(f, nil)

	path := []PointInput{{X: 500, Y: 10}, {X: 400, Y: 10}, {X: 300, Y: 10}}
	_, _, err := s.handleDragWindow(context.Background(), nil, DragWindowInput{ID: 1, Path: path})
	if !errors.Is(err, wm.ErrConflictingOperation) {
		t.Fatalf("err = %v, want conflicting operation", err)
	}
	if !f.canceled || f.ended {
		t.Errorf("ended=%v canceled=%v", f.ended, f.canceled)
	}
}

func TestDragWindowNeedsPath(t *testing.T) {
	s := NewServer(newFake(), nil)
	if _, _, err := s.handleDragWindow(context.Background(), nil, DragWindowInput{ID: 1}); err == nil {
		t.Error("empty path should be rejected")
	}
}

func TestPassThroughTools(t *testing.T) {
	s := NewServer(newFake(), nil)
	ctx := context.Background()

	if _, st, err := s.handleGetStatus(ctx, nil, Empty{}); err != nil || st.Revision != 7 {
		t.Errorf("get_status = %+v, %v", st, err)
	}
	if _, hit, err := s.handleHitTest(ctx, nil, PointInput{X: 50, Y: 50}); err != nil || !hit.Found {
		t.Errorf("hit_test = %+v, %v", hit, err)
	}
	if _, found, err := s.handleFindWindows(ctx, nil, FindWindowsInput{Query: "brw"}); err != nil || len(found.Matches) != 1 {
		t.Errorf("find_windows = %+v, %v", found, err)
	}
	if _, dmg, err := s.handleDrainDamage(ctx, nil, Empty{}); err != nil || dmg.Seq != 3 || len(dmg.Rects) != 1 {
		t.Errorf("drain_damage = %+v, %v", dmg, err)
	}
	if _, sess, err := s.handleSaveSession(ctx, nil, SessionInput{Name: "work"}); err != nil || sess.Windows != 2 {
		t.Errorf("save_session = %+v, %v", sess, err)
	}
	if _, focus, err := s.handleCycleFocus(ctx, nil, Empty{}); err != nil || focus.ID != 1 {
		t.Errorf("cycle_focus = %+v, %v", focus, err)
	}
}

func TestDaemonErrorsPropagate(t *testing.T) {
	f := newFake()
	f.err = wm.ErrInvalidReference
	s := NewServer(f, nil)

	_, out, err := s.handleCloseWindow(context.Background(), nil, WindowRef{ID: 9})
	if !errors.Is(err, wm.ErrInvalidReference) {
		t.Fatalf("err = %v", err)
	}
	if out.OK {
		t.Error("OK should be false on error")
	}
}
