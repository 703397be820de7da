package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/snapwm/internal/config"
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

type fakeDaemon struct {
	windows  *ipc.WindowsData
	calls    []string
	saved    []string
	loaded   []string
	reloaded int
	err      error
}

func (f *fakeDaemon) Ping() error { return f.err }
func (f *fakeDaemon) Reload() error {
	f.reloaded++
	return f.err
}
func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{WindowCount: len(f.windows.Windows)}, f.err
}
func (f *fakeDaemon) ListWindows() (*ipc.WindowsData, error) { return f.windows, f.err }
func (f *fakeDaemon) ActivateWindow(id uint64) error {
	f.calls = append(f.calls, "activate")
	return f.err
}
func (f *fakeDaemon) CloseWindow(id uint64) error {
	f.calls = append(f.calls, "close")
	return f.err
}
func (f *fakeDaemon) SetState(id uint64, state wm.State) error {
	f.calls = append(f.calls, "state:"+state.String())
	return f.err
}
func (f *fakeDaemon) SnapWindow(id uint64, zone snap.Zone) error {
	f.calls = append(f.calls, "snap:"+zone.String())
	return f.err
}
func (f *fakeDaemon) CycleFocus() (*ipc.FocusData, error) {
	f.calls = append(f.calls, "cycle")
	return &ipc.FocusData{}, f.err
}
func (f *fakeDaemon) SaveSession(name string) (*ipc.SessionData, error) {
	f.saved = append(f.saved, name)
	return &ipc.SessionData{Windows: len(f.windows.Windows)}, f.err
}
func (f *fakeDaemon) LoadSession(name string) (*ipc.SessionData, error) {
	f.loaded = append(f.loaded, name)
	return &ipc.SessionData{Windows: 1}, f.err
}

type fakeStore struct {
	names   []string
	deleted []string
}

func (s *fakeStore) List() ([]string, error) { return s.names, nil }
func (s *fakeStore) Delete(name string) error {
	s.deleted = append(s.deleted, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func sampleWindows() *ipc.WindowsData {
	screen := geom.Rect{Width: 1000, Height: 500}
	return &ipc.WindowsData{
		Screen:   screen,
		WorkArea: screen,
		Windows: []ipc.WindowInfo{
			{ID: 1, Title: "editor", Bounds: geom.Rect{Width: 500, Height: 500}, State: wm.StateSnapped, Zone: snap.ZoneLeft},
			{ID: 2, Title: "browser", Bounds: geom.Rect{X: 500, Width: 500, Height: 500}, State: wm.StateNormal, Focused: true},
			{ID: 3, Title: "hidden", Bounds: geom.Rect{X: 100, Y: 100, Width: 200, Height: 100}, State: wm.StateMinimized},
		},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRenderScreenPreviewDrawsVisibleWindows(t *testing.T) {
	lines := renderScreenPreview(sampleWindows(), 2, 42, 12)
	if len(lines) != 12 {
		t.Fatalf("len(lines) = %d, want 12", len(lines))
	}
	for i, l := range lines {
		if n := len([]rune(l)); n != 42 {
			t.Fatalf("line %d width = %d, want 42", i, n)
		}
	}
	all := strings.Join(lines, "\n")
	if !strings.Contains(all, "1") || !strings.Contains(all, "2") {
		t.Fatalf("expected window labels in preview:\n%s", all)
	}
	if strings.Contains(all, "3") {
		t.Fatalf("minimized window should not be drawn:\n%s", all)
	}
	if !strings.Contains(all, "┏") {
		t.Fatalf("selected window should use a heavy border:\n%s", all)
	}
	if !strings.HasPrefix(lines[0], "╔") {
		t.Fatalf("missing outer border: %q", lines[0])
	}
}

func TestRenderScreenPreviewEmpty(t *testing.T) {
	lines := renderScreenPreview(nil, 0, 10, 3)
	if len(lines) != 3 || strings.TrimSpace(strings.Join(lines, "")) != "" {
		t.Fatalf("expected blank canvas, got %q", lines)
	}
	if got := renderScreenPreview(sampleWindows(), 0, 2, 2); len(got) != 2 {
		t.Fatalf("tiny canvas should still have requested height, got %d", len(got))
	}
}

func TestToCanvasClamps(t *testing.T) {
	screen := geom.Rect{Width: 100, Height: 100}
	x1, y1, x2, y2 := toCanvas(screen, geom.Rect{X: -50, Y: -50, Width: 300, Height: 300}, 12, 12)
	if x1 != 1 || y1 != 1 || x2 != 10 || y2 != 10 {
		t.Fatalf("toCanvas = %d,%d,%d,%d, want 1,1,10,10", x1, y1, x2, y2)
	}
}

func TestWindowsTabListsTopmostFirst(t *testing.T) {
	d := &fakeDaemon{windows: sampleWindows()}
	tab := NewWindowsTab(d)
	tab, _ = tab.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	tab, _ = tab.Update(windowsMsg{data: d.windows})

	id, ok := tab.Selected()
	if !ok || id != 3 {
		t.Fatalf("Selected() = %d, %v; want 3, true", id, ok)
	}
	if !strings.Contains(tab.View(), "browser") {
		t.Fatalf("view should list window titles")
	}
}

func TestWindowsTabActions(t *testing.T) {
	d := &fakeDaemon{windows: sampleWindows()}
	tab := NewWindowsTab(d)
	tab, _ = tab.Update(windowsMsg{data: d.windows})

	for _, key := range []string{"H", "m", "n", "r", "x", "enter", "c"} {
		var cmd tea.Cmd
		tab, cmd = tab.Update(keyMsg(key))
		if cmd == nil {
			t.Fatalf("key %q produced no command", key)
		}
		msg, ok := cmd().(actionMsg)
		if !ok {
			t.Fatalf("key %q did not produce an actionMsg", key)
		}
		if msg.err != nil {
			t.Fatalf("key %q: %v", key, msg.err)
		}
	}

	want := []string{"snap:left", "state:maximized", "state:minimized", "state:normal", "close", "activate", "cycle"}
	if strings.Join(d.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
}

func TestWindowsTabKeepsSelectionAcrossRefresh(t *testing.T) {
	d := &fakeDaemon{windows: sampleWindows()}
	tab := NewWindowsTab(d)
	tab, _ = tab.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	tab, _ = tab.Update(windowsMsg{data: d.windows})
	tab.list.Select(2)

	tab, _ = tab.Update(windowsMsg{data: sampleWindows()})
	if id, _ := tab.Selected(); id != 1 {
		t.Fatalf("Selected() = %d after refresh, want 1", id)
	}
}

func TestWindowsTabReportsActionError(t *testing.T) {
	d := &fakeDaemon{windows: sampleWindows()}
	tab := NewWindowsTab(d)
	tab, _ = tab.Update(actionMsg{label: "close #1", err: wm.ErrInvalidReference})
	if !strings.Contains(tab.status, "close #1") {
		t.Fatalf("status = %q", tab.status)
	}
}

func TestSessionsTabSaveLoadDelete(t *testing.T) {
	d := &fakeDaemon{windows: sampleWindows()}
	store := &fakeStore{names: []string{"work"}}
	tab := NewSessionsTab(d, store)
	tab, _ = tab.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	tab, _ = tab.Update(keyMsg("enter"))
	if len(d.loaded) != 1 || d.loaded[0] != "work" {
		t.Fatalf("loaded = %v", d.loaded)
	}

	tab, _ = tab.Update(keyMsg("s"))
	if !tab.naming {
		t.Fatalf("expected naming mode")
	}
	for _, r := range "den" {
		tab, _ = tab.Update(keyMsg(string(r)))
	}
	tab, _ = tab.Update(keyMsg("enter"))
	if len(d.saved) != 1 || d.saved[0] != "den" {
		t.Fatalf("saved = %v", d.saved)
	}
	if tab.naming {
		t.Fatalf("naming mode should end after enter")
	}

	tab, _ = tab.Update(keyMsg("x"))
	if len(store.deleted) != 1 || store.deleted[0] != "work" {
		t.Fatalf("deleted = %v", store.deleted)
	}
}

func TestSettingsApplyForm(t *testing.T) {
	cfg := config.DefaultConfig()
	tab := NewSettingsTab(cfg)
	tab.width = 80
	tab.startEditing()

	tab.fSnapEnabled = false
	tab.fMargin = "12"
	tab.fMinWidth = "-3"
	tab.fPaddingTop = "40"
	tab.fMergeRatio = "0.5"
	tab.fLogLevel = "debug"
	tab.applyForm()

	if cfg.Snap.Enabled || cfg.Snap.ActivationMargin != 12 {
		t.Fatalf("snap = %+v", cfg.Snap)
	}
	if cfg.Window.MinWidth != 200 {
		t.Fatalf("invalid min width should be ignored, got %d", cfg.Window.MinWidth)
	}
	if cfg.ScreenPadding.Top != 40 || cfg.Damage.MergeRatio != 0.5 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestDiffConfigGroupsChangedKeys(t *testing.T) {
	orig := config.DefaultConfig()
	curr := cloneConfig(orig)
	changes, err := diffConfig(orig, curr)
	if err != nil || len(changes) != 0 {
		t.Fatalf("identical configs should not differ, got %v, %v", changes, err)
	}

	curr.Snap.ActivationMargin = 33
	curr.Screen.Source = config.ScreenSourceX11
	curr.Hotkeys = map[string]string{"super-Left": config.ActionSnapLeft}
	changes, err = diffConfig(orig, curr)
	if err != nil {
		t.Fatalf("diffConfig: %v", err)
	}

	byKey := map[string]configChange{}
	for _, c := range changes {
		byKey[c.key] = c
	}
	margin, ok := byKey["snap.activation_margin"]
	if !ok || margin.old != "20" || margin.new != "33" || margin.restart {
		t.Fatalf("margin change = %+v", margin)
	}
	if margin.section() != "snap" || margin.leaf() != "activation_margin" {
		t.Fatalf("margin section/leaf = %q/%q", margin.section(), margin.leaf())
	}
	if src := byKey["screen.source"]; !src.restart || src.new != "x11" {
		t.Fatalf("screen.source change = %+v", src)
	}
	if hk := byKey["hotkeys.super-Left"]; hk.new != config.ActionSnapLeft {
		t.Fatalf("hotkey change = %+v", hk)
	}

	var s SaveOverlay
	s.Show(orig, curr)
	if got := s.pendingRestart(); len(got) != 1 || got[0] != "screen.source" {
		t.Fatalf("pendingRestart = %v", got)
	}
	view := s.View(100, 40)
	for _, want := range []string{"snap", "activation_margin", "(restart)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("preview missing %q:\n%s", want, view)
		}
	}
}

func TestSaveOverlayWritesAndReloads(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	orig := config.DefaultConfig()
	curr := cloneConfig(orig)
	curr.ScreenPadding.Bottom = 48

	d := &fakeDaemon{windows: sampleWindows()}
	var s SaveOverlay
	s.Show(orig, curr)
	if s.phase != savePreview {
		t.Fatalf("phase = %v, want preview", s.phase)
	}
	s = s.Update(keyMsg("enter"), curr, path, d, true)
	if !s.SaveSucceeded() {
		t.Fatalf("save failed: %v", s.err)
	}
	if d.reloaded != 1 {
		t.Fatalf("reloaded = %d, want 1", d.reloaded)
	}

	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if res.Config.ScreenPadding.Bottom != 48 {
		t.Fatalf("saved padding = %d", res.Config.ScreenPadding.Bottom)
	}
}

func TestModelTabSwitching(t *testing.T) {
	d := &fakeDaemon{windows: sampleWindows()}
	m := newModel("", config.DefaultConfig(), d, &fakeStore{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(model)

	next, _ = m.Update(keyMsg("2"))
	m = next.(model)
	if m.activeTab != TabSettings {
		t.Fatalf("activeTab = %v", m.activeTab)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	if m.activeTab != TabSessions {
		t.Fatalf("activeTab = %v", m.activeTab)
	}

	next, _ = m.Update(statusMsg{data: &ipc.StatusData{WindowCount: 3, Revision: 9}})
	m = next.(model)
	if !m.daemonConnected || !strings.Contains(m.View(), "rev:9") {
		t.Fatalf("status bar should show revision")
	}
}
