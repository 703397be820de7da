package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

// windowsMsg carries the result of a window list refresh.
type windowsMsg struct {
	data *ipc.WindowsData
	err  error
}

// actionMsg reports the outcome of a window action.
type actionMsg struct {
	label string
	err   error
}

func fetchWindows(d Daemon) tea.Cmd {
	return func() tea.Msg {
		data, err := d.ListWindows()
		return windowsMsg{data: data, err: err}
	}
}

// windowItem is a list item representing a managed window.
type windowItem struct {
	info ipc.WindowInfo
}

func (i windowItem) Title() string {
	title := i.info.Title
	if title == "" {
		title = "(untitled)"
	}
	label := fmt.Sprintf("#%d %s", i.info.ID, title)
	if i.info.Focused {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●") + " " + label
	}
	return "  " + label
}

func (i windowItem) Description() string {
	state := i.info.State.String()
	if i.info.State == wm.StateSnapped {
		state += " " + i.info.Zone.String()
	}
	b := i.info.Bounds
	return fmt.Sprintf("%s | %g×%g @ %g,%g", state, b.Width, b.Height, b.X, b.Y)
}

func (i windowItem) FilterValue() string { return i.info.Title }

// buildWindowItems lists windows topmost first.
func buildWindowItems(data *ipc.WindowsData) []list.Item {
	if data == nil {
		return nil
	}
	items := make([]list.Item, 0, len(data.Windows))
	for i := len(data.Windows) - 1; i >= 0; i-- {
		items = append(items, windowItem{info: data.Windows[i]})
	}
	return items
}

var snapKeys = map[string]snap.Zone{
	"H": snap.ZoneLeft,
	"L": snap.ZoneRight,
	"K": snap.ZoneTop,
	"J": snap.ZoneBottom,
	"Y": snap.ZoneTopLeft,
	"U": snap.ZoneTopRight,
	"B": snap.ZoneBottomLeft,
	"N": snap.ZoneBottomRight,
}

// WindowsTab lists managed windows next to a scaled screen preview.
type WindowsTab struct {
	list   list.Model
	daemon Daemon
	data   *ipc.WindowsData
	status string
	err    error
	width  int
	height int
}

// NewWindowsTab creates the windows tab.
func NewWindowsTab(d Daemon) WindowsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return WindowsTab{list: l, daemon: d}
}

// Selected returns the id of the highlighted window.
func (t WindowsTab) Selected() (uint64, bool) {
	item, ok := t.list.SelectedItem().(windowItem)
	if !ok {
		return 0, false
	}
	return item.info.ID, true
}

// Update handles messages for the windows tab.
func (t WindowsTab) Update(msg tea.Msg) (WindowsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.listWidth(), t.height-1)
		return t, nil

	case windowsMsg:
		t.err = msg.err
		if msg.err == nil {
			t.setData(msg.data)
		}
		return t, nil

	case actionMsg:
		if msg.err != nil {
			t.status = fmt.Sprintf("%s: %v", msg.label, msg.err)
		} else {
			t.status = msg.label
		}
		return t, fetchWindows(t.daemon)

	case tea.KeyMsg:
		if cmd := t.handleKey(msg.String()); cmd != nil {
			return t, cmd
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t *WindowsTab) setData(data *ipc.WindowsData) {
	selected, had := t.Selected()
	t.data = data
	items := buildWindowItems(data)
	t.list.SetItems(items)
	if !had {
		return
	}
	for i, it := range items {
		if it.(windowItem).info.ID == selected {
			t.list.Select(i)
			return
		}
	}
}

func (t WindowsTab) handleKey(key string) tea.Cmd {
	d := t.daemon
	if key == "c" {
		return runAction("cycle focus", func() error {
			_, err := d.CycleFocus()
			return err
		})
	}
	if key == "R" {
		return fetchWindows(d)
	}

	id, ok := t.Selected()
	if !ok {
		return nil
	}
	if zone, ok := snapKeys[key]; ok {
		return runAction(fmt.Sprintf("snap #%d %s", id, zone), func() error {
			return d.SnapWindow(id, zone)
		})
	}
	switch key {
	case "enter", "f":
		return runAction(fmt.Sprintf("activate #%d", id), func() error { return d.ActivateWindow(id) })
	case "x", "delete":
		return runAction(fmt.Sprintf("close #%d", id), func() error { return d.CloseWindow(id) })
	case "m":
		return runAction(fmt.Sprintf("maximize #%d", id), func() error { return d.SetState(id, wm.StateMaximized) })
	case "n":
		return runAction(fmt.Sprintf("minimize #%d", id), func() error { return d.SetState(id, wm.StateMinimized) })
	case "r":
		return runAction(fmt.Sprintf("restore #%d", id), func() error { return d.SetState(id, wm.StateNormal) })
	}
	return nil
}

func runAction(label string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{label: label, err: fn()}
	}
}

func (t WindowsTab) listWidth() int {
	w := t.width * 2 / 5
	if w < 24 {
		w = 24
	}
	return w
}

// View renders the tab.
func (t WindowsTab) View() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	if t.err != nil && t.data == nil {
		style := lipgloss.NewStyle().
			Width(t.width).
			Height(t.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("Cannot reach daemon: " + t.err.Error())
	}

	left := t.list.View()

	previewW := t.width - t.listWidth() - 2
	previewH := t.height - 3
	selected, _ := t.Selected()
	preview := strings.Join(renderScreenPreview(t.data, selected, previewW, previewH), "\n")
	right := lipgloss.JoinVertical(lipgloss.Left,
		dimStyle.Render(summarizeScreen(t.data)),
		preview,
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)

	footer := "enter: activate  x: close  m/n/r: max/min/restore  HJKL YUBN: snap  c: cycle"
	if t.status != "" {
		footer = t.status
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, dimStyle.Render(footer))
}
