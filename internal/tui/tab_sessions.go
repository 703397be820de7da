package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/session"
)

type sessionItem string

func (i sessionItem) Title() string       { return string(i) }
func (i sessionItem) Description() string { return "saved session" }
func (i sessionItem) FilterValue() string { return string(i) }

// SessionStore lists and removes named sessions on disk.
type SessionStore interface {
	List() ([]string, error)
	Delete(name string) error
}

type fileSessions struct{}

func (fileSessions) List() ([]string, error)  { return session.List() }
func (fileSessions) Delete(name string) error { return session.Delete(name) }

// SessionsTab lists named sessions and saves or loads them through the daemon.
type SessionsTab struct {
	list   list.Model
	daemon Daemon
	store  SessionStore
	status string
	width  int
	height int

	naming    bool
	textInput textinput.Model
}

// NewSessionsTab creates the sessions tab.
func NewSessionsTab(d Daemon, store SessionStore) SessionsTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "session name"
	ti.CharLimit = 64

	t := SessionsTab{list: l, daemon: d, store: store, textInput: ti}
	t.reload()
	return t
}

func (t *SessionsTab) reload() {
	names, err := t.store.List()
	if err != nil {
		t.status = err.Error()
		return
	}
	items := make([]list.Item, 0, len(names))
	for _, n := range names {
		items = append(items, sessionItem(n))
	}
	t.list.SetItems(items)
}

// Update handles messages for the sessions tab.
func (t SessionsTab) Update(msg tea.Msg) (SessionsTab, tea.Cmd) {
	if t.naming {
		return t.updateNaming(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.width, t.height-2)
		return t, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "s", "a":
			t.naming = true
			t.textInput.Reset()
			t.textInput.Focus()
			return t, textinput.Blink
		case "enter", "l":
			if item, ok := t.list.SelectedItem().(sessionItem); ok {
				data, err := t.daemon.LoadSession(string(item))
				t.status = sessionStatus("loaded", string(item), data, err)
			}
			return t, nil
		case "x", "delete":
			if item, ok := t.list.SelectedItem().(sessionItem); ok {
				if err := t.store.Delete(string(item)); err != nil {
					t.status = err.Error()
				} else {
					t.status = fmt.Sprintf("deleted %q", string(item))
				}
				t.reload()
			}
			return t, nil
		case "R":
			t.reload()
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t SessionsTab) updateNaming(msg tea.Msg) (SessionsTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			name := strings.TrimSpace(t.textInput.Value())
			if name != "" {
				data, err := t.daemon.SaveSession(name)
				t.status = sessionStatus("saved", name, data, err)
				t.reload()
			}
			t.naming = false
			t.textInput.Blur()
			return t, nil
		case "esc":
			t.naming = false
			t.textInput.Blur()
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.textInput, cmd = t.textInput.Update(msg)
	return t, cmd
}

func sessionStatus(verb, name string, data *ipc.SessionData, err error) string {
	if err != nil {
		return fmt.Sprintf("%s: %v", name, err)
	}
	return fmt.Sprintf("%s %q (%d windows)", verb, name, data.Windows)
}

// View renders the tab.
func (t SessionsTab) View() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	footer := dimStyle.Render("enter: load  s: save as  x: delete  R: refresh")
	if t.naming {
		footer = "Save as: " + t.textInput.View()
	} else if t.status != "" {
		footer = dimStyle.Render(t.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, t.list.View(), "", footer)
}
