package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/snapwm/internal/config"
	"github.com/1broseidon/snapwm/internal/ipc"
)

const refreshInterval = time.Second

// tickMsg triggers a periodic daemon refresh.
type tickMsg time.Time

// statusMsg carries the result of a status poll.
type statusMsg struct {
	data *ipc.StatusData
	err  error
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func fetchStatus(d Daemon) tea.Cmd {
	return func() tea.Msg {
		data, err := d.GetStatus()
		return statusMsg{data: data, err: err}
	}
}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	cfg        *config.Config
	daemon     Daemon

	activeTab Tab

	windowsTab  WindowsTab
	settingsTab SettingsTab
	sessionsTab SessionsTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	daemonConnected bool
	status          *ipc.StatusData

	width  int
	height int
}

func newModel(configPath string, cfg *config.Config, d Daemon, store SessionStore) model {
	m := model{
		configPath: configPath,
		cfg:        cfg,
		daemon:     d,
		activeTab:  TabWindows,
	}
	m.originalConfig = cloneConfig(cfg)
	m.windowsTab = NewWindowsTab(d)
	m.settingsTab = NewSettingsTab(cfg)
	m.sessionsTab = NewSessionsTab(d, store)
	return m
}

func loadConfig(path string) (*config.Config, error) {
	var res *config.LoadResult
	var err error
	if path == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(path)
	}
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(fetchStatus(m.daemon), fetchWindows(m.daemon), tick())
}

func (m *model) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	sub := tea.WindowSizeMsg{Width: m.width, Height: h}
	m.windowsTab, _ = m.windowsTab.Update(sub)
	m.settingsTab, _ = m.settingsTab.Update(sub)
	m.sessionsTab, _ = m.sessionsTab.Update(sub)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Polling continues under overlays and forms.
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(fetchStatus(m.daemon), fetchWindows(m.daemon), tick())
	case statusMsg:
		m.daemonConnected = msg.err == nil
		m.status = msg.data
		return m, nil
	case windowsMsg, actionMsg:
		var cmd tea.Cmd
		m.windowsTab, cmd = m.windowsTab.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(km, m.cfg, m.configPath, m.daemon, m.daemonConnected)
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.cfg)
			}
		}
		return m, nil
	}

	km, isKey := msg.(tea.KeyMsg)
	if isKey && km.String() == "ctrl+s" {
		if m.cfg != nil {
			m.saveOverlay.Show(m.originalConfig, m.cfg)
		}
		return m, nil
	}

	// Forms and text inputs consume every key but ctrl+c.
	capturing := (m.activeTab == TabSettings && m.settingsTab.editing) ||
		(m.activeTab == TabSessions && m.sessionsTab.naming)
	if capturing {
		if isKey && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case TabSettings:
			m.settingsTab, cmd = m.settingsTab.Update(msg)
		case TabSessions:
			m.sessionsTab, cmd = m.sessionsTab.Update(msg)
		}
		return m, cmd
	}

	if isKey {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabWindows
			return m, nil
		case "2":
			m.activeTab = TabSettings
			return m, nil
		case "3":
			m.activeTab = TabSessions
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabWindows:
		m.windowsTab, cmd = m.windowsTab.Update(msg)
	case TabSettings:
		m.settingsTab, cmd = m.settingsTab.Update(msg)
	case TabSessions:
		m.sessionsTab, cmd = m.sessionsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.daemonConnected, m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabWindows:
			content = m.windowsTab.View()
		case TabSettings:
			content = m.settingsTab.View()
		case TabSessions:
			content = m.sessionsTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
