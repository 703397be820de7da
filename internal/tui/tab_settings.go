package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/snapwm/internal/config"
)

// SettingsTab shows and edits the snap, window, padding and damage settings.
type SettingsTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fSnapEnabled   bool
	fMargin        string
	fDefaultWidth  string
	fDefaultHeight string
	fMinWidth      string
	fMinHeight     string
	fTitleBar      string
	fPaddingTop    string
	fPaddingBottom string
	fPaddingLeft   string
	fPaddingRight  string
	fMergeRatio    string
	fMaxRects      string
	fLogLevel      string
}

// NewSettingsTab creates a SettingsTab from the loaded config.
func NewSettingsTab(cfg *config.Config) SettingsTab {
	return SettingsTab{cfg: cfg}
}

// Update implements tea.Model.
func (s SettingsTab) Update(msg tea.Msg) (SettingsTab, tea.Cmd) {
	if s.editing {
		return s.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" && s.cfg != nil {
			s.startEditing()
			return s, s.form.Init()
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}
	return s, nil
}

func (s SettingsTab) updateEditing(msg tea.Msg) (SettingsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			s.editing = false
			s.form = nil
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.applyForm()
		s.editing = false
		s.form = nil
		return s, nil
	}
	return s, cmd
}

func (s *SettingsTab) startEditing() {
	cfg := s.cfg
	s.fSnapEnabled = cfg.Snap.Enabled
	s.fMargin = strconv.Itoa(cfg.Snap.ActivationMargin)
	s.fDefaultWidth = strconv.Itoa(cfg.Window.DefaultWidth)
	s.fDefaultHeight = strconv.Itoa(cfg.Window.DefaultHeight)
	s.fMinWidth = strconv.Itoa(cfg.Window.MinWidth)
	s.fMinHeight = strconv.Itoa(cfg.Window.MinHeight)
	s.fTitleBar = strconv.Itoa(cfg.Window.TitleBarHeight)
	s.fPaddingTop = strconv.Itoa(cfg.ScreenPadding.Top)
	s.fPaddingBottom = strconv.Itoa(cfg.ScreenPadding.Bottom)
	s.fPaddingLeft = strconv.Itoa(cfg.ScreenPadding.Left)
	s.fPaddingRight = strconv.Itoa(cfg.ScreenPadding.Right)
	s.fMergeRatio = strconv.FormatFloat(cfg.Damage.MergeRatio, 'g', -1, 64)
	s.fMaxRects = strconv.Itoa(cfg.Damage.MaxRects)
	s.fLogLevel = cfg.LogLevel

	w := s.width - 4
	if w < 40 {
		w = 40
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("snap_enabled").
				Title("Drag To Snap").
				Description("Offer snap zones while dragging").
				Value(&s.fSnapEnabled),
			huh.NewInput().
				Key("activation_margin").
				Title("Activation Margin").
				Description("Pixels from a screen edge that arm a zone").
				Validate(nonNegativeInt).
				Value(&s.fMargin),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&s.fLogLevel),
		),
		huh.NewGroup(
			huh.NewInput().Key("default_width").Title("Default Width").Validate(positiveInt).Value(&s.fDefaultWidth),
			huh.NewInput().Key("default_height").Title("Default Height").Validate(positiveInt).Value(&s.fDefaultHeight),
			huh.NewInput().Key("min_width").Title("Minimum Width").Validate(positiveInt).Value(&s.fMinWidth),
			huh.NewInput().Key("min_height").Title("Minimum Height").Validate(positiveInt).Value(&s.fMinHeight),
			huh.NewInput().Key("title_bar_height").Title("Title Bar Height").Validate(positiveInt).Value(&s.fTitleBar),
		),
		huh.NewGroup(
			huh.NewInput().Key("padding_top").Title("Screen Padding: Top").Validate(nonNegativeInt).Value(&s.fPaddingTop),
			huh.NewInput().Key("padding_bottom").Title("Screen Padding: Bottom").Validate(nonNegativeInt).Value(&s.fPaddingBottom),
			huh.NewInput().Key("padding_left").Title("Screen Padding: Left").Validate(nonNegativeInt).Value(&s.fPaddingLeft),
			huh.NewInput().Key("padding_right").Title("Screen Padding: Right").Validate(nonNegativeInt).Value(&s.fPaddingRight),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("merge_ratio").
				Title("Damage Merge Ratio").
				Description("Merge two dirty rects when their union wastes less than this share").
				Value(&s.fMergeRatio),
			huh.NewInput().
				Key("max_rects").
				Title("Damage Max Rects").
				Description("Collapse to one bounding rect past this count").
				Validate(positiveInt).
				Value(&s.fMaxRects),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
}

func nonNegativeInt(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fmt.Errorf("must be a whole number >= 0")
	}
	return nil
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a whole number > 0")
	}
	return nil
}

func (s *SettingsTab) applyForm() {
	if s.cfg == nil {
		return
	}
	setInt := func(dst *int, v string, min int) {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= min {
			*dst = n
		}
	}

	s.cfg.Snap.Enabled = s.fSnapEnabled
	setInt(&s.cfg.Snap.ActivationMargin, s.fMargin, 0)
	setInt(&s.cfg.Window.DefaultWidth, s.fDefaultWidth, 1)
	setInt(&s.cfg.Window.DefaultHeight, s.fDefaultHeight, 1)
	setInt(&s.cfg.Window.MinWidth, s.fMinWidth, 1)
	setInt(&s.cfg.Window.MinHeight, s.fMinHeight, 1)
	setInt(&s.cfg.Window.TitleBarHeight, s.fTitleBar, 1)
	setInt(&s.cfg.ScreenPadding.Top, s.fPaddingTop, 0)
	setInt(&s.cfg.ScreenPadding.Bottom, s.fPaddingBottom, 0)
	setInt(&s.cfg.ScreenPadding.Left, s.fPaddingLeft, 0)
	setInt(&s.cfg.ScreenPadding.Right, s.fPaddingRight, 0)
	setInt(&s.cfg.Damage.MaxRects, s.fMaxRects, 1)
	if v, err := strconv.ParseFloat(strings.TrimSpace(s.fMergeRatio), 64); err == nil && v >= 0 {
		s.cfg.Damage.MergeRatio = v
	}
	if s.fLogLevel != "" {
		s.cfg.LogLevel = s.fLogLevel
	}
}

// View implements tea.Model.
func (s SettingsTab) View() string {
	if s.editing && s.form != nil {
		header := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Editing Settings") +
			lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Render("  (esc to cancel)")
		return lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Padding(1, 2).
			Render(header + "\n\n" + s.form.View())
	}

	cfg := s.cfg
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(s.width).
			Height(s.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)
	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	screen := fmt.Sprintf("%d×%d (%s)", cfg.Screen.Width, cfg.Screen.Height, cfg.Screen.Source)
	padding := fmt.Sprintf("top:%d bottom:%d left:%d right:%d",
		cfg.ScreenPadding.Top, cfg.ScreenPadding.Bottom,
		cfg.ScreenPadding.Left, cfg.ScreenPadding.Right)

	lines := []string{
		"",
		row("Screen", screen),
		row("Screen Padding", padding),
		"",
		row("Drag To Snap", strconv.FormatBool(cfg.Snap.Enabled)),
		row("Activation Margin", strconv.Itoa(cfg.Snap.ActivationMargin)),
		"",
		row("Default Size", fmt.Sprintf("%d×%d", cfg.Window.DefaultWidth, cfg.Window.DefaultHeight)),
		row("Minimum Size", fmt.Sprintf("%d×%d", cfg.Window.MinWidth, cfg.Window.MinHeight)),
		row("Title Bar Height", strconv.Itoa(cfg.Window.TitleBarHeight)),
		"",
		row("Damage Merge Ratio", strconv.FormatFloat(cfg.Damage.MergeRatio, 'g', -1, 64)),
		row("Damage Max Rects", strconv.Itoa(cfg.Damage.MaxRects)),
		row("Log Level", cfg.LogLevel),
		"",
		dimStyle.Render("  Press 'e' to edit settings, ctrl+s to save"),
	}

	return lipgloss.NewStyle().
		Width(s.width).
		Height(s.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}
