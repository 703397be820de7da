package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/snapwm/internal/config"
)

type savePhase int

const (
	saveHidden savePhase = iota
	savePreview
	saveResult
)

// restartKeys are read once when the daemon starts. A reload leaves them
// alone.
var restartKeys = map[string]bool{
	"display":                  true,
	"xauthority":               true,
	"screen.source":            true,
	"session.restore_on_start": true,
}

// configChange is one leaf key whose value differs between two configs.
// An empty old or new value means the key is absent on that side.
type configChange struct {
	key      string
	old, new string
	restart  bool
}

func (c configChange) section() string {
	if i := strings.IndexByte(c.key, '.'); i >= 0 {
		return c.key[:i]
	}
	return c.key
}

func (c configChange) leaf() string {
	if i := strings.IndexByte(c.key, '.'); i >= 0 {
		return c.key[i+1:]
	}
	return c.key
}

// SaveOverlay previews the pending config changes, writes the file and asks
// the daemon to reload it.
type SaveOverlay struct {
	phase        savePhase
	changes      []configChange
	err          error
	reloaded     bool
	scrollOffset int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show compares current against original and opens the preview.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.reloaded = false
	s.scrollOffset = 0

	changes, err := diffConfig(original, current)
	switch {
	case err != nil:
		s.phase, s.err = saveResult, err
	case len(changes) == 0:
		s.phase, s.err = saveResult, fmt.Errorf("no changes to save")
	default:
		s.phase, s.changes = savePreview, changes
	}
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

func (s SaveOverlay) pendingRestart() []string {
	var keys []string
	for _, c := range s.changes {
		if c.restart {
			keys = append(keys, c.key)
		}
	}
	return keys
}

// Update handles input while the overlay is active. An empty path saves to
// the default config location.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string, d Daemon, connected bool) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	switch s.phase {
	case savePreview:
		switch km.String() {
		case "esc", "q":
			s.phase = saveHidden
		case "enter", "y":
			if path == "" {
				s.err = cfg.Save()
			} else {
				s.err = cfg.SaveTo(path)
			}
			if s.err == nil && connected && d != nil {
				s.reloaded = d.Reload() == nil
			}
			s.phase = saveResult
		case "up", "k":
			s.scrollOffset = max(s.scrollOffset-1, 0)
		case "down", "j":
			s.scrollOffset++
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

// View renders the overlay centred in a width by height area.
func (s SaveOverlay) View(width, height int) string {
	var content string
	boxW := min(max(width-8, 30), 80)
	switch s.phase {
	case savePreview:
		content = s.previewContent(boxW-6, height)
	case saveResult:
		boxW = min(boxW, 64)
		content = s.resultContent()
	default:
		return ""
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// changeRows lays the changes out one section header followed by its keys.
func (s SaveOverlay) changeRows(innerW int) []string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	oldStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	newStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	restartStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	var rows []string
	section := ""
	for _, c := range s.changes {
		if sec := c.section(); sec != section {
			section = sec
			rows = append(rows, sectionStyle.Render(sec))
		}
		old, cur := c.old, c.new
		if old == "" {
			old = "(unset)"
		}
		if cur == "" {
			cur = "(unset)"
		}
		label := c.leaf()
		if label == c.key {
			label = "value"
		}
		valW := max((innerW-len(label)-8)/2, 4)
		row := "  " + label + ": " + oldStyle.Render(truncate(old, valW)) +
			" → " + newStyle.Render(truncate(cur, valW))
		if c.restart {
			row += restartStyle.Render(" (restart)")
		}
		rows = append(rows, row)
	}
	return rows
}

func (s SaveOverlay) previewContent(innerW, areaH int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).
		Render(fmt.Sprintf("Save Config: %d change(s)", len(s.changes)))
	footStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	rows := s.changeRows(max(innerW, 10))
	visible := max(areaH-12, 3)
	off := min(s.scrollOffset, max(len(rows)-visible, 0))
	end := min(off+visible, len(rows))

	var note string
	if n := len(s.pendingRestart()); n > 0 {
		note = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).
			Render(fmt.Sprintf("%d change(s) take effect after a daemon restart", n)) + "\n"
	} else {
		note = footStyle.Render("all changes apply on reload") + "\n"
	}
	footer := footStyle.Render("enter: save and reload  esc: cancel  j/k: scroll")
	return title + "\n\n" + strings.Join(rows[off:end], "\n") + "\n\n" + note + footer
}

func (s SaveOverlay) resultContent() string {
	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).
			Render("Error: " + s.err.Error())
	} else {
		okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		msg = okStyle.Bold(true).Render("Config saved")
		if s.reloaded {
			msg += "\n" + okStyle.Render("Daemon reloaded")
		} else {
			msg += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("241")).
				Render("Daemon not reloaded; run 'snapwm reload'")
		}
		if keys := s.pendingRestart(); len(keys) > 0 {
			msg += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("214")).
				Render("Restart the daemon to apply "+strings.Join(keys, ", "))
		}
	}
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("press any key to dismiss")
	return msg + "\n\n" + footer
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// diffConfig lists changed leaf keys in file order, keys only present in
// original last.
func diffConfig(original, current *config.Config) ([]configChange, error) {
	if original == nil || current == nil {
		return nil, nil
	}
	oldKeys, oldVals, err := flattenConfig(original)
	if err != nil {
		return nil, err
	}
	newKeys, newVals, err := flattenConfig(current)
	if err != nil {
		return nil, err
	}

	var out []configChange
	add := func(key string) {
		if oldVals[key] != newVals[key] {
			out = append(out, configChange{key: key, old: oldVals[key], new: newVals[key], restart: restartKeys[key]})
		}
	}
	for _, k := range newKeys {
		add(k)
	}
	for _, k := range oldKeys {
		if _, ok := newVals[k]; !ok {
			add(k)
		}
	}
	return out, nil
}

// flattenConfig encodes cfg as a YAML node tree and returns its leaves as
// dotted keys, in encoding order, with their flow-style values.
func flattenConfig(cfg *config.Config) ([]string, map[string]string, error) {
	var root yaml.Node
	if err := root.Encode(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to encode config: %w", err)
	}
	var keys []string
	vals := map[string]string{}
	var walk func(prefix string, n *yaml.Node)
	walk = func(prefix string, n *yaml.Node) {
		if n.Kind == yaml.MappingNode && len(n.Content) > 0 {
			for i := 0; i+1 < len(n.Content); i += 2 {
				key := n.Content[i].Value
				if prefix != "" {
					key = prefix + "." + key
				}
				walk(key, n.Content[i+1])
			}
			return
		}
		if prefix == "" {
			return
		}
		keys = append(keys, prefix)
		vals[prefix] = leafValue(n)
	}
	walk("", &root)
	return keys, vals, nil
}

func leafValue(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			parts = append(parts, leafValue(c))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case yaml.MappingNode:
		return "{}"
	}
	return ""
}

// cloneConfig deep-copies cfg through YAML.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil
	}
	var clone config.Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		return nil
	}
	return &clone
}
