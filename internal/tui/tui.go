// Package tui is the interactive terminal front end for a running snapwm
// daemon: a window list with a scaled screen preview, a settings editor and
// a session manager.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/snapwm/internal/ipc"
)

// Run loads the config at configPath (empty for the default location) and
// runs the TUI until the user quits.
func Run(configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m := newModel(configPath, cfg, ipc.NewClient(), fileSessions{})
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
