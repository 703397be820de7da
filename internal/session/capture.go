package session

import (
	"fmt"
	"time"

	"github.com/1broseidon/snapwm/internal/shell"
	"github.com/1broseidon/snapwm/internal/wm"
)

// Capture snapshots the shell's windows into a new Session.
func Capture(sh *shell.Shell, name string) *Session {
	s := &Session{Version: FormatVersion, Name: name, SavedAt: time.Now().UTC()}
	sh.View(func(r *wm.Registry) {
		s.Screen = r.Screen()
		s.Windows = r.Snapshot()
	})
	return s
}

// Apply replaces the shell's windows with the ones in s. Geometry is
// re-laid out against the shell's current screen, not the saved one.
func Apply(sh *shell.Shell, s *Session) error {
	return sh.Do(func(r *wm.Registry) error {
		if err := r.Restore(s.Windows); err != nil {
			return fmt.Errorf("failed to restore session %q: %w", s.Name, err)
		}
		return nil
	})
}
