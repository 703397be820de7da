package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/snapwm/internal/session"
	"github.com/1broseidon/snapwm/internal/shell"
)

// AutosaverConfig holds configuration for the autosaver.
type AutosaverConfig struct {
	Interval time.Duration
	Path     string
	Logger   *slog.Logger
}

// Autosaver periodically writes the window layout to the session file when
// it has changed since the last write.
type Autosaver struct {
	shell  *shell.Shell
	logger *slog.Logger
	reset  chan struct{}

	mu       sync.Mutex
	interval time.Duration
	path     string
	lastRev  uint64
	saved    bool
}

// NewAutosaver creates an autosaver for sh.
func NewAutosaver(cfg AutosaverConfig, sh *shell.Shell) *Autosaver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Autosaver{
		shell:    sh,
		logger:   logger,
		reset:    make(chan struct{}, 1),
		interval: normalizeInterval(cfg.Interval),
		path:     cfg.Path,
	}
}

func normalizeInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Configure changes the session file and interval of a running autosaver.
func (a *Autosaver) Configure(cfg AutosaverConfig) {
	interval := normalizeInterval(cfg.Interval)
	a.mu.Lock()
	pathChanged := a.path != cfg.Path
	a.path = cfg.Path
	if pathChanged {
		a.saved = false
	}
	changed := a.interval != interval
	a.interval = interval
	a.mu.Unlock()

	if changed {
		// The loop reads the interval when woken, so one pending signal
		// covers any number of reloads.
		select {
		case a.reset <- struct{}{}:
		default:
		}
	}
}

func (a *Autosaver) currentInterval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}

// MarkClean records the current revision as saved, e.g. right after the
// layout was restored from the session file.
func (a *Autosaver) MarkClean() {
	rev := a.shell.Revision()
	a.mu.Lock()
	a.lastRev, a.saved = rev, true
	a.mu.Unlock()
}

// Run starts the autosave loop. Blocks until ctx is cancelled, then saves
// one last time.
func (a *Autosaver) Run(ctx context.Context) {
	a.mu.Lock()
	ticker := time.NewTicker(a.interval)
	a.logger.Info("autosave started", "interval", a.interval, "path", a.path)
	a.mu.Unlock()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.save()
			a.logger.Info("autosave stopped")
			return
		case <-a.reset:
			ticker.Reset(a.currentInterval())
		case <-ticker.C:
			a.save()
		}
	}
}

func (a *Autosaver) save() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			a.logger.Error("autosave panic recovered", "error", err)
		}
	}()
	if _, err := a.SaveNow(); err != nil {
		a.logger.Error("autosave failed", "error", err)
	}
}

// SaveNow writes the session file if the registry changed since the last
// write and reports whether it wrote.
func (a *Autosaver) SaveNow() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rev := a.shell.Revision()
	if a.saved && rev == a.lastRev {
		return false, nil
	}
	if a.path == "" {
		return false, nil
	}

	s := session.Capture(a.shell, "")
	if err := session.SaveFile(a.path, s); err != nil {
		return false, err
	}
	a.lastRev, a.saved = rev, true
	a.logger.Debug("session autosaved", "path", a.path, "windows", len(s.Windows), "revision", rev)
	return true, nil
}
