package daemon

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/snapwm/internal/config"
	"github.com/1broseidon/snapwm/internal/session"
	"github.com/1broseidon/snapwm/internal/shell"
	"github.com/1broseidon/snapwm/internal/wm"
	"github.com/1broseidon/snapwm/internal/x11"
)

// ScreenProber reports the live screen geometry.
type ScreenProber interface {
	ActiveScreen() (x11.Screen, error)
}

// HotkeyBinder replaces the active key grabs.
type HotkeyBinder interface {
	Bind(bindings map[string]string) error
}

// RegistryOptions resolves the screen for cfg and converts it to registry
// options. With the x11 source, padding reserved by docks is added to the
// configured padding.
func RegistryOptions(cfg *config.Config, prober ScreenProber) (wm.Options, error) {
	if cfg.Screen.Source != config.ScreenSourceX11 {
		return cfg.RegistryOptions(cfg.ScreenRect()), nil
	}
	if prober == nil {
		return wm.Options{}, fmt.Errorf("screen.source is x11 but no X connection is available")
	}
	scr, err := prober.ActiveScreen()
	if err != nil {
		return wm.Options{}, fmt.Errorf("failed to read X screen: %w", err)
	}
	opts := cfg.RegistryOptions(scr.Bounds)
	opts.Padding.Top += scr.Padding.Top
	opts.Padding.Right += scr.Padding.Right
	opts.Padding.Bottom += scr.Padding.Bottom
	opts.Padding.Left += scr.Padding.Left
	return opts, nil
}

// SessionPath resolves a session name against cfg. The empty name is the
// autosave file.
func SessionPath(cfg *config.Config, name string) (string, error) {
	if name != "" {
		return session.Path(name)
	}
	if cfg.Session.File != "" {
		return cfg.Session.File, nil
	}
	return session.DefaultPath()
}

// FileTracker is told which files the last successful load read.
type FileTracker interface {
	Track(paths []string) error
}

// ConfigSync owns the current configuration and pushes it into the running
// components whenever it is reloaded.
type ConfigSync struct {
	path      string
	shell     *shell.Shell
	prober    ScreenProber
	hotkeys   HotkeyBinder
	autosaver *Autosaver
	level     *slog.LevelVar
	logger    *slog.Logger

	mu      sync.RWMutex
	cfg     *config.Config
	tracker FileTracker
}

// SyncOptions wire a ConfigSync. Only Path, Config and Shell are required.
type SyncOptions struct {
	Path      string
	Config    *config.Config
	Shell     *shell.Shell
	Prober    ScreenProber
	Hotkeys   HotkeyBinder
	Autosaver *Autosaver
	Level     *slog.LevelVar
	Logger    *slog.Logger
}

// NewConfigSync creates a synchronizer seeded with opts.Config.
func NewConfigSync(opts SyncOptions) *ConfigSync {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ConfigSync{
		path:      opts.Path,
		shell:     opts.Shell,
		prober:    opts.Prober,
		hotkeys:   opts.Hotkeys,
		autosaver: opts.Autosaver,
		level:     opts.Level,
		logger:    logger,
		cfg:       opts.Config,
	}
}

// Config returns the active configuration.
func (s *ConfigSync) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SessionPath resolves name against the active configuration.
func (s *ConfigSync) SessionPath(name string) (string, error) {
	return SessionPath(s.Config(), name)
}

// SetTracker makes every successful Reload refresh t with the loaded files.
func (s *ConfigSync) SetTracker(t FileTracker) {
	s.mu.Lock()
	s.tracker = t
	s.mu.Unlock()
}

// Reload re-reads the config file and applies it. On error the running
// configuration is left untouched.
func (s *ConfigSync) Reload() error {
	res, err := config.LoadFromPath(s.path)
	if err != nil {
		return err
	}
	if err := s.Apply(res.Config); err != nil {
		return err
	}
	s.mu.RLock()
	tracker := s.tracker
	s.mu.RUnlock()
	if tracker != nil {
		if err := tracker.Track(res.Files); err != nil {
			s.logger.Warn("included config files will not be watched", "error", err)
		}
	}
	s.logger.Info("config reloaded", "path", s.path, "files", len(res.Files))
	return nil
}

// Apply pushes cfg into the shell, log level, hotkeys and autosaver.
func (s *ConfigSync) Apply(cfg *config.Config) error {
	opts, err := RegistryOptions(cfg, s.prober)
	if err != nil {
		return err
	}
	if s.level != nil {
		if lvl, err := config.ParseLogLevel(cfg.LogLevel); err == nil {
			s.level.Set(lvl)
		}
	}

	s.shell.Reconfigure(opts, cfg.DamageOptions())

	if s.hotkeys != nil {
		if err := s.hotkeys.Bind(cfg.Hotkeys); err != nil {
			s.logger.Warn("some hotkeys could not be bound", "error", err)
		}
	}

	if s.autosaver != nil {
		path, err := SessionPath(cfg, "")
		if err != nil {
			return err
		}
		s.autosaver.Configure(AutosaverConfig{
			Interval: time.Duration(cfg.Session.AutosaveIntervalSeconds) * time.Second,
			Path:     path,
		})
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// RefreshScreen re-reads the X screen without reloading the config file and
// reports whether the geometry changed.
func (s *ConfigSync) RefreshScreen() (bool, error) {
	cfg := s.Config()
	if cfg.Screen.Source != config.ScreenSourceX11 {
		return false, nil
	}
	opts, err := RegistryOptions(cfg, s.prober)
	if err != nil {
		return false, err
	}
	var cur wm.Options
	s.shell.View(func(r *wm.Registry) { cur = r.Options() })
	if cur.Screen == opts.Screen && cur.Padding == opts.Padding {
		return false, nil
	}
	s.shell.Reconfigure(opts, cfg.DamageOptions())
	return true, nil
}
