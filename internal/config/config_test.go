package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/snapwm/internal/geom"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Snap.ActivationMargin != 20 {
		t.Fatalf("expected activation margin 20, got %d", cfg.Snap.ActivationMargin)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Window.MinWidth != 200 || res.Config.Window.MinHeight != 150 {
		t.Fatalf("unexpected minimum size %dx%d", res.Config.Window.MinWidth, res.Config.Window.MinHeight)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "info" {
		t.Fatalf("expected log_level info, got %q", res.Config.LogLevel)
	}
}

func TestLoadFromPath_OverridesKeepOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"screen:",
		"  width: 2560",
		"snap:",
		"  activation_margin: 32",
		"hotkeys:",
		"  maximize: Mod4-Return",
		"  close: \"\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Screen.Width != 2560 || cfg.Screen.Height != 1080 {
		t.Fatalf("unexpected screen %dx%d", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Snap.ActivationMargin != 32 || !cfg.Snap.Enabled {
		t.Fatalf("unexpected snap config %+v", cfg.Snap)
	}
	if cfg.Hotkeys[ActionMaximize] != "Mod4-Return" {
		t.Fatalf("expected maximize override, got %q", cfg.Hotkeys[ActionMaximize])
	}
	if cfg.Hotkeys[ActionSnapLeft] != "Mod4-Left" {
		t.Fatalf("expected builtin snap_left binding, got %q", cfg.Hotkeys[ActionSnapLeft])
	}
	if v, ok := cfg.Hotkeys[ActionClose]; !ok || v != "" {
		t.Fatalf("expected close to be disabled, got %q (present=%v)", v, ok)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "snap:\n  activation_margins: 10\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected unknown key error")
	}
	if !strings.Contains(err.Error(), "activation_margins") {
		t.Fatalf("expected error to name the key, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "window:\n  min_width: 300\n  default_width: 250\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "window.default_width" {
		t.Fatalf("expected path window.default_width, got %q", verr.Path)
	}
	if verr.Source.Line != 3 {
		t.Fatalf("expected line 3, got %d", verr.Source.Line)
	}
}

func TestLoadFromPath_Includes(t *testing.T) {
	dir := t.TempDir()
	incDir := filepath.Join(dir, "conf.d")
	if err := os.Mkdir(incDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(incDir, "10-screen.yaml"), "screen:\n  width: 1280\n  height: 720\n")
	writeFile(t, filepath.Join(incDir, "20-log.yml"), "log_level: debug\n")
	writeFile(t, filepath.Join(incDir, "notes.txt"), "ignored")

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: conf.d\nlog_level: warning\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Screen.Width != 1280 {
		t.Fatalf("expected included width, got %d", res.Config.Screen.Width)
	}
	if res.Config.LogLevel != "warning" {
		t.Fatalf("expected including file to win, got %q", res.Config.LogLevel)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Files)
	}
	if res.Config.Include != nil {
		t.Fatalf("include should not leak into the effective config")
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad source", func(c *Config) { c.Screen.Source = "wayland" }, "screen.source"},
		{"zero width", func(c *Config) { c.Screen.Width = 0 }, "screen.width"},
		{"negative padding", func(c *Config) { c.ScreenPadding.Bottom = -1 }, "screen_padding"},
		{"padding fills screen", func(c *Config) { c.ScreenPadding.Top = 1080 }, "screen_padding"},
		{"negative margin", func(c *Config) { c.Snap.ActivationMargin = -5 }, "snap.activation_margin"},
		{"merge ratio below one", func(c *Config) { c.Damage.MergeRatio = 0.5 }, "damage.merge_ratio"},
		{"unknown action", func(c *Config) { c.Hotkeys["fly"] = "Mod4-f" }, "hotkeys.fly"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestRegistryOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScreenPadding.Bottom = 48
	opts := cfg.RegistryOptions(cfg.ScreenRect())

	if opts.Screen != (geom.Rect{Width: 1920, Height: 1080}) {
		t.Fatalf("unexpected screen %+v", opts.Screen)
	}
	if opts.Padding.Bottom != 48 || opts.SnapMargin != 20 {
		t.Fatalf("unexpected options %+v", opts)
	}

	cfg.Snap.Enabled = false
	if got := cfg.RegistryOptions(cfg.ScreenRect()).SnapMargin; got != 0 {
		t.Fatalf("disabled snapping should zero the margin, got %v", got)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "snap:\n  activation_margin: 12\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "snap.activation_margin")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 12 {
		t.Fatalf("expected 12, got %#v", val)
	}
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected source %+v", src)
	}

	val, src, err = Explain(res, "hotkeys.cycle_focus")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "Mod1-Tab" || src.Kind != SourceDefault {
		t.Fatalf("unexpected %v from %+v", val, src)
	}

	if _, _, err := Explain(res, "snap.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.yaml")
	cfg := DefaultConfig()
	cfg.Window.TitleBarHeight = 24

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Window.TitleBarHeight != 24 {
		t.Fatalf("expected title bar 24, got %d", res.Config.Window.TitleBarHeight)
	}
}

func TestWatcher_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "log_level: info\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	writeFile(t, filepath.Join(dir, "other.yaml"), "x: 1\n")
	writeFile(t, path, "log_level: debug\n")

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a change notification")
	}
}

func TestWatcher_SignalsOnIncludedFile(t *testing.T) {
	dir := t.TempDir()
	incDir := filepath.Join(dir, "conf.d")
	if err := os.MkdirAll(incDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	inc := filepath.Join(incDir, "snap.yaml")
	writeFile(t, path, "include: conf.d/snap.yaml\n")
	writeFile(t, inc, "snap:\n  activation_margin: 30\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	w.debounce = 10 * time.Millisecond
	if err := w.Track(res.Files); err != nil {
		t.Fatalf("track: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	writeFile(t, inc, "snap:\n  activation_margin: 40\n")

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a change notification for the included file")
	}
}
