package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/snapwm/internal/damage"
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

// ScreenSource selects where the screen rectangle comes from.
type ScreenSource string

const (
	ScreenSourceConfig ScreenSource = "config" // screen.width/height below
	ScreenSourceX11    ScreenSource = "x11"    // root window and _NET_WORKAREA
)

// Screen describes the managed screen.
type Screen struct {
	Source ScreenSource `yaml:"source"`
	Width  int          `yaml:"width"`
	Height int          `yaml:"height"`
}

// Margins reserve space along the screen edges, e.g. for a taskbar.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// Snap configures drag-to-snap.
type Snap struct {
	Enabled          bool `yaml:"enabled"`
	ActivationMargin int  `yaml:"activation_margin"`
}

// Window holds per-window defaults.
type Window struct {
	DefaultWidth   int `yaml:"default_width"`
	DefaultHeight  int `yaml:"default_height"`
	MinWidth       int `yaml:"min_width"`
	MinHeight      int `yaml:"min_height"`
	TitleBarHeight int `yaml:"title_bar_height"`
}

// Damage tunes dirty-region coalescing.
type Damage struct {
	MergeRatio float64 `yaml:"merge_ratio"`
	MaxRects   int     `yaml:"max_rects"`
}

// Session configures autosave.
type Session struct {
	// File is the autosave path. Empty selects ~/.config/snapwm/session.json.
	File                    string `yaml:"file,omitempty"`
	AutosaveIntervalSeconds int    `yaml:"autosave_interval_seconds"`
	RestoreOnStart          bool   `yaml:"restore_on_start"`
}

// Config is the effective daemon configuration.
type Config struct {
	Include IncludeList `yaml:"include,omitempty"`

	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`

	Screen        Screen            `yaml:"screen"`
	ScreenPadding Margins           `yaml:"screen_padding"`
	Snap          Snap              `yaml:"snap"`
	Window        Window            `yaml:"window"`
	Damage        Damage            `yaml:"damage"`
	Hotkeys       map[string]string `yaml:"hotkeys"`
	Session       Session           `yaml:"session"`
	LogLevel      string            `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Screen: Screen{
			Source: ScreenSourceConfig,
			Width:  1920,
			Height: 1080,
		},
		Snap: Snap{
			Enabled:          true,
			ActivationMargin: snap.DefaultMargin,
		},
		Window: Window{
			DefaultWidth:   800,
			DefaultHeight:  600,
			MinWidth:       200,
			MinHeight:      150,
			TitleBarHeight: 30,
		},
		Damage: Damage{
			MergeRatio: damage.DefaultMergeRatio,
			MaxRects:   damage.DefaultMaxRects,
		},
		Hotkeys: BuiltinHotkeys(),
		Session: Session{
			AutosaveIntervalSeconds: 30,
			RestoreOnStart:          true,
		},
		LogLevel: "info",
	}
}

// ValidationError points at the config key that failed validation.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks every value and returns the first problem found.
func (c *Config) Validate() error {
	switch c.Screen.Source {
	case ScreenSourceConfig, ScreenSourceX11:
	default:
		return &ValidationError{Path: "screen.source", Err: fmt.Errorf("screen.source must be one of: config, x11")}
	}
	if c.Screen.Width <= 0 {
		return &ValidationError{Path: "screen.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Screen.Height <= 0 {
		return &ValidationError{Path: "screen.height", Err: fmt.Errorf("height must be > 0")}
	}
	p := c.ScreenPadding
	if p.Top < 0 || p.Bottom < 0 || p.Left < 0 || p.Right < 0 {
		return &ValidationError{Path: "screen_padding", Err: fmt.Errorf("screen_padding values must be >= 0")}
	}
	if p.Left+p.Right >= c.Screen.Width || p.Top+p.Bottom >= c.Screen.Height {
		return &ValidationError{Path: "screen_padding", Err: fmt.Errorf("screen_padding leaves no work area")}
	}
	if c.Snap.ActivationMargin < 0 {
		return &ValidationError{Path: "snap.activation_margin", Err: fmt.Errorf("activation_margin must be >= 0")}
	}
	if c.Window.MinWidth < 1 {
		return &ValidationError{Path: "window.min_width", Err: fmt.Errorf("min_width must be >= 1")}
	}
	if c.Window.MinHeight < 1 {
		return &ValidationError{Path: "window.min_height", Err: fmt.Errorf("min_height must be >= 1")}
	}
	if c.Window.DefaultWidth < c.Window.MinWidth {
		return &ValidationError{Path: "window.default_width", Err: fmt.Errorf("default_width must be >= min_width (%d)", c.Window.MinWidth)}
	}
	if c.Window.DefaultHeight < c.Window.MinHeight {
		return &ValidationError{Path: "window.default_height", Err: fmt.Errorf("default_height must be >= min_height (%d)", c.Window.MinHeight)}
	}
	if c.Window.TitleBarHeight < 0 {
		return &ValidationError{Path: "window.title_bar_height", Err: fmt.Errorf("title_bar_height must be >= 0")}
	}
	if c.Damage.MergeRatio < 1 {
		return &ValidationError{Path: "damage.merge_ratio", Err: fmt.Errorf("merge_ratio must be >= 1")}
	}
	if c.Damage.MaxRects < 1 {
		return &ValidationError{Path: "damage.max_rects", Err: fmt.Errorf("max_rects must be >= 1")}
	}
	if c.Hotkeys == nil {
		return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("hotkeys must not be null")}
	}
	for _, action := range sortedKeys(c.Hotkeys) {
		if !isKnownAction(action) {
			return &ValidationError{Path: "hotkeys." + action, Err: fmt.Errorf("unknown action (known: %s)", strings.Join(KnownActions(), ", "))}
		}
	}
	if c.Session.AutosaveIntervalSeconds < 0 {
		return &ValidationError{Path: "session.autosave_interval_seconds", Err: fmt.Errorf("autosave_interval_seconds must be >= 0")}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	return nil
}

// ParseLogLevel maps a log_level value to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warning, error")
}

// ScreenRect returns the configured screen as a rectangle at the origin.
func (c *Config) ScreenRect() geom.Rect {
	return geom.Rect{Width: float64(c.Screen.Width), Height: float64(c.Screen.Height)}
}

// RegistryOptions converts the config into registry options for screen.
func (c *Config) RegistryOptions(screen geom.Rect) wm.Options {
	margin := float64(c.Snap.ActivationMargin)
	if !c.Snap.Enabled {
		margin = 0
	}
	return wm.Options{
		Screen: screen,
		Padding: wm.Insets{
			Top:    float64(c.ScreenPadding.Top),
			Right:  float64(c.ScreenPadding.Right),
			Bottom: float64(c.ScreenPadding.Bottom),
			Left:   float64(c.ScreenPadding.Left),
		},
		SnapMargin:     margin,
		DefaultWidth:   float64(c.Window.DefaultWidth),
		DefaultHeight:  float64(c.Window.DefaultHeight),
		MinWidth:       float64(c.Window.MinWidth),
		MinHeight:      float64(c.Window.MinHeight),
		TitleBarHeight: float64(c.Window.TitleBarHeight),
	}
}

// DamageOptions converts the damage section.
func (c *Config) DamageOptions() damage.Options {
	return damage.Options{MergeRatio: c.Damage.MergeRatio, MaxRects: c.Damage.MaxRects}
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// includes from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	save.Include = nil
	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
