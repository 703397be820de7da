// Package daemon runs the snapwm shell: it loads configuration, restores the
// last layout, serves IPC, grabs hotkeys and autosaves until stopped.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/1broseidon/snapwm/internal/config"
	"github.com/1broseidon/snapwm/internal/hotkeys"
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/runtimepath"
	"github.com/1broseidon/snapwm/internal/session"
	"github.com/1broseidon/snapwm/internal/shell"
	"github.com/1broseidon/snapwm/internal/x11"
)

// screenPollInterval is how often an x11 screen is re-read for monitor or
// panel changes.
const screenPollInterval = 5 * time.Second

// Options configure Run.
type Options struct {
	// ConfigPath is the config file. Empty selects the default location.
	ConfigPath string
	Logger     *slog.Logger
	// Level, when set, follows log_level across reloads.
	Level *slog.LevelVar
	// Headless skips the X connection even when the config asks for one.
	Headless bool
}

// Run starts the daemon and blocks until ctx is cancelled or SIGINT/SIGTERM
// arrives.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	res, err := config.LoadFromPath(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config
	if opts.Level != nil {
		if lvl, err := config.ParseLogLevel(cfg.LogLevel); err == nil {
			opts.Level.Set(lvl)
		}
	}
	logger.Info("configuration loaded", "path", path, "screen_source", string(cfg.Screen.Source))

	var conn *x11.Connection
	if !opts.Headless {
		conn, err = x11.NewConnection(cfg.Display, cfg.XAuthority)
		switch {
		case err == nil:
			defer conn.Close()
		case cfg.Screen.Source == config.ScreenSourceX11:
			return err
		default:
			logger.Warn("running without X; hotkeys are disabled", "error", err)
		}
	}

	var prober ScreenProber
	if conn != nil {
		prober = conn
	}
	regOpts, err := RegistryOptions(cfg, prober)
	if err != nil {
		return err
	}

	sh := shell.New(shell.Options{
		Registry: regOpts,
		Damage:   cfg.DamageOptions(),
		Logger:   logger.With("component", "shell"),
	})
	defer sh.Close()

	autosavePath, err := SessionPath(cfg, "")
	if err != nil {
		return err
	}
	autosaver := NewAutosaver(AutosaverConfig{
		Interval: time.Duration(cfg.Session.AutosaveIntervalSeconds) * time.Second,
		Path:     autosavePath,
		Logger:   logger.With("component", "autosave"),
	}, sh)

	if cfg.Session.RestoreOnStart {
		restoreSession(sh, autosavePath, logger)
	}
	autosaver.MarkClean()

	var binder HotkeyBinder
	if conn != nil {
		binder = hotkeys.NewHandler(conn, sh, logger.With("component", "hotkeys"))
	}

	syncer := NewConfigSync(SyncOptions{
		Path:      path,
		Config:    cfg,
		Shell:     sh,
		Prober:    prober,
		Hotkeys:   binder,
		Autosaver: autosaver,
		Level:     opts.Level,
		Logger:    logger,
	})
	if binder != nil {
		if err := binder.Bind(cfg.Hotkeys); err != nil {
			logger.Warn("some hotkeys could not be bound", "error", err)
		}
	}

	pidPath, err := writePIDFile()
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	server, err := ipc.NewServer(sh, ipc.Hooks{
		Reload:      syncer.Reload,
		SessionPath: syncer.SessionPath,
	}, logger.With("component", "ipc"))
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer server.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	autosaveDone := make(chan struct{})
	go func() {
		defer close(autosaveDone)
		autosaver.Run(ctx)
	}()

	var configChanged <-chan struct{}
	if w, err := config.NewWatcher(path, logger.With("component", "config")); err != nil {
		logger.Warn("config file will not be watched", "error", err)
	} else {
		if err := w.Track(res.Files); err != nil {
			logger.Warn("included config files will not be watched", "error", err)
		}
		syncer.SetTracker(w)
		configChanged = w.Changed()
		go w.Run(ctx)
	}

	var screenTick <-chan time.Time
	if conn != nil && cfg.Screen.Source == config.ScreenSourceX11 {
		t := time.NewTicker(screenPollInterval)
		defer t.Stop()
		screenTick = t.C
	}

	if conn != nil {
		go conn.EventLoop()
		defer conn.Quit()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	logger.Info("snapwm daemon started", "socket", server.SocketPath(), "pid", os.Getpid())

	reload := func(reason string) {
		if err := syncer.Reload(); err != nil {
			logger.Error("config reload failed", "trigger", reason, "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down snapwm daemon")
			// The autosaver writes the final layout before it returns.
			<-autosaveDone
			return nil
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				reload("sighup")
				continue
			}
			logger.Info("received signal", "signal", sig.String())
			cancel()
		case <-configChanged:
			reload("file")
		case <-screenTick:
			changed, err := syncer.RefreshScreen()
			if err != nil {
				logger.Warn("screen refresh failed", "error", err)
			} else if changed {
				logger.Info("screen geometry changed")
			}
		}
	}
}

func restoreSession(sh *shell.Shell, path string, logger *slog.Logger) {
	s, err := session.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		logger.Warn("failed to read saved session", "path", path, "error", err)
		return
	}
	if err := session.Apply(sh, s); err != nil {
		logger.Warn("failed to restore saved session", "path", path, "error", err)
		return
	}
	logger.Info("session restored", "path", path, "windows", len(s.Windows))
}

// writePIDFile records this process in the runtime directory. A live daemon
// already holding the file is an error.
func writePIDFile() (string, error) {
	path, err := runtimepath.PIDPath()
	if err != nil {
		return "", err
	}
	if pid, ok := ReadPID(path); ok && processAlive(pid) && pid != os.Getpid() {
		return "", fmt.Errorf("snapwm daemon already running (pid %d)", pid)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write pid file: %w", err)
	}
	return path, nil
}

// ReadPID parses the pid file at path.
func ReadPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(string(trimNewline(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
