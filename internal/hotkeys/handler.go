// Package hotkeys binds global key sequences to window actions.
package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/snapwm/internal/shell"
	"github.com/1broseidon/snapwm/internal/wm"
	"github.com/1broseidon/snapwm/internal/x11"
)

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	shell  *shell.Shell
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler that runs actions against sh.
func NewHandler(conn *x11.Connection, sh *shell.Shell, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:     conn.XUtil,
		root:   conn.Root,
		shell:  sh,
		logger: logger,
	}
}

// Bind replaces every grab with bindings, which maps action names to key
// sequences. Empty sequences are skipped. A sequence that cannot be grabbed
// is logged and the rest are still bound; the joined errors are returned.
func (h *Handler) Bind(bindings map[string]string) error {
	keybind.Detach(h.xu, h.root)

	actions := make([]string, 0, len(bindings))
	for action := range bindings {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	var errs []error
	for _, name := range actions {
		seq := bindings[name]
		if seq == "" {
			continue
		}
		action, err := Lookup(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := h.RegisterFunc(seq, h.dispatch(name, action)); err != nil {
			h.logger.Warn("failed to register hotkey", "action", name, "keys", seq, "error", err)
			errs = append(errs, fmt.Errorf("hotkey %s (%s): %w", name, seq, err))
			continue
		}
		h.logger.Debug("hotkey registered", "action", name, "keys", seq)
	}
	return errors.Join(errs...)
}

func (h *Handler) dispatch(name string, action Action) func() {
	return func() {
		err := h.shell.Do(func(r *wm.Registry) error { return action(r) })
		switch {
		case err == nil:
			h.logger.Debug("hotkey action", "action", name)
		case errors.Is(err, ErrNoFocusedWindow):
			h.logger.Debug("hotkey ignored", "action", name, "reason", err)
		default:
			h.logger.Warn("hotkey action failed", "action", name, "error", err)
		}
	}
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns 0 plus every OR-combination of base.
func ignoreMasks(base []uint16) []uint16 {
	out := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
