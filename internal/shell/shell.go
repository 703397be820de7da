// Package shell holds the single shell state of a running desktop: the
// window registry and the damage tracker behind one lock. Every caller that
// can run concurrently (IPC handlers, hotkeys, MCP tools, autosave) goes
// through a Shell.
package shell

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/snapwm/internal/damage"
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/wm"
)

// Options configure a Shell.
type Options struct {
	Registry wm.Options
	Damage   damage.Options
	Logger   *slog.Logger
}

// Shell serializes all access to one Registry and its Tracker.
type Shell struct {
	mu      sync.Mutex
	reg     *wm.Registry
	tracker *damage.Tracker
	logger  *slog.Logger
	unsub   func()
	frames  uint64
	closed  bool
}

// New builds a Shell with an empty registry.
func New(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tracker := damage.NewTracker(opts.Damage)
	s := &Shell{
		reg:     wm.NewRegistry(opts.Registry, tracker),
		tracker: tracker,
		logger:  logger,
	}
	s.unsub = s.reg.Subscribe(s.logEvent)
	return s
}

func (s *Shell) logEvent(ev wm.Event) {
	s.logger.Debug("window event",
		"kind", ev.Kind.String(),
		"window", uint64(ev.Window),
		"state", ev.State.String(),
		"bounds", ev.Bounds)
}

// Do runs fn with exclusive access to the registry. fn must not retain the
// registry after it returns.
func (s *Shell) Do(fn func(r *wm.Registry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return fn(s.reg)
}

// View is Do for read-only callers.
func (s *Shell) View(fn func(r *wm.Registry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.reg)
}

// Drain returns the dirty rectangles accumulated since the last frame and
// clears them. The compositor calls it once per frame.
func (s *Shell) Drain() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	return Frame{
		Seq:      s.frames,
		Revision: s.reg.Revision(),
		Rects:    s.tracker.Drain(),
	}
}

// Frame is one drained batch of damage.
type Frame struct {
	Seq      uint64      `json:"seq"`
	Revision uint64      `json:"revision"`
	Rects    []geom.Rect `json:"rects"`
}

// Reconfigure applies new registry and damage options in place.
func (s *Shell) Reconfigure(reg wm.Options, dmg damage.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Configure(dmg)
	s.reg.Configure(reg)
	s.logger.Info("shell reconfigured",
		"screen", reg.Screen,
		"work_area", s.reg.WorkArea(),
		"snap_margin", reg.SnapMargin)
}

// Revision returns the registry revision.
func (s *Shell) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Revision()
}

// Snapshot returns persistable records for every window.
func (s *Shell) Snapshot() []wm.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Snapshot()
}

// Close tears the shell down. Later Do calls fail with ErrClosed.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.unsub != nil {
		s.unsub()
	}
	s.tracker.Drain()
}
