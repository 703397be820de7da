package hotkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snapwm/internal/config"
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

func run(t *testing.T, r *wm.Registry, name string) error {
	t.Helper()
	action, err := Lookup(name)
	require.NoError(t, err)
	return action(r)
}

func TestEveryKnownActionResolves(t *testing.T) {
	for _, name := range config.KnownActions() {
		_, err := Lookup(name)
		assert.NoError(t, err, name)
	}
	_, err := Lookup("fly")
	assert.Error(t, err)
}

func TestSnapActionTogglesZone(t *testing.T) {
	r := wm.NewRegistry(wm.DefaultOptions(), nil)
	start := geom.Rect{X: 100, Y: 100, Width: 800, Height: 600}
	id, err := r.Open(wm.OpenOptions{Bounds: start})
	require.NoError(t, err)

	require.NoError(t, run(t, r, config.ActionSnapRight))
	w, _ := r.Window(id)
	assert.Equal(t, wm.StateSnapped, w.State)
	assert.Equal(t, snap.ZoneRight, w.Zone)
	assert.Equal(t, geom.Rect{X: 960, Width: 960, Height: 1080}, w.Bounds)

	require.NoError(t, run(t, r, config.ActionSnapRight))
	w, _ = r.Window(id)
	assert.Equal(t, wm.StateNormal, w.State)
	assert.Equal(t, start, w.Bounds)
}

func TestSnapActionFromMaximized(t *testing.T) {
	r := wm.NewRegistry(wm.DefaultOptions(), nil)
	id, err := r.Open(wm.OpenOptions{})
	require.NoError(t, err)
	require.NoError(t, r.SetState(id, wm.StateMaximized))

	require.NoError(t, run(t, r, config.ActionSnapTopLeft))
	w, _ := r.Window(id)
	assert.Equal(t, snap.ZoneTopLeft, w.Zone)
	assert.Equal(t, geom.Rect{Width: 960, Height: 540}, w.Bounds)
}

func TestSnapActionRejectedKeepsMaximized(t *testing.T) {
	r := wm.NewRegistry(wm.DefaultOptions(), nil)
	id, err := r.Open(wm.OpenOptions{MinWidth: 1000})
	require.NoError(t, err)
	require.NoError(t, r.SetState(id, wm.StateMaximized))
	rev := r.Revision()

	require.ErrorIs(t, run(t, r, config.ActionSnapLeft), wm.ErrConstraintViolation)
	w, _ := r.Window(id)
	assert.Equal(t, wm.StateMaximized, w.State)
	assert.Equal(t, r.WorkArea(), w.Bounds)
	assert.Equal(t, rev, r.Revision())
}

func TestMaximizeToggles(t *testing.T) {
	r := wm.NewRegistry(wm.DefaultOptions(), nil)
	start := geom.Rect{X: 10, Y: 20, Width: 300, Height: 200}
	id, err := r.Open(wm.OpenOptions{Bounds: start})
	require.NoError(t, err)

	require.NoError(t, run(t, r, config.ActionMaximize))
	w, _ := r.Window(id)
	assert.Equal(t, wm.StateMaximized, w.State)

	require.NoError(t, run(t, r, config.ActionMaximize))
	w, _ = r.Window(id)
	assert.Equal(t, wm.StateNormal, w.State)
	assert.Equal(t, start, w.Bounds)
}

func TestWindowActionsNeedFocus(t *testing.T) {
	r := wm.NewRegistry(wm.DefaultOptions(), nil)
	assert.ErrorIs(t, run(t, r, config.ActionClose), ErrNoFocusedWindow)
	assert.NoError(t, run(t, r, config.ActionCycleFocus))
}

func TestCloseAndMinimize(t *testing.T) {
	r := wm.NewRegistry(wm.DefaultOptions(), nil)
	a, err := r.Open(wm.OpenOptions{Title: "a"})
	require.NoError(t, err)
	b, err := r.Open(wm.OpenOptions{Title: "b"})
	require.NoError(t, err)

	require.NoError(t, run(t, r, config.ActionMinimize))
	w, _ := r.Window(b)
	assert.Equal(t, wm.StateMinimized, w.State)

	focused, ok := r.Focused()
	require.True(t, ok)
	assert.Equal(t, a, focused)

	require.NoError(t, run(t, r, config.ActionClose))
	assert.Equal(t, 1, r.Count())
}

func TestIgnoreMasks(t *testing.T) {
	got := ignoreMasks([]uint16{2, 16})
	assert.ElementsMatch(t, []uint16{0, 2, 16, 18}, got)
}
