package shell

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snapwm/internal/damage"
	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	s := New(Options{Registry: wm.DefaultOptions(), Damage: damage.Options{}})
	t.Cleanup(s.Close)
	return s
}

func TestDrain_ReturnsDamageOncePerFrame(t *testing.T) {
	s := newTestShell(t)

	var id wm.WindowID
	require.NoError(t, s.Do(func(r *wm.Registry) error {
		var err error
		id, err = r.Open(wm.OpenOptions{Bounds: geom.Rect{X: 10, Y: 10, Width: 300, Height: 200}})
		return err
	}))

	first := s.Drain()
	assert.Equal(t, uint64(1), first.Seq)
	require.NotEmpty(t, first.Rects)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 300, Height: 200}, first.Rects[0])

	second := s.Drain()
	assert.Equal(t, uint64(2), second.Seq)
	assert.Empty(t, second.Rects)

	require.NoError(t, s.Do(func(r *wm.Registry) error {
		return r.Move(id, geom.Point{X: 20, Y: 10})
	}))
	third := s.Drain()
	assert.Equal(t, []geom.Rect{{X: 10, Y: 10, Width: 310, Height: 200}}, third.Rects)
}

func TestDo_PropagatesRegistryErrors(t *testing.T) {
	s := newTestShell(t)

	err := s.Do(func(r *wm.Registry) error { return r.Focus(42) })
	require.ErrorIs(t, err, wm.ErrInvalidReference)
}

func TestDo_SerializesConcurrentCallers(t *testing.T) {
	s := newTestShell(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(r *wm.Registry) error {
				_, err := r.Open(wm.OpenOptions{})
				return err
			})
		}()
	}
	wg.Wait()

	s.View(func(r *wm.Registry) {
		assert.Equal(t, 20, r.Count())
		for i, w := range r.Windows() {
			assert.Equal(t, i, w.Z)
		}
	})
}

func TestReconfigure_RelayoutsSnappedWindows(t *testing.T) {
	s := newTestShell(t)
	var id wm.WindowID
	require.NoError(t, s.Do(func(r *wm.Registry) error {
		var err error
		if id, err = r.Open(wm.OpenOptions{}); err != nil {
			return err
		}
		return r.Snap(id, snap.ZoneLeft)
	}))

	opts := wm.DefaultOptions()
	opts.Padding = wm.Insets{Bottom: 48}
	s.Reconfigure(opts, damage.Options{MergeRatio: 2})

	s.View(func(r *wm.Registry) {
		w, err := r.Window(id)
		require.NoError(t, err)
		assert.Equal(t, geom.Rect{Width: 960, Height: 1032}, w.Bounds)
	})
}

func TestClose_RejectsLaterCalls(t *testing.T) {
	s := New(Options{Registry: wm.DefaultOptions()})
	s.Close()
	s.Close()

	err := s.Do(func(r *wm.Registry) error { return nil })
	require.ErrorIs(t, err, ErrClosed)
}
