package wm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/snap"
)

func TestRestore_RenumbersZDensely(t *testing.T) {
	r, sink := newTestRegistry(t)
	records := []Record{
		{ID: 7, Title: "b", X: 10, Y: 10, W: 300, H: 200, ZIndex: 5, Focused: true, Resizable: true, Movable: true},
		{ID: 3, Title: "a", X: 0, Y: 0, W: 300, H: 200, ZIndex: 2, Resizable: true, Movable: true},
		{ID: 9, Title: "c", X: 1, Y: 2, W: 3, H: 4, State: StateSnapped, Zone: snap.ZoneLeft, ZIndex: 9,
			Restore: geom.Rect{X: 40, Y: 40, Width: 500, Height: 400}, Resizable: true, Movable: true},
	}

	require.NoError(t, r.Restore(records))

	wins := r.Windows()
	require.Len(t, wins, 3)
	assert.Equal(t, []WindowID{3, 7, 9}, []WindowID{wins[0].ID, wins[1].ID, wins[2].ID})
	assertDenseZ(t, r)

	focused, ok := r.Focused()
	require.True(t, ok)
	assert.Equal(t, WindowID(7), focused)

	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 960, Height: 1080}, wins[2].Bounds)
	assert.True(t, sink.covers(r.Screen()))

	id, err := r.Open(OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, WindowID(10), id)
}

func TestRestore_ClampsAndPicksFocus(t *testing.T) {
	r, _ := newTestRegistry(t)
	records := []Record{
		{ID: 1, W: 20, H: 20, ZIndex: 0},
		{ID: 2, W: 400, H: 300, ZIndex: 0, State: StateMinimized, Focused: true},
	}

	require.NoError(t, r.Restore(records))

	w, _ := r.Window(1)
	assert.Equal(t, 200.0, w.Bounds.Width)
	assert.Equal(t, 150.0, w.Bounds.Height)

	focused, ok := r.Focused()
	require.True(t, ok)
	assert.Equal(t, WindowID(1), focused, "a minimized window cannot keep focus")
}

func TestRestore_RejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		kind    error
	}{
		{"duplicate id", []Record{{ID: 1, W: 300, H: 200}, {ID: 1, W: 300, H: 200}}, ErrInvalidReference},
		{"zero id", []Record{{ID: 0, W: 300, H: 200}}, ErrInvalidReference},
		{"snapped without zone", []Record{{ID: 1, W: 300, H: 200, State: StateSnapped}}, ErrConstraintViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry(t)
			keep := mustOpen(t, r, "keep", geom.Rect{})

			err := r.Restore(tt.records)
			require.ErrorIs(t, err, tt.kind)

			assert.Equal(t, 1, r.Count())
			_, err = r.Window(keep)
			assert.NoError(t, err)
		})
	}
}

func TestRestore_RejectedDuringDrag(t *testing.T) {
	r, _ := newTestRegistry(t)
	id := mustOpen(t, r, "a", geom.Rect{})
	require.NoError(t, r.BeginDrag(id, geom.Point{X: 600, Y: 300}))

	require.ErrorIs(t, r.Restore(nil), ErrConflictingOperation)
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	src, _ := newTestRegistry(t)
	a := mustOpen(t, src, "editor", geom.Rect{X: 10, Y: 20, Width: 640, Height: 480})
	b := mustOpen(t, src, "shell", geom.Rect{X: 30, Y: 40, Width: 500, Height: 300})
	mustOpen(t, src, "notes", geom.Rect{})
	require.NoError(t, src.Snap(a, snap.ZoneRight))
	require.NoError(t, src.SetState(b, StateMaximized))
	require.NoError(t, src.Focus(b))

	data, err := json.Marshal(src.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"snapped"`)
	assert.Contains(t, string(data), `"zone":"right"`)

	var records []Record
	require.NoError(t, json.Unmarshal(data, &records))

	dst, _ := newTestRegistry(t)
	require.NoError(t, dst.Restore(records))

	assert.Equal(t, src.Windows(), dst.Windows())
}

func TestRestore_UsesCurrentRegistryMinimum(t *testing.T) {
	src := NewRegistry(DefaultOptions(), nil)
	_, err := src.Open(OpenOptions{Bounds: geom.Rect{X: 0, Y: 0, Width: 300, Height: 300}})
	require.NoError(t, err)
	records := src.Snapshot()
	assert.Zero(t, records[0].MinWidth)

	opts := DefaultOptions()
	opts.MinWidth, opts.MinHeight = 60, 40
	dst := NewRegistry(opts, nil)
	require.NoError(t, dst.Restore(records))

	w, err := dst.Window(records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, w.MinWidth)
	assert.Equal(t, 40.0, w.MinHeight)
}
