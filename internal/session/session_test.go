package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/shell"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	in := &Session{
		SavedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Screen:  geom.Rect{Width: 1920, Height: 1080},
		Windows: []wm.Record{
			{ID: 1, Title: "editor", X: 0, Y: 0, W: 960, H: 1080, State: wm.StateSnapped, Zone: snap.ZoneLeft, Movable: true, Resizable: true},
		},
	}

	require.NoError(t, SaveFile(path, in))
	out, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, out.Version)
	assert.Equal(t, in.Windows, out.Windows)
	assert.True(t, in.SavedAt.Equal(out.SavedAt))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFile_RejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "windows": []}`), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 99")
}

func TestNamedSessions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, Write(&Session{Name: "work"}))
	require.NoError(t, Write(&Session{Name: "home"}))

	names, err := List()
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, names)

	s, err := Read("work")
	require.NoError(t, err)
	assert.Equal(t, "work", s.Name)

	require.NoError(t, Delete("work"))
	names, err = List()
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, names)
}

func TestList_NoDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	names, err := List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"", "  ", "../x", "a/b", "..", "a..b"} {
		assert.Error(t, ValidateName(name), "name %q", name)
	}
	assert.NoError(t, ValidateName("dev-layout"))
}

func TestCaptureApply(t *testing.T) {
	src := shell.New(shell.Options{Registry: wm.DefaultOptions()})
	defer src.Close()
	require.NoError(t, src.Do(func(r *wm.Registry) error {
		a, err := r.Open(wm.OpenOptions{Title: "a"})
		if err != nil {
			return err
		}
		if _, err := r.Open(wm.OpenOptions{Title: "b", Bounds: geom.Rect{X: 5, Y: 5, Width: 400, Height: 300}}); err != nil {
			return err
		}
		return r.Snap(a, snap.ZoneRight)
	}))

	captured := Capture(src, "pair")
	assert.Equal(t, "pair", captured.Name)
	assert.Len(t, captured.Windows, 2)

	dst := shell.New(shell.Options{Registry: wm.DefaultOptions()})
	defer dst.Close()
	require.NoError(t, Apply(dst, captured))

	var srcWins, dstWins []wm.Window
	src.View(func(r *wm.Registry) { srcWins = r.Windows() })
	dst.View(func(r *wm.Registry) { dstWins = r.Windows() })
	assert.Equal(t, srcWins, dstWins)
}

func TestApply_InvalidRecords(t *testing.T) {
	sh := shell.New(shell.Options{Registry: wm.DefaultOptions()})
	defer sh.Close()

	err := Apply(sh, &Session{Name: "bad", Windows: []wm.Record{{ID: 0}}})
	require.ErrorIs(t, err, wm.ErrInvalidReference)
}
