package palette

import (
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRun struct {
	command string
	args    []string
	stdin   string
	out     string
	err     error
}

func (f *fakeRun) run(command string, args []string, stdin string) (string, error) {
	f.command, f.args, f.stdin = command, args, stdin
	return f.out, f.err
}

func newFake(kind backendKind, command, out string) (*dmenuLikeBackend, *fakeRun) {
	f := &fakeRun{out: out}
	return &dmenuLikeBackend{command: command, kind: kind, run: f.run}, f
}

var sampleEntries = []Entry{
	{ID: 1, Title: "editor", State: "normal"},
	{ID: 2, Title: "terminal", State: "snapped", Focused: true},
	{ID: 3, Title: "browser", State: "minimized"},
}

func TestRank_EmptyQueryKeepsOrder(t *testing.T) {
	got := Rank("  ", sampleEntries, 0)
	require.Len(t, got, 3)
	for i, m := range got {
		assert.Equal(t, sampleEntries[i], m.Entry)
	}

	assert.Len(t, Rank("", sampleEntries, 2), 2)
}

func TestRank_FuzzyFilters(t *testing.T) {
	got := Rank("trm", sampleEntries, 0)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].Entry.ID)
	assert.Equal(t, []int{0, 2, 3}, got[0].MatchedIndexes)

	assert.Empty(t, Rank("xyz", sampleEntries, 0))
}

func TestRofi_SelectsByIndexAndHighlightsActive(t *testing.T) {
	b, f := newFake(kindRofi, "rofi", "1\n")
	items := []Item{{Label: "a", Value: "1"}, {Label: "b", Value: "2", Active: true}}

	item, err := b.Show("windows", items)
	require.NoError(t, err)
	assert.Equal(t, "2", item.Value)
	assert.Equal(t, "a\nb", f.stdin)
	joined := strings.Join(f.args, " ")
	assert.Contains(t, joined, "-format i")
	assert.Contains(t, joined, "-a 1")
	assert.Contains(t, joined, "-p windows")
}

func TestDmenu_DisambiguatesDuplicateLabels(t *testing.T) {
	b, f := newFake(kindDmenu, "dmenu", "shell (2)\n")
	items := []Item{{Label: "shell", Value: "1"}, {Label: "shell", Value: "2"}}

	item, err := b.Show("", items)
	require.NoError(t, err)
	assert.Equal(t, "2", item.Value)
	assert.Equal(t, "shell\nshell (2)", f.stdin)
	assert.Equal(t, []string{"-i"}, f.args)
}

func TestShow_EmptySelectionCancels(t *testing.T) {
	b, _ := newFake(kindFuzzel, "fuzzel", "")
	_, err := b.Show("p", []Item{{Label: "a"}})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestShow_IndexOutOfRange(t *testing.T) {
	b, _ := newFake(kindFuzzel, "fuzzel", "7")
	_, err := b.Show("p", []Item{{Label: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestShow_RunFailure(t *testing.T) {
	b, f := newFake(kindWofi, "wofi", "")
	f.err = errors.New("wofi failed: no display")
	_, err := b.Show("p", []Item{{Label: "a"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCancelled)
}

func TestChoose_ReturnsPickedEntry(t *testing.T) {
	b, f := newFake(kindRofi, "rofi", "0")

	got, err := Choose(b, sampleEntries, "brw")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.ID)
	assert.Equal(t, "browser  #3  [minimized]", f.stdin)
}

func TestChoose_NoMatches(t *testing.T) {
	b, _ := newFake(kindRofi, "rofi", "0")
	_, err := Choose(b, sampleEntries, "zzz")
	require.Error(t, err)
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := NewBackend("kitty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown palette backend")
}

func TestIsCancelExit_NonExitError(t *testing.T) {
	assert.False(t, isCancelExit(exec.ErrNotFound))
}
