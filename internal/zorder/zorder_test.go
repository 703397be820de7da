package zorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaise_ShiftsWindowsAbove(t *testing.T) {
	s := New[int]()
	for _, id := range []int{1, 2, 3, 4} {
		s.Push(id)
	}

	require.NoError(t, s.Raise(2))
	assert.Equal(t, []int{1, 3, 4, 2}, s.Order())
	assert.Equal(t, 3, s.Index(2))
	assert.Equal(t, 1, s.Index(3))

	require.NoError(t, s.Raise(2), "raising the top is a no-op")
	assert.Equal(t, []int{1, 3, 4, 2}, s.Order())
}

func TestRemove_KeepsRanksDense(t *testing.T) {
	s := New[int]()
	for _, id := range []int{10, 20, 30} {
		s.Push(id)
	}
	require.NoError(t, s.SetFocus(20))
	require.NoError(t, s.Remove(20))

	assert.Equal(t, []int{10, 30}, s.Order())
	assert.Equal(t, 0, s.Index(10))
	assert.Equal(t, 1, s.Index(30))

	_, ok := s.Focused()
	assert.False(t, ok, "removing the focused id clears focus")
}

func TestUnknownIDs(t *testing.T) {
	s := New[string]()
	s.Push("a")

	assert.ErrorIs(t, s.Raise("b"), ErrUnknown)
	assert.ErrorIs(t, s.Remove("b"), ErrUnknown)
	assert.ErrorIs(t, s.SetFocus("b"), ErrUnknown)
	assert.Equal(t, []string{"a"}, s.Order())
}

func TestPushExistingRaises(t *testing.T) {
	s := New[int]()
	s.Push(1)
	s.Push(2)
	s.Push(1)
	assert.Equal(t, []int{2, 1}, s.Order())
}

func TestTopWhere(t *testing.T) {
	s := New[int]()
	for _, id := range []int{1, 2, 3} {
		s.Push(id)
	}
	got, ok := s.TopWhere(func(id int) bool { return id != 3 })
	require.True(t, ok)
	assert.Equal(t, 2, got)

	_, ok = s.TopWhere(func(int) bool { return false })
	assert.False(t, ok)
}
