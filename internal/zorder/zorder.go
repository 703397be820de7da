// Package zorder keeps the stacking order of a set of windows and tracks
// which one, if any, holds focus.
//
// The stack is stored bottom to top, so a window's index is its z rank and
// ranks are always the dense sequence 0..n-1.
package zorder

import (
	"errors"
	"slices"
)

// ErrUnknown is returned when an operation names an id not on the stack.
var ErrUnknown = errors.New("id not in stack")

// Stack is a dense z-order with an optional focused member.
type Stack[K comparable] struct {
	order    []K
	focused  K
	hasFocus bool
}

// New returns an empty stack.
func New[K comparable]() *Stack[K] {
	return &Stack[K]{}
}

// Len returns the number of ids on the stack.
func (s *Stack[K]) Len() int { return len(s.order) }

// Push places id on top. Pushing an id already present raises it.
func (s *Stack[K]) Push(id K) {
	if idx := s.Index(id); idx >= 0 {
		s.order = slices.Delete(s.order, idx, idx+1)
	}
	s.order = append(s.order, id)
}

// Remove drops id and closes the gap. Focus is cleared if id held it.
func (s *Stack[K]) Remove(id K) error {
	idx := s.Index(id)
	if idx < 0 {
		return ErrUnknown
	}
	s.order = slices.Delete(s.order, idx, idx+1)
	if s.hasFocus && s.focused == id {
		s.ClearFocus()
	}
	return nil
}

// Raise moves id to the top. Every id that was above it shifts down one rank.
func (s *Stack[K]) Raise(id K) error {
	idx := s.Index(id)
	if idx < 0 {
		return ErrUnknown
	}
	if idx == len(s.order)-1 {
		return nil
	}
	copy(s.order[idx:], s.order[idx+1:])
	s.order[len(s.order)-1] = id
	return nil
}

// Index returns the z rank of id, or -1.
func (s *Stack[K]) Index(id K) int {
	return slices.Index(s.order, id)
}

// Top returns the topmost id.
func (s *Stack[K]) Top() (K, bool) {
	var zero K
	if len(s.order) == 0 {
		return zero, false
	}
	return s.order[len(s.order)-1], true
}

// TopWhere returns the highest id for which keep reports true.
func (s *Stack[K]) TopWhere(keep func(K) bool) (K, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		if keep(s.order[i]) {
			return s.order[i], true
		}
	}
	var zero K
	return zero, false
}

// Order returns a copy of the stack, bottom first.
func (s *Stack[K]) Order() []K {
	return slices.Clone(s.order)
}

// SetFocus marks id as focused without changing its rank.
func (s *Stack[K]) SetFocus(id K) error {
	if s.Index(id) < 0 {
		return ErrUnknown
	}
	s.focused = id
	s.hasFocus = true
	return nil
}

// ClearFocus leaves no id focused.
func (s *Stack[K]) ClearFocus() {
	var zero K
	s.focused = zero
	s.hasFocus = false
}

// Focused returns the focused id.
func (s *Stack[K]) Focused() (K, bool) {
	return s.focused, s.hasFocus
}

// Reset empties the stack.
func (s *Stack[K]) Reset() {
	s.order = s.order[:0]
	s.ClearFocus()
}
