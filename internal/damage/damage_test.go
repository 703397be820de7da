package damage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snapwm/internal/geom"
)

// covered reports whether p lies in at least one of rects.
func covered(rects []geom.Rect, p geom.Point) bool {
	for _, r := range rects {
		if geom.Contains(r, p) {
			return true
		}
	}
	return false
}

func TestMarkDirty_OverlappingMergesWithoutLosingArea(t *testing.T) {
	tr := NewTracker(Options{})
	a := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := geom.Rect{X: 50, Y: 50, Width: 100, Height: 100}
	tr.MarkDirty(a)
	tr.MarkDirty(b)

	out := tr.Drain()
	require.NotEmpty(t, out)

	// Union area 150x150=22500 <= 1.5*(10000+10000), so they coalesce.
	require.Len(t, out, 1)
	assert.Equal(t, geom.Union(a, b), out[0])

	for _, p := range []geom.Point{{X: 0, Y: 0}, {X: 99, Y: 99}, {X: 149, Y: 149}, {X: 120, Y: 60}} {
		assert.True(t, covered(out, p), "point %v lost", p)
	}
}

func TestMarkDirty_DistantRegionsStaySeparate(t *testing.T) {
	tr := NewTracker(Options{})
	a := geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := geom.Rect{X: 500, Y: 500, Width: 10, Height: 10}
	tr.MarkDirty(a)
	tr.MarkDirty(b)

	assert.Equal(t, []geom.Rect{a, b}, tr.Drain())
}

func TestMarkDirty_ContainedRegionIsAbsorbed(t *testing.T) {
	tr := NewTracker(Options{})
	outer := geom.Rect{X: 0, Y: 0, Width: 1000, Height: 1000}
	tr.MarkDirty(outer)
	tr.MarkDirty(geom.Rect{X: 10, Y: 10, Width: 1, Height: 1})

	assert.Equal(t, []geom.Rect{outer}, tr.Drain())
}

func TestMarkDirty_ChainedMergeKeepsFirstSlot(t *testing.T) {
	tr := NewTracker(Options{})
	first := geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	far := geom.Rect{X: 1000, Y: 1000, Width: 10, Height: 10}
	tr.MarkDirty(first)
	tr.MarkDirty(far)
	// Adjacent to first: union 20x10 = 200 <= 1.5*200.
	tr.MarkDirty(geom.Rect{X: 10, Y: 0, Width: 10, Height: 10})

	out := tr.Drain()
	require.Len(t, out, 2)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 20, Height: 10}, out[0])
	assert.Equal(t, far, out[1])
}

func TestMarkDirty_IgnoresEmpty(t *testing.T) {
	tr := NewTracker(Options{})
	tr.MarkDirty(geom.Rect{X: 5, Y: 5})
	assert.Zero(t, tr.Pending())
	assert.Nil(t, tr.Drain())
}

func TestMarkDirty_CollapsesPastMax(t *testing.T) {
	tr := NewTracker(Options{MaxRects: 3})
	for i := 0; i < 4; i++ {
		tr.MarkDirty(geom.Rect{X: float64(i * 100), Y: 0, Width: 1, Height: 1})
	}
	out := tr.Drain()
	require.Len(t, out, 1)
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 301, Height: 1}, out[0])
}

func TestDrain_Clears(t *testing.T) {
	tr := NewTracker(Options{})
	tr.MarkDirty(geom.Rect{Width: 1, Height: 1})
	require.Len(t, tr.Drain(), 1)
	assert.Empty(t, tr.Drain())
}
