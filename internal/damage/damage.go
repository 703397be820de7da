// Package damage accumulates the screen regions that need repainting between
// two compositor frames.
package damage

import (
	"slices"

	"github.com/1broseidon/snapwm/internal/geom"
)

const (
	// DefaultMergeRatio merges two regions when their bounding box is no
	// larger than 1.5x their combined area.
	DefaultMergeRatio = 1.5
	// DefaultMaxRects caps the pending set before it collapses to one box.
	DefaultMaxRects = 32
)

// Options tune coalescing. Zero values select the defaults.
type Options struct {
	MergeRatio float64
	MaxRects   int
}

// Tracker holds the pending dirty set. It is not safe for concurrent use.
type Tracker struct {
	rects      []geom.Rect
	mergeRatio float64
	maxRects   int
}

// NewTracker returns an empty tracker.
func NewTracker(opts Options) *Tracker {
	t := &Tracker{}
	t.Configure(opts)
	return t
}

// Configure replaces the coalescing options. Pending regions are kept.
func (t *Tracker) Configure(opts Options) {
	t.mergeRatio = opts.MergeRatio
	if t.mergeRatio < 1 {
		t.mergeRatio = DefaultMergeRatio
	}
	t.maxRects = opts.MaxRects
	if t.maxRects <= 0 {
		t.maxRects = DefaultMaxRects
	}
}

// MarkDirty adds r to the pending set, merging it with pending regions where
// the merge wastes little area. Empty rectangles are ignored.
//
// A merged region takes the slot of the earliest region it absorbed, so
// Drain keeps first-marked order.
func (t *Tracker) MarkDirty(r geom.Rect) {
	if r.Empty() {
		return
	}

	pos := -1
	for {
		i := t.mergeCandidate(r)
		if i < 0 {
			break
		}
		r = geom.Union(t.rects[i], r)
		t.rects = slices.Delete(t.rects, i, i+1)
		if pos < 0 || i < pos {
			pos = i
		}
	}

	if pos < 0 {
		t.rects = append(t.rects, r)
	} else {
		t.rects = slices.Insert(t.rects, pos, r)
	}

	if len(t.rects) > t.maxRects {
		t.rects = []geom.Rect{t.Bounds()}
	}
}

func (t *Tracker) mergeCandidate(r geom.Rect) int {
	for i, pending := range t.rects {
		if t.shouldMerge(pending, r) {
			return i
		}
	}
	return -1
}

func (t *Tracker) shouldMerge(a, b geom.Rect) bool {
	if geom.ContainsRect(a, b) || geom.ContainsRect(b, a) {
		return true
	}
	return geom.Union(a, b).Area() <= t.mergeRatio*(a.Area()+b.Area())
}

// Pending returns the number of queued regions.
func (t *Tracker) Pending() int { return len(t.rects) }

// Bounds returns the bounding box of everything pending.
func (t *Tracker) Bounds() geom.Rect {
	var out geom.Rect
	for _, r := range t.rects {
		out = geom.Union(out, r)
	}
	return out
}

// Drain returns the pending regions and clears the set. The compositor calls
// it once per frame.
func (t *Tracker) Drain() []geom.Rect {
	out := t.rects
	t.rects = nil
	return out
}
