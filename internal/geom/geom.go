// Package geom holds the screen-space rectangle and point math shared by the
// snapping, stacking and damage packages.
package geom

import "math"

// Point is a position in screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Rect is an axis-aligned rectangle. Origin is the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Empty reports whether r covers no area. NaN sizes count as empty.
func (r Rect) Empty() bool {
	return !(r.Width > 0) || !(r.Height > 0)
}

// Area returns the covered area, 0 for empty rectangles.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Inset shrinks r by the given amounts on each side. The result never has a
// negative size.
func (r Rect) Inset(top, right, bottom, left float64) Rect {
	out := Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - left - right,
		Height: r.Height - top - bottom,
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// WithOrigin returns r moved so its top-left corner is at p.
func (r Rect) WithOrigin(p Point) Rect {
	r.X, r.Y = p.X, p.Y
	return r
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// CenteredIn returns a w×h rectangle centered within bounds.
func CenteredIn(bounds Rect, w, h float64) Rect {
	c := bounds.Center()
	return Rect{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}

// Intersects reports whether a and b share a region of positive area.
// Rectangles that merely touch along an edge do not intersect.
func Intersects(a, b Rect) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	return a.X < b.Right() && b.X < a.Right() &&
		a.Y < b.Bottom() && b.Y < a.Bottom()
}

// Intersect returns the overlap of a and b, or the zero Rect when they do
// not intersect.
func Intersect(a, b Rect) Rect {
	if !Intersects(a, b) {
		return Rect{}
	}
	x := math.Max(a.X, b.X)
	y := math.Max(a.Y, b.Y)
	right := math.Min(a.Right(), b.Right())
	bottom := math.Min(a.Bottom(), b.Bottom())
	return Rect{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Union returns the smallest rectangle covering both a and b. An empty
// rectangle is the identity.
func Union(a, b Rect) Rect {
	switch {
	case a.Empty():
		return b
	case b.Empty():
		return a
	}
	x := math.Min(a.X, b.X)
	y := math.Min(a.Y, b.Y)
	right := math.Max(a.Right(), b.Right())
	bottom := math.Max(a.Bottom(), b.Bottom())
	return Rect{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Contains reports whether p lies inside r. The left and top edges are
// inclusive, the right and bottom edges exclusive, so adjacent rectangles
// never both contain a point.
func Contains(r Rect, p Point) bool {
	if r.Empty() {
		return false
	}
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ContainsRect reports whether inner lies entirely within outer.
func ContainsRect(outer, inner Rect) bool {
	if outer.Empty() || inner.Empty() {
		return false
	}
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.Right() <= outer.Right() && inner.Bottom() <= outer.Bottom()
}

// Edge identifies one side of a rectangle.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// DistanceToEdge returns the edge of bounds closest to p and the absolute
// distance to it. Ties resolve in the order left, right, top, bottom.
func DistanceToEdge(p Point, bounds Rect) (Edge, float64) {
	best := EdgeLeft
	dist := math.Abs(p.X - bounds.X)

	candidates := [...]struct {
		edge Edge
		d    float64
	}{
		{EdgeRight, math.Abs(bounds.Right() - p.X)},
		{EdgeTop, math.Abs(p.Y - bounds.Y)},
		{EdgeBottom, math.Abs(bounds.Bottom() - p.Y)},
	}
	for _, c := range candidates {
		if c.d < dist {
			best, dist = c.edge, c.d
		}
	}
	return best, dist
}
