// Package snap maps a drag pointer position to a screen-edge or corner snap
// zone and the geometry a window takes when dropped there.
package snap

import (
	"fmt"
	"math"

	"github.com/1broseidon/snapwm/internal/geom"
)

// DefaultMargin is the activation band width in pixels.
const DefaultMargin = 20

// Zone identifies a snap target.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneLeft
	ZoneRight
	ZoneTop
	ZoneBottom
	ZoneTopLeft
	ZoneTopRight
	ZoneBottomLeft
	ZoneBottomRight
)

var zoneNames = map[Zone]string{
	ZoneNone:        "none",
	ZoneLeft:        "left",
	ZoneRight:       "right",
	ZoneTop:         "top",
	ZoneBottom:      "bottom",
	ZoneTopLeft:     "top-left",
	ZoneTopRight:    "top-right",
	ZoneBottomLeft:  "bottom-left",
	ZoneBottomRight: "bottom-right",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return "unknown"
}

// ParseZone converts a zone name as printed by String back to a Zone.
func ParseZone(s string) (Zone, error) {
	for z, name := range zoneNames {
		if name == s && z != ZoneNone {
			return z, nil
		}
	}
	return ZoneNone, fmt.Errorf("unknown snap zone %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The empty string decodes
// to ZoneNone.
func (z *Zone) UnmarshalText(b []byte) error {
	if len(b) == 0 || string(b) == "none" {
		*z = ZoneNone
		return nil
	}
	parsed, err := ParseZone(string(b))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// IsCorner reports whether z is one of the four quarter-screen zones.
func (z Zone) IsCorner() bool {
	switch z {
	case ZoneTopLeft, ZoneTopRight, ZoneBottomLeft, ZoneBottomRight:
		return true
	}
	return false
}

// Target returns the geometry of a window snapped to z within bounds.
func (z Zone) Target(bounds geom.Rect) geom.Rect {
	halfW := bounds.Width / 2
	halfH := bounds.Height / 2
	midX := bounds.X + halfW
	midY := bounds.Y + halfH

	switch z {
	case ZoneLeft:
		return geom.Rect{X: bounds.X, Y: bounds.Y, Width: halfW, Height: bounds.Height}
	case ZoneRight:
		return geom.Rect{X: midX, Y: bounds.Y, Width: bounds.Right() - midX, Height: bounds.Height}
	case ZoneTop:
		return bounds
	case ZoneBottom:
		return geom.Rect{X: bounds.X, Y: midY, Width: bounds.Width, Height: bounds.Bottom() - midY}
	case ZoneTopLeft:
		return geom.Rect{X: bounds.X, Y: bounds.Y, Width: halfW, Height: halfH}
	case ZoneTopRight:
		return geom.Rect{X: midX, Y: bounds.Y, Width: bounds.Right() - midX, Height: halfH}
	case ZoneBottomLeft:
		return geom.Rect{X: bounds.X, Y: midY, Width: halfW, Height: bounds.Bottom() - midY}
	case ZoneBottomRight:
		return geom.Rect{X: midX, Y: midY, Width: bounds.Right() - midX, Height: bounds.Bottom() - midY}
	default:
		return geom.Rect{}
	}
}

// Trigger returns the activation region of z for the given bounds and margin.
func (z Zone) Trigger(bounds geom.Rect, margin float64) geom.Rect {
	mx := math.Min(margin, bounds.Width)
	my := math.Min(margin, bounds.Height)
	left := bounds.X
	right := bounds.Right() - mx
	top := bounds.Y
	bottom := bounds.Bottom() - my

	switch z {
	case ZoneLeft:
		return geom.Rect{X: left, Y: top, Width: mx, Height: bounds.Height}
	case ZoneRight:
		return geom.Rect{X: right, Y: top, Width: mx, Height: bounds.Height}
	case ZoneTop:
		return geom.Rect{X: left, Y: top, Width: bounds.Width, Height: my}
	case ZoneBottom:
		return geom.Rect{X: left, Y: bottom, Width: bounds.Width, Height: my}
	case ZoneTopLeft:
		return geom.Rect{X: left, Y: top, Width: mx, Height: my}
	case ZoneTopRight:
		return geom.Rect{X: right, Y: top, Width: mx, Height: my}
	case ZoneBottomLeft:
		return geom.Rect{X: left, Y: bottom, Width: mx, Height: my}
	case ZoneBottomRight:
		return geom.Rect{X: right, Y: bottom, Width: mx, Height: my}
	default:
		return geom.Rect{}
	}
}

// SnapZone is a resolved zone for a particular screen.
type SnapZone struct {
	Zone    Zone      `json:"zone"`
	Trigger geom.Rect `json:"trigger"`
	Target  geom.Rect `json:"target"`
}

// detectionOrder lists corners before edges so a pointer inside both a
// corner square and an edge band resolves to the corner.
var detectionOrder = [...]Zone{
	ZoneTopLeft, ZoneTopRight, ZoneBottomLeft, ZoneBottomRight,
	ZoneLeft, ZoneRight, ZoneTop, ZoneBottom,
}

// Zones returns every zone for bounds in detection order.
func Zones(bounds geom.Rect, margin float64) []SnapZone {
	if bounds.Empty() || !(margin > 0) {
		return nil
	}
	out := make([]SnapZone, 0, len(detectionOrder))
	for _, z := range detectionOrder {
		out = append(out, SnapZone{Zone: z, Trigger: z.Trigger(bounds, margin), Target: z.Target(bounds)})
	}
	return out
}

// Detect returns the zone whose trigger region contains pointer. It reports
// false when the pointer is outside every band, outside bounds, or when the
// margin or bounds are degenerate.
func Detect(pointer geom.Point, bounds geom.Rect, margin float64) (SnapZone, bool) {
	if !geom.Contains(bounds, pointer) {
		return SnapZone{}, false
	}
	for _, sz := range Zones(bounds, margin) {
		if geom.Contains(sz.Trigger, pointer) {
			return sz, true
		}
	}
	return SnapZone{}, false
}
