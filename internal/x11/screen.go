package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/wm"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds geom.Rect
}

// Monitors retrieves all active monitors using XRandR
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: name,
			Bounds: geom.Rect{
				X:      float64(info.X),
				Y:      float64(info.Y),
				Width:  float64(info.Width),
				Height: float64(info.Height),
			},
		})
	}
	return monitors, nil
}

// Screen is the geometry snapwm lays windows out on.
type Screen struct {
	Monitor string
	Bounds  geom.Rect
	// Padding is the space reserved by docks and panels.
	Padding wm.Insets
}

// ActiveScreen returns the monitor under the pointer, or the first monitor,
// together with the space docks reserve on it. Without RandR the root window
// is used.
func (c *Connection) ActiveScreen() (Screen, error) {
	root, err := c.rootBounds()
	if err != nil {
		return Screen{}, err
	}

	scr := Screen{Monitor: "root", Bounds: root}
	if monitors, err := c.Monitors(); err == nil && len(monitors) > 0 {
		mon := monitors[0]
		if p, ok := c.pointer(); ok {
			if m, found := monitorAt(monitors, p); found {
				mon = m
			}
		}
		scr.Monitor = mon.Name
		scr.Bounds = mon.Bounds
	}

	if pad, ok := c.dockPadding(scr.Bounds, root); ok {
		scr.Padding = pad
		return scr, nil
	}
	if areas, err := ewmh.WorkareaGet(c.XUtil); err == nil && len(areas) > 0 {
		idx := 0
		if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
			idx = int(cur)
		}
		wa := areas[idx]
		scr.Padding = insetsWithin(scr.Bounds, geom.Rect{
			X:      float64(wa.X),
			Y:      float64(wa.Y),
			Width:  float64(wa.Width),
			Height: float64(wa.Height),
		})
	}
	return scr, nil
}

func (c *Connection) rootBounds() (geom.Rect, error) {
	g, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return geom.Rect{Width: float64(g.Width), Height: float64(g.Height)}, nil
}

func (c *Connection) pointer() (geom.Point, bool) {
	p, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geom.Point{}, false
	}
	return geom.Point{X: float64(p.RootX), Y: float64(p.RootY)}, true
}

func monitorAt(monitors []Monitor, p geom.Point) (Monitor, bool) {
	for _, m := range monitors {
		if geom.Contains(m.Bounds, p) {
			return m, true
		}
	}
	return Monitor{}, false
}

// dockPadding sums the struts of dock windows that overlap mon.
func (c *Connection) dockPadding(mon, root geom.Rect) (wm.Insets, bool) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return wm.Insets{}, false
	}

	var pad wm.Insets
	for _, id := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, id)
		if err != nil || !hasType(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, id); err == nil {
			pad = maxInsets(pad, strutInsets(mon, root, *sp))
			continue
		}
		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, id); err == nil {
			pad = maxInsets(pad, strutInsets(mon, root, fullStrut(s, root)))
		}
	}

	if pad == (wm.Insets{}) {
		return pad, false
	}
	return pad, true
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func fullStrut(s *ewmh.WmStrut, root geom.Rect) ewmh.WmStrutPartial {
	w := uint(root.Width) - 1
	h := uint(root.Height) - 1
	return ewmh.WmStrutPartial{
		Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
		LeftEndY: h, RightEndY: h, TopEndX: w, BottomEndX: w,
	}
}

// strutInsets converts one partial strut, given in root coordinates, into
// the padding it takes from mon.
func strutInsets(mon, root geom.Rect, sp ewmh.WmStrutPartial) wm.Insets {
	var pad wm.Insets
	if sp.Top > 0 {
		band := geom.Rect{X: float64(sp.TopStartX), Width: float64(sp.TopEndX-sp.TopStartX) + 1, Height: float64(sp.Top)}
		pad.Top = geom.Intersect(mon, band).Height
	}
	if sp.Bottom > 0 {
		band := geom.Rect{X: float64(sp.BottomStartX), Y: root.Height - float64(sp.Bottom), Width: float64(sp.BottomEndX-sp.BottomStartX) + 1, Height: float64(sp.Bottom)}
		pad.Bottom = geom.Intersect(mon, band).Height
	}
	if sp.Left > 0 {
		band := geom.Rect{Y: float64(sp.LeftStartY), Width: float64(sp.Left), Height: float64(sp.LeftEndY-sp.LeftStartY) + 1}
		pad.Left = geom.Intersect(mon, band).Width
	}
	if sp.Right > 0 {
		band := geom.Rect{X: root.Width - float64(sp.Right), Y: float64(sp.RightStartY), Width: float64(sp.Right), Height: float64(sp.RightEndY-sp.RightStartY) + 1}
		pad.Right = geom.Intersect(mon, band).Width
	}
	return pad
}

func maxInsets(a, b wm.Insets) wm.Insets {
	return wm.Insets{
		Top:    max(a.Top, b.Top),
		Right:  max(a.Right, b.Right),
		Bottom: max(a.Bottom, b.Bottom),
		Left:   max(a.Left, b.Left),
	}
}

// insetsWithin returns the padding that shrinks mon to its overlap with the
// work area wa. No overlap means no padding.
func insetsWithin(mon, wa geom.Rect) wm.Insets {
	in := geom.Intersect(mon, wa)
	if in.Empty() {
		return wm.Insets{}
	}
	return wm.Insets{
		Top:    in.Y - mon.Y,
		Left:   in.X - mon.X,
		Bottom: mon.Bottom() - in.Bottom(),
		Right:  mon.Right() - in.Right(),
	}
}
