package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/wm"
)

type boxRunes struct {
	h, v, tl, tr, bl, br rune
}

var (
	lightBox = boxRunes{'─', '│', '┌', '┐', '└', '┘'}
	heavyBox = boxRunes{'━', '┃', '┏', '┓', '┗', '┛'}
)

// summarizeScreen describes the screen and work area in one line.
func summarizeScreen(data *ipc.WindowsData) string {
	if data == nil {
		return ""
	}
	visible := 0
	for _, w := range data.Windows {
		if w.State != wm.StateMinimized {
			visible++
		}
	}
	return fmt.Sprintf("%d windows (%d visible) • screen %g×%g • work area %g×%g",
		len(data.Windows), visible,
		data.Screen.Width, data.Screen.Height,
		data.WorkArea.Width, data.WorkArea.Height)
}

// renderScreenPreview draws the visible windows of data onto a width×height
// character canvas, bottom of the stack first so upper windows overdraw
// lower ones. The selected window gets a heavy border.
func renderScreenPreview(data *ipc.WindowsData, selected uint64, width, height int) []string {
	if data == nil || width < 5 || height < 3 || data.Screen.Empty() {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, w := range data.Windows {
		if w.State == wm.StateMinimized {
			continue
		}
		box := lightBox
		if w.ID == selected {
			box = heavyBox
		}
		drawWindow(canvas, data.Screen, w.Bounds, fmt.Sprintf("%d", w.ID), box)
	}

	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

// toCanvas maps a screen rectangle to inclusive canvas cell bounds inside
// the outer border.
func toCanvas(screen, r geom.Rect, canvasW, canvasH int) (x1, y1, x2, y2 int) {
	innerW := float64(canvasW - 2)
	innerH := float64(canvasH - 2)
	x1 = 1 + int((r.X-screen.X)*innerW/screen.Width)
	y1 = 1 + int((r.Y-screen.Y)*innerH/screen.Height)
	x2 = int((r.Right() - screen.X) * innerW / screen.Width)
	y2 = int((r.Bottom() - screen.Y) * innerH / screen.Height)

	// Clamp to canvas bounds
	if x1 < 1 {
		x1 = 1
	}
	if y1 < 1 {
		y1 = 1
	}
	if x2 > canvasW-2 {
		x2 = canvasW - 2
	}
	if y2 > canvasH-2 {
		y2 = canvasH - 2
	}
	return x1, y1, x2, y2
}

func drawWindow(canvas [][]rune, screen, bounds geom.Rect, label string, box boxRunes) {
	canvasH := len(canvas)
	canvasW := len(canvas[0])
	x1, y1, x2, y2 := toCanvas(screen, bounds, canvasW, canvasH)

	// Need at least 2x2 for a window
	if x2 <= x1 || y2 <= y1 {
		return
	}

	// Clear the interior so this window hides what is below it.
	for y := y1 + 1; y < y2; y++ {
		for x := x1 + 1; x < x2; x++ {
			canvas[y][x] = ' '
		}
	}
	for x := x1; x <= x2; x++ {
		canvas[y1][x] = box.h
		canvas[y2][x] = box.h
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = box.v
		canvas[y][x2] = box.v
	}
	canvas[y1][x1] = box.tl
	canvas[y1][x2] = box.tr
	canvas[y2][x1] = box.bl
	canvas[y2][x2] = box.br

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 {
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if height < 0 {
		height = 0
	}
	if width < 0 {
		width = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}

// Preview renders data onto a width×height canvas with the focused window
// highlighted, for non-interactive output.
func Preview(data *ipc.WindowsData, width, height int) []string {
	var focused uint64
	if data != nil {
		for _, w := range data.Windows {
			if w.Focused {
				focused = w.ID
			}
		}
	}
	return renderScreenPreview(data, focused, width, height)
}
