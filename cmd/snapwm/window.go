package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/tui"
	"github.com/1broseidon/snapwm/internal/wm"
)

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  snapwm window list [--json] [--preview]")
	fmt.Fprintln(w, "  snapwm window open [--title T] [--x N --y N --width N --height N] [--min-width N] [--min-height N] [--fixed] [--pinned]")
	fmt.Fprintln(w, "  snapwm window close <id>")
	fmt.Fprintln(w, "  snapwm window focus <id>")
	fmt.Fprintln(w, "  snapwm window snap <id> <left|right|top|bottom|top-left|top-right|bottom-left|bottom-right>")
	fmt.Fprintln(w, "  snapwm window state <id> <normal|minimized|maximized>")
	fmt.Fprintln(w, "  snapwm window move <id> <x> <y>")
	fmt.Fprintln(w, "  snapwm window resize [--strict] <id> <handle> <dx> <dy>")
	fmt.Fprintln(w, "  snapwm window title <id> <title...>")
	fmt.Fprintln(w, "  snapwm window cycle")
	fmt.Fprintln(w, "  snapwm window hit <x> <y>")
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list":
		return runWindowList(args[1:])
	case "open":
		return runWindowOpen(args[1:])
	case "close", "focus", "snap", "state", "move", "title", "hit":
		return runWindowSimple(args[0], args[1:])
	case "resize":
		return runWindowResize(args[1:])
	case "cycle":
		data, err := ipc.NewClient().CycleFocus()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !data.Found {
			fmt.Println("no window to focus")
			return 0
		}
		fmt.Printf("focused %d\n", data.ID)
		return 0
	case "help", "-h", "--help":
		printWindowUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

func runWindowList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	preview := fs.Bool("preview", false, "Draw the screen below the list")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	printWindows(os.Stdout, data)
	if *preview {
		width, height := previewSize(data.Screen)
		fmt.Println()
		for _, line := range tui.Preview(data, width, height) {
			fmt.Println(line)
		}
	}
	return 0
}

// previewSize fits the screen aspect ratio into the terminal, assuming
// character cells about twice as tall as wide.
func previewSize(screen geom.Rect) (int, int) {
	cols, rows := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		cols, rows = w, h
	}
	width := cols
	if width > 120 {
		width = 120
	}
	height := rows - 4
	if !screen.Empty() {
		fit := int(float64(width) * screen.Height / screen.Width / 2)
		if fit < height {
			height = fit
		}
	}
	if height < 3 {
		height = 3
	}
	return width, height
}

func printWindows(w io.Writer, data *ipc.WindowsData) {
	fmt.Fprintf(w, "screen %s  work area %s  revision %d\n",
		formatRect(data.Screen), formatRect(data.WorkArea), data.Revision)
	if len(data.Windows) == 0 {
		fmt.Fprintln(w, "no windows")
		return
	}
	fmt.Fprintf(w, "%-6s %-4s %-22s %-20s %s\n", "ID", "Z", "STATE", "GEOMETRY", "TITLE")
	for _, win := range data.Windows {
		fmt.Fprintln(w, formatWindowRow(win))
	}
}

func formatWindowRow(win ipc.WindowInfo) string {
	state := win.State.String()
	if win.State == wm.StateSnapped {
		state += ":" + win.Zone.String()
	}
	if win.Focused {
		state += "*"
	}
	title := win.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%-6d %-4d %-22s %-20s %s", win.ID, win.Z, state, formatRect(win.Bounds), title)
}

// formatRect prints r in X geometry form, WxH+X+Y.
func formatRect(r geom.Rect) string {
	return fmt.Sprintf("%gx%g%+g%+g", r.Width, r.Height, r.X, r.Y)
}

func runWindowOpen(args []string) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	title := fs.String("title", "", "Window title")
	x := fs.Float64("x", 0, "Left edge")
	y := fs.Float64("y", 0, "Top edge")
	width := fs.Float64("width", 0, "Width (default: window.default_width, centered)")
	height := fs.Float64("height", 0, "Height (default: window.default_height, centered)")
	minWidth := fs.Float64("min-width", 0, "Minimum width (default: window.min_width)")
	minHeight := fs.Float64("min-height", 0, "Minimum height (default: window.min_height)")
	fixed := fs.Bool("fixed", false, "Disallow resizing")
	pinned := fs.Bool("pinned", false, "Disallow moving")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	p := ipc.OpenWindowPayload{
		Title:     *title,
		MinWidth:  *minWidth,
		MinHeight: *minHeight,
		FixedSize: *fixed,
		Pinned:    *pinned,
	}
	if *width > 0 && *height > 0 {
		p.Bounds = geom.Rect{X: *x, Y: *y, Width: *width, Height: *height}
	}
	id, err := ipc.NewClient().OpenWindow(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(id)
	return 0
}

// runWindowSimple handles the positional-only window commands.
func runWindowSimple(cmd string, args []string) int {
	need := map[string]int{"close": 1, "focus": 1, "snap": 2, "state": 2, "move": 3, "title": 2, "hit": 2}[cmd]
	if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
		printWindowUsage(os.Stdout)
		return 0
	}
	if len(args) < need || (cmd != "title" && len(args) > need) {
		fmt.Fprintf(os.Stderr, "window %s: expected %d arguments, got %d\n\n", cmd, need, len(args))
		printWindowUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	if cmd == "hit" {
		p, err := parsePoint(args[0] + "," + args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		data, err := client.HitTest(p.X, p.Y)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !data.Found {
			fmt.Println("none")
			return 0
		}
		fmt.Println(data.ID)
		return 0
	}

	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	switch cmd {
	case "close":
		err = client.CloseWindow(id)
	case "focus":
		err = client.ActivateWindow(id)
	case "snap":
		var zone snap.Zone
		if zone, err = snap.ParseZone(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		err = client.SnapWindow(id, zone)
	case "state":
		var state wm.State
		if state, err = wm.ParseState(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		err = client.SetState(id, state)
	case "move":
		var p geom.Point
		if p, err = parsePoint(args[1] + "," + args[2]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		err = client.MoveWindow(id, p.X, p.Y)
	case "title":
		err = client.SetTitle(id, strings.Join(args[1:], " "))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWindowResize(args []string) int {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	strict := fs.Bool("strict", false, "Fail instead of clamping to the minimum size")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 4 {
		fmt.Fprintln(os.Stderr, "Usage: snapwm window resize [--strict] <id> <handle> <dx> <dy>")
		return 2
	}

	id, err := parseID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	handle, err := wm.ParseHandle(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	delta, err := parsePoint(fs.Arg(2) + "," + fs.Arg(3))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	err = ipc.NewClient().ResizeWindow(ipc.ResizeWindowPayload{
		ID:     id,
		Handle: handle,
		DX:     delta.X,
		DY:     delta.Y,
		Strict: *strict,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDrag(args []string) int {
	if len(args) < 2 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: snapwm drag <id> <x,y> [x,y ...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Grab a window at the first point, move through the rest and release.")
		return 2
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	points := make([]geom.Point, 0, len(args)-1)
	for _, a := range args[1:] {
		p, err := parsePoint(a)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		points = append(points, p)
	}

	client := ipc.NewClient()
	last, err := client.DragBegin(id, points[0].X, points[0].Y)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, p := range points[1:] {
		if last, err = client.DragUpdate(p.X, p.Y); err != nil {
			_ = client.DragCancel()
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if err := client.DragEnd(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if last.HasCandidate {
		fmt.Printf("snapped %s %s\n", last.Candidate.Zone, formatRect(last.Candidate.Target))
	} else {
		fmt.Printf("moved %s\n", formatRect(last.Bounds))
	}
	return 0
}

func runDamage(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: snapwm damage")
		return 2
	}
	frame, err := ipc.NewClient().DrainDamage()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("frame %d revision %d rects %d\n", frame.Seq, frame.Revision, len(frame.Rects))
	for _, r := range frame.Rects {
		fmt.Println(formatRect(r))
	}
	return 0
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return id, nil
}

// parsePoint reads "x,y".
func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, fmt.Errorf("invalid point %q (want x,y)", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return geom.Point{X: x, Y: y}, nil
}
