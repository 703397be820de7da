package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/palette"
)

func runFind(args []string) int {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwm find [--limit N] <query>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Fuzzy-search window titles, best match first.")
	}
	limit := fs.Int("limit", 10, "Maximum matches (0 for all)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	query := strings.Join(fs.Args(), " ")

	data, err := ipc.NewClient().FindWindows(query, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(data.Matches) == 0 {
		fmt.Fprintf(os.Stderr, "no window matches %q\n", query)
		return 1
	}
	for _, m := range data.Matches {
		fmt.Printf("%-6d %-5d %s\n", m.Entry.ID, m.Score, m.Entry.Title)
	}
	return 0
}

func runSwitch(args []string) int {
	fs := flag.NewFlagSet("switch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwm switch [--backend NAME] [query]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pick a window from an external menu and focus it.")
		fmt.Fprintln(os.Stderr, "Backends: rofi, fuzzel, wofi, dmenu (default: auto).")
	}
	backendName := fs.String("backend", "auto", "Picker to use")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	query := strings.Join(fs.Args(), " ")

	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()
	data, err := client.ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	chosen, err := palette.Choose(backend, switchEntries(data), query)
	if err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := client.ActivateWindow(chosen.ID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// switchEntries lists windows topmost first so the most recent ones lead
// the menu when there is no query.
func switchEntries(data *ipc.WindowsData) []palette.Entry {
	entries := make([]palette.Entry, 0, len(data.Windows))
	for i := len(data.Windows) - 1; i >= 0; i-- {
		w := data.Windows[i]
		entries = append(entries, palette.Entry{
			ID:      w.ID,
			Title:   w.Title,
			State:   w.State.String(),
			Focused: w.Focused,
		})
	}
	return entries
}
