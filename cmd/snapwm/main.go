package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/snapwm/internal/config"
	"github.com/1broseidon/snapwm/internal/daemon"
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "drag":
		os.Exit(runDrag(os.Args[2:]))
	case "damage":
		os.Exit(runDamage(os.Args[2:]))
	case "find":
		os.Exit(runFind(os.Args[2:]))
	case "switch":
		os.Exit(runSwitch(os.Args[2:]))
	case "session":
		os.Exit(runSession(os.Args[2:]))
	case "tui", "top":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: snapwm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the snapwm daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window list         List windows bottom to top")
	fmt.Fprintln(w, "  window open         Open a window")
	fmt.Fprintln(w, "  window close        Close a window")
	fmt.Fprintln(w, "  window focus        Focus and raise a window")
	fmt.Fprintln(w, "  window snap         Snap a window to a zone")
	fmt.Fprintln(w, "  window state        Set normal, minimized or maximized")
	fmt.Fprintln(w, "  window move         Move a window")
	fmt.Fprintln(w, "  window resize       Resize a window by an edge or corner")
	fmt.Fprintln(w, "  window title        Set a window title")
	fmt.Fprintln(w, "  window cycle        Focus the next window")
	fmt.Fprintln(w, "  window hit          Find the window under a point")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  drag                Replay a pointer drag")
	fmt.Fprintln(w, "  damage              Drain pending dirty rectangles")
	fmt.Fprintln(w, "  find                Fuzzy-search window titles")
	fmt.Fprintln(w, "  switch              Pick a window with rofi/fuzzel/wofi/dmenu and focus it")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  session save        Save the layout to a named session")
	fmt.Fprintln(w, "  session load        Replace the layout with a saved session")
	fmt.Fprintln(w, "  session list        List saved sessions")
	fmt.Fprintln(w, "  session delete      Delete a saved session")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive TUI (alias: top)")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snapwm <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwm daemon [--path PATH] [--headless]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the window manager shell in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/snapwm/config.yaml)")
	headless := fs.Bool("headless", false, "Do not connect to X even when screen.source is x11")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	err := daemon.Run(context.Background(), daemon.Options{
		ConfigPath: *path,
		Logger:     logger,
		Level:      level,
		Headless:   *headless,
	})
	if err != nil {
		log.Fatalf("snapwm daemon: %v", err)
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwm status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	if status.FocusedID != 0 {
		fmt.Printf("focused:        %d\n", status.FocusedID)
	} else {
		fmt.Printf("focused:        -\n")
	}
	fmt.Printf("dragging:       %v\n", status.Dragging)
	fmt.Printf("revision:       %d\n", status.Revision)
	fmt.Printf("screen:         %s\n", formatRect(status.Screen))
	fmt.Printf("work_area:      %s\n", formatRect(status.WorkArea))
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string) int {
	if len(args) > 0 {
		if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
			fmt.Fprintln(os.Stdout, "Usage: snapwm reload")
			return 0
		}
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		return 2
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reloaded")
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  snapwm config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  snapwm config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  snapwm config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/snapwm/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/snapwm/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		_ = fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/snapwm/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/snapwm/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: snapwm tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive TUI for the running daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  1/2/3, tab     Switch between Windows, Settings and Sessions")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓       Navigate")
		fmt.Fprintln(os.Stderr, "  Enter, f       Activate selected window / load session")
		fmt.Fprintln(os.Stderr, "  x              Close window / delete session")
		fmt.Fprintln(os.Stderr, "  m/n/r          Maximize, minimize, restore")
		fmt.Fprintln(os.Stderr, "  H/J/K/L        Snap left, bottom, top, right")
		fmt.Fprintln(os.Stderr, "  Y/U/B/N        Snap to corners")
		fmt.Fprintln(os.Stderr, "  c              Cycle focus")
		fmt.Fprintln(os.Stderr, "  e              Edit settings")
		fmt.Fprintln(os.Stderr, "  s              Save session as")
		fmt.Fprintln(os.Stderr, "  Ctrl+S         Save config and reload the daemon")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C      Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := tui.Run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}
