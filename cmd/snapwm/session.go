package main

import (
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/session"
)

func printSessionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  snapwm session save [name]     Save the layout (default: autosave session)")
	fmt.Fprintln(w, "  snapwm session load [name]     Replace the layout with a saved one")
	fmt.Fprintln(w, "  snapwm session list            List named sessions")
	fmt.Fprintln(w, "  snapwm session delete <name>   Delete a named session")
}

func runSession(args []string) int {
	if len(args) == 0 {
		printSessionUsage(os.Stderr)
		return 2
	}

	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	if len(args) > 2 {
		fmt.Fprintf(os.Stderr, "session %s takes at most one name\n", args[0])
		return 2
	}

	switch args[0] {
	case "save", "load":
		client := ipc.NewClient()
		var data *ipc.SessionData
		var err error
		if args[0] == "save" {
			data, err = client.SaveSession(name)
		} else {
			data, err = client.LoadSession(name)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		verb := "saved"
		if args[0] == "load" {
			verb = "loaded"
		}
		fmt.Printf("%s %d windows (%s)\n", verb, data.Windows, data.Path)
		return 0

	case "list":
		names, err := session.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if len(names) == 0 {
			fmt.Println("no saved sessions")
			return 0
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return 0

	case "delete":
		if name == "" {
			fmt.Fprintln(os.Stderr, "session delete requires a name")
			return 2
		}
		if err := session.Delete(name); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "help", "-h", "--help":
		printSessionUsage(os.Stdout)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown session command: %s\n\n", args[0])
		printSessionUsage(os.Stderr)
		return 2
	}
}
