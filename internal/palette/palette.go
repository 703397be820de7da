// Package palette drives an external dmenu-style picker (rofi, fuzzel, wofi
// or dmenu) and ranks window titles for the task switcher.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the picker without choosing.
var ErrCancelled = errors.New("palette cancelled")

// Item is one selectable row.
type Item struct {
	Label  string // display text
	Value  string // returned on selection, never shown
	Active bool   // highlighted as current
}

// Backend shows a list of items and returns the chosen one.
type Backend interface {
	Show(prompt string, items []Item) (Item, error)
	Name() string
}

// backendOrder is the detection priority.
var backendOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// DetectBackend returns the first picker found in PATH.
func DetectBackend() (string, error) {
	for _, name := range backendOrder {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(backendOrder, ", "))
}

// NewBackend creates a backend by name. "" and "auto" detect one.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var kind backendKind
	switch name {
	case "rofi":
		kind = kindRofi
	case "fuzzel":
		kind = kindFuzzel
	case "wofi":
		kind = kindWofi
	case "dmenu":
		kind = kindDmenu
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(backendOrder, ", "))
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return &dmenuLikeBackend{command: name, kind: kind, run: runCommand}, nil
}
