package palette

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type backendKind int

const (
	kindRofi backendKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// runFunc executes a picker with stdin and returns its stdout.
type runFunc func(command string, args []string, stdin string) (string, error)

type dmenuLikeBackend struct {
	command string
	kind    backendKind
	run     runFunc
}

func (b *dmenuLikeBackend) Name() string { return b.command }

// indexOutput reports whether the picker prints the row index rather than
// the row text.
func (b *dmenuLikeBackend) indexOutput() bool {
	return b.kind == kindRofi || b.kind == kindFuzzel
}

func (b *dmenuLikeBackend) Show(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	labels := b.labels(items)
	out, err := b.run(b.command, b.buildArgs(prompt, items), strings.Join(labels, "\n"))
	selection := strings.TrimSpace(out)
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		return Item{}, err
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}

	if b.indexOutput() {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for i, label := range labels {
		if label == selection {
			return items[i], nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func (b *dmenuLikeBackend) buildArgs(prompt string, items []Item) []string {
	var args []string
	switch b.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active []string
		for i, item := range items {
			if item.Active {
				active = append(active, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","), "-selected-row", active[0])
		}
	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindWofi:
		args = []string{"--dmenu"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

// labels sanitizes item labels. Pickers that return text get duplicate
// labels numbered so every row maps back to one item.
func (b *dmenuLikeBackend) labels(items []Item) []string {
	out := make([]string, len(items))
	seen := make(map[string]int)
	for i, item := range items {
		label := sanitizeLabel(item.Label)
		if !b.indexOutput() {
			if n := seen[label]; n > 0 {
				seen[label]++
				label = fmt.Sprintf("%s (%d)", label, n+1)
			} else {
				seen[label] = 1
			}
		}
		out[i] = label
	}
	return out
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\x00", " ")
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func runCommand(command string, args []string, stdin string) (string, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil && !isCancelExit(err) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(out), fmt.Errorf("%s failed: %s", command, msg)
		}
		return string(out), fmt.Errorf("%s failed: %w", command, err)
	}
	return string(out), err
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	}
	return false
}
