// Package session persists window layouts as JSON: the autosave file the
// daemon restores on start and any number of named layouts.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/snapwm/internal/geom"
	"github.com/1broseidon/snapwm/internal/wm"
)

// FormatVersion is written into every session file.
const FormatVersion = 1

// Session is one saved layout.
type Session struct {
	Version int         `json:"version"`
	Name    string      `json:"name,omitempty"`
	SavedAt time.Time   `json:"saved_at"`
	Screen  geom.Rect   `json:"screen"`
	Windows []wm.Record `json:"windows"`
}

func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "snapwm"), nil
}

// DefaultPath returns the autosave location, ~/.config/snapwm/session.json.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func sessionsDir() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// ValidateName rejects names that are empty or would escape the sessions
// directory.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("session name is required")
	}
	if strings.Contains(name, string(os.PathSeparator)) || name != filepath.Base(name) {
		return fmt.Errorf("invalid session name %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid session name %q", name)
	}
	return nil
}

// Path returns the file backing a named session.
func Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	dir, err := sessionsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// SaveFile writes s to path, replacing any existing file atomically.
func SaveFile(path string, s *Session) error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	if s.Version == 0 {
		s.Version = FormatVersion
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a session written by SaveFile. A missing file yields an
// error wrapping os.ErrNotExist.
func LoadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", path, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	if s.Version > FormatVersion {
		return nil, fmt.Errorf("session %s has version %d, newest supported is %d", path, s.Version, FormatVersion)
	}
	return &s, nil
}

// Write stores s under its name in the sessions directory.
func Write(s *Session) error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	path, err := Path(s.Name)
	if err != nil {
		return err
	}
	if err := SaveFile(path, s); err != nil {
		return fmt.Errorf("failed to write session %q: %w", s.Name, err)
	}
	return nil
}

// Read loads a named session.
func Read(name string) (*Session, error) {
	path, err := Path(name)
	if err != nil {
		return nil, err
	}
	s, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = name
	}
	return s, nil
}

// Delete removes a named session.
func Delete(name string) error {
	path, err := Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", name, err)
	}
	return nil
}

// List returns the names of all saved sessions, sorted.
func List() ([]string, error) {
	dir, err := sessionsDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(out)
	return out, nil
}
