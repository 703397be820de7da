package tui

import (
	"github.com/1broseidon/snapwm/internal/ipc"
	"github.com/1broseidon/snapwm/internal/snap"
	"github.com/1broseidon/snapwm/internal/wm"
)

// Daemon is the subset of the IPC client the TUI drives. *ipc.Client
// satisfies it.
type Daemon interface {
	Ping() error
	Reload() error
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
	ActivateWindow(id uint64) error
	CloseWindow(id uint64) error
	SetState(id uint64, state wm.State) error
	SnapWindow(id uint64, zone snap.Zone) error
	CycleFocus() (*ipc.FocusData, error)
	SaveSession(name string) (*ipc.SessionData, error)
	LoadSession(name string) (*ipc.SessionData, error)
}

var _ Daemon = (*ipc.Client)(nil)
