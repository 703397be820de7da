package config

// Hotkey actions understood by the daemon.
const (
	ActionSnapLeft        = "snap_left"
	ActionSnapRight       = "snap_right"
	ActionSnapTop         = "snap_top"
	ActionSnapBottom      = "snap_bottom"
	ActionSnapTopLeft     = "snap_top_left"
	ActionSnapTopRight    = "snap_top_right"
	ActionSnapBottomLeft  = "snap_bottom_left"
	ActionSnapBottomRight = "snap_bottom_right"
	ActionMaximize        = "maximize"
	ActionMinimize        = "minimize"
	ActionRestore         = "restore"
	ActionClose           = "close"
	ActionCycleFocus      = "cycle_focus"
)

// BuiltinHotkeys returns the default key bindings, keyed by action.
//
// An action bound to "" in the config file is disabled.
func BuiltinHotkeys() map[string]string {
	return map[string]string{
		ActionSnapLeft:        "Mod4-Left",
		ActionSnapRight:       "Mod4-Right",
		ActionSnapTop:         "Mod4-Up",
		ActionSnapBottom:      "Mod4-Down",
		ActionSnapTopLeft:     "Mod4-Shift-Left",
		ActionSnapTopRight:    "Mod4-Shift-Right",
		ActionSnapBottomLeft:  "Mod4-Control-Left",
		ActionSnapBottomRight: "Mod4-Control-Right",
		ActionMaximize:        "Mod4-m",
		ActionMinimize:        "Mod4-n",
		ActionRestore:         "Mod4-r",
		ActionClose:           "Mod4-q",
		ActionCycleFocus:      "Mod1-Tab",
	}
}

// KnownActions lists every action name, sorted.
func KnownActions() []string {
	return []string{
		ActionClose,
		ActionCycleFocus,
		ActionMaximize,
		ActionMinimize,
		ActionRestore,
		ActionSnapBottom,
		ActionSnapBottomLeft,
		ActionSnapBottomRight,
		ActionSnapLeft,
		ActionSnapRight,
		ActionSnapTop,
		ActionSnapTopLeft,
		ActionSnapTopRight,
	}
}

func isKnownAction(name string) bool {
	for _, a := range KnownActions() {
		if a == name {
			return true
		}
	}
	return false
}
