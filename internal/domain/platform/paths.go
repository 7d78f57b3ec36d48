package platform

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDir = "provision"

// StateDir returns the directory holding the change journal and run
// lock, resolved through XDG ($XDG_STATE_HOME/provision).
func StateDir() string {
	return filepath.Join(xdg.StateHome, appDir)
}

// ConfigDir returns the directory holding tool settings
// ($XDG_CONFIG_HOME/provision).
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appDir)
}

// DefaultJournalPath returns the default change journal location.
func DefaultJournalPath() string {
	return filepath.Join(StateDir(), "journal.yaml")
}

// DefaultLockPath returns the default run lock location.
func DefaultLockPath() string {
	return filepath.Join(StateDir(), "run.lock")
}

// DefaultSettingsPath returns the default tool settings location.
func DefaultSettingsPath() string {
	return filepath.Join(ConfigDir(), "settings.toml")
}
