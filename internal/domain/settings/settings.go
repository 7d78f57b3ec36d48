// Package settings loads operator-level tool settings, as opposed to
// the per-machine manifest. Settings live in the XDG config dir and
// are entirely optional.
package settings

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/provis-dev/provision/internal/domain/step"
)

// Settings are tool-wide knobs read from settings.toml.
type Settings struct {
	// DefaultPolicy overrides the failure policy used when neither the
	// manifest defaults nor the item set one.
	DefaultPolicy string `toml:"default_policy"`
	// AURHelper names the pacman-compatible helper (paru, yay). It is
	// used when the manifest's aur section does not pick one.
	AURHelper string `toml:"aur_helper"`
	// StateDir overrides the journal/lock directory.
	StateDir string `toml:"state_dir"`
	// AssumeYes suppresses interactive confirmation, like --yes.
	AssumeYes bool `toml:"assume_yes"`
	// LogJSON switches logging to JSON output, like --log-json.
	LogJSON bool `toml:"log_json"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		DefaultPolicy: string(step.PolicyFatal),
		AURHelper:     "paru",
	}
}

// Load reads settings from path, filling unset fields from Default.
// A missing file is not an error; defaults are returned.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("failed to parse settings: %w", err)
	}

	if _, err := step.ParsePolicy(s.DefaultPolicy, step.PolicyFatal); err != nil {
		return Default(), fmt.Errorf("invalid settings: %w", err)
	}
	if s.DefaultPolicy == "" {
		s.DefaultPolicy = string(step.PolicyFatal)
	}
	if s.AURHelper == "" {
		s.AURHelper = "paru"
	}

	return s, nil
}
