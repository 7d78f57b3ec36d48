// Package files provisions configuration files: INI-section patches
// and file installs, always behind a timestamped backup so the change
// can be reversed.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/provis-dev/provision/internal/domain/engine"
	"github.com/provis-dev/provision/internal/domain/manifest"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// Provider compiles the files manifest section.
type Provider struct {
	prompter ports.Prompter
}

// NewProvider creates a files provider.
func NewProvider(prompter ports.Prompter) *Provider {
	return &Provider{prompter: prompter}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "files"
}

// Compile turns the files section into ini-patch and copy steps.
func (p *Provider) Compile(m *manifest.Manifest) ([]step.Step, error) {
	steps := make([]step.Step, 0, len(m.Files.Ini)+len(m.Files.Copies))

	for _, entry := range m.Files.Ini {
		policy, err := step.ParsePolicy(entry.Policy, m.DefaultPolicy())
		if err != nil {
			return nil, fmt.Errorf("files.ini %s: %w", entry.Path, err)
		}
		steps = append(steps, NewIniStep(expandPath(entry.Path), entry.Section, entry.Keys, policy))
	}

	for _, entry := range m.Files.Copies {
		policy, err := step.ParsePolicy(entry.Policy, m.DefaultPolicy())
		if err != nil {
			return nil, fmt.Errorf("files.copies %s: %w", entry.Dest, err)
		}
		steps = append(steps, NewCopyStep(expandPath(entry.Source), expandPath(entry.Dest), entry.Mode, entry.Confirm, policy, p.prompter))
	}

	return steps, nil
}

// expandPath resolves a leading ~ against the invoking user's home.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// sanitizeID maps an arbitrary path or section name onto the step ID
// alphabet.
func sanitizeID(s string) string {
	s = strings.TrimPrefix(s, "/")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-._")
	if out == "" {
		return "file"
	}
	return out
}

// Ensure Provider implements engine.Provider.
var _ engine.Provider = (*Provider)(nil)
