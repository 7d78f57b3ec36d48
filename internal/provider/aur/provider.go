// Package aur provisions AUR packages through a pacman-compatible
// helper (paru or yay).
package aur

import (
	"errors"
	"fmt"

	"github.com/provis-dev/provision/internal/domain/engine"
	"github.com/provis-dev/provision/internal/domain/manifest"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// Helper is the closed set of supported AUR helpers. The helper is
// chosen once at compile time; there is no string dispatch per step.
type Helper string

const (
	// HelperParu is the paru AUR helper.
	HelperParu Helper = "paru"
	// HelperYay is the yay AUR helper.
	HelperYay Helper = "yay"
)

// ErrUnknownHelper indicates an unsupported helper name.
var ErrUnknownHelper = errors.New("unknown AUR helper")

// ParseHelper maps a helper name to a Helper. The empty string maps to
// the given fallback.
func ParseHelper(name string, fallback Helper) (Helper, error) {
	switch Helper(name) {
	case "":
		return fallback, nil
	case HelperParu:
		return HelperParu, nil
	case HelperYay:
		return HelperYay, nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownHelper, name, HelperParu, HelperYay)
}

// Provider compiles the aur manifest section.
type Provider struct {
	runner        ports.CommandRunner
	defaultHelper Helper
}

// NewProvider creates an AUR provider. defaultHelper is used when the
// manifest does not pick one.
func NewProvider(runner ports.CommandRunner, defaultHelper Helper) *Provider {
	return &Provider{runner: runner, defaultHelper: defaultHelper}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "aur"
}

// Compile turns the aur section into one install step per package.
func (p *Provider) Compile(m *manifest.Manifest) ([]step.Step, error) {
	if len(m.AUR.Packages) == 0 {
		return nil, nil
	}

	helper, err := ParseHelper(m.AUR.Helper, p.defaultHelper)
	if err != nil {
		return nil, err
	}

	steps := make([]step.Step, 0, len(m.AUR.Packages))
	for _, pkg := range m.AUR.Packages {
		policy, err := step.ParsePolicy(pkg.Policy, m.DefaultPolicy())
		if err != nil {
			return nil, fmt.Errorf("aur package %s: %w", pkg.Name, err)
		}
		steps = append(steps, NewPackageStep(pkg.Name, helper, policy, p.runner))
	}
	return steps, nil
}

// Ensure Provider implements engine.Provider.
var _ engine.Provider = (*Provider)(nil)
