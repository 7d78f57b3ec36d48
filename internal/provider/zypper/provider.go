// Package zypper provisions openSUSE packages.
package zypper

import (
	"fmt"

	"github.com/provis-dev/provision/internal/domain/engine"
	"github.com/provis-dev/provision/internal/domain/manifest"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// Provider compiles the zypper manifest section.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a zypper provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "zypper"
}

// Compile turns the zypper section into one install step per package.
func (p *Provider) Compile(m *manifest.Manifest) ([]step.Step, error) {
	steps := make([]step.Step, 0, len(m.Zypper.Packages))
	for _, pkg := range m.Zypper.Packages {
		policy, err := step.ParsePolicy(pkg.Policy, m.DefaultPolicy())
		if err != nil {
			return nil, fmt.Errorf("zypper package %s: %w", pkg.Name, err)
		}
		steps = append(steps, NewPackageStep(pkg.Name, policy, p.runner))
	}
	return steps, nil
}

// Ensure Provider implements engine.Provider.
var _ engine.Provider = (*Provider)(nil)
