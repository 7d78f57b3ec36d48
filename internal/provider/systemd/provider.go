// Package systemd provisions systemd unit state.
package systemd

import (
	"fmt"

	"github.com/provis-dev/provision/internal/domain/engine"
	"github.com/provis-dev/provision/internal/domain/manifest"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// Provider compiles the systemd manifest section.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a systemd provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "systemd"
}

// Compile turns the systemd section into one step per unit.
func (p *Provider) Compile(m *manifest.Manifest) ([]step.Step, error) {
	steps := make([]step.Step, 0, len(m.Systemd.Units))
	for _, unit := range m.Systemd.Units {
		policy, err := step.ParsePolicy(unit.Policy, m.DefaultPolicy())
		if err != nil {
			return nil, fmt.Errorf("systemd unit %s: %w", unit.Name, err)
		}
		steps = append(steps, NewUnitStep(unit.Name, unit.ShouldEnable(), unit.Start, policy, p.runner))
	}
	return steps, nil
}

// Ensure Provider implements engine.Provider.
var _ engine.Provider = (*Provider)(nil)
