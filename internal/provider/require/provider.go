// Package require provisions nothing: its steps are preconditions
// that verify a binary is reachable, optionally at a minimum version,
// before the rest of the run proceeds.
package require

import (
	"fmt"

	"github.com/provis-dev/provision/internal/domain/engine"
	"github.com/provis-dev/provision/internal/domain/manifest"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// Provider compiles the require manifest section.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a require provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "require"
}

// Compile turns requirements into check-only steps.
func (p *Provider) Compile(m *manifest.Manifest) ([]step.Step, error) {
	steps := make([]step.Step, 0, len(m.Require))
	for _, req := range m.Require {
		policy, err := step.ParsePolicy(req.Policy, m.DefaultPolicy())
		if err != nil {
			return nil, fmt.Errorf("require %s: %w", req.Binary, err)
		}
		steps = append(steps, NewBinaryStep(req.Binary, req.MinVersion, req.VersionFlag, policy, p.runner))
	}
	return steps, nil
}

// Ensure Provider implements engine.Provider.
var _ engine.Provider = (*Provider)(nil)
