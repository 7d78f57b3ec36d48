// Package groups provisions supplementary group memberships (docker,
// wireshark, libvirt) via usermod.
package groups

import (
	"fmt"
	"os"

	"github.com/provis-dev/provision/internal/domain/engine"
	"github.com/provis-dev/provision/internal/domain/manifest"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// Provider compiles the groups manifest section.
type Provider struct {
	runner   ports.CommandRunner
	prompter ports.Prompter
}

// NewProvider creates a groups provider.
func NewProvider(runner ports.CommandRunner, prompter ports.Prompter) *Provider {
	return &Provider{runner: runner, prompter: prompter}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "groups"
}

// Compile turns membership entries into steps. Entries without a user
// resolve one lazily at check time so a single prompt covers the run.
func (p *Provider) Compile(m *manifest.Manifest) ([]step.Step, error) {
	resolver := newUserResolver(p.prompter)

	steps := make([]step.Step, 0, len(m.Groups.Memberships))
	for _, entry := range m.Groups.Memberships {
		policy, err := step.ParsePolicy(entry.Policy, m.DefaultPolicy())
		if err != nil {
			return nil, fmt.Errorf("groups %s: %w", entry.Group, err)
		}

		user := userFn(func(step.RunContext) (string, error) { return entry.User, nil })
		if entry.User == "" {
			user = resolver.resolve
		}
		steps = append(steps, NewMembershipStep(entry.Group, user, policy, p.runner))
	}
	return steps, nil
}

// currentUser returns the invoking user's login name.
func currentUser() string {
	if u := os.Getenv("SUDO_USER"); u != "" {
		return u
	}
	return os.Getenv("USER")
}

// Ensure Provider implements engine.Provider.
var _ engine.Provider = (*Provider)(nil)
