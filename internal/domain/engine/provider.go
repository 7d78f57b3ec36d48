package engine

import (
	"github.com/provis-dev/provision/internal/domain/manifest"
	"github.com/provis-dev/provision/internal/domain/step"
)

// Provider compiles one section of the manifest into executable steps.
// Each provider handles a specific resource type (pacman, systemd,
// files, ...). Steps are returned in manifest order, and providers are
// themselves registered in a fixed order, so the resulting step list
// is deterministic.
type Provider interface {
	// Name returns the provider's identifier (e.g., "pacman").
	Name() string

	// Compile transforms the provider's manifest section into steps.
	// A provider with nothing to do returns an empty slice.
	Compile(m *manifest.Manifest) ([]step.Step, error)
}

// CompileAll runs every provider in registration order and
// concatenates the resulting steps.
func CompileAll(m *manifest.Manifest, providers []Provider) ([]step.Step, error) {
	var steps []step.Step
	for _, p := range providers {
		compiled, err := p.Compile(m)
		if err != nil {
			return nil, err
		}
		steps = append(steps, compiled...)
	}
	return steps, nil
}
