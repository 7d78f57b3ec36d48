package pacman

import (
	"errors"
	"fmt"

	"github.com/provis-dev/provision/internal/domain/state"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// PackageStep installs a single package with pacman.
type PackageStep struct {
	pkg    string
	id     step.ID
	policy step.FailurePolicy
	runner ports.CommandRunner
}

// NewPackageStep creates a pacman install step.
func NewPackageStep(pkg string, policy step.FailurePolicy, runner ports.CommandRunner) *PackageStep {
	return &PackageStep{
		pkg:    pkg,
		id:     step.MustNewID("pacman:install:" + pkg),
		policy: policy,
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *PackageStep) ID() step.ID {
	return s.id
}

// Label returns a human-readable description.
func (s *PackageStep) Label() string {
	return "Install " + s.pkg + " (pacman)"
}

// Policy returns the failure policy.
func (s *PackageStep) Policy() step.FailurePolicy {
	return s.policy
}

// Check determines if the package is already installed.
func (s *PackageStep) Check(ctx step.RunContext) (step.Status, error) {
	installed, err := s.installed(ctx)
	if err != nil {
		return step.StatusUnknown, err
	}
	if installed {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply installs the package. The absence probe runs again immediately
// before the install so that a package-installed record is only ever
// written for a package this run actually added; uninstall must never
// remove a package the user already had. A failed probe aborts the
// apply: without verified absence no record may be written.
func (s *PackageStep) Apply(ctx step.RunContext) ([]state.ChangeRecord, error) {
	installed, err := s.installed(ctx)
	if err != nil {
		return nil, err
	}
	if installed {
		return nil, nil
	}

	result, err := s.runner.Run(ctx.Context(), "sudo", "pacman", "-S", "--noconfirm", "--needed", s.pkg)
	if err != nil {
		return nil, fmt.Errorf("pacman -S %s: %w", s.pkg, err)
	}
	if !result.Success() {
		return nil, step.NewCommandError("pacman", []string{"-S", s.pkg}, result)
	}

	rec := state.NewChangeRecord(s.id.String(), state.KindPackageInstalled, map[string]string{
		"package": s.pkg,
		"manager": "pacman",
	})
	return []state.ChangeRecord{rec}, nil
}

// Revert removes packages this step recorded as installed.
func (s *PackageStep) Revert(ctx step.RunContext, records []state.ChangeRecord) error {
	var errs []error
	for _, rec := range records {
		if rec.Kind != state.KindPackageInstalled {
			continue
		}
		pkg := rec.Get("package")
		if pkg == "" {
			continue
		}

		result, err := s.runner.Run(ctx.Context(), "sudo", "pacman", "-Rns", "--noconfirm", pkg)
		if err != nil {
			errs = append(errs, fmt.Errorf("pacman -Rns %s: %w", pkg, err))
			continue
		}
		if !result.Success() {
			errs = append(errs, step.NewCommandError("pacman", []string{"-Rns", pkg}, result))
		}
	}
	return errors.Join(errs...)
}

func (s *PackageStep) installed(ctx step.RunContext) (bool, error) {
	result, err := s.runner.Run(ctx.Context(), "pacman", "-Qi", s.pkg)
	if err != nil {
		return false, err
	}
	return result.Success(), nil
}

// Ensure PackageStep implements RevertibleStep.
var _ step.RevertibleStep = (*PackageStep)(nil)
