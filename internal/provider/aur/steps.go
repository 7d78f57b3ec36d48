package aur

import (
	"errors"
	"fmt"

	"github.com/provis-dev/provision/internal/domain/state"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// PackageStep installs a single AUR package via the configured helper.
// Helpers escalate to sudo themselves, so the helper is invoked as the
// current user.
type PackageStep struct {
	pkg    string
	helper Helper
	id     step.ID
	policy step.FailurePolicy
	runner ports.CommandRunner
}

// NewPackageStep creates an AUR install step.
func NewPackageStep(pkg string, helper Helper, policy step.FailurePolicy, runner ports.CommandRunner) *PackageStep {
	return &PackageStep{
		pkg:    pkg,
		helper: helper,
		id:     step.MustNewID("aur:install:" + pkg),
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
	return fmt.Sprintf("Install %s (%s)", s.pkg, s.helper)
}

// Policy returns the failure policy.
func (s *PackageStep) Policy() step.FailurePolicy {
	return s.policy
}

// Check determines if the package is already installed. AUR packages
// land in the local pacman database, so pacman answers the probe.
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

// Apply builds and installs the package, re-probing absence first.
// A failed probe aborts the apply so no record is written without
// verified absence.
func (s *PackageStep) Apply(ctx step.RunContext) ([]state.ChangeRecord, error) {
	installed, err := s.installed(ctx)
	if err != nil {
		return nil, err
	}
	if installed {
		return nil, nil
	}

	result, err := s.runner.Run(ctx.Context(), string(s.helper), "-S", "--noconfirm", "--needed", s.pkg)
	if err != nil {
		return nil, fmt.Errorf("%s -S %s: %w", s.helper, s.pkg, err)
	}
	if !result.Success() {
		return nil, step.NewCommandError(string(s.helper), []string{"-S", s.pkg}, result)
	}

	rec := state.NewChangeRecord(s.id.String(), state.KindPackageInstalled, map[string]string{
		"package": s.pkg,
		"manager": string(s.helper),
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

		result, err := s.runner.Run(ctx.Context(), string(s.helper), "-Rns", "--noconfirm", pkg)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s -Rns %s: %w", s.helper, pkg, err))
			continue
		}
		if !result.Success() {
			errs = append(errs, step.NewCommandError(string(s.helper), []string{"-Rns", pkg}, result))
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
