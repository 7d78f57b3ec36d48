package require

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/provis-dev/provision/internal/domain/state"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// Precondition errors.
var (
	ErrBinaryMissing  = errors.New("required binary not found")
	ErrVersionTooOld  = errors.New("required binary too old")
	ErrVersionUnknown = errors.New("could not determine binary version")
)

// versionPattern extracts the first semver-looking token from version
// output ("git version 2.45.1" -> "2.45.1").
var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// BinaryStep verifies a binary is on PATH, optionally at a minimum
// version. It never changes the system: apply only reports the unmet
// precondition.
type BinaryStep struct {
	binary      string
	minVersion  string
	versionFlag string
	id          step.ID
	policy      step.FailurePolicy
	runner      ports.CommandRunner
}

// NewBinaryStep creates a precondition step. versionFlag defaults to
// --version when a minimum version is set.
func NewBinaryStep(binary, minVersion, versionFlag string, policy step.FailurePolicy, runner ports.CommandRunner) *BinaryStep {
	if versionFlag == "" {
		versionFlag = "--version"
	}
	return &BinaryStep{
		binary:      binary,
		minVersion:  minVersion,
		versionFlag: versionFlag,
		id:          step.MustNewID("require:" + binary),
		policy:      policy,
		runner:      runner,
	}
}

// ID returns the step identifier.
func (s *BinaryStep) ID() step.ID {
	return s.id
}

// Label returns a human-readable description.
func (s *BinaryStep) Label() string {
	if s.minVersion != "" {
		return fmt.Sprintf("Require %s >= %s", s.binary, s.minVersion)
	}
	return "Require " + s.binary
}

// Policy returns the failure policy.
func (s *BinaryStep) Policy() step.FailurePolicy {
	return s.policy
}

// Check reports satisfied when the binary resolves and meets the
// minimum version.
func (s *BinaryStep) Check(ctx step.RunContext) (step.Status, error) {
	if _, err := exec.LookPath(s.binary); err != nil {
		return step.StatusNeedsApply, nil
	}
	if s.minVersion == "" {
		return step.StatusSatisfied, nil
	}

	version, err := s.probeVersion(ctx)
	if err != nil {
		return step.StatusUnknown, err
	}
	if semver.Compare(canonical(version), canonical(s.minVersion)) < 0 {
		return step.StatusNeedsApply, nil
	}
	return step.StatusSatisfied, nil
}

// Apply cannot install anything; it reports why the precondition is
// unmet so the failure policy decides whether the run continues.
func (s *BinaryStep) Apply(ctx step.RunContext) ([]state.ChangeRecord, error) {
	if _, err := exec.LookPath(s.binary); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBinaryMissing, s.binary)
	}
	if s.minVersion == "" {
		return nil, nil
	}

	version, err := s.probeVersion(ctx)
	if err != nil {
		return nil, err
	}
	if semver.Compare(canonical(version), canonical(s.minVersion)) < 0 {
		return nil, fmt.Errorf("%w: %s %s < %s", ErrVersionTooOld, s.binary, version, s.minVersion)
	}
	return nil, nil
}

func (s *BinaryStep) probeVersion(ctx step.RunContext) (string, error) {
	result, err := s.runner.Run(ctx.Context(), s.binary, s.versionFlag)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %w", ErrVersionUnknown, s.binary, s.versionFlag, err)
	}
	if !result.Success() {
		return "", step.NewCommandError(s.binary, []string{s.versionFlag}, result)
	}

	match := versionPattern.FindString(result.CombinedOutput())
	if match == "" {
		return "", fmt.Errorf("%w: %s: no version in output", ErrVersionUnknown, s.binary)
	}
	return match, nil
}

// canonical prefixes v so x/mod/semver accepts bare versions, padding
// two-part versions with a trailing zero.
func canonical(version string) string {
	v := "v" + strings.TrimPrefix(version, "v")
	if strings.Count(v, ".") == 1 {
		v += ".0"
	}
	return v
}

// Ensure BinaryStep implements Step.
var _ step.Step = (*BinaryStep)(nil)
