package systemd

import (
	"errors"
	"fmt"

	"github.com/provis-dev/provision/internal/domain/state"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// UnitStep enables and/or starts a systemd unit.
type UnitStep struct {
	unit   string
	enable bool
	start  bool
	id     step.ID
	policy step.FailurePolicy
	runner ports.CommandRunner
}

// NewUnitStep creates a systemd unit step.
func NewUnitStep(unit string, enable, start bool, policy step.FailurePolicy, runner ports.CommandRunner) *UnitStep {
	return &UnitStep{
		unit:   unit,
		enable: enable,
		start:  start,
		id:     step.MustNewID("systemd:unit:" + unit),
		policy: policy,
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *UnitStep) ID() step.ID {
	return s.id
}

// Label returns a human-readable description.
func (s *UnitStep) Label() string {
	switch {
	case s.enable && s.start:
		return "Enable and start " + s.unit
	case s.start:
		return "Start " + s.unit
	default:
		return "Enable " + s.unit
	}
}

// Policy returns the failure policy.
func (s *UnitStep) Policy() step.FailurePolicy {
	return s.policy
}

// Check probes the unit's enabled/active state. Probes against a unit
// that does not exist yet (its package installs later in the run)
// error here and the engine proceeds to apply.
func (s *UnitStep) Check(ctx step.RunContext) (step.Status, error) {
	if s.enable {
		enabled, err := s.isEnabled(ctx)
		if err != nil {
			return step.StatusUnknown, err
		}
		if !enabled {
			return step.StatusNeedsApply, nil
		}
	}
	if s.start {
		active, err := s.isActive(ctx)
		if err != nil {
			return step.StatusUnknown, err
		}
		if !active {
			return step.StatusNeedsApply, nil
		}
	}
	return step.StatusSatisfied, nil
}

// Apply enables and starts the unit as requested. Each transition is
// probed immediately beforehand so records cover only transitions this
// run performed; uninstall must not disable a unit that was already
// enabled before provisioning.
func (s *UnitStep) Apply(ctx step.RunContext) ([]state.ChangeRecord, error) {
	var records []state.ChangeRecord

	if s.enable {
		enabled, err := s.isEnabled(ctx)
		if err != nil {
			return records, err
		}
		if !enabled {
			result, err := s.runner.Run(ctx.Context(), "sudo", "systemctl", "enable", s.unit)
			if err != nil {
				return records, fmt.Errorf("systemctl enable %s: %w", s.unit, err)
			}
			if !result.Success() {
				return records, step.NewCommandError("systemctl", []string{"enable", s.unit}, result)
			}
			records = append(records, state.NewChangeRecord(s.id.String(), state.KindServiceEnabled, map[string]string{
				"unit":   s.unit,
				"action": "enable",
			}))
		}
	}

	if s.start {
		active, err := s.isActive(ctx)
		if err != nil {
			return records, err
		}
		if !active {
			result, err := s.runner.Run(ctx.Context(), "sudo", "systemctl", "start", s.unit)
			if err != nil {
				return records, fmt.Errorf("systemctl start %s: %w", s.unit, err)
			}
			if !result.Success() {
				return records, step.NewCommandError("systemctl", []string{"start", s.unit}, result)
			}
			records = append(records, state.NewChangeRecord(s.id.String(), state.KindServiceEnabled, map[string]string{
				"unit":   s.unit,
				"action": "start",
			}))
		}
	}

	return records, nil
}

// Revert undoes recorded transitions: started units are stopped,
// enabled units are disabled. Stop before disable.
func (s *UnitStep) Revert(ctx step.RunContext, records []state.ChangeRecord) error {
	var errs []error

	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.Kind != state.KindServiceEnabled {
			continue
		}
		unit := rec.Get("unit")
		if unit == "" {
			continue
		}

		var verb string
		switch rec.Get("action") {
		case "start":
			verb = "stop"
		case "enable":
			verb = "disable"
		default:
			continue
		}

		result, err := s.runner.Run(ctx.Context(), "sudo", "systemctl", verb, unit)
		if err != nil {
			errs = append(errs, fmt.Errorf("systemctl %s %s: %w", verb, unit, err))
			continue
		}
		if !result.Success() {
			errs = append(errs, step.NewCommandError("systemctl", []string{verb, unit}, result))
		}
	}

	return errors.Join(errs...)
}

func (s *UnitStep) isEnabled(ctx step.RunContext) (bool, error) {
	result, err := s.runner.Run(ctx.Context(), "systemctl", "is-enabled", s.unit)
	if err != nil {
		return false, err
	}
	return result.Success(), nil
}

func (s *UnitStep) isActive(ctx step.RunContext) (bool, error) {
	result, err := s.runner.Run(ctx.Context(), "systemctl", "is-active", s.unit)
	if err != nil {
		return false, err
	}
	return result.Success(), nil
}

// Ensure UnitStep implements RevertibleStep.
var _ step.RevertibleStep = (*UnitStep)(nil)
