package files

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/ini.v1"

	"github.com/provis-dev/provision/internal/domain/state"
	"github.com/provis-dev/provision/internal/domain/step"
)

// IniStep sets keys inside one section of an INI-style config file
// (KDE rc files, desktop entries, tool configs). The file is backed up
// before the first write so revert can restore it byte for byte.
type IniStep struct {
	path    string
	section string
	keys    map[string]string
	id      step.ID
	policy  step.FailurePolicy
}

// NewIniStep creates an INI patch step.
func NewIniStep(path, section string, keys map[string]string, policy step.FailurePolicy) *IniStep {
	return &IniStep{
		path:    path,
		section: section,
		keys:    keys,
		id:      step.MustNewID("files:ini:" + sanitizeID(path) + ":" + sanitizeID(section)),
		policy:  policy,
	}
}

// ID returns the step identifier.
func (s *IniStep) ID() step.ID {
	return s.id
}

// Label returns a human-readable description.
func (s *IniStep) Label() string {
	return fmt.Sprintf("Patch [%s] in %s", s.section, s.path)
}

// Policy returns the failure policy.
func (s *IniStep) Policy() step.FailurePolicy {
	return s.policy
}

// Check reports satisfied when every key already has the target value.
func (s *IniStep) Check(_ step.RunContext) (step.Status, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return step.StatusNeedsApply, nil
		}
		return step.StatusUnknown, err
	}

	cfg, err := ini.Load(s.path)
	if err != nil {
		return step.StatusUnknown, err
	}

	section := cfg.Section(s.section)
	for key, want := range s.keys {
		if !section.HasKey(key) || section.Key(key).String() != want {
			return step.StatusNeedsApply, nil
		}
	}
	return step.StatusSatisfied, nil
}

// Apply patches the section, backing up the previous file first.
func (s *IniStep) Apply(_ step.RunContext) ([]state.ChangeRecord, error) {
	var backup string
	existed := false

	if _, err := os.Stat(s.path); err == nil {
		existed = true
		backup, err = backupFile(s.path)
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat %s: %w", s.path, err)
	}

	var cfg *ini.File
	var err error
	if existed {
		cfg, err = ini.Load(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
		}
	} else {
		if err := ensureParentDir(s.path); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", s.path, err)
		}
		cfg = ini.Empty()
	}

	section := cfg.Section(s.section)
	for key, value := range s.keys {
		section.Key(key).SetValue(value)
	}

	if err := cfg.SaveTo(s.path); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", s.path, err)
	}

	return []state.ChangeRecord{modificationRecord(s.id.String(), s.path, backup)}, nil
}

// Revert restores the backed-up file, or removes it if this step
// created it.
func (s *IniStep) Revert(_ step.RunContext, records []state.ChangeRecord) error {
	var errs []error
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Kind != state.KindFileModified {
			continue
		}
		if err := restoreRecord(records[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ensure IniStep implements RevertibleStep.
var _ step.RevertibleStep = (*IniStep)(nil)
