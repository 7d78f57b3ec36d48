package files

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/provis-dev/provision/internal/domain/state"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// ErrOverwriteDeclined indicates the operator refused to overwrite an
// existing destination file.
var ErrOverwriteDeclined = errors.New("overwrite declined")

// CopyStep installs a file at a destination (udev rules, systemd
// drop-ins, dotfiles). An existing destination is backed up first;
// with confirm set, overwriting asks the operator.
type CopyStep struct {
	source   string
	dest     string
	mode     fs.FileMode
	confirm  bool
	id       step.ID
	policy   step.FailurePolicy
	prompter ports.Prompter
}

// NewCopyStep creates a file install step. mode is an octal string
// ("0644"); empty means 0644.
func NewCopyStep(source, dest, mode string, confirm bool, policy step.FailurePolicy, prompter ports.Prompter) *CopyStep {
	return &CopyStep{
		source:   source,
		dest:     dest,
		mode:     parseMode(mode),
		confirm:  confirm,
		id:       step.MustNewID("files:copy:" + sanitizeID(dest)),
		policy:   policy,
		prompter: prompter,
	}
}

func parseMode(mode string) fs.FileMode {
	if mode == "" {
		return 0o644
	}
	parsed, err := strconv.ParseUint(mode, 8, 32)
	if err != nil {
		return 0o644
	}
	return fs.FileMode(parsed)
}

// ID returns the step identifier.
func (s *CopyStep) ID() step.ID {
	return s.id
}

// Label returns a human-readable description.
func (s *CopyStep) Label() string {
	return "Install " + s.dest
}

// Policy returns the failure policy.
func (s *CopyStep) Policy() step.FailurePolicy {
	return s.policy
}

// Check reports satisfied when the destination matches the source.
func (s *CopyStep) Check(_ step.RunContext) (step.Status, error) {
	want, err := os.ReadFile(s.source)
	if err != nil {
		return step.StatusUnknown, fmt.Errorf("failed to read source %s: %w", s.source, err)
	}

	got, err := os.ReadFile(s.dest)
	if err != nil {
		if os.IsNotExist(err) {
			return step.StatusNeedsApply, nil
		}
		return step.StatusUnknown, err
	}

	if bytes.Equal(want, got) {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply writes the source content to the destination, backing up any
// previous content first.
func (s *CopyStep) Apply(ctx step.RunContext) ([]state.ChangeRecord, error) {
	data, err := os.ReadFile(s.source)
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", s.source, err)
	}

	var backup string
	if _, err := os.Stat(s.dest); err == nil {
		if s.confirm {
			ok, perr := s.prompter.Confirm(ctx.Context(), fmt.Sprintf("Overwrite %s?", s.dest), false)
			if perr != nil {
				return nil, perr
			}
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrOverwriteDeclined, s.dest)
			}
		}
		backup, err = backupFile(s.dest)
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat %s: %w", s.dest, err)
	}

	if err := ensureParentDir(s.dest); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", s.dest, err)
	}
	if err := os.WriteFile(s.dest, data, s.mode); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", s.dest, err)
	}

	return []state.ChangeRecord{modificationRecord(s.id.String(), s.dest, backup)}, nil
}

// Revert restores the backed-up destination, or removes it if this
// step created it.
func (s *CopyStep) Revert(_ step.RunContext, records []state.ChangeRecord) error {
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

// Ensure CopyStep implements RevertibleStep.
var _ step.RevertibleStep = (*CopyStep)(nil)
