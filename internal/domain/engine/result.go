// Package engine sequences provisioning steps and enforces failure policy.
package engine

import (
	"time"

	"github.com/provis-dev/provision/internal/domain/step"
)

// Outcome is the reported result of a step within a run.
type Outcome string

const (
	// OutcomeApplied indicates the step made its changes successfully.
	OutcomeApplied Outcome = "applied"
	// OutcomeAlreadySatisfied indicates the check found nothing to do.
	OutcomeAlreadySatisfied Outcome = "already-satisfied"
	// OutcomeFailed indicates the step failed to apply or revert.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped indicates the step was not attempted.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeWouldApply indicates a dry run found the step unsatisfied.
	OutcomeWouldApply Outcome = "would-apply"
	// OutcomeReverted indicates the step's recorded changes were undone.
	OutcomeReverted Outcome = "reverted"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// Result captures the outcome of executing a single step.
type Result struct {
	stepID   step.ID
	label    string
	outcome  Outcome
	err      error
	output   string
	exitCode int
	duration time.Duration
}

// NewResult creates a Result.
func NewResult(id step.ID, label string, outcome Outcome, err error) Result {
	return Result{
		stepID:  id,
		label:   label,
		outcome: outcome,
		err:     err,
	}
}

// StepID returns the ID of the step.
func (r Result) StepID() step.ID {
	return r.stepID
}

// Label returns the step's human-readable label.
func (r Result) Label() string {
	return r.label
}

// Outcome returns the step's outcome.
func (r Result) Outcome() Outcome {
	return r.outcome
}

// Error returns any error that occurred during execution.
func (r Result) Error() error {
	return r.err
}

// Output returns the captured command output, if any.
func (r Result) Output() string {
	return r.output
}

// ExitCode returns the exit code of the failed command, zero otherwise.
func (r Result) ExitCode() int {
	return r.exitCode
}

// Duration returns how long the step took to execute.
func (r Result) Duration() time.Duration {
	return r.duration
}

// Failed returns true if the step failed.
func (r Result) Failed() bool {
	return r.outcome == OutcomeFailed
}

// WithDuration returns a copy with duration set.
func (r Result) WithDuration(d time.Duration) Result {
	r.duration = d
	return r
}

// WithCommandOutput returns a copy with captured output and exit code set.
func (r Result) WithCommandOutput(output string, exitCode int) Result {
	r.output = output
	r.exitCode = exitCode
	return r
}
