// Package step defines the idempotent provisioning step contract.
package step

import (
	"context"

	"github.com/provis-dev/provision/internal/domain/state"
)

// RunContext carries execution context into Check, Apply, and Revert.
type RunContext struct {
	ctx    context.Context
	dryRun bool
}

// NewRunContext creates a RunContext wrapping the given context.
func NewRunContext(ctx context.Context) RunContext {
	return RunContext{ctx: ctx}
}

// Context returns the underlying context.Context.
func (r RunContext) Context() context.Context {
	return r.ctx
}

// DryRun returns whether this is a dry-run execution.
func (r RunContext) DryRun() bool {
	return r.dryRun
}

// WithDryRun returns a new RunContext with the dry-run flag set.
func (r RunContext) WithDryRun(dryRun bool) RunContext {
	return RunContext{ctx: r.ctx, dryRun: dryRun}
}

// Step is a single idempotent provisioning action.
//
// Check reports whether the desired state already holds. Apply makes
// it hold and returns ChangeRecords describing every mutation it
// performed; Apply must be safe to call even when Check already said
// satisfied, although the engine avoids doing so. Steps never abort
// the process themselves; failures are returned to the engine, which
// applies the step's FailurePolicy.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() ID

	// Label returns a short human-readable description.
	Label() string

	// Policy returns how the engine should react if Apply fails.
	Policy() FailurePolicy

	// Check determines the current status of this step. An error from
	// the probe itself is reported alongside StatusUnknown; the engine
	// proceeds to Apply in that case.
	Check(ctx RunContext) (Status, error)

	// Apply executes the step's changes and reports what it mutated.
	Apply(ctx RunContext) ([]state.ChangeRecord, error)
}

// RevertibleStep extends Step with best-effort reversal.
//
// Revert receives the ChangeRecords this step produced during a prior
// Apply and undoes them. Reverting with no matching records is a
// no-op. Revert failures are warnings, never fatal.
type RevertibleStep interface {
	Step

	Revert(ctx RunContext, records []state.ChangeRecord) error
}

// AsRevertible attempts to cast a step to RevertibleStep.
// Returns nil if the step does not support reversal.
func AsRevertible(s Step) RevertibleStep {
	if r, ok := s.(RevertibleStep); ok {
		return r
	}
	return nil
}
