package engine

import (
	"context"
	"errors"
	"time"

	"github.com/provis-dev/provision/internal/domain/state"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// Runner executes an ordered list of steps against the state store.
//
// Execution is strictly sequential: several step kinds have ordering
// dependencies (package install before service enable), so declared
// order is a correctness requirement. The Runner is the single writer
// of the state store.
type Runner struct {
	store  state.Store
	logger ports.Logger
}

// NewRunner creates a Runner backed by the given store.
func NewRunner(store state.Store, logger ports.Logger) *Runner {
	return &Runner{store: store, logger: logger}
}

// RunResult aggregates the per-step results of a run.
type RunResult struct {
	Results []Result
	// Aborted is true when a fatal-policy step failed and the
	// remaining steps were skipped.
	Aborted bool
	// Err is set for run-level failures such as state corruption or
	// cancellation. It is always fatal.
	Err error
}

// Failed returns true if the run must exit non-zero.
func (r RunResult) Failed() bool {
	return r.Aborted || r.Err != nil
}

// ExitCode maps the run result to a process exit code.
func (r RunResult) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// Execute runs all steps in declared order.
//
// Each step is checked immediately before it is applied, so earlier
// steps can satisfy later checks within the same run. ChangeRecords
// are persisted only after Apply reports success; an interrupt during
// Apply therefore never records a mutation that did not complete.
func (r *Runner) Execute(ctx context.Context, steps []step.Step) RunResult {
	results := make([]Result, 0, len(steps))
	runCtx := step.NewRunContext(ctx)

	aborted := false
	var runErr error

	for _, s := range steps {
		if aborted {
			results = append(results, NewResult(s.ID(), s.Label(), OutcomeSkipped, nil))
			continue
		}

		select {
		case <-ctx.Done():
			aborted = true
			runErr = ctx.Err()
			results = append(results, NewResult(s.ID(), s.Label(), OutcomeSkipped, nil))
			continue
		default:
		}

		result, fatal, storeErr := r.executeStep(runCtx, s)
		results = append(results, result)

		if storeErr != nil {
			aborted = true
			runErr = storeErr
			continue
		}
		if fatal {
			aborted = true
		}
	}

	return RunResult{Results: results, Aborted: aborted, Err: runErr}
}

// executeStep runs a single step through its lifecycle.
func (r *Runner) executeStep(runCtx step.RunContext, s step.Step) (result Result, fatal bool, storeErr error) {
	lc := newLifecycle(s.ID())
	defer lc.stop()

	lc.signal(eventCheck)
	status, checkErr := s.Check(runCtx)
	if checkErr != nil {
		// A broken probe (missing binary, absent unit) means we cannot
		// prove the step is satisfied, so we proceed to apply.
		r.warn(runCtx.Context(), "check probe failed, assuming not satisfied",
			ports.F("step", s.ID().String()), ports.F("error", checkErr.Error()))
		status = step.StatusUnknown
	}

	if status.Satisfied() {
		lc.signal(eventSatisfied)
		return NewResult(s.ID(), s.Label(), OutcomeAlreadySatisfied, nil), false, nil
	}

	lc.signal(eventApply)
	r.info(runCtx.Context(), "applying step", ports.F("step", s.ID().String()))

	start := time.Now()
	records, err := s.Apply(runCtx)
	duration := time.Since(start)

	if err != nil {
		lc.signal(eventFailed)
		res := NewResult(s.ID(), s.Label(), OutcomeFailed, err).WithDuration(duration)

		var cmdErr *step.CommandError
		if errors.As(err, &cmdErr) {
			res = res.WithCommandOutput(cmdErr.Output(), cmdErr.ExitCode())
		}

		if s.Policy() == step.PolicyFatal {
			r.error(runCtx.Context(), "step failed, aborting run",
				ports.F("step", s.ID().String()), ports.F("error", err.Error()))
			return res, true, nil
		}
		r.warn(runCtx.Context(), "step failed, continuing",
			ports.F("step", s.ID().String()), ports.F("error", err.Error()))
		return res, false, nil
	}

	for _, rec := range records {
		if rec.RunID == "" {
			rec.RunID = r.store.RunID()
		}
		if appendErr := r.store.Append(rec); appendErr != nil {
			// Without a durable record the change cannot be reversed
			// later; state corruption is fatal to the whole run.
			lc.signal(eventFailed)
			res := NewResult(s.ID(), s.Label(), OutcomeFailed, appendErr).WithDuration(duration)
			return res, true, appendErr
		}
	}

	lc.signal(eventApplied)
	return NewResult(s.ID(), s.Label(), OutcomeApplied, nil).WithDuration(duration), false, nil
}

// DryRun checks every step and reports what a run would do, without
// applying anything or touching the state store.
func (r *Runner) DryRun(ctx context.Context, steps []step.Step) RunResult {
	plan := NewPlanner().Plan(ctx, steps)

	results := make([]Result, 0, plan.Len())
	for _, entry := range plan.Entries() {
		s := entry.Step()
		if entry.Status().Satisfied() {
			results = append(results, NewResult(s.ID(), s.Label(), OutcomeAlreadySatisfied, nil))
			continue
		}
		results = append(results, NewResult(s.ID(), s.Label(), OutcomeWouldApply, entry.CheckErr()))
	}

	return RunResult{Results: results}
}

// Uninstall reverts steps in reverse declared order using their stored
// ChangeRecords. Reversal is best-effort: a failed revert is reported
// and the batch continues. Only changes recorded in this store are
// ever reversed.
func (r *Runner) Uninstall(ctx context.Context, steps []step.Step) RunResult {
	results := make([]Result, 0, len(steps))
	runCtx := step.NewRunContext(ctx)

	var runErr error

	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]

		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			results = append(results, NewResult(s.ID(), s.Label(), OutcomeSkipped, nil))
			continue
		default:
		}
		if runErr != nil {
			results = append(results, NewResult(s.ID(), s.Label(), OutcomeSkipped, nil))
			continue
		}

		records := r.store.RecordsFor(s.ID().String())
		if len(records) == 0 {
			results = append(results, NewResult(s.ID(), s.Label(), OutcomeSkipped, nil))
			continue
		}

		revertible := step.AsRevertible(s)
		if revertible == nil {
			r.warn(ctx, "step has no revert support, leaving records in place",
				ports.F("step", s.ID().String()))
			results = append(results, NewResult(s.ID(), s.Label(), OutcomeSkipped, nil))
			continue
		}

		r.info(ctx, "reverting step", ports.F("step", s.ID().String()),
			ports.F("records", len(records)))

		start := time.Now()
		err := revertible.Revert(runCtx, records)
		duration := time.Since(start)

		if err != nil {
			r.warn(ctx, "revert failed, continuing",
				ports.F("step", s.ID().String()), ports.F("error", err.Error()))
			results = append(results, NewResult(s.ID(), s.Label(), OutcomeFailed, err).WithDuration(duration))
			continue
		}

		if clearErr := r.store.Clear(s.ID().String()); clearErr != nil {
			// Losing the ability to update the journal is state
			// corruption; stop before the picture gets worse.
			runErr = clearErr
			results = append(results, NewResult(s.ID(), s.Label(), OutcomeFailed, clearErr).WithDuration(duration))
			continue
		}

		results = append(results, NewResult(s.ID(), s.Label(), OutcomeReverted, nil).WithDuration(duration))
	}

	return RunResult{Results: results, Err: runErr}
}

func (r *Runner) info(ctx context.Context, msg string, fields ...ports.Field) {
	if r.logger != nil {
		r.logger.Info(ctx, msg, fields...)
	}
}

func (r *Runner) warn(ctx context.Context, msg string, fields ...ports.Field) {
	if r.logger != nil {
		r.logger.Warn(ctx, msg, fields...)
	}
}

func (r *Runner) error(ctx context.Context, msg string, fields ...ports.Field) {
	if r.logger != nil {
		r.logger.Error(ctx, msg, fields...)
	}
}
