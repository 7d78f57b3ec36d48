package engine

import (
	"context"

	"github.com/provis-dev/provision/internal/domain/step"
)

// Planner evaluates each step's check probe without applying anything.
// It backs the dry-run and plan surfaces.
type Planner struct{}

// NewPlanner creates a new Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan checks every step in declared order and records the outcome.
// A failed probe marks the step unknown rather than failing the plan:
// the engine treats unknown as "not satisfied".
func (p *Planner) Plan(ctx context.Context, steps []step.Step) *Plan {
	plan := NewPlan()
	runCtx := step.NewRunContext(ctx).WithDryRun(true)

	for _, s := range steps {
		status, err := s.Check(runCtx)
		if err != nil {
			plan.Add(NewPlanEntry(s, step.StatusUnknown, err))
			continue
		}
		plan.Add(NewPlanEntry(s, status, nil))
	}

	return plan
}
