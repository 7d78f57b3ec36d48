package engine

import "github.com/provis-dev/provision/internal/domain/step"

// PlanEntry is a single step together with its checked status.
type PlanEntry struct {
	step     step.Step
	status   step.Status
	checkErr error
}

// NewPlanEntry creates a PlanEntry.
func NewPlanEntry(s step.Step, status step.Status, checkErr error) PlanEntry {
	return PlanEntry{step: s, status: status, checkErr: checkErr}
}

// Step returns the step.
func (e PlanEntry) Step() step.Step {
	return e.step
}

// Status returns the checked status.
func (e PlanEntry) Status() step.Status {
	return e.status
}

// CheckErr returns the error from the check probe, if any. A check
// error does not block execution; the step is treated as unsatisfied.
func (e PlanEntry) CheckErr() error {
	return e.checkErr
}

// PlanSummary provides aggregate statistics about a plan.
type PlanSummary struct {
	Total      int
	NeedsApply int
	Satisfied  int
	Unknown    int
}

// Plan is the ordered list of steps with their checked statuses.
// Declared order is execution order; there is no reordering.
type Plan struct {
	entries []PlanEntry
}

// NewPlan creates an empty Plan.
func NewPlan() *Plan {
	return &Plan{entries: make([]PlanEntry, 0)}
}

// Add appends a plan entry.
func (p *Plan) Add(entry PlanEntry) {
	p.entries = append(p.entries, entry)
}

// Len returns the number of entries.
func (p *Plan) Len() int {
	return len(p.entries)
}

// IsEmpty returns true if there are no entries.
func (p *Plan) IsEmpty() bool {
	return len(p.entries) == 0
}

// Entries returns all plan entries.
func (p *Plan) Entries() []PlanEntry {
	return p.entries
}

// HasChanges returns true if any steps need to be applied.
func (p *Plan) HasChanges() bool {
	for _, e := range p.entries {
		if !e.status.Satisfied() {
			return true
		}
	}
	return false
}

// Summary returns aggregate statistics.
func (p *Plan) Summary() PlanSummary {
	summary := PlanSummary{Total: len(p.entries)}
	for _, e := range p.entries {
		switch e.status {
		case step.StatusSatisfied:
			summary.Satisfied++
		case step.StatusNeedsApply:
			summary.NeedsApply++
		case step.StatusUnknown:
			summary.Unknown++
		}
	}
	return summary
}
