package engine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/provis-dev/provision/internal/domain/step"
)

// Per-step lifecycle states.
const (
	statePending   = "pending"
	stateChecking  = "checking"
	stateSatisfied = "satisfied"
	stateApplying  = "applying"
	stateApplied   = "applied"
	stateFailed    = "failed"
)

// Per-step lifecycle events.
const (
	eventCheck     = "CHECK"
	eventSatisfied = "SATISFIED"
	eventApply     = "APPLY"
	eventApplied   = "APPLIED"
	eventFailed    = "FAILED"
)

// lifecycleContext is the statekit context type for a step lifecycle.
type lifecycleContext struct {
	StepID string
}

// lifecycle tracks a single step through
// pending -> checking -> {satisfied | applying} -> {applied | failed}.
// Terminal states accept CHECK again so a step may be re-run.
type lifecycle struct {
	interp *statekit.Interpreter[lifecycleContext]
}

// newLifecycle builds and starts the step state machine.
func newLifecycle(id step.ID) *lifecycle {
	machine, err := statekit.NewMachine[lifecycleContext]("provision-step").
		WithInitial(statePending).
		WithContext(lifecycleContext{StepID: id.String()}).
		State(statePending).
		On(eventCheck).Target(stateChecking).Done().
		State(stateChecking).
		On(eventSatisfied).Target(stateSatisfied).
		On(eventApply).Target(stateApplying).Done().
		State(stateSatisfied).
		On(eventCheck).Target(stateChecking).Done().
		State(stateApplying).
		On(eventApplied).Target(stateApplied).
		On(eventFailed).Target(stateFailed).Done().
		State(stateApplied).
		On(eventCheck).Target(stateChecking).Done().
		State(stateFailed).
		On(eventCheck).Target(stateChecking).Done().
		Build()
	if err != nil {
		// The machine definition is static.
		panic("step lifecycle machine: " + err.Error())
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &lifecycle{interp: interp}
}

// signal sends a lifecycle event.
func (l *lifecycle) signal(event string) {
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

// state returns the current lifecycle state name.
func (l *lifecycle) state() string {
	return string(l.interp.State().Value)
}

// stop shuts the interpreter down.
func (l *lifecycle) stop() {
	l.interp.Stop()
}
