package step

// Status represents the checked state of a step.
type Status string

const (
	// StatusSatisfied indicates the step's desired state is already met.
	StatusSatisfied Status = "satisfied"
	// StatusNeedsApply indicates the step needs to be applied.
	StatusNeedsApply Status = "needs-apply"
	// StatusUnknown indicates the check probe itself errored. The
	// engine treats this the same as needs-apply: an unreadable probe
	// must not block provisioning.
	StatusUnknown Status = "unknown"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Satisfied returns true if no action is needed.
func (s Status) Satisfied() bool {
	return s == StatusSatisfied
}
