package step

import "fmt"

// FailurePolicy controls how the engine reacts when a step fails to
// apply. The shell scripts this engine replaces were inconsistent
// here (some aborted, some warned and carried on), so the choice is
// explicit per step instead of baked into the engine.
type FailurePolicy string

const (
	// PolicyFatal aborts the whole run when the step fails.
	PolicyFatal FailurePolicy = "fatal"
	// PolicyWarn records the failure and continues with later steps.
	PolicyWarn FailurePolicy = "warn"
)

// String returns the string representation of the policy.
func (p FailurePolicy) String() string {
	return string(p)
}

// Valid returns true for a known policy.
func (p FailurePolicy) Valid() bool {
	return p == PolicyFatal || p == PolicyWarn
}

// ParsePolicy parses a policy string. The empty string maps to the
// given fallback.
func ParsePolicy(value string, fallback FailurePolicy) (FailurePolicy, error) {
	switch FailurePolicy(value) {
	case "":
		return fallback, nil
	case PolicyFatal:
		return PolicyFatal, nil
	case PolicyWarn:
		return PolicyWarn, nil
	}
	return "", fmt.Errorf("unknown failure policy %q (want %q or %q)", value, PolicyFatal, PolicyWarn)
}
