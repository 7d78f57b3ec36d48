// Package state tracks the durable record of changes made by
// provisioning steps, so that a later uninstall can reverse exactly
// what was applied and nothing else.
package state

import "time"

// ChangeKind classifies a recorded mutation.
type ChangeKind string

const (
	// KindPackageInstalled records a package installed by a step.
	KindPackageInstalled ChangeKind = "package-installed"
	// KindFileModified records a file created or rewritten by a step.
	KindFileModified ChangeKind = "file-modified"
	// KindServiceEnabled records a service unit enabled or started by a step.
	KindServiceEnabled ChangeKind = "service-enabled"
	// KindGroupMembershipAdded records a user added to a group by a step.
	KindGroupMembershipAdded ChangeKind = "group-membership-added"
)

// String returns the string representation of the change kind.
func (k ChangeKind) String() string {
	return string(k)
}

// Valid returns true for a known change kind.
func (k ChangeKind) Valid() bool {
	switch k {
	case KindPackageInstalled, KindFileModified, KindServiceEnabled, KindGroupMembershipAdded:
		return true
	}
	return false
}

// ChangeRecord is a durable note of a single mutation made by a step.
// Data carries whatever the step needs to reverse the change (package
// name, backup path, unit name, user/group pair).
type ChangeRecord struct {
	StepID     string            `yaml:"step"`
	Kind       ChangeKind        `yaml:"kind"`
	Data       map[string]string `yaml:"data,omitempty"`
	RunID      string            `yaml:"run,omitempty"`
	RecordedAt time.Time         `yaml:"recorded_at"`
}

// NewChangeRecord creates a ChangeRecord for the given step.
func NewChangeRecord(stepID string, kind ChangeKind, data map[string]string) ChangeRecord {
	return ChangeRecord{
		StepID:     stepID,
		Kind:       kind,
		Data:       data,
		RecordedAt: time.Now().UTC(),
	}
}

// Get returns a reversal datum, or the empty string if absent.
func (r ChangeRecord) Get(key string) string {
	return r.Data[key]
}
