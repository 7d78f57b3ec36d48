package state

import (
	"errors"
	"sort"
	"sync"
)

// Store errors.
var (
	// ErrStateCorrupt indicates the backing state could not be read or
	// written. Uninstall safety depends on the journal, so this error
	// is always fatal to the whole run.
	ErrStateCorrupt = errors.New("state store corrupt")
)

// Store persists ChangeRecords keyed by step identifier.
//
// Append must be durable immediately: the host may reboot between
// provisioning and a later uninstall. Clear is called only after a
// step's changes have been successfully reverted.
type Store interface {
	// RunID returns the identifier of the provisioning run this store
	// is namespaced by.
	RunID() string

	// HasRecords returns true if any records exist for the step.
	HasRecords(stepID string) bool

	// Append durably records a change.
	Append(rec ChangeRecord) error

	// RecordsFor returns the records for a step in append order.
	RecordsFor(stepID string) []ChangeRecord

	// Clear removes all records for a step.
	Clear(stepID string) error

	// StepIDs returns the identifiers of all steps with records.
	StepIDs() []string
}

// MemoryStore is an in-memory Store, used for tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	runID   string
	records map[string][]ChangeRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(runID string) *MemoryStore {
	return &MemoryStore{
		runID:   runID,
		records: make(map[string][]ChangeRecord),
	}
}

// RunID returns the run identifier.
func (s *MemoryStore) RunID() string {
	return s.runID
}

// HasRecords returns true if any records exist for the step.
func (s *MemoryStore) HasRecords(stepID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[stepID]) > 0
}

// Append records a change in memory.
func (s *MemoryStore) Append(rec ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.RunID == "" {
		rec.RunID = s.runID
	}
	s.records[rec.StepID] = append(s.records[rec.StepID], rec)
	return nil
}

// RecordsFor returns the records for a step in append order.
func (s *MemoryStore) RecordsFor(stepID string) []ChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.records[stepID]
	out := make([]ChangeRecord, len(recs))
	copy(out, recs)
	return out
}

// Clear removes all records for a step.
func (s *MemoryStore) Clear(stepID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, stepID)
	return nil
}

// StepIDs returns the identifiers of all steps with records, sorted.
func (s *MemoryStore) StepIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.records))
	for id, recs := range s.records {
		if len(recs) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
