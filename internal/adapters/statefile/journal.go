// Package statefile persists the change journal on disk.
//
// The journal is an append-only stream of YAML documents. Appending
// never rewrites previously written bytes, so a crash mid-write can
// lose at most the entry being written, never an already recorded
// change. Clearing a step appends a tombstone document instead of
// rewriting the file; replay resolves the live set.
package statefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/provis-dev/provision/internal/domain/state"
)

// journalEntry is one document in the journal stream: either a change
// record or a tombstone clearing a step's earlier records.
type journalEntry struct {
	Record    *state.ChangeRecord `yaml:"record,omitempty"`
	Cleared   string              `yaml:"cleared,omitempty"`
	ClearedAt time.Time           `yaml:"cleared_at,omitempty"`
}

// JournalStore is a file-backed state.Store.
type JournalStore struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	runID   string
	records map[string][]state.ChangeRecord
	order   []string
}

// OpenJournal opens (or creates) the journal at path and replays its
// entries. Any read or decode failure is state corruption: the caller
// must not provision against a journal it cannot faithfully read.
func OpenJournal(path, runID string) (*JournalStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create state directory: %w", state.ErrStateCorrupt, err)
	}

	s := &JournalStore{
		path:    path,
		runID:   runID,
		records: make(map[string][]state.ChangeRecord),
	}

	if err := s.replay(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open journal: %w", state.ErrStateCorrupt, err)
	}
	s.file = file

	return s, nil
}

// replay rebuilds the live record set from the document stream.
func (s *JournalStore) replay() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: failed to read journal: %w", state.ErrStateCorrupt, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var entry journalEntry
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("%w: failed to decode journal: %w", state.ErrStateCorrupt, err)
		}

		switch {
		case entry.Record != nil:
			s.trackStep(entry.Record.StepID)
			s.records[entry.Record.StepID] = append(s.records[entry.Record.StepID], *entry.Record)
		case entry.Cleared != "":
			delete(s.records, entry.Cleared)
		}
	}

	return nil
}

func (s *JournalStore) trackStep(stepID string) {
	for _, id := range s.order {
		if id == stepID {
			return
		}
	}
	s.order = append(s.order, stepID)
}

// RunID returns the run identifier this store was opened with.
func (s *JournalStore) RunID() string {
	return s.runID
}

// HasRecords returns true if any live records exist for the step.
func (s *JournalStore) HasRecords(stepID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[stepID]) > 0
}

// Append durably records a change. The entry is flushed and synced
// before Append returns, since the host may reboot mid-provisioning.
func (s *JournalStore) Append(rec state.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.RunID == "" {
		rec.RunID = s.runID
	}

	if err := s.writeEntry(journalEntry{Record: &rec}); err != nil {
		return err
	}

	s.trackStep(rec.StepID)
	s.records[rec.StepID] = append(s.records[rec.StepID], rec)
	return nil
}

// RecordsFor returns the live records for a step in append order.
func (s *JournalStore) RecordsFor(stepID string) []state.ChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.records[stepID]
	out := make([]state.ChangeRecord, len(recs))
	copy(out, recs)
	return out
}

// Clear appends a tombstone for the step's records.
func (s *JournalStore) Clear(stepID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records[stepID]) == 0 {
		return nil
	}

	if err := s.writeEntry(journalEntry{Cleared: stepID, ClearedAt: time.Now().UTC()}); err != nil {
		return err
	}

	delete(s.records, stepID)
	return nil
}

// StepIDs returns the identifiers of all steps with live records, in
// first-recorded order.
func (s *JournalStore) StepIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.records))
	for _, id := range s.order {
		if len(s.records[id]) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close closes the underlying file.
func (s *JournalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *JournalStore) writeEntry(entry journalEntry) error {
	data, err := yaml.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: failed to encode journal entry: %w", state.ErrStateCorrupt, err)
	}

	if _, err := s.file.Write(append([]byte("---\n"), data...)); err != nil {
		return fmt.Errorf("%w: failed to append journal entry: %w", state.ErrStateCorrupt, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("%w: failed to sync journal: %w", state.ErrStateCorrupt, err)
	}

	return nil
}

// Ensure JournalStore implements state.Store.
var _ state.Store = (*JournalStore)(nil)
