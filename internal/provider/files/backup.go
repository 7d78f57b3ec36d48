package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/provis-dev/provision/internal/domain/state"
)

// backupSuffixFormat is the timestamp appended to backup copies.
const backupSuffixFormat = "20060102-150405"

// backupFile copies path aside before it is modified and returns the
// backup location. The backup lives next to the original so restores
// never cross filesystems.
func backupFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for backup: %w", path, err)
	}

	info, err := os.Stat(path)
	mode := fs.FileMode(0o644)
	if err == nil {
		mode = info.Mode().Perm()
	}

	backup := fmt.Sprintf("%s.provision-bak.%s", path, time.Now().Format(backupSuffixFormat))
	if err := os.WriteFile(backup, data, mode); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", backup, err)
	}
	return backup, nil
}

// modificationRecord builds the file-modified ChangeRecord for a step.
// backup is empty when the step created the file.
func modificationRecord(stepID, path, backup string) state.ChangeRecord {
	data := map[string]string{"path": path}
	if backup == "" {
		data["created"] = "true"
	} else {
		data["backup"] = backup
	}
	return state.NewChangeRecord(stepID, state.KindFileModified, data)
}

// restoreRecord undoes a single file-modified record: a created file
// is removed, a modified file gets its backup moved back into place.
func restoreRecord(rec state.ChangeRecord) error {
	path := rec.Get("path")
	if path == "" {
		return nil
	}

	if rec.Get("created") == "true" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}

	backup := rec.Get("backup")
	if backup == "" {
		return nil
	}
	if err := os.Rename(backup, path); err != nil {
		return fmt.Errorf("failed to restore %s from %s: %w", path, backup, err)
	}
	return nil
}

// ensureParentDir creates the destination's directory chain.
func ensureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
