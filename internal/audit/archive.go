// Package audit writes pruned audit-log entries to JSON archive files so
// the retention task can delete rows without losing history forever.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/literattus/literattus/internal/entities"
)

// ArchiveFile is the envelope written to disk for each archive run.
type ArchiveFile struct {
	ArchivedAt time.Time                `json:"archived_at"`
	Count      int                      `json:"count"`
	Entries    []entities.AuditLogEntry `json:"entries"`
}

type Archiver struct {
	ArchiveDir string
}

func NewArchiver(archiveDir string) *Archiver {
	return &Archiver{
		ArchiveDir: archiveDir,
	}
}

// Archive writes the given entries to a timestamped JSON file with a UUID4
// suffix and returns the filename. Entries must already be ordered the way
// the caller wants them preserved.
func (a *Archiver) Archive(entries []entities.AuditLogEntry) (string, error) {
	if err := a.ensureArchiveDir(); err != nil {
		return "", fmt.Errorf("failed to ensure archive directory: %w", err)
	}

	now := time.Now().UTC()
	filename := fmt.Sprintf("audit-%s-%s.json", now.Format("2006-01-02"), uuid.New().String())
	path := filepath.Join(a.ArchiveDir, filename)

	envelope := ArchiveFile{
		ArchivedAt: now,
		Count:      len(entries),
		Entries:    entries,
	}
	jsonData, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal archive to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}

	return filename, nil
}

// ensureArchiveDir creates the archive directory if it doesn't exist
func (a *Archiver) ensureArchiveDir() error {
	if _, err := os.Stat(a.ArchiveDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.ArchiveDir, 0755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	return nil
}
