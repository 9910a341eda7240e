package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/literattus/literattus/internal/entities"
)

func TestArchiveWritesEnvelope(t *testing.T) {
	dir := t.TempDir()
	archiver := NewArchiver(dir)

	entries := []entities.AuditLogEntry{
		{
			TargetTable: "books",
			RecordID:    entities.ExternalID("BK1"),
			Action:      entities.AuditActionInsert,
			CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			TargetTable: "users",
			RecordID:    entities.NumericID(42),
			Action:      entities.AuditActionDelete,
			CreatedAt:   time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
		},
	}

	filename, err := archiver.Archive(entries)
	require.NoError(t, err)
	assert.Contains(t, filename, "audit-")

	raw, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)

	var envelope struct {
		Count   int              `json:"count"`
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, 2, envelope.Count)
	require.Len(t, envelope.Entries, 2)
	assert.Equal(t, "books", envelope.Entries[0]["table_name"])
	assert.Equal(t, string(entities.AuditActionDelete), envelope.Entries[1]["action"])
}

func TestArchiveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "archive")
	archiver := NewArchiver(dir)

	filename, err := archiver.Archive(nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, filename))
	assert.NoError(t, err)
}

func TestArchiveFilenamesAreUnique(t *testing.T) {
	archiver := NewArchiver(t.TempDir())

	first, err := archiver.Archive(nil)
	require.NoError(t, err)
	second, err := archiver.Archive(nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
