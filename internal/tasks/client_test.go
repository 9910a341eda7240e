package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/literattus/literattus/internal/database/audit"
	"github.com/literattus/literattus/internal/entities"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// TestTask is a simple task for testing
type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	})
	client.Register(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(TestTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestRefreshBookTaskConfig(t *testing.T) {
	task := RefreshBookTask{BookID: "zyTCAlFPjgYC"}
	cfg := task.Config()

	assert.Equal(t, "refresh_book", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Backoff)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestRefreshAllBooksTaskConfig(t *testing.T) {
	cfg := RefreshAllBooksTask{}.Config()

	assert.Equal(t, "refresh_all_books", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, 60*time.Minute, cfg.Timeout)
}

type fakePruner struct {
	gotFilter audit.Filter
	gotCutoff time.Time
	deleted   int64
	expiring  []entities.AuditLogEntry
}

func (f *fakePruner) List(fl audit.Filter) ([]entities.AuditLogEntry, int64, error) {
	f.gotFilter = fl
	return f.expiring, int64(len(f.expiring)), nil
}

func (f *fakePruner) PruneBefore(cutoff time.Time) (int64, error) {
	f.gotCutoff = cutoff
	return f.deleted, nil
}

type fakeArchiver struct {
	archived []entities.AuditLogEntry
}

func (f *fakeArchiver) Archive(entries []entities.AuditLogEntry) (string, error) {
	f.archived = append(f.archived, entries...)
	return "audit-test.json", nil
}

func TestPruneAuditLogProcessor(t *testing.T) {
	pruner := &fakePruner{deleted: 7}
	processor := PruneAuditLogProcessor(pruner, nil)

	err := processor(context.Background(), PruneAuditLogTask{RetentionDays: 30})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(-30*24*time.Hour), pruner.gotCutoff, time.Minute)

	// Zero retention falls back to the default window
	err = processor(context.Background(), PruneAuditLogTask{})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(-365*24*time.Hour), pruner.gotCutoff, time.Minute)
}

func TestPruneAuditLogProcessorArchivesBeforeDelete(t *testing.T) {
	pruner := &fakePruner{
		deleted: 2,
		expiring: []entities.AuditLogEntry{
			{TargetTable: "books", Action: entities.AuditActionUpdate},
			{TargetTable: "users", Action: entities.AuditActionDelete},
		},
	}
	archiver := &fakeArchiver{}
	processor := PruneAuditLogProcessor(pruner, archiver)

	err := processor(context.Background(), PruneAuditLogTask{RetentionDays: 90})
	require.NoError(t, err)
	assert.Len(t, archiver.archived, 2)
	assert.WithinDuration(t, time.Now().Add(-90*24*time.Hour), pruner.gotCutoff, time.Minute)

	// The archive pass and the delete pass share one cutoff.
	assert.True(t, pruner.gotFilter.Before.Equal(pruner.gotCutoff))
	assert.True(t, pruner.gotFilter.Ascending)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}
