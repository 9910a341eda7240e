package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/literattus/literattus/internal/database/audit"
	"github.com/literattus/literattus/internal/entities"
)

// AuditPruner deletes audit entries past the retention window.
type AuditPruner interface {
	List(f audit.Filter) ([]entities.AuditLogEntry, int64, error)
	PruneBefore(cutoff time.Time) (int64, error)
}

// AuditArchiver preserves entries on disk before they are pruned. A nil
// archiver means pruned entries are discarded.
type AuditArchiver interface {
	Archive(entries []entities.AuditLogEntry) (string, error)
}

// PruneAuditLogTask removes audit entries older than the retention period.
type PruneAuditLogTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t PruneAuditLogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_audit_log",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneAuditLogProcessor creates a processor function for PruneAuditLogTask.
func PruneAuditLogProcessor(pruner AuditPruner, archiver AuditArchiver) backlite.QueueProcessor[PruneAuditLogTask] {
	return func(ctx context.Context, task PruneAuditLogTask) error {
		if pruner == nil {
			return fmt.Errorf("audit pruner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 365
		}
		// One cutoff for both passes, so the archived entries are exactly
		// the ones deleted.
		cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

		if archiver != nil {
			expiring, _, err := pruner.List(audit.Filter{Before: cutoff, Ascending: true})
			if err != nil {
				return fmt.Errorf("list expiring audit entries: %w", err)
			}
			if len(expiring) > 0 {
				filename, err := archiver.Archive(expiring)
				if err != nil {
					return fmt.Errorf("archive audit entries: %w", err)
				}
				log.Printf("[TASK] Archived %d audit entries to %s", len(expiring), filename)
			}
		}

		deleted, err := pruner.PruneBefore(cutoff)
		if err != nil {
			return fmt.Errorf("prune audit log: %w", err)
		}

		log.Printf("[TASK] Pruned %d audit entries older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewPruneAuditLogQueue creates a backlite queue for audit retention.
func NewPruneAuditLogQueue(pruner AuditPruner, archiver AuditArchiver) backlite.Queue {
	return backlite.NewQueue(PruneAuditLogProcessor(pruner, archiver))
}
