package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/literattus/literattus/internal/metadata"
)

// RefreshAllBooksTask re-fetches every stored book from the catalog.
// Enqueued by the scheduler and by the admin refresh endpoint.
type RefreshAllBooksTask struct{}

func (t RefreshAllBooksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_all_books",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     60 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshAllBooksProcessor creates a processor function for RefreshAllBooksTask.
func RefreshAllBooksProcessor(refresher *metadata.Refresher) backlite.QueueProcessor[RefreshAllBooksTask] {
	return func(ctx context.Context, task RefreshAllBooksTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}

		summary, err := refresher.RefreshAll(ctx)
		if err != nil {
			return fmt.Errorf("refresh all books: %w", err)
		}

		log.Printf("[TASK] Catalog refresh complete: %d total, %d refreshed, %d failed",
			summary.Total, summary.Refreshed, summary.Failed)
		return nil
	}
}

// NewRefreshAllBooksQueue creates a backlite queue for bulk catalog refreshes.
func NewRefreshAllBooksQueue(refresher *metadata.Refresher) backlite.Queue {
	return backlite.NewQueue(RefreshAllBooksProcessor(refresher))
}
