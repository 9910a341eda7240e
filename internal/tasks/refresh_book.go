package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/literattus/literattus/internal/metadata"
)

// RefreshBookTask re-fetches a single book's attributes from the catalog.
type RefreshBookTask struct {
	BookID string `json:"book_id"`
}

func (t RefreshBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshBookProcessor creates a processor function for RefreshBookTask.
func RefreshBookProcessor(refresher *metadata.Refresher) backlite.QueueProcessor[RefreshBookTask] {
	return func(ctx context.Context, task RefreshBookTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}

		result, err := refresher.RefreshBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("refresh book %s: %w", task.BookID, err)
		}

		if len(result.FieldsChanged) > 0 {
			log.Printf("[TASK] Refreshed book %s (%s): updated %v",
				task.BookID, result.Book.Title, result.FieldsChanged)
		} else {
			log.Printf("[TASK] Book %s (%s): attributes already current",
				task.BookID, result.Book.Title)
		}
		return nil
	}
}

// NewRefreshBookQueue creates a backlite queue for single-book refreshes.
func NewRefreshBookQueue(refresher *metadata.Refresher) backlite.Queue {
	return backlite.NewQueue(RefreshBookProcessor(refresher))
}
