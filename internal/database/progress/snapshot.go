package progress

import (
	"encoding/json"
	"time"

	"github.com/literattus/literattus/internal/entities"
)

// snapshot captures the audited view of a progress row. The first three
// fields are identity context; the rest are the tracked fields whose
// changes produce audit entries.
type snapshot struct {
	UserID             uint                    `json:"user_id"`
	BookID             string                  `json:"book_id"`
	ClubID             *uint                   `json:"club_id"`
	Status             entities.ProgressStatus `json:"status"`
	CurrentPage        int                     `json:"current_page"`
	ProgressPercentage float64                 `json:"progress_percentage"`
	Rating             *int                    `json:"rating"`
	Review             *string                 `json:"review"`
	StartedAt          *time.Time              `json:"started_at"`
	CompletedAt        *time.Time              `json:"completed_at"`
}

func snapshotOf(rec *entities.ReadingProgress) *snapshot {
	return &snapshot{
		UserID:             rec.UserID,
		BookID:             rec.BookID,
		ClubID:             copyPtr(rec.ClubID),
		Status:             rec.Status,
		CurrentPage:        rec.CurrentPage,
		ProgressPercentage: rec.ProgressPercentage,
		Rating:             copyPtr(rec.Rating),
		Review:             copyPtr(rec.Review),
		StartedAt:          copyPtr(rec.StartedAt),
		CompletedAt:        copyPtr(rec.CompletedAt),
	}
}

// trackedFieldsChanged reports whether any audited field differs between
// the two snapshots. A field moving between absent and present counts as a
// change.
func trackedFieldsChanged(before, after *snapshot) bool {
	return before.Status != after.Status ||
		before.CurrentPage != after.CurrentPage ||
		before.ProgressPercentage != after.ProgressPercentage ||
		!ptrEqual(before.Rating, after.Rating) ||
		!ptrEqual(before.Review, after.Review) ||
		!timePtrEqual(before.StartedAt, after.StartedAt) ||
		!timePtrEqual(before.CompletedAt, after.CompletedAt)
}

func marshalSnapshot(s *snapshot) *string {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		// The snapshot is a plain struct of scalars; marshaling cannot
		// fail with well-formed data.
		return nil
	}
	str := string(data)
	return &str
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
