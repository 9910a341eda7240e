// Package stats computes per-user reading statistics. The aggregation is a
// pure read over one consistent snapshot: a single transaction loads the
// user's progress rows with their books' page counts and folds them in
// memory, so figures can never mix state from before and after a
// concurrent write.
package stats

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/entities"
)

// Snapshot is a point-in-time summary of one user's reading activity.
// A user with no progress records gets an all-zero snapshot, including a
// zero (not null) average rating.
type Snapshot struct {
	TotalBooks      int     `json:"total_books"`
	ReadingCount    int     `json:"reading_count"`
	CompletedCount  int     `json:"completed_count"`
	NotStartedCount int     `json:"not_started_count"`
	AbandonedCount  int     `json:"abandoned_count"`
	TotalPagesRead  int     `json:"total_pages_read"`
	AverageRating   float64 `json:"average_rating"`
	ReviewCount     int     `json:"review_count"`
}

// Repository computes reading statistics.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new statistics repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// progressRow is the flat projection the fold runs over.
type progressRow struct {
	Status        entities.ProgressStatus
	CurrentPage   int
	Rating        *int
	Review        *string
	BookPageCount *int
}

// ForUser returns the user's reading statistics.
//
// Total pages read sums current_page over reading and completed records,
// excluding records whose book has no known page count (they are skipped,
// not counted as zero). Average rating is the mean of non-null ratings, or
// zero when none exist. Review count counts non-empty review texts.
func (r *Repository) ForUser(userID uint) (*Snapshot, error) {
	var rows []progressRow

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&entities.ReadingProgress{}).
			Select("reading_progress.status, reading_progress.current_page, reading_progress.rating, reading_progress.review, books.page_count AS book_page_count").
			Joins("JOIN books ON books.id = reading_progress.book_id").
			Where("reading_progress.user_id = ?", userID).
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	return fold(rows)
}

func fold(rows []progressRow) (*Snapshot, error) {
	snap := &Snapshot{TotalBooks: len(rows)}

	ratingSum := 0
	ratingCount := 0

	for _, row := range rows {
		switch row.Status {
		case entities.ProgressReading:
			snap.ReadingCount++
		case entities.ProgressCompleted:
			snap.CompletedCount++
		case entities.ProgressNotStarted:
			snap.NotStartedCount++
		case entities.ProgressAbandoned:
			snap.AbandonedCount++
		}

		if row.Status == entities.ProgressReading || row.Status == entities.ProgressCompleted {
			if row.BookPageCount != nil && *row.BookPageCount > 0 {
				snap.TotalPagesRead += row.CurrentPage
			}
		}

		if row.Rating != nil {
			ratingSum += *row.Rating
			ratingCount++
		}
		if row.Review != nil && *row.Review != "" {
			snap.ReviewCount++
		}
	}

	if ratingCount > 0 {
		snap.AverageRating = float64(ratingSum) / float64(ratingCount)
	}

	if err := snap.validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// validate rejects impossible tallies instead of returning corrupted
// figures. These cannot occur under correct storage-engine isolation.
func (s *Snapshot) validate() error {
	buckets := s.ReadingCount + s.CompletedCount + s.NotStartedCount + s.AbandonedCount
	if buckets > s.TotalBooks {
		return &database.AggregationInconsistencyError{
			Detail: fmt.Sprintf("status buckets sum to %d but only %d records exist", buckets, s.TotalBooks),
		}
	}
	if s.TotalPagesRead < 0 || s.ReviewCount < 0 {
		return &database.AggregationInconsistencyError{Detail: "negative tally"}
	}
	return nil
}
