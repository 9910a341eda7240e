// Package progress stores per-user-per-book reading progress. Every
// mutation runs inside a transaction that also appends the matching audit
// entry, so the data write and its history record succeed or fail together.
package progress

import (
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/database/audit"
	"github.com/literattus/literattus/internal/entities"
)

// Repository handles reading-progress mutations and reads.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateInput carries the fields for a new progress record. The (user, book)
// pair is unique; a second create for the same pair fails with
// UniqueConstraintError.
type CreateInput struct {
	UserID             uint
	BookID             string
	ClubID             *uint
	Status             entities.ProgressStatus
	CurrentPage        int
	ProgressPercentage float64
	Rating             *int
	Review             *string
	StartedAt          *time.Time
	CompletedAt        *time.Time
}

// UpdateInput carries partial updates. Nil pointers leave the field
// untouched; the Clear flags reset the optional fields to absent.
type UpdateInput struct {
	Status      *entities.ProgressStatus
	CurrentPage *int
	Rating      *int
	ClearRating bool
	Review      *string
	ClearReview bool
	ClubID      *uint
	ClearClub   bool
}

// Create inserts a progress record and appends the insert audit entry in
// the same transaction.
func (r *Repository) Create(input CreateInput, actorID *uint) (*entities.ReadingProgress, error) {
	now := time.Now().UTC()

	rec := &entities.ReadingProgress{
		UserID:             input.UserID,
		BookID:             input.BookID,
		ClubID:             input.ClubID,
		Status:             input.Status,
		CurrentPage:        input.CurrentPage,
		ProgressPercentage: input.ProgressPercentage,
		Rating:             input.Rating,
		Review:             input.Review,
		StartedAt:          input.StartedAt,
		CompletedAt:        input.CompletedAt,
	}
	if rec.Status == "" {
		rec.Status = entities.ProgressNotStarted
	}
	if rec.StartedAt == nil && rec.Status == entities.ProgressReading {
		rec.StartedAt = &now
	}
	if rec.CompletedAt == nil && rec.Status == entities.ProgressCompleted {
		rec.CompletedAt = &now
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return database.TranslateError(err)
		}
		if rec.CurrentPage > 0 {
			if err := derivePageProgress(tx, rec, now); err != nil {
				return err
			}
			if err := tx.Save(rec).Error; err != nil {
				return database.TranslateError(err)
			}
		}
		return appendEntry(tx, rec.ID, entities.AuditActionInsert, nil, snapshotOf(rec), actorID)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies a partial update and appends an update audit entry, but
// only when at least one tracked field actually changed; writing identical
// values produces no history noise.
func (r *Repository) Update(id uint, input UpdateInput, actorID *uint) (*entities.ReadingProgress, error) {
	var rec entities.ReadingProgress

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, id).Error; err != nil {
			return database.TranslateError(err)
		}

		before := snapshotOf(&rec)
		if err := applyUpdate(tx, &rec, input); err != nil {
			return err
		}
		after := snapshotOf(&rec)

		if err := tx.Save(&rec).Error; err != nil {
			return database.TranslateError(err)
		}

		if !trackedFieldsChanged(before, after) {
			return nil
		}
		return appendEntry(tx, rec.ID, entities.AuditActionUpdate, before, after, actorID)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a progress record, appending the delete audit entry with a
// snapshot of the row as it stood immediately before deletion.
func (r *Repository) Delete(id uint, actorID *uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var rec entities.ReadingProgress
		if err := tx.First(&rec, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return database.TranslateError(err)
		}
		return appendEntry(tx, rec.ID, entities.AuditActionDelete, snapshotOf(&rec), nil, actorID)
	})
}

// DeleteAllForUser removes every progress record of a user inside the
// caller's transaction, auditing each deleted row. Used by the user
// deletion cascade.
func DeleteAllForUser(tx *gorm.DB, userID uint, actorID *uint) error {
	var recs []entities.ReadingProgress
	if err := tx.Where("user_id = ?", userID).Find(&recs).Error; err != nil {
		return err
	}
	return deleteAll(tx, recs, actorID)
}

// DeleteAllForBook removes every progress record referencing a book inside
// the caller's transaction, auditing each deleted row. Used by the book
// deletion cascade.
func DeleteAllForBook(tx *gorm.DB, bookID string, actorID *uint) error {
	var recs []entities.ReadingProgress
	if err := tx.Where("book_id = ?", bookID).Find(&recs).Error; err != nil {
		return err
	}
	return deleteAll(tx, recs, actorID)
}

func deleteAll(tx *gorm.DB, recs []entities.ReadingProgress, actorID *uint) error {
	for i := range recs {
		rec := &recs[i]
		if err := tx.Delete(rec).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := appendEntry(tx, rec.ID, entities.AuditActionDelete, snapshotOf(rec), nil, actorID); err != nil {
			return err
		}
	}
	return nil
}

// ClearClubRef nulls the club reference on progress rows inside the
// caller's transaction. The club reference is not a tracked field, so no
// audit entries are produced; the progress rows themselves persist.
func ClearClubRef(tx *gorm.DB, clubID uint) error {
	return tx.Model(&entities.ReadingProgress{}).
		Where("club_id = ?", clubID).
		Update("club_id", nil).Error
}

func (r *Repository) GetByID(id uint) (*entities.ReadingProgress, error) {
	var rec entities.ReadingProgress
	if err := r.db.Preload("Book").First(&rec, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &rec, nil
}

func (r *Repository) GetByUserAndBook(userID uint, bookID string) (*entities.ReadingProgress, error) {
	var rec entities.ReadingProgress
	err := r.db.Preload("Book").
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&rec).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &rec, nil
}

func (r *Repository) ListForUser(userID uint) ([]entities.ReadingProgress, error) {
	var recs []entities.ReadingProgress
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&recs).Error
	return recs, err
}

func (r *Repository) ListForClub(clubID uint) ([]entities.ReadingProgress, error) {
	var recs []entities.ReadingProgress
	err := r.db.Preload("Book").
		Where("club_id = ?", clubID).
		Order("updated_at DESC").
		Find(&recs).Error
	return recs, err
}

// applyUpdate mutates rec with the provided fields and derives the
// automatic transitions: page movement recomputes the percentage when the
// book's page count is known, hitting 100% completes the book, and leaving
// not_started stamps the start time.
func applyUpdate(tx *gorm.DB, rec *entities.ReadingProgress, input UpdateInput) error {
	now := time.Now().UTC()

	if input.CurrentPage != nil {
		rec.CurrentPage = *input.CurrentPage
		if err := derivePageProgress(tx, rec, now); err != nil {
			return err
		}
	}

	if input.Status != nil {
		oldStatus := rec.Status
		rec.Status = *input.Status

		switch {
		case rec.Status == entities.ProgressReading && oldStatus == entities.ProgressNotStarted:
			if rec.StartedAt == nil {
				rec.StartedAt = &now
			}
		case rec.Status == entities.ProgressCompleted:
			if rec.CompletedAt == nil {
				rec.CompletedAt = &now
			}
		}
	}

	if input.Rating != nil {
		rec.Rating = input.Rating
	}
	if input.ClearRating {
		rec.Rating = nil
	}
	if input.Review != nil {
		rec.Review = input.Review
	}
	if input.ClearReview {
		rec.Review = nil
	}
	if input.ClubID != nil {
		rec.ClubID = input.ClubID
	}
	if input.ClearClub {
		rec.ClubID = nil
	}

	return nil
}

// derivePageProgress recomputes the percentage from the book's page count
// and applies the status transitions that follow from page movement:
// hitting 100% completes the book, leaving not_started stamps the start
// time. Books without a known page count leave the percentage untouched.
func derivePageProgress(tx *gorm.DB, rec *entities.ReadingProgress, now time.Time) error {
	var book entities.Book
	if err := tx.First(&book, "id = ?", rec.BookID).Error; err != nil {
		return database.TranslateError(err)
	}
	if book.PageCount == nil || *book.PageCount <= 0 {
		return nil
	}

	pct := float64(rec.CurrentPage) / float64(*book.PageCount) * 100
	rec.ProgressPercentage = math.Round(pct*100) / 100

	if rec.ProgressPercentage >= 100 {
		rec.Status = entities.ProgressCompleted
		if rec.CompletedAt == nil {
			rec.CompletedAt = &now
		}
	} else if rec.ProgressPercentage > 0 && rec.Status == entities.ProgressNotStarted {
		rec.Status = entities.ProgressReading
		if rec.StartedAt == nil {
			rec.StartedAt = &now
		}
	}
	return nil
}

func appendEntry(tx *gorm.DB, recordID uint, action entities.AuditAction, before, after *snapshot, actorID *uint) error {
	entry := &entities.AuditLogEntry{
		TargetTable: entities.ReadingProgress{}.TableName(),
		RecordID:    entities.NumericID(recordID),
		Action:      action,
		OldValues:   marshalSnapshot(before),
		NewValues:   marshalSnapshot(after),
		ActorID:     actorID,
	}
	return audit.Append(tx, entry)
}
