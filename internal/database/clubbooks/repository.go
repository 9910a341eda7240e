// Package clubbooks provides database operations for club reading lists:
// which books a club has nominated, is reading, or has finished.
package clubbooks

import (
	"time"

	"gorm.io/gorm"

	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/entities"
)

// Repository handles club-book association operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new club-books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add associates a book with a club. The (club, book) pair is unique;
// nominating the same book twice surfaces as UniqueConstraintError.
func (r *Repository) Add(clubID uint, bookID string, status entities.ClubBookStatus) (*entities.ClubBook, error) {
	if status == "" {
		status = entities.ClubBookPlanned
	}
	cb := &entities.ClubBook{
		ClubID:  clubID,
		BookID:  bookID,
		Status:  status,
		AddedAt: time.Now().UTC(),
	}
	if err := r.db.Create(cb).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return cb, nil
}

// GetByID retrieves one association.
func (r *Repository) GetByID(id uint) (*entities.ClubBook, error) {
	var cb entities.ClubBook
	if err := r.db.Preload("Book").First(&cb, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &cb, nil
}

// ListForClub returns a club's reading list, optionally filtered by status.
func (r *Repository) ListForClub(clubID uint, status entities.ClubBookStatus) ([]entities.ClubBook, error) {
	query := r.db.Preload("Book").Where("club_id = ?", clubID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var list []entities.ClubBook
	err := query.Order("added_at DESC").Find(&list).Error
	return list, err
}

// GetCurrent returns the club's current book, or ErrNotFound when the club
// is between books.
func (r *Repository) GetCurrent(clubID uint) (*entities.ClubBook, error) {
	var cb entities.ClubBook
	err := r.db.Preload("Book").
		Where("club_id = ? AND status = ?", clubID, entities.ClubBookCurrent).
		First(&cb).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &cb, nil
}

// SetStatus transitions an association to the given status, stamping the
// start or completion time. Promoting a book to current demotes the
// previous current book to completed so a club reads one book at a time.
func (r *Repository) SetStatus(id uint, status entities.ClubBookStatus) (*entities.ClubBook, error) {
	var cb entities.ClubBook
	now := time.Now().UTC()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cb, id).Error; err != nil {
			return database.TranslateError(err)
		}

		if status == entities.ClubBookCurrent {
			err := tx.Model(&entities.ClubBook{}).
				Where("club_id = ? AND status = ? AND id <> ?", cb.ClubID, entities.ClubBookCurrent, cb.ID).
				Updates(map[string]any{"status": entities.ClubBookCompleted, "completed_at": now}).Error
			if err != nil {
				return database.TranslateError(err)
			}
		}

		updates := map[string]any{"status": status}
		switch status {
		case entities.ClubBookCurrent:
			if cb.StartedAt == nil {
				updates["started_at"] = now
			}
		case entities.ClubBookCompleted:
			if cb.CompletedAt == nil {
				updates["completed_at"] = now
			}
		}
		if err := tx.Model(&cb).Updates(updates).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cb, nil
}

// Remove deletes an association from the club's reading list.
func (r *Repository) Remove(id uint) error {
	result := r.db.Delete(&entities.ClubBook{}, id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
