// Package discussions provides database operations for threaded club
// discussions. Every post is attributable to a club, an author and the
// book under discussion; deleting a post removes its reply subtree.
package discussions

import (
	"gorm.io/gorm"

	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/entities"
)

// Repository handles discussion database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new discussions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a discussion post. For replies, the parent must belong to
// the same club; a missing club, user, book or parent surfaces as
// ForeignKeyError from the storage engine.
func (r *Repository) Create(d *entities.Discussion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if d.ParentID != nil {
			var parent entities.Discussion
			if err := tx.First(&parent, *d.ParentID).Error; err != nil {
				return database.TranslateError(err)
			}
			// Replies inherit the thread's club and book.
			d.ClubID = parent.ClubID
			d.BookID = parent.BookID
		}
		if err := tx.Create(d).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
}

// GetByID retrieves a discussion with its author.
func (r *Repository) GetByID(id uint) (*entities.Discussion, error) {
	var d entities.Discussion
	if err := r.db.Preload("User").First(&d, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &d, nil
}

// ListTopLevel returns a club's top-level threads, newest first.
func (r *Repository) ListTopLevel(clubID uint, limit, offset int) ([]entities.Discussion, int64, error) {
	query := r.db.Model(&entities.Discussion{}).
		Where("club_id = ? AND parent_id IS NULL", clubID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var threads []entities.Discussion
	err := query.Preload("User").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&threads).Error
	return threads, total, err
}

// ListReplies returns the direct replies of a post in ascending order.
func (r *Repository) ListReplies(parentID uint) ([]entities.Discussion, error) {
	var replies []entities.Discussion
	err := r.db.Preload("User").
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}

// ListForBook returns every thread about a book within a club.
func (r *Repository) ListForBook(clubID uint, bookID string) ([]entities.Discussion, error) {
	var threads []entities.Discussion
	err := r.db.Preload("User").
		Where("club_id = ? AND book_id = ? AND parent_id IS NULL", clubID, bookID).
		Order("created_at DESC").
		Find(&threads).Error
	return threads, err
}

// UpdateContent edits a post's title and content.
func (r *Repository) UpdateContent(id uint, title, content string) (*entities.Discussion, error) {
	var d entities.Discussion
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&d, id).Error; err != nil {
			return database.TranslateError(err)
		}
		updates := map[string]any{"content": content}
		if d.ParentID == nil {
			updates["title"] = title
		}
		if err := tx.Model(&d).Updates(updates).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Delete removes a post and its whole reply subtree.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var d entities.Discussion
		if err := tx.First(&d, id).Error; err != nil {
			return database.TranslateError(err)
		}
		return deleteSubtree(tx, id)
	})
}

// deleteSubtree removes a post after recursively removing its replies, so
// no reply is ever left pointing at a deleted parent.
func deleteSubtree(tx *gorm.DB, id uint) error {
	var replyIDs []uint
	if err := tx.Model(&entities.Discussion{}).Where("parent_id = ?", id).Pluck("id", &replyIDs).Error; err != nil {
		return err
	}
	for _, rid := range replyIDs {
		if err := deleteSubtree(tx, rid); err != nil {
			return err
		}
	}
	return tx.Delete(&entities.Discussion{}, id).Error
}
