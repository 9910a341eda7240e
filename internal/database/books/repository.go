// Package books provides database operations for the book catalog. Books
// are keyed by their external catalog identifier; attributes can be
// refreshed from the catalog but the identity never changes.
package books

import (
	"gorm.io/gorm"

	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/database/progress"
	"github.com/literattus/literattus/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a book fetched from the external catalog. A duplicate
// catalog identifier or ISBN surfaces as UniqueConstraintError.
func (r *Repository) Create(book *entities.Book) error {
	if err := r.db.Create(book).Error; err != nil {
		return database.TranslateError(err)
	}
	return nil
}

// GetByID retrieves a book by its catalog identifier.
func (r *Repository) GetByID(id string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, "id = ?", id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &book, nil
}

// GetByISBN retrieves a book by ISBN.
func (r *Repository) GetByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &book, nil
}

// Search finds books whose title or author matches the query.
func (r *Repository) Search(query string, limit int) ([]entities.Book, error) {
	if limit <= 0 {
		limit = 40
	}
	pattern := "%" + query + "%"
	var books []entities.Book
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern).
		Order("title ASC").Limit(limit).
		Find(&books).Error
	return books, err
}

// List returns books ordered by title with the total catalog size.
func (r *Repository) List(limit, offset int) ([]entities.Book, int64, error) {
	var books []entities.Book
	var total int64

	if err := r.db.Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("title ASC").Limit(limit).Offset(offset).Find(&books).Error
	return books, total, err
}

// RefreshAttributes overwrites catalog-sourced attributes of a stored book.
// Only attributes refresh; the identifier is immutable.
func (r *Repository) RefreshAttributes(id string, fresh *entities.Book) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, "id = ?", id).Error; err != nil {
			return database.TranslateError(err)
		}
		updates := map[string]any{
			"title":           fresh.Title,
			"author":          fresh.Author,
			"description":     fresh.Description,
			"cover_image_url": fresh.CoverImageURL,
			"published_date":  fresh.PublishedDate,
			"page_count":      fresh.PageCount,
			"isbn":            fresh.ISBN,
		}
		if err := tx.Model(&book).Updates(updates).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Delete removes a book and cascades to club-book rows, discussions and
// progress records. Cascaded progress deletions go through the audited path.
func (r *Repository) Delete(id string, actorID *uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, "id = ?", id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := progress.DeleteAllForBook(tx, id, actorID); err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.Discussion{}).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.ClubBook{}).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Delete(&book).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
}

// AllIDs returns every catalog identifier, used by the metadata refresh
// scheduler to enqueue background refreshes.
func (r *Repository) AllIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&entities.Book{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}
