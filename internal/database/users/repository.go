// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(email)
package users

import (
	"time"

	"gorm.io/gorm"

	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/database/progress"
	"github.com/literattus/literattus/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. Email, username and phone collisions surface
// as UniqueConstraintError naming the colliding column.
func (r *Repository) Create(user *entities.User) error {
	if user.Role == "" {
		user.Role = entities.RoleReader
	}
	user.IsActive = true
	if err := r.db.Create(user).Error; err != nil {
		return database.TranslateError(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *Repository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// UpdateProfile applies the given profile fields to an existing user.
func (r *Repository) UpdateProfile(id uint, fields map[string]any) (*entities.User, error) {
	var user entities.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Model(&user).Updates(fields).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetPasswordHash replaces the stored password hash.
func (r *Repository) SetPasswordHash(id uint, hash string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Deactivate flips the active flag off. This is the normal "deletion" flow;
// the row and its history stay in place.
func (r *Repository) Deactivate(id uint) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete physically removes a user and cascades to memberships, discussions
// and progress rows. Cascaded progress deletions go through the audited
// path so the history stays complete. A user who still owns clubs cannot be
// removed; the engine's foreign key surfaces as ForeignKeyError.
func (r *Repository) Delete(id uint, actorID *uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.First(&user, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := progress.DeleteAllForUser(tx, id, actorID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entities.Discussion{}).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&entities.ClubMember{}).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
}

// List returns users ordered by creation time, newest first.
func (r *Repository) List(limit, offset int) ([]entities.User, int64, error) {
	var users []entities.User
	var total int64

	query := r.db.Model(&entities.User{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// Touch updates the updated_at column, used after out-of-band writes.
func (r *Repository) Touch(id uint) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}
