// Package clubs provides database operations for clubs and their
// memberships. The club exclusively owns its membership, reading-list and
// discussion rows; deletion removes them in one explicit transaction while
// progress rows only lose their club reference.
package clubs

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/database/progress"
	"github.com/literattus/literattus/internal/entities"
)

var (
	// ErrClubFull is returned when a join would exceed the member limit.
	ErrClubFull = errors.New("club has reached its maximum member count")

	// ErrOwnerCannotLeave is returned when the owner tries to leave their
	// own club. Ownership must be transferred or the club deleted instead.
	ErrOwnerCannotLeave = errors.New("club owner cannot leave the club")
)

// Repository handles club and membership database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new clubs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a club and enrolls the creator as its owner in one
// transaction. A duplicate club name surfaces as UniqueConstraintError.
func (r *Repository) Create(club *entities.Club) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if club.MaxMembers <= 0 {
			club.MaxMembers = 50
		}
		if err := tx.Create(club).Error; err != nil {
			return database.TranslateError(err)
		}
		owner := &entities.ClubMember{
			UserID:   club.OwnerID,
			ClubID:   club.ID,
			Role:     entities.MemberRoleOwner,
			JoinedAt: time.Now().UTC(),
		}
		if err := tx.Create(owner).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
}

// GetByID retrieves a club by ID.
func (r *Repository) GetByID(id uint) (*entities.Club, error) {
	var club entities.Club
	if err := r.db.First(&club, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &club, nil
}

// GetByName retrieves a club by its unique name.
func (r *Repository) GetByName(name string) (*entities.Club, error) {
	var club entities.Club
	if err := r.db.Where("name = ?", name).First(&club).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &club, nil
}

// List returns clubs, optionally restricted to public ones.
func (r *Repository) List(publicOnly bool, limit, offset int) ([]entities.Club, int64, error) {
	query := r.db.Model(&entities.Club{})
	if publicOnly {
		query = query.Where("is_private = ?", false)
	}

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

	var clubs []entities.Club
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&clubs).Error
	return clubs, total, err
}

// ListForUser returns the clubs a user belongs to.
func (r *Repository) ListForUser(userID uint) ([]entities.Club, error) {
	var clubs []entities.Club
	err := r.db.
		Joins("JOIN club_members ON club_members.club_id = clubs.id").
		Where("club_members.user_id = ?", userID).
		Order("clubs.created_at DESC").
		Find(&clubs).Error
	return clubs, err
}

// Update applies the given fields to a club.
func (r *Repository) Update(id uint, fields map[string]any) (*entities.Club, error) {
	var club entities.Club
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&club, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Model(&club).Updates(fields).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// Delete removes a club and everything it owns: memberships, reading-list
// rows and discussions. Progress rows that referenced the club keep their
// data; only the club reference is nulled.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var club entities.Club
		if err := tx.First(&club, id).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := progress.ClearClubRef(tx, id); err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Where("club_id = ?", id).Delete(&entities.Discussion{}).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Where("club_id = ?", id).Delete(&entities.ClubBook{}).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Where("club_id = ?", id).Delete(&entities.ClubMember{}).Error; err != nil {
			return database.TranslateError(err)
		}
		if err := tx.Delete(&club).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
}

// Join enrolls a user as a member. The membership pair is unique, so a
// concurrent double join yields one success and one UniqueConstraintError.
func (r *Repository) Join(clubID, userID uint) (*entities.ClubMember, error) {
	var member *entities.ClubMember
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var club entities.Club
		if err := tx.First(&club, clubID).Error; err != nil {
			return database.TranslateError(err)
		}

		var count int64
		if err := tx.Model(&entities.ClubMember{}).Where("club_id = ?", clubID).Count(&count).Error; err != nil {
			return err
		}
		if int(count) >= club.MaxMembers {
			return ErrClubFull
		}

		member = &entities.ClubMember{
			UserID:   userID,
			ClubID:   clubID,
			Role:     entities.MemberRoleMember,
			JoinedAt: time.Now().UTC(),
		}
		if err := tx.Create(member).Error; err != nil {
			return database.TranslateError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// Leave removes a user's membership. The owner cannot leave their own club.
func (r *Repository) Leave(clubID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var member entities.ClubMember
		err := tx.Where("club_id = ? AND user_id = ?", clubID, userID).First(&member).Error
		if err != nil {
			return database.TranslateError(err)
		}
		if member.Role == entities.MemberRoleOwner {
			return ErrOwnerCannotLeave
		}
		return tx.Delete(&member).Error
	})
}

// GetMember retrieves a single membership.
func (r *Repository) GetMember(clubID, userID uint) (*entities.ClubMember, error) {
	var member entities.ClubMember
	err := r.db.Where("club_id = ? AND user_id = ?", clubID, userID).First(&member).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &member, nil
}

// ListMembers returns a club's members with their user profiles.
func (r *Repository) ListMembers(clubID uint) ([]entities.ClubMember, error) {
	var members []entities.ClubMember
	err := r.db.Preload("User").
		Where("club_id = ?", clubID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

// SetMemberRole changes a member's role within the club.
func (r *Repository) SetMemberRole(clubID, userID uint, role entities.MemberRole) error {
	result := r.db.Model(&entities.ClubMember{}).
		Where("club_id = ? AND user_id = ?", clubID, userID).
		Update("role", role)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// MemberCount returns the current number of members.
func (r *Repository) MemberCount(clubID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ClubMember{}).Where("club_id = ?", clubID).Count(&count).Error
	return count, err
}
