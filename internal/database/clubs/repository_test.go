package clubs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_clubs_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return NewRepository(db), db, cleanup
}

func seedUser(t *testing.T, db *gorm.DB, username string) uint {
	user := &entities.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "Reader",
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user.ID
}

func seedBook(t *testing.T, db *gorm.DB, id string) string {
	book := &entities.Book{ID: id, Title: "Book " + id, Author: "Author"}
	require.NoError(t, db.Create(book).Error)
	return book.ID
}

func TestRepository_Create_EnrollsOwner(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := seedUser(t, db, "owner")

	club := &entities.Club{Name: "Fiction Friends", OwnerID: ownerID}
	require.NoError(t, repo.Create(club))

	assert.NotZero(t, club.ID)
	assert.Equal(t, 50, club.MaxMembers)

	member, err := repo.GetMember(club.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, entities.MemberRoleOwner, member.Role)
}

func TestRepository_Create_DuplicateNameFails(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := seedUser(t, db, "owner")

	require.NoError(t, repo.Create(&entities.Club{Name: "Fiction Friends", OwnerID: ownerID}))
	err := repo.Create(&entities.Club{Name: "Fiction Friends", OwnerID: ownerID})

	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestRepository_Create_UnknownOwnerFails(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Create(&entities.Club{Name: "Ghost Club", OwnerID: 999})

	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
}

func TestRepository_Join_And_DuplicateJoinFails(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := seedUser(t, db, "owner")
	readerID := seedUser(t, db, "reader")

	club := &entities.Club{Name: "Fiction Friends", OwnerID: ownerID}
	require.NoError(t, repo.Create(club))

	member, err := repo.Join(club.ID, readerID)
	require.NoError(t, err)
	assert.Equal(t, entities.MemberRoleMember, member.Role)

	_, err = repo.Join(club.ID, readerID)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestRepository_Join_FullClub(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := seedUser(t, db, "owner")
	secondID := seedUser(t, db, "second")
	thirdID := seedUser(t, db, "third")

	club := &entities.Club{Name: "Tiny Club", OwnerID: ownerID, MaxMembers: 2}
	require.NoError(t, repo.Create(club))

	_, err := repo.Join(club.ID, secondID)
	require.NoError(t, err)

	_, err = repo.Join(club.ID, thirdID)
	assert.ErrorIs(t, err, ErrClubFull)
}

func TestRepository_Leave_OwnerCannotLeave(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := seedUser(t, db, "owner")
	readerID := seedUser(t, db, "reader")

	club := &entities.Club{Name: "Fiction Friends", OwnerID: ownerID}
	require.NoError(t, repo.Create(club))
	_, err := repo.Join(club.ID, readerID)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Leave(club.ID, ownerID), ErrOwnerCannotLeave)
	require.NoError(t, repo.Leave(club.ID, readerID))

	_, err = repo.GetMember(club.ID, readerID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

// Deleting a club removes its memberships, reading-list rows and
// discussions, while progress rows only lose the club reference.
func TestRepository_Delete_CascadesOwnedRowsAndNullsProgress(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := seedUser(t, db, "owner")
	readerID := seedUser(t, db, "reader")
	bookID := seedBook(t, db, "BK1")

	club := &entities.Club{Name: "Fiction Friends", OwnerID: ownerID}
	require.NoError(t, repo.Create(club))
	_, err := repo.Join(club.ID, readerID)
	require.NoError(t, err)

	require.NoError(t, db.Create(&entities.ClubBook{
		ClubID: club.ID, BookID: bookID, Status: entities.ClubBookCurrent,
	}).Error)
	require.NoError(t, db.Create(&entities.Discussion{
		ClubID: club.ID, UserID: readerID, BookID: bookID, Content: "thoughts?",
	}).Error)
	prog := &entities.ReadingProgress{
		UserID: readerID, BookID: bookID, ClubID: &club.ID,
		Status: entities.ProgressReading, CurrentPage: 30,
	}
	require.NoError(t, db.Create(prog).Error)

	require.NoError(t, repo.Delete(club.ID))

	var memberCount, clubBookCount, discussionCount int64
	require.NoError(t, db.Model(&entities.ClubMember{}).Where("club_id = ?", club.ID).Count(&memberCount).Error)
	require.NoError(t, db.Model(&entities.ClubBook{}).Where("club_id = ?", club.ID).Count(&clubBookCount).Error)
	require.NoError(t, db.Model(&entities.Discussion{}).Where("club_id = ?", club.ID).Count(&discussionCount).Error)
	assert.Zero(t, memberCount)
	assert.Zero(t, clubBookCount)
	assert.Zero(t, discussionCount)

	var kept entities.ReadingProgress
	require.NoError(t, db.First(&kept, prog.ID).Error)
	assert.Nil(t, kept.ClubID)
	assert.Equal(t, 30, kept.CurrentPage)
	assert.Equal(t, entities.ProgressReading, kept.Status)
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	assert.ErrorIs(t, repo.Delete(999), database.ErrNotFound)
}

func TestRepository_ListForUser(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := seedUser(t, db, "owner")
	readerID := seedUser(t, db, "reader")

	first := &entities.Club{Name: "First", OwnerID: ownerID}
	second := &entities.Club{Name: "Second", OwnerID: ownerID}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	_, err := repo.Join(second.ID, readerID)
	require.NoError(t, err)

	clubs, err := repo.ListForUser(readerID)
	require.NoError(t, err)
	require.Len(t, clubs, 1)
	assert.Equal(t, "Second", clubs[0].Name)

	clubs, err = repo.ListForUser(ownerID)
	require.NoError(t, err)
	assert.Len(t, clubs, 2)
}

func TestRepository_SetMemberRole(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	ownerID := seedUser(t, db, "owner")
	readerID := seedUser(t, db, "reader")

	club := &entities.Club{Name: "Fiction Friends", OwnerID: ownerID}
	require.NoError(t, repo.Create(club))
	_, err := repo.Join(club.ID, readerID)
	require.NoError(t, err)

	require.NoError(t, repo.SetMemberRole(club.ID, readerID, entities.MemberRoleAdmin))

	member, err := repo.GetMember(club.ID, readerID)
	require.NoError(t, err)
	assert.Equal(t, entities.MemberRoleAdmin, member.Role)
	assert.True(t, member.CanManageClub())

	assert.ErrorIs(t, repo.SetMemberRole(club.ID, 999, entities.MemberRoleAdmin), database.ErrNotFound)
}
