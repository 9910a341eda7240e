package users

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
	dbPath := "./test_users_" + t.Name() + ".db"

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

func newUser(username string) *entities.User {
	return &entities.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "Reader",
	}
}

func TestRepository_Create(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("testuser")
	require.NoError(t, repo.Create(user))

	assert.NotZero(t, user.ID)
	assert.Equal(t, entities.RoleReader, user.Role)
	assert.True(t, user.IsActive)
}

func TestRepository_Create_DuplicateEmail(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(newUser("first")))

	dup := newUser("second")
	dup.Email = "first@example.com"
	err := repo.Create(dup)

	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	var ue *database.UniqueConstraintError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Field, "email")
}

func TestRepository_Create_DuplicateUsername(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(newUser("same")))

	dup := newUser("same")
	dup.Email = "other@example.com"
	err := repo.Create(dup)

	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestRepository_Create_DuplicatePhone(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	phone := "+15550100"
	first := newUser("first")
	first.Phone = &phone
	require.NoError(t, repo.Create(first))

	second := newUser("second")
	second.Phone = &phone
	err := repo.Create(second)

	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestRepository_GetBy(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	created := newUser("testuser")
	require.NoError(t, repo.Create(created))

	byID, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", byID.Username)

	byEmail, err := repo.GetByEmail("testuser@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername("testuser")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	_, err = repo.GetByID(999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_UpdateProfile(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	created := newUser("testuser")
	require.NoError(t, repo.Create(created))

	updated, err := repo.UpdateProfile(created.ID, map[string]any{
		"bio":        "avid reader",
		"first_name": "Anna",
	})

	require.NoError(t, err)
	assert.Equal(t, "avid reader", updated.Bio)
	assert.Equal(t, "Anna", updated.FirstName)

	_, err = repo.UpdateProfile(999, map[string]any{"bio": "x"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Deactivate(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	created := newUser("testuser")
	require.NoError(t, repo.Create(created))

	require.NoError(t, repo.Deactivate(created.ID))

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, repo.Deactivate(999), database.ErrNotFound)
}

// Physical deletion cascades memberships, discussions and progress rows;
// the cascaded progress deletions still land in the audit log.
func TestRepository_Delete_CascadesWithAuditedProgress(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	user := newUser("leaver")
	require.NoError(t, repo.Create(user))
	owner := newUser("owner")
	require.NoError(t, repo.Create(owner))

	book := &entities.Book{ID: "BK1", Title: "Book", Author: "Author"}
	require.NoError(t, db.Create(book).Error)
	club := &entities.Club{Name: "Club", OwnerID: owner.ID, MaxMembers: 10}
	require.NoError(t, db.Create(club).Error)

	require.NoError(t, db.Create(&entities.ClubMember{UserID: user.ID, ClubID: club.ID}).Error)
	require.NoError(t, db.Create(&entities.Discussion{
		ClubID: club.ID, UserID: user.ID, BookID: book.ID, Content: "hello",
	}).Error)
	prog := &entities.ReadingProgress{UserID: user.ID, BookID: book.ID, Status: entities.ProgressReading}
	require.NoError(t, db.Create(prog).Error)

	require.NoError(t, repo.Delete(user.ID, nil))

	_, err := repo.GetByID(user.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var progressCount, memberCount, discussionCount int64
	require.NoError(t, db.Model(&entities.ReadingProgress{}).Where("user_id = ?", user.ID).Count(&progressCount).Error)
	require.NoError(t, db.Model(&entities.ClubMember{}).Where("user_id = ?", user.ID).Count(&memberCount).Error)
	require.NoError(t, db.Model(&entities.Discussion{}).Where("user_id = ?", user.ID).Count(&discussionCount).Error)
	assert.Zero(t, progressCount)
	assert.Zero(t, memberCount)
	assert.Zero(t, discussionCount)

	var logEntries []entities.AuditLogEntry
	require.NoError(t, db.Where("record_id = ?", entities.NumericID(prog.ID)).Find(&logEntries).Error)
	require.Len(t, logEntries, 1)
	assert.Equal(t, entities.AuditActionDelete, logEntries[0].Action)
}

func TestRepository_Delete_ClubOwnerIsRestricted(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	owner := newUser("owner")
	require.NoError(t, repo.Create(owner))

	club := &entities.Club{Name: "Club", OwnerID: owner.ID, MaxMembers: 10}
	require.NoError(t, db.Create(club).Error)

	err := repo.Delete(owner.ID, nil)

	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
}

func TestRepository_List(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(newUser("one")))
	require.NoError(t, repo.Create(newUser("two")))
	require.NoError(t, repo.Create(newUser("three")))

	users, total, err := repo.List(2, 0)

	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)
}
