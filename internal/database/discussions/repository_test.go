package discussions

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
	dbPath := "./test_discussions_" + t.Name() + ".db"

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

type fixtures struct {
	userID uint
	clubID uint
	bookID string
}

func seed(t *testing.T, db *gorm.DB) fixtures {
	user := &entities.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "B", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	club := &entities.Club{Name: "Club", OwnerID: user.ID, MaxMembers: 10}
	require.NoError(t, db.Create(club).Error)
	book := &entities.Book{ID: "BK1", Title: "Book", Author: "Author"}
	require.NoError(t, db.Create(book).Error)
	return fixtures{userID: user.ID, clubID: club.ID, bookID: book.ID}
}

func TestRepository_Create_TopLevel(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	fx := seed(t, db)

	d := &entities.Discussion{
		ClubID:  fx.clubID,
		UserID:  fx.userID,
		BookID:  fx.bookID,
		Title:   "Chapter 1",
		Content: "What did everyone think?",
	}
	require.NoError(t, repo.Create(d))

	assert.NotZero(t, d.ID)
	assert.True(t, d.IsTopLevel())
}

func TestRepository_Create_ReplyInheritsClubAndBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	fx := seed(t, db)

	parent := &entities.Discussion{
		ClubID: fx.clubID, UserID: fx.userID, BookID: fx.bookID,
		Title: "Thread", Content: "root",
	}
	require.NoError(t, repo.Create(parent))

	reply := &entities.Discussion{
		UserID:   fx.userID,
		ParentID: &parent.ID,
		Content:  "reply",
	}
	require.NoError(t, repo.Create(reply))

	assert.Equal(t, fx.clubID, reply.ClubID)
	assert.Equal(t, fx.bookID, reply.BookID)
	assert.False(t, reply.IsTopLevel())
}

func TestRepository_Create_MissingParent(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	fx := seed(t, db)

	missing := uint(999)
	err := repo.Create(&entities.Discussion{
		ClubID: fx.clubID, UserID: fx.userID, BookID: fx.bookID,
		ParentID: &missing, Content: "orphan",
	})

	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Create_MissingBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	fx := seed(t, db)

	err := repo.Create(&entities.Discussion{
		ClubID: fx.clubID, UserID: fx.userID, BookID: "MISSING", Content: "x",
	})

	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
}

func TestRepository_ListTopLevelAndReplies(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	fx := seed(t, db)

	first := &entities.Discussion{ClubID: fx.clubID, UserID: fx.userID, BookID: fx.bookID, Title: "One", Content: "1"}
	second := &entities.Discussion{ClubID: fx.clubID, UserID: fx.userID, BookID: fx.bookID, Title: "Two", Content: "2"}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	reply := &entities.Discussion{UserID: fx.userID, ParentID: &first.ID, Content: "re"}
	require.NoError(t, repo.Create(reply))

	threads, total, err := repo.ListTopLevel(fx.clubID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, threads, 2) // replies excluded

	replies, err := repo.ListReplies(first.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "re", replies[0].Content)
}

func TestRepository_Delete_RemovesReplySubtree(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	fx := seed(t, db)

	root := &entities.Discussion{ClubID: fx.clubID, UserID: fx.userID, BookID: fx.bookID, Title: "Root", Content: "r"}
	require.NoError(t, repo.Create(root))

	reply := &entities.Discussion{UserID: fx.userID, ParentID: &root.ID, Content: "level 1"}
	require.NoError(t, repo.Create(reply))

	nested := &entities.Discussion{UserID: fx.userID, ParentID: &reply.ID, Content: "level 2"}
	require.NoError(t, repo.Create(nested))

	// A sibling thread survives.
	other := &entities.Discussion{ClubID: fx.clubID, UserID: fx.userID, BookID: fx.bookID, Title: "Other", Content: "o"}
	require.NoError(t, repo.Create(other))

	require.NoError(t, repo.Delete(root.ID))

	var count int64
	require.NoError(t, db.Model(&entities.Discussion{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err := repo.GetByID(nested.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = repo.GetByID(other.ID)
	assert.NoError(t, err)
}

func TestRepository_UpdateContent_RepliesKeepEmptyTitle(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	fx := seed(t, db)

	root := &entities.Discussion{ClubID: fx.clubID, UserID: fx.userID, BookID: fx.bookID, Title: "Old", Content: "r"}
	require.NoError(t, repo.Create(root))
	reply := &entities.Discussion{UserID: fx.userID, ParentID: &root.ID, Content: "re"}
	require.NoError(t, repo.Create(reply))

	updated, err := repo.UpdateContent(root.ID, "New", "edited")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "edited", updated.Content)

	updatedReply, err := repo.UpdateContent(reply.ID, "ignored", "edited reply")
	require.NoError(t, err)
	assert.Empty(t, updatedReply.Title)
	assert.Equal(t, "edited reply", updatedReply.Content)
}
