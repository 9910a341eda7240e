package stats

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
	dbPath := "./test_stats_" + t.Name() + ".db"

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

func seedBook(t *testing.T, db *gorm.DB, id string, pageCount *int) string {
	book := &entities.Book{ID: id, Title: "Book " + id, Author: "Author", PageCount: pageCount}
	require.NoError(t, db.Create(book).Error)
	return book.ID
}

func seedProgress(t *testing.T, db *gorm.DB, userID uint, bookID string, status entities.ProgressStatus, page int, rating *int, review *string) {
	rec := &entities.ReadingProgress{
		UserID:      userID,
		BookID:      bookID,
		Status:      status,
		CurrentPage: page,
		Rating:      rating,
		Review:      review,
	}
	require.NoError(t, db.Create(rec).Error)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestForUser_EmptyUserReturnsZeroSnapshot(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := seedUser(t, db, "empty")

	snap, err := repo.ForUser(userID)

	require.NoError(t, err)
	assert.Equal(t, &Snapshot{}, snap)
}

func TestForUser_AggregatesBucketsPagesRatingsReviews(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := seedUser(t, db, "reader")

	withPages1 := seedBook(t, db, "BK1", intPtr(150))
	withPages2 := seedBook(t, db, "BK2", intPtr(250))
	noPages := seedBook(t, db, "BK3", nil)
	withPages3 := seedBook(t, db, "BK4", intPtr(400))
	withPages4 := seedBook(t, db, "BK5", intPtr(500))

	// completed: pages 100 and 200 count, the unknown-page-count book's
	// 999 pages are excluded from the sum (not treated as zero).
	seedProgress(t, db, userID, withPages1, entities.ProgressCompleted, 100, intPtr(4), strPtr("liked it"))
	seedProgress(t, db, userID, withPages2, entities.ProgressCompleted, 200, intPtr(5), nil)
	seedProgress(t, db, userID, noPages, entities.ProgressCompleted, 999, nil, strPtr("amazing"))
	// reading
	seedProgress(t, db, userID, withPages3, entities.ProgressReading, 40, nil, nil)
	seedProgress(t, db, userID, withPages4, entities.ProgressReading, 60, nil, strPtr(""))

	snap, err := repo.ForUser(userID)

	require.NoError(t, err)
	assert.Equal(t, 5, snap.TotalBooks)
	assert.Equal(t, 2, snap.ReadingCount)
	assert.Equal(t, 3, snap.CompletedCount)
	assert.Equal(t, 0, snap.NotStartedCount)
	assert.Equal(t, 0, snap.AbandonedCount)
	assert.Equal(t, 100+200+40+60, snap.TotalPagesRead)
	assert.Equal(t, 4.5, snap.AverageRating)
	assert.Equal(t, 2, snap.ReviewCount) // empty review text does not count
}

func TestForUser_NotStartedAndAbandonedExcludedFromPages(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := seedUser(t, db, "reader")

	b1 := seedBook(t, db, "BK1", intPtr(100))
	b2 := seedBook(t, db, "BK2", intPtr(100))

	seedProgress(t, db, userID, b1, entities.ProgressNotStarted, 0, nil, nil)
	seedProgress(t, db, userID, b2, entities.ProgressAbandoned, 42, intPtr(2), nil)

	snap, err := repo.ForUser(userID)

	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalBooks)
	assert.Equal(t, 1, snap.NotStartedCount)
	assert.Equal(t, 1, snap.AbandonedCount)
	assert.Equal(t, 0, snap.TotalPagesRead)
	assert.Equal(t, 2.0, snap.AverageRating) // abandoned ratings still count
}

func TestForUser_IgnoresOtherUsers(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	userID := seedUser(t, db, "reader")
	otherID := seedUser(t, db, "other")

	book := seedBook(t, db, "BK1", intPtr(100))
	seedProgress(t, db, otherID, book, entities.ProgressCompleted, 100, intPtr(5), nil)

	snap, err := repo.ForUser(userID)

	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalBooks)
	assert.Equal(t, 0.0, snap.AverageRating)
}

func TestFold_RejectsImpossibleTallies(t *testing.T) {
	snap := &Snapshot{TotalBooks: 1, ReadingCount: 1, CompletedCount: 1}

	err := snap.validate()

	var inconsistency *database.AggregationInconsistencyError
	assert.ErrorAs(t, err, &inconsistency)
}
