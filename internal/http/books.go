package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/covers"
	"github.com/literattus/literattus/internal/database/books"
	"github.com/literattus/literattus/internal/metadata"
	"github.com/literattus/literattus/internal/tasks"
)

// BooksController handles stored books and catalog lookups.
type BooksController struct {
	books      *books.Repository
	catalog    metadata.CatalogProvider
	taskClient *tasks.Client
	covers     *covers.Cache
}

func NewBooksController(bookRepo *books.Repository, catalog metadata.CatalogProvider, taskClient *tasks.Client, coverCache *covers.Cache) *BooksController {
	return &BooksController{books: bookRepo, catalog: catalog, taskClient: taskClient, covers: coverCache}
}

// SearchCatalog handles GET /api/books/catalog/search?q=...
// Proxies a search to the external catalog without storing anything.
func (bc *BooksController) SearchCatalog(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}
	maxResults, _ := strconv.Atoi(c.DefaultQuery("max_results", "10"))
	startIndex, _ := strconv.Atoi(c.DefaultQuery("start_index", "0"))

	volumes, err := bc.catalog.Search(c.Request.Context(), query, maxResults, startIndex)
	if err != nil {
		respondInternalError(c, err, "catalog search")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": volumes})
}

type AddBookRequest struct {
	CatalogID string `json:"catalog_id" binding:"required"`
}

// AddBook handles POST /api/books
// Fetches the volume from the catalog and stores it under its catalog ID.
func (bc *BooksController) AddBook(c *gin.Context) {
	var req AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	volume, err := bc.catalog.GetByID(c.Request.Context(), req.CatalogID)
	if err != nil {
		respondNotFound(c, "catalog volume")
		return
	}

	book := metadata.VolumeToBook(volume)
	if err := bc.books.Create(book); err != nil {
		respondStorageError(c, err, "book")
		return
	}
	respondCreated(c, book)
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.books.GetByID(c.Param("id"))
	if err != nil {
		respondStorageError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// ListBooks handles GET /api/books
// With ?q= it searches stored titles and authors instead of listing.
func (bc *BooksController) ListBooks(c *gin.Context) {
	limit, offset := parsePagination(c)

	if query := c.Query("q"); query != "" {
		results, err := bc.books.Search(query, limit)
		if err != nil {
			respondInternalError(c, err, "search books")
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
		return
	}

	list, total, err := bc.books.List(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    list,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	})
}

// RefreshBook handles POST /api/books/:id/refresh
// Enqueues a catalog refresh for a stored book.
func (bc *BooksController) RefreshBook(c *gin.Context) {
	id := c.Param("id")
	if _, err := bc.books.GetByID(id); err != nil {
		respondStorageError(c, err, "book")
		return
	}
	if bc.taskClient == nil {
		respondError(c, http.StatusServiceUnavailable, "background tasks are disabled")
		return
	}

	ids, err := bc.taskClient.Add(tasks.RefreshBookTask{BookID: id}).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue refresh")
		return
	}
	respondAccepted(c, "refresh enqueued", gin.H{"task_id": firstOrEmpty(ids)})
}

// GetCover handles GET /api/books/:id/cover
// Serves the book's cover image from the local cache, fetching it from the
// catalog on the first request.
func (bc *BooksController) GetCover(c *gin.Context) {
	book, err := bc.books.GetByID(c.Param("id"))
	if err != nil {
		respondStorageError(c, err, "book")
		return
	}
	if bc.covers == nil || book.CoverImageURL == "" {
		respondNotFound(c, "cover")
		return
	}

	path, err := bc.covers.GetCover(book.ID, book.CoverImageURL)
	if err != nil || path == "" {
		respondNotFound(c, "cover")
		return
	}
	c.File(path)
}

// DeleteBook handles DELETE /api/books/:id
// Dependent rows cascade; progress deletions are audited.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	actorID, _ := auth.UserIDFromContext(c)
	id := c.Param("id")
	if err := bc.books.Delete(id, &actorID); err != nil {
		respondStorageError(c, err, "book")
		return
	}
	if bc.covers != nil {
		_ = bc.covers.InvalidateCover(id)
	}
	respondSuccess(c, "book deleted")
}

func firstOrEmpty(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
