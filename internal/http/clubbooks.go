package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/database/clubbooks"
	"github.com/literattus/literattus/internal/entities"
)

// ClubBooksController handles a club's reading list.
type ClubBooksController struct {
	clubBooks *clubbooks.Repository
	clubsCtl  *ClubsController
}

func NewClubBooksController(clubBookRepo *clubbooks.Repository, clubsCtl *ClubsController) *ClubBooksController {
	return &ClubBooksController{clubBooks: clubBookRepo, clubsCtl: clubsCtl}
}

type AddClubBookRequest struct {
	BookID string                  `json:"book_id" binding:"required"`
	Status entities.ClubBookStatus `json:"status"`
}

// AddBook handles POST /api/clubs/:id/books
func (cbc *ClubBooksController) AddBook(c *gin.Context) {
	clubID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !cbc.clubsCtl.requireClubManager(c, clubID) {
		return
	}

	var req AddClubBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	cb, err := cbc.clubBooks.Add(clubID, req.BookID, req.Status)
	if err != nil {
		respondStorageError(c, err, "club book")
		return
	}
	respondCreated(c, cb)
}

// ListBooks handles GET /api/clubs/:id/books
// Optionally filtered with ?status=planned|current|completed|voted.
func (cbc *ClubBooksController) ListBooks(c *gin.Context) {
	clubID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	status := entities.ClubBookStatus(c.Query("status"))

	list, err := cbc.clubBooks.ListForClub(clubID, status)
	if err != nil {
		respondInternalError(c, err, "list club books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": list})
}

// GetCurrent handles GET /api/clubs/:id/books/current
func (cbc *ClubBooksController) GetCurrent(c *gin.Context) {
	clubID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	cb, err := cbc.clubBooks.GetCurrent(clubID)
	if err != nil {
		respondStorageError(c, err, "current club book")
		return
	}
	c.JSON(http.StatusOK, cb)
}

type SetClubBookStatusRequest struct {
	Status entities.ClubBookStatus `json:"status" binding:"required"`
}

// SetStatus handles PUT /api/clubs/:id/books/:bookEntryId/status
// Promoting a book to current demotes the previous current selection.
func (cbc *ClubBooksController) SetStatus(c *gin.Context) {
	clubID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseIDParam(c, "bookEntryId")
	if !ok {
		return
	}
	if !cbc.clubsCtl.requireClubManager(c, clubID) {
		return
	}

	var req SetClubBookStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	cb, err := cbc.clubBooks.SetStatus(entryID, req.Status)
	if err != nil {
		respondStorageError(c, err, "club book")
		return
	}
	c.JSON(http.StatusOK, cb)
}

// RemoveBook handles DELETE /api/clubs/:id/books/:bookEntryId
func (cbc *ClubBooksController) RemoveBook(c *gin.Context) {
	clubID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseIDParam(c, "bookEntryId")
	if !ok {
		return
	}
	if !cbc.clubsCtl.requireClubManager(c, clubID) {
		return
	}

	if err := cbc.clubBooks.Remove(entryID); err != nil {
		respondStorageError(c, err, "club book")
		return
	}
	respondSuccess(c, "book removed from club")
}
