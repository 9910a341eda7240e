package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/database/clubs"
	"github.com/literattus/literattus/internal/database/discussions"
	"github.com/literattus/literattus/internal/entities"
)

// DiscussionsController handles threaded club discussions.
type DiscussionsController struct {
	discussions *discussions.Repository
	clubs       *clubs.Repository
}

func NewDiscussionsController(discussionRepo *discussions.Repository, clubRepo *clubs.Repository) *DiscussionsController {
	return &DiscussionsController{discussions: discussionRepo, clubs: clubRepo}
}

type CreateDiscussionRequest struct {
	BookID   string `json:"book_id" binding:"required"`
	ParentID *uint  `json:"parent_id"`
	Title    string `json:"title"`
	Content  string `json:"content" binding:"required"`
}

// CreateDiscussion handles POST /api/clubs/:id/discussions
// Only club members may post. Replies inherit the parent's club and book.
func (dc *DiscussionsController) CreateDiscussion(c *gin.Context) {
	clubID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	if _, err := dc.clubs.GetMember(clubID, actorID); err != nil {
		respondError(c, http.StatusForbidden, "club membership required")
		return
	}

	var req CreateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	d := &entities.Discussion{
		ClubID:   clubID,
		UserID:   actorID,
		BookID:   req.BookID,
		ParentID: req.ParentID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := dc.discussions.Create(d); err != nil {
		respondStorageError(c, err, "discussion")
		return
	}
	respondCreated(c, d)
}

// ListDiscussions handles GET /api/clubs/:id/discussions
// Returns top-level threads; ?book_id= filters to one book.
func (dc *DiscussionsController) ListDiscussions(c *gin.Context) {
	clubID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if bookID := c.Query("book_id"); bookID != "" {
		list, err := dc.discussions.ListForBook(clubID, bookID)
		if err != nil {
			respondInternalError(c, err, "list discussions")
			return
		}
		c.JSON(http.StatusOK, gin.H{"discussions": list})
		return
	}

	limit, offset := parsePagination(c)
	list, total, err := dc.discussions.ListTopLevel(clubID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list discussions")
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

// ListReplies handles GET /api/discussions/:id/replies
func (dc *DiscussionsController) ListReplies(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	replies, err := dc.discussions.ListReplies(id)
	if err != nil {
		respondInternalError(c, err, "list replies")
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

type UpdateDiscussionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content" binding:"required"`
}

// UpdateDiscussion handles PATCH /api/discussions/:id
// Only the author may edit.
func (dc *DiscussionsController) UpdateDiscussion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !dc.requireAuthor(c, id) {
		return
	}

	var req UpdateDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	d, err := dc.discussions.UpdateContent(id, req.Title, req.Content)
	if err != nil {
		respondStorageError(c, err, "discussion")
		return
	}
	c.JSON(http.StatusOK, d)
}

// DeleteDiscussion handles DELETE /api/discussions/:id
// Removes the post and its whole reply subtree.
func (dc *DiscussionsController) DeleteDiscussion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !dc.requireAuthor(c, id) {
		return
	}
	if err := dc.discussions.Delete(id); err != nil {
		respondStorageError(c, err, "discussion")
		return
	}
	respondSuccess(c, "discussion deleted")
}

// requireAuthor checks the actor wrote the post. Platform admins and club
// managers may moderate other people's posts.
func (dc *DiscussionsController) requireAuthor(c *gin.Context, id uint) bool {
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return false
	}

	d, err := dc.discussions.GetByID(id)
	if err != nil {
		respondStorageError(c, err, "discussion")
		return false
	}
	if d.UserID == actorID {
		return true
	}

	role, _ := auth.RoleFromContext(c)
	if role == entities.RoleAdmin || role == entities.RoleSystemAdmin {
		return true
	}
	if member, err := dc.clubs.GetMember(d.ClubID, actorID); err == nil && member.CanManageClub() {
		return true
	}

	respondError(c, http.StatusForbidden, "insufficient permissions")
	return false
}
