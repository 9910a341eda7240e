package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/database/progress"
	"github.com/literattus/literattus/internal/entities"
)

// ProgressController handles per-user reading progress. Every write here
// is audited by the storage layer.
type ProgressController struct {
	progress *progress.Repository
}

func NewProgressController(progressRepo *progress.Repository) *ProgressController {
	return &ProgressController{progress: progressRepo}
}

type CreateProgressRequest struct {
	BookID      string                  `json:"book_id" binding:"required"`
	ClubID      *uint                   `json:"club_id"`
	Status      entities.ProgressStatus `json:"status"`
	CurrentPage int                     `json:"current_page"`
	Rating      *int                    `json:"rating"`
	Review      *string                 `json:"review"`
}

// CreateProgress handles POST /api/progress
// One record per (user, book); a duplicate create returns 409.
func (pc *ProgressController) CreateProgress(c *gin.Context) {
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		respondBadRequest(c, "rating must be between 1 and 5")
		return
	}

	rec, err := pc.progress.Create(progress.CreateInput{
		UserID:      actorID,
		BookID:      req.BookID,
		ClubID:      req.ClubID,
		Status:      req.Status,
		CurrentPage: req.CurrentPage,
		Rating:      req.Rating,
		Review:      req.Review,
	}, &actorID)
	if err != nil {
		respondStorageError(c, err, "reading progress")
		return
	}
	respondCreated(c, rec)
}

type UpdateProgressRequest struct {
	Status      *entities.ProgressStatus `json:"status"`
	CurrentPage *int                     `json:"current_page"`
	Rating      *int                     `json:"rating"`
	ClearRating bool                     `json:"clear_rating"`
	Review      *string                  `json:"review"`
	ClearReview bool                     `json:"clear_review"`
	ClubID      *uint                    `json:"club_id"`
	ClearClub   bool                     `json:"clear_club"`
}

// UpdateProgress handles PATCH /api/progress/:id
// Only the owner may update; no-op updates produce no audit entry.
func (pc *ProgressController) UpdateProgress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := pc.requireOwner(c, id)
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		respondBadRequest(c, "rating must be between 1 and 5")
		return
	}
	if req.CurrentPage != nil && *req.CurrentPage < 0 {
		respondBadRequest(c, "current_page must not be negative")
		return
	}

	rec, err := pc.progress.Update(id, progress.UpdateInput{
		Status:      req.Status,
		CurrentPage: req.CurrentPage,
		Rating:      req.Rating,
		ClearRating: req.ClearRating,
		Review:      req.Review,
		ClearReview: req.ClearReview,
		ClubID:      req.ClubID,
		ClearClub:   req.ClearClub,
	}, &actorID)
	if err != nil {
		respondStorageError(c, err, "reading progress")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetProgress handles GET /api/progress/:id
func (pc *ProgressController) GetProgress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rec, err := pc.progress.GetByID(id)
	if err != nil {
		respondStorageError(c, err, "reading progress")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListMyProgress handles GET /api/progress
func (pc *ProgressController) ListMyProgress(c *gin.Context) {
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	list, err := pc.progress.ListForUser(actorID)
	if err != nil {
		respondInternalError(c, err, "list progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": list})
}

// ListClubProgress handles GET /api/clubs/:id/progress
func (pc *ProgressController) ListClubProgress(c *gin.Context) {
	clubID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := pc.progress.ListForClub(clubID)
	if err != nil {
		respondInternalError(c, err, "list club progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": list})
}

// DeleteProgress handles DELETE /api/progress/:id
func (pc *ProgressController) DeleteProgress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := pc.requireOwner(c, id)
	if !ok {
		return
	}
	if err := pc.progress.Delete(id, &actorID); err != nil {
		respondStorageError(c, err, "reading progress")
		return
	}
	respondSuccess(c, "progress deleted")
}

// requireOwner loads the record and checks the actor owns it (admins pass).
func (pc *ProgressController) requireOwner(c *gin.Context, id uint) (uint, bool) {
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return 0, false
	}

	rec, err := pc.progress.GetByID(id)
	if err != nil {
		respondStorageError(c, err, "reading progress")
		return 0, false
	}
	if rec.UserID != actorID {
		role, _ := auth.RoleFromContext(c)
		if role != entities.RoleAdmin && role != entities.RoleSystemAdmin {
			respondError(c, http.StatusForbidden, "insufficient permissions")
			return 0, false
		}
	}
	return actorID, true
}
