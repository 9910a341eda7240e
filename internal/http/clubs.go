package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/database/clubs"
	"github.com/literattus/literattus/internal/entities"
)

// ClubsController handles book clubs and their memberships.
type ClubsController struct {
	clubs *clubs.Repository
}

func NewClubsController(clubRepo *clubs.Repository) *ClubsController {
	return &ClubsController{clubs: clubRepo}
}

type CreateClubRequest struct {
	Name          string `json:"name" binding:"required,min=3,max=255"`
	Description   string `json:"description"`
	CoverImageURL string `json:"cover_image_url"`
	IsPrivate     bool   `json:"is_private"`
	MaxMembers    int    `json:"max_members"`
}

// CreateClub handles POST /api/clubs
// The creator becomes the owner and its first member.
func (cc *ClubsController) CreateClub(c *gin.Context) {
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	club := &entities.Club{
		Name:          req.Name,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		IsPrivate:     req.IsPrivate,
		MaxMembers:    req.MaxMembers,
		OwnerID:       actorID,
	}
	if err := cc.clubs.Create(club); err != nil {
		respondStorageError(c, err, "club")
		return
	}
	respondCreated(c, club)
}

// GetClub handles GET /api/clubs/:id
func (cc *ClubsController) GetClub(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	club, err := cc.clubs.GetByID(id)
	if err != nil {
		respondStorageError(c, err, "club")
		return
	}
	c.JSON(http.StatusOK, club)
}

// ListClubs handles GET /api/clubs
// Non-admins only see public clubs; ?mine=true lists the actor's clubs.
func (cc *ClubsController) ListClubs(c *gin.Context) {
	if c.Query("mine") == "true" {
		actorID, ok := auth.UserIDFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		list, err := cc.clubs.ListForUser(actorID)
		if err != nil {
			respondInternalError(c, err, "list clubs")
			return
		}
		c.JSON(http.StatusOK, gin.H{"clubs": list})
		return
	}

	limit, offset := parsePagination(c)
	role, _ := auth.RoleFromContext(c)
	publicOnly := role != entities.RoleAdmin && role != entities.RoleSystemAdmin

	list, total, err := cc.clubs.List(publicOnly, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list clubs")
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

type UpdateClubRequest struct {
	Description   *string `json:"description"`
	CoverImageURL *string `json:"cover_image_url"`
	IsPrivate     *bool   `json:"is_private"`
	MaxMembers    *int    `json:"max_members"`
}

// UpdateClub handles PATCH /api/clubs/:id
func (cc *ClubsController) UpdateClub(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !cc.requireClubManager(c, id) {
		return
	}

	var req UpdateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	fields := map[string]any{}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.CoverImageURL != nil {
		fields["cover_image_url"] = *req.CoverImageURL
	}
	if req.IsPrivate != nil {
		fields["is_private"] = *req.IsPrivate
	}
	if req.MaxMembers != nil {
		fields["max_members"] = *req.MaxMembers
	}
	if len(fields) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	club, err := cc.clubs.Update(id, fields)
	if err != nil {
		respondStorageError(c, err, "club")
		return
	}
	c.JSON(http.StatusOK, club)
}

// DeleteClub handles DELETE /api/clubs/:id
// Memberships, club books and discussions go with it; reading progress
// rows survive with their club reference cleared.
func (cc *ClubsController) DeleteClub(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !cc.requireClubOwner(c, id) {
		return
	}
	if err := cc.clubs.Delete(id); err != nil {
		respondStorageError(c, err, "club")
		return
	}
	respondSuccess(c, "club deleted")
}

// Join handles POST /api/clubs/:id/join
func (cc *ClubsController) Join(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	member, err := cc.clubs.Join(id, actorID)
	if err != nil {
		if errors.Is(err, clubs.ErrClubFull) {
			respondError(c, http.StatusConflict, "club is full")
			return
		}
		respondStorageError(c, err, "membership")
		return
	}
	respondCreated(c, member)
}

// Leave handles POST /api/clubs/:id/leave
func (cc *ClubsController) Leave(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := cc.clubs.Leave(id, actorID); err != nil {
		if errors.Is(err, clubs.ErrOwnerCannotLeave) {
			respondError(c, http.StatusConflict, "owner cannot leave the club")
			return
		}
		respondStorageError(c, err, "membership")
		return
	}
	respondSuccess(c, "left club")
}

// ListMembers handles GET /api/clubs/:id/members
func (cc *ClubsController) ListMembers(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	members, err := cc.clubs.ListMembers(id)
	if err != nil {
		respondInternalError(c, err, "list members")
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

type SetMemberRoleRequest struct {
	Role entities.MemberRole `json:"role" binding:"required"`
}

// SetMemberRole handles PUT /api/clubs/:id/members/:userId/role
func (cc *ClubsController) SetMemberRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	if !cc.requireClubOwner(c, id) {
		return
	}

	var req SetMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.Role != entities.MemberRoleMember && req.Role != entities.MemberRoleAdmin {
		respondBadRequest(c, "role must be member or admin")
		return
	}

	if err := cc.clubs.SetMemberRole(id, userID, req.Role); err != nil {
		respondStorageError(c, err, "membership")
		return
	}
	respondSuccess(c, "member role updated")
}

// requireClubManager responds with an error and returns false unless the
// actor is the club owner, a club admin, or a platform admin.
func (cc *ClubsController) requireClubManager(c *gin.Context, clubID uint) bool {
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return false
	}
	role, _ := auth.RoleFromContext(c)
	if role == entities.RoleAdmin || role == entities.RoleSystemAdmin {
		return true
	}

	member, err := cc.clubs.GetMember(clubID, actorID)
	if err != nil || !member.CanManageClub() {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return false
	}
	return true
}

// requireClubOwner responds with an error and returns false unless the
// actor owns the club or is a platform admin.
func (cc *ClubsController) requireClubOwner(c *gin.Context, clubID uint) bool {
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return false
	}
	role, _ := auth.RoleFromContext(c)
	if role == entities.RoleAdmin || role == entities.RoleSystemAdmin {
		return true
	}

	club, err := cc.clubs.GetByID(clubID)
	if err != nil {
		respondStorageError(c, err, "club")
		return false
	}
	if club.OwnerID != actorID {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return false
	}
	return true
}
