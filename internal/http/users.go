package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/database/stats"
	"github.com/literattus/literattus/internal/database/users"
	"github.com/literattus/literattus/internal/entities"
)

// UsersController handles user profile, administration and statistics.
type UsersController struct {
	users      *users.Repository
	stats      *stats.Repository
	bcryptCost int
}

func NewUsersController(userRepo *users.Repository, statsRepo *stats.Repository, bcryptCost int) *UsersController {
	return &UsersController{users: userRepo, stats: statsRepo, bcryptCost: bcryptCost}
}

// GetUser handles GET /api/users/:id
func (uc *UsersController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := uc.users.GetByID(id)
	if err != nil {
		respondStorageError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /api/users
func (uc *UsersController) ListUsers(c *gin.Context) {
	limit, offset := parsePagination(c)
	list, total, err := uc.users.List(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list users")
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

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	Phone     *string `json:"phone"`
}

// UpdateProfile handles PATCH /api/users/:id
// Users may edit their own profile; admins may edit anyone's.
func (uc *UsersController) UpdateProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !uc.canManage(c, id) {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	fields := map[string]any{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if len(fields) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	user, err := uc.users.UpdateProfile(id, fields)
	if err != nil {
		respondStorageError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword handles POST /api/users/:id/password
func (uc *UsersController) ChangePassword(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actorID, _ := auth.UserIDFromContext(c)
	if actorID != id {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := uc.users.GetByID(id)
	if err != nil {
		respondStorageError(c, err, "user")
		return
	}
	if err := auth.CheckPassword(req.CurrentPassword, user.PasswordHash); err != nil {
		respondError(c, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword, uc.bcryptCost)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := uc.users.SetPasswordHash(id, hash); err != nil {
		respondStorageError(c, err, "user")
		return
	}
	respondSuccess(c, "password updated")
}

// Deactivate handles POST /api/users/:id/deactivate
func (uc *UsersController) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !uc.canManage(c, id) {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return
	}
	if err := uc.users.Deactivate(id); err != nil {
		respondStorageError(c, err, "user")
		return
	}
	respondSuccess(c, "user deactivated")
}

// DeleteUser handles DELETE /api/users/:id
// Owned rows cascade; reading progress deletions are audited.
func (uc *UsersController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !uc.canManage(c, id) {
		respondError(c, http.StatusForbidden, "insufficient permissions")
		return
	}
	actorID, _ := auth.UserIDFromContext(c)
	if err := uc.users.Delete(id, &actorID); err != nil {
		respondStorageError(c, err, "user")
		return
	}
	respondSuccess(c, "user deleted")
}

// GetStats handles GET /api/users/:id/stats
// Returns the reading statistics snapshot computed in one consistent read.
func (uc *UsersController) GetStats(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := uc.users.GetByID(id); err != nil {
		respondStorageError(c, err, "user")
		return
	}

	snapshot, err := uc.stats.ForUser(id)
	if err != nil {
		respondInternalError(c, err, "user stats")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// canManage reports whether the acting user is the target user or an admin.
func (uc *UsersController) canManage(c *gin.Context, targetID uint) bool {
	actorID, ok := auth.UserIDFromContext(c)
	if !ok {
		return false
	}
	if actorID == targetID {
		return true
	}
	role, _ := auth.RoleFromContext(c)
	return role == entities.RoleAdmin || role == entities.RoleSystemAdmin
}
