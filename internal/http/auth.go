package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/literattus/literattus/internal/auth"
	"github.com/literattus/literattus/internal/database/users"
	"github.com/literattus/literattus/internal/entities"
)

// AuthController handles registration, login and token refresh.
type AuthController struct {
	users      *users.Repository
	issuer     *auth.TokenIssuer
	bcryptCost int
}

func NewAuthController(userRepo *users.Repository, issuer *auth.TokenIssuer, bcryptCost int) *AuthController {
	return &AuthController{
		users:      userRepo,
		issuer:     issuer,
		bcryptCost: bcryptCost,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,min=3,max=100"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register handles POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password, ac.bcryptCost)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user := &entities.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := ac.users.Create(user); err != nil {
		respondStorageError(c, err, "user")
		return
	}

	pair, err := ac.issuer.IssuePair(user)
	if err != nil {
		respondInternalError(c, err, "issue tokens")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := ac.users.GetByEmail(req.Email)
	if err != nil {
		// Same response for unknown email and wrong password
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.IsActive {
		respondError(c, http.StatusForbidden, "account is deactivated")
		return
	}
	if err := auth.CheckPassword(req.Password, user.PasswordHash); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := ac.issuer.IssuePair(user)
	if err != nil {
		respondInternalError(c, err, "issue tokens")
		return
	}

	_ = ac.users.Touch(user.ID)

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles POST /api/auth/refresh
func (ac *AuthController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	userID, _, err := ac.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	// Re-read the user so role changes and deactivation take effect
	user, err := ac.users.GetByID(userID)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if !user.IsActive {
		respondError(c, http.StatusForbidden, "account is deactivated")
		return
	}

	pair, err := ac.issuer.IssuePair(user)
	if err != nil {
		respondInternalError(c, err, "issue tokens")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

// Me handles GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := ac.users.GetByID(userID)
	if err != nil {
		respondStorageError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}
