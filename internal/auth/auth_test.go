package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/literattus/literattus/internal/entities"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)
	assert.NoError(t, CheckPassword("correct horse battery", hash))
	assert.ErrorIs(t, CheckPassword("wrong password!!", hash), ErrInvalidPassword)
}

func TestHashPassword_RejectsShortPassword(t *testing.T) {
	_, err := HashPassword("short", 4)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)
	user := &entities.User{Role: entities.RoleModerator}
	user.ID = 42

	pair, err := issuer.IssuePair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(60), pair.ExpiresIn)

	userID, role, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, entities.RoleModerator, role)

	userID, _, err = issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenIssuer_RejectsWrongTokenType(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)
	user := &entities.User{Role: entities.RoleReader}
	user.ID = 7

	pair, err := issuer.IssuePair(user)
	require.NoError(t, err)

	_, _, err = issuer.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, _, err = issuer.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute, time.Hour)
	user := &entities.User{Role: entities.RoleReader}
	user.ID = 7

	pair, err := issuer.IssuePair(user)
	require.NoError(t, err)

	_, _, err = issuer.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_RejectsForeignSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)
	other := NewTokenIssuer("another-secret", time.Minute, time.Hour)
	user := &entities.User{Role: entities.RoleReader}
	user.ID = 7

	pair, err := other.IssuePair(user)
	require.NoError(t, err)

	_, _, err = issuer.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)
	user := &entities.User{Role: entities.RoleAdmin}
	user.ID = 9

	pair, err := issuer.IssuePair(user)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", RequireAuth(issuer), func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":9`)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := NewTokenIssuer("test-secret", time.Minute, time.Hour)

	router := gin.New()
	router.GET("/admin", RequireAuth(issuer), RequireRole(entities.RoleAdmin, entities.RoleSystemAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	reader := &entities.User{Role: entities.RoleReader}
	reader.ID = 1
	admin := &entities.User{Role: entities.RoleAdmin}
	admin.ID = 2

	readerPair, err := issuer.IssuePair(reader)
	require.NoError(t, err)
	adminPair, err := issuer.IssuePair(admin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+readerPair.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminPair.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
