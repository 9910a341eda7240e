package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/literattus/literattus/internal/entities"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrTokenInvalid   = errors.New("invalid or expired token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims carries the user identity and role inside signed tokens.
type Claims struct {
	Role      entities.UserRole `json:"role"`
	TokenType string            `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the access/refresh pair handed out at login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenIssuer signs and verifies JWTs with a shared HMAC secret.
type TokenIssuer struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenIssuer(secret string, accessExpiry, refreshExpiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// IssuePair creates an access/refresh token pair for the user.
func (i *TokenIssuer) IssuePair(user *entities.User) (*TokenPair, error) {
	access, err := i.sign(user, tokenTypeAccess, i.accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(user, tokenTypeRefresh, i.refreshExpiry)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(i.accessExpiry.Seconds()),
	}, nil
}

func (i *TokenIssuer) sign(user *entities.User, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccess parses an access token and returns the user ID and role.
func (i *TokenIssuer) VerifyAccess(tokenString string) (uint, entities.UserRole, error) {
	return i.verify(tokenString, tokenTypeAccess)
}

// VerifyRefresh parses a refresh token and returns the user ID and role.
func (i *TokenIssuer) VerifyRefresh(tokenString string) (uint, entities.UserRole, error) {
	return i.verify(tokenString, tokenTypeRefresh)
}

func (i *TokenIssuer) verify(tokenString, wantType string) (uint, entities.UserRole, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return 0, "", ErrTokenInvalid
	}
	if claims.TokenType != wantType {
		return 0, "", ErrWrongTokenType
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, "", ErrTokenInvalid
	}
	return uint(userID), claims.Role, nil
}
