package handlers

import (
	"errors"
	"net/http"
	"time"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/config"
	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db           *gorm.DB
	authService  services.AuthService
	authConfig   config.AuthConfig
	secureCookie bool
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type UserProfileResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	TokenType    string               `json:"token_type"`
	ExpiresIn    int64                `json:"expires_in"`
	User         *UserProfileResponse `json:"user"`
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, authConfig config.AuthConfig, production bool) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, authConfig: authConfig, secureCookie: production}
}

// Login exchanges email+password for a token pair. The access token is also
// set as an HttpOnly cookie so browser clients need no token handling.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	user, err := h.authService.LoginUser(h.db, req.Email, req.Password)
	if err != nil {
		// Only a rejected credential is 401; a store failure must not
		// masquerade as one.
		if errors.Is(err, apperrors.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_credentials",
				"message": "Invalid email or password",
			})
			return
		}
		respondError(c, err)
		return
	}

	accessToken, refreshToken, err := h.authService.GenerateTokens(h.db, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_generation_failed",
			"message": "Failed to generate authentication tokens",
		})
		return
	}

	h.setAccessCookie(c, accessToken)

	created := user.CreatedAt
	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.authConfig.AccessTokenTTL.Seconds()),
		User: &UserProfileResponse{
			ID:          user.ID.String(),
			Email:       user.Email,
			DisplayName: user.DisplayName,
			CreatedAt:   &created,
		},
	})
}

func (h *AuthHandler) setAccessCookie(c *gin.Context, accessToken string) {
	c.SetCookie(
		"access_token",
		accessToken,
		int(h.authConfig.AccessTokenTTL.Seconds()),
		"/",
		"",
		h.secureCookie,
		true,
	)
}
