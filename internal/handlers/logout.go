package handlers

import (
	"errors"
	"net/http"

	"taskify/backend/internal/apperrors"

	"github.com/gin-gonic/gin"
)

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Logout revokes the refresh token and clears the access cookie. Revoking an
// unknown token still reports success; logout is idempotent.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := h.authService.RevokeToken(h.db, req.RefreshToken); err != nil &&
		!errors.Is(err, apperrors.ErrUnauthenticated) && !errors.Is(err, apperrors.ErrNotFound) {
		respondError(c, err)
		return
	}

	c.SetCookie("access_token", "", -1, "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}
