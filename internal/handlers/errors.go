package handlers

import (
	"errors"
	"net/http"

	"taskify/backend/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// respondError is the single translation point from service errors to HTTP.
// NotFound deliberately covers "exists but not yours" so task existence never
// leaks across owners.
func respondError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"field":   ve.Field,
			"message": ve.Message,
		})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "The requested resource does not exist",
		})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthenticated",
			"message": "A valid credential is required",
		})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "conflict",
			"message": "The resource conflicts with an existing one",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to process the request",
		})
	}
}
