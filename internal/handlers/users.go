package handlers

import (
	"net/http"

	"taskify/backend/internal/middleware"
	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	userService services.UserService
}

func NewUserHandler(db *gorm.DB, userService services.UserService) *UserHandler {
	return &UserHandler{db: db, userService: userService}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userService.GetProfile(h.db, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	created := user.CreatedAt
	c.JSON(http.StatusOK, UserProfileResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   &created,
	})
}

// DeleteMe removes the account and cascades to every owned task, tag and
// refresh token in one transaction.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.userService.DeleteAccount(h.db, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
