package handlers

import (
	"net/http"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
	bcryptCost      int
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService, bcryptCost int) *RegisterHandler {
	return &RegisterHandler{db: db, registerService: registerService, bcryptCost: bcryptCost}
}

type RegistrationResponse struct {
	Message string              `json:"message"`
	User    UserProfileResponse `json:"user"`
}

func (h *RegisterHandler) Registration(c *gin.Context) {
	var req services.RegistrationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.registerService.RegisterUser(h.db, req, h.bcryptCost)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Message: "Your account has been created successfully.",
		User: UserProfileResponse{
			ID:          user.ID.String(),
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
	})
}
