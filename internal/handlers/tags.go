package handlers

import (
	"net/http"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/middleware"
	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TagHandler struct {
	db         *gorm.DB
	tagService services.TagService
}

func NewTagHandler(db *gorm.DB, tagService services.TagService) *TagHandler {
	return &TagHandler{db: db, tagService: tagService}
}

type tagCreateRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type tagUpdateRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req tagCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	tag, err := h.tagService.CreateTag(h.db, ownerID, services.TagCreate{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	tagID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	var req tagUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	tag, err := h.tagService.UpdateTag(h.db, ownerID, tagID, services.TagUpdate{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	tagID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	if err := h.tagService.DeleteTag(h.db, ownerID, tagID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *TagHandler) ListTags(c *gin.Context) {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	tags, err := h.tagService.ListTags(h.db, ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tags)
}
