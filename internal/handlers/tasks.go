package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/middleware"
	"taskify/backend/internal/models"
	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db           *gorm.DB
	taskService  services.TaskService
	defaultLimit int
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, defaultLimit int) *TaskHandler {
	if defaultLimit < services.MinLimit || defaultLimit > services.MaxLimit {
		defaultLimit = 20
	}
	return &TaskHandler{db: db, taskService: taskService, defaultLimit: defaultLimit}
}

type taskCreateRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Priority    *models.Priority `json:"priority"`
	DueDate     *time.Time       `json:"due_date"`
	TagIDs      []uuid.UUID      `json:"tag_ids"`
}

type taskUpdateRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Completed   *bool            `json:"completed"`
	Priority    *models.Priority `json:"priority"`
	DueDate     *time.Time       `json:"due_date"`
	TagIDs      *[]uuid.UUID     `json:"tag_ids"`
}

type taskListResponse struct {
	Items  []models.Task `json:"items"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	task, err := h.taskService.CreateTask(h.db, ownerID, services.TaskCreate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	taskID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	task, err := h.taskService.GetTask(h.db, ownerID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	taskID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	task, err := h.taskService.UpdateTask(h.db, ownerID, taskID, services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	taskID, err := uuid.FromString(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	if err := h.taskService.DeleteTask(h.db, ownerID, taskID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	query, err := h.parseListQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	items, total, err := h.taskService.ListTasks(h.db, ownerID, query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskListResponse{
		Items:  items,
		Total:  total,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
}

func (h *TaskHandler) parseListQuery(c *gin.Context) (services.ListQuery, error) {
	q := services.ListQuery{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Limit:     h.defaultLimit,
	}

	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return q, apperrors.NewValidation("completed", "must be true or false")
		}
		q.Completed = &completed
	}

	if raw := c.Query("priority"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperrors.NewValidation("priority", "must be an integer")
		}
		priority := models.Priority(value)
		q.Priority = &priority
	}

	if raw := c.Query("tag_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.FromString(strings.TrimSpace(part))
			if err != nil {
				return q, apperrors.NewValidation("tag_ids", "must be a comma-separated list of UUIDs")
			}
			q.TagIDs = append(q.TagIDs, id)
		}
	}

	if raw := c.Query("due_date_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, apperrors.NewValidation("due_date_after", "must be an RFC 3339 timestamp")
		}
		q.DueAfter = &t
	}

	if raw := c.Query("due_date_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, apperrors.NewValidation("due_date_before", "must be an RFC 3339 timestamp")
		}
		q.DueBefore = &t
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperrors.NewValidation("limit", "must be an integer")
		}
		q.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperrors.NewValidation("offset", "must be an integer")
		}
		q.Offset = offset
	}

	return q, nil
}
