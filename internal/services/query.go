package services

import (
	"fmt"
	"strings"
	"time"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// ListQuery carries every recognized list parameter. All filter dimensions
// combine with AND; tag IDs within the tag filter combine with OR.
type ListQuery struct {
	Completed *bool
	Priority  *models.Priority
	TagIDs    []uuid.UUID
	Search    string
	DueAfter  *time.Time
	DueBefore *time.Time

	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

const (
	MinLimit = 1
	MaxLimit = 100
)

var sortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
	"priority":   true,
	"title":      true,
}

func (q ListQuery) Validate() error {
	if !sortColumns[q.SortBy] {
		return apperrors.NewValidation("sort_by", fmt.Sprintf("unknown sort field %q", q.SortBy))
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		return apperrors.NewValidation("sort_order", "must be asc or desc")
	}
	if q.Limit < MinLimit || q.Limit > MaxLimit {
		return apperrors.NewValidation("limit", fmt.Sprintf("must be between %d and %d", MinLimit, MaxLimit))
	}
	if q.Offset < 0 {
		return apperrors.NewValidation("offset", "must not be negative")
	}
	if q.Priority != nil && !q.Priority.Valid() {
		return apperrors.NewValidation("priority", "must be between 1 (low) and 4 (urgent)")
	}
	return nil
}

// scope applies every filter dimension to db. The caller has already scoped
// the query to a single owner.
func (q ListQuery) scope(db *gorm.DB) *gorm.DB {
	if q.Completed != nil {
		db = db.Where("completed = ?", *q.Completed)
	}
	if q.Priority != nil {
		db = db.Where("priority = ?", *q.Priority)
	}
	if len(q.TagIDs) > 0 {
		db = db.Where("id IN (SELECT task_id FROM task_tags WHERE tag_id IN ?)", q.TagIDs)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if q.DueAfter != nil {
		db = db.Where("due_date >= ?", *q.DueAfter)
	}
	if q.DueBefore != nil {
		db = db.Where("due_date <= ?", *q.DueBefore)
	}
	return db
}

// order sorts by the validated column with an id tie-break so identical values
// paginate the same way on every request.
func (q ListQuery) order(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if q.SortOrder == "desc" {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s, id ASC", q.SortBy, direction))
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
