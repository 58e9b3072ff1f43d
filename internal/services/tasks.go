package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskCreate is the validated input for a new task. Absent optional fields
// fall back to defaults.
type TaskCreate struct {
	Title       string
	Description string
	Priority    *models.Priority
	DueDate     *time.Time
	TagIDs      []uuid.UUID
}

// TaskUpdate applies only the fields that are non-nil. TagIDs distinguishes
// "leave alone" (nil) from "replace with this set" (possibly empty).
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *models.Priority
	DueDate     *time.Time
	TagIDs      *[]uuid.UUID
}

type TaskService interface {
	CreateTask(db *gorm.DB, ownerID uuid.UUID, in TaskCreate) (models.Task, error)
	GetTask(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error)
	UpdateTask(db *gorm.DB, ownerID, taskID uuid.UUID, in TaskUpdate) (models.Task, error)
	DeleteTask(db *gorm.DB, ownerID, taskID uuid.UUID) error
	ListTasks(db *gorm.DB, ownerID uuid.UUID, q ListQuery) ([]models.Task, int64, error)
}

// ReminderQueue receives a job whenever a task with a due date is created or
// rescheduled. A nil queue disables reminders.
type ReminderQueue interface {
	EnqueueTaskReminder(ctx context.Context, task models.Task) error
}

type TaskServiceImpl struct {
	reminders ReminderQueue
}

func NewTaskService(reminders ReminderQueue) *TaskServiceImpl {
	return &TaskServiceImpl{reminders: reminders}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, ownerID uuid.UUID, in TaskCreate) (models.Task, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return models.Task{}, err
	}
	if err := validateDescription(in.Description); err != nil {
		return models.Task{}, err
	}

	priority := models.PriorityMedium
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return models.Task{}, apperrors.NewValidation("priority", "must be between 1 (low) and 4 (urgent)")
		}
		priority = *in.Priority
	}

	var task models.Task
	err = db.Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTagIDs(tx, ownerID, in.TagIDs)
		if err != nil {
			return err
		}

		task = models.Task{
			ID:          uuid.Must(uuid.NewV4()),
			UserID:      ownerID,
			Title:       title,
			Description: in.Description,
			Priority:    priority,
			DueDate:     in.DueDate,
			Tags:        tags,
		}
		// Omit("Tags.*") writes the join rows without touching the tag rows.
		return tx.Omit("Tags.*").Create(&task).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	s.scheduleReminder(task)

	return task, nil
}

func (s *TaskServiceImpl) GetTask(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Preload("Tags").Where("id = ? AND user_id = ?", taskID, ownerID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, apperrors.ErrNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, ownerID, taskID uuid.UUID, in TaskUpdate) (models.Task, error) {
	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Task
		if err := tx.Where("id = ? AND user_id = ?", taskID, ownerID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			title, err := validateTitle(*in.Title)
			if err != nil {
				return err
			}
			updates["title"] = title
		}
		if in.Description != nil {
			if err := validateDescription(*in.Description); err != nil {
				return err
			}
			updates["description"] = *in.Description
		}
		if in.Completed != nil {
			updates["completed"] = *in.Completed
		}
		if in.Priority != nil {
			if !in.Priority.Valid() {
				return apperrors.NewValidation("priority", "must be between 1 (low) and 4 (urgent)")
			}
			updates["priority"] = *in.Priority
		}
		if in.DueDate != nil {
			updates["due_date"] = *in.DueDate
		}

		var tags []models.Tag
		if in.TagIDs != nil {
			var err error
			tags, err = resolveTagIDs(tx, ownerID, *in.TagIDs)
			if err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			// Ownership is re-checked in the write itself so a concurrent
			// delete between the read above and this write surfaces as
			// NotFound instead of resurrecting the row.
			res := tx.Model(&models.Task{}).
				Where("id = ? AND user_id = ?", taskID, ownerID).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrNotFound
			}
		}

		if in.TagIDs != nil {
			if err := tx.Model(&existing).Association("Tags").Replace(&tags); err != nil {
				return err
			}
		}

		return tx.Preload("Tags").Where("id = ? AND user_id = ?", taskID, ownerID).First(&task).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	if in.DueDate != nil {
		s.scheduleReminder(task)
	}

	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, ownerID, taskID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.Task
		if err := tx.Where("id = ? AND user_id = ?", taskID, ownerID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		if err := tx.Exec("DELETE FROM task_tags WHERE task_id = ?", taskID).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND user_id = ?", taskID, ownerID).Delete(&models.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, ownerID uuid.UUID, q ListQuery) ([]models.Task, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}

	// An inverted range can never match; short-circuit to an empty page.
	if q.DueAfter != nil && q.DueBefore != nil && q.DueBefore.Before(*q.DueAfter) {
		return []models.Task{}, 0, nil
	}

	query := q.scope(db.Model(&models.Task{}).Where("user_id = ?", ownerID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tasks := make([]models.Task, 0, q.Limit)
	err := q.order(query).Limit(q.Limit).Offset(q.Offset).Preload("Tags").Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (s *TaskServiceImpl) scheduleReminder(task models.Task) {
	if s.reminders == nil || task.DueDate == nil {
		return
	}
	if err := s.reminders.EnqueueTaskReminder(context.Background(), task); err != nil {
		log.Printf("failed to enqueue reminder for task %s: %v", task.ID, err)
	}
}

// resolveTagIDs verifies every referenced tag belongs to ownerID and returns
// the tags in input order with duplicates collapsed. The first unresolvable ID
// is named in the error so clients get deterministic reports.
func resolveTagIDs(tx *gorm.DB, ownerID uuid.UUID, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var owned []models.Tag
	if err := tx.Where("user_id = ? AND id IN ?", ownerID, ids).Find(&owned).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Tag, len(owned))
	for _, tag := range owned {
		byID[tag.ID] = tag
	}

	resolved := make([]models.Tag, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		tag, ok := byID[id]
		if !ok {
			return nil, apperrors.NewValidation("tag_ids", fmt.Sprintf("unknown tag %s", id))
		}
		resolved = append(resolved, tag)
	}

	return resolved, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.NewValidation("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > models.TitleMaxLen {
		return "", apperrors.NewValidation("title", fmt.Sprintf("must be at most %d characters", models.TitleMaxLen))
	}
	return title, nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > models.DescriptionMaxLen {
		return apperrors.NewValidation("description", fmt.Sprintf("must be at most %d characters", models.DescriptionMaxLen))
	}
	return nil
}
