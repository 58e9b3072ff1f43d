package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Priority is an ordered scale; higher values sort as more urgent.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityUrgent
}

const (
	TitleMaxLen       = 200
	DescriptionMaxLen = 2000
)

type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"`
	Priority    Priority   `json:"priority" gorm:"not null;default:2"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []Tag      `json:"tags" gorm:"many2many:task_tags;"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
