package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// User owns tasks and tags. Email is stored lowercased so uniqueness is
// case-insensitive regardless of backend collation.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string    `json:"email" gorm:"unique;not null"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:UserID"`
	Tags  []Tag  `json:"-" gorm:"foreignKey:UserID"`
}
