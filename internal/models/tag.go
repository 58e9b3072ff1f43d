package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Tag is a user-defined label. Name is stored lowercased and unique per owner,
// never globally.
type Tag struct {
	ID     uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_tags_owner_name"`
	Name   string    `json:"name" gorm:"not null;uniqueIndex:idx_tags_owner_name"`
	Color  string    `json:"color" gorm:"not null;default:'#808080'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
