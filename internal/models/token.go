package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Token is a persisted refresh token. Access tokens are stateless JWTs and are
// never stored.
type Token struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	RefreshToken uuid.UUID `json:"refresh_token" gorm:"type:uuid;not null;uniqueIndex"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
