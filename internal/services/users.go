package services

import (
	"errors"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	GetProfile(db *gorm.DB, userID uuid.UUID) (*models.User, error)
	DeleteAccount(db *gorm.DB, userID uuid.UUID) error
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

func (s *UserServiceImpl) GetProfile(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DeleteAccount removes the user and everything they own inside a single
// transaction: tag associations first, then tasks, tags, refresh tokens and
// finally the user row.
func (s *UserServiceImpl) DeleteAccount(db *gorm.DB, userID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		if err := tx.Exec(
			"DELETE FROM task_tags WHERE task_id IN (SELECT id FROM tasks WHERE user_id = ?)", userID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
