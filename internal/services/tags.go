package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"taskify/backend/internal/apperrors"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TagCreate struct {
	Name  string
	Color string
}

type TagUpdate struct {
	Name  *string
	Color *string
}

type TagService interface {
	CreateTag(db *gorm.DB, ownerID uuid.UUID, in TagCreate) (models.Tag, error)
	UpdateTag(db *gorm.DB, ownerID, tagID uuid.UUID, in TagUpdate) (models.Tag, error)
	DeleteTag(db *gorm.DB, ownerID, tagID uuid.UUID) error
	ListTags(db *gorm.DB, ownerID uuid.UUID) ([]models.Tag, error)
}

type TagServiceImpl struct{}

func NewTagService() *TagServiceImpl {
	return &TagServiceImpl{}
}

const tagNameMaxLen = 50

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const defaultTagColor = "#808080"

func (s *TagServiceImpl) CreateTag(db *gorm.DB, ownerID uuid.UUID, in TagCreate) (models.Tag, error) {
	name, err := normalizeTagName(in.Name)
	if err != nil {
		return models.Tag{}, err
	}

	color := in.Color
	if color == "" {
		color = defaultTagColor
	}
	if !hexColorRe.MatchString(color) {
		return models.Tag{}, apperrors.NewValidation("color", "must be a #RRGGBB hex code")
	}

	tag := models.Tag{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: ownerID,
		Name:   name,
		Color:  color,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tag{}).Where("user_id = ? AND name = ?", ownerID, name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrConflict
		}
		return tx.Create(&tag).Error
	})
	if err != nil {
		return models.Tag{}, err
	}

	return tag, nil
}

func (s *TagServiceImpl) UpdateTag(db *gorm.DB, ownerID, tagID uuid.UUID, in TagUpdate) (models.Tag, error) {
	var tag models.Tag
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", tagID, ownerID).First(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			name, err := normalizeTagName(*in.Name)
			if err != nil {
				return err
			}
			if name != tag.Name {
				var count int64
				if err := tx.Model(&models.Tag{}).Where("user_id = ? AND name = ?", ownerID, name).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return apperrors.ErrConflict
				}
				updates["name"] = name
			}
		}
		if in.Color != nil {
			if !hexColorRe.MatchString(*in.Color) {
				return apperrors.NewValidation("color", "must be a #RRGGBB hex code")
			}
			updates["color"] = *in.Color
		}

		if len(updates) == 0 {
			return nil
		}

		res := tx.Model(&models.Tag{}).Where("id = ? AND user_id = ?", tagID, ownerID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return tx.Where("id = ? AND user_id = ?", tagID, ownerID).First(&tag).Error
	})
	if err != nil {
		return models.Tag{}, err
	}

	return tag, nil
}

// DeleteTag removes the tag and its task associations; the tasks themselves
// are untouched.
func (s *TagServiceImpl) DeleteTag(db *gorm.DB, ownerID, tagID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.Where("id = ? AND user_id = ?", tagID, ownerID).First(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		if err := tx.Exec("DELETE FROM task_tags WHERE tag_id = ?", tagID).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND user_id = ?", tagID, ownerID).Delete(&models.Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (s *TagServiceImpl) ListTags(db *gorm.DB, ownerID uuid.UUID) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	err := db.Where("user_id = ?", ownerID).Order("name ASC, id ASC").Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func normalizeTagName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", apperrors.NewValidation("name", "must not be empty")
	}
	if len(name) > tagNameMaxLen {
		return "", apperrors.NewValidation("name", fmt.Sprintf("must be at most %d characters", tagNameMaxLen))
	}
	return name, nil
}
