package service

import (
	"errors"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
)

// TagService manages subscriber tags and their assignments.
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) Create(name, description, color string) (*model.Tag, error) {
	tag := model.Tag{
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		Color:       color,
	}
	if err := s.db.Create(&tag).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrTagExists
		}
		return nil, err
	}
	return &tag, nil
}

func (s *TagService) List() ([]model.Tag, error) {
	var tags []model.Tag
	err := s.db.Order("name ASC").Find(&tags).Error
	return tags, err
}

func (s *TagService) Get(id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (s *TagService) Update(id uint, name, description, color string) (*model.Tag, error) {
	tag, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	tag.Name = name
	tag.Slug = slug.Make(name)
	tag.Description = description
	if color != "" {
		tag.Color = color
	}
	if err := s.db.Save(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes the tag and its assignments.
func (s *TagService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&model.SubscriberTag{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Tag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Assign links a tag to a subscriber; repeating the call is a no-op.
func (s *TagService) Assign(subscriberID, tagID uint) error {
	var subscriber model.Subscriber
	if err := s.db.First(&subscriber, subscriberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.Get(tagID); err != nil {
		return err
	}

	assignment := model.SubscriberTag{SubscriberID: subscriberID, TagID: tagID}
	err := s.db.Create(&assignment).Error
	if err != nil && isDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *TagService) Remove(subscriberID, tagID uint) error {
	return s.db.Where("subscriber_id = ? AND tag_id = ?", subscriberID, tagID).
		Delete(&model.SubscriberTag{}).Error
}

// ForSubscriber lists the tags currently assigned to one subscriber.
func (s *TagService) ForSubscriber(subscriberID uint) ([]model.Tag, error) {
	var tags []model.Tag
	err := s.db.
		Joins("JOIN subscriber_tags ON subscriber_tags.tag_id = tags.id").
		Where("subscriber_tags.subscriber_id = ?", subscriberID).
		Order("tags.name ASC").
		Find(&tags).Error
	return tags, err
}
