package service

import (
	"errors"

	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
)

// PostService reads the blog content the newsletter digests.
type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// RecentPublished returns the newest published posts of the given types,
// newest first.
func (s *PostService) RecentPublished(limit int, postTypes []string) ([]model.Post, error) {
	if limit <= 0 {
		limit = 5
	}
	if len(postTypes) == 0 {
		postTypes = []string{"post"}
	}

	var posts []model.Post
	err := s.db.Where("status = ? AND post_type IN ?", model.PostStatusPublished, postTypes).
		Order("published_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (s *PostService) Get(id uint) (*model.Post, error) {
	var post model.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}
