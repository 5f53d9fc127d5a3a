package model

import "time"

const PostStatusPublished = "publish"

// Post is a blog entry the newsletter digests. Only published posts of
// the configured post types are picked up by a send.
type Post struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Slug        string     `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content" gorm:"type:text"`
	PostType    string     `json:"post_type" gorm:"size:50;index;default:'post';not null"`
	Status      string     `json:"status" gorm:"size:20;index;default:'draft';not null"`
	PublishedAt *time.Time `json:"published_at" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
