package model

import "time"

// Tag segments subscribers for targeted campaigns.
type Tag struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Slug        string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description"`
	Color       string    `json:"color" gorm:"size:7;default:'#0073aa';not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// SubscriberTag is the join row between subscribers and tags. The
// (subscriber_id, tag_id) pair is unique.
type SubscriberTag struct {
	SubscriberID uint      `json:"subscriber_id" gorm:"primaryKey"`
	TagID        uint      `json:"tag_id" gorm:"primaryKey"`
	CreatedAt    time.Time `json:"created_at"`
}

func (SubscriberTag) TableName() string {
	return "subscriber_tags"
}
