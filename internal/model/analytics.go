package model

import "time"

// Analytics event types.
const (
	EventOpen  = "open"
	EventClick = "click"
)

// AnalyticsEvent records an open or click for a sent newsletter.
type AnalyticsEvent struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EmailID      uint      `json:"email_id" gorm:"index;not null"`
	SubscriberID uint      `json:"subscriber_id" gorm:"index;not null"`
	EventType    string    `json:"event_type" gorm:"size:10;index;not null"`
	LinkID       *uint     `json:"link_id" gorm:"index"`
	EventAt      time.Time `json:"event_at" gorm:"not null"`
	IPAddress    string    `json:"ip_address" gorm:"size:45"`
	UserAgent    string    `json:"user_agent"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_log"
}

// AnalyticsLink maps a tracked link hash back to its original URL.
type AnalyticsLink struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OriginalURL string    `json:"original_url" gorm:"type:text;not null"`
	URLHash     string    `json:"url_hash" gorm:"size:32;uniqueIndex;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (AnalyticsLink) TableName() string {
	return "analytics_links"
}
