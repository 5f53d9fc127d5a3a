package model

import (
	"strings"
	"time"
)

// Subscriber statuses. A subscriber is created pending (or confirmed
// immediately when double opt-in is off), becomes confirmed via the
// emailed key link, and unsubscribed is terminal.
const (
	StatusPending      = "pending"
	StatusConfirmed    = "confirmed"
	StatusUnsubscribed = "unsubscribed"
)

type Subscriber struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	FirstName      string    `json:"first_name" gorm:"size:50"`
	LastName       string    `json:"last_name" gorm:"size:50"`
	Status         string    `json:"status" gorm:"size:20;index;default:'pending';not null"`
	UnsubscribeKey string    `json:"-" gorm:"size:64;index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Tags []Tag `json:"tags,omitempty" gorm:"many2many:subscriber_tags;"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}

func (s *Subscriber) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
