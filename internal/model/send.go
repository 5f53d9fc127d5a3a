package model

import "time"

// Send and queue statuses.
const (
	SendStatusSuccess = "success"
	SendStatusFailed  = "failed"

	QueueStatusPending = "pending"
	QueueStatusSent    = "sent"
	QueueStatusFailed  = "failed"

	HistoryStatusCompleted = "completed"
)

// SendHistory records one row per newsletter batch. Append-only;
// recipient_count is the number of successful deliveries in the batch.
type SendHistory struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	EmailSubject   string    `json:"email_subject" gorm:"size:255"`
	RecipientCount int       `json:"recipient_count" gorm:"default:0;not null"`
	SentAt         time.Time `json:"sent_at" gorm:"index"`
	Status         string    `json:"status" gorm:"size:20;default:'completed';not null"`
}

func (SendHistory) TableName() string {
	return "send_history"
}

// SendLog records one row per individual delivery attempt, success or
// failure, for the troubleshooting UI. Append-only.
type SendLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RecipientEmail string    `json:"recipient_email" gorm:"size:100;index;not null"`
	RecipientName  string    `json:"recipient_name" gorm:"size:100"`
	SubscriberID   *uint     `json:"subscriber_id" gorm:"index"`
	Subject        string    `json:"subject" gorm:"size:255;not null"`
	TemplateType   string    `json:"template_type" gorm:"size:50;default:'basic';not null"`
	CampaignType   string    `json:"campaign_type" gorm:"size:50;index;default:'newsletter';not null"`
	Status         string    `json:"status" gorm:"size:20;index;default:'success';not null"`
	ErrorMessage   string    `json:"error_message"`
	SentAt         time.Time `json:"sent_at" gorm:"index"`
	QueueID        *uint     `json:"queue_id" gorm:"index"`
}

func (SendLog) TableName() string {
	return "send_log"
}

// EmailQueueItem is a queued outgoing email. Attempts and MaxAttempts are
// recorded per try but nothing reschedules a failed item; a due pending
// item is processed exactly once.
type EmailQueueItem struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	RecipientEmail string     `json:"recipient_email" gorm:"size:100;not null"`
	SubscriberID   *uint      `json:"subscriber_id" gorm:"index"`
	Subject        string     `json:"subject" gorm:"size:255;not null"`
	Message        string     `json:"message" gorm:"type:text;not null"`
	Headers        string     `json:"headers"`
	TemplateType   string     `json:"template_type" gorm:"size:50;default:'basic';not null"`
	CampaignType   string     `json:"campaign_type" gorm:"size:50;index;default:'newsletter';not null"`
	Status         string     `json:"status" gorm:"size:20;index;default:'pending';not null"`
	Priority       int        `json:"priority" gorm:"index;default:5;not null"`
	Attempts       int        `json:"attempts" gorm:"default:0;not null"`
	MaxAttempts    int        `json:"max_attempts" gorm:"default:3;not null"`
	ErrorMessage   string     `json:"error_message"`
	ScheduledFor   time.Time  `json:"scheduled_for" gorm:"index;not null"`
	SentAt         *time.Time `json:"sent_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (EmailQueueItem) TableName() string {
	return "email_queue"
}
