package model

import (
	"time"

	"gorm.io/datatypes"
)

// Cron execution statuses.
const (
	CronStatusStarted = "started"
	CronStatusSuccess = "success"
	CronStatusFailed  = "failed"
	CronStatusWarning = "warning"
)

// CronLog records one row per cron hook execution. Append-only; the
// health check derives its state from the most recent row per hook.
type CronLog struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Hook       string         `json:"hook" gorm:"size:255;index;not null"`
	Status     string         `json:"status" gorm:"size:50;index;not null"`
	Message    string         `json:"message"`
	Details    datatypes.JSON `json:"details"`
	ExecutedAt time.Time      `json:"executed_at" gorm:"index;not null"`
}

func (CronLog) TableName() string {
	return "cron_log"
}
