package service

import (
	"time"

	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/cron"
)

// Retention windows for the weekly cleanup.
const (
	logRetentionDays       = 90
	sentQueueRetentionDays = 30
)

// CleanupService prunes old log and queue rows.
type CleanupService struct {
	db *gorm.DB
}

func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{db: db}
}

// Run deletes rows past their retention window and reports how many
// were removed per table.
func (s *CleanupService) Run() (map[string]int64, error) {
	logCutoff := time.Now().AddDate(0, 0, -logRetentionDays)
	queueCutoff := time.Now().AddDate(0, 0, -sentQueueRetentionDays)
	removed := map[string]int64{}

	result := s.db.Where("sent_at < ?", logCutoff).Delete(&model.SendLog{})
	if result.Error != nil {
		return removed, result.Error
	}
	removed["send_log"] = result.RowsAffected

	result = s.db.Where("executed_at < ?", logCutoff).Delete(&model.CronLog{})
	if result.Error != nil {
		return removed, result.Error
	}
	removed["cron_log"] = result.RowsAffected

	result = s.db.Where("event_at < ?", logCutoff).Delete(&model.AnalyticsEvent{})
	if result.Error != nil {
		return removed, result.Error
	}
	removed["analytics_log"] = result.RowsAffected

	result = s.db.Where("status = ? AND sent_at < ?", model.QueueStatusSent, queueCutoff).
		Delete(&model.EmailQueueItem{})
	if result.Error != nil {
		return removed, result.Error
	}
	removed["email_queue"] = result.RowsAffected

	return removed, nil
}

// RunScheduledCleanup is the cron entry point for the weekly cleanup.
func (s *CleanupService) RunScheduledCleanup(status *CronStatusService) {
	removed, err := s.Run()
	if err != nil {
		status.LogExecution(cron.HookCleanup, model.CronStatusFailed,
			"Cleanup failed: "+err.Error(), nil)
		return
	}
	status.LogExecution(cron.HookCleanup, model.CronStatusSuccess, "Old data cleaned up", removed)
}
