package service

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/cron"
	"blogmailer_backend/pkg/logger"
)

// QueueService drains the email queue. Each due pending item is
// processed exactly once: the attempts counter records the try, but a
// failed item is never rescheduled.
type QueueService struct {
	db       *gorm.DB
	email    *EmailService
	settings *SettingsService
}

func NewQueueService(db *gorm.DB, emailService *EmailService, settings *SettingsService) *QueueService {
	return &QueueService{db: db, email: emailService, settings: settings}
}

// Enqueue stores an outgoing email for the next processing run.
func (s *QueueService) Enqueue(item model.EmailQueueItem) (*model.EmailQueueItem, error) {
	if item.Status == "" {
		item.Status = model.QueueStatusPending
	}
	if item.ScheduledFor.IsZero() {
		item.ScheduledFor = time.Now()
	}
	if item.MaxAttempts == 0 {
		item.MaxAttempts = 3
	}
	if item.Priority == 0 {
		item.Priority = 5
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ProcessDue sends every pending item whose scheduled time has passed,
// highest priority first. Returns per-item outcome counts.
func (s *QueueService) ProcessDue(limit int) (sent int, failed int, err error) {
	if limit <= 0 {
		limit = 50
	}

	var items []model.EmailQueueItem
	err = s.db.Where("status = ? AND scheduled_for <= ?", model.QueueStatusPending, time.Now()).
		Order("priority ASC, scheduled_for ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return 0, 0, err
	}

	settings := s.settings.Get()
	from := FormatFrom(settings.FromName, settings.FromEmail)

	for _, item := range items {
		queueID := item.ID
		sendErr := s.email.Send(from, item.RecipientEmail, item.Subject, item.Message, SendOptions{
			SubscriberID: item.SubscriberID,
			TemplateType: item.TemplateType,
			CampaignType: item.CampaignType,
			QueueID:      &queueID,
		})

		updates := map[string]interface{}{
			"attempts": item.Attempts + 1,
		}
		if sendErr != nil {
			updates["status"] = model.QueueStatusFailed
			updates["error_message"] = sendErr.Error()
			failed++
		} else {
			now := time.Now()
			updates["status"] = model.QueueStatusSent
			updates["sent_at"] = &now
			sent++
		}

		if err := s.db.Model(&item).Updates(updates).Error; err != nil {
			logger.Log.Error("failed to update queue item",
				zap.Uint("id", item.ID), zap.Error(err))
		}
	}
	return sent, failed, nil
}

// RunScheduledProcess is the cron entry point for queue draining.
func (s *QueueService) RunScheduledProcess(status *CronStatusService) {
	sent, failed, err := s.ProcessDue(0)
	if err != nil {
		status.LogExecution(cron.HookProcessQueue, model.CronStatusFailed,
			"Queue processing failed: "+err.Error(), nil)
		return
	}

	cronStatus := model.CronStatusSuccess
	if failed > 0 && sent == 0 {
		cronStatus = model.CronStatusFailed
	} else if failed > 0 {
		cronStatus = model.CronStatusWarning
	}
	status.LogExecution(cron.HookProcessQueue, cronStatus, "Email queue processed", map[string]interface{}{
		"sent":   sent,
		"failed": failed,
	})
}
