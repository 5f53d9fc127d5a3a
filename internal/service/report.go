package service

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
	"blogmailer_backend/pkg/cron"
	"blogmailer_backend/pkg/email"
	"blogmailer_backend/pkg/logger"
)

// ReportService mails a weekly activity summary to every admin user.
type ReportService struct {
	db          *gorm.DB
	subscribers *SubscriberService
	sendLogs    *SendLogService
	email       *EmailService
	settings    *SettingsService
	renderer    *email.Renderer
	site        config.SiteConfig
}

func NewReportService(
	db *gorm.DB,
	subscribers *SubscriberService,
	sendLogs *SendLogService,
	emailService *EmailService,
	settings *SettingsService,
	renderer *email.Renderer,
	site config.SiteConfig,
) *ReportService {
	return &ReportService{
		db:          db,
		subscribers: subscribers,
		sendLogs:    sendLogs,
		email:       emailService,
		settings:    settings,
		renderer:    renderer,
		site:        site,
	}
}

// SendWeeklyReport aggregates the trailing seven days and delivers the
// summary to each admin. Returns how many reports went out.
func (r *ReportService) SendWeeklyReport() (int, error) {
	weekEnd := time.Now()
	weekStart := weekEnd.AddDate(0, 0, -7)

	sent, failed, err := r.sendLogs.CountsSince(weekStart)
	if err != nil {
		return 0, err
	}
	newSubscribers, err := r.subscribers.CountCreatedSince(weekStart)
	if err != nil {
		return 0, err
	}
	stats, err := r.subscribers.Stats()
	if err != nil {
		return 0, err
	}

	settings := r.settings.Get()
	body, err := r.renderer.RenderWeeklyReport(email.WeeklyReportData{
		SiteName:             r.site.Name,
		WeekStart:            weekStart,
		WeekEnd:              weekEnd,
		TotalSent:            sent,
		TotalFailed:          failed,
		NewSubscribers:       newSubscribers,
		ConfirmedSubscribers: stats.Confirmed,
		Style:                settings.Style(),
	})
	if err != nil {
		return 0, err
	}

	var admins []model.User
	if err := r.db.Find(&admins).Error; err != nil {
		return 0, err
	}

	from := FormatFrom(settings.FromName, settings.FromEmail)
	subject := "[" + r.site.Name + "] Weekly Newsletter Report"

	delivered := 0
	for _, admin := range admins {
		err := r.email.Send(from, admin.Email, subject, body, SendOptions{
			RecipientName: admin.FullName(),
			TemplateType:  "report",
			CampaignType:  "weekly_report",
		})
		if err != nil {
			logger.Log.Warn("weekly report delivery failed",
				zap.String("email", admin.Email), zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered, nil
}

// RunScheduledReport is the cron entry point for the weekly report.
func (r *ReportService) RunScheduledReport(status *CronStatusService) {
	delivered, err := r.SendWeeklyReport()
	if err != nil {
		status.LogExecution(cron.HookWeeklyReport, model.CronStatusFailed,
			"Weekly report failed: "+err.Error(), nil)
		return
	}
	status.LogExecution(cron.HookWeeklyReport, model.CronStatusSuccess,
		"Weekly report sent", map[string]interface{}{"delivered": delivered})
}
