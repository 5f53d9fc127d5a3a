package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
	"blogmailer_backend/pkg/email"
	"blogmailer_backend/pkg/plan"
)

func TestSendWeeklyReport(t *testing.T) {
	db := newTestDB(t)
	mailer := &recordingMailer{failFor: map[string]error{}}
	site := config.SiteConfig{Name: "Test Blog", BaseURL: "https://blog.example.com"}

	renderer, err := email.NewRenderer()
	require.NoError(t, err)

	options := NewOptionService(db)
	settings := NewSettingsService(options, DefaultSettings(site.Name, "admin@example.com"))
	subscribers := NewSubscriberService(db, plan.PlanLimits{})
	emailService := NewEmailService(db, mailer, renderer, site)
	sendLogs := NewSendLogService(db)

	svc := NewReportService(db, subscribers, sendLogs, emailService, settings, renderer, site)

	require.NoError(t, db.Create(&model.User{
		Email: "owner@example.com", Password: "x", FirstName: "Site", LastName: "Owner",
	}).Error)
	subscriber, err := subscribers.Create(CreateSubscriberInput{Email: "reader@example.com"})
	require.NoError(t, err)
	_, err = subscribers.Confirm(subscriber.ID)
	require.NoError(t, err)

	delivered, err := svc.SendWeeklyReport()
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, []string{"owner@example.com"}, mailer.sent)

	var entry model.SendLog
	require.NoError(t, db.Where("campaign_type = ?", "weekly_report").First(&entry).Error)
	assert.Equal(t, model.SendStatusSuccess, entry.Status)
}

func TestSendWeeklyReportNoAdmins(t *testing.T) {
	db := newTestDB(t)
	mailer := &recordingMailer{failFor: map[string]error{}}
	site := config.SiteConfig{Name: "Test Blog", BaseURL: "https://blog.example.com"}

	renderer, err := email.NewRenderer()
	require.NoError(t, err)

	options := NewOptionService(db)
	settings := NewSettingsService(options, DefaultSettings(site.Name, "admin@example.com"))
	subscribers := NewSubscriberService(db, plan.PlanLimits{})
	emailService := NewEmailService(db, mailer, renderer, site)
	sendLogs := NewSendLogService(db)

	svc := NewReportService(db, subscribers, sendLogs, emailService, settings, renderer, site)

	delivered, err := svc.SendWeeklyReport()
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	assert.Empty(t, mailer.sent)
}
