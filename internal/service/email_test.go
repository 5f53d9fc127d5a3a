package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
	"blogmailer_backend/pkg/email"
)

func newEmailFixture(t *testing.T) (*EmailService, *gorm.DB, *recordingMailer) {
	t.Helper()

	db := newTestDB(t)
	mailer := &recordingMailer{failFor: map[string]error{}}
	renderer, err := email.NewRenderer()
	require.NoError(t, err)

	site := config.SiteConfig{Name: "Test Blog", BaseURL: "https://blog.example.com"}
	return NewEmailService(db, mailer, renderer, site), db, mailer
}

func TestSendWritesOneLogRow(t *testing.T) {
	svc, db, _ := newEmailFixture(t)

	err := svc.Send("Test Blog <admin@example.com>", "reader@example.com", "Hi", "<p>Hi</p>", SendOptions{
		RecipientName: "Reader",
		CampaignType:  "newsletter",
	})
	require.NoError(t, err)

	var logs []model.SendLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, model.SendStatusSuccess, logs[0].Status)
	assert.Equal(t, "reader@example.com", logs[0].RecipientEmail)
	assert.Empty(t, logs[0].ErrorMessage)
}

func TestSendFailureIsLogged(t *testing.T) {
	svc, db, mailer := newEmailFixture(t)
	mailer.failFor["reader@example.com"] = errors.New("connection refused")

	err := svc.Send("admin@example.com", "reader@example.com", "Hi", "<p>Hi</p>", SendOptions{})
	require.Error(t, err)

	var entry model.SendLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, model.SendStatusFailed, entry.Status)
	assert.Equal(t, "connection refused", entry.ErrorMessage)
}

func TestSendSkipLog(t *testing.T) {
	svc, db, _ := newEmailFixture(t)

	err := svc.Send("admin@example.com", "reader@example.com", "Hi", "<p>Hi</p>", SendOptions{SkipLog: true})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.SendLog{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSendConfirmationBuildsLink(t *testing.T) {
	svc, db, mailer := newEmailFixture(t)

	subscriber := &model.Subscriber{
		Email:          "pending@example.com",
		FirstName:      "Pat",
		Status:         model.StatusPending,
		UnsubscribeKey: "abc-123",
	}
	require.NoError(t, db.Create(subscriber).Error)

	settings := DefaultSettings("Test Blog", "admin@example.com")
	require.NoError(t, svc.SendConfirmation(subscriber, settings))
	assert.Equal(t, []string{"pending@example.com"}, mailer.sent)

	var entry model.SendLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "confirmation", entry.CampaignType)
	assert.Contains(t, entry.Subject, "Test Blog")
}

func TestFormatFrom(t *testing.T) {
	assert.Equal(t, "Test Blog <a@b.com>", FormatFrom("Test Blog", "a@b.com"))
	assert.Equal(t, "a@b.com", FormatFrom("", "a@b.com"))
}
