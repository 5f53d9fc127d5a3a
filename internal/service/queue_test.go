package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
	"blogmailer_backend/pkg/email"
)

func newQueueFixture(t *testing.T) (*QueueService, *gorm.DB, *recordingMailer) {
	t.Helper()

	db := newTestDB(t)
	mailer := &recordingMailer{failFor: map[string]error{}}
	site := config.SiteConfig{Name: "Test Blog", BaseURL: "https://blog.example.com"}

	renderer, err := email.NewRenderer()
	require.NoError(t, err)

	options := NewOptionService(db)
	settings := NewSettingsService(options, DefaultSettings(site.Name, "admin@example.com"))
	emailService := NewEmailService(db, mailer, renderer, site)

	return NewQueueService(db, emailService, settings), db, mailer
}

func TestEnqueueDefaults(t *testing.T) {
	svc, _, _ := newQueueFixture(t)

	item, err := svc.Enqueue(model.EmailQueueItem{
		RecipientEmail: "queued@example.com",
		Subject:        "Hello",
		Message:        "<p>Hi</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, model.QueueStatusPending, item.Status)
	assert.Equal(t, 5, item.Priority)
	assert.Equal(t, 3, item.MaxAttempts)
	assert.False(t, item.ScheduledFor.IsZero())
}

func TestProcessDueSendsEachItemOnce(t *testing.T) {
	svc, db, mailer := newQueueFixture(t)
	mailer.failFor["bad@example.com"] = errors.New("mailbox unavailable")

	_, err := svc.Enqueue(model.EmailQueueItem{
		RecipientEmail: "good@example.com",
		Subject:        "Hello",
		Message:        "<p>Hi</p>",
	})
	require.NoError(t, err)
	_, err = svc.Enqueue(model.EmailQueueItem{
		RecipientEmail: "bad@example.com",
		Subject:        "Hello",
		Message:        "<p>Hi</p>",
	})
	require.NoError(t, err)

	sent, failed, err := svc.ProcessDue(0)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)

	// A second pass finds nothing pending: failed items never retry.
	sent, failed, err = svc.ProcessDue(0)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)

	var items []model.EmailQueueItem
	require.NoError(t, db.Order("recipient_email ASC").Find(&items).Error)
	require.Len(t, items, 2)

	assert.Equal(t, model.QueueStatusFailed, items[0].Status)
	assert.Equal(t, 1, items[0].Attempts)
	assert.Equal(t, "mailbox unavailable", items[0].ErrorMessage)

	assert.Equal(t, model.QueueStatusSent, items[1].Status)
	assert.Equal(t, 1, items[1].Attempts)
	assert.NotNil(t, items[1].SentAt)

	// Each processed item carries exactly one send-log row.
	var logCount int64
	require.NoError(t, db.Model(&model.SendLog{}).Count(&logCount).Error)
	assert.Equal(t, int64(2), logCount)
}

func TestProcessDueSkipsFutureItems(t *testing.T) {
	svc, _, mailer := newQueueFixture(t)

	_, err := svc.Enqueue(model.EmailQueueItem{
		RecipientEmail: "later@example.com",
		Subject:        "Hello",
		Message:        "<p>Hi</p>",
		ScheduledFor:   time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	sent, failed, err := svc.ProcessDue(0)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)
	assert.Empty(t, mailer.sent)
}

func TestProcessDueHonorsPriority(t *testing.T) {
	svc, _, mailer := newQueueFixture(t)

	_, err := svc.Enqueue(model.EmailQueueItem{
		RecipientEmail: "low@example.com",
		Subject:        "Hello",
		Message:        "<p>Hi</p>",
		Priority:       9,
	})
	require.NoError(t, err)
	_, err = svc.Enqueue(model.EmailQueueItem{
		RecipientEmail: "high@example.com",
		Subject:        "Hello",
		Message:        "<p>Hi</p>",
		Priority:       1,
	})
	require.NoError(t, err)

	_, _, err = svc.ProcessDue(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"high@example.com", "low@example.com"}, mailer.sent)
}
