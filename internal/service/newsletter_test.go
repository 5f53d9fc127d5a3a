package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
	"blogmailer_backend/pkg/email"
	"blogmailer_backend/pkg/plan"
)

type newsletterFixture struct {
	db          *gorm.DB
	mailer      *recordingMailer
	subscribers *SubscriberService
	newsletter  *NewsletterService
	options     *OptionService
}

func newNewsletterFixture(t *testing.T) *newsletterFixture {
	t.Helper()

	db := newTestDB(t)
	mailer := &recordingMailer{failFor: map[string]error{}}
	site := config.SiteConfig{Name: "Test Blog", BaseURL: "https://blog.example.com"}

	renderer, err := email.NewRenderer()
	require.NoError(t, err)

	options := NewOptionService(db)
	settings := NewSettingsService(options, DefaultSettings(site.Name, "admin@example.com"))
	subscribers := NewSubscriberService(db, plan.PlanLimits{})
	posts := NewPostService(db)
	emailService := NewEmailService(db, mailer, renderer, site)

	return &newsletterFixture{
		db:          db,
		mailer:      mailer,
		subscribers: subscribers,
		options:     options,
		newsletter: NewNewsletterService(db, subscribers, posts, emailService,
			settings, options, renderer, site),
	}
}

func (f *newsletterFixture) addConfirmed(t *testing.T, address string) {
	t.Helper()
	subscriber, err := f.subscribers.Create(CreateSubscriberInput{Email: address})
	require.NoError(t, err)
	_, err = f.subscribers.Confirm(subscriber.ID)
	require.NoError(t, err)
}

func (f *newsletterFixture) addPost(t *testing.T, title, slug string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.db.Create(&model.Post{
		Title:       title,
		Slug:        slug,
		Content:     "<p>Some <b>content</b> for the digest.</p>",
		PostType:    "post",
		Status:      model.PostStatusPublished,
		PublishedAt: &now,
	}).Error)
}

func TestSendNewsletterNoSubscribers(t *testing.T) {
	f := newNewsletterFixture(t)
	f.addPost(t, "Hello", "hello")

	result, err := f.newsletter.SendNewsletter(false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "No confirmed subscribers to send to.", result.Message)
	assert.Empty(t, f.mailer.sent)
}

func TestSendNewsletterNoPosts(t *testing.T) {
	f := newNewsletterFixture(t)
	f.addConfirmed(t, "reader@example.com")

	result, err := f.newsletter.SendNewsletter(false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Success)
	assert.Equal(t, "No published posts found, newsletter not sent.", result.Message)
	assert.Empty(t, f.mailer.sent)

	var historyCount int64
	require.NoError(t, f.db.Model(&model.SendHistory{}).Count(&historyCount).Error)
	assert.Equal(t, int64(0), historyCount)
}

func TestSendNewsletterPartialFailure(t *testing.T) {
	f := newNewsletterFixture(t)
	f.addConfirmed(t, "one@example.com")
	f.addConfirmed(t, "two@example.com")
	f.addConfirmed(t, "three@example.com")
	f.addPost(t, "First Post", "first-post")
	f.mailer.failFor["two@example.com"] = errors.New("mailbox unavailable")

	result, err := f.newsletter.SendNewsletter(true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)

	// Every fetched recipient yields exactly one outcome.
	assert.Equal(t, 3, result.Success+result.Failed)

	var logs []model.SendLog
	require.NoError(t, f.db.Order("recipient_email ASC").Find(&logs).Error)
	require.Len(t, logs, 3)
	assert.Equal(t, model.SendStatusSuccess, logs[0].Status)
	assert.Equal(t, model.SendStatusFailed, logs[2].Status)
	assert.Equal(t, "mailbox unavailable", logs[2].ErrorMessage)

	var history []model.SendHistory
	require.NoError(t, f.db.Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].RecipientCount)
	assert.Equal(t, model.HistoryStatusCompleted, history[0].Status)

	_, err = f.options.GetTime(model.OptionLastSend)
	assert.NoError(t, err)
	_, err = f.options.GetTime(model.OptionLastManualSend)
	assert.NoError(t, err)
}

func TestSendNewsletterAllFail(t *testing.T) {
	f := newNewsletterFixture(t)
	f.addConfirmed(t, "only@example.com")
	f.addPost(t, "Post", "post")
	f.mailer.failFor["only@example.com"] = errors.New("connection refused")

	result, err := f.newsletter.SendNewsletter(false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 1, result.Failed)

	// No history row without at least one delivery.
	var historyCount int64
	require.NoError(t, f.db.Model(&model.SendHistory{}).Count(&historyCount).Error)
	assert.Equal(t, int64(0), historyCount)
}

func TestExpandSubjectTokens(t *testing.T) {
	f := newNewsletterFixture(t)

	subject := f.newsletter.ExpandSubjectTokens("[{site_name}] New Posts: {date}")
	assert.Contains(t, subject, "[Test Blog]")
	assert.Contains(t, subject, time.Now().Format("January 2, 2006"))
	assert.NotContains(t, subject, "{site_name}")
	assert.NotContains(t, subject, "{date}")
}

func TestNewsletterBodyContainsUnsubscribeLink(t *testing.T) {
	f := newNewsletterFixture(t)
	f.addConfirmed(t, "reader@example.com")
	f.addPost(t, "Linked Post", "linked-post")

	body, err := f.newsletter.Preview()
	require.NoError(t, err)
	assert.Contains(t, body, "Linked Post")
	assert.Contains(t, body, "https://blog.example.com/linked-post")
	assert.True(t, strings.Contains(body, "/api/newsletter/unsubscribe?key="))
}

func TestSendTestDoesNotTouchHistory(t *testing.T) {
	f := newNewsletterFixture(t)
	f.addPost(t, "Post", "post")

	require.NoError(t, f.newsletter.SendTest("tester@example.com"))
	assert.Equal(t, []string{"tester@example.com"}, f.mailer.sent)

	var historyCount int64
	require.NoError(t, f.db.Model(&model.SendHistory{}).Count(&historyCount).Error)
	assert.Equal(t, int64(0), historyCount)

	var entry model.SendLog
	require.NoError(t, f.db.First(&entry).Error)
	assert.Equal(t, "test", entry.CampaignType)
}

func TestTruncateWords(t *testing.T) {
	text := "one two three four five"
	assert.Equal(t, "one two three four five", truncateWords(text, 10))
	assert.Equal(t, "one two…", truncateWords(text, 2))
}
