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

func newCampaignFixture(t *testing.T) (*CampaignService, *QueueService, *SubscriberService, *TemplateStoreService, *recordingMailer) {
	t.Helper()

	db := newTestDB(t)
	mailer := &recordingMailer{failFor: map[string]error{}}
	site := config.SiteConfig{Name: "Test Blog", BaseURL: "https://blog.example.com"}

	renderer, err := email.NewRenderer()
	require.NoError(t, err)

	options := NewOptionService(db)
	settings := NewSettingsService(options, DefaultSettings(site.Name, "admin@example.com"))
	subscribers := NewSubscriberService(db, plan.PlanLimits{})
	emailService := NewEmailService(db, mailer, renderer, site)
	queue := NewQueueService(db, emailService, settings)
	templates := NewTemplateStoreService(db, site)

	return NewCampaignService(subscribers, templates, queue, site), queue, subscribers, templates, mailer
}

func TestCampaignEnqueuesPerConfirmedSubscriber(t *testing.T) {
	campaigns, queue, subscribers, templates, mailer := newCampaignFixture(t)

	for _, address := range []string{"a@example.com", "b@example.com"} {
		subscriber, err := subscribers.Create(CreateSubscriberInput{Email: address})
		require.NoError(t, err)
		_, err = subscribers.Confirm(subscriber.ID)
		require.NoError(t, err)
	}
	// Pending subscribers are not targeted.
	_, err := subscribers.Create(CreateSubscriberInput{Email: "pending@example.com"})
	require.NoError(t, err)

	tmpl, err := templates.Create(model.Template{
		Name:    "Announcement",
		Content: "<p>Hello {{.FirstName}}, news from {{.SiteName}}.</p>",
	})
	require.NoError(t, err)

	queued, err := campaigns.Enqueue(tmpl.ID, "Big News")
	require.NoError(t, err)
	assert.Equal(t, 2, queued)

	// Nothing delivered until the queue is drained.
	assert.Empty(t, mailer.sent)

	sent, failed, err := queue.ProcessDue(0)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 0, failed)
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, mailer.sent)
}

func TestCampaignBodyCarriesTrackingAndUnsubscribe(t *testing.T) {
	campaigns, _, subscribers, templates, _ := newCampaignFixture(t)

	subscriber, err := subscribers.Create(CreateSubscriberInput{Email: "reader@example.com"})
	require.NoError(t, err)
	_, err = subscribers.Confirm(subscriber.ID)
	require.NoError(t, err)

	tmpl, err := templates.Create(model.Template{
		Name:    "Tracked",
		Content: `<p>Hi {{.FirstName}}</p><p><a href="{{.UnsubscribeURL}}">bye</a></p>`,
	})
	require.NoError(t, err)

	_, err = campaigns.Enqueue(tmpl.ID, "Tracked")
	require.NoError(t, err)

	var item model.EmailQueueItem
	require.NoError(t, campaigns.queue.db.First(&item).Error)
	assert.Contains(t, item.Message, "/api/track/open.gif?e=")
	assert.Contains(t, item.Message, "/api/newsletter/unsubscribe?key=")
	assert.Equal(t, "campaign", item.CampaignType)
}

func TestCampaignUnknownTemplate(t *testing.T) {
	campaigns, _, _, _, _ := newCampaignFixture(t)

	_, err := campaigns.Enqueue(9999, "Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
