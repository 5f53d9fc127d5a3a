package service

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
)

// CampaignService fans a stored template out to every confirmed
// subscriber through the email queue. Delivery happens on the queue
// processing cadence, not inline.
type CampaignService struct {
	subscribers *SubscriberService
	templates   *TemplateStoreService
	queue       *QueueService
	site        config.SiteConfig
}

func NewCampaignService(
	subscribers *SubscriberService,
	templates *TemplateStoreService,
	queue *QueueService,
	site config.SiteConfig,
) *CampaignService {
	return &CampaignService{
		subscribers: subscribers,
		templates:   templates,
		queue:       queue,
		site:        site,
	}
}

// Enqueue renders the template per subscriber and queues one item each.
// Returns how many items were queued.
func (s *CampaignService) Enqueue(templateID uint, subject string) (int, error) {
	stored, err := s.templates.Get(templateID)
	if err != nil {
		return 0, err
	}

	t, err := template.New("campaign").Parse(stored.Content)
	if err != nil {
		return 0, fmt.Errorf("template does not render: %w", err)
	}

	subscribers, err := s.subscribers.Confirmed()
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, subscriber := range subscribers {
		body, err := s.renderFor(t, &subscriber, templateID)
		if err != nil {
			return queued, err
		}

		id := subscriber.ID
		_, err = s.queue.Enqueue(model.EmailQueueItem{
			RecipientEmail: subscriber.Email,
			SubscriberID:   &id,
			Subject:        subject,
			Message:        body,
			TemplateType:   "custom",
			CampaignType:   "campaign",
		})
		if err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

func (s *CampaignService) renderFor(t *template.Template, subscriber *model.Subscriber, templateID uint) (string, error) {
	unsubscribeURL := fmt.Sprintf("%s/api/newsletter/unsubscribe?key=%s&email=%s",
		s.site.BaseURL,
		url.QueryEscape(subscriber.UnsubscribeKey),
		url.QueryEscape(subscriber.Email))
	pixelURL := fmt.Sprintf("%s/api/track/open.gif?e=%d&s=%d",
		s.site.BaseURL, templateID, subscriber.ID)

	var body bytes.Buffer
	err := t.Execute(&body, map[string]interface{}{
		"FirstName":      subscriber.FirstName,
		"LastName":       subscriber.LastName,
		"Email":          subscriber.Email,
		"SiteName":       s.site.Name,
		"SiteURL":        s.site.BaseURL,
		"UnsubscribeURL": unsubscribeURL,
	})
	if err != nil {
		return "", err
	}

	body.WriteString(fmt.Sprintf(`<img src="%s" width="1" height="1" alt="" style="display: none;">`, pixelURL))
	return body.String(), nil
}
