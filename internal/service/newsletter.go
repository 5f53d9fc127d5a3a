package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
	"blogmailer_backend/pkg/cron"
	"blogmailer_backend/pkg/email"
	"blogmailer_backend/pkg/logger"
)

var stripTagsRegex = regexp.MustCompile("<[^>]*>")

// SendResult aggregates one batch run. Success + Failed always equals
// the number of confirmed subscribers fetched at the start of the run.
type SendResult struct {
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
	Message string `json:"message"`
}

// NewsletterService orchestrates a batch send: pick confirmed
// subscribers, render the digest per recipient, deliver independently,
// log every outcome.
type NewsletterService struct {
	db          *gorm.DB
	subscribers *SubscriberService
	posts       *PostService
	email       *EmailService
	settings    *SettingsService
	options     *OptionService
	renderer    *email.Renderer
	site        config.SiteConfig
}

func NewNewsletterService(
	db *gorm.DB,
	subscribers *SubscriberService,
	posts *PostService,
	emailService *EmailService,
	settings *SettingsService,
	options *OptionService,
	renderer *email.Renderer,
	site config.SiteConfig,
) *NewsletterService {
	return &NewsletterService{
		db:          db,
		subscribers: subscribers,
		posts:       posts,
		email:       emailService,
		settings:    settings,
		options:     options,
		renderer:    renderer,
		site:        site,
	}
}

// SendNewsletter runs one batch. A failure on one recipient never
// aborts the rest; every fetched recipient yields exactly one success
// or failure outcome. Empty subscriber list and empty post list are
// reported as distinct zero-send conditions, not errors.
func (s *NewsletterService) SendNewsletter(isManual bool) (SendResult, error) {
	subscribers, err := s.subscribers.Confirmed()
	if err != nil {
		return SendResult{}, err
	}
	if len(subscribers) == 0 {
		return SendResult{Message: "No confirmed subscribers to send to."}, nil
	}

	settings := s.settings.Get()

	posts, err := s.posts.RecentPublished(settings.PostsPerEmail, settings.PostTypes)
	if err != nil {
		return SendResult{}, err
	}
	if len(posts) == 0 {
		return SendResult{Message: "No published posts found, newsletter not sent."}, nil
	}

	subject := s.ExpandSubjectTokens(settings.SubjectLine)
	from := FormatFrom(settings.FromName, settings.FromEmail)
	emailPosts := s.buildPosts(posts, settings)

	result := SendResult{}
	for _, subscriber := range subscribers {
		id := subscriber.ID
		body, renderErr := s.renderForSubscriber(&subscriber, subject, emailPosts, settings)
		if renderErr != nil {
			result.Failed++
			s.logRenderFailure(&subscriber, subject, renderErr)
			continue
		}

		sendErr := s.email.Send(from, subscriber.Email, subject, body, SendOptions{
			SubscriberID:  &id,
			RecipientName: subscriber.FullName(),
			CampaignType:  "newsletter",
		})
		if sendErr != nil {
			result.Failed++
			logger.Log.Warn("newsletter delivery failed",
				zap.String("email", subscriber.Email), zap.Error(sendErr))
			continue
		}
		result.Success++
	}

	if result.Success > 0 {
		history := model.SendHistory{
			EmailSubject:   subject,
			RecipientCount: result.Success,
			SentAt:         time.Now(),
			Status:         model.HistoryStatusCompleted,
		}
		if err := s.db.Create(&history).Error; err != nil {
			logger.Log.Error("failed to write send history", zap.Error(err))
		}

		if err := s.options.Set(model.OptionLastSend, time.Now()); err != nil {
			logger.Log.Error("failed to record last send time", zap.Error(err))
		}
		if isManual {
			if err := s.options.Set(model.OptionLastManualSend, time.Now()); err != nil {
				logger.Log.Error("failed to record last manual send time", zap.Error(err))
			}
		}
	}

	result.Message = fmt.Sprintf("Newsletter sent to %d subscribers (%d failed).",
		result.Success, result.Failed)
	return result, nil
}

// SendTest delivers a single preview email to an arbitrary address
// without touching send history.
func (s *NewsletterService) SendTest(address string) error {
	settings := s.settings.Get()

	posts, err := s.posts.RecentPublished(settings.PostsPerEmail, settings.PostTypes)
	if err != nil {
		return err
	}

	subject := s.ExpandSubjectTokens(settings.SubjectLine)
	testSubscriber := model.Subscriber{
		Email:          address,
		FirstName:      "Test",
		LastName:       "User",
		UnsubscribeKey: fmt.Sprintf("test_key_%d", time.Now().Unix()),
	}

	body, err := s.renderForSubscriber(&testSubscriber, subject, s.buildPosts(posts, settings), settings)
	if err != nil {
		return err
	}

	from := FormatFrom(settings.FromName, settings.FromEmail)
	return s.email.Send(from, address, subject, body, SendOptions{
		RecipientName: testSubscriber.FullName(),
		CampaignType:  "test",
	})
}

// Preview renders the digest HTML for the admin preview pane.
func (s *NewsletterService) Preview() (string, error) {
	settings := s.settings.Get()

	posts, err := s.posts.RecentPublished(settings.PostsPerEmail, settings.PostTypes)
	if err != nil {
		return "", err
	}

	subject := s.ExpandSubjectTokens(settings.SubjectLine)
	previewSubscriber := model.Subscriber{
		Email:          "preview@example.com",
		FirstName:      "Preview",
		UnsubscribeKey: "preview",
	}
	return s.renderForSubscriber(&previewSubscriber, subject, s.buildPosts(posts, settings), settings)
}

// RunScheduledSend is the cron entry point: it wraps SendNewsletter
// with cron-log bookkeeping so the health page can track the hook.
func (s *NewsletterService) RunScheduledSend(status *CronStatusService) {
	status.LogExecution(cron.HookSendNewsletter, model.CronStatusStarted, "Newsletter sending started", nil)

	result, err := s.SendNewsletter(false)
	if err != nil {
		logger.Log.Error("scheduled newsletter send failed", zap.Error(err))
		status.LogExecution(cron.HookSendNewsletter, model.CronStatusFailed,
			"Newsletter send failed: "+err.Error(), nil)
		return
	}

	cronStatus := model.CronStatusSuccess
	if result.Failed > 0 && result.Success == 0 {
		cronStatus = model.CronStatusFailed
	}
	status.LogExecution(cron.HookSendNewsletter, cronStatus, result.Message, map[string]interface{}{
		"success": result.Success,
		"failed":  result.Failed,
	})
}

// ExpandSubjectTokens substitutes {site_name} and {date} in the
// configured subject line.
func (s *NewsletterService) ExpandSubjectTokens(subject string) string {
	subject = strings.ReplaceAll(subject, "{site_name}", s.site.Name)
	subject = strings.ReplaceAll(subject, "{date}", time.Now().Format("January 2, 2006"))
	return subject
}

func (s *NewsletterService) buildPosts(posts []model.Post, settings Settings) []email.NewsletterPost {
	items := make([]email.NewsletterPost, 0, len(posts))
	for _, post := range posts {
		publishedAt := post.CreatedAt
		if post.PublishedAt != nil {
			publishedAt = *post.PublishedAt
		}

		excerpt := post.Excerpt
		if excerpt == "" {
			excerpt = stripTagsRegex.ReplaceAllString(post.Content, "")
		}
		if settings.PostContentType != "full" {
			excerpt = truncateWords(excerpt, settings.ExcerptLength)
		}

		items = append(items, email.NewsletterPost{
			Title:       post.Title,
			Excerpt:     excerpt,
			URL:         fmt.Sprintf("%s/%s", s.site.BaseURL, post.Slug),
			PublishedAt: publishedAt,
		})
	}
	return items
}

func (s *NewsletterService) renderForSubscriber(subscriber *model.Subscriber, subject string, posts []email.NewsletterPost, settings Settings) (string, error) {
	greeting := ""
	if settings.EnableGreeting {
		greeting = strings.ReplaceAll(settings.GreetingText, "{first_name}", subscriber.FirstName)
	}

	unsubscribeURL := fmt.Sprintf("%s/api/newsletter/unsubscribe?key=%s&email=%s",
		s.site.BaseURL,
		url.QueryEscape(subscriber.UnsubscribeKey),
		url.QueryEscape(subscriber.Email))

	return s.renderer.RenderNewsletter(email.NewsletterData{
		Heading:         subject,
		Greeting:        greeting,
		Posts:           posts,
		SiteName:        s.site.Name,
		SiteURL:         s.site.BaseURL,
		EnableSiteLink:  settings.EnableSiteLink,
		UnsubscribeURL:  unsubscribeURL,
		UnsubscribeText: settings.UnsubscribeText,
		Style:           settings.Style(),
	})
}

// logRenderFailure keeps the one-outcome-per-recipient invariant when
// the body could not even be rendered.
func (s *NewsletterService) logRenderFailure(subscriber *model.Subscriber, subject string, renderErr error) {
	id := subscriber.ID
	entry := model.SendLog{
		RecipientEmail: subscriber.Email,
		RecipientName:  subscriber.FullName(),
		SubscriberID:   &id,
		Subject:        subject,
		TemplateType:   "basic",
		CampaignType:   "newsletter",
		Status:         model.SendStatusFailed,
		ErrorMessage:   renderErr.Error(),
		SentAt:         time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.Log.Error("failed to write send log", zap.Error(err))
	}
}

func truncateWords(text string, limit int) string {
	if limit <= 0 {
		limit = 55
	}
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "…"
}
