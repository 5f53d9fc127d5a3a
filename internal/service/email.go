package service

import (
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/config"
	"blogmailer_backend/pkg/email"
	"blogmailer_backend/pkg/logger"
)

// SendOptions controls how a single delivery is logged.
type SendOptions struct {
	SubscriberID  *uint
	RecipientName string
	TemplateType  string
	CampaignType  string
	QueueID       *uint
	SkipLog       bool
}

// EmailService is a thin wrapper over the mail transport that records a
// send-log row per delivery attempt.
type EmailService struct {
	db       *gorm.DB
	mailer   email.Mailer
	renderer *email.Renderer
	site     config.SiteConfig
}

func NewEmailService(db *gorm.DB, mailer email.Mailer, renderer *email.Renderer, site config.SiteConfig) *EmailService {
	return &EmailService{db: db, mailer: mailer, renderer: renderer, site: site}
}

// Send delivers one HTML email. Unless opts.SkipLog is set, exactly one
// send-log row is written whether the transport succeeded or failed.
func (s *EmailService) Send(from, to, subject, htmlBody string, opts SendOptions) error {
	status := model.SendStatusFailed
	errorMessage := ""

	if !opts.SkipLog {
		defer func() {
			entry := model.SendLog{
				RecipientEmail: to,
				RecipientName:  opts.RecipientName,
				SubscriberID:   opts.SubscriberID,
				Subject:        subject,
				TemplateType:   orDefault(opts.TemplateType, "basic"),
				CampaignType:   orDefault(opts.CampaignType, "newsletter"),
				Status:         status,
				ErrorMessage:   errorMessage,
				SentAt:         time.Now(),
				QueueID:        opts.QueueID,
			}
			if dbErr := s.db.Create(&entry).Error; dbErr != nil {
				logger.Log.Error("failed to write send log", zap.Error(dbErr))
			}
		}()
	}

	if err := s.mailer.Send(from, to, subject, htmlBody); err != nil {
		errorMessage = err.Error()
		return err
	}

	status = model.SendStatusSuccess
	return nil
}

// SendConfirmation mails the double-opt-in confirmation link.
func (s *EmailService) SendConfirmation(subscriber *model.Subscriber, settings Settings) error {
	confirmURL := fmt.Sprintf("%s/api/newsletter/confirm?key=%s&email=%s",
		s.site.BaseURL,
		url.QueryEscape(subscriber.UnsubscribeKey),
		url.QueryEscape(subscriber.Email))

	body, err := s.renderer.RenderConfirmation(email.ConfirmationData{
		FirstName:  subscriber.FirstName,
		SiteName:   s.site.Name,
		ConfirmURL: confirmURL,
		Style:      settings.Style(),
	})
	if err != nil {
		return err
	}

	from := FormatFrom(settings.FromName, settings.FromEmail)
	subject := fmt.Sprintf("Confirm your subscription to %s", s.site.Name)
	id := subscriber.ID
	return s.Send(from, subscriber.Email, subject, body, SendOptions{
		SubscriberID:  &id,
		RecipientName: subscriber.FullName(),
		CampaignType:  "confirmation",
	})
}

// FormatFrom builds the RFC 5322 From header value.
func FormatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
