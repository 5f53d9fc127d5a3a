package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gopkg.in/gomail.v2"

	"blogmailer_backend/pkg/config"
)

// Mailer is the outgoing transport. Implementations deliver a single
// HTML email synchronously and return the transport error, if any.
type Mailer interface {
	Send(from, to, subject, htmlBody string) error
}

// NewMailer picks the transport from config.
func NewMailer(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Transport {
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend API key is required")
		}
		return &ResendMailer{
			apiKey: cfg.ResendAPIKey,
			client: &http.Client{Timeout: 30 * time.Second},
		}, nil
	case "smtp", "":
		return &SMTPMailer{
			host:     cfg.SMTPHost,
			port:     cfg.SMTPPort,
			username: cfg.SMTPUser,
			password: cfg.SMTPPassword,
		}, nil
	default:
		return nil, fmt.Errorf("unknown mail transport: %s", cfg.Transport)
	}
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
}

func (m *SMTPMailer) Send(from, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("could not send email: %w", err)
	}
	return nil
}

// ResendMailer delivers through the Resend HTTP API.
type ResendMailer struct {
	apiKey string
	client *http.Client
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

func (m *ResendMailer) Send(from, to, subject, htmlBody string) error {
	payload, err := json.Marshal(resendPayload{
		From:    from,
		To:      to,
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("error marshaling email data: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.resend.com/emails", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend API error: %s", string(body))
	}
	return nil
}
