package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/internal/service"
)

type SendNowInput struct {
	TestEmail string `json:"test_email"`
}

// NewsletterController serves the manual send, preview and dashboard
// endpoints of the admin UI.
type NewsletterController struct {
	db          *gorm.DB
	newsletter  *service.NewsletterService
	subscribers *service.SubscriberService
	sendLogs    *service.SendLogService
	options     *service.OptionService
	analytics   *service.AnalyticsService
}

func NewNewsletterController(
	db *gorm.DB,
	newsletter *service.NewsletterService,
	subscribers *service.SubscriberService,
	sendLogs *service.SendLogService,
	options *service.OptionService,
	analytics *service.AnalyticsService,
) *NewsletterController {
	return &NewsletterController{
		db:          db,
		newsletter:  newsletter,
		subscribers: subscribers,
		sendLogs:    sendLogs,
		options:     options,
		analytics:   analytics,
	}
}

// SendNow triggers an immediate send. With test_email set only a single
// test message goes out and nothing is recorded in send history.
func (ctl *NewsletterController) SendNow(c *fiber.Ctx) error {
	input := new(SendNowInput)
	if err := c.BodyParser(input); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.TestEmail != "" {
		if err := ctl.newsletter.SendTest(input.TestEmail); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Test email failed: " + err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message": "Test email sent to " + input.TestEmail,
		})
	}

	result, err := ctl.newsletter.SendNewsletter(true)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Newsletter send failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": result.Message,
		"success": result.Success,
		"failed":  result.Failed,
	})
}

// Preview returns the rendered digest HTML.
func (ctl *NewsletterController) Preview(c *fiber.Ctx) error {
	body, err := ctl.newsletter.Preview()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not render preview",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(body)
}

// Dashboard aggregates the numbers shown on the admin landing page.
func (ctl *NewsletterController) Dashboard(c *fiber.Ctx) error {
	var history []model.SendHistory
	if err := ctl.db.Order("sent_at DESC").Limit(5).Find(&history).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch send history",
		})
	}

	since := time.Now().AddDate(0, 0, -30)
	sent, failed, err := ctl.sendLogs.CountsSince(since)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch send statistics",
		})
	}

	summary, err := ctl.analytics.Summary(30)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch analytics",
		})
	}

	stats, err := ctl.subscribers.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscriber statistics",
		})
	}

	response := fiber.Map{
		"subscribers":    stats,
		"recent_sends":   history,
		"sent_30_days":   sent,
		"failed_30_days": failed,
		"analytics":      summary,
	}
	if lastSend, err := ctl.options.GetTime(model.OptionLastSend); err == nil {
		response["last_send"] = lastSend
	}

	return c.JSON(response)
}
