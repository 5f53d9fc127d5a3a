package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"blogmailer_backend/internal/service"
)

// transparent 1x1 GIF served by the open tracker
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// AnalyticsController serves the tracking pixel, the click redirect and
// the aggregate summary.
type AnalyticsController struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsController(analytics *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// Open records a pixel hit. The response is always the GIF, even when
// recording fails.
func (ctl *AnalyticsController) Open(c *fiber.Ctx) error {
	emailID := uint(c.QueryInt("e"))
	subscriberID := uint(c.QueryInt("s"))

	if emailID > 0 && subscriberID > 0 {
		_ = ctl.analytics.RecordOpen(emailID, subscriberID, c.IP(), c.Get("User-Agent"))
	}

	c.Set(fiber.HeaderContentType, "image/gif")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(trackingPixel)
}

// Click resolves a tracked link and redirects to the original URL.
func (ctl *AnalyticsController) Click(c *fiber.Ctx) error {
	hash := c.Params("hash")
	emailID := uint(c.QueryInt("e"))
	subscriberID := uint(c.QueryInt("s"))

	destination, err := ctl.analytics.ResolveLink(hash, emailID, subscriberID, c.IP(), c.Get("User-Agent"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Unknown link",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not resolve link",
		})
	}

	return c.Redirect(destination, fiber.StatusFound)
}

func (ctl *AnalyticsController) Summary(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	summary, err := ctl.analytics.Summary(days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch analytics",
		})
	}
	return c.JSON(fiber.Map{
		"days":    days,
		"summary": summary,
	})
}
