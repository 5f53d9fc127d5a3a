package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"blogmailer_backend/internal/service"
)

type CampaignInput struct {
	TemplateID uint   `json:"template_id" validate:"required"`
	Subject    string `json:"subject" validate:"required"`
}

// CampaignController queues a stored template for delivery to every
// confirmed subscriber.
type CampaignController struct {
	campaigns *service.CampaignService
}

func NewCampaignController(campaigns *service.CampaignService) *CampaignController {
	return &CampaignController{campaigns: campaigns}
}

func (ctl *CampaignController) Send(c *fiber.Ctx) error {
	input := new(CampaignInput)
	if err := c.BodyParser(input); err != nil || input.TemplateID == 0 || input.Subject == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Template ID and subject are required",
		})
	}

	queued, err := ctl.campaigns.Enqueue(input.TemplateID, input.Subject)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Template not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not queue campaign",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Campaign queued",
		"queued":  queued,
	})
}
