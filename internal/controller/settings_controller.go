package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"blogmailer_backend/internal/service"
	"blogmailer_backend/pkg/logger"
)

// SettingsController reads and writes the newsletter settings. Saving
// runs the onSave callback so the send schedule follows the new
// frequency immediately.
type SettingsController struct {
	settings *service.SettingsService
	onSave   func(service.Settings) error
}

func NewSettingsController(settings *service.SettingsService, onSave func(service.Settings) error) *SettingsController {
	return &SettingsController{settings: settings, onSave: onSave}
}

func (ctl *SettingsController) Get(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"settings": ctl.settings.Get(),
	})
}

func (ctl *SettingsController) Update(c *fiber.Ctx) error {
	settings := ctl.settings.Get()
	if err := c.BodyParser(&settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if err := ctl.settings.Save(settings); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save settings",
		})
	}

	if ctl.onSave != nil {
		if err := ctl.onSave(settings); err != nil {
			logger.Log.Error("failed to apply new schedule", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"message":  "Settings saved",
		"settings": settings,
	})
}
