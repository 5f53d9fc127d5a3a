package controller

import (
	"github.com/gofiber/fiber/v2"

	"blogmailer_backend/internal/service"
)

// CronController exposes scheduler health and history to the admin UI.
// The hook list is supplied by the caller so plan gating and the
// configured newsletter cadence stay in one place.
type CronController struct {
	status *service.CronStatusService
	hooks  func() []service.HookSpec
}

func NewCronController(status *service.CronStatusService, hooks func() []service.HookSpec) *CronController {
	return &CronController{status: status, hooks: hooks}
}

func (ctl *CronController) Health(c *fiber.Ctx) error {
	report, err := ctl.status.HealthStatus(ctl.hooks())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not derive cron health",
		})
	}
	return c.JSON(report)
}

func (ctl *CronController) Statistics(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	stats, err := ctl.status.Statistics(days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch cron statistics",
		})
	}
	return c.JSON(fiber.Map{
		"days":  days,
		"stats": stats,
	})
}

func (ctl *CronController) RecentLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	entries, err := ctl.status.RecentLogs(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch cron logs",
		})
	}
	return c.JSON(fiber.Map{
		"logs":  entries,
		"total": len(entries),
	})
}
