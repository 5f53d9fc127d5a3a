package middleware

import (
	"github.com/gofiber/fiber/v2"

	"blogmailer_backend/pkg/plan"
)

// RequireFeature rejects the request when the configured plan does not
// include the feature. The plan is resolved once at startup and baked
// into the handler.
func RequireFeature(current plan.PlanType, feature plan.Feature) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !plan.CanUseFeature(current, feature) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "This feature requires a higher plan",
			})
		}
		return c.Next()
	}
}
