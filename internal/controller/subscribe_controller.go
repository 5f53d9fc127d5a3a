package controller

import (
	"errors"
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"blogmailer_backend/internal/service"
	"blogmailer_backend/pkg/logger"
)

type SubscribeInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SubscribeController serves the public subscription lifecycle: signup,
// confirmation and unsubscribe links, and the embeddable form widget.
type SubscribeController struct {
	subscribers *service.SubscriberService
	email       *service.EmailService
	settings    *service.SettingsService
}

func NewSubscribeController(
	subscribers *service.SubscriberService,
	emailService *service.EmailService,
	settings *service.SettingsService,
) *SubscribeController {
	return &SubscribeController{
		subscribers: subscribers,
		email:       emailService,
		settings:    settings,
	}
}

// Subscribe handles the public signup form. With double opt-in enabled
// the subscriber stays pending until the emailed link is clicked;
// otherwise it is confirmed immediately.
func (ctl *SubscribeController) Subscribe(c *fiber.Ctx) error {
	input := new(SubscribeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input format",
		})
	}

	subscriber, err := ctl.subscribers.Create(service.CreateSubscriberInput{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid email format",
			})
		case errors.Is(err, service.ErrEmailExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "This email address is already subscribed",
			})
		case errors.Is(err, service.ErrSubscriberLimit):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Subscriber limit reached",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not complete subscription",
			})
		}
	}

	settings := ctl.settings.Get()
	if settings.DoubleOptin {
		if err := ctl.email.SendConfirmation(subscriber, settings); err != nil {
			logger.Log.Warn("confirmation email failed",
				zap.String("email", subscriber.Email), zap.Error(err))
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Please check your inbox to confirm your subscription",
			"status":  subscriber.Status,
		})
	}

	if _, err := ctl.subscribers.Confirm(subscriber.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete subscription",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Successfully subscribed to the newsletter",
		"status":  "confirmed",
	})
}

// Confirm handles the emailed double-opt-in link.
func (ctl *SubscribeController) Confirm(c *fiber.Ctx) error {
	subscriber, err := ctl.subscribers.GetByEmailAndKey(c.Query("email"), c.Query("key"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid confirmation link",
		})
	}

	changed, err := ctl.subscribers.Confirm(subscriber.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not confirm subscription",
		})
	}

	message := "Your subscription is confirmed"
	if !changed {
		message = "Your subscription was already confirmed"
	}
	return c.JSON(fiber.Map{"message": message})
}

// Unsubscribe handles the footer link carried in every newsletter.
func (ctl *SubscribeController) Unsubscribe(c *fiber.Ctx) error {
	subscriber, err := ctl.subscribers.GetByEmailAndKey(c.Query("email"), c.Query("key"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid unsubscribe link",
		})
	}

	if err := ctl.subscribers.Unsubscribe(subscriber.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not unsubscribe",
		})
	}
	return c.JSON(fiber.Map{"message": "You have been unsubscribed"})
}

// FormWidget renders the embeddable signup form. Appearance is driven by
// query parameters so the same endpoint serves every placement.
func (ctl *SubscribeController) FormWidget(c *fiber.Ctx) error {
	title := c.Query("title", "Subscribe to our newsletter")
	description := c.Query("description", "")
	buttonText := c.Query("button_text", "Subscribe")
	successMessage := c.Query("success_message", "Thank you for subscribing!")
	cssClass := c.Query("class", "blog-mailer-form")
	showName := c.QueryBool("show_name", false)

	nameFields := ""
	if showName {
		nameFields = `
    <input type="text" name="first_name" placeholder="First name">
    <input type="text" name="last_name" placeholder="Last name">`
	}

	description = html.EscapeString(description)
	descriptionHTML := ""
	if description != "" {
		descriptionHTML = fmt.Sprintf("\n  <p>%s</p>", description)
	}

	widget := fmt.Sprintf(`<div class="%s">
  <h3>%s</h3>%s
  <form method="post" action="/api/newsletter/subscribe" data-success-message="%s">%s
    <input type="email" name="email" placeholder="Email address" required>
    <button type="submit">%s</button>
  </form>
</div>`,
		html.EscapeString(cssClass),
		html.EscapeString(title),
		descriptionHTML,
		html.EscapeString(successMessage),
		nameFields,
		html.EscapeString(buttonText))

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(widget)
}
