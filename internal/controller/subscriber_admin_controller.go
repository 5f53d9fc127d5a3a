package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/internal/service"
)

type AdminSubscriberInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
}

// SubscriberAdminController serves the admin subscriber list.
type SubscriberAdminController struct {
	subscribers *service.SubscriberService
	tags        *service.TagService
}

func NewSubscriberAdminController(subscribers *service.SubscriberService, tags *service.TagService) *SubscriberAdminController {
	return &SubscriberAdminController{subscribers: subscribers, tags: tags}
}

func (ctl *SubscriberAdminController) List(c *fiber.Ctx) error {
	filters := service.ListSubscribersFilters{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 20),
	}

	subscribers, total, err := ctl.subscribers.List(filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscribers",
		})
	}

	return c.JSON(fiber.Map{
		"subscribers": subscribers,
		"total":       total,
		"page":        filters.Page,
		"per_page":    filters.PerPage,
	})
}

func (ctl *SubscriberAdminController) Stats(c *fiber.Ctx) error {
	stats, err := ctl.subscribers.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscriber statistics",
		})
	}
	return c.JSON(stats)
}

func (ctl *SubscriberAdminController) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subscriber ID",
		})
	}

	subscriber, err := ctl.subscribers.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Subscriber not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscriber",
		})
	}

	tags, err := ctl.tags.ForSubscriber(subscriber.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscriber tags",
		})
	}

	return c.JSON(fiber.Map{
		"subscriber": subscriber,
		"tags":       tags,
	})
}

// Create adds a subscriber from the admin screen, bypassing opt-in.
func (ctl *SubscriberAdminController) Create(c *fiber.Ctx) error {
	input := new(AdminSubscriberInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
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
				"error": "Could not create subscriber",
			})
		}
	}

	if input.Status == "" || input.Status == model.StatusConfirmed {
		if _, err := ctl.subscribers.Confirm(subscriber.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not create subscriber",
			})
		}
		subscriber.Status = model.StatusConfirmed
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Subscriber created",
		"subscriber": subscriber,
	})
}

func (ctl *SubscriberAdminController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subscriber ID",
		})
	}

	input := new(AdminSubscriberInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	subscriber, err := ctl.subscribers.Update(uint(id), input.FirstName, input.LastName, input.Status)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Subscriber not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update subscriber",
		})
	}

	return c.JSON(fiber.Map{
		"message":    "Subscriber updated",
		"subscriber": subscriber,
	})
}

func (ctl *SubscriberAdminController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subscriber ID",
		})
	}

	if err := ctl.subscribers.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Subscriber not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete subscriber",
		})
	}

	return c.JSON(fiber.Map{"message": "Subscriber deleted"})
}
