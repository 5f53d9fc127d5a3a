package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"blogmailer_backend/internal/service"
)

type TagInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// TagController manages subscriber tags from the admin UI.
type TagController struct {
	tags *service.TagService
}

func NewTagController(tags *service.TagService) *TagController {
	return &TagController{tags: tags}
}

func (ctl *TagController) List(c *fiber.Ctx) error {
	tags, err := ctl.tags.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch tags",
		})
	}
	return c.JSON(fiber.Map{
		"tags":  tags,
		"total": len(tags),
	})
}

func (ctl *TagController) Create(c *fiber.Ctx) error {
	input := new(TagInput)
	if err := c.BodyParser(input); err != nil || input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Tag name is required",
		})
	}

	tag, err := ctl.tags.Create(input.Name, input.Description, input.Color)
	if err != nil {
		if errors.Is(err, service.ErrTagExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A tag with this name already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create tag",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Tag created",
		"tag":     tag,
	})
}

func (ctl *TagController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid tag ID",
		})
	}

	input := new(TagInput)
	if err := c.BodyParser(input); err != nil || input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Tag name is required",
		})
	}

	tag, err := ctl.tags.Update(uint(id), input.Name, input.Description, input.Color)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Tag not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update tag",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Tag updated",
		"tag":     tag,
	})
}

func (ctl *TagController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid tag ID",
		})
	}

	if err := ctl.tags.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Tag not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete tag",
		})
	}

	return c.JSON(fiber.Map{"message": "Tag deleted"})
}

// Assign links a tag to a subscriber.
func (ctl *TagController) Assign(c *fiber.Ctx) error {
	subscriberID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subscriber ID",
		})
	}
	tagID, err := c.ParamsInt("tag_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid tag ID",
		})
	}

	if err := ctl.tags.Assign(uint(subscriberID), uint(tagID)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Subscriber or tag not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not assign tag",
		})
	}

	return c.JSON(fiber.Map{"message": "Tag assigned"})
}

func (ctl *TagController) Remove(c *fiber.Ctx) error {
	subscriberID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subscriber ID",
		})
	}
	tagID, err := c.ParamsInt("tag_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid tag ID",
		})
	}

	if err := ctl.tags.Remove(uint(subscriberID), uint(tagID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not remove tag",
		})
	}

	return c.JSON(fiber.Map{"message": "Tag removed"})
}
