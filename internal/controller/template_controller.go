package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/internal/service"
)

type TemplateInput struct {
	Name     string `json:"name" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category"`
}

// TemplateController manages admin-authored email templates.
type TemplateController struct {
	templates *service.TemplateStoreService
}

func NewTemplateController(templates *service.TemplateStoreService) *TemplateController {
	return &TemplateController{templates: templates}
}

func (ctl *TemplateController) List(c *fiber.Ctx) error {
	templates, err := ctl.templates.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch templates",
		})
	}
	return c.JSON(fiber.Map{
		"templates": templates,
		"total":     len(templates),
	})
}

func (ctl *TemplateController) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid template ID",
		})
	}

	tmpl, err := ctl.templates.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Template not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch template",
		})
	}
	return c.JSON(fiber.Map{"template": tmpl})
}

func (ctl *TemplateController) Create(c *fiber.Ctx) error {
	input := new(TemplateInput)
	if err := c.BodyParser(input); err != nil || input.Name == "" || input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Template name and content are required",
		})
	}

	tmpl, err := ctl.templates.Create(model.Template{
		Name:         input.Name,
		Content:      input.Content,
		TemplateType: "custom",
		Category:     input.Category,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Template created",
		"template": tmpl,
	})
}

func (ctl *TemplateController) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid template ID",
		})
	}

	input := new(TemplateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	tmpl, err := ctl.templates.Update(uint(id), model.Template{
		Name:     input.Name,
		Content:  input.Content,
		Category: input.Category,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Template not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Template updated",
		"template": tmpl,
	})
}

func (ctl *TemplateController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid template ID",
		})
	}

	if err := ctl.templates.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Template not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete template",
		})
	}

	return c.JSON(fiber.Map{"message": "Template deleted"})
}

// Preview renders the stored template with sample data.
func (ctl *TemplateController) Preview(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid template ID",
		})
	}

	body, err := ctl.templates.Preview(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Template not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not render template",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(body)
}
