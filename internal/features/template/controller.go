package template

import (
	"github.com/gofiber/fiber/v2"
)

type TemplateController struct {
	Service TemplateService
}

func NewTemplateController(service TemplateService) *TemplateController {
	return &TemplateController{Service: service}
}

func (ctrl *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var template EmailTemplate
	if err := c.BodyParser(&template); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.CreateTemplate(c.UserContext(), &template); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}

func (ctrl *TemplateController) GetTemplate(c *fiber.Ctx) error {
	id := c.Params("id")
	template, err := ctrl.Service.GetTemplate(c.UserContext(), id)
	if err != nil || template == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Template not found"})
	}
	return c.JSON(template)
}

func (ctrl *TemplateController) ListTemplates(c *fiber.Ctx) error {
	templates, err := ctrl.Service.ListTemplates(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(templates)
}

func (ctrl *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	var template EmailTemplate
	if err := c.BodyParser(&template); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.UpdateTemplate(c.UserContext(), &template); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(template)
}

func (ctrl *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := ctrl.Service.DeleteTemplate(c.UserContext(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (ctrl *TemplateController) PreviewTemplate(c *fiber.Ctx) error {
	id := c.Params("id")
	var testData map[string]interface{}
	if err := c.BodyParser(&testData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	subject, body, err := ctrl.Service.Preview(c.UserContext(), id, testData)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"subject": subject, "body": body})
}
