package form

import (
	"github.com/gofiber/fiber/v2"
)

type FormController struct {
	Service FormService
}

func NewFormController(service FormService) *FormController {
	return &FormController{Service: service}
}

func (ctrl *FormController) CreateForm(c *fiber.Ctx) error {
	var form Form
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.CreateForm(c.UserContext(), &form); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(form)
}

func (ctrl *FormController) GetForm(c *fiber.Ctx) error {
	id := c.Params("id")
	form, err := ctrl.Service.GetForm(c.UserContext(), id)
	if err != nil || form == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Form not found"})
	}
	return c.JSON(form)
}

func (ctrl *FormController) ListForms(c *fiber.Ctx) error {
	forms, err := ctrl.Service.ListForms(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(forms)
}

func (ctrl *FormController) UpdateForm(c *fiber.Ctx) error {
	var form Form
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.UpdateForm(c.UserContext(), &form); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(form)
}

func (ctrl *FormController) DeleteForm(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := ctrl.Service.DeleteForm(c.UserContext(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
