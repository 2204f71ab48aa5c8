package lead

import (
	"github.com/gofiber/fiber/v2"
)

type LeadController struct {
	Service LeadService
}

func NewLeadController(service LeadService) *LeadController {
	return &LeadController{Service: service}
}

func (ctrl *LeadController) ListLeads(c *fiber.Ctx) error {
	leads, err := ctrl.Service.ListLeads(c.UserContext(), c.Query("formId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(leads)
}

func (ctrl *LeadController) GetLead(c *fiber.Ctx) error {
	lead, err := ctrl.Service.GetLead(c.UserContext(), c.Params("id"))
	if err != nil || lead == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lead not found"})
	}
	return c.JSON(lead)
}

func (ctrl *LeadController) UpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status LeadStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.UpdateStatus(c.UserContext(), c.Params("id"), body.Status); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (ctrl *LeadController) ExportLeads(c *fiber.Ctx) error {
	data, err := ctrl.Service.ExportXLSX(c.UserContext(), c.Query("formId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=leads.xlsx")
	return c.Send(data)
}
