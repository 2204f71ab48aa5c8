package invoice

import (
	"github.com/gofiber/fiber/v2"
)

type InvoiceController struct {
	Repo InvoiceRepository
}

func NewInvoiceController(repo InvoiceRepository) *InvoiceController {
	return &InvoiceController{Repo: repo}
}

func (ctrl *InvoiceController) CreateInvoice(c *fiber.Ctx) error {
	var invoice Invoice
	if err := c.BodyParser(&invoice); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if invoice.LeadID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lead_id is required"})
	}

	if err := ctrl.Repo.Create(c.UserContext(), &invoice); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

func (ctrl *InvoiceController) GetInvoice(c *fiber.Ctx) error {
	invoice, err := ctrl.Repo.GetByID(c.UserContext(), c.Params("id"))
	if err != nil || invoice == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invoice not found"})
	}
	return c.JSON(invoice)
}

func (ctrl *InvoiceController) ListInvoices(c *fiber.Ctx) error {
	invoices, err := ctrl.Repo.List(c.UserContext(), c.Query("leadId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(invoices)
}

func (ctrl *InvoiceController) UpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status InvoiceStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Repo.UpdateStatus(c.UserContext(), c.Params("id"), body.Status); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}
