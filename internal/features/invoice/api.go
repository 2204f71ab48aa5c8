package invoice

import (
	"vowops/internal/common/api"
	"vowops/internal/config"
	"vowops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InvoiceApi struct {
	controller *InvoiceController
	config     *config.Config
}

func NewInvoiceApi(controller *InvoiceController, config *config.Config) api.Route {
	return &InvoiceApi{controller: controller, config: config}
}

func (h *InvoiceApi) Setup(app *fiber.App) {
	group := app.Group("/api/invoices", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListInvoices)
	group.Get("/:id", h.controller.GetInvoice)
	group.Post("/", h.controller.CreateInvoice)
	group.Patch("/:id/status", h.controller.UpdateStatus)
}
