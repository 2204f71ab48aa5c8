package lead

import (
	"vowops/internal/common/api"
	"vowops/internal/config"
	"vowops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LeadApi struct {
	controller *LeadController
	config     *config.Config
}

func NewLeadApi(controller *LeadController, config *config.Config) api.Route {
	return &LeadApi{controller: controller, config: config}
}

func (h *LeadApi) Setup(app *fiber.App) {
	group := app.Group("/api/leads", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListLeads)
	group.Get("/export", h.controller.ExportLeads)
	group.Get("/:id", h.controller.GetLead)
	group.Patch("/:id/status", h.controller.UpdateStatus)
}
