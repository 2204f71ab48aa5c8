package template

import (
	"vowops/internal/common/api"
	"vowops/internal/config"
	"vowops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TemplateApi struct {
	controller *TemplateController
	config     *config.Config
}

func NewTemplateApi(controller *TemplateController, config *config.Config) api.Route {
	return &TemplateApi{controller: controller, config: config}
}

func (h *TemplateApi) Setup(app *fiber.App) {
	group := app.Group("/api/email-templates", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListTemplates)
	group.Get("/:id", h.controller.GetTemplate)
	group.Post("/", h.controller.CreateTemplate)
	group.Put("/:id", h.controller.UpdateTemplate)
	group.Delete("/:id", h.controller.DeleteTemplate)
	group.Post("/:id/preview", h.controller.PreviewTemplate)
}
