package form

import (
	"vowops/internal/common/api"
	"vowops/internal/config"
	"vowops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FormApi struct {
	controller *FormController
	config     *config.Config
}

func NewFormApi(controller *FormController, config *config.Config) api.Route {
	return &FormApi{controller: controller, config: config}
}

func (h *FormApi) Setup(app *fiber.App) {
	group := app.Group("/api/forms", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListForms)
	group.Get("/:id", h.controller.GetForm)
	group.Post("/", h.controller.CreateForm)
	group.Put("/:id", h.controller.UpdateForm)
	group.Delete("/:id", h.controller.DeleteForm)
}
