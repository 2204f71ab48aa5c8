package rule

import (
	"vowops/internal/common/api"
	"vowops/internal/config"
	"vowops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RuleApi struct {
	controller *RuleController
	config     *config.Config
}

func NewRuleApi(controller *RuleController, config *config.Config) api.Route {
	return &RuleApi{controller: controller, config: config}
}

func (h *RuleApi) Setup(app *fiber.App) {
	group := app.Group("/api/email-rules", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListRules)
	group.Get("/:id", h.controller.GetRule)
	group.Post("/", h.controller.CreateRule)
	group.Put("/:id", h.controller.UpdateRule)
	group.Delete("/:id", h.controller.DeleteRule)
	group.Patch("/:id/enable", h.controller.EnableRule)
}
