package submission

import (
	"vowops/internal/common/api"
	"vowops/internal/config"
	"vowops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SubmissionApi struct {
	controller *SubmissionController
	config     *config.Config
}

func NewSubmissionApi(controller *SubmissionController, config *config.Config) api.Route {
	return &SubmissionApi{controller: controller, config: config}
}

func (h *SubmissionApi) Setup(app *fiber.App) {
	// Submission intake is public; the form embed posts here unauthenticated.
	app.Post("/api/forms/:formId/submissions", h.controller.CreateSubmission)

	group := app.Group("/api", middleware.AuthMiddleware(h.config.SkipAuth))
	group.Get("/forms/:formId/submissions", h.controller.ListSubmissions)
	group.Get("/submissions/:id", h.controller.GetSubmission)
}
