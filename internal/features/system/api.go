package system

import (
	"vowops/internal/common/api"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type SystemApi struct {
	Controller *WebSocketController
}

func NewSystemApi(controller *WebSocketController) api.Route {
	return &SystemApi{Controller: controller}
}

func (h *SystemApi) Setup(app *fiber.App) {
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/api/ws", websocket.New(h.Controller.HandleWebSocket))
}
