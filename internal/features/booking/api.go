package booking

import (
	"vowops/internal/common/api"
	"vowops/internal/config"
	"vowops/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type BookingApi struct {
	controller *BookingController
	config     *config.Config
}

func NewBookingApi(controller *BookingController, config *config.Config) api.Route {
	return &BookingApi{controller: controller, config: config}
}

func (h *BookingApi) Setup(app *fiber.App) {
	group := app.Group("/api/bookings", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListBookings)
	group.Get("/:id", h.controller.GetBooking)
	group.Post("/", h.controller.CreateBooking)
	group.Put("/:id", h.controller.UpdateBooking)
	group.Delete("/:id", h.controller.DeleteBooking)
}
