package booking

import (
	"github.com/gofiber/fiber/v2"
)

type BookingController struct {
	Repo BookingRepository
}

func NewBookingController(repo BookingRepository) *BookingController {
	return &BookingController{Repo: repo}
}

func (ctrl *BookingController) CreateBooking(c *fiber.Ctx) error {
	var booking Booking
	if err := c.BodyParser(&booking); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if booking.LeadID == "" || booking.CeremonyDate.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lead_id and ceremony_date are required"})
	}

	if err := ctrl.Repo.Create(c.UserContext(), &booking); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (ctrl *BookingController) GetBooking(c *fiber.Ctx) error {
	booking, err := ctrl.Repo.GetByID(c.UserContext(), c.Params("id"))
	if err != nil || booking == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	return c.JSON(booking)
}

func (ctrl *BookingController) ListBookings(c *fiber.Ctx) error {
	bookings, err := ctrl.Repo.List(c.UserContext(), c.Query("leadId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(bookings)
}

func (ctrl *BookingController) UpdateBooking(c *fiber.Ctx) error {
	var booking Booking
	if err := c.BodyParser(&booking); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Repo.Update(c.UserContext(), &booking); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(booking)
}

func (ctrl *BookingController) DeleteBooking(c *fiber.Ctx) error {
	if err := ctrl.Repo.Delete(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
