package submission

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type SubmissionController struct {
	Pipeline *Pipeline
	Repo     SubmissionRepository
}

func NewSubmissionController(pipeline *Pipeline, repo SubmissionRepository) *SubmissionController {
	return &SubmissionController{Pipeline: pipeline, Repo: repo}
}

// CreateSubmission accepts a public form fill. It answers 201 as soon as the
// submission is stored; email outcomes are not part of this response.
func (ctrl *SubmissionController) CreateSubmission(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sub, err := ctrl.Pipeline.Accept(c.UserContext(), c.Params("formId"), payload)
	if err != nil {
		if errors.Is(err, ErrFormNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, ErrFormInactive) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":            sub.ID.Hex(),
		"leadId":        sub.LeadID,
		"trackingToken": sub.TrackingToken,
	})
}

func (ctrl *SubmissionController) GetSubmission(c *fiber.Ctx) error {
	sub, err := ctrl.Repo.GetByID(c.UserContext(), c.Params("id"))
	if err != nil || sub == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
	}
	return c.JSON(sub)
}

func (ctrl *SubmissionController) ListSubmissions(c *fiber.Ctx) error {
	subs, err := ctrl.Repo.ListByForm(c.UserContext(), c.Params("formId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(subs)
}
