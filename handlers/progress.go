package handlers

import (
	"vidgrab/utils"

	"github.com/gofiber/fiber/v2"
)

// HandleProgress handles GET /api/progress/:id
func (h *Handler) HandleProgress(c *fiber.Ctx) error {
	jobID := c.Params("id")

	if !utils.ValidateJobID(jobID) {
		return utils.BadRequest(c, utils.ErrInvalidJobID, "Invalid job ID format")
	}

	job, ok := h.Tracker.Get(jobID)
	if !ok {
		return utils.NotFound(c, utils.ErrJobNotFound, "Job not found")
	}

	return c.JSON(job)
}
