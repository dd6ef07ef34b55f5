package handlers

import (
	"errors"
	"log"
	"vidgrab/models"
	"vidgrab/utils"

	"github.com/gofiber/fiber/v2"
)

// HandleDownload handles POST /api/download
//
// Returns the job id immediately; the download runs in the background and
// is observed via GET /api/progress/:id.
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	var req models.DownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, utils.ErrInvalidRequest, "Invalid request body")
	}

	jobID, err := h.Downloader.Start(&req)
	if err != nil {
		var verr utils.ValidationError
		if errors.As(err, &verr) {
			return utils.BadRequest(c, utils.ErrInvalidRequest, verr.Error())
		}
		log.Printf("[Download] Failed to start job: %v\n", err)
		return utils.InternalError(c, "Failed to start download")
	}

	return c.Status(fiber.StatusAccepted).JSON(models.DownloadResponse{ID: jobID})
}

// HandleDeleteJob handles DELETE /api/jobs/:id
func (h *Handler) HandleDeleteJob(c *fiber.Ctx) error {
	jobID := c.Params("id")

	if !utils.ValidateJobID(jobID) {
		return utils.BadRequest(c, utils.ErrInvalidJobID, "Invalid job ID format")
	}

	if _, ok := h.Tracker.Get(jobID); !ok {
		return utils.NotFound(c, utils.ErrJobNotFound, "Job not found")
	}

	h.Tracker.Evict(jobID)
	if err := utils.DeleteJobDir(jobID); err != nil {
		return utils.InternalError(c, "Failed to delete job files")
	}

	return c.JSON(models.DeleteResponse{Deleted: true})
}
