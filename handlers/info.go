package handlers

import (
	"log"
	"vidgrab/models"
	"vidgrab/utils"

	"github.com/gofiber/fiber/v2"
)

// HandleInfo handles POST /api/info
//
// A terminal extraction error (private video, deleted, age-restricted...) is
// actionable information for the end user, so it is delivered as a normal
// 200 payload rather than a transport-level failure.
func (h *Handler) HandleInfo(c *fiber.Ctx) error {
	var req models.InfoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, utils.ErrInvalidRequest, "Invalid request body")
	}

	if err := utils.ValidateURL(req.URL); err != nil {
		return utils.BadRequest(c, utils.ErrInvalidURL, err.Error())
	}

	info, xerr := h.Extractor.Extract(c.Context(), req.URL)
	if xerr != nil {
		log.Printf("[Info] Extraction blocked (%s): %s\n", xerr.Kind, req.URL)
		return c.JSON(models.ExtractionErrorResponse{
			Error: xerr.Message,
			Kind:  xerr.Kind,
		})
	}

	if info.Advisory != "" {
		log.Printf("[Info] Serving fallback info for %s\n", req.URL)
	}
	return c.JSON(info)
}
