package handlers

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"vidgrab/models"
	"vidgrab/utils"

	"github.com/gofiber/fiber/v2"
)

// HandleFile handles GET /api/file/:id
//
// Serves the finished job's media file. The path recorded on the job is
// re-checked against the media extension allow-list here: a sidecar must
// never leave the server even if it was recorded as the result.
func (h *Handler) HandleFile(c *fiber.Ctx) error {
	jobID := c.Params("id")
	token := c.Query("token")
	expiresStr := c.Query("expires")

	if !utils.ValidateJobID(jobID) {
		return utils.BadRequest(c, utils.ErrInvalidJobID, "Invalid job ID format")
	}

	if token == "" || expiresStr == "" {
		return utils.Unauthorized(c, "Missing token or expires parameter")
	}
	expires, err := utils.ParseExpires(expiresStr)
	if err != nil {
		return utils.BadRequest(c, utils.ErrInvalidRequest, "Invalid expires format")
	}
	if !utils.ValidateFileURL(jobID, token, expires) {
		return utils.Forbidden(c, "Invalid or expired token")
	}

	job, ok := h.Tracker.Get(jobID)
	if !ok {
		return utils.NotFound(c, utils.ErrJobNotFound, "Job not found")
	}

	switch job.State {
	case models.StateError:
		return utils.Conflict(c, utils.ErrJobFailed, job.Error)
	case models.StateFinished:
		// Fall through to serving.
	default:
		return utils.Conflict(c, utils.ErrJobNotReady, "Job is not completed yet")
	}

	if job.FilePath == "" || !utils.IsServableMedia(job.FilePath) {
		return utils.NotFound(c, utils.ErrFileNotFound, "Media file not available")
	}

	info, err := os.Stat(job.FilePath)
	if err != nil {
		return utils.NotFound(c, utils.ErrFileNotFound, "File not found")
	}

	ext := strings.TrimPrefix(filepath.Ext(job.FilePath), ".")
	downloadName := utils.SanitizeFilename(job.Filename)
	if downloadName == "" {
		downloadName = "video." + ext
	}

	// RFC 5987 encoding for non-ASCII characters
	encodedName := url.PathEscape(downloadName)

	c.Set("Content-Type", utils.ContentTypeFromExt(ext))
	c.Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, downloadName, encodedName))

	return c.SendFile(job.FilePath)
}
