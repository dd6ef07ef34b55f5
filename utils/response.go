package utils

import "github.com/gofiber/fiber/v2"

// Error codes
const (
	ErrInvalidRequest = "INVALID_REQUEST"
	ErrInvalidURL     = "INVALID_URL"
	ErrInvalidJobID   = "INVALID_JOB_ID"
	ErrJobNotFound    = "JOB_NOT_FOUND"
	ErrJobNotReady    = "JOB_NOT_READY"
	ErrJobFailed      = "JOB_FAILED"
	ErrFileNotFound   = "FILE_NOT_FOUND"
	ErrForbidden      = "FORBIDDEN"
	ErrUnauthorized   = "UNAUTHORIZED"
	ErrInternalError  = "INTERNAL_ERROR"
)

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a JSON error response
func Error(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest returns 400 error
func BadRequest(c *fiber.Ctx, code, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

// Unauthorized returns 401 error
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, ErrUnauthorized, message)
}

// Forbidden returns 403 error
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, ErrForbidden, message)
}

// NotFound returns 404 error
func NotFound(c *fiber.Ctx, code, message string) error {
	return Error(c, fiber.StatusNotFound, code, message)
}

// Conflict returns 409 error
func Conflict(c *fiber.Ctx, code, message string) error {
	return Error(c, fiber.StatusConflict, code, message)
}

// InternalError returns 500 error
func InternalError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, ErrInternalError, message)
}
