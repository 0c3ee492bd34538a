package utils

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse writes the standard success envelope.
func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// ErrorResponse writes the standard error envelope. The err detail is
// included only when present so handlers can pass nil for input errors.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

// TaggedErrorResponse is ErrorResponse with a machine-readable error tag,
// used by the import endpoints where callers branch on the failure kind.
func TaggedErrorResponse(c *fiber.Ctx, status int, tag, message string, err error) error {
	body := fiber.Map{
		"success": false,
		"tag":     tag,
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}
