package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error writes a JSON error body with the given status.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// BadRequest writes a 400 JSON error.
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// ServerError writes a 500 JSON error.
func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// errorHandler renders fiber's own errors (404, 413...) in the same JSON shape as handlers.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return Error(c, code, message)
}
