package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/gofiber/fiber/v2"
)

// envelope is the uniform response body: the HTTP status repeated in the
// payload, a human-readable message, and an optional data section.
type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(envelope{Status: status, Message: message, Data: data})
}

// respondError translates a domain error into an HTTP status. Unrecognized
// errors collapse to 500 without leaking their text to the client.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return respond(c, fiber.StatusNotFound, "User not found", nil)
	case errors.Is(err, common.ErrEmailAlreadyExists):
		return respond(c, fiber.StatusConflict, "User already exists with this email", nil)
	case errors.Is(err, common.ErrInvalidCredentials):
		return respond(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, common.ErrorUnauthorized):
		return respond(c, fiber.StatusUnauthorized, "Not authorized", nil)
	default:
		return respond(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}
