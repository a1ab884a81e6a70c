package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocalsKey = "user"

// requestLogger tags every request with an id and logs method, path, status
// and duration after the handler chain completes.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Locals("request_id", requestID)

		err := c.Next()

		s.logger.Info(c.UserContext(), "request",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}

// authGate admits only requests carrying a valid bearer token for a user
// that still exists. Verification failures and vanished users are rejections
// (401); a failing user store is a server fault (500).
func (s *Server) authGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return respond(c, fiber.StatusUnauthorized, "Not authorized to access this route. Please login.", nil)
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			return respond(c, fiber.StatusUnauthorized, "Invalid or expired token. Please login again.", nil)
		}

		user, err := s.users.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return respond(c, fiber.StatusUnauthorized, "Invalid or expired token. Please login again.", nil)
			}
			s.logger.Error(c.UserContext(), "auth gate user lookup failed", "error", err.Error())
			return respond(c, fiber.StatusInternalServerError, "Server error during authentication", nil)
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// currentUser returns the user stored by the auth gate.
func currentUser(c *fiber.Ctx) (*models.User, bool) {
	u, ok := c.Locals(userLocalsKey).(*models.User)
	return u, ok
}
