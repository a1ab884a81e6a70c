package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := req.Validate(); err != nil {
		return respond(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	user, err := s.users.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	s.logger.Info(c.UserContext(), "user registered", "email", user.Email)
	return respond(c, fiber.StatusCreated, "User registered successfully", user)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := req.Validate(); err != nil {
		return respond(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	user, token, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Login successful", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "Not authorized", nil)
	}
	return respond(c, fiber.StatusOK, "User fetched successfully", user)
}

// handleLogout acknowledges the request. Tokens are stateless and simply
// expire; the client discards its copy.
func (s *Server) handleLogout(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "Logged out successfully", nil)
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := req.Validate(); err != nil {
		return respond(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	user, err := s.users.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "User created successfully", user)
}

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	users, err := s.users.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Users fetched successfully", users)
}

func (s *Server) handleGetUser(c *fiber.Ctx) error {
	user, err := s.users.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "User fetched successfully", user)
}

func (s *Server) handleUpdateUser(c *fiber.Ctx) error {
	var req UserRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := req.ValidatePartial(); err != nil {
		return respond(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	user, err := s.users.Update(c.UserContext(), c.Params("id"), req.Name, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "User updated successfully", user)
}

func (s *Server) handleDeleteUser(c *fiber.Ctx) error {
	if err := s.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "User deleted successfully", nil)
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	if err := s.db.PingContext(c.UserContext()); err != nil {
		return respond(c, fiber.StatusServiceUnavailable, "Database unreachable", nil)
	}
	return respond(c, fiber.StatusOK, "OK", nil)
}
