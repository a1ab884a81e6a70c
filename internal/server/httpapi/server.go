package httpapi

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	address   string
	logger    logging.Logger
	users     *services.UserService
	db        *sql.DB
	jwtSecret []byte
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, db *sql.DB) *Server {
	return &Server{
		address:   cfg.EndpointAddr,
		logger:    l.With("module", "http_server"),
		users:     us,
		db:        db,
		jwtSecret: []byte(cfg.SecretKey),
	}
}

// newApp assembles the fiber application with the full route table. Split
// from Run so handler tests can exercise routes without a listener.
func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(recover.New())
	app.Use(s.requestLogger())

	app.Get("/healthz", s.handleHealthz)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", s.handleRegister)
	authGroup.Post("/login", s.handleLogin)
	authGroup.Get("/me", s.authGate(), s.handleMe)
	authGroup.Post("/logout", s.authGate(), s.handleLogout)

	api := app.Group("/api")
	api.Post("/user", s.handleCreateUser)
	api.Get("/user", s.handleListUsers)
	api.Get("/user/:id", s.handleGetUser)
	api.Put("/user/:id", s.handleUpdateUser)
	api.Delete("/user/:id", s.handleDeleteUser)

	return app
}

func (s *Server) Run(ctx context.Context) error {

	app := s.newApp()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := app.Shutdown(); err != nil {
			s.logger.Error(ctx, "Shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := app.Listen(s.address); err != nil {
		return err
	}

	return nil
}
