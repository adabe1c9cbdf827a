package server

import (
	"errors"

	"marathon-admin/internal/auth"
	"marathon-admin/internal/comms"
	"marathon-admin/internal/config"
	"marathon-admin/internal/races"
	"marathon-admin/internal/routes"
	"marathon-admin/internal/runners"
	"marathon-admin/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

// errorHandler shapes every handler error into the response envelope
// the dashboard client expects.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "error": err.Error()})
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB), jwtMiddleware)
	races.RegisterRoutes(s.App.Group("/races"), races.NewService(s.DB, s.Stream), jwtMiddleware)
	runners.RegisterRoutes(s.App.Group("/runners"), runners.NewService(s.DB), jwtMiddleware)
	routes.RegisterRoutes(s.App.Group("/routes"), routes.NewService(s.DB), jwtMiddleware)
	comms.RegisterRoutes(s.App.Group("/communications"), comms.NewService(s.DB, s.Stream), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
