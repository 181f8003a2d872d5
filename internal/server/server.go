package server

import (
	"github.com/b-marinov/euro-bakshish/internal/auth"
	"github.com/b-marinov/euro-bakshish/internal/config"
	"github.com/b-marinov/euro-bakshish/internal/review"
	"github.com/b-marinov/euro-bakshish/internal/stream"
	"github.com/b-marinov/euro-bakshish/internal/trip"
	"github.com/b-marinov/euro-bakshish/internal/user"

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

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
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

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	user.RegisterRoutes(s.App.Group("/users"), user.NewService(s.DB), jwtMiddleware)
	trip.RegisterRoutes(s.App.Group("/trips"), trip.NewService(s.DB, s.Stream), jwtMiddleware)
	review.RegisterRoutes(s.App.Group("/reviews"), review.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
